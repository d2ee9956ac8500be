package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/chorale-app/chorale/internal/users"
)

// ErrInvalidCredentials signals a failed login attempt. The message is
// identical for unknown email, wrong password and disabled accounts.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// UserPort resolves accounts for credential checks.
type UserPort interface {
	GetUserByEmail(ctx context.Context, email string) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users UserPort
}

// NewService constructs a new Service.
func NewService(userRepo UserPort) *Service {
	return &Service{users: userRepo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return users.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return users.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, ErrInvalidCredentials
	}
	return user, nil
}

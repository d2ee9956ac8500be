package auth

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chorale-app/chorale/internal/users"
)

type memoryUsers struct {
	byEmail map[string]users.User
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (users.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return users.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func seedUser(t *testing.T, email, password string, active bool) *memoryUsers {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &memoryUsers{byEmail: map[string]users.User{
		email: {ID: 7, Email: email, PasswordHash: string(hash), IsActive: active},
	}}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(seedUser(t, "lead@chorale.app", "hunter2secret", true))

	user, err := svc.Authenticate(context.Background(), "lead@chorale.app", "hunter2secret")
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(seedUser(t, "lead@chorale.app", "hunter2secret", true))

	_, err := svc.Authenticate(context.Background(), "lead@chorale.app", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(&memoryUsers{byEmail: map[string]users.User{}})

	_, err := svc.Authenticate(context.Background(), "nobody@chorale.app", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	svc := NewService(seedUser(t, "lead@chorale.app", "hunter2secret", false))

	_, err := svc.Authenticate(context.Background(), "lead@chorale.app", "hunter2secret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

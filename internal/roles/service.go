package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/chorale-app/chorale/internal/tenancy"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	GetRole(ctx context.Context, id int64) (Role, error)
	ListRoles(ctx context.Context, orgID int64) ([]Role, error)
	ListRolesForTeam(ctx context.Context, teamID, orgID int64) ([]Role, error)
	InsertRole(ctx context.Context, input RoleInput) (Role, error)
	UpdateRole(ctx context.Context, id int64, input RoleInput) (Role, error)
	DeleteRole(ctx context.Context, id int64) (bool, error)
}

// Service handles role business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns the organization's roles.
func (s *Service) ListRoles(ctx context.Context, orgID int64) ([]Role, error) {
	if orgID == 0 {
		return nil, tenancy.ErrMissingOrganization
	}
	return s.repo.ListRoles(ctx, orgID)
}

// ListRolesForTeam returns the roles attached to one of the organization's teams.
func (s *Service) ListRolesForTeam(ctx context.Context, teamID, orgID int64) ([]Role, error) {
	if orgID == 0 {
		return nil, tenancy.ErrMissingOrganization
	}
	return s.repo.ListRolesForTeam(ctx, teamID, orgID)
}

// GetRole fetches a role by id.
func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, tenancy.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// CreateRole inserts a new role.
func (s *Service) CreateRole(ctx context.Context, input RoleInput) (Role, error) {
	if input.OrganizationID == 0 {
		return Role{}, tenancy.ErrMissingOrganization
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Role{}, errors.New("roles: name required")
	}
	return s.repo.InsertRole(ctx, input)
}

// UpdateRole updates a role after re-verifying ownership.
func (s *Service) UpdateRole(ctx context.Context, id, orgID int64, input RoleInput) (Role, error) {
	existing, err := s.GetRole(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return Role{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Role{}, errors.New("roles: name required")
	}
	role, err := s.repo.UpdateRole(ctx, id, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, tenancy.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// DeleteRole removes a role after re-verifying ownership.
func (s *Service) DeleteRole(ctx context.Context, id, orgID int64) error {
	existing, err := s.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteRole(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return tenancy.ErrNotFound
	}
	return nil
}

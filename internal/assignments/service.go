package assignments

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/chorale-app/chorale/internal/shared"
	"github.com/chorale-app/chorale/internal/tenancy"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter Filter) ([]Assignment, error)
	Get(ctx context.Context, id int64) (Assignment, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service synchronizes a user's role assignments within one organization.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// List returns assignments matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Assignment, error) {
	return s.repo.List(ctx, filter)
}

// Sync reconciles the user's stored assignment set within orgID against
// the submitted target set: assignments present only in the store are
// revoked, targets present only in the request are created, the
// intersection is left untouched. The whole operation runs in one
// transaction; after a failure the user still holds the full pre-sync set.
//
// The existing set is fetched scoped by (user, organization) so a sync in
// one organization can never revoke the user's roles in another.
func (s *Service) Sync(ctx context.Context, userID, orgID int64, targets []Target) ([]Assignment, error) {
	if orgID == 0 {
		return nil, tenancy.ErrMissingOrganization
	}
	if userID == 0 {
		return nil, errors.New("assignments: user id required")
	}
	for _, target := range targets {
		if err := s.validate.Struct(target); err != nil {
			return nil, err
		}
	}

	// Duplicate role ids in the request collapse to the first occurrence.
	wanted := make(map[int64]Target, len(targets))
	order := make([]int64, 0, len(targets))
	for _, target := range targets {
		if _, ok := wanted[target.RoleID]; !ok {
			wanted[target.RoleID] = target
			order = append(order, target.RoleID)
		}
	}

	var final []Assignment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		existing, err := tx.ListForUser(ctx, userID, orgID)
		if err != nil {
			return err
		}

		if len(existing) == 0 {
			// Nothing stored: create the whole target set directly.
			for _, roleID := range order {
				assignment, err := tx.Insert(ctx, userID, orgID, wanted[roleID])
				if err != nil {
					return err
				}
				final = append(final, assignment)
			}
			return nil
		}

		have := make(map[int64]struct{}, len(existing))
		for _, a := range existing {
			have[a.RoleID] = struct{}{}
		}

		for roleID := range have {
			if _, keep := wanted[roleID]; !keep {
				if err := tx.DeleteByUserRole(ctx, userID, orgID, roleID); err != nil {
					return err
				}
			}
		}

		for _, roleID := range order {
			if _, present := have[roleID]; !present {
				if _, err := tx.Insert(ctx, userID, orgID, wanted[roleID]); err != nil {
					return err
				}
			}
		}

		final, err = tx.ListForUser(ctx, userID, orgID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, userID, orgID, len(final))
	return final, nil
}

// Revoke deletes one assignment after re-verifying its owning organization.
func (s *Service) Revoke(ctx context.Context, id, orgID int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenancy.ErrNotFound
		}
		return err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return tenancy.ErrNotFound
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, userID, orgID int64, size int) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:        userID,
		OrganizationID: orgID,
		Action:         "assignment.sync",
		Entity:         "user_role",
		EntityID:       strconv.FormatInt(userID, 10),
		Meta:           map[string]any{"size": size},
	})
}

package permissions

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/chorale-app/chorale/internal/reconcile"
	"github.com/chorale-app/chorale/internal/shared"
	"github.com/chorale-app/chorale/internal/tenancy"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	GetPermission(ctx context.Context, id int64) (Permission, error)
	ListPermissions(ctx context.Context, orgID int64) ([]Permission, error)
	InsertPermission(ctx context.Context, orgID int64, item PermissionItem) (Permission, error)
	UpdatePermission(ctx context.Context, id, orgID int64, item PermissionItem) (Permission, bool, error)
	DeletePermission(ctx context.Context, id int64) (bool, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates permission grants.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// ListPermissions returns the organization's grants.
func (s *Service) ListPermissions(ctx context.Context, orgID int64) ([]Permission, error) {
	if orgID == 0 {
		return nil, tenancy.ErrMissingOrganization
	}
	return s.repo.ListPermissions(ctx, orgID)
}

// BulkReplace reconciles a submitted grant list against the stored one:
// items with a known id update in place, items whose id no longer exists
// under this organization are re-created, items without an id are created.
// Each item is processed independently; a failed item does not roll back
// the ones already applied.
func (s *Service) BulkReplace(ctx context.Context, actorID, orgID int64, items []PermissionItem) ([]reconcile.Result[Permission], error) {
	if orgID == 0 {
		return nil, tenancy.ErrMissingOrganization
	}

	results := reconcile.Replace(ctx, items, reconcile.Ops[PermissionItem, Permission]{
		ExistingID: func(item PermissionItem) int64 { return item.ID },
		Validate:   func(item PermissionItem) error { return s.validate.Struct(item) },
		Update: func(ctx context.Context, id int64, item PermissionItem) (Permission, bool, error) {
			return s.repo.UpdatePermission(ctx, id, orgID, item)
		},
		Insert: func(ctx context.Context, item PermissionItem) (Permission, error) {
			return s.repo.InsertPermission(ctx, orgID, item)
		},
	})

	created, updated, failed := reconcile.Counts(results)
	s.recordAudit(ctx, actorID, orgID, "permissions", "permission.bulk_replace", map[string]any{
		"created": created, "updated": updated, "failed": failed,
	})
	return results, nil
}

// DeletePermission removes a grant after re-verifying ownership.
func (s *Service) DeletePermission(ctx context.Context, actorID, id, orgID int64) error {
	existing, err := s.repo.GetPermission(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenancy.ErrNotFound
		}
		return err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return err
	}
	deleted, err := s.repo.DeletePermission(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return tenancy.ErrNotFound
	}
	s.recordAudit(ctx, actorID, orgID, strconv.FormatInt(id, 10), "permission.delete", nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, orgID int64, entityID, action string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:        actorID,
		OrganizationID: orgID,
		Action:         action,
		Entity:         "permission",
		EntityID:       entityID,
		Meta:           meta,
	})
}

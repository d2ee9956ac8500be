package teams

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/chorale-app/chorale/internal/reconcile"
	"github.com/chorale-app/chorale/internal/shared"
	"github.com/chorale-app/chorale/internal/tenancy"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	GetTeam(ctx context.Context, id int64) (Team, error)
	ListTeams(ctx context.Context, orgID int64) ([]Team, error)
	InsertTeam(ctx context.Context, input TeamInput) (Team, error)
	UpdateTeam(ctx context.Context, id int64, input TeamInput) (Team, error)
	DeleteTeam(ctx context.Context, id int64) (bool, error)
	ListMembers(ctx context.Context, teamID int64) ([]Member, error)
	InsertMember(ctx context.Context, team Team, item MemberItem) (Member, error)
	UpdateMember(ctx context.Context, id int64, team Team, item MemberItem) (Member, bool, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates teams and their rosters.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	validate *validator.Validate
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

// ListTeams returns the organization's teams.
func (s *Service) ListTeams(ctx context.Context, orgID int64) ([]Team, error) {
	if orgID == 0 {
		return nil, tenancy.ErrMissingOrganization
	}
	return s.repo.ListTeams(ctx, orgID)
}

// GetTeam fetches one team by id.
func (s *Service) GetTeam(ctx context.Context, id int64) (Team, error) {
	team, err := s.repo.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, tenancy.ErrNotFound
		}
		return Team{}, err
	}
	return team, nil
}

// CreateTeam inserts a team for the given organization.
func (s *Service) CreateTeam(ctx context.Context, actorID int64, input TeamInput) (Team, error) {
	if input.OrganizationID == 0 {
		return Team{}, tenancy.ErrMissingOrganization
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Team{}, errors.New("teams: name required")
	}
	team, err := s.repo.InsertTeam(ctx, input)
	if err != nil {
		return Team{}, err
	}
	s.recordAudit(ctx, actorID, team.OrganizationID, team.ID, "team.create", nil)
	return team, nil
}

// UpdateTeam renames a team after re-verifying ownership.
func (s *Service) UpdateTeam(ctx context.Context, actorID, id, orgID int64, input TeamInput) (Team, error) {
	existing, err := s.GetTeam(ctx, id)
	if err != nil {
		return Team{}, err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return Team{}, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Team{}, errors.New("teams: name required")
	}
	team, err := s.repo.UpdateTeam(ctx, id, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, tenancy.ErrNotFound
		}
		return Team{}, err
	}
	s.recordAudit(ctx, actorID, team.OrganizationID, team.ID, "team.update", nil)
	return team, nil
}

// DeleteTeam removes a team after re-verifying ownership.
func (s *Service) DeleteTeam(ctx context.Context, actorID, id, orgID int64) error {
	existing, err := s.GetTeam(ctx, id)
	if err != nil {
		return err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteTeam(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return tenancy.ErrNotFound
	}
	s.recordAudit(ctx, actorID, existing.OrganizationID, id, "team.delete", nil)
	return nil
}

// ListRoster returns the roster of a team the caller's organization owns.
func (s *Service) ListRoster(ctx context.Context, teamID, orgID int64) ([]Member, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := tenancy.Authorize(orgID, team.OrganizationID); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, teamID)
}

// ReplaceRoster reconciles a submitted roster list against the stored one.
// The team is loaded fresh and its ownership re-verified before any write;
// every created entry is stamped with the team's organization and id.
func (s *Service) ReplaceRoster(ctx context.Context, actorID, teamID, orgID int64, items []MemberItem) ([]reconcile.Result[Member], error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := tenancy.Authorize(orgID, team.OrganizationID); err != nil {
		return nil, err
	}

	results := reconcile.Replace(ctx, items, reconcile.Ops[MemberItem, Member]{
		ExistingID: func(item MemberItem) int64 { return item.ID },
		Validate:   func(item MemberItem) error { return s.validate.Struct(item) },
		Update: func(ctx context.Context, id int64, item MemberItem) (Member, bool, error) {
			return s.repo.UpdateMember(ctx, id, team, item)
		},
		Insert: func(ctx context.Context, item MemberItem) (Member, error) {
			return s.repo.InsertMember(ctx, team, item)
		},
	})

	created, updated, failed := reconcile.Counts(results)
	s.recordAudit(ctx, actorID, team.OrganizationID, teamID, "team.roster_replace", map[string]any{
		"created": created, "updated": updated, "failed": failed,
	})
	return results, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID, orgID, teamID int64, action string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:        actorID,
		OrganizationID: orgID,
		Action:         action,
		Entity:         "team",
		EntityID:       strconv.FormatInt(teamID, 10),
		Meta:           meta,
	})
}

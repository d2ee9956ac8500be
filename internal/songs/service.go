package songs

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/chorale-app/chorale/internal/shared"
	"github.com/chorale-app/chorale/internal/tenancy"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	GetSong(ctx context.Context, id int64) (Song, error)
	ListSongs(ctx context.Context, filter SongFilter) ([]Song, error)
	InsertSong(ctx context.Context, input SongInput) (Song, error)
	UpdateSong(ctx context.Context, id int64, patch SongPatch) (Song, error)
	DeleteSong(ctx context.Context, id int64) (bool, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates song library operations. Mutations pass the
// ownership guard against a record loaded fresh from the repository.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	collator *collate.Collator
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
}

// ListSongs returns the organization's songs in collation order by title.
func (s *Service) ListSongs(ctx context.Context, filter SongFilter) ([]Song, error) {
	if filter.OrganizationID == 0 {
		return nil, tenancy.ErrMissingOrganization
	}
	list, err := s.repo.ListSongs(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return s.collator.CompareString(list[i].Title, list[j].Title) < 0
	})
	return list, nil
}

// GetSong fetches one song by id.
func (s *Service) GetSong(ctx context.Context, id int64) (Song, error) {
	song, err := s.repo.GetSong(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Song{}, tenancy.ErrNotFound
		}
		return Song{}, err
	}
	return song, nil
}

// CreateSong inserts a new song for the given organization.
func (s *Service) CreateSong(ctx context.Context, actorID int64, input SongInput) (Song, error) {
	if input.OrganizationID == 0 {
		return Song{}, tenancy.ErrMissingOrganization
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Song{}, errors.New("songs: title required")
	}
	song, err := s.repo.InsertSong(ctx, input)
	if err != nil {
		return Song{}, err
	}
	s.recordAudit(ctx, actorID, song, "song.create")
	return song, nil
}

// UpdateSong applies a partial update after re-verifying ownership against
// the stored record.
func (s *Service) UpdateSong(ctx context.Context, actorID, id, orgID int64, patch SongPatch) (Song, error) {
	existing, err := s.GetSong(ctx, id)
	if err != nil {
		return Song{}, err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return Song{}, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Song{}, errors.New("songs: title required")
	}
	song, err := s.repo.UpdateSong(ctx, id, patch)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Song{}, tenancy.ErrNotFound
		}
		return Song{}, err
	}
	s.recordAudit(ctx, actorID, song, "song.update")
	return song, nil
}

// DeleteSong removes a song after re-verifying ownership.
func (s *Service) DeleteSong(ctx context.Context, actorID, id, orgID int64) error {
	existing, err := s.GetSong(ctx, id)
	if err != nil {
		return err
	}
	if err := tenancy.Authorize(orgID, existing.OrganizationID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteSong(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return tenancy.ErrNotFound
	}
	s.recordAudit(ctx, actorID, existing, "song.delete")
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, song Song, action string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:        actorID,
		OrganizationID: song.OrganizationID,
		Action:         action,
		Entity:         "song",
		EntityID:       strconv.FormatInt(song.ID, 10),
	})
}

package teams

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/chorale-app/chorale/internal/auth"
	"github.com/chorale-app/chorale/internal/platform/httpx"
	"github.com/chorale-app/chorale/internal/reconcile"
	"github.com/chorale-app/chorale/internal/roles"
	"github.com/chorale-app/chorale/internal/shared"
)

// RoleLister resolves the roles attached to a team.
type RoleLister interface {
	ListRolesForTeam(ctx context.Context, teamID, orgID int64) ([]roles.Role, error)
}

// Handler wires team and roster endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	roles     RoleLister
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, roleLister RoleLister) *Handler {
	return &Handler{logger: logger, service: service, roles: roleLister, validator: validator.New()}
}

// MountRoutes registers team routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listTeams)
	r.Post("/", h.createTeam)
	r.Get("/{teamID}", h.getTeam)
	r.Get("/{teamID}/overview", h.teamOverview)
	r.Put("/{teamID}", h.updateTeam)
	r.Delete("/{teamID}", h.deleteTeam)
	r.Get("/{teamID}/roster", h.listRoster)
	r.Put("/{teamID}/roster", h.replaceRoster)
}

type teamRequest struct {
	OrganizationID int64  `json:"organization_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description"`
}

type rosterRequest struct {
	OrganizationID int64        `json:"organization_id"`
	Items          []MemberItem `json:"items"`
}

type rosterItemResponse struct {
	Status string  `json:"status"`
	Record *Member `json:"record,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	teams, err := h.service.ListTeams(r.Context(), orgID)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": teams, "count": len(teams)})
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "team id must be numeric")
		return
	}
	team, err := h.service.GetTeam(r.Context(), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": team})
}

// teamOverview aggregates team, roster and roles in one response. The
// roster fetch carries the ownership check, so a foreign team fails the
// whole group.
func (h *Handler) teamOverview(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "team id must be numeric")
		return
	}
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)

	var (
		team      Team
		members   []Member
		teamRoles []roles.Role
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		team, err = h.service.GetTeam(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = h.service.ListRoster(ctx, id, orgID)
		return err
	})
	if h.roles != nil {
		g.Go(func() error {
			var err error
			teamRoles, err = h.roles.ListRolesForTeam(ctx, id, orgID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"team":   team,
			"roster": members,
			"roles":  teamRoles,
		},
	})
}

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	team, err := h.service.CreateTeam(r.Context(), auth.UserIDFromContext(r.Context()), TeamInput{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
	})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": team})
}

func (h *Handler) updateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "team id must be numeric")
		return
	}
	var req teamRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	team, err := h.service.UpdateTeam(r.Context(), auth.UserIDFromContext(r.Context()), id, req.OrganizationID, TeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": team})
}

func (h *Handler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "team id must be numeric")
		return
	}
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	if err := h.service.DeleteTeam(r.Context(), auth.UserIDFromContext(r.Context()), id, orgID); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listRoster(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "team id must be numeric")
		return
	}
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	members, err := h.service.ListRoster(r.Context(), id, orgID)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": members, "count": len(members)})
}

func (h *Handler) replaceRoster(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "team id must be numeric")
		return
	}
	var req rosterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	results, err := h.service.ReplaceRoster(r.Context(), auth.UserIDFromContext(r.Context()), id, req.OrganizationID, req.Items)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}

	items := make([]rosterItemResponse, len(results))
	for i, res := range results {
		items[i] = rosterItemResponse{Status: string(res.Status)}
		if res.Err != nil {
			items[i].Error = res.Err.Error()
		} else {
			record := res.Record
			items[i].Record = &record
		}
	}
	created, updated, failed := reconcile.Counts(results)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":   items,
		"created": created,
		"updated": updated,
		"failed":  failed,
	})
}

func teamID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "teamID"), 10, 64)
}

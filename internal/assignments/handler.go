package assignments

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chorale-app/chorale/internal/platform/httpx"
	"github.com/chorale-app/chorale/internal/shared"
)

// Handler wires assignment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listAssignments)
	r.Put("/sync", h.syncAssignments)
	r.Delete("/{assignmentID}", h.revokeAssignment)
}

type syncRequest struct {
	UserID         int64    `json:"user_id" validate:"required"`
	OrganizationID int64    `json:"organization_id" validate:"required"`
	Roles          []Target `json:"roles"`
}

func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := Filter{}
	filter.UserID, _ = strconv.ParseInt(query.Get("user_id"), 10, 64)
	filter.OrganizationID, _ = strconv.ParseInt(query.Get("organization_id"), 10, 64)
	filter.RoleID, _ = strconv.ParseInt(query.Get("role_id"), 10, 64)
	filter.TeamID, _ = strconv.ParseInt(query.Get("team_id"), 10, 64)

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": list, "count": len(list)})
}

func (h *Handler) syncAssignments(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	final, err := h.service.Sync(r.Context(), req.UserID, req.OrganizationID, req.Roles)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": final, "count": len(final)})
}

func (h *Handler) revokeAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "assignmentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "assignment id must be numeric")
		return
	}
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	if err := h.service.Revoke(r.Context(), id, orgID); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

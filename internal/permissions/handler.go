package permissions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chorale-app/chorale/internal/auth"
	"github.com/chorale-app/chorale/internal/platform/httpx"
	"github.com/chorale-app/chorale/internal/reconcile"
	"github.com/chorale-app/chorale/internal/shared"
)

// Handler wires permission grant endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPermissions)
	r.Put("/bulk", h.bulkReplace)
	r.Delete("/{permissionID}", h.deletePermission)
}

type bulkReplaceRequest struct {
	OrganizationID int64            `json:"organization_id"`
	Items          []PermissionItem `json:"items"`
}

type bulkItemResponse struct {
	Status string      `json:"status"`
	Record *Permission `json:"record,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	perms, err := h.service.ListPermissions(r.Context(), orgID)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": perms, "count": len(perms)})
}

func (h *Handler) bulkReplace(w http.ResponseWriter, r *http.Request) {
	var req bulkReplaceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	results, err := h.service.BulkReplace(r.Context(), auth.UserIDFromContext(r.Context()), req.OrganizationID, req.Items)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}

	items := make([]bulkItemResponse, len(results))
	for i, res := range results {
		items[i] = bulkItemResponse{Status: string(res.Status)}
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

func (h *Handler) deletePermission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "permissionID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "permission id must be numeric")
		return
	}
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	if err := h.service.DeletePermission(r.Context(), auth.UserIDFromContext(r.Context()), id, orgID); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

package songs

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chorale-app/chorale/internal/auth"
	"github.com/chorale-app/chorale/internal/platform/httpx"
	"github.com/chorale-app/chorale/internal/shared"
)

// Handler wires song library endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers song routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSongs)
	r.Post("/", h.createSong)
	r.Get("/{songID}", h.getSong)
	r.Put("/{songID}", h.updateSong)
	r.Delete("/{songID}", h.deleteSong)
}

type createSongRequest struct {
	OrganizationID int64  `json:"organization_id" validate:"required"`
	Title          string `json:"title" validate:"required"`
	Artist         string `json:"artist"`
	Scale          string `json:"scale"`
	Tempo          string `json:"tempo"`
	Chords         string `json:"chords"`
	Rhythm         string `json:"rhythm"`
	Lyrics         string `json:"lyrics"`
}

type updateSongRequest struct {
	OrganizationID int64   `json:"organization_id" validate:"required"`
	Title          *string `json:"title"`
	Artist         *string `json:"artist"`
	Scale          *string `json:"scale"`
	Tempo          *string `json:"tempo"`
	Chords         *string `json:"chords"`
	Rhythm         *string `json:"rhythm"`
	Lyrics         *string `json:"lyrics"`
}

func (h *Handler) listSongs(w http.ResponseWriter, r *http.Request) {
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	filter := SongFilter{
		OrganizationID: orgID,
		Title:          r.URL.Query().Get("title"),
		Artist:         r.URL.Query().Get("artist"),
	}
	list, err := h.service.ListSongs(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": list, "count": len(list)})
}

func (h *Handler) getSong(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "songID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "song id must be numeric")
		return
	}
	song, err := h.service.GetSong(r.Context(), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": song})
}

func (h *Handler) createSong(w http.ResponseWriter, r *http.Request) {
	var req createSongRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	song, err := h.service.CreateSong(r.Context(), auth.UserIDFromContext(r.Context()), SongInput{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Artist:         req.Artist,
		Scale:          req.Scale,
		Tempo:          req.Tempo,
		Chords:         req.Chords,
		Rhythm:         req.Rhythm,
		Lyrics:         req.Lyrics,
	})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"data": song})
}

func (h *Handler) updateSong(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "songID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "song id must be numeric")
		return
	}
	var req updateSongRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	patch := SongPatch{
		Title:  req.Title,
		Artist: req.Artist,
		Scale:  req.Scale,
		Tempo:  req.Tempo,
		Chords: req.Chords,
		Rhythm: req.Rhythm,
		Lyrics: req.Lyrics,
	}
	song, err := h.service.UpdateSong(r.Context(), auth.UserIDFromContext(r.Context()), id, req.OrganizationID, patch)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": song})
}

func (h *Handler) deleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "songID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "song id must be numeric")
		return
	}
	orgID, _ := strconv.ParseInt(r.URL.Query().Get("organization_id"), 10, 64)
	if err := h.service.DeleteSong(r.Context(), auth.UserIDFromContext(r.Context()), id, orgID); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

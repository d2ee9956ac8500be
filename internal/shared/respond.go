package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/chorale-app/chorale/internal/platform/httpx"
	"github.com/chorale-app/chorale/internal/tenancy"
)

// RespondError maps domain errors onto problem-detail responses. Not-found
// and wrong-organization stay distinct statuses, matching the API contract.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.Is(err, tenancy.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, tenancy.ErrOrganizationMismatch):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, tenancy.ErrMissingOrganization):
		httpx.Problem(w, http.StatusBadRequest, "Missing Organization", err.Error())
	case errors.Is(err, httpx.ErrInvalidJSON):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
	case errors.As(err, &fieldErrs):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", fieldErrs.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

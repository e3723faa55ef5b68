package httpx

import (
	"errors"
	"net/http"

	"github.com/orgdesk/orgdesk/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Only
// validation failures carry structured detail; everything else gets a
// fixed, non-sensitive message.
func RespondError(w http.ResponseWriter, err error) {
	var vErr *shared.ValidationError
	switch {
	case errors.As(err, &vErr):
		ValidationProblem(w, vErr.Fields)
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "permission denied")
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", "resource conflict")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

package httpx

import (
	"errors"
	"net/http"

	"github.com/taskhive/taskhive/internal/shared"
)

type errorBody struct {
	Message    string              `json:"message"`
	StatusCode int                 `json:"status_code"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// RespondError maps domain errors to the API error contract: 403 for
// authorization denials with the fixed message, 404 for missing resources,
// 422 with per-field messages for validation failures, 500 otherwise.
func RespondError(w http.ResponseWriter, err error) {
	var vErr *shared.ValidationError
	switch {
	case errors.Is(err, shared.ErrUnauthorized):
		JSON(w, http.StatusForbidden, errorBody{
			Message:    shared.ErrUnauthorized.Error(),
			StatusCode: http.StatusForbidden,
		})
	case errors.Is(err, shared.ErrNotFound):
		JSON(w, http.StatusNotFound, errorBody{
			Message:    shared.ErrNotFound.Error(),
			StatusCode: http.StatusNotFound,
		})
	case errors.Is(err, shared.ErrInvalidCredentials):
		JSON(w, http.StatusUnauthorized, errorBody{
			Message:    shared.ErrInvalidCredentials.Error(),
			StatusCode: http.StatusUnauthorized,
		})
	case errors.As(err, &vErr):
		JSON(w, http.StatusUnprocessableEntity, errorBody{
			Message:    "The given data was invalid.",
			StatusCode: http.StatusUnprocessableEntity,
			Errors:     vErr.Fields,
		})
	default:
		JSON(w, http.StatusInternalServerError, errorBody{
			Message:    "internal error",
			StatusCode: http.StatusInternalServerError,
		})
	}
}

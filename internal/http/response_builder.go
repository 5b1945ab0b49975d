package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"boatshare/internal/budget"
	"boatshare/internal/core"
	applog "boatshare/internal/log"
)

var (
	errMalformedBody = errors.New("malformed request body")
	errInvalidVote   = errors.New(`vote must be "up" or "down"`)
	errInvalidQuery  = errors.New("invalid query parameter")
	errBodyTooLarge  = errors.New("request body too large")
)

type errorBody struct {
	Error string `json:"error"`
}

// validationErrors are reported to the client as 422.
var validationErrors = []error{
	core.ErrEmptyOwnerSet,
	core.ErrNonPositiveTerm,
	core.ErrNegativeAmount,
	core.ErrInvalidAmount,
	core.ErrEmptyName,
	core.ErrInvalidPrice,
	core.ErrInvalidInput,
	budget.ErrUnknownBoatType,
	budget.ErrInvalidFamily,
	errInvalidVote,
}

// statusFor maps an error from the service layer to a response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody), errors.Is(err, errInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrBoatNotFound):
		return http.StatusNotFound
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v before committing the status. An encoding failure
// becomes a logged 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if v == nil {
		w.WriteHeader(status)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Encode response failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: http.StatusText(status)})
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// writeError sends {"error": ...}. Internal errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		msg = http.StatusText(status)
	}
	writeJSON(w, r, status, errorBody{Error: msg})
}

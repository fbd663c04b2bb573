package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// writeError maps domain errors to status codes: validation failures
// are 422, reference conflicts 409, missing records 404, anything else
// 500 with the detail kept out of the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *core.ValidationError
		conflictErr   *core.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		writeErrorMessage(w, http.StatusUnprocessableEntity, validationErr.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidDate):
		writeErrorMessage(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &conflictErr):
		writeErrorMessage(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, core.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentHTTP,
			"error_type", log.ErrorTypeInternal,
			log.FieldError, err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}

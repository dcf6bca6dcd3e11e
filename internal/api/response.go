package api

import (
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/mkovacic/biblio/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// domainError maps store/lending failures to HTTP statuses. fallback is used
// for unclassified errors, which are also logged.
func domainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrUnavailable):
		jsonError(w, http.StatusConflict, "book is not available")
	case errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, "conflicting borrow, please retry")
	case errors.Is(err, store.ErrForbidden):
		jsonError(w, http.StatusForbidden, "not your transaction")
	case errors.Is(err, store.ErrInvariantViolation):
		slog.Error("availability invariant violated", "error", err)
		jsonError(w, http.StatusInternalServerError, "inconsistent catalog state")
	default:
		slog.Error(fallback, "error", err)
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}

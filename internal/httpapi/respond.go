package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"taskhub/internal/auth"
	"taskhub/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError logs the real error and maps it to a client-safe
// status and message. Storage details never reach the response body.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	log.Printf("[http] %s: %v", op, err)

	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrParentNotFound):
		writeError(w, http.StatusNotFound, "parent task not found")
	case errors.Is(err, service.ErrOwnershipMismatch):
		writeError(w, http.StatusForbidden, "user id mismatch")
	case errors.Is(err, service.ErrCyclicMove):
		writeError(w, http.StatusConflict, "move would create a cycle")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// StatusFor maps the application error taxonomy onto an HTTP status and a
// client-safe message.
func StatusFor(err error) (int, string, map[string]string) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		var details map[string]string
		if ve.Field != "" {
			details = map[string]string{ve.Field: ve.Message}
		}
		return http.StatusBadRequest, "validation error", details
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, nf.Resource + " not found", nil
	}
	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict, ce.Message, nil
	}
	return http.StatusInternalServerError, "database error", nil
}

func WriteAppError(w http.ResponseWriter, err error) {
	status, message, details := StatusFor(err)
	WriteError(w, status, message, details)
}

package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
)

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		details map[string]string
	}{
		{"validation", apperr.Required("patient_phone"), http.StatusBadRequest, "validation error", map[string]string{"patient_phone": "is required"}},
		{"not found", apperr.NotFound("appointment", "4"), http.StatusNotFound, "appointment not found", nil},
		{"conflict", apperr.Conflict("slot already booked"), http.StatusConflict, "slot already booked", nil},
		{"storage", apperr.Storage("x", errors.New("down")), http.StatusInternalServerError, "database error", nil},
		{"unknown", errors.New("?"), http.StatusInternalServerError, "database error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, tt.details, body.Details)
		})
	}
}

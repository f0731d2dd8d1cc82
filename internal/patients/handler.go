package patients

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

// AppointmentFinder lists the bookings linked to a patient.
type AppointmentFinder interface {
	ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error)
}

type Handler struct {
	service      *Service
	appointments AppointmentFinder
	log          *slog.Logger
}

func NewHandler(service *Service, appointments AppointmentFinder, log *slog.Logger) *Handler {
	return &Handler{service: service, appointments: appointments, log: log}
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 200)
	if err != nil {
		log.Warn("admin patients list: invalid pagination")
		transport.WriteError(w, http.StatusBadRequest, "invalid pagination", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.List(ctx, r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		log.Error("admin patients list: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin patients list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("admin patients get: invalid id")
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	p, err := h.service.Get(ctx, id)
	if err != nil {
		log.Warn("admin patients get: failed", slog.Int64("patient_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	appointments := []models.Appointment{}
	if h.appointments != nil {
		appointments, err = h.appointments.ListByPatient(ctx, id)
		if err != nil {
			log.Error("admin patients get: appointments failed", slog.Int64("patient_id", id), slog.String("error", err.Error()))
			transport.WriteAppError(w, err)
			return
		}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"patient":      p,
		"appointments": appointments,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

package availability

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

type Response struct {
	DoctorID       int64         `json:"doctorId"`
	Date           string        `json:"date"`
	Timezone       string        `json:"timezone"`
	Closed         bool          `json:"closed"`
	Slots          []models.Slot `json:"slots"`
	AvailableSlots []string      `json:"availableSlots"`
}

type Handler struct {
	calc *Calculator
	log  *slog.Logger
}

func NewHandler(calc *Calculator, log *slog.Logger) *Handler {
	return &Handler{calc: calc, log: log}
}

// Get serves GET /availability?doctor_id=&date=.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctorParam := q.Get("doctor_id")
	if doctorParam == "" {
		doctorParam = q.Get("doctorId")
	}
	h.serve(w, r, doctorParam, q.Get("date"))
}

// ByPath serves GET /bot/availability/{doctorID}/{date}.
func (h *Handler) ByPath(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "doctorID"), chi.URLParam(r, "date"))
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, doctorParam, date string) {
	log := h.logWithRequest(r)
	doctorID, err := httpx.ParseID(doctorParam)
	if err != nil {
		log.Warn("availability: invalid doctor id")
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"doctor_id": "is required"})
		return
	}
	date = strings.TrimSpace(date)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := h.calc.Slots(ctx, doctorID, date)
	if err != nil {
		log.Warn("availability: failed", slog.Int64("doctor_id", doctorID), slog.String("date", date), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	available := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			available = append(available, s.Time)
		}
	}
	log.Info("availability: ok", slog.Int64("doctor_id", doctorID), slog.String("date", date), slog.Int("free", len(available)))
	transport.WriteJSON(w, http.StatusOK, Response{
		DoctorID:       doctorID,
		Date:           date,
		Timezone:       h.calc.Location().String(),
		Closed:         len(slots) == 0,
		Slots:          slots,
		AvailableSlots: available,
	})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

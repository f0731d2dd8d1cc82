package appointments

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

// Create serves POST /appointments from the public web form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.ChannelWeb, "appointments create")
}

// CreateFromBot serves POST /bot/appointments; chat bookings are confirmed
// immediately.
func (h *Handler) CreateFromBot(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, models.ChannelChat, "bot appointments create")
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, channel, area string) {
	log := h.logWithRequest(r)
	raw, err := httpx.DecodeJSONMap(r.Body)
	if err != nil {
		log.Warn(area + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	in, err := NormalizeCreate(raw)
	if err != nil {
		log.Warn(area+": validation error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	a, err := h.service.Create(ctx, in, channel)
	if err != nil {
		log.Warn(area+": failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info(area+": ok",
		slog.Int64("appointment_id", a.ID),
		slog.String("date", a.Date),
		slog.String("time", a.Time),
		slog.String("status", a.Status),
	)
	transport.WriteJSON(w, http.StatusCreated, Created{Success: true, Token: a.Token, Appointment: a})
}

func (h *Handler) GetByToken(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	token := chi.URLParam(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.service.GetByToken(ctx, token)
	if err != nil {
		log.Warn("appointments by token: failed", slog.String("token", token), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ListByTelegram(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	telegramID := chi.URLParam(r, "telegramID")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListByTelegramID(ctx, telegramID)
	if err != nil {
		log.Warn("bot appointments list: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	q := r.URL.Query()
	limit, offset, err := httpx.ParseLimitOffset(q, 50, 500)
	if err != nil {
		log.Warn("admin appointments list: invalid pagination")
		transport.WriteError(w, http.StatusBadRequest, "invalid pagination", nil)
		return
	}
	filter := ListFilter{
		Status: q.Get("status"),
		Date:   q.Get("date"),
		Search: q.Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := q.Get("doctor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"doctor_id": "must be a number"})
			return
		}
		filter.DoctorID = id
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.List(ctx, filter)
	if err != nil {
		log.Warn("admin appointments list: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin appointments list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.service.Get(ctx, id)
	if err != nil {
		log.Warn("admin appointments get: failed", slog.Int64("appointment_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, a)
}

// AdminUpdateStatus serves PATCH /admin/appointments/{id}/status. The
// transition table can be bypassed with "override": true or ?override=true.
func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin appointments status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}
	override := req.Override || r.URL.Query().Get("override") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.service.UpdateStatus(ctx, id, req.Status, override)
	if err != nil {
		log.Warn("admin appointments status: failed", slog.Int64("appointment_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin appointments status: ok",
		slog.Int64("appointment_id", id),
		slog.String("status", a.Status),
		slog.Bool("override", override),
	)
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) AdminReschedule(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin appointments reschedule: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Normalize()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.service.Reschedule(ctx, id, req.Date, req.Time)
	if err != nil {
		log.Warn("admin appointments reschedule: failed", slog.Int64("appointment_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin appointments reschedule: ok", slog.Int64("appointment_id", id), slog.String("date", a.Date), slog.String("time", a.Time))
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) AdminCancel(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.service.Cancel(ctx, id)
	if err != nil {
		log.Warn("admin appointments cancel: failed", slog.Int64("appointment_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin appointments cancel: ok", slog.Int64("appointment_id", id))
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.logWithRequest(r).Warn("appointments: invalid id")
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

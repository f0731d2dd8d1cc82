package webchat

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

type ActionRequest struct {
	Action           string `json:"action" validate:"required,max=64"`
	ChatType         string `json:"chatType" validate:"required,oneof=post-booking general-inquiry"`
	AppointmentToken string `json:"appointmentToken" validate:"max=64"`
}

type MessageRequest struct {
	Message          string `json:"message" validate:"max=2000"`
	ChatType         string `json:"chatType" validate:"required,oneof=post-booking general-inquiry"`
	AppointmentToken string `json:"appointmentToken" validate:"max=64"`
}

type MenuResponse struct {
	Success bool         `json:"success"`
	Title   string       `json:"title"`
	Menu    []MenuOption `json:"menu"`
}

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

// Menu serves GET /chat/menu/{chatType}.
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	title, menu, err := h.service.Menu(chi.URLParam(r, "chatType"))
	if err != nil {
		h.logWithRequest(r).Warn("chat menu: invalid chat type")
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, MenuResponse{Success: true, Title: title, Menu: menu})
}

// Action serves POST /chat/action.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ActionRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("chat action: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Action = strings.TrimSpace(req.Action)
	req.ChatType = strings.TrimSpace(req.ChatType)
	if err := h.val.Struct(req); err != nil {
		log.Warn("chat action: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	resp, err := h.service.Action(ctx, req.ChatType, req.Action, req.AppointmentToken)
	if err != nil {
		log.Warn("chat action: failed",
			slog.String("chat_type", req.ChatType),
			slog.String("action", req.Action),
			slog.String("error", err.Error()),
		)
		transport.WriteAppError(w, err)
		return
	}
	log.Info("chat action: ok", slog.String("chat_type", req.ChatType), slog.String("action", req.Action))
	transport.WriteJSON(w, http.StatusOK, resp)
}

// Message serves POST /chat/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req MessageRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("chat message: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.ChatType = strings.TrimSpace(req.ChatType)
	if err := h.val.Struct(req); err != nil {
		log.Warn("chat message: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.Message(ctx, req.ChatType, req.Message)
	if err != nil {
		log.Warn("chat message: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

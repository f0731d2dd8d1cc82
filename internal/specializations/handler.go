package specializations

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/cache"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

const publicCacheKey = "specializations:public"

type Handler struct {
	service  *Service
	val      *validation.Validator
	log      *slog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger, c cache.Cache, cacheTTL time.Duration) *Handler {
	if c == nil {
		c = cache.NewNoop()
	}
	return &Handler{service: service, val: val, log: log, cache: c, cacheTTL: cacheTTL}
}

func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	if cached, ok, err := h.cache.Get(r.Context(), publicCacheKey); err == nil && ok {
		log.Info("specializations public list: cache hit")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, true)
	if err != nil {
		log.Error("specializations public list: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	_ = cache.SetJSON(r.Context(), h.cache, publicCacheKey, items, h.cacheTTL)
	log.Info("specializations public list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, false)
	if err != nil {
		log.Error("admin specializations list: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin specializations list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items, "total": len(items)})
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin specializations create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Normalize()
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin specializations create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Create(ctx, req)
	if err != nil {
		log.Warn("admin specializations create: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	h.invalidate(r.Context())
	log.Info("admin specializations create: ok", slog.Int64("specialization_id", item.ID))
	transport.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("admin specializations update: invalid id")
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin specializations update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Normalize()
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin specializations update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, req)
	if err != nil {
		log.Warn("admin specializations update: failed", slog.Int64("specialization_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	h.invalidate(r.Context())
	log.Info("admin specializations update: ok", slog.Int64("specialization_id", id))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminToggle(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Toggle(ctx, id)
	if err != nil {
		log.Warn("admin specializations toggle: failed", slog.Int64("specialization_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	h.invalidate(r.Context())
	log.Info("admin specializations toggle: ok", slog.Int64("specialization_id", id), slog.Bool("active", item.IsActive))
	transport.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		log.Warn("admin specializations delete: failed", slog.Int64("specialization_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	h.invalidate(r.Context())
	log.Info("admin specializations delete: ok", slog.Int64("specialization_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) invalidate(ctx context.Context) {
	if err := h.cache.Delete(ctx, publicCacheKey); err != nil {
		h.log.Warn("specializations cache: invalidate failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

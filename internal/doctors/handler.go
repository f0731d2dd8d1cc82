package doctors

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/cache"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

const cachePrefix = "doctors:"

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
	return &Handler{
		service:  service,
		val:      val,
		log:      log,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// PublicList serves GET /doctors. With ?specialization= it applies the
// on-call visibility policy.
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, strings.TrimSpace(r.URL.Query().Get("specialization")))
}

// BySpecialization serves GET /bot/doctors/specialization/{specialization}.
func (h *Handler) BySpecialization(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, strings.TrimSpace(chi.URLParam(r, "specialization")))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, specialization string) {
	log := h.logWithRequest(r)
	key := cachePrefix + "public:" + strings.ToLower(specialization)
	if cached, ok, err := h.cache.Get(r.Context(), key); err == nil && ok {
		log.Info("doctors public list: cache hit", slog.String("specialization", specialization))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cached)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var (
		items []models.Doctor
		err   error
	)
	if specialization != "" {
		items, err = h.service.ListBySpecialization(ctx, specialization)
	} else {
		items, err = h.service.ListActive(ctx)
	}
	if err != nil {
		log.Error("doctors public list: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	_ = cache.SetJSON(r.Context(), h.cache, key, items, h.cacheTTL)
	log.Info("doctors public list: ok", slog.String("specialization", specialization), slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("doctors get: invalid id")
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := h.service.Get(ctx, id)
	if err != nil {
		log.Warn("doctors get: failed", slog.Int64("doctor_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	q := r.URL.Query()
	filter := ListFilter{
		Specialization: q.Get("specialization"),
		Search:         q.Get("search"),
		ActiveOnly:     q.Get("active") == "true",
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.service.ListAdmin(ctx, filter)
	if err != nil {
		log.Error("admin doctors list: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	log.Info("admin doctors list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin doctors create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Normalize()
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin doctors create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	d, err := h.service.Create(ctx, req)
	if err != nil {
		log.Error("admin doctors create: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	h.invalidate(r.Context())
	log.Info("admin doctors create: ok", slog.Int64("doctor_id", d.ID))
	transport.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("admin doctors update: invalid id")
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	var req UpsertRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin doctors update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Normalize()
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin doctors update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	d, err := h.service.Update(ctx, id, req)
	if err != nil {
		log.Warn("admin doctors update: failed", slog.Int64("doctor_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	h.invalidate(r.Context())
	log.Info("admin doctors update: ok", slog.Int64("doctor_id", id))
	transport.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) AdminToggle(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("admin doctors toggle: invalid id")
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := h.service.Toggle(ctx, id)
	if err != nil {
		log.Warn("admin doctors toggle: failed", slog.Int64("doctor_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	h.invalidate(r.Context())
	log.Info("admin doctors toggle: ok", slog.Int64("doctor_id", id), slog.Bool("active", d.IsActive))
	transport.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, err := httpx.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("admin doctors delete: invalid id")
		transport.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		log.Warn("admin doctors delete: failed", slog.Int64("doctor_id", id), slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	h.invalidate(r.Context())
	log.Info("admin doctors delete: ok", slog.Int64("doctor_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) invalidate(ctx context.Context) {
	if err := h.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		h.log.Warn("doctors cache: invalidate failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

package admins

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/auth"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/httpx"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	SetupKey string `json:"setupKey" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type SettingsRequest struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email" validate:"omitempty,email"`
	WorkingHours string `json:"workingHours"`
}

type Handler struct {
	service      *Service
	manager      *auth.Manager
	val          *validation.Validator
	log          *slog.Logger
	setupKey     string
	cookieSecure bool
}

func NewHandler(service *Service, manager *auth.Manager, val *validation.Validator, log *slog.Logger, setupKey string, cookieSecure bool) *Handler {
	return &Handler{
		service:      service,
		manager:      manager,
		val:          val,
		log:          log,
		setupKey:     setupKey,
		cookieSecure: cookieSecure,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req RegisterRequest
	if !h.decode(w, r, &req, "admin register") {
		return
	}
	if h.setupKey == "" {
		log.Warn("admin register: setup key missing")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin registration not configured", nil)
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.SetupKey), []byte(h.setupKey)) != 1 {
		log.Warn("admin register: invalid setup key", slog.String("email", req.Email))
		transport.WriteError(w, http.StatusUnauthorized, "invalid setup key", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	a, err := h.service.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		log.Warn("admin register: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin register: ok", slog.Int64("admin_id", a.ID))
	transport.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req LoginRequest
	if !h.decode(w, r, &req, "admin login") {
		return
	}
	if h.manager == nil {
		log.Warn("admin login: not configured")
		transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	a, err := h.service.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		log.Warn("admin login: invalid credentials", slog.String("email", req.Email))
		transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if err != nil {
		log.Error("admin login: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}

	token, err := h.manager.NewAccessToken(a.ID, models.UserRoleAdmin)
	if err != nil {
		transport.WriteError(w, http.StatusInternalServerError, "token error", nil)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.manager.AccessTTL.Seconds()),
	})
	log.Info("admin login: ok", slog.Int64("admin_id", a.ID))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"admin":        a,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
		MaxAge:   -1,
	})
	h.logWithRequest(r).Info("admin logout: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.service.Profile(ctx, id)
	if err != nil {
		log.Warn("admin profile: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !h.decode(w, r, &req, "admin profile update") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	a, err := h.service.UpdateProfile(ctx, id, req.Name, req.Email)
	if err != nil {
		log.Warn("admin profile update: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin profile update: ok", slog.Int64("admin_id", id))
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	var req PasswordRequest
	if !h.decode(w, r, &req, "admin change password") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		log.Warn("admin change password: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin change password: ok", slog.Int64("admin_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.service.Settings(ctx)
	if err != nil {
		log.Error("hospital settings: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req SettingsRequest
	if !h.decode(w, r, &req, "hospital settings update") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	settings, err := h.service.SaveSettings(ctx, models.HospitalSettings{
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		Email:        req.Email,
		WorkingHours: req.WorkingHours,
	})
	if err != nil {
		log.Error("hospital settings update: failed", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("hospital settings update: ok")
	transport.WriteJSON(w, http.StatusOK, settings)
}

// adminID requires a JWT-authenticated admin; the static key has no profile.
func (h *Handler) adminID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.AdminIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusForbidden, "admin account required", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, area string) bool {
	log := h.logWithRequest(r)
	if err := httpx.DecodeJSON(r.Body, dst); err != nil {
		log.Warn(area + ": invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return false
	}
	if err := h.val.Struct(dst); err != nil {
		log.Warn(area + ": validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return false
	}
	return true
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

// Health reports 503 when the database is unreachable. A failing cache only
// degrades the report.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	status := http.StatusOK
	if s.DB == nil {
		checks["database"] = "disabled"
	} else if err := s.DB.Ping(ctx); err != nil {
		s.logWithRequest(r).Error("healthz: database unreachable", slog.String("error", err.Error()))
		checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if s.Cache != nil {
		checks["cache"] = "ok"
		if err := s.Cache.Ping(ctx); err != nil {
			s.logWithRequest(r).Warn("healthz: cache unreachable", slog.String("error", err.Error()))
			checks["cache"] = "unreachable"
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	transport.WriteJSON(w, status, map[string]interface{}{
		"status": overall,
		"checks": checks,
	})
}

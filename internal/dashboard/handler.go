package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

const fileStamp = "20060102_150405"

type Handler struct {
	service *Service
	log     *slog.Logger
}

func NewHandler(service *Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		log.Error("admin dashboard stats: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	log.Info("admin dashboard stats: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true, "stats": stats})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", WriteCSV)
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", WriteXLSX)
}

func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	stats, err := h.service.Stats(ctx)
	if err != nil {
		log.Error("admin export summary: database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	now := h.service.Now()
	var buf bytes.Buffer
	if err := WriteSummary(&buf, stats, now); err != nil {
		log.Error("admin export summary: render failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "export failed", nil)
		return
	}
	attach(w, "text/plain; charset=utf-8", "clinic_summary_"+now.Format(fileStamp)+".txt", buf.Bytes())
	log.Info("admin export summary: ok")
}

// export renders into a buffer first so a failure can still produce a JSON
// error instead of a truncated file.
func (h *Handler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, render func(io.Writer, Snapshot) error) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		log.Error("admin export "+ext+": database error", slog.String("error", err.Error()))
		transport.WriteAppError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, snap); err != nil {
		log.Error("admin export "+ext+": render failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "export failed", nil)
		return
	}
	attach(w, contentType, "clinic_data_"+snap.GeneratedAt.Format(fileStamp)+"."+ext, buf.Bytes())
	log.Info("admin export "+ext+": ok",
		slog.Int("doctors", len(snap.Doctors)),
		slog.Int("patients", len(snap.Patients)),
		slog.Int("appointments", len(snap.Appointments)))
}

func attach(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
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

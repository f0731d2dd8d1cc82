package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/transport"
)

const maxUploadBytes = 5 << 20

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Upload serves POST /admin/upload with a multipart "file" field and returns
// the hosted image URL.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	log := s.logWithRequest(r)
	if s.Uploader == nil {
		log.Warn("admin upload: uploader disabled")
		transport.WriteError(w, http.StatusServiceUnavailable, "uploads not configured", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("admin upload: file too large")
			transport.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		log.Warn("admin upload: missing file", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"file": "required"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		log.Warn("admin upload: file too large", slog.Int64("size", header.Size))
		transport.WriteError(w, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	contentType := http.DetectContentType(sniff[:n])
	if !imageTypes[contentType] {
		log.Warn("admin upload: not an image", slog.String("content_type", contentType))
		transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"file": "must be an image"})
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		log.Error("admin upload: rewind failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "upload failed", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	name := filepath.Base(strings.TrimSpace(header.Filename))
	url, err := s.Uploader.Upload(ctx, name, file)
	if err != nil {
		log.Error("admin upload: failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadGateway, "image upload failed", nil)
		return
	}

	log.Info("admin upload: ok", slog.String("filename", name), slog.Int64("size", header.Size))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

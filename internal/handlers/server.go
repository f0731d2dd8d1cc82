// Package handlers serves the small endpoints that do not belong to a single
// resource package: health, clinic info, concern classification and image
// upload.
package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/config"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/models"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ClinicSettings interface {
	Settings(ctx context.Context) (models.HospitalSettings, error)
}

type Classifier interface {
	Classify(text string) string
}

type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

type Server struct {
	Cfg        *config.Config
	DB         Pinger
	Cache      Pinger
	Clinic     ClinicSettings
	Classifier Classifier
	Uploader   Uploader
	Val        *validation.Validator
	Log        *slog.Logger
}

func (s *Server) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return s.Log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return s.Log.With(slog.String("request_id", id))
	}
	return s.Log
}

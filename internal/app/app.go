// Package app assembles the clinic service graph shared by the API server and
// the chat bot.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/admins"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/appointments"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/availability"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/banners"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/cache"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/classifier"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/config"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/dashboard"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/doctors"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/patients"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/specializations"
)

type Services struct {
	Admins          *admins.Service
	Appointments    *appointments.Service
	Availability    *availability.Calculator
	Banners         *banners.Service
	Classifier      *classifier.Classifier
	Dashboard       *dashboard.Service
	Doctors         *doctors.Service
	Patients        *patients.Service
	Specializations *specializations.Service
}

// New wires repositories and services over one pool. Hooks observe the
// appointment lifecycle.
func New(cfg *config.Config, pool *pgxpool.Pool, hooks ...appointments.Hook) *Services {
	doctorsSvc := doctors.NewService(
		doctors.NewRepository(pool),
		doctors.NewVisibilityPolicy(cfg.OnCallDoctorKeywords, cfg.FallbackDoctorKeyword),
	)
	appointmentsRepo := appointments.NewRepository(pool)
	calc := availability.NewCalculator(doctorsSvc, appointmentsRepo, cfg.Timezone)
	patientsSvc := patients.NewService(patients.NewRepository(pool))

	return &Services{
		Admins: admins.NewService(admins.NewRepository(pool), admins.DefaultSettings),
		Appointments: appointments.NewService(appointmentsRepo, patientsSvc, doctorsSvc, calc, cfg.Timezone,
			appointments.WithHooks(hooks...)),
		Availability:    calc,
		Banners:         banners.NewService(banners.NewRepository(pool)),
		Classifier:      classifier.Default(),
		Dashboard:       dashboard.NewService(dashboard.NewRepository(pool), cfg.Timezone),
		Doctors:         doctorsSvc,
		Patients:        patientsSvc,
		Specializations: specializations.NewService(specializations.NewRepository(pool)),
	}
}

// OpenCache returns the Redis cache when configured, else a no-op cache. The
// second result is nil without Redis.
func OpenCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (cache.Cache, *cache.RedisCache, error) {
	if !cfg.RedisEnabled() {
		log.Info("redis disabled, using no-op cache")
		return cache.NewNoop(), nil, nil
	}

	var (
		redisCache *cache.RedisCache
		err        error
	)
	if cfg.RedisURL != "" {
		redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis url: %w", err)
		}
	} else {
		redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		_ = redisCache.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	if cfg.RedisURL != "" {
		log.Info("redis connected (url)")
	} else {
		log.Info("redis connected", slog.String("addr", cfg.RedisAddr))
	}
	return redisCache, redisCache, nil
}

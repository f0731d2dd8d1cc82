package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/app"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/appointments"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/booking"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/config"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/db"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/logging"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/metrics"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/notifications"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	logger := logging.New(cfg.LogLevel).With(slog.String("component", "bot"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.Connect(bootCtx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Error("postgres connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("postgres connected")
	defer pool.Close()

	cacheStore, redisCache, err := app.OpenCache(bootCtx, cfg, logger)
	if err != nil {
		logger.Error("redis connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Error("telegram auth failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	api.Debug = cfg.BotDebug
	logger.Info("telegram authorized", slog.String("username", api.Self.UserName))

	var clinicMetrics *metrics.ClinicMetrics
	hooks := []appointments.Hook{}
	if cfg.MetricsEnabled {
		clinicMetrics = metrics.New(prometheus.NewRegistry())
		hooks = append(hooks, clinicMetrics)
	}
	svc := app.New(cfg, pool, hooks...)

	reminders := notifications.NewReminders(telegram.Sender{API: api}, logger)
	defer reminders.Stop()

	flow := booking.NewFlow(booking.Deps{
		Doctors:      svc.Doctors,
		Availability: svc.Availability,
		Appointments: svc.Appointments,
		Classifier:   svc.Classifier,
		Clinic:       svc.Admins,
		Reminders:    reminders,
	},
		booking.WithLocation(cfg.Timezone),
		booking.WithWindowDays(cfg.BookingWindowDays),
		booking.WithReminderDelay(time.Duration(cfg.ReminderDelayMinutes)*time.Minute),
	)

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	var sessions telegram.SessionStore
	if redisCache != nil {
		sessions = telegram.NewCacheStore(cacheStore, sessionTTL)
		logger.Info("bot sessions in redis")
	} else {
		sessions = telegram.NewMemoryStore(sessionTTL)
		logger.Info("bot sessions in memory")
	}

	var observer telegram.Observer
	if clinicMetrics != nil {
		observer = clinicMetrics
		go serveMetrics(ctx, logger, cfg.BotMetricsAddr, clinicMetrics)
	}

	bot := telegram.NewBot(api, flow, sessions, logger, observer)
	if err := bot.Run(ctx); err != nil {
		logger.Error("telegram bot stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("telegram bot shut down", slog.Int("pending_reminders", reminders.Pending()))
}

// serveMetrics exposes the bot's collectors on their own listener, since the
// bot runs without the API router.
func serveMetrics(ctx context.Context, logger *slog.Logger, addr string, m *metrics.ClinicMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics server error", slog.String("error", err.Error()))
	}
}

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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/admins"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/app"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/appointments"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/auth"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/availability"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/banners"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/booking"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/config"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/dashboard"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/db"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/doctors"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/handlers"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/logging"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/metrics"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/middleware"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/notifications"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/patients"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/specializations"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/uploads"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/validation"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/webchat"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	if cfg.AutoMigrate {
		version, err := db.Migrate(cfg.DatabaseURL)
		if err != nil {
			logger.Error("postgres migrate failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("postgres migrated", slog.Uint64("version", uint64(version)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Error("postgres connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("postgres connected")
	defer pool.Close()

	cacheStore, redisCache, err := app.OpenCache(ctx, cfg, logger)
	if err != nil {
		logger.Error("redis connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	var clinicMetrics *metrics.ClinicMetrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		clinicMetrics = metrics.New(reg)
	}

	hooks := []appointments.Hook{}
	if clinicMetrics != nil {
		hooks = append(hooks, clinicMetrics)
	}

	var emailHook *notifications.EmailHook
	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
		settings := admins.NewService(admins.NewRepository(pool), admins.DefaultSettings)
		emailHook = notifications.NewEmailHook(mailer, settings, logger)
		hooks = append(hooks, emailHook)
	}

	svc := app.New(cfg, pool, hooks...)

	var uploader handlers.Uploader
	if cld, err := uploads.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder); err != nil {
		logger.Info("image uploads disabled", slog.String("reason", err.Error()))
	} else {
		uploader = cld
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.AccessTTLMinutes)*time.Minute)
	val := validation.New()
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	server := &handlers.Server{
		Cfg:        cfg,
		DB:         pool,
		Clinic:     svc.Admins,
		Classifier: svc.Classifier,
		Uploader:   uploader,
		Val:        val,
		Log:        logger,
	}
	if redisCache != nil {
		server.Cache = redisCache
	}

	adminsHandler := admins.NewHandler(svc.Admins, jwtManager, val, logger, cfg.AdminSetupKey, cfg.CookieSecure)
	appointmentsHandler := appointments.NewHandler(svc.Appointments, val, logger)
	availabilityHandler := availability.NewHandler(svc.Availability, logger)
	bannersHandler := banners.NewHandler(svc.Banners, val, logger, cacheStore, cacheTTL)
	dashboardHandler := dashboard.NewHandler(svc.Dashboard, logger)
	doctorsHandler := doctors.NewHandler(svc.Doctors, val, logger, cacheStore, cacheTTL)
	patientsHandler := patients.NewHandler(svc.Patients, svc.Appointments, logger)
	specializationsHandler := specializations.NewHandler(svc.Specializations, val, logger, cacheStore, cacheTTL)

	// the widget shares the bot's conversation logic; reminders stay with the bot
	chatFlow := booking.NewFlow(booking.Deps{
		Doctors:      svc.Doctors,
		Availability: svc.Availability,
		Appointments: svc.Appointments,
		Classifier:   svc.Classifier,
		Clinic:       svc.Admins,
	},
		booking.WithLocation(cfg.Timezone),
		booking.WithWindowDays(cfg.BookingWindowDays),
	)
	chatHandler := webchat.NewHandler(
		webchat.NewService(chatFlow, svc.Classifier, webchat.WithBotUsername(cfg.TelegramBotUsername)),
		val, logger,
	)
	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(clinicMetrics.Middleware)
	r.Use(middleware.CORS(cfg.FrontendOrigins))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	appointmentsLimiter := middleware.NewRateLimiter(cfg.RateLimitAppointments, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	if redisCache != nil {
		appointmentsLimiter.WithCounter(redisCache, logger)
	}
	adminAuth := middleware.AdminAuth(cfg.AdminAPIKey, jwtManager)

	r.Get("/healthz", server.Health)
	if clinicMetrics != nil {
		r.Handle("/metrics", clinicMetrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/clinic", server.GetClinic)
		api.Get("/settings/hospital", adminsHandler.Settings)
		api.With(adminAuth).Put("/settings/hospital", adminsHandler.UpdateSettings)
		api.Post("/ai/specialization", server.ClassifySpecialization)

		api.Get("/specializations", specializationsHandler.PublicList)
		api.Get("/doctors", doctorsHandler.PublicList)
		api.Get("/doctors/{id}", doctorsHandler.Get)
		api.Get("/banners", bannersHandler.PublicList)
		api.Get("/banners/{id}", bannersHandler.Get)
		api.Get("/availability", availabilityHandler.Get)
		api.With(appointmentsLimiter.Middleware).Post("/appointments", appointmentsHandler.Create)
		api.Get("/appointments/token/{token}", appointmentsHandler.GetByToken)

		api.Route("/chat", func(chat chi.Router) {
			chat.Get("/menu/{chatType}", chatHandler.Menu)
			chat.With(appointmentsLimiter.Middleware).Post("/action", chatHandler.Action)
			chat.Post("/message", chatHandler.Message)
		})

		api.Route("/bot", func(bot chi.Router) {
			bot.Get("/doctors", doctorsHandler.PublicList)
			bot.Get("/doctors/specialization/{specialization}", doctorsHandler.BySpecialization)
			bot.Get("/availability/{doctorID}/{date}", availabilityHandler.ByPath)
			bot.Post("/appointments", appointmentsHandler.CreateFromBot)
			bot.Get("/appointments/telegram/{telegramID}", appointmentsHandler.ListByTelegram)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/register", adminsHandler.Register)
			admin.Post("/login", adminsHandler.Login)
			admin.Post("/logout", adminsHandler.Logout)

			admin.Group(func(protected chi.Router) {
				protected.Use(adminAuth)

				protected.Get("/profile", adminsHandler.Profile)
				protected.Put("/profile", adminsHandler.UpdateProfile)
				protected.Post("/change-password", adminsHandler.ChangePassword)
				protected.Post("/upload", server.Upload)

				protected.Get("/dashboard/stats", dashboardHandler.Stats)
				protected.Get("/export/csv", dashboardHandler.ExportCSV)
				protected.Get("/export/xlsx", dashboardHandler.ExportXLSX)
				protected.Get("/export/summary", dashboardHandler.ExportSummary)

				protected.Get("/specializations", specializationsHandler.AdminList)
				protected.Post("/specializations", specializationsHandler.AdminCreate)
				protected.Put("/specializations/{id}", specializationsHandler.AdminUpdate)
				protected.Patch("/specializations/{id}/toggle", specializationsHandler.AdminToggle)
				protected.Delete("/specializations/{id}", specializationsHandler.AdminDelete)

				protected.Get("/doctors", doctorsHandler.AdminList)
				protected.Post("/doctors", doctorsHandler.AdminCreate)
				protected.Put("/doctors/{id}", doctorsHandler.AdminUpdate)
				protected.Patch("/doctors/{id}/toggle", doctorsHandler.AdminToggle)
				protected.Delete("/doctors/{id}", doctorsHandler.AdminDelete)

				protected.Get("/patients", patientsHandler.AdminList)
				protected.Get("/patients/{id}", patientsHandler.AdminGet)

				protected.Get("/appointments", appointmentsHandler.AdminList)
				protected.Get("/appointments/{id}", appointmentsHandler.AdminGet)
				protected.Patch("/appointments/{id}/status", appointmentsHandler.AdminUpdateStatus)
				protected.Patch("/appointments/{id}/reschedule", appointmentsHandler.AdminReschedule)
				protected.Delete("/appointments/{id}", appointmentsHandler.AdminCancel)

				protected.Get("/banners", bannersHandler.AdminList)
				protected.Post("/banners", bannersHandler.AdminCreate)
				protected.Put("/banners/{id}", bannersHandler.AdminUpdate)
				protected.Patch("/banners/{id}/toggle", bannersHandler.AdminToggle)
				protected.Delete("/banners/{id}", bannersHandler.AdminDelete)
			})
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	emailHook.Close()
}

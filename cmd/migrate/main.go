package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/config"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/db"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/logging"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	if err := cfg.RequireDatabase(); err != nil {
		logger.Error("migrate: missing database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *down > 0 {
		if err := db.Down(cfg.DatabaseURL, *down); err != nil {
			logger.Error("migrate down failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrate down ok", slog.Int("steps", *down))
		return
	}

	version, err := db.Migrate(cfg.DatabaseURL)
	if err != nil {
		logger.Error("migrate up failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("migrate up ok", slog.Uint64("version", uint64(version)))
}

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                   string
	LogLevel              string
	ServerAddr            string
	DatabaseURL           string
	DBMaxConns            int
	FrontendOrigins       []string
	RateLimitAppointments int
	RateLimitWindowSec    int
	RedisURL              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	CacheTTLSeconds       int
	SessionTTLMinutes     int
	AdminAPIKey           string
	AdminSetupKey         string
	JWTSecret             string
	AccessTTLMinutes      int
	CookieSecure          bool
	Timezone              *time.Location
	TelegramBotToken      string
	TelegramBotUsername   string
	BotDebug              bool
	BrevoAPIKey           string
	BrevoSenderEmail      string
	BrevoSenderName       string
	BrevoSandbox          bool
	CloudinaryURL         string
	CloudinaryFolder      string
	OnCallDoctorKeywords  []string
	FallbackDoctorKeyword string
	BookingWindowDays     int
	ReminderDelayMinutes  int
	MetricsEnabled        bool
	BotMetricsAddr        string
	AutoMigrate           bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads the process environment. A .env file in the working directory
// is applied first without overriding variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("TZ", "Asia/Kolkata"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DBMaxConns:            getEnvInt("DB_MAX_CONNS", 10),
		FrontendOrigins:       getEnvList("FRONTEND_ORIGINS", "http://localhost:3000"),
		RateLimitAppointments: getEnvInt("RATE_LIMIT_APPOINTMENTS", 10),
		RateLimitWindowSec:    getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds:       getEnvInt("CACHE_TTL_SECONDS", 60),
		SessionTTLMinutes:     getEnvInt("SESSION_TTL_MINUTES", 720),
		ReminderDelayMinutes:  getEnvInt("REMINDER_DELAY_MINUTES", 60),
		AdminAPIKey:           getEnv("ADMIN_API_KEY", ""),
		AdminSetupKey:         getEnv("ADMIN_SETUP_KEY", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:      getEnvInt("ACCESS_TTL_MINUTES", 1440),
		CookieSecure:          getEnvBool("COOKIE_SECURE", false),
		Timezone:              loc,
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramBotUsername:   getEnv("TELEGRAM_BOT_USERNAME", ""),
		BotDebug:              getEnvBool("BOT_DEBUG", false),
		BrevoAPIKey:           getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:      getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:       getEnv("BREVO_SENDER_NAME", "Sree Sarojaa Dental Clinic"),
		BrevoSandbox:          getEnvBool("BREVO_SANDBOX", false),
		CloudinaryURL:         getEnv("CLOUDINARY_URL", ""),
		CloudinaryFolder:      getEnv("CLOUDINARY_FOLDER", "banners"),
		OnCallDoctorKeywords:  getEnvList("ONCALL_DOCTOR_KEYWORDS", "kannan,vijayapriya"),
		FallbackDoctorKeyword: getEnv("FALLBACK_DOCTOR_KEYWORD", "vijayapriya"),
		BookingWindowDays:     getEnvInt("BOOKING_WINDOW_DAYS", 365),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		BotMetricsAddr:        getEnv("BOT_METRICS_ADDR", ":9091"),
		AutoMigrate:           getEnvBool("AUTO_MIGRATE", true),
	}

	return cfg, nil
}

// RequireDatabase fails when no DATABASE_URL was configured.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisAddr != ""
}

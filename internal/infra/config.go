package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	StorageDriver       string
	DatabaseURL         string
	JWTSecret           string
	JWTIssuer           string
	JWTTTL              time.Duration
	JWKSURL             string
	OIDCIssuer          string
	AllowedOrigins      []string
	LogFile             string
	GeoIPDBPath         string
	PlansFile           string
	DefaultPlan         string
	NotifyWebhookURL    string
	NotifyWebhookSecret string
	NotifyWebhookTTL    time.Duration
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
	SweepInterval       time.Duration
	ReminderWindow      time.Duration
	SubscriptionWarning time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		StorageDriver:       strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTIssuer:           getEnv("JWT_ISSUER", "taskflow"),
		JWTTTL:              time.Hour * time.Duration(getEnvInt("JWT_TTL_HOURS", 24)),
		JWKSURL:             os.Getenv("JWKS_URL"),
		OIDCIssuer:          os.Getenv("OIDC_ISSUER"),
		AllowedOrigins:      getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogFile:             os.Getenv("LOG_FILE"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		PlansFile:           os.Getenv("PLANS_FILE"),
		DefaultPlan:         getEnv("DEFAULT_PLAN", "Free"),
		NotifyWebhookURL:    os.Getenv("NOTIFY_WEBHOOK_URL"),
		NotifyWebhookSecret: os.Getenv("NOTIFY_WEBHOOK_SECRET"),
		NotifyWebhookTTL:    time.Second * time.Duration(getEnvInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		SweepInterval:       time.Second * time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 3600)),
		ReminderWindow:      time.Hour * time.Duration(getEnvInt("REMINDER_WINDOW_HOURS", 24)),
		SubscriptionWarning: time.Hour * 24 * time.Duration(getEnvInt("SUBSCRIPTION_WARNING_DAYS", 3)),
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

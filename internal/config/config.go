package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultDBPath            = "./dev.db"
	defaultPort              = "8080"
	defaultAppEnv            = "development"
	defaultLogLevel          = "info"
	defaultRoundingThreshold = 0.20
	defaultTaxCountry        = "CA"
	defaultRateLimitRequests = 30
	defaultRateLimitWindow   = 15 * time.Minute
	defaultRateLimitStore    = "memory"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	DBPath             string
	LogLevel           string
	LogFormat          string
	AdminAPIToken      string
	CORSAllowedOrigins []string
	RoundingThreshold  float64
	TaxDefaultCountry  string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	RateLimitStore     string
	TrustProxy         bool
	AutoMigrate        bool

	// Warnings lists problems found while loading; the caller logs them once a logger exists.
	Warnings []string
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.AppEnv == "development"
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production injects real environment variables.
	var warnings []string
	if err := loadDotEnv(".env"); err != nil {
		warnings = append(warnings, fmt.Sprintf("could not load .env: %v", err))
	}

	cfg := Config{
		AppEnv:            strings.ToLower(os.Getenv("APP_ENV")),
		Port:              os.Getenv("PORT"),
		DBPath:            os.Getenv("DB_PATH"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		LogFormat:         os.Getenv("LOG_FORMAT"),
		AdminAPIToken:     os.Getenv("ADMIN_API_TOKEN"),
		TaxDefaultCountry: strings.ToUpper(os.Getenv("TAX_DEFAULT_COUNTRY")),
		RateLimitStore:    strings.ToLower(os.Getenv("RATE_LIMIT_STORE")),
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = defaultAppEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
		if cfg.IsDev() {
			cfg.LogFormat = "console"
		}
	}
	if cfg.TaxDefaultCountry == "" {
		cfg.TaxDefaultCountry = defaultTaxCountry
	}

	switch cfg.RateLimitStore {
	case "":
		cfg.RateLimitStore = defaultRateLimitStore
	case "memory", "sqlite":
	default:
		warnings = append(warnings, fmt.Sprintf("RATE_LIMIT_STORE=%q is not memory or sqlite, using %s", cfg.RateLimitStore, defaultRateLimitStore))
		cfg.RateLimitStore = defaultRateLimitStore
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.RoundingThreshold = parseFloat("ROUNDING_THRESHOLD", defaultRoundingThreshold, &warnings)
	if cfg.RoundingThreshold <= 0 || cfg.RoundingThreshold >= 1 {
		warnings = append(warnings, fmt.Sprintf("ROUNDING_THRESHOLD=%v must be in (0,1), using %v", cfg.RoundingThreshold, defaultRoundingThreshold))
		cfg.RoundingThreshold = defaultRoundingThreshold
	}
	cfg.RateLimitRequests = parseInt("RATE_LIMIT_REQUESTS", defaultRateLimitRequests, &warnings)
	if cfg.RateLimitRequests <= 0 {
		warnings = append(warnings, fmt.Sprintf("RATE_LIMIT_REQUESTS must be positive, using %d", defaultRateLimitRequests))
		cfg.RateLimitRequests = defaultRateLimitRequests
	}
	cfg.RateLimitWindow = parseDuration("RATE_LIMIT_WINDOW", defaultRateLimitWindow, &warnings)
	if cfg.RateLimitWindow <= 0 {
		warnings = append(warnings, fmt.Sprintf("RATE_LIMIT_WINDOW must be positive, using %s", defaultRateLimitWindow))
		cfg.RateLimitWindow = defaultRateLimitWindow
	}
	cfg.TrustProxy = parseBool("TRUST_PROXY", false, &warnings)
	cfg.AutoMigrate = parseBool("AUTO_MIGRATE", cfg.IsDev(), &warnings)

	if cfg.AdminAPIToken == "" {
		warnings = append(warnings, "ADMIN_API_TOKEN is not set; staff endpoints are disabled")
	}

	cfg.Warnings = warnings
	return cfg
}

func parseFloat(key string, def float64, warnings *[]string) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s=%q is not a number, using %v", key, raw, def))
		return def
	}
	return v
}

func parseInt(key string, def int, warnings *[]string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s=%q is not an integer, using %d", key, raw, def))
		return def
	}
	return v
}

func parseDuration(key string, def time.Duration, warnings *[]string) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s=%q is not a duration, using %s", key, raw, def))
		return def
	}
	return v
}

func parseBool(key string, def bool, warnings *[]string) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s=%q is not a boolean, using %t", key, raw, def))
		return def
	}
	return v
}

package config

import (
	"testing"
	"time"
)

var configKeys = []string{
	"APP_ENV", "PORT", "DB_PATH", "LOG_LEVEL", "LOG_FORMAT", "ADMIN_API_TOKEN",
	"CORS_ALLOWED_ORIGINS", "ROUNDING_THRESHOLD", "TAX_DEFAULT_COUNTRY",
	"RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_STORE", "AUTO_MIGRATE",
	"TRUST_PROXY",
}

// chdir moves into an empty directory so a developer's .env does not leak into Load.
func chdir(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	unset(t, configKeys...)
	chdir(t)

	cfg := Load()

	if !cfg.IsDev() {
		t.Fatalf("AppEnv = %q, want development", cfg.AppEnv)
	}
	if cfg.Port != "8080" || cfg.DBPath != "./dev.db" {
		t.Fatalf("port/db = %q/%q", cfg.Port, cfg.DBPath)
	}
	if cfg.LogFormat != "console" || cfg.LogLevel != "info" {
		t.Fatalf("log = %q/%q", cfg.LogFormat, cfg.LogLevel)
	}
	if cfg.RoundingThreshold != 0.20 || cfg.TaxDefaultCountry != "CA" {
		t.Fatalf("threshold/country = %v/%q", cfg.RoundingThreshold, cfg.TaxDefaultCountry)
	}
	if cfg.RateLimitRequests != 30 || cfg.RateLimitWindow != 15*time.Minute || cfg.RateLimitStore != "memory" {
		t.Fatalf("rate limit = %d/%s/%s", cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitStore)
	}
	if !cfg.AutoMigrate {
		t.Fatalf("AutoMigrate = false, want true in development")
	}
	if cfg.TrustProxy {
		t.Fatalf("TrustProxy = true, want false unless configured")
	}
	if len(cfg.Warnings) != 1 {
		t.Fatalf("warnings = %v, want only the admin token warning", cfg.Warnings)
	}
}

func TestLoad_ProductionValues(t *testing.T) {
	unset(t, configKeys...)
	chdir(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("ADMIN_API_TOKEN", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("RATE_LIMIT_STORE", "sqlite")
	t.Setenv("TRUST_PROXY", "true")

	cfg := Load()

	if cfg.IsDev() || cfg.LogFormat != "json" || cfg.AutoMigrate {
		t.Fatalf("production defaults not applied: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRequests != 5 || cfg.RateLimitWindow != time.Minute || cfg.RateLimitStore != "sqlite" {
		t.Fatalf("rate limit = %d/%s/%s", cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitStore)
	}
	if !cfg.TrustProxy {
		t.Fatalf("TrustProxy = false, want true")
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none", cfg.Warnings)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	unset(t, configKeys...)
	chdir(t)
	t.Setenv("ADMIN_API_TOKEN", "secret")
	t.Setenv("ROUNDING_THRESHOLD", "1.5")
	t.Setenv("RATE_LIMIT_REQUESTS", "many")
	t.Setenv("RATE_LIMIT_WINDOW", "soon")
	t.Setenv("RATE_LIMIT_STORE", "redis")
	t.Setenv("AUTO_MIGRATE", "maybe")

	cfg := Load()

	if cfg.RoundingThreshold != 0.20 || cfg.RateLimitRequests != 30 || cfg.RateLimitWindow != 15*time.Minute {
		t.Fatalf("fallbacks not applied: %+v", cfg)
	}
	if cfg.RateLimitStore != "memory" || !cfg.AutoMigrate {
		t.Fatalf("fallbacks not applied: %+v", cfg)
	}
	if len(cfg.Warnings) != 5 {
		t.Fatalf("warnings = %d %v, want 5", len(cfg.Warnings), cfg.Warnings)
	}
}

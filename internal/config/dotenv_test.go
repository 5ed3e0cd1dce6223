package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unset clears keys for the test and restores them afterwards. godotenv treats
// a variable set to "" as present, so t.Setenv alone is not enough.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unsetenv %s: %v", k, err)
		}
	}
}

func writeDotEnv(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadDotEnv_ReadsQuotesAndExports(t *testing.T) {
	unset(t, "ADMIN_API_TOKEN", "RATE_LIMIT_WINDOW", "CORS_ALLOWED_ORIGINS")

	path := writeDotEnv(t, t.TempDir(), `
# staff token for local testing
ADMIN_API_TOKEN=dev-token
export RATE_LIMIT_WINDOW=90s
CORS_ALLOWED_ORIGINS='http://localhost:5173'
`)

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	for key, want := range map[string]string{
		"ADMIN_API_TOKEN":      "dev-token",
		"RATE_LIMIT_WINDOW":    "90s",
		"CORS_ALLOWED_ORIGINS": "http://localhost:5173",
	} {
		if got := os.Getenv(key); got != want {
			t.Fatalf("%s=%q, want %q", key, got, want)
		}
	}
}

func TestLoadDotEnv_EnvironmentWins(t *testing.T) {
	t.Setenv("DB_PATH", "/var/lib/quotes.db")

	path := writeDotEnv(t, t.TempDir(), "DB_PATH=./from-file.db\n")
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("DB_PATH"); got != "/var/lib/quotes.db" {
		t.Fatalf("DB_PATH=%q, want the environment value", got)
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
}

func TestLoad_ReadsDotEnvFromWorkingDirectory(t *testing.T) {
	unset(t, configKeys...)
	dir := t.TempDir()
	writeDotEnv(t, dir, "APP_ENV=production\nADMIN_API_TOKEN=from-file\nRATE_LIMIT_WINDOW=2m\n")
	t.Chdir(dir)

	cfg := Load()

	if cfg.IsDev() || cfg.AdminAPIToken != "from-file" {
		t.Fatalf("env/token = %q/%q", cfg.AppEnv, cfg.AdminAPIToken)
	}
	if cfg.RateLimitWindow != 2*time.Minute {
		t.Fatalf("RateLimitWindow = %s, want 2m", cfg.RateLimitWindow)
	}
	if cfg.AutoMigrate {
		t.Fatalf("AutoMigrate = true, want false outside development")
	}
	if len(cfg.Warnings) != 0 {
		t.Fatalf("warnings = %v, want none", cfg.Warnings)
	}
}

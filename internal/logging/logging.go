// Package logging builds zap loggers and the HTTP access-log middleware.
package logging

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, console).
	Format string
	// Output is stdout, stderr or a file path.
	Output string
	// Development enables development mode (stack traces on warn, DPanic panics).
	Development bool
}

// DefaultConfig returns console logging at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// New builds a logger from cfg. An unknown level falls back to info.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var ws zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stderr":
		ws = zapcore.AddSync(os.Stderr)
	case "stdout":
		ws = zapcore.AddSync(os.Stdout)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log output %q: %w", cfg.Output, err)
		}
		ws = zapcore.AddSync(f)
	}

	core := zapcore.NewCore(encoder, ws, level)
	if cfg.Development {
		return zap.New(core, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
	}
	return zap.New(core, zap.AddCaller()), nil
}

// RequestLogger logs one line per request. 5xx responses log at error, 4xx at warn.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}

			switch {
			case status >= 500:
				logger.Error("request", fields...)
			case status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
		})
	}
}

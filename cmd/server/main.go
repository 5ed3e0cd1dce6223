package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/quote.works/internal/config"
	"github.com/Simplici0/quote.works/internal/db"
	"github.com/Simplici0/quote.works/internal/logging"
	"github.com/Simplici0/quote.works/internal/migrations"
	"github.com/Simplici0/quote.works/internal/quote"
	"github.com/Simplici0/quote.works/internal/ratelimit"
	"github.com/Simplici0/quote.works/internal/seed"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      "stderr",
		Development: cfg.IsDev(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := migrations.Up(database, logger); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
		stats, err := seed.Run(context.Background(), database, seed.Config{RoundingThreshold: cfg.RoundingThreshold})
		if err != nil {
			return fmt.Errorf("seed reference data: %w", err)
		}
		logger.Info("seed complete", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var store ratelimit.Store
	switch cfg.RateLimitStore {
	case "sqlite":
		sqlStore := ratelimit.NewSQLStore(database)
		go pruneRateLimits(ctx, sqlStore, cfg.RateLimitWindow, logger)
		store = sqlStore
	default:
		store = ratelimit.NewMemoryStore()
	}

	srv := &server{
		db:         database,
		quotes:     quote.NewService(quote.NewStore(database), logger.Named("quote"), quote.WithDefaultCountry(cfg.TaxDefaultCountry)),
		limiter:    ratelimit.New(store, cfg.RateLimitRequests, cfg.RateLimitWindow),
		logger:     logger,
		adminToken: cfg.AdminAPIToken,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(routeOptions{AllowedOrigins: cfg.CORSAllowedOrigins, TrustProxy: cfg.TrustProxy}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}

func pruneRateLimits(ctx context.Context, store *ratelimit.SQLStore, every time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.Prune(ctx, now)
			if err != nil {
				logger.Warn("prune rate limits", zap.Error(err))
				continue
			}
			logger.Debug("pruned rate limits", zap.Int64("rows", n))
		}
	}
}

type server struct {
	db         *sql.DB
	quotes     *quote.Service
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
	adminToken string
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Simplici0/quote.works/internal/logging"
	"github.com/Simplici0/quote.works/internal/ratelimit"
)

// routeOptions configures the router. TrustProxy honours X-Forwarded-For and
// X-Real-IP; only set it behind a proxy that overwrites those headers, or
// clients pick their own rate limit key.
type routeOptions struct {
	AllowedOrigins []string
	TrustProxy     bool
}

func (s *server) routes(opts routeOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Location", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.handleHealth)

	limited := s.limiter.Middleware(s.logger.Named("ratelimit"), ratelimit.ClientIP)
	staff := requireAdminToken(s.adminToken)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)

		r.Route("/quotes", func(r chi.Router) {
			r.With(limited).Post("/estimate", s.handleEstimate)
			r.With(limited).Post("/", s.handleCreateQuote)
			r.Get("/{id}", s.handleGetQuote)
			r.Get("/{id}/text", s.handleQuoteText)

			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Get("/", s.handleListQuotes)
				r.Post("/{id}/reprice", s.handleRepriceQuote)
				r.Post("/{id}/rebill", s.handleRebillQuote)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(staff)
			r.Get("/quotes/{id}", s.handleStaffQuote)
			r.Get("/quotes/{id}/text", s.handleStaffQuoteText)
			r.Get("/settings", s.handleGetSettings)
			r.Put("/settings", s.handleUpdateSettings)
			r.Get("/tax-regions", s.handleListTaxRegions)
			r.Post("/tax-regions", s.handleCreateTaxRegion)
			r.Put("/tax-regions/{id}", s.handleUpdateTaxRegion)
			r.Get("/certification-types", s.handleListCertificationTypes)
			r.Post("/certification-types", s.handleCreateCertificationType)
			r.Put("/certification-types/{id}", s.handleUpdateCertificationType)
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

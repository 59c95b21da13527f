package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"carmarket/internal/config"
	custommw "carmarket/internal/middleware"
)

// NewRouter assembles the full API surface with the standard
// middleware chain.
func NewRouter(cfg *config.Config, service MarketService, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	if cfg.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	system := NewSystemHandler(service, logger)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", system.Health)
		r.Get("/version", system.Version)
		r.Get("/status", system.Status)
		r.Get("/quality", system.GetQualityReports)
		r.Get("/validation", system.GetValidationReport)
		r.Get("/insights", system.GetInsights)
		r.Post("/reload", system.Reload)

		r.Mount("/market", NewMarketHandler(service, logger).Routes())
		r.Mount("/analytics", NewAnalyticsHandler(service, logger).Routes())
	})

	return r
}

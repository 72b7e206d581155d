// Package app contains the application setup for the Ferremas backend.
package app

import (
	"log/slog"
	"net/http"

	"github.com/ferremas/backend/internal/client/payment"
	"github.com/ferremas/backend/internal/client/rates"
	"github.com/ferremas/backend/internal/config"
	"github.com/ferremas/backend/internal/service"
	"github.com/ferremas/backend/internal/store"
	"github.com/ferremas/backend/internal/transport/rest"
	"github.com/ferremas/backend/pkg/metrics"
	"github.com/ferremas/backend/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Dependencies struct {
	CatalogService service.CatalogService
	Rates          *rates.Client
	Payments       *payment.Client
	Logger         *slog.Logger
}

func SetupDependencies(dbPool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) *Dependencies {
	pgStore := store.NewPgStore(dbPool)
	catalogService := service.NewService(pgStore, pgStore, pgStore)

	return &Dependencies{
		CatalogService: catalogService,
		Rates:          rates.NewClient(cfg.Rates.URL, cfg.Rates.Timeout),
		Payments: payment.NewClient(payment.Config{
			BaseURL:      cfg.Payments.URL,
			CommerceCode: cfg.Payments.CommerceCode,
			APIKey:       cfg.Payments.APIKey,
			ReturnURL:    cfg.Payments.ReturnURL,
			Timeout:      cfg.Payments.Timeout,
		}),
		Logger: logger,
	}
}

// SetupHttpHandler initializes the router and routes for the application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	mux := server.NewChiRouter(deps.Logger, m.Middleware)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogHandler := rest.NewHandler(deps.CatalogService, deps.Logger)
	catalogHandler.RegisterRoutes(mux)

	currencyHandler := rest.NewCurrencyHandler(deps.Rates, deps.Logger)
	currencyHandler.RegisterRoutes(mux)

	paymentHandler := rest.NewPaymentHandler(deps.Payments, deps.Logger)
	paymentHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server for the application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}

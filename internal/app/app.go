// Package app wires the service together and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/alex-user-go/hotelsearch/internal/amadeus"
	"github.com/alex-user-go/hotelsearch/internal/config"
	"github.com/alex-user-go/hotelsearch/internal/handler"
	"github.com/alex-user-go/hotelsearch/internal/location"
	"github.com/alex-user-go/hotelsearch/internal/middleware"
	"github.com/alex-user-go/hotelsearch/internal/obs"
	"github.com/alex-user-go/hotelsearch/internal/ratelimit"
	"github.com/alex-user-go/hotelsearch/internal/search"
	"github.com/alex-user-go/hotelsearch/web"
)

// Server is the assembled HTTP handler plus the resources it owns.
type Server struct {
	http.Handler

	limiter *ratelimit.Limiter
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Close()
}

// NewServer builds the router and every component behind it.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	metrics := obs.NewMetrics(logger)

	httpClient := &http.Client{Timeout: cfg.Amadeus.Timeout}
	endpoint := cfg.AmadeusEndpoint()
	tokens := amadeus.NewTokenManager(endpoint, cfg.AmadeusCredentials(), httpClient, metrics, logger)
	client := amadeus.NewClient(endpoint, httpClient, tokens, metrics, logger)

	catalog, err := location.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load city catalog: %w", err)
	}
	resolver := location.NewResolver(catalog, client, metrics, logger)

	aggregator := search.NewAggregator(client, search.Options{
		ForwardRadius:   cfg.Search.ForwardRadius,
		DefaultCityCode: cfg.Search.DefaultCityCode,
	}, logger)

	h := handler.New(resolver, aggregator, metrics, logger)
	limiter := ratelimit.New(cfg.Limits.Requests, cfg.Limits.Window)

	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", obs.HealthHandler(logger))
	r.Method(http.MethodGet, "/metrics", metrics.MetricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, logger))
		r.Get("/locations/search", h.SearchLocations)
		r.Post("/hotels/search", h.SearchHotels)
	})

	r.Handle("/*", http.FileServerFS(web.Static()))

	return &Server{Handler: r, limiter: limiter}, nil
}

// NewLogger creates the JSON logger used by the service.
func NewLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func Run(cfg *config.Config) error {
	logger := NewLogger(cfg)
	slog.SetDefault(logger)

	server, err := NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer server.Close()

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", srv.Addr,
			"environment", cfg.Env,
			"amadeus_endpoint", cfg.AmadeusEndpoint(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/ashureev/crushcourt/internal/api"
	"github.com/ashureev/crushcourt/internal/config"
	"github.com/ashureev/crushcourt/internal/exchange"
	"github.com/ashureev/crushcourt/internal/health"
	"github.com/ashureev/crushcourt/internal/identity"
	"github.com/ashureev/crushcourt/internal/matches"
	"github.com/ashureev/crushcourt/internal/metrics"
	"github.com/ashureev/crushcourt/internal/middleware"
	"github.com/ashureev/crushcourt/internal/points"
	"github.com/ashureev/crushcourt/internal/store"
	"github.com/ashureev/crushcourt/internal/suggest"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "grant_policy", cfg.Points.GrantPolicy)

	repo, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("Failed to close repository", "error", closeErr)
		}
	}()
	logger.Info("Database connected", "path", cfg.DBPath)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, logger, repo),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	stop()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newRouter wires services and handlers over repo.
func newRouter(cfg *config.Config, logger *slog.Logger, repo *store.SQLiteStore) http.Handler {
	pair := cfg.Pair()

	ledger := points.NewService(logger, repo, points.Config{Pair: pair, WindowDays: cfg.Points.WindowDays})
	engine := exchange.NewService(logger, repo, ledger, repo, exchange.Config{
		Pair:             pair,
		ServePoints:      cfg.Points.Serve,
		ResponsePoints:   cfg.Points.Response,
		GrantPolicy:      cfg.Points.GrantPolicy,
		RecentWindowDays: cfg.Court.RecentWindowDays,
		RecentLimit:      cfg.Court.RecentLimit,
	})
	sessions := identity.NewSessions(cfg.Session.Secret, cfg.Session.TTL, pair, cfg.Passwords(), !cfg.IsDevelopment())

	handler := api.NewHandler(logger, api.Deps{
		Exchange: engine,
		Points:   ledger,
		Health:   health.NewService(logger, repo, ledger, repo, pair, nil),
		Matches:  matches.NewService(logger, repo, ledger, repo, pair, nil),
		Suggest:  suggest.New(logger, cfg.AI),
		Sessions: sessions,
		Pair:     pair,
	})

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(middleware.Origins(cfg.FrontendURL)))
	r.Use(identity.Middleware(sessions))

	api.NewHealthHandler(repo, 5*time.Second).RegisterHealth(r)
	r.Handle("/metrics", metrics.Handler())
	handler.RegisterRoutes(r)

	return r
}

// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/mazkir/mazkir/internal/api"
	"github.com/mazkir/mazkir/internal/clock"
	"github.com/mazkir/mazkir/internal/coordinator"
	"github.com/mazkir/mazkir/internal/history"
	"github.com/mazkir/mazkir/internal/mcpserver"
	"github.com/mazkir/mazkir/internal/sse"
	"github.com/mazkir/mazkir/internal/storage"
	"github.com/mazkir/mazkir/internal/vault"
	"github.com/mazkir/mazkir/internal/views"
	"github.com/mazkir/mazkir/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcpMode {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("history_path", cfg.History.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return fmt.Errorf("create vault dir: %w", err)
	}

	// Initialize storage.
	fs, err := storage.NewFS(cfg.Vault.Path, cfg.Vault.Timeout())
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	store := vault.New(fs, clock.System{}, cfg.Vault.Location())

	// Completion history (optional).
	var hist history.Recorder
	if cfg.History.Enabled() {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("init history: %w", err)
		}
		defer db.Close()
		hist = db
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	coordOpts := []coordinator.Option{
		coordinator.WithMilestoneStep(cfg.Vault.MilestoneStep),
		coordinator.WithPublisher(broker),
	}
	if hist != nil {
		coordOpts = append(coordOpts, coordinator.WithHistory(hist))
	}
	coord := coordinator.New(store, fs, coordOpts...)

	// Replay any completions interrupted mid-write before serving.
	if report, err := coord.Recover(ctx); err != nil {
		logger.Warn("startup recovery failed", slog.String("error", err.Error()))
	} else if report.Replayed > 0 || report.Dropped > 0 {
		logger.Info("startup recovery done",
			slog.Int("replayed", report.Replayed),
			slog.Int("dropped", report.Dropped))
	}

	v := views.New(store, cfg.Vault.MilestoneStep)

	if app.mcpMode {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(store, v, coord).ServeStdio()
	}

	apiRouter := api.NewRouter(v, coord, hist, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start vault watcher with SSE callback.
	g.Go(func() error {
		if err := watcher.Watch(gCtx, cfg.Vault.Path, logger, func(kind, path string) {
			broker.PublishDocumentEvent(kind, path)
		}); err != nil {
			logger.Warn("vault watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

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

	"github.com/eivindn/inventar/internal/api"
	"github.com/eivindn/inventar/internal/checksum"
	"github.com/eivindn/inventar/internal/images"
	"github.com/eivindn/inventar/internal/index"
	"github.com/eivindn/inventar/internal/inventoryservice"
	"github.com/eivindn/inventar/internal/mcpserver"
	"github.com/eivindn/inventar/internal/sse"
	"github.com/eivindn/inventar/internal/storage"
)

// Run starts the HTTP server and file watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("version", app.version),
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("inventory_path", cfg.Inventory.Path),
		slog.String("inventory_file", cfg.Inventory.File),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initial load. A missing source file is not fatal; the watcher picks
	// it up once it appears.
	if err := svc.Load(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

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
	r.Mount("/api", api.NewRouter(svc, svc.Store(), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		return inventoryservice.Watch(gCtx, svc, logger, cfg.Inventory.Debounce(), func(snap inventoryservice.Snapshot) {
			containers := 0
			if snap.Document != nil {
				containers = len(snap.Document.Containers)
			}
			logger.Info("Inventory reloaded",
				slog.Int("containers", containers),
				slog.Int("issues", len(snap.Issues)),
				slog.String("checksum", checksum.Short(snap.Checksum)))
			broker.Publish(sse.Event{Type: sse.EventReloaded, Data: map[string]any{
				"containers": containers,
				"issues":     len(snap.Issues),
				"checksum":   snap.Checksum,
			}})
		})
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

// RunMCP loads the inventory once and serves the MCP tools on stdio.
// Logging goes to stderr so stdout stays clean for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, db, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	return mcpserver.New(svc, svc.Store()).ServeStdio()
}

// buildService wires storage, the search cache, and the inventory service.
func buildService(cfg *Config, logger *slog.Logger) (*inventoryservice.Service, *index.DB, error) {
	if err := os.MkdirAll(cfg.Inventory.Path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create inventory dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Inventory.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}

	svc := inventoryservice.NewService(store, db, images.NewFSDiscoverer(store), logger, cfg.Inventory.File)
	return svc, db, nil
}

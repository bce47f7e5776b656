// Command mirrorctl drives internal/mirror from the command line: it loads
// a schema, bootstraps a SQLite-backed store, and repeatedly runs
// register/findOutdated/query/ingest rounds against a remote GraphQL
// endpoint. Without --refresh.demo it has no remote to query and exits with an
// error describing how to embed the mirror package with a real execute
// function instead.
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

	"graphmirror/internal/config"
	"graphmirror/internal/demoremote"
	"graphmirror/internal/logging"
	"graphmirror/internal/metrics"
	"graphmirror/internal/mirror"
	"graphmirror/internal/schema"
	"graphmirror/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// cleanupStack releases resources in the reverse order they were
// acquired, logging (but not failing on) any error along the way.
type cleanupStack struct {
	items []cleanupItem
}

type cleanupItem struct {
	name string
	fn   func(context.Context) error
}

func (s *cleanupStack) push(name string, fn func(context.Context) error) {
	s.items = append(s.items, cleanupItem{name: name, fn: fn})
}

func (s *cleanupStack) run(ctx context.Context, logger *logging.Logger) {
	for i := len(s.items) - 1; i >= 0; i-- {
		item := s.items[i]
		logger.Info("shutting down " + item.name)
		if err := item.fn(ctx); err != nil {
			logger.Warn("cleanup error", slog.String("component", item.name), slog.String("error", err.Error()))
		}
	}
}

func main() {
	if err := run(); err != nil {
		slog.Error("mirrorctl error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	slog.SetDefault(logger.Logger)
	ctx := logging.WithLogger(context.Background(), logger)

	var cleanup cleanupStack
	cleanupCtx := context.Background()
	cleanupRan := false
	defer func() {
		if !cleanupRan {
			cleanup.run(cleanupCtx, logger)
		}
	}()

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)

	metricsServer := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	cleanup.push("metrics server", metricsServer.Shutdown)

	s, err := loadSchema(cfg)
	if err != nil {
		return fmt.Errorf("failed to load schema: %w", err)
	}

	db, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	cleanup.push("database", func(context.Context) error { return db.Close() })

	m, err := mirror.New(ctx, db, s, mirror.WithLogger(logger), mirror.WithMetrics(met))
	if err != nil {
		return fmt.Errorf("failed to initialize mirror: %w", err)
	}

	execute, seedID, seedType, err := setupRemote(cfg, &cleanup)
	if err != nil {
		return err
	}

	if seedID != "" {
		if err := m.RegisterObject(ctx, seedType, seedID); err != nil {
			return fmt.Errorf("failed to register seed object: %w", err)
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	ticker := time.NewTicker(cfg.Refresh.StaleThreshold)
	defer ticker.Stop()

	if err := refreshRound(ctx, m, s, execute, cfg.Refresh.PageSize, cfg.Refresh.StaleThreshold); err != nil {
		logger.Error("refresh round failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case sig := <-stop:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			cleanup.run(shutdownCtx, logger)
			cleanupRan = true
			cancel()
			return nil
		case <-ticker.C:
			if err := refreshRound(ctx, m, s, execute, cfg.Refresh.PageSize, cfg.Refresh.StaleThreshold); err != nil {
				logger.Error("refresh round failed", slog.String("error", err.Error()))
			}
		}
	}
}

func loadSchema(cfg *config.Config) (schema.Schema, error) {
	if cfg.Database.SchemaFile != "" {
		return schema.LoadFile(cfg.Database.SchemaFile)
	}
	if cfg.Refresh.Demo {
		return demoremote.Schema()
	}
	return schema.Schema{}, fmt.Errorf("database.schema_file is required unless refresh.demo is set")
}

// setupRemote wires the execute collaborator the refresh loop calls
// through. Only --refresh.demo is supported directly by this binary; embedding
// programs that need a real remote construct their own *mirror.Mirror and
// call the exported refresh primitives with their own execute func.
func setupRemote(cfg *config.Config, cleanup *cleanupStack) (executeFunc, string, string, error) {
	if !cfg.Refresh.Demo {
		return nil, "", "", fmt.Errorf("no remote configured: pass --refresh.demo to run against the built-in demo graph, or embed graphmirror as a library and supply your own execute function")
	}

	remote, err := demoremote.New()
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to start demo remote: %w", err)
	}
	return remote.Execute, demoremote.RootRepositoryID, "Repository", nil
}

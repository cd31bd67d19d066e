package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/dataview/internal/config"
	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/JonMunkholm/dataview/internal/logging"
	"github.com/JonMunkholm/dataview/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", cfg.Upload.MaxFileSize,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"page_size", cfg.View.PageSize,
		"history_db", cfg.Database.Enabled(),
	)
	slog.Debug("configuration", "config", cfg.String())

	loader, err := core.NewLoaderFromConfig(cfg)
	if err != nil {
		slog.Error("failed to create loader", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		slog.Error("failed to open load history", "error", err)
		os.Exit(1)
	}
	defer closeHistory()

	server := web.NewServer(cfg, web.Options{
		Loader:  loader,
		Limiter: core.NewLoadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		History: history,
	})

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openHistory returns the Postgres-backed history when a database is
// configured and the in-memory one otherwise.
func openHistory(ctx context.Context, cfg *config.Config) (core.HistoryStore, func(), error) {
	if !cfg.Database.Enabled() {
		slog.Info("no database configured, keeping load history in memory")
		return core.NewMemoryHistory(core.DefaultHistoryLimit), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	history := core.NewPgHistory(pool)
	if err := history.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return history, pool.Close, nil
}

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

	"github.com/JonMunkholm/featureprep/internal/config"
	"github.com/JonMunkholm/featureprep/internal/core"
	"github.com/JonMunkholm/featureprep/internal/core/sources"
	"github.com/JonMunkholm/featureprep/internal/logging"
	"github.com/JonMunkholm/featureprep/internal/tableio"
	"github.com/JonMunkholm/featureprep/internal/web"
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

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	rules, err := config.LoadRules(cfg.Pipeline.RulesFile)
	if err != nil {
		slog.Error("failed to load rules", "error", err)
		os.Exit(1)
	}
	specs, err := sources.ColumnSpecs(rules)
	if err != nil {
		slog.Error("invalid column rules", "error", err)
		os.Exit(1)
	}

	service, err := core.NewService(cfg.Pipeline, core.OptionsFromConfig(cfg.Pipeline, rules))
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	if cfg.Pipeline.SourceDir != "" {
		n, err := sources.RegisterDir(cfg.Pipeline.SourceDir, specs)
		if err != nil {
			slog.Error("failed to register source dir", "error", err)
			os.Exit(1)
		}
		slog.Info("csv sources registered", "dir", cfg.Pipeline.SourceDir, "count", n)
	}

	// The database is optional: it backs the "postgres" source and the result sink.
	if cfg.Database.Enabled() {
		pool, err := connect(context.Background(), cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.Database.SourceQuery != "" {
			sources.RegisterPostgres(pool, cfg.Database.SourceQuery)
		}
		if cfg.Database.ExportTable != "" {
			service.WithSink(&tableio.PostgresSink{DB: pool, Table: cfg.Database.ExportTable})
			slog.Info("exporting runs", "table", cfg.Database.ExportTable)
		}
	}

	slog.Info("sources registered",
		"count", core.SourceCount(),
		"groups", len(core.SourceGroups()),
	)
	for _, def := range core.AllSources() {
		slog.Debug("source", "key", def.Info.Key, "group", def.Info.Group)
	}

	server := web.NewServer(service, cfg).WithColumnSpecs(specs)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active runs to complete (with timeout)
		status := service.Limiter().Status()
		if status.Active > 0 {
			slog.Info("waiting for runs to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("runs did not complete in time", "error", err)
			} else {
				slog.Info("all runs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connect opens and pings a pgx pool sized from cfg.
func connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

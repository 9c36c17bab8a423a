package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/csvtables/internal/config"
	"github.com/JonMunkholm/csvtables/internal/core"
	_ "github.com/JonMunkholm/csvtables/internal/core/shapes" // Register record shapes
	"github.com/JonMunkholm/csvtables/internal/logging"
	"github.com/JonMunkholm/csvtables/internal/store"
	"github.com/JonMunkholm/csvtables/internal/web"
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
		"database", cfg.Database.Enabled(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"csv_delimiter", cfg.CSV.Delimiter,
	)

	options := []core.ServiceOption{
		core.WithReaderOptions(core.ReaderOptions{
			Comma:      cfg.CSV.Comma(),
			LazyQuotes: cfg.CSV.LazyQuotes,
		}),
		core.WithImportLimiter(core.NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
		core.WithImportTimeout(cfg.Upload.Timeout),
	}

	// Imports are only available with a database
	if cfg.Database.Enabled() {
		pool, err := store.Open(context.Background(), cfg.Database)
		if err != nil {
			slog.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		options = append(options, core.WithSink(store.New(pool)))
	} else {
		slog.Warn("DATABASE_URL not set, imports disabled")
	}

	service := core.NewService(options...)

	shapes := core.Shapes()
	slog.Info("shapes registered", "count", len(shapes))
	for _, s := range shapes {
		slog.Debug("shape", "key", s.Key, "fields", len(s.Fields))
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active imports to complete (with timeout)
		if status := service.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

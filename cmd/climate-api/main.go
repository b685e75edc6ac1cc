package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/i474232898/climate-api/internal/api/http"
	"github.com/i474232898/climate-api/internal/climate"
	"github.com/i474232898/climate-api/internal/config"
	"github.com/i474232898/climate-api/internal/logging"
	"github.com/i474232898/climate-api/internal/scheduler"
	"github.com/i474232898/climate-api/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	logger := zl.Sugar()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err = run(ctx, cfg, zl)
	stop()
	if err != nil {
		logger.Errorw("climate-api stopped", "error", err)
	}
	_ = zl.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run serves until ctx is done or the listener fails. Startup failures return
// before anything listens.
func run(ctx context.Context, cfg *config.AppConfig, zl *zap.Logger) error {
	logger := zl.Sugar()
	logger.Infow("config loaded",
		"appEnv", cfg.AppEnv,
		"port", cfg.Port,
		"databasePath", cfg.DatabasePath,
		"dsnOverride", cfg.DatabaseDSN != "",
		"queryTimeout", cfg.QueryTimeout,
		"healthInterval", cfg.HealthInterval,
		"tupleOrder", cfg.TupleOrder,
	)

	// Startup phase: open the store and build the report before serving anything.
	startupCtx, cancelStartup := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancelStartup()

	db, err := store.OpenSQLite(startupCtx, store.SQLiteConfig{
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
		Logger: logging.GormLogger(zl, cfg.SQLEcho),
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Errorw("store close", "error", err)
		}
	}()

	service, err := climate.NewService(startupCtx, db, logger, climate.Options{
		QueryTimeout: cfg.QueryTimeout,
	})
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	cancelStartup()

	// Periodic store liveness probe backing /health.
	sched := scheduler.New(service, cfg.HealthInterval, logger.Named("health"))
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(logger.Named("http"), httpapi.AppOptions{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	httpapi.RegisterRoutes(app, service, sched, httpapi.RouteOptions{
		LegacyStartOrder: cfg.TupleOrder == config.TupleOrderLegacy,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("http listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("fiber server stopped: %w", err)
		}
		return errors.New("fiber server stopped unexpectedly")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Infow("http shutting down")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

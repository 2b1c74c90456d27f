// Package main is the entrypoint for the attrition dashboard API server.
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

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pradeeprawatbgo/attrition-dashboard/internal/api"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/api/handler"
	mw "github.com/pradeeprawatbgo/attrition-dashboard/internal/api/middleware"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/api/response"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/cache"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/config"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/reconcile"
	"github.com/pradeeprawatbgo/attrition-dashboard/internal/sheetstore"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "store_backend", cfg.Store.Backend, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to Postgres and migrate, only when it is the backend
	var pool *pgxpool.Pool
	if cfg.Store.Backend == "postgres" {
		pool, err = sheetstore.Connect(ctx, cfg.Store.Postgres)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		slog.Info("database connected")

		if err := sheetstore.RunMigrations(cfg.Store.Postgres.URL, cfg.Store.Postgres.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")
	}

	// 3. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 4. Create the table store
	store, err := sheetstore.New(cfg.Store, pool)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}

	// 5. Reconciliation service over store and table cache
	tableCache := cache.NewTableCache(redisCache, cfg.Cache.TableTTL)
	svc := reconcile.NewService(store, tableCache)

	// 6. Build router with dependencies
	auth := mw.NewAuth(cfg.Auth.KeyHashes)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Auth.RequestsPerMinute)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler:       healthHandler(svc, redisCache),
		ListRecordsHandler:  handler.NewListRecordsHandler(svc),
		SaveCommentsHandler: handler.NewSaveCommentsHandler(svc),
		DeleteRowsHandler:   handler.NewDeleteRowsHandler(svc),
		ExportHandler:       handler.NewExportHandler(svc),
		MetricsHandler:      handler.NewMetricsHandler(svc),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks backing store and cache connectivity.
func healthHandler(svc *reconcile.Service, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"store": "ok",
			"cache": "ok",
		}

		if err := svc.Ping(r.Context()); err != nil {
			checks["store"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["store"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}

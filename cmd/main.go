package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"github.com/CuSO4Deposit/arctrack/internal/adapters/charts"
	"github.com/CuSO4Deposit/arctrack/internal/adapters/http/api"
	"github.com/CuSO4Deposit/arctrack/internal/adapters/repository"
	"github.com/CuSO4Deposit/arctrack/internal/app"
	"github.com/CuSO4Deposit/arctrack/internal/config"
	"github.com/CuSO4Deposit/arctrack/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log level, keeping info", logger.String("level", cfg.LogLevel))
	}

	var store repository.Store
	switch cfg.Store {
	case config.StoreMemory:
		store = repository.NewMemoryStore()
	default:
		sqlStore, err := repository.NewSQLiteStore(ctx, cfg.UserDBPath)
		if err != nil {
			log.Error(ctx, "failed to open user database", logger.Error(err))
			return
		}
		defer func() {
			_ = sqlStore.Close()
		}()
		store = sqlStore
	}

	provider, err := charts.NewSQLiteProvider(ctx, cfg.ChartDBPath)
	if err != nil {
		log.Error(ctx, "failed to open song database", logger.Error(err))
		return
	}
	defer func() {
		_ = provider.Close()
	}()

	service := app.New(store, provider, app.WithLogger(log.Named("service")))
	server := api.NewServer(service)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.RecoveryHandler()(server.Router()),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "http server listening",
			logger.String("addr", cfg.Addr),
			logger.String("store", cfg.Store),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "graceful shutdown failed", logger.Error(err))
	}
}

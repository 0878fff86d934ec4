package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tenantops/appset-keyspaces-plugin/internal/auth"
	"github.com/tenantops/appset-keyspaces-plugin/internal/config"
	"github.com/tenantops/appset-keyspaces-plugin/internal/keyspaces"
	"github.com/tenantops/appset-keyspaces-plugin/internal/server"
	"github.com/tenantops/appset-keyspaces-plugin/internal/telemetry"
	"github.com/tenantops/appset-keyspaces-plugin/internal/tenant"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("appset-keyspaces-plugin", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := auth.LoadToken(cfg.Plugin.TokenFile)
	if err != nil {
		log.Fatalf("Failed to load plugin token: %v", err)
	}

	// The tenant store (and the session inside it) is built exactly once and
	// shared read-only by every request for the life of the process.
	var store tenant.Store
	var closeStore func()
	if cfg.Plugin.DevDB != "" {
		s, err := tenant.NewSQLiteStore(cfg.Plugin.DevDB)
		if err != nil {
			log.Fatalf("Failed to open dev tenant store: %v", err)
		}
		store = s
		closeStore = func() { s.Close() }
		logger.Warn("using local sqlite tenant store", slog.String("path", cfg.Plugin.DevDB))
	} else {
		session, err := keyspaces.Connect(cfg.Keyspaces)
		if err != nil {
			log.Fatalf("Failed to connect to Keyspaces: %v", err)
		}
		store = tenant.NewKeyspacesStore(session)
		closeStore = session.Close
	}
	defer closeStore()

	srv := server.New(cfg.Server.Port, logger, auth.NewAuthenticator(token))
	handler := server.NewPluginHandler(store, logger)
	srv.Router.Post("/api/v1/getparams.execute", handler.GetParams)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
}

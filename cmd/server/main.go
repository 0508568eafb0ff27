package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/courtside/internal/api"
	"github.com/mcoot/courtside/internal/config"
	"github.com/mcoot/courtside/internal/factory"
	"github.com/mcoot/courtside/internal/services/auth"
	"github.com/mcoot/courtside/internal/storage/postgres"
	redisstorage "github.com/mcoot/courtside/internal/storage/redis"
)

const (
	hubSweepInterval = time.Minute
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	authCfg := auth.DefaultConfig()
	authCfg.Secret = cfg.JWTSecret
	authCfg.Issuer = cfg.JWTIssuer

	factoryCfg := factory.Config{
		AuthConfig:   authCfg,
		Logger:       logger,
		StorageType:  cfg.StorageType,
		RedisStream:  cfg.RedisStreamEnabled,
		KafkaBrokers: cfg.KafkaBrokers,
		KafkaTopic:   cfg.KafkaTopic,
	}
	if cfg.RedisURL != "" {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}
	if cfg.DatabaseURL != "" {
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.DatabaseURL
		pgCfg.RunMigrations = cfg.RunMigrations
		factoryCfg.PostgresConfig = &pgCfg
	}

	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		AccessService:  app.AccessService,
		CatalogService: app.CatalogService,
		GameController: app.GameController,
		HubManager:     app.HubManager,
		CORSOrigins:    cfg.CORSOrigins,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	go sweepHubs(ctx, app)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.Bool("redis_stream", cfg.RedisStreamEnabled),
		slog.Int("kafka_brokers", len(cfg.KafkaBrokers)),
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			cancel()
			return
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Viewers' streams end before the server waits on them
		app.HubManager.Close()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

// sweepHubs periodically drops hubs for games nobody is watching
func sweepHubs(ctx context.Context, app *factory.App) {
	ticker := time.NewTicker(hubSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.HubManager.CleanupEmptyHubs()
		}
	}
}

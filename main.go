package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ultron-engine/config"
	"ultron-engine/internal/api"
	"ultron-engine/internal/auth"
	"ultron-engine/internal/cache"
	"ultron-engine/internal/database"
	"ultron-engine/internal/engine"
	"ultron-engine/internal/events"
	"ultron-engine/internal/logging"
	"ultron-engine/internal/marketdata"
	"ultron-engine/internal/notification"
	"ultron-engine/internal/scanner"
	"ultron-engine/internal/vault"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LoggingConfig)
	logger.Info().Msg("starting decision engine")

	// Vault overlays secrets onto the file/env configuration.
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create vault client")
	}
	if vaultClient.IsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := vaultClient.ApplyTo(ctx, cfg); err != nil {
			logger.Fatal().Err(err).Msg("failed to load secrets from vault")
		}
		cancel()
		logger.Info().Msg("secrets loaded from vault")
	}

	eventBus := events.NewEventBus()

	notifyManager := notification.NewManager(cfg.NotificationConfig.Enabled)
	if cfg.NotificationConfig.Telegram.Enabled {
		notifyManager.AddNotifier(notification.NewTelegramNotifier(notification.TelegramConfig{
			BotToken: cfg.NotificationConfig.Telegram.BotToken,
			ChatID:   cfg.NotificationConfig.Telegram.ChatID,
			Enabled:  cfg.NotificationConfig.Telegram.Enabled,
		}))
		logger.Info().Msg("telegram notifications enabled")
	}
	if cfg.NotificationConfig.Discord.Enabled {
		notifyManager.AddNotifier(notification.NewDiscordNotifier(notification.DiscordConfig{
			WebhookURL: cfg.NotificationConfig.Discord.WebhookURL,
			Enabled:    cfg.NotificationConfig.Discord.Enabled,
		}))
		logger.Info().Msg("discord notifications enabled")
	}

	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.RunMigrations(migrateCtx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	cancel()

	repo := database.NewRepository(db)

	var cacheService *cache.CacheService
	if cfg.RedisConfig.Enabled {
		cacheService, err = cache.NewCacheService(cfg.RedisConfig, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, running without cache")
			cacheService = nil
		}
	}

	mdClient := marketdata.NewClient(cfg.MarketDataConfig.APIKey, cfg.MarketDataConfig.BaseURL)

	eng := engine.New(logger)
	modes := scanner.NewModeResolver(cfg.StrategyConfig, repo)

	sc := scanner.NewScanner(
		mdClient, cacheService, repo, eng, modes,
		notifyManager, eventBus,
		cfg.ScannerConfig, cfg.MarketDataConfig, logger,
	)
	sc.Start()

	var authenticator *auth.Authenticator
	var jwtManager *auth.JWTManager
	if cfg.AuthConfig.Enabled {
		jwtManager = auth.NewJWTManager(
			cfg.AuthConfig.JWTSecret,
			time.Duration(cfg.AuthConfig.AccessTokenMinutes)*time.Minute,
		)
		authenticator = auth.NewAuthenticator(
			cfg.AuthConfig.AdminUsername,
			cfg.AuthConfig.AdminPasswordHash,
			jwtManager,
		)
		logger.Info().Msg("admin authentication enabled")
	}

	server := api.NewServer(
		cfg.ServerConfig, repo, cacheService, sc, eng, modes,
		eventBus, authenticator, jwtManager, logger,
	)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	sc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	if cacheService != nil {
		if err := cacheService.Close(); err != nil {
			logger.Error().Err(err).Msg("cache shutdown failed")
		}
	}

	logger.Info().Msg("stopped")
}

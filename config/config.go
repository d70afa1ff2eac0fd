package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	ServerConfig       ServerConfig       `json:"server"`
	DatabaseConfig     DatabaseConfig     `json:"database"`
	RedisConfig        RedisConfig        `json:"redis"`
	VaultConfig        VaultConfig        `json:"vault"`
	AuthConfig         AuthConfig         `json:"auth"`
	MarketDataConfig   MarketDataConfig   `json:"market_data"`
	ScannerConfig      ScannerConfig      `json:"scanner"`
	NotificationConfig NotificationConfig `json:"notification"`
	StrategyConfig     StrategyConfig     `json:"strategies"`
	LoggingConfig      LoggingConfig      `json:"logging"`
}

// ServerConfig holds HTTP API server configuration
type ServerConfig struct {
	Host           string   `json:"host"`
	Port           int      `json:"port"`
	ProductionMode bool     `json:"production_mode"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// VaultConfig configures the optional HashiCorp Vault secret source.
// When enabled, the Twelve Data API key and Telegram bot token are read
// from Vault instead of this file.
type VaultConfig struct {
	Enabled    bool   `json:"enabled"`
	Address    string `json:"address"`
	Token      string `json:"token"`
	SecretPath string `json:"secret_path"`
	TLSEnabled bool   `json:"tls_enabled"`
	CACert     string `json:"ca_cert"`
}

type AuthConfig struct {
	Enabled            bool   `json:"enabled"`
	JWTSecret          string `json:"jwt_secret"`
	AdminUsername      string `json:"admin_username"`
	AdminPasswordHash  string `json:"admin_password_hash"` // bcrypt hash
	AccessTokenMinutes int    `json:"access_token_minutes"`
}

// MarketDataConfig configures the Twelve Data candle source
type MarketDataConfig struct {
	APIKey          string `json:"api_key"`
	BaseURL         string `json:"base_url"`
	DefaultInterval string `json:"default_interval"` // e.g. "15min", "1h"
	OutputSize      int    `json:"output_size"`      // candles per request
	CacheTTL        int    `json:"cache_ttl"`        // seconds, redis candle cache
}

type ScannerConfig struct {
	Enabled           bool   `json:"enabled"`
	ScanInterval      int    `json:"scan_interval"`      // seconds between symbols
	KeepAliveSymbol   string `json:"keepalive_symbol"`   // symbol for heartbeat scans
	KeepAliveInterval int    `json:"keepalive_interval"` // seconds between heartbeat scans
	SessionCheck      int    `json:"session_check"`      // seconds between session-open checks
	WorkerCount       int    `json:"worker_count"`       // workers for full on-demand scans
}

type NotificationConfig struct {
	Enabled  bool           `json:"enabled"`
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
}

type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

type DiscordConfig struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
}

// StrategyConfig holds the default tri-state mode per strategy
// (OFF, STANDARD or RISK). Runtime changes are persisted in the
// database and override these defaults.
type StrategyConfig struct {
	StructureBreak    string `json:"structure_break"`
	CycleReversal     string `json:"cycle_reversal"`
	DarvasBox         string `json:"darvas_box"`
	TrendContinuation string `json:"trend_continuation"`
	DoubleSupertrend  string `json:"double_supertrend"`
	EMATriple         string `json:"ema_triple"`
}

type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Pretty bool   `json:"pretty"` // console writer instead of JSON
}

// Load reads configuration from config.json (or CONFIG_FILE) and applies
// environment variable overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	path := getEnv("CONFIG_FILE", "config.json")
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerConfig: ServerConfig{
			Host:           "0.0.0.0",
			Port:           10000,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:10000"},
		},
		DatabaseConfig: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "ultron",
			Password: "ultron",
			Database: "ultron",
			SSLMode:  "disable",
		},
		RedisConfig: RedisConfig{
			Address:  "localhost:6379",
			PoolSize: 10,
		},
		AuthConfig: AuthConfig{
			AccessTokenMinutes: 60,
		},
		MarketDataConfig: MarketDataConfig{
			BaseURL:         "https://api.twelvedata.com",
			DefaultInterval: "15min",
			OutputSize:      200,
			CacheTTL:        60,
		},
		ScannerConfig: ScannerConfig{
			Enabled:           true,
			ScanInterval:      60,
			KeepAliveSymbol:   "XAU/USD",
			KeepAliveInterval: 1800,
			SessionCheck:      300,
			WorkerCount:       4,
		},
		StrategyConfig: StrategyConfig{
			StructureBreak:    "STANDARD",
			CycleReversal:     "STANDARD",
			DarvasBox:         "STANDARD",
			TrendContinuation: "OFF",
			DoubleSupertrend:  "STANDARD",
			EMATriple:         "OFF",
		},
		LoggingConfig: LoggingConfig{
			Level: "info",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.ServerConfig.Port = getEnvInt("PORT", cfg.ServerConfig.Port)

	cfg.DatabaseConfig.Host = getEnv("DB_HOST", cfg.DatabaseConfig.Host)
	cfg.DatabaseConfig.Port = getEnvInt("DB_PORT", cfg.DatabaseConfig.Port)
	cfg.DatabaseConfig.User = getEnv("DB_USER", cfg.DatabaseConfig.User)
	cfg.DatabaseConfig.Password = getEnv("DB_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.Database = getEnv("DB_NAME", cfg.DatabaseConfig.Database)
	cfg.DatabaseConfig.SSLMode = getEnv("DB_SSLMODE", cfg.DatabaseConfig.SSLMode)

	cfg.RedisConfig.Address = getEnv("REDIS_ADDR", cfg.RedisConfig.Address)
	cfg.RedisConfig.Password = getEnv("REDIS_PASSWORD", cfg.RedisConfig.Password)

	cfg.VaultConfig.Address = getEnv("VAULT_ADDR", cfg.VaultConfig.Address)
	cfg.VaultConfig.Token = getEnv("VAULT_TOKEN", cfg.VaultConfig.Token)

	cfg.AuthConfig.JWTSecret = getEnv("JWT_SECRET", cfg.AuthConfig.JWTSecret)

	cfg.MarketDataConfig.APIKey = getEnv("TWELVEDATA_API_KEY", cfg.MarketDataConfig.APIKey)

	cfg.NotificationConfig.Telegram.BotToken = getEnv("TELEGRAM_BOT_TOKEN", cfg.NotificationConfig.Telegram.BotToken)
	cfg.NotificationConfig.Telegram.ChatID = getEnv("TELEGRAM_CHAT_ID", cfg.NotificationConfig.Telegram.ChatID)

	cfg.LoggingConfig.Level = getEnv("LOG_LEVEL", cfg.LoggingConfig.Level)
}

func (c *Config) validate() error {
	if c.ServerConfig.Port <= 0 || c.ServerConfig.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.ServerConfig.Port)
	}
	if c.MarketDataConfig.OutputSize < 50 {
		return fmt.Errorf("market data output_size must be at least 50, got %d", c.MarketDataConfig.OutputSize)
	}
	if c.AuthConfig.Enabled && c.AuthConfig.JWTSecret == "" {
		return fmt.Errorf("auth is enabled but jwt_secret is empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

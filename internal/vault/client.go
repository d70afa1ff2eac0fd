// Package vault reads service secrets (market data API key, Telegram
// bot token) from HashiCorp Vault. When Vault is disabled the config
// file values are used as-is.
package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/vault/api"

	"ultron-engine/config"
)

// Secrets holds the service credentials resolvable from Vault.
type Secrets struct {
	TwelveDataAPIKey string `json:"twelvedata_api_key"`
	TelegramBotToken string `json:"telegram_bot_token"`
	JWTSecret        string `json:"jwt_secret"`
}

// Client wraps the HashiCorp Vault client
type Client struct {
	client *api.Client
	config config.VaultConfig
	mu     sync.RWMutex
	cached *Secrets
}

// NewClient creates a new Vault client
func NewClient(cfg config.VaultConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{config: cfg}, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSEnabled && cfg.CACert != "" {
		tlsConfig := &api.TLSConfig{
			CACert: cfg.CACert,
		}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(cfg.Token)

	return &Client{client: client, config: cfg}, nil
}

// IsEnabled returns whether Vault is enabled
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// GetSecrets reads the service secrets from Vault. The first successful
// read is cached for the life of the process.
func (c *Client) GetSecrets(ctx context.Context) (*Secrets, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("vault is disabled")
	}

	c.mu.RLock()
	if c.cached != nil {
		defer c.mu.RUnlock()
		return c.cached, nil
	}
	c.mu.RUnlock()

	secret, err := c.client.Logical().ReadWithContext(ctx, c.config.SecretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secrets at path %s", c.config.SecretPath)
	}

	// KV v2 nests the payload under "data".
	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]interface{}); ok {
		data = nested
	}

	secrets := &Secrets{
		TwelveDataAPIKey: getString(data, "twelvedata_api_key"),
		TelegramBotToken: getString(data, "telegram_bot_token"),
		JWTSecret:        getString(data, "jwt_secret"),
	}

	c.mu.Lock()
	c.cached = secrets
	c.mu.Unlock()

	return secrets, nil
}

// ApplyTo overlays Vault secrets onto the loaded configuration,
// keeping file/env values where Vault has no entry.
func (c *Client) ApplyTo(ctx context.Context, cfg *config.Config) error {
	if !c.config.Enabled {
		return nil
	}

	secrets, err := c.GetSecrets(ctx)
	if err != nil {
		return err
	}

	if secrets.TwelveDataAPIKey != "" {
		cfg.MarketDataConfig.APIKey = secrets.TwelveDataAPIKey
	}
	if secrets.TelegramBotToken != "" {
		cfg.NotificationConfig.Telegram.BotToken = secrets.TelegramBotToken
	}
	if secrets.JWTSecret != "" {
		cfg.AuthConfig.JWTSecret = secrets.JWTSecret
	}
	return nil
}

// Health checks the Vault connection
func (c *Client) Health(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}

func getString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// Package cache provides Redis-based caching for candle windows and
// scan bookkeeping, with graceful degradation: when Redis is down the
// scanner falls through to the market data API.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ultron-engine/config"
	"ultron-engine/internal/market"
)

// Key formats
const (
	candleKeyFormat       = "candles:%s:%s"     // symbol, interval
	lastDecisionKeyFormat = "decision:last:%s"  // symbol
	sessionAnnounceFormat = "session:announced:%s:%s" // session name, date
)

// Default TTLs
const (
	LastDecisionTTL    = 24 * time.Hour
	SessionAnnounceTTL = 20 * time.Hour
)

// CacheService wraps the Redis client with health tracking. Operations
// against an unhealthy client fail fast so callers can fall back.
type CacheService struct {
	client       *redis.Client
	logger       zerolog.Logger
	mu           sync.RWMutex
	healthy      bool
	failureCount int

	maxFailures int
}

// NewCacheService connects to Redis. A failed initial connection
// returns a degraded (but usable) service, not an error.
func NewCacheService(cfg config.RedisConfig, logger zerolog.Logger) (*CacheService, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is not enabled in configuration")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	cs := &CacheService{
		client:      client,
		logger:      logger.With().Str("component", "cache").Logger(),
		maxFailures: 3,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		cs.logger.Warn().Err(err).Msg("initial Redis connection failed, running degraded")
		return cs, nil
	}

	cs.healthy = true
	cs.logger.Info().Str("address", cfg.Address).Msg("Redis connected")
	return cs, nil
}

// IsHealthy returns whether Redis is currently available.
func (cs *CacheService) IsHealthy() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.healthy
}

func (cs *CacheService) recordFailure() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.failureCount++
	if cs.failureCount >= cs.maxFailures {
		if cs.healthy {
			cs.logger.Warn().Int("failures", cs.failureCount).Msg("Redis marked unhealthy")
		}
		cs.healthy = false
	}
}

func (cs *CacheService) recordSuccess() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.healthy && cs.failureCount >= cs.maxFailures {
		cs.logger.Info().Msg("Redis recovered")
	}
	cs.failureCount = 0
	cs.healthy = true
}

// ============================================================================
// CANDLE WINDOWS
// ============================================================================

// SetCandles caches a candle window for symbol/interval with the given TTL.
func (cs *CacheService) SetCandles(ctx context.Context, symbol, interval string, candles []market.Candle, ttl time.Duration) error {
	data, err := json.Marshal(candles)
	if err != nil {
		return fmt.Errorf("failed to marshal candles: %w", err)
	}

	key := fmt.Sprintf(candleKeyFormat, symbol, interval)
	if err := cs.client.Set(ctx, key, data, ttl).Err(); err != nil {
		cs.recordFailure()
		return fmt.Errorf("failed to cache candles for %s: %w", symbol, err)
	}
	cs.recordSuccess()
	return nil
}

// GetCandles returns the cached window, or nil when absent or on error.
func (cs *CacheService) GetCandles(ctx context.Context, symbol, interval string) ([]market.Candle, error) {
	key := fmt.Sprintf(candleKeyFormat, symbol, interval)
	data, err := cs.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		cs.recordSuccess()
		return nil, nil
	}
	if err != nil {
		cs.recordFailure()
		return nil, fmt.Errorf("failed to read cached candles for %s: %w", symbol, err)
	}
	cs.recordSuccess()

	var candles []market.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("corrupt candle cache for %s: %w", symbol, err)
	}
	return candles, nil
}

// ============================================================================
// DECISIONS
// ============================================================================

// SetLastDecision caches the latest decision payload for a symbol.
func (cs *CacheService) SetLastDecision(ctx context.Context, symbol string, decision interface{}) error {
	data, err := json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	key := fmt.Sprintf(lastDecisionKeyFormat, symbol)
	if err := cs.client.Set(ctx, key, data, LastDecisionTTL).Err(); err != nil {
		cs.recordFailure()
		return fmt.Errorf("failed to cache decision for %s: %w", symbol, err)
	}
	cs.recordSuccess()
	return nil
}

// GetLastDecision reads the cached decision JSON into dest. Returns
// false when no decision is cached.
func (cs *CacheService) GetLastDecision(ctx context.Context, symbol string, dest interface{}) (bool, error) {
	key := fmt.Sprintf(lastDecisionKeyFormat, symbol)
	data, err := cs.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		cs.recordSuccess()
		return false, nil
	}
	if err != nil {
		cs.recordFailure()
		return false, fmt.Errorf("failed to read cached decision for %s: %w", symbol, err)
	}
	cs.recordSuccess()
	return true, json.Unmarshal(data, dest)
}

// ============================================================================
// SESSION ANNOUNCEMENTS
// ============================================================================

// ClaimSessionAnnouncement returns true exactly once per session per
// UTC day, using SETNX so concurrent checkers cannot double-announce.
func (cs *CacheService) ClaimSessionAnnouncement(ctx context.Context, sessionName string, day time.Time) (bool, error) {
	key := fmt.Sprintf(sessionAnnounceFormat, sessionName, day.UTC().Format("2006-01-02"))
	ok, err := cs.client.SetNX(ctx, key, "1", SessionAnnounceTTL).Result()
	if err != nil {
		cs.recordFailure()
		return false, fmt.Errorf("failed to claim session announcement: %w", err)
	}
	cs.recordSuccess()
	return ok, nil
}

// Ping verifies Redis connectivity.
func (cs *CacheService) Ping(ctx context.Context) error {
	if err := cs.client.Ping(ctx).Err(); err != nil {
		cs.recordFailure()
		return err
	}
	cs.recordSuccess()
	return nil
}

// Close shuts down the client.
func (cs *CacheService) Close() error {
	return cs.client.Close()
}

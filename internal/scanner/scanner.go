// Package scanner drives the periodic evaluation of the watchlist.
// Three loops run in the background: a sequential watchlist walk (one
// symbol per tick, so the market data API is never burst), a keepalive
// scan that evaluates a reference symbol and emits a heartbeat, and a
// session watcher that announces London/New York opens once per day.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ultron-engine/config"
	"ultron-engine/internal/cache"
	"ultron-engine/internal/database"
	"ultron-engine/internal/engine"
	"ultron-engine/internal/events"
	"ultron-engine/internal/market"
	"ultron-engine/internal/marketdata"
	"ultron-engine/internal/notification"
	"ultron-engine/internal/session"
)

// Scanner orchestrates candle fetching, arbitration, persistence and
// notification across the watchlist.
type Scanner struct {
	client   *marketdata.Client
	cache    *cache.CacheService // nil when redis is disabled
	repo     *database.Repository
	engine   *engine.Engine
	modes    *ModeResolver
	notifier *notification.Manager
	bus      *events.EventBus
	cfg      config.ScannerConfig
	mdCfg    config.MarketDataConfig
	logger   zerolog.Logger

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu         sync.RWMutex
	cursor     int // next watchlist index for the sequential walk
	lastResult *ScanResult
	announced  map[string]string // session name -> last announced UTC day
}

// ScanResult summarizes one full scan cycle.
type ScanResult struct {
	ScanID         string            `json:"scan_id"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        time.Time         `json:"end_time"`
	SymbolsScanned int               `json:"symbols_scanned"`
	Operate        int               `json:"operate"`
	Decisions      []engine.Decision `json:"decisions"`
}

// NewScanner creates a new scanner instance
func NewScanner(
	client *marketdata.Client,
	cacheService *cache.CacheService,
	repo *database.Repository,
	eng *engine.Engine,
	modes *ModeResolver,
	notifier *notification.Manager,
	bus *events.EventBus,
	scanCfg config.ScannerConfig,
	mdCfg config.MarketDataConfig,
	logger zerolog.Logger,
) *Scanner {
	return &Scanner{
		client:    client,
		cache:     cacheService,
		repo:      repo,
		engine:    eng,
		modes:     modes,
		notifier:  notifier,
		bus:       bus,
		cfg:       scanCfg,
		mdCfg:     mdCfg,
		logger:    logger.With().Str("component", "scanner").Logger(),
		stopChan:  make(chan struct{}),
		announced: make(map[string]string),
	}
}

// Start launches the background loops.
func (sc *Scanner) Start() {
	if !sc.cfg.Enabled {
		sc.logger.Info().Msg("scanner disabled")
		return
	}

	sc.wg.Add(3)
	go sc.runWatchlistLoop()
	go sc.runKeepAliveLoop()
	go sc.runSessionWatch()
	sc.logger.Info().
		Int("scan_interval_s", sc.cfg.ScanInterval).
		Str("keepalive_symbol", sc.cfg.KeepAliveSymbol).
		Msg("scanner started")
}

// Stop shuts down the background loops and waits for them.
func (sc *Scanner) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopChan) })
	sc.wg.Wait()
	sc.logger.Info().Msg("scanner stopped")
}

// runWatchlistLoop evaluates one watchlist symbol per tick, walking
// the list round-robin.
func (sc *Scanner) runWatchlistLoop() {
	defer sc.wg.Done()

	ticker := time.NewTicker(time.Duration(sc.cfg.ScanInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sc.scanNext()
		case <-sc.stopChan:
			return
		}
	}
}

func (sc *Scanner) scanNext() {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	entries, err := sc.repo.GetWatchlist(ctx, true)
	if err != nil {
		sc.logger.Error().Err(err).Msg("failed to load watchlist")
		sc.bus.PublishError("scanner", "failed to load watchlist", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	sc.mu.Lock()
	if sc.cursor >= len(entries) {
		sc.cursor = 0
	}
	entry := entries[sc.cursor]
	sc.cursor++
	sc.mu.Unlock()

	if _, err := sc.ScanSymbol(ctx, entry.Symbol, entry.Interval); err != nil {
		sc.logger.Error().Err(err).Str("symbol", entry.Symbol).Msg("scan failed")
		sc.bus.PublishError("scanner", "scan failed for "+entry.Symbol, err)
	}
}

// ScanSymbol runs one full decision cycle for a symbol: candle window
// from cache or the market data API, effective strategy modes, then
// arbitration. OPERATE decisions are persisted and notified; every
// decision is cached and published.
func (sc *Scanner) ScanSymbol(ctx context.Context, symbol, interval string) (engine.Decision, error) {
	if interval == "" {
		interval = sc.mdCfg.DefaultInterval
	}

	candles, err := sc.GetCandles(ctx, symbol, interval)
	if err != nil {
		return engine.Decision{}, fmt.Errorf("candles for %s: %w", symbol, err)
	}

	modes, err := sc.modes.Resolve(ctx)
	if err != nil {
		sc.logger.Warn().Err(err).Msg("mode overrides unavailable, using defaults")
	}

	decision := sc.engine.Arbitrate(symbol, candles, modes, time.Now().UTC())

	sc.logger.Info().
		Str("symbol", symbol).
		Str("action", string(decision.Action)).
		Str("strategy", decision.Strategy).
		Msg("decision")

	if sc.cache != nil {
		if err := sc.cache.SetLastDecision(ctx, symbol, decision); err != nil {
			sc.logger.Debug().Err(err).Msg("decision cache write failed")
		}
	}

	sc.bus.PublishDecision(symbol, string(decision.Action), decision.Strategy, decision.RewardRisk)

	if decision.Action == engine.ActionOperate {
		sc.persistAndNotify(ctx, decision)
	}

	return decision, nil
}

func (sc *Scanner) persistAndNotify(ctx context.Context, d engine.Decision) {
	if sc.repo != nil {
		record := &database.DecisionRecord{
			ID:          d.ID,
			Symbol:      d.Symbol,
			Action:      string(d.Action),
			Strategy:    d.Strategy,
			EntryKind:   d.EntryKind,
			Direction:   string(d.Direction),
			RiskTier:    string(d.RiskTier),
			Entry:       d.Entry,
			StopLoss:    d.Stop,
			TakeProfit:  d.TakeProfit,
			TP2:         d.TP2,
			TP3:         d.TP3,
			RewardRisk:  d.RewardRisk,
			Session:     d.Session,
			Reasons:     d.Reasons,
			EvaluatedAt: d.EvaluatedAt,
		}
		if err := sc.repo.SaveDecision(ctx, record); err != nil {
			sc.logger.Error().Err(err).Str("symbol", d.Symbol).Msg("failed to persist decision")
		}
	}

	if err := sc.notifier.SendSignal(notification.Signal{
		Symbol:     d.Symbol,
		Strategy:   d.Strategy,
		Direction:  string(d.Direction),
		EntryKind:  d.EntryKind,
		Entry:      d.Entry,
		Stop:       d.Stop,
		TakeProfit: d.TakeProfit,
		TP2:        d.TP2,
		TP3:        d.TP3,
		RewardRisk: d.RewardRisk,
		RiskTier:   string(d.RiskTier),
		Session:    d.Session,
	}); err != nil {
		sc.logger.Error().Err(err).Str("symbol", d.Symbol).Msg("signal notification failed")
	}
}

// GetCandles serves the window from Redis when fresh, otherwise from
// the market data API (and refills the cache).
func (sc *Scanner) GetCandles(ctx context.Context, symbol, interval string) ([]market.Candle, error) {
	if interval == "" {
		interval = sc.mdCfg.DefaultInterval
	}

	if sc.cache != nil && sc.cache.IsHealthy() {
		if candles, err := sc.cache.GetCandles(ctx, symbol, interval); err == nil && len(candles) > 0 {
			return candles, nil
		}
	}

	candles, err := sc.client.GetCandles(ctx, symbol, interval, sc.mdCfg.OutputSize)
	if err != nil {
		return nil, err
	}

	if sc.cache != nil {
		ttl := time.Duration(sc.mdCfg.CacheTTL) * time.Second
		if err := sc.cache.SetCandles(ctx, symbol, interval, candles, ttl); err != nil {
			sc.logger.Debug().Err(err).Msg("candle cache write failed")
		}
	}
	return candles, nil
}

// ScanAll evaluates the whole watchlist concurrently with a worker
// pool, for on-demand full scans.
func (sc *Scanner) ScanAll(ctx context.Context) (*ScanResult, error) {
	start := time.Now()
	scanID := uuid.NewString()

	entries, err := sc.repo.GetWatchlist(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	sc.bus.PublishScanStarted(scanID, len(entries))

	workers := sc.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}

	entryChan := make(chan *database.WatchlistEntry, len(entries))
	decisionChan := make(chan engine.Decision, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range entryChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				decision, err := sc.ScanSymbol(ctx, entry.Symbol, entry.Interval)
				if err != nil {
					sc.logger.Error().Err(err).Str("symbol", entry.Symbol).Msg("scan failed")
					continue
				}
				decisionChan <- decision
			}
		}()
	}

	for _, entry := range entries {
		entryChan <- entry
	}
	close(entryChan)

	go func() {
		wg.Wait()
		close(decisionChan)
	}()

	result := &ScanResult{
		ScanID:         scanID,
		StartTime:      start,
		SymbolsScanned: len(entries),
	}
	for decision := range decisionChan {
		result.Decisions = append(result.Decisions, decision)
		if decision.Action == engine.ActionOperate {
			result.Operate++
		}
	}
	result.EndTime = time.Now()

	sc.mu.Lock()
	sc.lastResult = result
	sc.mu.Unlock()

	sc.bus.PublishScanCompleted(scanID, len(result.Decisions), result.Operate, result.EndTime.Sub(start))
	sc.logger.Info().
		Str("scan_id", scanID).
		Int("symbols", len(entries)).
		Int("operate", result.Operate).
		Dur("elapsed", result.EndTime.Sub(start)).
		Msg("full scan complete")

	return result, nil
}

// GetLastResult returns the most recent full scan result, or nil.
func (sc *Scanner) GetLastResult() *ScanResult {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.lastResult
}

// runKeepAliveLoop periodically evaluates the reference symbol so the
// upstream data subscription stays warm, and emits a heartbeat.
func (sc *Scanner) runKeepAliveLoop() {
	defer sc.wg.Done()

	if sc.cfg.KeepAliveSymbol == "" || sc.cfg.KeepAliveInterval <= 0 {
		return
	}

	ticker := time.NewTicker(time.Duration(sc.cfg.KeepAliveInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sc.keepAlive()
		case <-sc.stopChan:
			return
		}
	}
}

func (sc *Scanner) keepAlive() {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	candles, err := sc.GetCandles(ctx, sc.cfg.KeepAliveSymbol, sc.mdCfg.DefaultInterval)
	if err != nil {
		sc.logger.Warn().Err(err).Msg("keepalive fetch failed")
		sc.bus.PublishError("scanner", "keepalive fetch failed", err)
		return
	}

	lastClose := candles[len(candles)-1].Close
	sc.bus.Publish(events.Event{
		Type: events.EventKeepAlive,
		Data: map[string]interface{}{
			"symbol":     sc.cfg.KeepAliveSymbol,
			"last_close": lastClose,
		},
	})

	if err := sc.notifier.SendHeartbeat(sc.cfg.KeepAliveSymbol, lastClose); err != nil {
		sc.logger.Warn().Err(err).Msg("heartbeat notification failed")
	}
}

// runSessionWatch announces each session opening once per UTC day.
func (sc *Scanner) runSessionWatch() {
	defer sc.wg.Done()

	interval := time.Duration(sc.cfg.SessionCheck) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sc.checkSessions(time.Now().UTC())
		case <-sc.stopChan:
			return
		}
	}
}

// checkSessions announces each currently-open session at most once per
// UTC day. The local map is the source of truth for this process; the
// Redis claim additionally dedupes across instances when available.
func (sc *Scanner) checkSessions(now time.Time) {
	day := now.Format("2006-01-02")

	for _, name := range []string{session.SessionLondon, session.SessionNewYork} {
		if !session.IsSessionOpen(name, now) {
			continue
		}

		sc.mu.Lock()
		seen := sc.announced[name] == day
		if !seen {
			sc.announced[name] = day
		}
		sc.mu.Unlock()
		if seen {
			continue
		}

		announce := true
		if sc.cache != nil && sc.cache.IsHealthy() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			claimed, err := sc.cache.ClaimSessionAnnouncement(ctx, name, now)
			cancel()
			if err == nil {
				announce = claimed
			}
		}
		if !announce {
			continue
		}

		sc.bus.PublishSessionOpened(name)
		if err := sc.notifier.SendSessionOpen(name); err != nil {
			sc.logger.Warn().Err(err).Str("session", name).Msg("session notification failed")
		}
	}
}

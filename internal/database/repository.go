package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repository provides data access methods
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck performs a database health check
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// ============================================================================
// DECISIONS
// ============================================================================

// SaveDecision inserts an engine decision
func (r *Repository) SaveDecision(ctx context.Context, d *DecisionRecord) error {
	reasons, err := json.Marshal(d.Reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}
	query := `
		INSERT INTO decisions (id, symbol, action, strategy, entry_kind, direction, risk_tier,
		                       entry, stop_loss, take_profit, tp2, tp3, reward_risk, session,
		                       reasons, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		d.ID, d.Symbol, d.Action, d.Strategy, d.EntryKind, d.Direction, d.RiskTier,
		d.Entry, d.StopLoss, d.TakeProfit, d.TP2, d.TP3, d.RewardRisk, d.Session,
		reasons, d.EvaluatedAt,
	).Scan(&d.CreatedAt)
}

// GetDecisionHistory retrieves decisions newest first
func (r *Repository) GetDecisionHistory(ctx context.Context, limit, offset int) ([]*DecisionRecord, error) {
	query := decisionSelect + `
		ORDER BY evaluated_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryDecisions(ctx, query, limit, offset)
}

// GetDecisionsBySymbol retrieves decisions for one symbol, newest first
func (r *Repository) GetDecisionsBySymbol(ctx context.Context, symbol string, limit int) ([]*DecisionRecord, error) {
	query := decisionSelect + `
		WHERE symbol = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`
	return r.queryDecisions(ctx, query, symbol, limit)
}

const decisionSelect = `
	SELECT id, symbol, action, strategy, entry_kind, direction, risk_tier,
	       entry, stop_loss, take_profit, tp2, tp3, reward_risk, session,
	       reasons, evaluated_at, created_at
	FROM decisions
`

func (r *Repository) queryDecisions(ctx context.Context, query string, args ...interface{}) ([]*DecisionRecord, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*DecisionRecord
	for rows.Next() {
		d := &DecisionRecord{}
		var reasons []byte
		if err := rows.Scan(
			&d.ID, &d.Symbol, &d.Action, &d.Strategy, &d.EntryKind, &d.Direction, &d.RiskTier,
			&d.Entry, &d.StopLoss, &d.TakeProfit, &d.TP2, &d.TP3, &d.RewardRisk, &d.Session,
			&reasons, &d.EvaluatedAt, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if err := json.Unmarshal(reasons, &d.Reasons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// ============================================================================
// WATCHLIST
// ============================================================================

// AddWatchlistEntry inserts or re-enables a watchlist symbol
func (r *Repository) AddWatchlistEntry(ctx context.Context, e *WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (symbol, instrument_class, interval, enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO UPDATE SET enabled = EXCLUDED.enabled, interval = EXCLUDED.interval
		RETURNING id, added_at
	`
	return r.db.Pool.QueryRow(
		ctx, query,
		e.Symbol, e.InstrumentClass, e.Interval, e.Enabled,
	).Scan(&e.ID, &e.AddedAt)
}

// RemoveWatchlistEntry deletes a watchlist symbol
func (r *Repository) RemoveWatchlistEntry(ctx context.Context, symbol string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM watchlist WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("symbol %s not in watchlist", symbol)
	}
	return nil
}

// GetWatchlist retrieves all watchlist entries
func (r *Repository) GetWatchlist(ctx context.Context, enabledOnly bool) ([]*WatchlistEntry, error) {
	query := `
		SELECT id, symbol, instrument_class, interval, enabled, added_at
		FROM watchlist
	`
	if enabledOnly {
		query += ` WHERE enabled = TRUE`
	}
	query += ` ORDER BY symbol`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []*WatchlistEntry
	for rows.Next() {
		e := &WatchlistEntry{}
		if err := rows.Scan(&e.ID, &e.Symbol, &e.InstrumentClass, &e.Interval, &e.Enabled, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ============================================================================
// STRATEGY MODES
// ============================================================================

// GetStrategyModes retrieves all persisted strategy modes
func (r *Repository) GetStrategyModes(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT strategy, mode FROM strategy_modes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategy modes: %w", err)
	}
	defer rows.Close()

	modes := make(map[string]string)
	for rows.Next() {
		var strategyName, mode string
		if err := rows.Scan(&strategyName, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan strategy mode: %w", err)
		}
		modes[strategyName] = mode
	}
	return modes, rows.Err()
}

// SetStrategyMode upserts one strategy's mode
func (r *Repository) SetStrategyMode(ctx context.Context, strategyName, mode string) error {
	query := `
		INSERT INTO strategy_modes (strategy, mode, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (strategy) DO UPDATE SET mode = EXCLUDED.mode, updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.Pool.Exec(ctx, query, strategyName, mode)
	if err != nil {
		return fmt.Errorf("failed to set strategy mode: %w", err)
	}
	return nil
}

// GetStrategyMode retrieves one strategy's mode
func (r *Repository) GetStrategyMode(ctx context.Context, strategyName string) (string, error) {
	var mode string
	err := r.db.Pool.QueryRow(ctx, `SELECT mode FROM strategy_modes WHERE strategy = $1`, strategyName).Scan(&mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get strategy mode: %w", err)
	}
	return mode, nil
}

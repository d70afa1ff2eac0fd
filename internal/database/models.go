package database

import "time"

// DecisionRecord is the persisted form of an engine decision
type DecisionRecord struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Action      string    `json:"action"`
	Strategy    string    `json:"strategy,omitempty"`
	EntryKind   string    `json:"entry_kind,omitempty"`
	Direction   string    `json:"direction,omitempty"`
	RiskTier    string    `json:"risk_tier,omitempty"`
	Entry       float64   `json:"entry,omitempty"`
	StopLoss    float64   `json:"stop_loss,omitempty"`
	TakeProfit  float64   `json:"take_profit,omitempty"`
	TP2         float64   `json:"tp2,omitempty"`
	TP3         float64   `json:"tp3,omitempty"`
	RewardRisk  float64   `json:"reward_risk,omitempty"`
	Session     string    `json:"session,omitempty"`
	Reasons     []string  `json:"reasons"`
	EvaluatedAt time.Time `json:"evaluated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// WatchlistEntry is one instrument under periodic scan
type WatchlistEntry struct {
	ID              int64     `json:"id"`
	Symbol          string    `json:"symbol"`
	InstrumentClass string    `json:"instrument_class"`
	Interval        string    `json:"interval"`
	Enabled         bool      `json:"enabled"`
	AddedAt         time.Time `json:"added_at"`
}

// StrategyMode is the persisted tri-state mode of one strategy
type StrategyMode struct {
	Strategy  string    `json:"strategy"`
	Mode      string    `json:"mode"`
	UpdatedAt time.Time `json:"updated_at"`
}

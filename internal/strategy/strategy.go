// Package strategy contains the tradeable-setup detectors. Every
// evaluator implements the same contract: given a candle window and an
// evaluation context it returns a Verdict, re-validating its own
// preconditions (window length, session) rather than trusting the
// caller. A failed precondition is a normal negative verdict, not an
// error.
package strategy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ultron-engine/internal/market"
	"ultron-engine/internal/session"
)

// ErrUnknownStrategy is returned when a name is not in Names.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Mode is the tri-state switch for one strategy.
type Mode string

const (
	ModeOff      Mode = "OFF"
	ModeStandard Mode = "STANDARD"
	ModeRisk     Mode = "RISK" // faster parameters, more aggressive signals
)

// ParseMode normalizes a stored mode string, defaulting to OFF.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToUpper(s)); m {
	case ModeStandard, ModeRisk:
		return m
	}
	return ModeOff
}

// Enabled reports whether the mode allows the strategy to run.
func (m Mode) Enabled() bool {
	return m == ModeStandard || m == ModeRisk
}

// Config maps strategy names to their modes for one arbitration call.
// It is a value the caller owns; the engine never stores it.
type Config map[string]Mode

// ModeFor returns the configured mode for a strategy, OFF when absent.
func (c Config) ModeFor(name string) Mode {
	if c == nil {
		return ModeOff
	}
	if m, ok := c[name]; ok {
		return ParseMode(string(m))
	}
	return ModeOff
}

// Strategy names, used as Config keys and in API payloads.
const (
	NameStructureBreak    = "structureBreak"
	NameCycleReversal     = "cycleReversal"
	NameDarvasBox         = "darvasBox"
	NameTrendContinuation = "trendContinuation"
	NameDoubleSupertrend  = "doubleSupertrend"
	NameEMATriple         = "emaTriple"
)

// Names lists every strategy in arbitration priority order, gatekeeper
// first.
var Names = []string{
	NameStructureBreak,
	NameCycleReversal,
	NameDarvasBox,
	NameTrendContinuation,
	NameDoubleSupertrend,
	NameEMATriple,
}

// RiskTier labels how aggressive a strategy's signals are.
type RiskTier string

const (
	TierLow    RiskTier = "low"
	TierMedium RiskTier = "medium"
	TierHigh   RiskTier = "high"
)

// Direction of a proposed trade.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Input is the evaluation context for one call. Candles are oldest
// first; Now is the caller's clock, consumed only by the session gate.
type Input struct {
	Candles []market.Candle
	Class   market.InstrumentClass
	Now     time.Time
	Mode    Mode
}

// Verdict is the uniform result shape all strategies produce. When
// Valid is false, Reason explains why; level fields are zero. TP2/TP3
// are only set by ladder strategies.
type Verdict struct {
	Valid      bool      `json:"valid"`
	EntryKind  string    `json:"entry_kind,omitempty"`
	Direction  Direction `json:"direction,omitempty"`
	Entry      float64   `json:"entry,omitempty"`
	Stop       float64   `json:"stop,omitempty"`
	TakeProfit float64   `json:"take_profit,omitempty"`
	TP2        float64   `json:"tp2,omitempty"`
	TP3        float64   `json:"tp3,omitempty"`
	RewardRisk float64   `json:"reward_risk,omitempty"`
	Session    string    `json:"session,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Evaluator is the capability every strategy exposes to the arbiter.
type Evaluator interface {
	Name() string
	RiskTier() RiskTier
	Evaluate(in Input) Verdict
}

// invalid builds a negative verdict.
func invalid(format string, args ...interface{}) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// gate applies the two preconditions shared by all strategies: an open
// session (crypto is always open) and a minimum window length. The
// returned verdict is meaningful only when ok is false.
func gate(in Input, minCandles int) (sessionName string, bad Verdict, ok bool) {
	st := session.IsMarketOpen(in.Class, in.Now)
	if !st.Open {
		return "", invalid("market session closed for %s instruments", in.Class), false
	}
	if len(in.Candles) < minCandles {
		return "", invalid("insufficient data: %d candles, need %d", len(in.Candles), minCandles), false
	}
	return st.Session, Verdict{}, true
}

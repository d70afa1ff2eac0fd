// Package engine arbitrates between the strategy evaluators. Each call
// is a pure function of (candles, config, now): the session gate runs
// first, a structure break is a mandatory precondition for any signal,
// and the enabled strategies are then offered the window in fixed
// priority order. The first valid verdict wins; strategies never see
// each other's output.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ultron-engine/internal/market"
	"ultron-engine/internal/session"
	"ultron-engine/internal/strategy"
)

// Action is the engine's final answer.
type Action string

const (
	ActionOperate   Action = "OPERATE"
	ActionNoOperate Action = "NO_OPERATE"
)

// Decision is the single artifact the engine emits per scan. Reasons
// accumulate the rationale trail in evaluation order, including the
// negative verdicts of strategies that declined before the winner.
type Decision struct {
	ID          string             `json:"id"`
	Symbol      string             `json:"symbol"`
	Action      Action             `json:"action"`
	Strategy    string             `json:"strategy,omitempty"`
	EntryKind   string             `json:"entry_kind,omitempty"`
	Direction   strategy.Direction `json:"direction,omitempty"`
	RiskTier    strategy.RiskTier  `json:"risk_tier,omitempty"`
	Entry       float64            `json:"entry,omitempty"`
	Stop        float64            `json:"stop,omitempty"`
	TakeProfit  float64            `json:"take_profit,omitempty"`
	TP2         float64            `json:"tp2,omitempty"`
	TP3         float64            `json:"tp3,omitempty"`
	RewardRisk  float64            `json:"reward_risk,omitempty"`
	Session     string             `json:"session,omitempty"`
	Reasons     []string           `json:"reasons"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}

// decisionNamespace scopes the name-based decision IDs.
var decisionNamespace = uuid.MustParse("7c9e2f10-4b1d-4d38-9a57-0e64d3c1aa42")

// decisionID derives a stable UUID from the call inputs, so repeated
// arbitration over the same window yields an identical Decision.
func decisionID(symbol string, candles []market.Candle, now time.Time) string {
	seed := fmt.Sprintf("%s|%d|%d", symbol, now.UnixNano(), len(candles))
	if n := len(candles); n > 0 {
		last := candles[n-1]
		seed = fmt.Sprintf("%s|%d|%g", seed, last.Timestamp.UnixNano(), last.Close)
	}
	return uuid.NewSHA1(decisionNamespace, []byte(seed)).String()
}

// slot binds one evaluator into the priority table. Priority is data,
// not control flow, so tests can reorder it.
type slot struct {
	name      string
	evaluator strategy.Evaluator
}

// Engine holds the evaluator table. It carries no per-call state and
// is safe for concurrent Arbitrate calls across symbols.
type Engine struct {
	gatekeeper strategy.Evaluator
	priority   []slot
	logger     zerolog.Logger
}

// New builds the engine with the default strategy table: the structure
// break gatekeeper plus [cycle reversal, darvas box, trend
// continuation, double supertrend, triple EMA] in priority order.
func New(logger zerolog.Logger) *Engine {
	return &Engine{
		gatekeeper: strategy.NewStructureBreak(),
		priority: []slot{
			{strategy.NameCycleReversal, strategy.NewCycleReversal()},
			{strategy.NameDarvasBox, strategy.NewDarvasBox()},
			{strategy.NameTrendContinuation, strategy.NewTrendContinuation()},
			{strategy.NameDoubleSupertrend, strategy.NewDoubleSupertrend()},
			{strategy.NameEMATriple, strategy.NewEMATriple()},
		},
		logger: logger.With().Str("component", "engine").Logger(),
	}
}

// Arbitrate runs one full decision cycle for a symbol. It never
// returns an error for data-quality problems: those become NO_OPERATE
// decisions with reasons.
func (e *Engine) Arbitrate(symbol string, candles []market.Candle, cfg strategy.Config, now time.Time) Decision {
	decision := Decision{
		ID:          decisionID(symbol, candles, now),
		Symbol:      symbol,
		Action:      ActionNoOperate,
		EvaluatedAt: now,
	}

	class := market.ClassifySymbol(symbol)
	st := session.IsMarketOpen(class, now)
	decision.Session = st.Session
	if !st.Open {
		decision.Reasons = append(decision.Reasons, "outside session: market closed for "+string(class)+" instruments")
		return decision
	}

	// Mandatory precondition: every signal must be backed by a
	// structural break, regardless of which strategy ultimately fires.
	gateVerdict := e.safeEvaluate(e.gatekeeper, strategy.Input{
		Candles: candles,
		Class:   class,
		Now:     now,
		Mode:    cfg.ModeFor(strategy.NameStructureBreak),
	})
	if !gateVerdict.Valid {
		decision.Reasons = append(decision.Reasons, "structure gate: "+gateVerdict.Reason)
		return decision
	}
	decision.Reasons = append(decision.Reasons, "structure gate: "+gateVerdict.Reason)

	for _, s := range e.priority {
		mode := cfg.ModeFor(s.name)
		if !mode.Enabled() {
			continue
		}

		verdict := e.safeEvaluate(s.evaluator, strategy.Input{
			Candles: candles,
			Class:   class,
			Now:     now,
			Mode:    mode,
		})
		if !verdict.Valid {
			decision.Reasons = append(decision.Reasons, s.name+": "+verdict.Reason)
			continue
		}

		decision.Action = ActionOperate
		decision.Strategy = s.name
		decision.EntryKind = verdict.EntryKind
		decision.Direction = verdict.Direction
		decision.RiskTier = s.evaluator.RiskTier()
		decision.Entry = verdict.Entry
		decision.Stop = verdict.Stop
		decision.TakeProfit = verdict.TakeProfit
		decision.TP2 = verdict.TP2
		decision.TP3 = verdict.TP3
		decision.RewardRisk = verdict.RewardRisk
		if verdict.Session != "" {
			decision.Session = verdict.Session
		}
		decision.Reasons = append(decision.Reasons, s.name+": "+verdict.Reason)
		return decision
	}

	decision.Reasons = append(decision.Reasons, "no enabled strategy triggered")
	return decision
}

// Diagnostics runs every strategy against the window regardless of the
// priority short-circuit, for the shadow diagnostics endpoint. The
// returned map is keyed by strategy name; the gatekeeper is included.
func (e *Engine) Diagnostics(symbol string, candles []market.Candle, cfg strategy.Config, now time.Time) map[string]strategy.Verdict {
	class := market.ClassifySymbol(symbol)
	out := make(map[string]strategy.Verdict, len(e.priority)+1)

	run := func(name string, ev strategy.Evaluator) {
		mode := cfg.ModeFor(name)
		if !mode.Enabled() {
			mode = strategy.ModeStandard // shadow-evaluate even switched-off strategies
		}
		out[name] = e.safeEvaluate(ev, strategy.Input{
			Candles: candles,
			Class:   class,
			Now:     now,
			Mode:    mode,
		})
	}

	run(strategy.NameStructureBreak, e.gatekeeper)
	for _, s := range e.priority {
		run(s.name, s.evaluator)
	}
	return out
}

// safeEvaluate isolates evaluator faults: a panic in one strategy
// becomes an invalid verdict instead of aborting arbitration for the
// others.
func (e *Engine) safeEvaluate(ev strategy.Evaluator, in strategy.Input) (verdict strategy.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Str("strategy", ev.Name()).
				Interface("panic", r).
				Msg("strategy evaluator fault")
			verdict = strategy.Verdict{Reason: fmt.Sprintf("evaluator fault: %v", r)}
		}
	}()
	return ev.Evaluate(in)
}

package strategy

import (
	"strings"
	"testing"
	"time"

	"ultron-engine/internal/market"
)

// bullishReversalCandles: a five-bar leg from 90 up through the prior
// high, with the order block bar closing at 98 — inside the 0.5-0.618
// retracement band [97.64, 100] of the 90->110 impulse.
func bullishReversalCandles() []market.Candle {
	candles := quiet(14, 100)
	return append(candles,
		market.Candle{Open: 96, High: 97, Low: 90, Close: 92},    // impulse origin
		market.Candle{Open: 92, High: 94, Low: 91, Close: 93},
		market.Candle{Open: 93, High: 96, Low: 92, Close: 95},
		market.Candle{Open: 95, High: 100, Low: 94, Close: 97},   // prior 5-bar high
		market.Candle{Open: 99, High: 100, Low: 97, Close: 98},   // order block = 98
		market.Candle{Open: 100, High: 111, Low: 99, Close: 110}, // break + engulf
	)
}

func TestCycleReversalBullish(t *testing.T) {
	s := NewCycleReversal()
	v := s.Evaluate(cryptoInput(bullishReversalCandles(), ModeStandard))

	if !v.Valid {
		t.Fatalf("expected a valid long reversal, got reason %q", v.Reason)
	}
	if v.Direction != Long {
		t.Errorf("direction = %v, want long", v.Direction)
	}
	if v.EntryKind != KindCycleReversalLong {
		t.Errorf("entry kind = %q, want %q", v.EntryKind, KindCycleReversalLong)
	}
	if v.Entry != 110 || v.Stop != 98 {
		t.Errorf("entry/stop = %v/%v, want 110/98", v.Entry, v.Stop)
	}
	// TP = entry + 2*(entry-stop) = 110 + 24
	if v.TakeProfit != 134 {
		t.Errorf("take profit = %v, want 134", v.TakeProfit)
	}
	if v.RewardRisk != 2 {
		t.Errorf("reward:risk = %v, want 2", v.RewardRisk)
	}
	if v.Session != "24/7" {
		t.Errorf("session = %q, want 24/7", v.Session)
	}
}

func TestCycleReversalBearish(t *testing.T) {
	candles := quiet(14, 100)
	candles = append(candles,
		market.Candle{Open: 104, High: 110, Low: 103, Close: 108}, // impulse origin
		market.Candle{Open: 108, High: 109, Low: 106, Close: 107},
		market.Candle{Open: 107, High: 108, Low: 104, Close: 105},
		market.Candle{Open: 105, High: 106, Low: 100, Close: 103}, // prior 5-bar low
		market.Candle{Open: 101, High: 103, Low: 100, Close: 102}, // order block = 102
		market.Candle{Open: 100, High: 101, Low: 89, Close: 90},   // break + engulf
	)

	v := NewCycleReversal().Evaluate(cryptoInput(candles, ModeStandard))
	if !v.Valid {
		t.Fatalf("expected a valid short reversal, got reason %q", v.Reason)
	}
	if v.Direction != Short {
		t.Errorf("direction = %v, want short", v.Direction)
	}
	if v.Entry != 90 || v.Stop != 102 {
		t.Errorf("entry/stop = %v/%v, want 90/102", v.Entry, v.Stop)
	}
	// Retracement band of the 110->90 impulse is [100, 102.36].
	if v.TakeProfit != 66 {
		t.Errorf("take profit = %v, want 66", v.TakeProfit)
	}
	if v.RewardRisk != 2 {
		t.Errorf("reward:risk = %v, want 2", v.RewardRisk)
	}
}

func TestCycleReversalOrderBlockOutsideZone(t *testing.T) {
	candles := bullishReversalCandles()
	// Push the order block down to 91, well below the 97.64 band edge.
	candles[18] = market.Candle{Open: 92, High: 93, Low: 90.5, Close: 91}

	v := NewCycleReversal().Evaluate(cryptoInput(candles, ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection for an order block outside the band")
	}
	if !strings.Contains(v.Reason, "retracement zone") {
		t.Errorf("reason = %q, want a retracement zone rejection", v.Reason)
	}
}

func TestCycleReversalRiskModeWidensBand(t *testing.T) {
	candles := bullishReversalCandles()
	// Order block at 97 sits at the 0.65 retracement: outside the
	// standard band, inside the risk band [95.9, 102.36].
	candles[18] = market.Candle{Open: 98, High: 99, Low: 96, Close: 97}

	if v := NewCycleReversal().Evaluate(cryptoInput(candles, ModeStandard)); v.Valid {
		t.Fatal("standard mode should reject the 0.65 retracement")
	}
	v := NewCycleReversal().Evaluate(cryptoInput(candles, ModeRisk))
	if !v.Valid {
		t.Fatalf("risk mode should accept the 0.65 retracement, got %q", v.Reason)
	}
	if v.Stop != 97 || v.TakeProfit != 136 {
		t.Errorf("stop/tp = %v/%v, want 97/136", v.Stop, v.TakeProfit)
	}
}

func TestCycleReversalNeedsEngulfing(t *testing.T) {
	candles := bullishReversalCandles()
	// Same break and zone, but the closing candle's body shrinks below
	// the order block bar's body.
	candles[19] = market.Candle{Open: 109.5, High: 111, Low: 109, Close: 110}

	v := NewCycleReversal().Evaluate(cryptoInput(candles, ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection without an engulfing confirmation")
	}
	if !strings.Contains(v.Reason, "engulfing") {
		t.Errorf("reason = %q, want an engulfing rejection", v.Reason)
	}
}

func TestCycleReversalNoBreak(t *testing.T) {
	v := NewCycleReversal().Evaluate(cryptoInput(quiet(20, 100), ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection without a break of structure")
	}
	if !strings.Contains(v.Reason, "no break") {
		t.Errorf("reason = %q, want a structure rejection", v.Reason)
	}
}

func TestCycleReversalInsufficientData(t *testing.T) {
	v := NewCycleReversal().Evaluate(cryptoInput(quiet(10, 100), ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection on a short window")
	}
	if !strings.Contains(v.Reason, "insufficient data") {
		t.Errorf("reason = %q, want insufficient data", v.Reason)
	}
}

func TestCycleReversalClosedSession(t *testing.T) {
	in := Input{
		Candles: bullishReversalCandles(),
		Class:   market.ClassForex,
		Now:     time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), // Saturday
		Mode:    ModeStandard,
	}
	v := NewCycleReversal().Evaluate(in)
	if v.Valid {
		t.Fatal("expected rejection outside the forex session")
	}
	if !strings.Contains(v.Reason, "session closed") {
		t.Errorf("reason = %q, want a session rejection", v.Reason)
	}
}

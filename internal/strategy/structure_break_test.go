package strategy

import (
	"strings"
	"testing"
	"time"

	"ultron-engine/internal/market"
)

func TestStructureBreakBullishBOS(t *testing.T) {
	candles := quiet(20, 100)
	// New high above the quiet 101 ceiling on five times the volume.
	candles[19] = market.Candle{Open: 100, High: 103, Low: 99.5, Close: 102, Volume: 5000}

	v := NewStructureBreak().Evaluate(cryptoInput(candles, ModeStandard))
	if !v.Valid {
		t.Fatalf("expected a bullish break, got reason %q", v.Reason)
	}
	if v.EntryKind != KindBullishBOS {
		t.Errorf("entry kind = %q, want %q", v.EntryKind, KindBullishBOS)
	}
	if v.Direction != Long {
		t.Errorf("direction = %v, want long", v.Direction)
	}
	if v.Session != "24/7" {
		t.Errorf("session = %q, want 24/7", v.Session)
	}
}

func TestStructureBreakBearishCHoCH(t *testing.T) {
	candles := quiet(20, 100)
	candles[19] = market.Candle{Open: 100, High: 100.5, Low: 97, Close: 98, Volume: 5000}

	v := NewStructureBreak().Evaluate(cryptoInput(candles, ModeStandard))
	if !v.Valid {
		t.Fatalf("expected a bearish break, got reason %q", v.Reason)
	}
	if v.EntryKind != KindBearishCHoCH {
		t.Errorf("entry kind = %q, want %q", v.EntryKind, KindBearishCHoCH)
	}
	if v.Direction != Short {
		t.Errorf("direction = %v, want short", v.Direction)
	}
}

func TestStructureBreakRejectsThinVolume(t *testing.T) {
	candles := quiet(20, 100)
	// The break is there, but 800 sits under the 15-bar average.
	candles[19] = market.Candle{Open: 100, High: 103, Low: 99.5, Close: 102, Volume: 800}

	v := NewStructureBreak().Evaluate(cryptoInput(candles, ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection on below-average volume")
	}
	if !strings.Contains(v.Reason, "volume") {
		t.Errorf("reason = %q, want a volume rejection", v.Reason)
	}
}

func TestStructureBreakRejectsInsideBar(t *testing.T) {
	candles := quiet(20, 100)
	candles[19] = market.Candle{Open: 100, High: 100.5, Low: 99.5, Close: 100, Volume: 5000}

	v := NewStructureBreak().Evaluate(cryptoInput(candles, ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection for an inside bar")
	}
	if !strings.Contains(v.Reason, "inside prior bar") {
		t.Errorf("reason = %q, want an inside-bar rejection", v.Reason)
	}
}

func TestStructureBreakInsufficientData(t *testing.T) {
	v := NewStructureBreak().Evaluate(cryptoInput(quiet(19, 100), ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection on a short window")
	}
	if !strings.Contains(v.Reason, "insufficient data") {
		t.Errorf("reason = %q, want insufficient data", v.Reason)
	}
}

func TestStructureBreakClosedSession(t *testing.T) {
	in := Input{
		Candles: quiet(20, 100),
		Class:   market.ClassForex,
		Now:     time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), // Sunday
		Mode:    ModeStandard,
	}
	v := NewStructureBreak().Evaluate(in)
	if v.Valid {
		t.Fatal("expected rejection outside the forex session")
	}
	if !strings.Contains(v.Reason, "session closed") {
		t.Errorf("reason = %q, want a session rejection", v.Reason)
	}
}

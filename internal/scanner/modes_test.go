package scanner

import (
	"context"
	"errors"
	"testing"

	"ultron-engine/config"
	"ultron-engine/internal/strategy"
)

func testStrategyConfig() config.StrategyConfig {
	return config.StrategyConfig{
		StructureBreak:    "STANDARD",
		CycleReversal:     "STANDARD",
		DarvasBox:         "RISK",
		TrendContinuation: "OFF",
		DoubleSupertrend:  "standard", // case-insensitive
		EMATriple:         "bogus",    // unknown strings fall back to OFF
	}
}

func TestModeResolverDefaults(t *testing.T) {
	mr := NewModeResolver(testStrategyConfig(), nil)

	modes, err := mr.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := map[string]strategy.Mode{
		strategy.NameStructureBreak:    strategy.ModeStandard,
		strategy.NameCycleReversal:     strategy.ModeStandard,
		strategy.NameDarvasBox:         strategy.ModeRisk,
		strategy.NameTrendContinuation: strategy.ModeOff,
		strategy.NameDoubleSupertrend:  strategy.ModeStandard,
		strategy.NameEMATriple:         strategy.ModeOff,
	}
	for name, mode := range want {
		if modes[name] != mode {
			t.Errorf("%s = %v, want %v", name, modes[name], mode)
		}
	}
}

func TestModeResolverSetWithoutRepo(t *testing.T) {
	mr := NewModeResolver(testStrategyConfig(), nil)

	if err := mr.Set(context.Background(), strategy.NameEMATriple, strategy.ModeRisk); err != nil {
		t.Fatalf("set: %v", err)
	}
	modes, err := mr.Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if modes[strategy.NameEMATriple] != strategy.ModeRisk {
		t.Errorf("emaTriple = %v, want the in-memory override", modes[strategy.NameEMATriple])
	}
}

func TestModeResolverRejectsUnknownStrategy(t *testing.T) {
	mr := NewModeResolver(testStrategyConfig(), nil)

	err := mr.Set(context.Background(), "martingale", strategy.ModeStandard)
	if !errors.Is(err, strategy.ErrUnknownStrategy) {
		t.Errorf("err = %v, want ErrUnknownStrategy", err)
	}
}

func TestResolveCopiesDefaults(t *testing.T) {
	mr := NewModeResolver(testStrategyConfig(), nil)

	modes, _ := mr.Resolve(context.Background())
	modes[strategy.NameStructureBreak] = strategy.ModeOff

	again, _ := mr.Resolve(context.Background())
	if again[strategy.NameStructureBreak] != strategy.ModeStandard {
		t.Error("mutating a resolved config leaked into the defaults")
	}
}

package strategy

import (
	"math"

	"ultron-engine/internal/indicators"
	"ultron-engine/internal/risk"
)

// KindDoubleSupertrend is the entry kind for the dual-speed alignment.
const KindDoubleSupertrend = "Double Supertrend Pullback"

const (
	doubleSupertrendMinCandles = 50
	pullbackTolerance          = 0.01
)

// DoubleSupertrend requires a fast and a slow Supertrend to agree on a
// buy trend with the fast line having just crossed above the slow one,
// plus a structural pullback confirmation (double bottom or rising
// minimum). The slow band becomes the stop and targets ladder at 1x,
// 2x and 3x the risk distance.
type DoubleSupertrend struct{}

func NewDoubleSupertrend() *DoubleSupertrend {
	return &DoubleSupertrend{}
}

func (s *DoubleSupertrend) Name() string {
	return NameDoubleSupertrend
}

func (s *DoubleSupertrend) RiskTier() RiskTier {
	return TierMedium
}

func (s *DoubleSupertrend) params(mode Mode) (fast, slow indicators.SupertrendParams) {
	if mode == ModeRisk {
		return indicators.SupertrendFastRisk, indicators.SupertrendSlowRisk
	}
	return indicators.SupertrendFastStandard, indicators.SupertrendSlowStandard
}

func (s *DoubleSupertrend) Evaluate(in Input) Verdict {
	sessionName, bad, ok := gate(in, doubleSupertrendMinCandles)
	if !ok {
		return bad
	}

	fastParams, slowParams := s.params(in.Mode)
	fast := indicators.Supertrend(in.Candles, fastParams)
	slow := indicators.Supertrend(in.Candles, slowParams)

	i := len(in.Candles) - 1
	fastNow, slowNow := fast[i], slow[i]
	fastPrev, slowPrev := fast[i-1], slow[i-1]

	if fastNow.Trend == indicators.TrendOff || slowNow.Trend == indicators.TrendOff ||
		!risk.Finite(fastNow.Value, slowNow.Value, fastPrev.Value, slowPrev.Value) {
		return invalid("supertrend warmup incomplete for the current window")
	}

	bothBuy := fastNow.Trend == indicators.TrendBuy && slowNow.Trend == indicators.TrendBuy
	crossed := fastNow.Value > slowNow.Value && fastPrev.Value <= slowPrev.Value
	if !bothBuy || !crossed {
		return invalid("no dual supertrend alignment: fast=%s slow=%s crossover=%t",
			fastNow.Trend, slowNow.Trend, crossed)
	}

	if !indicators.PullbackConfirmation(in.Candles, indicators.BiasBullish, pullbackTolerance) {
		return invalid("no pullback confirmation: lows show neither double bottom nor rising minimum")
	}

	entry := in.Candles[i].Close
	stop := slowNow.Value
	if math.Abs(entry-stop) == 0 {
		return invalid("degenerate levels: entry sits on the slow band")
	}
	tp1, tp2, tp3 := risk.Ladder(entry, stop)
	rr, err := risk.RewardRisk(entry, stop, tp1)
	if err != nil {
		return invalid("degenerate levels: entry %.5f equals stop", entry)
	}

	return Verdict{
		Valid:      true,
		EntryKind:  KindDoubleSupertrend,
		Direction:  Long,
		Entry:      entry,
		Stop:       stop,
		TakeProfit: tp1,
		TP2:        tp2,
		TP3:        tp3,
		RewardRisk: rr,
		Session:    sessionName,
		Reason:     "dual supertrend buy alignment with fresh crossover and pullback structure",
	}
}

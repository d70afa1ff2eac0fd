package strategy

import (
	"ultron-engine/internal/indicators"
	"ultron-engine/internal/market"
	"ultron-engine/internal/risk"
)

// Entry kinds for the institutional reversal detector.
const (
	KindCycleReversalLong  = "Cycle Reversal Long"
	KindCycleReversalShort = "Cycle Reversal Short"
)

const (
	cycleMinCandles  = 20
	cycleBOSLookback = 5
	cycleRewardRatio = 2.0
)

// CycleReversal detects an institutional cycle change: a break of the
// recent structure, a price order block sitting inside the golden
// retracement zone of the impulse, and an engulfing confirmation
// candle. Both directions are evaluated symmetrically. Risk mode
// widens the acceptable retracement band.
type CycleReversal struct{}

func NewCycleReversal() *CycleReversal {
	return &CycleReversal{}
}

func (s *CycleReversal) Name() string {
	return NameCycleReversal
}

func (s *CycleReversal) RiskTier() RiskTier {
	return TierHigh
}

// fibBand returns the retracement band [near, far] as fractions of the
// impulse.
func (s *CycleReversal) fibBand(mode Mode) (near, far float64) {
	if mode == ModeRisk {
		return 0.382, 0.705
	}
	return 0.5, 0.618
}

func (s *CycleReversal) Evaluate(in Input) Verdict {
	sessionName, bad, ok := gate(in, cycleMinCandles)
	if !ok {
		return bad
	}

	bos := indicators.DetectBOS(in.Candles, cycleBOSLookback)
	if bos == nil {
		return invalid("no break of the %d-bar structure", cycleBOSLookback)
	}

	n := len(in.Candles)
	current := in.Candles[n-1]
	prev := in.Candles[n-2]
	entry := current.Close
	orderBlock := bos.OrderBlock

	// The order block must sit inside the retracement band of the
	// impulse leg, measured from the swing the break launched from up
	// to the current close. The same interval test covers both
	// directions because the impulse sign flips with the bias.
	start := n - 1 - cycleBOSLookback
	var legOrigin float64
	if bos.Bias == indicators.BiasBullish {
		legOrigin = market.LowestLow(in.Candles, start, n-1)
	} else {
		legOrigin = market.HighestHigh(in.Candles, start, n-1)
	}
	near, far := s.fibBand(in.Mode)
	impulse := entry - legOrigin
	zoneNear := entry - impulse*near
	zoneFar := entry - impulse*far
	inZone := between(orderBlock, zoneNear, zoneFar)
	if !inZone {
		return invalid("order block %.5f outside the %.3f-%.3f retracement zone", orderBlock, near, far)
	}

	if !indicators.IsEngulfing(prev, current, bos.Bias) {
		return invalid("no engulfing confirmation candle")
	}

	stop := orderBlock
	takeProfit := entry + cycleRewardRatio*(entry-stop)
	rr, err := risk.RewardRisk(entry, stop, takeProfit)
	if err != nil {
		return invalid("degenerate levels: entry %.5f equals stop", entry)
	}

	v := Verdict{
		Valid:      true,
		Entry:      entry,
		Stop:       stop,
		TakeProfit: takeProfit,
		RewardRisk: rr,
		Session:    sessionName,
	}
	if bos.Bias == indicators.BiasBullish {
		v.EntryKind = KindCycleReversalLong
		v.Direction = Long
		v.Reason = "bullish BOS with order block in retracement zone and engulfing confirmation"
	} else {
		v.EntryKind = KindCycleReversalShort
		v.Direction = Short
		v.Reason = "bearish BOS with order block in retracement zone and engulfing confirmation"
	}
	return v
}

func between(v, a, b float64) bool {
	if a > b {
		a, b = b, a
	}
	return v >= a && v <= b
}

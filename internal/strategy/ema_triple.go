package strategy

import (
	"math"

	"ultron-engine/internal/indicators"
	"ultron-engine/internal/risk"
)

// Entry kinds for the stacked-EMA trend strategy.
const (
	KindEMATripleLong  = "Triple EMA Long"
	KindEMATripleShort = "Triple EMA Short"
)

const (
	emaTripleADXPeriod  = 14
	emaTripleStopATR    = 1.5
	emaTripleADXFloor   = 20.0
	emaADXFloorRisk     = 15.0
)

// emaTriplePeriods holds the three stacked lookbacks per mode.
var emaTriplePeriods = map[Mode][3]int{
	ModeStandard: {8, 21, 55},
	ModeRisk:     {5, 13, 34},
}

// EMATriple trades trend alignment: three stacked EMAs in order with
// price leading the fastest one, filtered by ADX trend strength. Stops
// sit an ATR multiple away; targets ladder from the risk distance.
type EMATriple struct{}

func NewEMATriple() *EMATriple {
	return &EMATriple{}
}

func (s *EMATriple) Name() string {
	return NameEMATriple
}

func (s *EMATriple) RiskTier() RiskTier {
	return TierMedium
}

func (s *EMATriple) Evaluate(in Input) Verdict {
	periods, ok := emaTriplePeriods[in.Mode]
	if !ok {
		periods = emaTriplePeriods[ModeStandard]
	}
	// Slowest EMA plus the ADX warmup dominate the minimum window.
	minCandles := periods[2] + 2*emaTripleADXPeriod

	sessionName, bad, ok := gate(in, minCandles)
	if !ok {
		return bad
	}

	fast := lastOf(indicators.CloseEMA(in.Candles, periods[0]))
	mid := lastOf(indicators.CloseEMA(in.Candles, periods[1]))
	slow := lastOf(indicators.CloseEMA(in.Candles, periods[2]))
	adx := indicators.LastADX(in.Candles, emaTripleADXPeriod)
	atr := indicators.LastATR(in.Candles, emaTripleADXPeriod)
	if !risk.Finite(fast, mid, slow, adx, atr) {
		return invalid("indicator warmup incomplete for the current window")
	}

	adxFloor := emaTripleADXFloor
	if in.Mode == ModeRisk {
		adxFloor = emaADXFloorRisk
	}
	if adx < adxFloor {
		return invalid("trend too weak: ADX %.1f below floor %.1f", adx, adxFloor)
	}

	close := in.Candles[len(in.Candles)-1].Close

	var direction Direction
	switch {
	case close > fast && fast > mid && mid > slow:
		direction = Long
	case close < fast && fast < mid && mid < slow:
		direction = Short
	default:
		return invalid("EMAs not stacked: %.5f / %.5f / %.5f around close %.5f", fast, mid, slow, close)
	}

	entry := close
	stop := entry - emaTripleStopATR*atr
	if direction == Short {
		stop = entry + emaTripleStopATR*atr
	}
	tp1, tp2, tp3 := risk.Ladder(entry, stop)
	rr, err := risk.RewardRisk(entry, stop, tp1)
	if err != nil || math.Abs(entry-stop) == 0 {
		return invalid("degenerate levels: ATR stop collapsed onto entry")
	}

	v := Verdict{
		Valid:      true,
		Direction:  direction,
		Entry:      entry,
		Stop:       stop,
		TakeProfit: tp1,
		TP2:        tp2,
		TP3:        tp3,
		RewardRisk: rr,
		Session:    sessionName,
	}
	if direction == Long {
		v.EntryKind = KindEMATripleLong
		v.Reason = "stacked bullish EMAs with ADX trend confirmation"
	} else {
		v.EntryKind = KindEMATripleShort
		v.Reason = "stacked bearish EMAs with ADX trend confirmation"
	}
	return v
}

func lastOf(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

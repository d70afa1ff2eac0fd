package indicators

import (
	"math"

	"ultron-engine/internal/market"
)

// StructureBias labels the direction of a structural event.
type StructureBias string

const (
	BiasBullish StructureBias = "bullish"
	BiasBearish StructureBias = "bearish"
	BiasNone    StructureBias = "none"
)

// BreakOfStructure describes a close beyond the prior N-bar extreme.
type BreakOfStructure struct {
	Bias       StructureBias `json:"bias"`
	Level      float64       `json:"level"`       // the broken high/low
	OrderBlock float64       `json:"order_block"` // body edge of the bar before the break
}

// DetectBOS checks whether the current close broke the high (bullish)
// or low (bearish) of the preceding lookback bars, excluding the
// current bar itself. Returns nil when the window is too short or no
// break occurred.
func DetectBOS(candles []market.Candle, lookback int) *BreakOfStructure {
	if lookback <= 0 || len(candles) < lookback+2 {
		return nil
	}

	n := len(candles)
	current := candles[n-1]
	prev := candles[n-2]

	priorHigh := market.HighestHigh(candles, n-1-lookback, n-1)
	priorLow := market.LowestLow(candles, n-1-lookback, n-1)

	if current.Close > priorHigh {
		return &BreakOfStructure{
			Bias:       BiasBullish,
			Level:      priorHigh,
			OrderBlock: math.Min(prev.Open, prev.Close),
		}
	}
	if current.Close < priorLow {
		return &BreakOfStructure{
			Bias:       BiasBearish,
			Level:      priorLow,
			OrderBlock: math.Max(prev.Open, prev.Close),
		}
	}
	return nil
}

// IsEngulfing reports whether the current candle engulfs the previous
// one in the given direction: the body is larger and the close clears
// the previous open.
func IsEngulfing(prev, current market.Candle, bias StructureBias) bool {
	if current.Body() <= prev.Body() {
		return false
	}
	switch bias {
	case BiasBullish:
		return current.Close > prev.Open
	case BiasBearish:
		return current.Close < prev.Open
	}
	return false
}

// PullbackConfirmation reports whether the recent lows form either a
// double bottom (two 5-bar minima within tolerance of each other) or a
// strictly rising minimum, over the last 10 bars split in halves.
// Mirrored with highs for bearish setups.
func PullbackConfirmation(candles []market.Candle, bias StructureBias, tolerance float64) bool {
	const lookback = 10
	if len(candles) < lookback+5 {
		return false
	}

	recent := candles[len(candles)-lookback:]
	if bias == BiasBullish {
		min1 := market.LowestLow(recent, 0, 5)
		min2 := market.LowestLow(recent, 5, lookback)
		doubleBottom := math.Abs(min1-min2) <= min1*tolerance
		risingMin := min2 > min1
		return doubleBottom || risingMin
	}

	max1 := market.HighestHigh(recent, 0, 5)
	max2 := market.HighestHigh(recent, 5, lookback)
	doubleTop := math.Abs(max1-max2) <= max1*tolerance
	fallingMax := max2 < max1
	return doubleTop || fallingMax
}

// ConsolidationBox measures the prior `bars` candles (excluding the
// current one) as a potential Darvas box. Returns the box bounds and
// whether the range stayed within tolerance of the low.
func ConsolidationBox(candles []market.Candle, bars int, tolerance float64) (high, low float64, ok bool) {
	if bars <= 0 || len(candles) < bars+1 {
		return 0, 0, false
	}
	n := len(candles)
	high = market.HighestHigh(candles, n-1-bars, n-1)
	low = market.LowestLow(candles, n-1-bars, n-1)
	if low <= 0 {
		return high, low, false
	}
	return high, low, (high-low)/low <= tolerance
}

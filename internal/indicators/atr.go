package indicators

import (
	"math"

	"ultron-engine/internal/market"
)

// DefaultATRPeriod is the conventional ATR lookback.
const DefaultATRPeriod = 14

// TrueRange computes the true-range series. Position 0 uses high-low
// only since there is no previous close.
func TrueRange(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		tr := c.High - c.Low
		if i > 0 {
			prevClose := candles[i-1].Close
			tr = math.Max(tr, math.Max(
				math.Abs(c.High-prevClose),
				math.Abs(c.Low-prevClose),
			))
		}
		out[i] = tr
	}
	return out
}

// ATR computes the Wilder-smoothed average true range. Positions below
// period are NaN.
func ATR(candles []market.Candle, period int) []float64 {
	out := nanSlice(len(candles))
	if period <= 0 || len(candles) < period+1 {
		return out
	}

	tr := TrueRange(candles)

	sum := 0.0
	for _, v := range tr[1 : period+1] {
		sum += v
	}
	atr := sum / float64(period)
	out[period] = atr

	for i := period + 1; i < len(candles); i++ {
		atr = (atr*float64(period-1) + tr[i]) / float64(period)
		out[i] = atr
	}
	return out
}

// LastATR is a convenience for the current ATR value, NaN when the
// window is too short.
func LastATR(candles []market.Candle, period int) float64 {
	return lastValid(ATR(candles, period))
}

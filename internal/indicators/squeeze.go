package indicators

import (
	"math"

	"ultron-engine/internal/market"
)

// SqueezeResult describes volatility compression at the current bar:
// Bollinger bands trading inside the Keltner channel means the squeeze
// is on; momentum comes from a linear regression of price minus its
// midline over the same lookback.
type SqueezeResult struct {
	SqueezeOn  bool    `json:"squeeze_on"`
	SqueezeOff bool    `json:"squeeze_off"`
	Momentum   float64 `json:"momentum"`
	Direction  Trend   `json:"direction"` // buy, sell, or off when flat/insufficient
}

const (
	squeezePeriod     = 20
	squeezeBBMult     = 2.0
	squeezeKCMult     = 1.5
	squeezeMinCandles = squeezePeriod + 1
)

// SqueezeMomentum evaluates the squeeze state of the last bar. Returns
// nil when the window is shorter than the lookback.
func SqueezeMomentum(candles []market.Candle) *SqueezeResult {
	if len(candles) < squeezeMinCandles {
		return nil
	}

	closes := Closes(candles)
	basis := lastValid(SMA(closes, squeezePeriod))
	if math.IsNaN(basis) {
		return nil
	}

	// Standard deviation of closes over the lookback
	window := closes[len(closes)-squeezePeriod:]
	variance := 0.0
	for _, v := range window {
		d := v - basis
		variance += d * d
	}
	stdev := math.Sqrt(variance / squeezePeriod)

	atr := LastATR(candles, squeezePeriod)
	if math.IsNaN(atr) {
		return nil
	}

	bbUpper := basis + squeezeBBMult*stdev
	bbLower := basis - squeezeBBMult*stdev
	kcUpper := basis + squeezeKCMult*atr
	kcLower := basis - squeezeKCMult*atr

	res := &SqueezeResult{
		SqueezeOn:  bbUpper < kcUpper && bbLower > kcLower,
		SqueezeOff: bbUpper >= kcUpper || bbLower <= kcLower,
	}

	// Momentum: slope of the close-minus-midline series, where the
	// midline averages the Donchian middle and the SMA basis.
	bars := candles[len(candles)-squeezePeriod:]
	highest := market.HighestHigh(bars, 0, len(bars))
	lowest := market.LowestLow(bars, 0, len(bars))
	mid := ((highest+lowest)/2 + basis) / 2

	detrended := make([]float64, squeezePeriod)
	for i, c := range bars {
		detrended[i] = c.Close - mid
	}
	res.Momentum = linregSlope(detrended) * float64(squeezePeriod)

	switch {
	case res.Momentum > 0:
		res.Direction = TrendBuy
	case res.Momentum < 0:
		res.Direction = TrendSell
	default:
		res.Direction = TrendOff
	}
	return res
}

// linregSlope fits y = a + b*x over x = 0..n-1 and returns b.
func linregSlope(values []float64) float64 {
	n := float64(len(values))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// Package indicators provides the pure numeric transforms the strategy
// evaluators consume. Every series function returns a slice the same
// length as its input; positions without enough history hold math.NaN.
// Callers must treat NaN as "insufficient data", never as a price.
package indicators

import (
	"math"

	"ultron-engine/internal/market"
)

// EMA computes the exponential moving average of an arbitrary series.
// The first period-1 positions are NaN; position period-1 seeds with the
// simple average of the first period values.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for _, v := range values[:period] {
		sum += v
	}
	ema := sum / float64(period)
	out[period-1] = ema

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = values[i]*multiplier + ema*(1-multiplier)
		out[i] = ema
	}
	return out
}

// CloseEMA computes the EMA of candle closes.
func CloseEMA(candles []market.Candle, period int) []float64 {
	return EMA(Closes(candles), period)
}

// Closes extracts the close series from a candle window.
func Closes(candles []market.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA computes a simple moving average with NaN warmup.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// lastValid returns the final non-NaN value of a series, or NaN.
func lastValid(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if !math.IsNaN(values[i]) {
			return values[i]
		}
	}
	return math.NaN()
}

package indicators

import (
	"math"

	"ultron-engine/internal/market"
)

// Trend is a Supertrend bar state.
type Trend string

const (
	TrendBuy  Trend = "buy"
	TrendSell Trend = "sell"
	TrendOff  Trend = "off" // insufficient history
)

// SupertrendBar is the per-bar output: the active band level and which
// side of it price is trading on. In a buy trend Value is the lower
// band (trailing stop below price); in a sell trend it is the upper
// band.
type SupertrendBar struct {
	Value float64 `json:"value"`
	Trend Trend   `json:"trend"`
}

// SupertrendParams parameterizes one Supertrend computation.
type SupertrendParams struct {
	Period     int
	Multiplier float64
}

// The four presets the strategies use. Standard pairs the slower
// settings; Risk trades earlier flips for more noise.
var (
	SupertrendFastStandard = SupertrendParams{Period: 10, Multiplier: 3}
	SupertrendSlowStandard = SupertrendParams{Period: 20, Multiplier: 6}
	SupertrendFastRisk     = SupertrendParams{Period: 7, Multiplier: 2.5}
	SupertrendSlowRisk     = SupertrendParams{Period: 14, Multiplier: 4.5}
)

// Supertrend computes the ATR-band trend series. Bars before the ATR
// warmup carry Trend "off" and a NaN value. The trend flips to buy when
// the close crosses above the falling upper band, and to sell when the
// close crosses below the rising lower band.
func Supertrend(candles []market.Candle, p SupertrendParams) []SupertrendBar {
	n := len(candles)
	out := make([]SupertrendBar, n)
	for i := range out {
		out[i] = SupertrendBar{Value: math.NaN(), Trend: TrendOff}
	}
	if p.Period <= 0 || n < p.Period+1 {
		return out
	}

	atr := ATR(candles, p.Period)

	var finalUpper, finalLower float64
	trend := TrendSell
	started := false

	for i := p.Period; i < n; i++ {
		hl2 := (candles[i].High + candles[i].Low) / 2
		upper := hl2 + p.Multiplier*atr[i]
		lower := hl2 - p.Multiplier*atr[i]

		if !started {
			finalUpper, finalLower = upper, lower
			if candles[i].Close > hl2 {
				trend = TrendBuy
			}
			started = true
		} else {
			// Bands only ratchet toward price until broken.
			if upper < finalUpper || candles[i-1].Close > finalUpper {
				finalUpper = upper
			}
			if lower > finalLower || candles[i-1].Close < finalLower {
				finalLower = lower
			}

			if trend == TrendSell && candles[i].Close > finalUpper {
				trend = TrendBuy
			} else if trend == TrendBuy && candles[i].Close < finalLower {
				trend = TrendSell
			}
		}

		bar := SupertrendBar{Trend: trend}
		if trend == TrendBuy {
			bar.Value = finalLower
		} else {
			bar.Value = finalUpper
		}
		out[i] = bar
	}
	return out
}

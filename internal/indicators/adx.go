package indicators

import (
	"math"

	"ultron-engine/internal/market"
)

// DMIResult holds the directional movement series for one window.
// All three series share the candle window's length with NaN warmup.
type DMIResult struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// DMI computes Wilder's directional movement index: +DI, -DI and the
// smoothed ADX, all in [0,100]. ADX values appear from index 2*period
// onward.
func DMI(candles []market.Candle, period int) *DMIResult {
	n := len(candles)
	res := &DMIResult{
		ADX:     nanSlice(n),
		PlusDI:  nanSlice(n),
		MinusDI: nanSlice(n),
	}
	if period <= 0 || n < 2*period+1 {
		return res
	}

	tr := TrueRange(candles)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	// Wilder smoothing of TR and DM over the first period
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := nanSlice(n)
	for i := period; i < n; i++ {
		if i > period {
			smTR = smTR - smTR/float64(period) + tr[i]
			smPlus = smPlus - smPlus/float64(period) + plusDM[i]
			smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		}
		if smTR == 0 {
			continue
		}
		pdi := 100 * smPlus / smTR
		mdi := 100 * smMinus / smTR
		res.PlusDI[i] = pdi
		res.MinusDI[i] = mdi
		if pdi+mdi > 0 {
			dx[i] = 100 * math.Abs(pdi-mdi) / (pdi + mdi)
		} else {
			dx[i] = 0
		}
	}

	// ADX seeds with the average of the first period DX values, then
	// Wilder-smooths.
	var dxSum float64
	for i := period; i < 2*period; i++ {
		dxSum += dx[i]
	}
	adx := dxSum / float64(period)
	res.ADX[2*period-1] = adx
	for i := 2 * period; i < n; i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
		res.ADX[i] = adx
	}
	return res
}

// LastADX returns the current ADX value, NaN when the window is too
// short.
func LastADX(candles []market.Candle, period int) float64 {
	return lastValid(DMI(candles, period).ADX)
}

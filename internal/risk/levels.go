// Package risk holds the shared level arithmetic every strategy uses:
// reward:risk ratios and take-profit ladders.
package risk

import (
	"errors"
	"math"
)

// ErrInvalidLevels marks degenerate level geometry, e.g. entry == stop.
var ErrInvalidLevels = errors.New("invalid levels: zero risk distance")

// RewardRisk computes (takeProfit-entry)/(entry-stop) rounded to two
// decimals. entry == stop is not infinite reward, it is an invalid
// setup.
func RewardRisk(entry, stop, takeProfit float64) (float64, error) {
	riskDist := entry - stop
	if riskDist == 0 || math.IsNaN(riskDist) {
		return 0, ErrInvalidLevels
	}
	rr := (takeProfit - entry) / riskDist
	if math.IsNaN(rr) || math.IsInf(rr, 0) {
		return 0, ErrInvalidLevels
	}
	return Round2(rr), nil
}

// Ladder projects take-profit levels at 1x, 2x and 3x the risk
// distance from entry. Works for both directions: a stop above entry
// yields targets below it.
func Ladder(entry, stop float64) (tp1, tp2, tp3 float64) {
	dist := entry - stop
	return entry + dist, entry + 2*dist, entry + 3*dist
}

// Round2 rounds to two decimal places for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Finite reports whether every value is a usable number.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

package strategy

import (
	"time"

	"ultron-engine/internal/market"
)

// testNow is a Wednesday inside the London window, so forex fixtures
// pass the session check unless a test overrides it.
var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

// quiet builds n calm bars around price with a one-point range.
func quiet(n int, price float64) []market.Candle {
	candles := make([]market.Candle, n)
	for i := range candles {
		candles[i] = market.Candle{
			Timestamp: testNow.Add(time.Duration(i-n) * 15 * time.Minute),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000,
		}
	}
	return candles
}

// trendRun appends n bars drifting by step per bar, starting at start.
func trendRun(candles []market.Candle, n int, start, step float64) []market.Candle {
	base := start
	for i := 0; i < n; i++ {
		c := market.Candle{
			Open:   base,
			Close:  base + 0.8*step,
			Volume: 1000,
		}
		hi, lo := c.Open, c.Close
		if lo > hi {
			hi, lo = lo, hi
		}
		c.High = hi + 1
		c.Low = lo - 1
		candles = append(candles, c)
		base += step
	}
	for i := range candles {
		candles[i].Timestamp = testNow.Add(time.Duration(i-len(candles)) * 15 * time.Minute)
	}
	return candles
}

func cryptoInput(candles []market.Candle, mode Mode) Input {
	return Input{
		Candles: candles,
		Class:   market.ClassCrypto,
		Now:     testNow,
		Mode:    mode,
	}
}

package market

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Candle represents one OHLCV bar. Sequences are ordered oldest first;
// the last element is the current bar. Candles are never mutated after
// construction.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume,omitempty"`
}

// Validate checks the basic OHLC invariants.
func (c Candle) Validate() error {
	for name, v := range map[string]float64{
		"open": c.Open, "high": c.High, "low": c.Low, "close": c.Close,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("candle %s is not a finite number", name)
		}
	}
	if c.High < c.Low {
		return fmt.Errorf("candle high %.8f below low %.8f", c.High, c.Low)
	}
	if c.High < math.Max(c.Open, c.Close) {
		return fmt.Errorf("candle high %.8f below body top", c.High)
	}
	if c.Low > math.Min(c.Open, c.Close) {
		return fmt.Errorf("candle low %.8f above body bottom", c.Low)
	}
	return nil
}

// Body returns the absolute open-to-close distance.
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the high-to-low distance.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// ValidateSeries checks each candle plus oldest-first ordering.
func ValidateSeries(candles []Candle) error {
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("candle %d: %w", i, err)
		}
		if i > 0 && c.Timestamp.Before(candles[i-1].Timestamp) {
			return fmt.Errorf("candle %d out of order: %s before %s",
				i, c.Timestamp.Format(time.RFC3339), candles[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// HighestHigh returns the maximum high over candles[from:to).
func HighestHigh(candles []Candle, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(candles) {
		to = len(candles)
	}
	if from >= to {
		return math.NaN()
	}
	max := candles[from].High
	for _, c := range candles[from+1 : to] {
		if c.High > max {
			max = c.High
		}
	}
	return max
}

// LowestLow returns the minimum low over candles[from:to).
func LowestLow(candles []Candle, from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(candles) {
		to = len(candles)
	}
	if from >= to {
		return math.NaN()
	}
	min := candles[from].Low
	for _, c := range candles[from+1 : to] {
		if c.Low < min {
			min = c.Low
		}
	}
	return min
}

// AverageVolume returns the arithmetic mean volume of the last n candles.
func AverageVolume(candles []Candle, n int) float64 {
	if len(candles) == 0 || n <= 0 {
		return 0
	}
	if n > len(candles) {
		n = len(candles)
	}
	sum := 0.0
	for _, c := range candles[len(candles)-n:] {
		sum += c.Volume
	}
	return sum / float64(n)
}

// InstrumentClass groups symbols by the session rules that apply to them.
type InstrumentClass string

const (
	ClassForex  InstrumentClass = "forex"
	ClassStock  InstrumentClass = "stock"
	ClassIndex  InstrumentClass = "index"
	ClassCrypto InstrumentClass = "crypto"
)

var cryptoBases = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "XRP": true, "ADA": true,
	"DOGE": true, "BNB": true, "DOT": true, "AVAX": true, "LINK": true,
}

var forexCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true,
	"AUD": true, "CAD": true, "NZD": true, "MXN": true, "XAU": true,
	"XAG": true,
}

// ClassifySymbol infers the instrument class from the symbol notation.
// Pairs like "BTC/USD" are crypto when the base is a known coin, forex
// when both legs are currency/metal codes; bare tickers are stocks,
// known index funds are indexes.
func ClassifySymbol(symbol string) InstrumentClass {
	s := strings.ToUpper(strings.TrimSpace(symbol))

	base, quote, isPair := splitPair(s)
	if isPair {
		if cryptoBases[base] {
			return ClassCrypto
		}
		if forexCodes[base] && forexCodes[quote] {
			return ClassForex
		}
		return ClassCrypto
	}

	switch s {
	case "SP500", "SPX", "QQQ", "XLRE", "XLF", "XLV", "XLY", "DJI", "NDX":
		return ClassIndex
	}
	return ClassStock
}

func splitPair(s string) (base, quote string, ok bool) {
	if i := strings.IndexByte(s, '/'); i > 0 && i < len(s)-1 {
		return s[:i], s[i+1:], true
	}
	// Six-letter notation like EURUSD
	if len(s) == 6 && forexCodes[s[:3]] && forexCodes[s[3:]] {
		return s[:3], s[3:], true
	}
	return "", "", false
}

// PipSize returns the price increment used when formatting levels for a
// symbol.
func PipSize(symbol string) float64 {
	s := strings.ToUpper(symbol)
	switch {
	case strings.Contains(s, "JPY"):
		return 0.01
	case strings.HasPrefix(s, "XAU"):
		return 0.1
	case strings.HasPrefix(s, "BTC"):
		return 1.0
	default:
		return 0.0001
	}
}

// Command analyze runs one arbitration cycle offline against a JSON
// candle file, printing the decision and optional per-strategy
// diagnostics. Useful for replaying historical windows without a
// database or market data key.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ultron-engine/internal/engine"
	"ultron-engine/internal/market"
	"ultron-engine/internal/strategy"
)

func main() {
	var (
		file        = flag.String("file", "", "path to JSON candle file (array of {timestamp,open,high,low,close,volume})")
		symbol      = flag.String("symbol", "BTC/USD", "symbol the candles belong to")
		mode        = flag.String("mode", "STANDARD", "mode applied to every strategy (STANDARD or RISK)")
		diagnostics = flag.Bool("diagnostics", false, "print every strategy's verdict, not just the winner")
		at          = flag.String("at", "", "evaluation time, RFC3339 (default: last candle close)")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -file candles.json [-symbol EUR/USD] [-mode RISK] [-diagnostics]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fatal("read candle file: %v", err)
	}

	var candles []market.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		fatal("parse candle file: %v", err)
	}
	if err := market.ValidateSeries(candles); err != nil {
		fatal("candle series: %v", err)
	}

	now := time.Now().UTC()
	if *at != "" {
		now, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			fatal("parse -at: %v", err)
		}
	} else if len(candles) > 0 {
		now = candles[len(candles)-1].Timestamp
	}

	cfg := make(strategy.Config, len(strategy.Names))
	parsed := strategy.ParseMode(*mode)
	for _, name := range strategy.Names {
		cfg[name] = parsed
	}

	eng := engine.New(zerolog.New(os.Stderr).Level(zerolog.WarnLevel))

	out := map[string]interface{}{
		"decision": eng.Arbitrate(*symbol, candles, cfg, now),
	}
	if *diagnostics {
		out["diagnostics"] = eng.Diagnostics(*symbol, candles, cfg, now)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fatal("encode output: %v", err)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

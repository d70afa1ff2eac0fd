package strategy

import (
	"ultron-engine/internal/indicators"
	"ultron-engine/internal/risk"
)

// KindDarvasBreakout is the entry kind for a box breakout.
const KindDarvasBreakout = "Darvas Box Breakout"

const (
	darvasMinCandles    = 20
	darvasBoxBars       = 8
	darvasToleranceStd  = 0.02
	darvasToleranceRisk = 0.03
	darvasMinBodyRatio  = 0.5
)

// DarvasBox detects a breakout from a tight consolidation: the prior
// eight candles must range within tolerance of the box low, and the
// current candle must close above the box top with a decisive body.
// The take-profit projects the box height above the entry.
type DarvasBox struct{}

func NewDarvasBox() *DarvasBox {
	return &DarvasBox{}
}

func (s *DarvasBox) Name() string {
	return NameDarvasBox
}

func (s *DarvasBox) RiskTier() RiskTier {
	return TierMedium
}

func (s *DarvasBox) Evaluate(in Input) Verdict {
	sessionName, bad, ok := gate(in, darvasMinCandles)
	if !ok {
		return bad
	}

	tolerance := darvasToleranceStd
	if in.Mode == ModeRisk {
		tolerance = darvasToleranceRisk
	}

	boxHigh, boxLow, isBox := indicators.ConsolidationBox(in.Candles, darvasBoxBars, tolerance)
	if !isBox {
		return invalid("no valid box: prior %d-bar range exceeds %.1f%% of the low",
			darvasBoxBars, tolerance*100)
	}

	current := in.Candles[len(in.Candles)-1]
	if current.Close <= boxHigh {
		return invalid("no breakout: close %.5f inside box top %.5f", current.Close, boxHigh)
	}

	// Breakout must come on a strong candle: most of the range is body
	// and it closed above its open.
	totalRange := current.Range()
	if totalRange <= 0 || current.Body()/totalRange <= darvasMinBodyRatio || !current.IsBullish() {
		return invalid("breakout candle too weak: body does not dominate its range")
	}

	entry := current.Close
	stop := boxLow
	takeProfit := entry + (boxHigh - boxLow)
	rr, err := risk.RewardRisk(entry, stop, takeProfit)
	if err != nil {
		return invalid("degenerate levels: entry %.5f equals stop", entry)
	}

	return Verdict{
		Valid:      true,
		EntryKind:  KindDarvasBreakout,
		Direction:  Long,
		Entry:      entry,
		Stop:       stop,
		TakeProfit: takeProfit,
		RewardRisk: rr,
		Session:    sessionName,
		Reason:     "strong close above an 8-bar consolidation box",
	}
}

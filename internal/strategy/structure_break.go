package strategy

import (
	"ultron-engine/internal/market"
)

// Entry kinds reported by the structure-break detector.
const (
	KindBullishBOS   = "Bullish BOS"
	KindBearishCHoCH = "Bearish CHoCH"
)

const (
	structureBreakMinCandles = 20
	volumeLookback           = 15
)

// StructureBreak detects a break of structure backed by volume: a new
// high (BOS) or new low (CHoCH) against the previous bar, on volume
// above the recent average. The arbiter runs it as a mandatory
// gatekeeper before any other strategy is offered a window.
type StructureBreak struct{}

func NewStructureBreak() *StructureBreak {
	return &StructureBreak{}
}

func (s *StructureBreak) Name() string {
	return NameStructureBreak
}

func (s *StructureBreak) RiskTier() RiskTier {
	return TierLow
}

func (s *StructureBreak) Evaluate(in Input) Verdict {
	sessionName, bad, ok := gate(in, structureBreakMinCandles)
	if !ok {
		return bad
	}

	n := len(in.Candles)
	current := in.Candles[n-1]
	prev := in.Candles[n-2]

	avgVolume := market.AverageVolume(in.Candles, volumeLookback)
	volumeBacked := current.Volume > avgVolume

	if prev.High < current.High && volumeBacked {
		return Verdict{
			Valid:     true,
			EntryKind: KindBullishBOS,
			Direction: Long,
			Session:   sessionName,
			Reason:    "new high broke prior structure on above-average volume",
		}
	}
	if prev.Low > current.Low && volumeBacked {
		return Verdict{
			Valid:     true,
			EntryKind: KindBearishCHoCH,
			Direction: Short,
			Session:   sessionName,
			Reason:    "new low broke prior structure on above-average volume",
		}
	}

	if !volumeBacked {
		return invalid("no structure break: volume %.2f below %d-bar average %.2f",
			current.Volume, volumeLookback, avgVolume)
	}
	return invalid("no structure break: price inside prior bar's range")
}

package strategy

// TrendContinuation is a template slot, not a production strategy. It
// runs the shared preconditions so its diagnostics look like every
// other evaluator's, then always declines. Replace Evaluate's tail
// with real continuation logic before enabling it for live decisions.
type TrendContinuation struct{}

func NewTrendContinuation() *TrendContinuation {
	return &TrendContinuation{}
}

func (s *TrendContinuation) Name() string {
	return NameTrendContinuation
}

func (s *TrendContinuation) RiskTier() RiskTier {
	return TierMedium
}

const trendContinuationMinCandles = 20

func (s *TrendContinuation) Evaluate(in Input) Verdict {
	if _, bad, ok := gate(in, trendContinuationMinCandles); !ok {
		return bad
	}
	return invalid("trend continuation is a template slot with no armed logic")
}

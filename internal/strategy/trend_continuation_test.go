package strategy

import (
	"strings"
	"testing"
)

func TestTrendContinuationAlwaysDeclines(t *testing.T) {
	v := NewTrendContinuation().Evaluate(cryptoInput(quiet(50, 100), ModeStandard))
	if v.Valid {
		t.Fatal("the template slot must never produce a signal")
	}
	if !strings.Contains(v.Reason, "template slot") {
		t.Errorf("reason = %q, want the template notice", v.Reason)
	}
}

func TestTrendContinuationSharedPreconditions(t *testing.T) {
	v := NewTrendContinuation().Evaluate(cryptoInput(quiet(5, 100), ModeStandard))
	if !strings.Contains(v.Reason, "insufficient data") {
		t.Errorf("reason = %q, want insufficient data before the template notice", v.Reason)
	}
}

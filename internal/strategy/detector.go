package strategy

import (
	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/strategy/indicators"
)

// Detector makes any policy edge-triggered: it reports fired=true only
// when the policy transitions into a BUY or SELL state. A sustained state
// (e.g., RSI staying below 30 for several candles) fires exactly once and
// must exit and re-enter the zone before it can fire again.
//
// Detector is not safe for concurrent use; the poll loop is its single
// writer.
type Detector struct {
	policy Policy
	last   domain.SignalKind
}

// NewDetector wraps a policy with edge-triggered dedup.
func NewDetector(policy Policy) *Detector {
	return &Detector{policy: policy, last: domain.NoSignal}
}

// Policy returns the wrapped policy.
func (d *Detector) Policy() Policy { return d.policy }

// Observe evaluates the policy on the reading history and reports whether
// this evaluation is a state transition that should produce an alert.
func (d *Detector) Observe(history []indicators.Reading) (domain.SignalKind, bool) {
	kind := d.policy.Evaluate(history)
	fired := kind.IsActionable() && kind != d.last
	d.last = kind
	return kind, fired
}

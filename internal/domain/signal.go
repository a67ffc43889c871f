package domain

import "time"

// SignalKind represents the outcome of a single classification step.
type SignalKind string

const (
	Buy      SignalKind = "BUY"
	Sell     SignalKind = "SELL"
	NoSignal SignalKind = "NO_SIGNAL"
)

// IsActionable reports whether the kind should produce an alert.
func (k SignalKind) IsActionable() bool {
	return k == Buy || k == Sell
}

// Signal is a single classified evaluation. Immutable once created.
type Signal struct {
	Time  time.Time  // Evaluation time (wall clock, UTC)
	Kind  SignalKind // BUY, SELL or NO_SIGNAL
	Price float64    // Close price at evaluation
	RSI   float64    // RSI value that drove the classification

	// TargetPrice is the nearest prior swing high (BUY) or swing low
	// (SELL) within the lookback window. Nil when no swing point exists.
	TargetPrice *float64
}

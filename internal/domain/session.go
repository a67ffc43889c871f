package domain

import "time"

// TrendDirection is the net price direction over a session window.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// SessionSummary is the rollup emitted when an hourly window closes.
// It is emitted even when no signals fired in the window.
type SessionSummary struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Signals     []Signal // fired signals, in order
	BuyCount    int
	SellCount   int
	High        float64 // highest candle high seen in the window
	Low         float64 // lowest candle low seen in the window
	NetTrend    TrendDirection
}

// HasActivity reports whether any signal fired during the window.
func (s SessionSummary) HasActivity() bool {
	return len(s.Signals) > 0
}

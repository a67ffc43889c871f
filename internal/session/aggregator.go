// Package session accumulates fired signals and price extremes over a
// rolling wall-clock hour and produces a summary on rollover.
package session

import (
	"time"

	"btcSignalBot/internal/domain"
)

// Aggregator is a two-state machine: OPEN while accumulating within the
// current hour, CLOSED for the instant of the flush, then OPEN again for
// the next window. The window is keyed on evaluation time, not candle
// time, because alerts are delivered on a human-readable cadence.
//
// Not safe for concurrent use: the poll loop is the single writer and
// dispatch goroutines only read the snapshot returned by Rollover.
type Aggregator struct {
	windowStart time.Time
	signals     []domain.Signal

	high       float64
	low        float64
	firstClose float64
	lastClose  float64
	candles    int
}

// NewAggregator opens a window containing the given time.
func NewAggregator(now time.Time) *Aggregator {
	return &Aggregator{windowStart: now.UTC().Truncate(time.Hour)}
}

// WindowStart returns the start of the currently open window.
func (a *Aggregator) WindowStart() time.Time {
	return a.windowStart
}

// RecordCandle folds a candle's range into the window extremes.
func (a *Aggregator) RecordCandle(c *domain.Candle) {
	if a.candles == 0 {
		a.high = c.High
		a.low = c.Low
		a.firstClose = c.Close
	} else {
		if c.High > a.high {
			a.high = c.High
		}
		if c.Low < a.low {
			a.low = c.Low
		}
	}
	a.lastClose = c.Close
	a.candles++
}

// RecordSignal appends a fired signal to the open window.
func (a *Aggregator) RecordSignal(sig domain.Signal) {
	a.signals = append(a.signals, sig)
}

// Rollover checks whether the wall clock has left the open window. If so
// it finalizes the summary, reopens an empty window for the hour
// containing now, and returns (summary, true). A window with no signals
// still produces a summary; absence of activity is itself meaningful.
func (a *Aggregator) Rollover(now time.Time) (domain.SessionSummary, bool) {
	currentHour := now.UTC().Truncate(time.Hour)
	if !currentHour.After(a.windowStart) {
		return domain.SessionSummary{}, false
	}

	summary := a.finalize()
	a.reset(currentHour)
	return summary, true
}

func (a *Aggregator) finalize() domain.SessionSummary {
	summary := domain.SessionSummary{
		WindowStart: a.windowStart,
		WindowEnd:   a.windowStart.Add(time.Hour),
		Signals:     a.signals,
		High:        a.high,
		Low:         a.low,
		NetTrend:    a.netTrend(),
	}
	for _, sig := range a.signals {
		switch sig.Kind {
		case domain.Buy:
			summary.BuyCount++
		case domain.Sell:
			summary.SellCount++
		}
	}
	return summary
}

func (a *Aggregator) netTrend() domain.TrendDirection {
	if a.candles == 0 {
		return domain.TrendFlat
	}
	switch {
	case a.lastClose > a.firstClose:
		return domain.TrendUp
	case a.lastClose < a.firstClose:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}

func (a *Aggregator) reset(windowStart time.Time) {
	a.windowStart = windowStart
	a.signals = nil
	a.high = 0
	a.low = 0
	a.firstClose = 0
	a.lastClose = 0
	a.candles = 0
}

package strategy

import (
	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/strategy/indicators"
)

// rsiMidline is the RSI level separating bullish from bearish momentum.
const rsiMidline = 50.0

// CrossoverPolicy requires the short EMA to cross the long EMA at the
// current or immediately preceding evaluation step, confirmed by RSI
// strictly on the matching side of the 50 midline at the current step
// (RSI > 50 for BUY, RSI < 50 for SELL). A cross without RSI confirmation
// is NO_SIGNAL; this keeps minor wiggles from firing alerts.
type CrossoverPolicy struct{}

func NewCrossoverPolicy() *CrossoverPolicy { return &CrossoverPolicy{} }

func (p *CrossoverPolicy) Name() string { return "crossover" }

// Evaluate classifies the latest reading.
func (p *CrossoverPolicy) Evaluate(history []indicators.Reading) domain.SignalKind {
	if len(history) < 2 {
		return domain.NoSignal
	}
	latest := history[len(history)-1]
	if !latest.RSIReady || !latest.EMAReady {
		return domain.NoSignal
	}

	bull, bear := crossAt(history, len(history)-1)
	if !bull && !bear && len(history) >= 3 {
		// Accept a cross one step back, still confirmed by the current RSI.
		bull, bear = crossAt(history, len(history)-2)
	}

	switch {
	case bull && latest.RSI > rsiMidline:
		return domain.Buy
	case bear && latest.RSI < rsiMidline:
		return domain.Sell
	default:
		return domain.NoSignal
	}
}

// crossAt reports whether the short EMA crossed the long EMA between
// positions i-1 and i. A bullish cross moves from short <= long to
// short > long; bearish is the reverse.
func crossAt(history []indicators.Reading, i int) (bull, bear bool) {
	cur, prev := history[i], history[i-1]
	if !cur.EMAReady || !prev.EMAReady {
		return false, false
	}
	bull = prev.EMAShort <= prev.EMALong && cur.EMAShort > cur.EMALong
	bear = prev.EMAShort >= prev.EMALong && cur.EMAShort < cur.EMALong
	return bull, bear
}

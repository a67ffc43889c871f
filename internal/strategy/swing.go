package strategy

import "btcSignalBot/internal/domain"

// SwingTarget finds the target price for a signal: the nearest prior local
// swing high above the entry price for BUY, or the nearest prior local
// swing low below the entry for SELL, scanning at most lookback candles
// back from the latest one. Returns ok=false when no such swing point
// exists; callers omit the target rather than synthesize one.
func SwingTarget(candles []*domain.Candle, kind domain.SignalKind, entry float64, lookback int) (float64, bool) {
	if !kind.IsActionable() || len(candles) < 3 {
		return 0, false
	}

	oldest := len(candles) - 1 - lookback
	if oldest < 1 {
		oldest = 1
	}

	// Newest first, so the first hit is the nearest swing point.
	for i := len(candles) - 2; i >= oldest; i-- {
		c := candles[i]
		switch kind {
		case domain.Buy:
			if c.High > candles[i-1].High && c.High > candles[i+1].High && c.High > entry {
				return c.High, true
			}
		case domain.Sell:
			if c.Low < candles[i-1].Low && c.Low < candles[i+1].Low && c.Low < entry {
				return c.Low, true
			}
		}
	}
	return 0, false
}

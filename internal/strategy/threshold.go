package strategy

import (
	"fmt"

	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/strategy/indicators"
)

// ThresholdPolicy classifies on RSI alone: BUY below the oversold level,
// SELL above the overbought level. Both comparisons are strict, so an RSI
// sitting exactly on a threshold is NO_SIGNAL.
type ThresholdPolicy struct {
	Oversold   float64 // e.g., 30.0
	Overbought float64 // e.g., 70.0
}

// NewThresholdPolicy validates the levels and creates the policy.
func NewThresholdPolicy(oversold, overbought float64) (*ThresholdPolicy, error) {
	if oversold < 0 || overbought > 100 || overbought <= oversold {
		return nil, fmt.Errorf("invalid RSI thresholds: oversold=%.2f overbought=%.2f", oversold, overbought)
	}
	return &ThresholdPolicy{Oversold: oversold, Overbought: overbought}, nil
}

func (p *ThresholdPolicy) Name() string { return "threshold" }

// Evaluate classifies the latest reading.
func (p *ThresholdPolicy) Evaluate(history []indicators.Reading) domain.SignalKind {
	if len(history) == 0 {
		return domain.NoSignal
	}
	latest := history[len(history)-1]
	if !latest.RSIReady {
		return domain.NoSignal
	}

	switch {
	case latest.RSI < p.Oversold:
		return domain.Buy
	case latest.RSI > p.Overbought:
		return domain.Sell
	default:
		return domain.NoSignal
	}
}

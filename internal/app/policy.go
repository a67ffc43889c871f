package app

import (
	"fmt"

	"btcSignalBot/config"
	"btcSignalBot/internal/ports"
	"btcSignalBot/internal/strategy"
)

// PolicyFromConfig builds the classification policy named by SIGNAL_POLICY.
func PolicyFromConfig(cfg *config.Config) (strategy.Policy, error) {
	switch cfg.SignalPolicy {
	case config.PolicyThreshold:
		return strategy.NewThresholdPolicy(cfg.RSIOversold, cfg.RSIOverbought)
	case config.PolicyCrossover:
		return strategy.NewCrossoverPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown signal policy %q: %w", cfg.SignalPolicy, ports.ErrConfiguration)
	}
}

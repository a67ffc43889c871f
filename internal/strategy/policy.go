package strategy

import (
	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/strategy/indicators"
)

// Policy classifies the most recent indicator readings into a signal kind.
// Implementations receive the reading history ordered oldest to newest and
// inspect only the last few entries. A policy must treat unready readings
// as NO_SIGNAL, never as an error.
type Policy interface {
	// Name returns the policy name used in configuration and logs.
	Name() string

	// Evaluate classifies the latest reading in the history.
	Evaluate(history []indicators.Reading) domain.SignalKind
}

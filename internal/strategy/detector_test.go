package strategy

import (
	"testing"

	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/strategy/indicators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_SustainedStateFiresOnce(t *testing.T) {
	policy, err := NewThresholdPolicy(30, 70)
	require.NoError(t, err)
	detector := NewDetector(policy)

	// RSI stays below 30 for five consecutive evaluations: only the first
	// transition into the buy zone fires.
	fires := 0
	for _, rsi := range []float64{25, 24, 26, 27, 29} {
		kind, fired := detector.Observe([]indicators.Reading{rsiOnly(rsi)})
		assert.Equal(t, domain.Buy, kind)
		if fired {
			fires++
		}
	}
	assert.Equal(t, 1, fires)
}

func TestDetector_RefiresAfterExitAndReentry(t *testing.T) {
	policy, err := NewThresholdPolicy(30, 70)
	require.NoError(t, err)
	detector := NewDetector(policy)

	_, fired := detector.Observe([]indicators.Reading{rsiOnly(25)})
	assert.True(t, fired)

	// Exit the buy zone.
	kind, fired := detector.Observe([]indicators.Reading{rsiOnly(45)})
	assert.Equal(t, domain.NoSignal, kind)
	assert.False(t, fired)

	// Re-entry fires again.
	_, fired = detector.Observe([]indicators.Reading{rsiOnly(28)})
	assert.True(t, fired)
}

func TestDetector_DirectTransitionBetweenZones(t *testing.T) {
	policy, err := NewThresholdPolicy(30, 70)
	require.NoError(t, err)
	detector := NewDetector(policy)

	_, fired := detector.Observe([]indicators.Reading{rsiOnly(25)})
	assert.True(t, fired)

	// BUY straight to SELL is a transition and fires.
	kind, fired := detector.Observe([]indicators.Reading{rsiOnly(75)})
	assert.Equal(t, domain.Sell, kind)
	assert.True(t, fired)

	// Sustained SELL does not.
	_, fired = detector.Observe([]indicators.Reading{rsiOnly(80)})
	assert.False(t, fired)
}

func TestDetector_NoSignalNeverFires(t *testing.T) {
	policy, err := NewThresholdPolicy(30, 70)
	require.NoError(t, err)
	detector := NewDetector(policy)

	for _, rsi := range []float64{45, 55, 65, 30, 70} {
		kind, fired := detector.Observe([]indicators.Reading{rsiOnly(rsi)})
		assert.Equal(t, domain.NoSignal, kind)
		assert.False(t, fired)
	}
}

package strategy

import (
	"testing"

	"btcSignalBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func swingCandles(highs, lows []float64) []*domain.Candle {
	candles := make([]*domain.Candle, len(highs))
	for i := range highs {
		candles[i] = &domain.Candle{High: highs[i], Low: lows[i]}
	}
	return candles
}

func TestSwingTarget_Buy(t *testing.T) {
	// Local highs at positions 2 (106) and 5 (104); entry 100.
	candles := swingCandles(
		[]float64{101, 103, 106, 102, 103, 104, 101, 100},
		[]float64{99, 100, 101, 99, 100, 101, 98, 97},
	)

	target, ok := SwingTarget(candles, domain.Buy, 100, 10)
	require.True(t, ok)
	// Nearest prior swing high above entry, not the highest.
	assert.Equal(t, 104.0, target)
}

func TestSwingTarget_BuySkipsSwingsBelowEntry(t *testing.T) {
	candles := swingCandles(
		[]float64{101, 103, 106, 102, 103, 104, 101, 100},
		[]float64{99, 100, 101, 99, 100, 101, 98, 97},
	)

	// Entry above the nearest swing (104) picks the older one (106).
	target, ok := SwingTarget(candles, domain.Buy, 105, 10)
	require.True(t, ok)
	assert.Equal(t, 106.0, target)

	// Entry above every swing high: no target rather than a synthetic one.
	_, ok = SwingTarget(candles, domain.Buy, 110, 10)
	assert.False(t, ok)
}

func TestSwingTarget_Sell(t *testing.T) {
	// Local lows at positions 2 (94) and 5 (96); entry 100.
	candles := swingCandles(
		[]float64{103, 102, 101, 104, 103, 102, 105, 106},
		[]float64{99, 97, 94, 98, 99, 96, 99, 100},
	)

	target, ok := SwingTarget(candles, domain.Sell, 100, 10)
	require.True(t, ok)
	assert.Equal(t, 96.0, target)
}

func TestSwingTarget_LookbackBound(t *testing.T) {
	// The only qualifying swing high sits outside the lookback window.
	candles := swingCandles(
		[]float64{101, 106, 101, 100, 100, 100, 100, 100},
		[]float64{99, 100, 99, 98, 98, 98, 98, 98},
	)

	_, ok := SwingTarget(candles, domain.Buy, 100, 3)
	assert.False(t, ok)

	target, ok := SwingTarget(candles, domain.Buy, 100, 7)
	require.True(t, ok)
	assert.Equal(t, 106.0, target)
}

func TestSwingTarget_DegenerateInput(t *testing.T) {
	_, ok := SwingTarget(nil, domain.Buy, 100, 10)
	assert.False(t, ok)

	_, ok = SwingTarget(swingCandles([]float64{101, 102}, []float64{99, 100}), domain.Buy, 100, 10)
	assert.False(t, ok)

	_, ok = SwingTarget(swingCandles(
		[]float64{101, 106, 101, 100},
		[]float64{99, 100, 99, 98},
	), domain.NoSignal, 100, 10)
	assert.False(t, ok)
}

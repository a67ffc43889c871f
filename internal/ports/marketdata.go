package ports

import (
	"context"

	"btcSignalBot/internal/domain"
)

// MarketDataClient supplies ordered OHLC candle history for a symbol.
// Implementations must return candles ordered oldest to newest with no
// duplicate open times. Failures are wrapped with ErrFetchFailed,
// ErrTimeout or ErrMalformedData and are treated as transient by callers.
type MarketDataClient interface {
	// GetCandles retrieves up to limit most recent candles for the given
	// symbol and interval (e.g., "5m", "1h").
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error)
}

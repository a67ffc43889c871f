// Package binanceclient adapts the Binance spot REST API to the
// ports.MarketDataClient interface. Kline endpoints are public, so no API
// credentials are required for price data.
package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

// Client implements ports.MarketDataClient using the go-binance library.
type Client struct {
	spotClient *binance.Client
	logger     ports.Logger
}

// Config holds configuration specific to the Binance adapter.
type Config struct {
	Logger ports.Logger
}

// New creates a new Binance market data adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	// Empty credentials: only public market data endpoints are used.
	return &Client{
		spotClient: binance.NewClient("", ""),
		logger:     cfg.Logger,
	}, nil
}

// GetCandles retrieves up to limit most recent candles for the symbol and
// interval, ordered oldest to newest.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error) {
	klines, err := c.spotClient.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, "GetCandles")
	}

	candles := make([]*domain.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := translateKline(k, symbol, interval)
		if err != nil {
			return nil, fmt.Errorf("translating kline: %v: %w", err, ports.ErrMalformedData)
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// handleError translates transport and API errors into the standard
// transient fetch errors the callers expect.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	if errors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn(ctx, "Binance request timed out", fields)
		return fmt.Errorf("%s: %v: %w", operation, err, ports.ErrTimeout)
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message
	}
	c.logger.Warn(ctx, "Binance request failed", fields)
	return fmt.Errorf("%s: %v: %w", operation, err, ports.ErrFetchFailed)
}

// translateKline converts a Binance kline (string prices) into a domain
// candle. The REST endpoint includes the still-forming candle as its last
// element; it is marked non-final so callers can skip it.
func translateKline(k *binance.Kline, symbol, interval string) (*domain.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing open price %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing high price %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing low price %q: %w", k.Low, err)
	}
	closePrice, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing close price %q: %w", k.Close, err)
	}
	volume, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing volume %q: %w", k.Volume, err)
	}

	return &domain.Candle{
		OpenTime:  time.UnixMilli(k.OpenTime),
		CloseTime: time.UnixMilli(k.CloseTime),
		Symbol:    symbol,
		Interval:  interval,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
		IsFinal:   time.UnixMilli(k.CloseTime).Before(time.Now()),
	}, nil
}

package ports

import (
	"context"
	"time"

	"btcSignalBot/internal/domain"
)

// SignalRepository stores fired signals so the hourly digest can be built
// from an audit log rather than from process memory.
type SignalRepository interface {
	// Insert saves a fired signal and returns its assigned ID.
	Insert(ctx context.Context, symbol string, sig domain.Signal) (int64, error)
	// FindSince retrieves all signals for a symbol fired at or after the
	// given time, ordered oldest first.
	FindSince(ctx context.Context, symbol string, since time.Time) ([]domain.Signal, error)
}

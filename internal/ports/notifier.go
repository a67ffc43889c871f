package ports

import "context"

// Notifier delivers a formatted alert to the configured recipient.
// A failed send is wrapped with ErrDispatchFailed; callers log it and
// carry on, it is never allowed to fail an evaluation.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these standard errors.
var (
	// ErrConfiguration is the only error allowed to terminate the process;
	// it is raised at startup before any fetch is attempted.
	ErrConfiguration = errors.New("invalid or missing configuration")

	// Price data source errors. All of them are transient: the current
	// evaluation is skipped and the next scheduled tick retries.
	ErrFetchFailed   = errors.New("failed to fetch price data")
	ErrTimeout       = errors.New("operation timed out")
	ErrMalformedData = errors.New("malformed price data")

	// ErrInsufficientData means the candle history is too short for the
	// indicator warm-up. Not a user-facing error; resolves to NO_SIGNAL.
	ErrInsufficientData = errors.New("not enough candles for indicator warm-up")

	// ErrDispatchFailed means an alert email could not be sent. Logged,
	// never fatal; the evaluation that produced the alert still counts.
	ErrDispatchFailed = errors.New("failed to dispatch alert")

	// Signal log errors.
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)

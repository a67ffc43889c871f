package indicators

import (
	"fmt"
	"time"

	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/ports"
)

// Config holds the indicator periods tracked by the engine.
type Config struct {
	RSIPeriod      int // e.g., 14
	EMAShortPeriod int // e.g., 9
	EMALongPeriod  int // e.g., 21
}

// Reading is the indicator snapshot for one candle. The Ready flags
// express the warm-up invariant: a value must not be compared against
// thresholds until its recurrence is seeded.
type Reading struct {
	Time     time.Time
	Close    float64
	RSI      float64
	RSIReady bool
	EMAShort float64
	EMALong  float64
	EMAReady bool
}

// State is the carried recurrence state for incremental evaluation.
// It is a cache, not a source of truth: rebuilding it from the full
// candle history via Batch yields an identical state.
type State struct {
	rsi      rsiState
	emaShort emaState
	emaLong  emaState
	lastTime time.Time
}

// LastTime returns the open time of the last candle folded into the state.
func (s *State) LastTime() time.Time {
	return s.lastTime
}

// Engine computes RSI and EMA series from candle sequences. It is a pure
// function of its input plus carried State: no randomness, no wall clock,
// so output readings are bit-for-bit reproducible.
type Engine struct {
	cfg Config
}

// NewEngine validates the periods and creates an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.RSIPeriod <= 0 || cfg.EMAShortPeriod <= 0 || cfg.EMALongPeriod <= 0 {
		return nil, fmt.Errorf("indicator periods must be positive")
	}
	if cfg.EMAShortPeriod >= cfg.EMALongPeriod {
		return nil, fmt.Errorf("short EMA period (%d) must be less than long EMA period (%d)",
			cfg.EMAShortPeriod, cfg.EMALongPeriod)
	}
	return &Engine{cfg: cfg}, nil
}

// NewState returns an empty recurrence state for incremental evaluation.
func (e *Engine) NewState() *State {
	return &State{
		rsi:      newRSIState(e.cfg.RSIPeriod),
		emaShort: newEMAState(e.cfg.EMAShortPeriod),
		emaLong:  newEMAState(e.cfg.EMALongPeriod),
	}
}

// RequiredDataPoints returns the minimum number of candles for a fully
// ready reading. RSI looks one candle further back than its period.
func (e *Engine) RequiredDataPoints() int {
	required := e.cfg.RSIPeriod + 1
	if e.cfg.EMALongPeriod > required {
		required = e.cfg.EMALongPeriod
	}
	return required
}

// Step folds one candle into the state and returns the resulting reading.
// Used by the continuous scanner to extend the series without refetching
// and recomputing the whole history.
func (e *Engine) Step(st *State, candle *domain.Candle) Reading {
	close := candle.Close
	rsiReady := st.rsi.step(close)
	shortReady := st.emaShort.step(close)
	longReady := st.emaLong.step(close)
	st.lastTime = candle.OpenTime

	r := Reading{
		Time:     candle.OpenTime,
		Close:    close,
		RSIReady: rsiReady,
		EMAReady: shortReady && longReady,
	}
	if rsiReady {
		r.RSI = st.rsi.value()
	}
	if r.EMAReady {
		r.EMAShort = st.emaShort.value
		r.EMALong = st.emaLong.value
	}
	return r
}

// Batch recomputes the full reading series from a candle history and
// returns the final state. It folds Step over the sequence, so batch and
// incremental evaluation produce identical readings for the same position.
func (e *Engine) Batch(candles []*domain.Candle) ([]Reading, *State, error) {
	if len(candles) == 0 {
		return nil, nil, fmt.Errorf("empty candle history: %w", ports.ErrInsufficientData)
	}

	st := e.NewState()
	readings := make([]Reading, 0, len(candles))
	for _, c := range candles {
		readings = append(readings, e.Step(st, c))
	}
	return readings, st, nil
}

// Latest evaluates a candle history and returns only the final reading.
// Returns ErrInsufficientData when the history is too short for the
// warm-up, never a numeric value derived from a partial window.
func (e *Engine) Latest(candles []*domain.Candle) (Reading, error) {
	if len(candles) < e.RequiredDataPoints() {
		return Reading{}, fmt.Errorf("need %d candles, got %d: %w",
			e.RequiredDataPoints(), len(candles), ports.ErrInsufficientData)
	}

	readings, _, err := e.Batch(candles)
	if err != nil {
		return Reading{}, err
	}
	return readings[len(readings)-1], nil
}

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"btcSignalBot/config"
	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/ports"
	"btcSignalBot/internal/session"
	"btcSignalBot/internal/strategy"
	"btcSignalBot/internal/strategy/indicators"
)

const (
	// Limit the in-memory candle and reading windows to avoid unbounded
	// growth in the continuous scanner.
	maxCacheSize = 500
)

// Service orchestrates the signal bot's evaluation cycles: fetch candles,
// derive indicators, classify, then alert and aggregate.
type Service struct {
	cfg      *config.Config
	logger   ports.Logger
	market   ports.MarketDataClient
	notifier ports.Notifier
	signals  ports.SignalRepository
	engine   *indicators.Engine
	detector *strategy.Detector

	// Scanner state. Mutated only by the poll loop (single writer);
	// dispatch goroutines never touch it.
	state       *indicators.State
	readings    []indicators.Reading
	candleCache []*domain.Candle

	// now is the evaluation clock, swappable in tests.
	now func() time.Time

	dispatchWG sync.WaitGroup
}

// New creates a new application service instance.
func New(
	cfg *config.Config,
	logger ports.Logger,
	market ports.MarketDataClient,
	notifier ports.Notifier,
	signals ports.SignalRepository,
	policy strategy.Policy,
) (*Service, error) {
	if cfg == nil || logger == nil || market == nil || notifier == nil || signals == nil || policy == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}

	engine, err := indicators.NewEngine(indicators.Config{
		RSIPeriod:      cfg.RSIPeriod,
		EMAShortPeriod: cfg.EMAShortPeriod,
		EMALongPeriod:  cfg.EMALongPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build indicator engine: %w", err)
	}

	return &Service{
		cfg:      cfg,
		logger:   logger,
		market:   market,
		notifier: notifier,
		signals:  signals,
		engine:   engine,
		detector: strategy.NewDetector(policy),
		now:      time.Now,
	}, nil
}

// RunOnce performs a single evaluation on the context interval: fetch,
// classify the latest reading, and alert on BUY/SELL. Fetch failures and
// insufficient data are transient; the external scheduler retries on the
// next tick, so both return nil.
func (s *Service) RunOnce(ctx context.Context) error {
	candles, err := s.fetch(ctx, s.cfg.ContextInterval, s.cfg.Lookback)
	if err != nil {
		s.logger.Warn(ctx, "Price fetch failed, skipping evaluation", map[string]interface{}{
			"symbol": s.cfg.Symbol,
			"error":  err.Error(),
		})
		return nil
	}

	readings, _, err := s.engine.Batch(candles)
	if err != nil {
		s.logger.Info(ctx, "Not enough candle history yet, no signal", map[string]interface{}{
			"candles": len(candles),
		})
		return nil
	}

	latest := readings[len(readings)-1]
	kind := s.detector.Policy().Evaluate(readings)
	fields := map[string]interface{}{
		"symbol":   s.cfg.Symbol,
		"kind":     string(kind),
		"close":    latest.Close,
		"rsiReady": latest.RSIReady,
	}
	if latest.RSIReady {
		fields["rsi"] = latest.RSI
	}
	s.logger.Info(ctx, "Evaluation complete", fields)

	if !kind.IsActionable() {
		return nil
	}

	sig := s.buildSignal(kind, latest, candles)
	s.persist(ctx, sig)

	subject := formatSignalSubject(s.cfg.Symbol, s.cfg.ContextInterval, sig.Kind)
	body := formatSignalBody(s.cfg.Symbol, s.cfg.ContextInterval, sig, latest)
	if err := s.notifier.Send(ctx, subject, body); err != nil {
		// Logged and contained: a failed send never fails the evaluation.
		s.logger.Error(ctx, err, "Alert dispatch failed", map[string]interface{}{"subject": subject})
	}
	return nil
}

// RunLoop runs the continuous scanner: poll the scan interval, evaluate
// incrementally, alert on signal transitions, and flush the hourly rollup
// on wall-clock hour boundaries. Blocks until the context is canceled or
// a termination signal arrives.
func (s *Service) RunLoop(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info(ctx, "Scanner started", map[string]interface{}{
		"symbol":   s.cfg.Symbol,
		"interval": s.cfg.ScanInterval,
		"poll":     s.cfg.PollInterval.String(),
		"policy":   s.detector.Policy().Name(),
	})

	agg := session.NewAggregator(s.now())
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// Evaluate immediately instead of waiting out the first interval.
	s.tick(ctx, agg)
	for {
		select {
		case <-ctx.Done():
			s.dispatchWG.Wait()
			s.logger.Info(context.Background(), "Scanner stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx, agg)
		}
	}
}

// tick runs one scanner evaluation. All per-tick errors are contained
// here: a failed fetch skips the evaluation without touching indicator or
// aggregator state, and the hour rollover check still runs.
func (s *Service) tick(ctx context.Context, agg *session.Aggregator) {
	if s.state == nil {
		s.warmUp(ctx, agg)
	} else {
		s.advance(ctx, agg)
	}

	if summary, ok := agg.Rollover(s.now()); ok {
		subject := formatSummarySubject(s.cfg.Symbol, summary)
		body := formatSummaryBody(s.cfg.Symbol, summary)
		s.dispatch(ctx, subject, body)
	}
}

// warmUp seeds the indicator state from one batch fetch of history.
// Retried on subsequent ticks until it succeeds.
func (s *Service) warmUp(ctx context.Context, agg *session.Aggregator) {
	candles, err := s.fetch(ctx, s.cfg.ScanInterval, s.cfg.Lookback)
	if err != nil {
		s.logger.Warn(ctx, "Warm-up fetch failed, retrying next tick", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	readings, state, err := s.engine.Batch(candles)
	if err != nil {
		s.logger.Warn(ctx, "Warm-up yielded no readings, retrying next tick", map[string]interface{}{
			"candles": len(candles),
		})
		return
	}

	s.state = state
	s.readings = trimReadings(readings)
	s.candleCache = trimCandles(candles)
	for _, c := range candles {
		s.recordForSession(agg, c)
	}
	s.logger.Info(ctx, "Indicator state warmed up", map[string]interface{}{
		"candles": len(candles),
		"last":    state.LastTime(),
	})

	s.evaluate(ctx, agg)
}

// advance fetches the newest candles and extends the indicator series
// incrementally, avoiding a full refetch and recompute every poll.
func (s *Service) advance(ctx context.Context, agg *session.Aggregator) {
	// A few candles cover the forming one plus any tick we missed.
	candles, err := s.fetch(ctx, s.cfg.ScanInterval, 3)
	if err != nil {
		s.logger.Warn(ctx, "Fetch failed, skipping evaluation", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	var fresh []*domain.Candle
	for _, c := range candles {
		if c.OpenTime.After(s.state.LastTime()) {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		s.logger.Debug(ctx, "No new closed candle yet")
		return
	}

	// Candles missed during an outage cannot be folded in after the fact:
	// stepping across the hole would desync the carried state from the
	// true series. Rebuild from history instead.
	width := fresh[0].CloseTime.Sub(fresh[0].OpenTime)
	if fresh[0].OpenTime.After(s.state.LastTime().Add(width)) {
		s.logger.Warn(ctx, "Candle gap detected, rebuilding indicator state", map[string]interface{}{
			"lastSeen": s.state.LastTime(),
			"next":     fresh[0].OpenTime,
		})
		s.state = nil
		s.readings = nil
		s.candleCache = nil
		s.warmUp(ctx, agg)
		return
	}

	for _, c := range fresh {
		reading := s.engine.Step(s.state, c)
		s.readings = trimReadings(append(s.readings, reading))
		s.candleCache = trimCandles(append(s.candleCache, c))
		s.recordForSession(agg, c)
	}

	s.evaluate(ctx, agg)
}

// evaluate runs the edge-triggered detector over the current reading
// window and, on a state transition, persists and dispatches the signal.
func (s *Service) evaluate(ctx context.Context, agg *session.Aggregator) {
	kind, fired := s.detector.Observe(s.readings)
	latest := s.readings[len(s.readings)-1]
	s.logger.Debug(ctx, "Evaluated candle", map[string]interface{}{
		"kind":  string(kind),
		"rsi":   latest.RSI,
		"close": latest.Close,
		"fired": fired,
	})
	if !fired {
		return
	}

	sig := s.buildSignal(kind, latest, s.candleCache)
	agg.RecordSignal(sig)
	s.persist(ctx, sig)

	subject := formatSignalSubject(s.cfg.Symbol, s.cfg.ScanInterval, sig.Kind)
	body := formatSignalBody(s.cfg.Symbol, s.cfg.ScanInterval, sig, latest)
	s.dispatch(ctx, subject, body)
}

// SendDigest emails a rollup of the signals logged in the hour before
// now. Used by the standalone digest command. Log errors are transient:
// reported to the caller for logging but the process still exits zero.
func (s *Service) SendDigest(ctx context.Context, now time.Time) error {
	from := now.Add(-time.Hour)
	found, err := s.signals.FindSince(ctx, s.cfg.Symbol, from)
	if err != nil {
		return fmt.Errorf("reading signal log: %w", err)
	}

	var subject string
	if len(found) == 0 {
		subject = fmt.Sprintf("%s Hourly Update: No trades", s.cfg.Symbol)
	} else {
		subject = fmt.Sprintf("%s Hourly Update: %d signal(s)", s.cfg.Symbol, len(found))
	}

	body := formatDigestBody(s.cfg.Symbol, found, from, now)
	if err := s.notifier.Send(ctx, subject, body); err != nil {
		s.logger.Error(ctx, err, "Digest dispatch failed", map[string]interface{}{"subject": subject})
	}
	return nil
}

// fetch retrieves final candles with the configured timeout bound, so a
// hung price source can never stall the process past its deadline.
func (s *Service) fetch(ctx context.Context, interval string, limit int) ([]*domain.Candle, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	candles, err := s.market.GetCandles(fetchCtx, s.cfg.Symbol, interval, limit)
	if err != nil {
		return nil, err
	}

	// The client owns the slice it returned; filter into a fresh one so
	// later appends to the candle cache cannot write into its array.
	final := make([]*domain.Candle, 0, len(candles))
	for _, c := range candles {
		if c.IsFinal {
			final = append(final, c)
		}
	}
	if len(final) == 0 {
		return nil, fmt.Errorf("no closed candles returned: %w", ports.ErrInsufficientData)
	}
	return final, nil
}

func (s *Service) buildSignal(kind domain.SignalKind, latest indicators.Reading, candles []*domain.Candle) domain.Signal {
	sig := domain.Signal{
		Time:  s.now().UTC(),
		Kind:  kind,
		Price: latest.Close,
		RSI:   latest.RSI,
	}
	if target, ok := strategy.SwingTarget(candles, kind, latest.Close, s.cfg.SwingLookback); ok {
		sig.TargetPrice = &target
	}
	return sig
}

// persist appends the signal to the audit log. Failures are logged and
// contained; the alert is still dispatched.
func (s *Service) persist(ctx context.Context, sig domain.Signal) {
	if _, err := s.signals.Insert(ctx, s.cfg.Symbol, sig); err != nil {
		s.logger.Error(ctx, err, "Failed to log signal", map[string]interface{}{
			"kind":  string(sig.Kind),
			"price": sig.Price,
		})
	}
}

// dispatch sends an email without blocking the poll loop. The goroutine
// only reads its arguments; scanner state stays single-writer.
func (s *Service) dispatch(ctx context.Context, subject, body string) {
	sendCtx := context.WithoutCancel(ctx)
	s.dispatchWG.Add(1)
	go func() {
		defer s.dispatchWG.Done()
		if err := s.notifier.Send(sendCtx, subject, body); err != nil {
			s.logger.Error(sendCtx, err, "Alert dispatch failed", map[string]interface{}{"subject": subject})
		}
	}()
}

// recordForSession folds a candle into the aggregator, skipping history
// that predates the open window (warm-up reaches hours back).
func (s *Service) recordForSession(agg *session.Aggregator, c *domain.Candle) {
	if c.CloseTime.Before(agg.WindowStart()) {
		return
	}
	agg.RecordCandle(c)
}

func trimReadings(readings []indicators.Reading) []indicators.Reading {
	if len(readings) > maxCacheSize {
		return readings[len(readings)-maxCacheSize:]
	}
	return readings
}

func trimCandles(candles []*domain.Candle) []*domain.Candle {
	if len(candles) > maxCacheSize {
		return candles[len(candles)-maxCacheSize:]
	}
	return candles
}

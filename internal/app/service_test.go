package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcSignalBot/config"
	"btcSignalBot/internal/domain"
	"btcSignalBot/internal/ports"
	"btcSignalBot/internal/session"
	"btcSignalBot/internal/strategy"
)

// Mock implementations

type logEntry struct {
	msg    string
	fields map[string]interface{}
}

type mockLogger struct {
	mu        sync.Mutex
	infoLogs  []logEntry
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := logEntry{msg: msg}
	if len(fields) > 0 {
		entry.fields = fields[0]
	}
	m.infoLogs = append(m.infoLogs, entry)
}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

type fetchResult struct {
	candles []*domain.Candle
	err     error
}

type mockMarket struct {
	results []fetchResult
	calls   int
}

func (m *mockMarket) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error) {
	if m.calls >= len(m.results) {
		return nil, fmt.Errorf("unexpected fetch call %d", m.calls)
	}
	res := m.results[m.calls]
	m.calls++
	return res.candles, res.err
}

type sentMail struct {
	subject string
	body    string
}

type mockNotifier struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

func (m *mockNotifier) Send(ctx context.Context, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{subject: subject, body: body})
	return nil
}

func (m *mockNotifier) sentMails() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

type mockRepo struct {
	mu       sync.Mutex
	inserted []domain.Signal
	found    []domain.Signal
	findErr  error
}

func (m *mockRepo) Insert(ctx context.Context, symbol string, sig domain.Signal) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, sig)
	return int64(len(m.inserted)), nil
}

func (m *mockRepo) FindSince(ctx context.Context, symbol string, since time.Time) ([]domain.Signal, error) {
	return m.found, m.findErr
}

// Helpers

func testConfig() *config.Config {
	return &config.Config{
		Symbol:          "BTCUSDT",
		ScanInterval:    "5m",
		ContextInterval: "1h",
		Lookback:        10,
		FetchTimeout:    5 * time.Second,
		RSIPeriod:       3,
		EMAShortPeriod:  2,
		EMALongPeriod:   3,
		RSIOverbought:   70,
		RSIOversold:     30,
		SwingLookback:   5,
		PollInterval:    time.Minute,
	}
}

func fallingCandles(start time.Time, n int) []*domain.Candle {
	candles := make([]*domain.Candle, 0, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price -= 1.0
		candles = append(candles, &domain.Candle{
			OpenTime:  start.Add(time.Duration(i) * 5 * time.Minute),
			CloseTime: start.Add(time.Duration(i+1) * 5 * time.Minute),
			Symbol:    "BTCUSDT",
			Interval:  "5m",
			Open:      price + 1,
			High:      price + 1,
			Low:       price,
			Close:     price,
			IsFinal:   true,
		})
	}
	return candles
}

func newTestService(t *testing.T, market ports.MarketDataClient, notifier ports.Notifier, repo ports.SignalRepository) (*Service, *mockLogger) {
	t.Helper()
	logger := &mockLogger{}
	policy, err := strategy.NewThresholdPolicy(30, 70)
	require.NoError(t, err)
	svc, err := New(testConfig(), logger, market, notifier, repo, policy)
	require.NoError(t, err)
	return svc, logger
}

// Tests

func TestNew_RequiresDependencies(t *testing.T) {
	policy, err := strategy.NewThresholdPolicy(30, 70)
	require.NoError(t, err)

	_, err = New(nil, &mockLogger{}, &mockMarket{}, &mockNotifier{}, &mockRepo{}, policy)
	assert.Error(t, err)
	_, err = New(testConfig(), nil, &mockMarket{}, &mockNotifier{}, &mockRepo{}, policy)
	assert.Error(t, err)
	_, err = New(testConfig(), &mockLogger{}, &mockMarket{}, &mockNotifier{}, &mockRepo{}, nil)
	assert.Error(t, err)
}

func TestRunOnce_FiresBuyAlert(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// Strictly falling closes drive RSI to 0: deep in the buy zone.
	market := &mockMarket{results: []fetchResult{{candles: fallingCandles(start, 8)}}}
	notifier := &mockNotifier{}
	repo := &mockRepo{}
	svc, _ := newTestService(t, market, notifier, repo)

	err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	sent := notifier.sentMails()
	require.Len(t, sent, 1)
	assert.Equal(t, "BTCUSDT 1h Alert: BUY", sent[0].subject)
	assert.Contains(t, sent[0].body, "RSI:")

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, domain.Buy, repo.inserted[0].Kind)
	assert.Nil(t, repo.inserted[0].TargetPrice, "falling series has no swing high above entry")
}

func TestRunOnce_NoSignalSendsNothing(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// Alternating closes keep RSI inside the neutral band.
	candles := fallingCandles(start, 8)
	for i, c := range candles {
		if i%2 == 0 {
			c.Close = 100
		} else {
			c.Close = 101
		}
	}
	market := &mockMarket{results: []fetchResult{{candles: candles}}}
	notifier := &mockNotifier{}
	repo := &mockRepo{}
	svc, _ := newTestService(t, market, notifier, repo)

	err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifier.sentMails())
	assert.Empty(t, repo.inserted)
}

func TestRunOnce_FetchFailureIsTransient(t *testing.T) {
	market := &mockMarket{results: []fetchResult{{err: ports.ErrFetchFailed}}}
	notifier := &mockNotifier{}
	svc, logger := newTestService(t, market, notifier, &mockRepo{})

	err := svc.RunOnce(context.Background())
	require.NoError(t, err, "fetch failure must not fail the run")
	assert.Empty(t, notifier.sentMails())
	assert.NotEmpty(t, logger.warnMsgs)
}

func TestRunOnce_InsufficientHistoryIsNoSignal(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	market := &mockMarket{results: []fetchResult{{candles: fallingCandles(start, 2)}}}
	notifier := &mockNotifier{}
	svc, _ := newTestService(t, market, notifier, &mockRepo{})

	err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifier.sentMails())
}

func TestRunOnce_LogOmitsUnreadyRSI(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	// Three candles are short of the RSI(3) warm-up: the reading exists
	// but its RSI field is a meaningless zero.
	market := &mockMarket{results: []fetchResult{{candles: fallingCandles(start, 3)}}}
	svc, logger := newTestService(t, market, &mockNotifier{}, &mockRepo{})

	err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	var entry *logEntry
	for i := range logger.infoLogs {
		if logger.infoLogs[i].msg == "Evaluation complete" {
			entry = &logger.infoLogs[i]
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, false, entry.fields["rsiReady"])
	_, ok := entry.fields["rsi"]
	assert.False(t, ok, "an unready RSI value must not be logged")
}

func TestRunOnce_DispatchFailureIsContained(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	market := &mockMarket{results: []fetchResult{{candles: fallingCandles(start, 8)}}}
	notifier := &mockNotifier{sendErr: ports.ErrDispatchFailed}
	repo := &mockRepo{}
	svc, logger := newTestService(t, market, notifier, repo)

	err := svc.RunOnce(context.Background())
	require.NoError(t, err, "dispatch failure must not fail the evaluation")
	assert.Len(t, repo.inserted, 1, "signal is still logged")
	assert.NotEmpty(t, logger.errorMsgs)
}

func TestTick_EdgeTriggeredScanFiresOnce(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	warmup := fallingCandles(start, 8)
	next := fallingCandles(start, 10)[8:] // two more falling candles

	market := &mockMarket{results: []fetchResult{
		{candles: warmup},
		{candles: next[:1]},
		{candles: next[1:]},
	}}
	notifier := &mockNotifier{}
	repo := &mockRepo{}
	svc, _ := newTestService(t, market, notifier, repo)

	evalTime := start.Add(40 * time.Minute)
	svc.now = func() time.Time { return evalTime }
	agg := session.NewAggregator(evalTime)

	ctx := context.Background()
	svc.tick(ctx, agg) // warm-up: enters buy zone, fires
	svc.tick(ctx, agg) // still in buy zone, no re-fire
	svc.tick(ctx, agg)
	svc.dispatchWG.Wait()

	sent := notifier.sentMails()
	require.Len(t, sent, 1)
	assert.Equal(t, "BTCUSDT 5m Alert: BUY", sent[0].subject)
	assert.Len(t, repo.inserted, 1)
}

func TestTick_RewarmsAfterCandleGap(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	full := fallingCandles(start, 16)

	// Warm up over the first eight candles, then simulate an outage: the
	// next fetch skips candles 8..12 entirely.
	market := &mockMarket{results: []fetchResult{
		{candles: full[:8]},
		{candles: full[13:16]},
		{candles: full},
	}}
	notifier := &mockNotifier{}
	svc, logger := newTestService(t, market, notifier, &mockRepo{})

	evalTime := start.Add(40 * time.Minute)
	svc.now = func() time.Time { return evalTime }
	agg := session.NewAggregator(evalTime)

	ctx := context.Background()
	svc.tick(ctx, agg) // warm-up
	svc.tick(ctx, agg) // gap detected, full rebuild
	svc.dispatchWG.Wait()

	require.Equal(t, 3, market.calls, "the gap must trigger a fresh history fetch")
	assert.NotEmpty(t, logger.warnMsgs)

	// The rebuilt state must match a batch recompute over the true series,
	// not a step across the hole.
	batch, _, err := svc.engine.Batch(full)
	require.NoError(t, err)
	require.Len(t, svc.readings, len(full))
	last := svc.readings[len(svc.readings)-1]
	assert.InDelta(t, batch[15].RSI, last.RSI, 1e-9)
	assert.InDelta(t, batch[15].EMAShort, last.EMAShort, 1e-9)
	assert.InDelta(t, batch[15].EMALong, last.EMALong, 1e-9)
	assert.Equal(t, full[15].OpenTime, svc.state.LastTime())

	// Still in the buy zone throughout: the rebuild must not re-alert.
	assert.Len(t, notifier.sentMails(), 1)
}

func TestTick_ClientSliceIsNotMutated(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	full := fallingCandles(start, 9)
	original := full[8]

	// The warm-up result shares its backing array with full; growing the
	// candle cache must never write into the client's storage.
	market := &mockMarket{results: []fetchResult{
		{candles: full[:8]},
		{candles: fallingCandles(start, 9)[8:9]},
	}}
	notifier := &mockNotifier{}
	svc, _ := newTestService(t, market, notifier, &mockRepo{})

	evalTime := start.Add(40 * time.Minute)
	svc.now = func() time.Time { return evalTime }
	agg := session.NewAggregator(evalTime)

	ctx := context.Background()
	svc.tick(ctx, agg)
	svc.tick(ctx, agg)
	svc.dispatchWG.Wait()

	assert.Same(t, original, full[8])
}

func TestTick_HourRolloverEmitsSummaryDespiteFetchFailure(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	market := &mockMarket{results: []fetchResult{
		{candles: fallingCandles(start, 8)},
		{err: ports.ErrFetchFailed},
	}}
	notifier := &mockNotifier{}
	svc, _ := newTestService(t, market, notifier, &mockRepo{})

	evalTime := start.Add(40 * time.Minute)
	svc.now = func() time.Time { return evalTime }
	agg := session.NewAggregator(evalTime)

	ctx := context.Background()
	svc.tick(ctx, agg) // warm-up, fires BUY
	svc.dispatchWG.Wait()
	require.Len(t, notifier.sentMails(), 1)

	// Cross the hour boundary; the fetch fails but the rollup still goes out.
	evalTime = start.Add(65 * time.Minute)
	svc.tick(ctx, agg)
	svc.dispatchWG.Wait()

	sent := notifier.sentMails()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].subject, "Hourly Update")
	assert.Contains(t, sent[1].body, "Total signals: 1")
}

func TestSendDigest_EmptyHourStillSends(t *testing.T) {
	notifier := &mockNotifier{}
	svc, _ := newTestService(t, &mockMarket{}, notifier, &mockRepo{})

	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	err := svc.SendDigest(context.Background(), now)
	require.NoError(t, err)

	sent := notifier.sentMails()
	require.Len(t, sent, 1)
	assert.Equal(t, "BTCUSDT Hourly Update: No trades", sent[0].subject)
	assert.Contains(t, sent[0].body, "No BUY/SELL signals in the last hour.")
}

func TestSendDigest_ListsLoggedSignals(t *testing.T) {
	target := 40650.0
	repo := &mockRepo{found: []domain.Signal{
		{Time: time.Date(2025, 3, 10, 14, 10, 0, 0, time.UTC), Kind: domain.Buy, Price: 40000, RSI: 27.2, TargetPrice: &target},
		{Time: time.Date(2025, 3, 10, 14, 40, 0, 0, time.UTC), Kind: domain.Sell, Price: 41000, RSI: 71.0},
	}}
	notifier := &mockNotifier{}
	svc, _ := newTestService(t, &mockMarket{}, notifier, repo)

	err := svc.SendDigest(context.Background(), time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	sent := notifier.sentMails()
	require.Len(t, sent, 1)
	assert.Equal(t, "BTCUSDT Hourly Update: 2 signal(s)", sent[0].subject)
	assert.Contains(t, sent[0].body, "BUY @ $40000.00")
	assert.Contains(t, sent[0].body, "Target $40650.00")
	assert.True(t, strings.Contains(sent[0].body, "SELL @ $41000.00"))
}

func TestSendDigest_RepositoryErrorIsReported(t *testing.T) {
	repo := &mockRepo{findErr: ports.ErrQueryFailed}
	notifier := &mockNotifier{}
	svc, _ := newTestService(t, &mockMarket{}, notifier, repo)

	err := svc.SendDigest(context.Background(), time.Now())
	require.Error(t, err)
	// The wrapped sentinel survives so callers can classify it as
	// transient rather than fatal.
	assert.ErrorIs(t, err, ports.ErrQueryFailed)
	assert.Empty(t, notifier.sentMails())
}

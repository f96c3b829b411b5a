package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"StockAdvisor/internal/metrics"
	"StockAdvisor/internal/model"
	"StockAdvisor/internal/strategy"
)

const (
	DefaultHistoryDays = 180
	DefaultAttempts    = 3
	DefaultRetryDelay  = 5 * time.Second

	// AvgVolumeBars is the number of recent sessions (about 30 calendar days)
	// averaged for the snapshot's reference volume.
	AvgVolumeBars = 22
)

// Observation is everything fetched for one symbol in one pass.
type Observation struct {
	Symbol    string          `json:"symbol"`
	Bars      []model.OHLCV   `json:"bars"`
	Snapshot  *model.Snapshot `json:"snapshot,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Collector orchestrates data fetching and scoring.
type Collector struct {
	Fetcher     Fetcher
	HistoryDays int
	Attempts    int
	RetryDelay  time.Duration
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// NewCollector creates a Collector with the default history window and retry policy.
func NewCollector(fetcher Fetcher, m *metrics.Metrics) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		HistoryDays: DefaultHistoryDays,
		Attempts:    DefaultAttempts,
		RetryDelay:  DefaultRetryDelay,
		Metrics:     m,
		Now:         time.Now,
	}
}

// Collect fetches daily history and a snapshot for symbol. A failure of one
// of them is logged and tolerated; an error is returned only when both fail.
func (c *Collector) Collect(ctx context.Context, symbol string) (*Observation, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, errors.New("empty symbol")
	}
	now := c.now()
	start := now.AddDate(0, 0, -c.historyDays())

	bars, barsErr := withRetry(ctx, c, "bars "+symbol, func() ([]model.OHLCV, error) {
		return c.Fetcher.FetchDailyBars(ctx, symbol, start, now)
	})
	if barsErr != nil {
		c.Metrics.ObserveFetchError("bars")
		log.Printf("[WARN] %s: history unavailable: %v", symbol, barsErr)
	}

	snap, snapErr := withRetry(ctx, c, "snapshot "+symbol, func() (*model.Snapshot, error) {
		return c.Fetcher.FetchSnapshot(ctx, symbol)
	})
	if snapErr != nil {
		c.Metrics.ObserveFetchError("snapshot")
		log.Printf("[WARN] %s: snapshot unavailable: %v", symbol, snapErr)
	}

	if barsErr != nil && snapErr != nil {
		return nil, fmt.Errorf("collect %s: %w; %w", symbol, barsErr, snapErr)
	}

	obs := &Observation{
		Symbol:    symbol,
		Bars:      NormalizeSeries(bars),
		FetchedAt: now,
	}
	if snap != nil {
		s := *snap
		if s.AvgVolume == nil {
			s.AvgVolume = AverageVolume(obs.Bars, AvgVolumeBars)
		}
		obs.Snapshot = &s
	}
	return obs, nil
}

// Score collects symbol and evaluates it. The result is always usable; the
// error reports that no data at all could be fetched, in which case the
// result is the insufficient-data sentinel.
func (c *Collector) Score(ctx context.Context, symbol string) (*Observation, model.ScoreResult, error) {
	begin := time.Now()
	obs, err := c.Collect(ctx, symbol)
	if err != nil {
		res := strategy.Evaluate(nil, nil)
		c.Metrics.ObserveScore(res, time.Since(begin))
		return nil, res, err
	}
	res := strategy.Evaluate(obs.Bars, obs.Snapshot)
	c.Metrics.ObserveScore(res, time.Since(begin))

	log.Printf("[INFO] %s: score=%d (%s) via %s path, %d bars", symbol, res.Score, res.Recommendation, res.Source, len(obs.Bars))
	for _, f := range res.Factors {
		log.Printf("[INFO] %s:   %-10s %2d/%2d  %s", symbol, f.Name, f.Points, f.Weight, f.Commentary)
	}
	return obs, res, nil
}

// NormalizeSeries returns a copy of bars sorted ascending by date with
// duplicate dates removed; the last bar seen for a date wins.
func NormalizeSeries(bars []model.OHLCV) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	n := 0
	for i := range out {
		if n > 0 && sameDay(out[n-1].Time, out[i].Time) {
			out[n-1] = out[i]
			continue
		}
		out[n] = out[i]
		n++
	}
	return out[:n]
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AverageVolume returns the mean volume of the last n bars, or nil when bars
// is empty.
func AverageVolume(bars []model.OHLCV, n int) *float64 {
	if len(bars) == 0 || n <= 0 {
		return nil
	}
	if n > len(bars) {
		n = len(bars)
	}
	sum := 0.0
	for _, b := range bars[len(bars)-n:] {
		sum += b.Volume
	}
	return model.Float(sum / float64(n))
}

// withRetry calls fn up to Attempts times with a fixed delay between
// attempts. ErrNoData is not retried.
func withRetry[T any](ctx context.Context, c *Collector, what string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if errors.Is(err, ErrNoData) || i == attempts-1 {
			break
		}
		log.Printf("[WARN] fetch %s failed (attempt %d/%d): %v, retrying in %v", what, i+1, attempts, err, c.RetryDelay)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
	return zero, lastErr
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Collector) historyDays() int {
	if c.HistoryDays > 0 {
		return c.HistoryDays
	}
	return DefaultHistoryDays
}

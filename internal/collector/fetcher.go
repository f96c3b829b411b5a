package collector

import (
	"context"
	"errors"
	"time"

	"StockAdvisor/internal/model"
)

// ErrNoData is returned when the provider answers but has nothing for the symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	FetchSnapshot(ctx context.Context, symbol string) (*model.Snapshot, error)
	Name() string
}

package collector

import (
	"context"
	"time"

	"StockAdvisor/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price       float64
	Bars        []model.OHLCV
	Snapshot    *model.Snapshot
	BarsErr     error
	SnapshotErr error

	BarsCalls     int
	SnapshotCalls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.BarsCalls++
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	days := int(end.Sub(start).Hours()/24) * 5 / 7
	return generateMockBars(m.Price, days, end), nil
}

func (m *MockFetcher) FetchSnapshot(_ context.Context, symbol string) (*model.Snapshot, error) {
	m.SnapshotCalls++
	if m.SnapshotErr != nil {
		return nil, m.SnapshotErr
	}
	if m.Snapshot != nil {
		s := *m.Snapshot
		return &s, nil
	}
	return &model.Snapshot{
		Symbol:       symbol,
		Name:         "mock",
		CurrentPrice: model.Float(m.Price),
		ChangePct:    model.Float(0.5),
		Volume:       model.Float(1000000),
		Turnover:     model.Float(1.2),
	}, nil
}

func generateMockBars(basePrice float64, count int, end time.Time) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

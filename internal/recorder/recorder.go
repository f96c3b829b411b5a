package recorder

import (
	"time"

	"StockAdvisor/internal/model"
)

// ScoreRecord is one produced ScoreResult with the context it was made in.
type ScoreRecord struct {
	ID        string
	RunID     string // groups the records of one watchlist pass; empty for on-demand scores
	Symbol    string
	Timestamp time.Time
	Price     float64 // latest close or snapshot price, 0 when unknown
	Bars      int     // history length the score was computed from
	Result    model.ScoreResult
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordScore(rec *ScoreRecord) error
	History(symbol string, limit int) ([]ScoreRecord, error)
	Close() error
}

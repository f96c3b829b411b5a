package model

import (
	"errors"
	"fmt"
	"time"
)

// OHLCV represents a single daily trading session.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Amount float64   `json:"amount,omitempty"` // traded value, 0 when the provider does not report it
}

// Snapshot is a point-in-time quote without history.
// Pointer fields are optional: nil means the provider did not supply the value.
type Snapshot struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice *float64 `json:"current_price,omitempty"`
	ChangePct    *float64 `json:"change_pct,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	Turnover     *float64 `json:"turnover,omitempty"`
	AvgVolume    *float64 `json:"avg_volume,omitempty"`
}

// Float returns a pointer to v, for building snapshots.
func Float(v float64) *float64 { return &v }

var ErrUnordered = errors.New("bars are not strictly ascending by date")

// ValidateSeries checks that bars are strictly ascending with no duplicate dates.
func ValidateSeries(bars []OHLCV) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return fmt.Errorf("bar %d (%s): %w", i, bars[i].Time.Format("2006-01-02"), ErrUnordered)
		}
	}
	return nil
}

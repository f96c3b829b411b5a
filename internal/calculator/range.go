package calculator

import (
	"errors"
	"math"
)

// RollingMin returns the trailing minimum over period values, NaN until full.
func RollingMin(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		lo := math.Inf(1)
		for _, v := range values[i-period+1 : i+1] {
			if v < lo {
				lo = v
			}
		}
		out[i] = lo
	}
	return out
}

// RollingMax returns the trailing maximum over period values, NaN until full.
func RollingMax(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		hi := math.Inf(-1)
		for _, v := range values[i-period+1 : i+1] {
			if v > hi {
				hi = v
			}
		}
		out[i] = hi
	}
	return out
}

// CalculatePosition returns where current sits within [low, high] (0.0~1.0).
// A degenerate range gives 0.5.
func CalculatePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}

// Strength is the position of each close within its trailing window
// high/low range, as a percentage. A flat window gives 50.
func Strength(closes []float64, window int) []float64 {
	lows := RollingMin(closes, window)
	highs := RollingMax(closes, window)
	out := nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(lows[i]) || math.IsNaN(highs[i]) {
			continue
		}
		pos, err := CalculatePosition(closes[i], highs[i], lows[i])
		if err != nil {
			continue
		}
		out[i] = pos * 100
	}
	return out
}

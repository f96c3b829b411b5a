package calculator

import (
	"errors"
	"math"

	"StockAdvisor/internal/model"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA returns the trailing mean over exactly period values for each
// index, NaN until the window is full.
func RollingSMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = mean(values[i-period+1 : i+1])
	}
	return out
}

// RollingStdDev returns the trailing sample standard deviation (n-1
// denominator), NaN until the window is full.
func RollingStdDev(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period < 2 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = sampleStdDev(values[i-period+1 : i+1])
	}
	return out
}

// Closes extracts close prices.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes extracts traded volumes.
func Volumes(bars []model.OHLCV) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}

func mean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

func sampleStdDev(window []float64) float64 {
	// identical values must give exactly 0, not rounding noise from the mean
	flat := true
	for _, v := range window[1:] {
		if v != window[0] {
			flat = false
			break
		}
	}
	if flat {
		return 0
	}
	m := mean(window)
	sumSq := 0.0
	for _, v := range window {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(window)-1))
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

package calculator

import "math"

// RSI computes the momentum oscillator for every bar. Gains and losses are
// smoothed with a simple rolling mean (not Wilder smoothing). The first bar
// has no prior close and counts as a zero change, so the first value is
// defined at index period-1. A window without losses saturates to 100.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if period <= 0 || n < period {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	for i := period - 1; i < n; i++ {
		avgGain := mean(gains[i-period+1 : i+1])
		avgLoss := mean(losses[i-period+1 : i+1])
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return math.NaN()
	}
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

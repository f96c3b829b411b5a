package calculator

import "math"

// TradingDaysPerYear annualises daily volatility.
const TradingDaysPerYear = 252

// Returns computes simple daily returns; index 0 is NaN.
func Returns(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		out[i] = closes[i]/closes[i-1] - 1
	}
	return out
}

// Volatility is the rolling sample stdev of daily returns over window
// returns, annualised and expressed as a percentage. The first value is
// defined at index window because index 0 has no return.
func Volatility(closes []float64, window int) []float64 {
	rets := Returns(closes)
	out := nanSlice(len(closes))
	if window < 2 {
		return out
	}
	scale := math.Sqrt(TradingDaysPerYear) * 100
	for i := window; i < len(closes); i++ {
		out[i] = sampleStdDev(rets[i-window+1:i+1]) * scale
	}
	return out
}

// Bands computes the moving-average channel: middle = SMA(window),
// upper/lower = middle +/- width * sample stdev(window).
func Bands(closes []float64, window int, width float64) (upper, middle, lower []float64) {
	middle = RollingSMA(closes, window)
	std := RollingStdDev(closes, window)
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(middle[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = middle[i] + width*std[i]
		lower[i] = middle[i] - width*std[i]
	}
	return upper, middle, lower
}

// ChannelPosition returns where price sits between lower and upper, in
// percent. It is not clamped; a collapsed channel gives 50.
func ChannelPosition(price, upper, lower float64) float64 {
	if upper == lower {
		return 50
	}
	return (price - lower) / (upper - lower) * 100
}

package calculator

// EMA computes an exponential moving average seeded with the first value and
// no bias correction: e[0] = x[0], e[t] = a*x[t] + (1-a)*e[t-1], a = 2/(span+1).
func EMA(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD returns the momentum line (fast EMA minus slow EMA) and its signal line.
func MACD(closes []float64, fastSpan, slowSpan, signalSpan int) (line, signal []float64) {
	fast := EMA(closes, fastSpan)
	slow := EMA(closes, slowSpan)
	line = make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	return line, EMA(line, signalSpan)
}

package model

// IndicatorFrame is a series augmented with per-bar indicator columns.
// Every column has the same length as Bars; a value is NaN until enough
// preceding bars exist for its window.
type IndicatorFrame struct {
	Bars []OHLCV

	RSI        []float64
	EMAFast    []float64
	EMASlow    []float64
	MACD       []float64
	Signal     []float64
	MA5        []float64
	MA10       []float64
	MA20       []float64
	MA60       []float64
	Volatility []float64 // annualised, percent
	BandUpper  []float64
	BandMiddle []float64
	BandLower  []float64
	Strength   []float64 // 0 ~ 100
}

// IndicatorRow is a single bar of an IndicatorFrame.
type IndicatorRow struct {
	Bar        OHLCV
	RSI        float64
	EMAFast    float64
	EMASlow    float64
	MACD       float64
	Signal     float64
	MA5        float64
	MA10       float64
	MA20       float64
	MA60       float64
	Volatility float64
	BandUpper  float64
	BandMiddle float64
	BandLower  float64
	Strength   float64
}

// Len returns the number of bars in the frame.
func (f *IndicatorFrame) Len() int { return len(f.Bars) }

// Row returns bar i with its indicator values. It panics if i is out of range
// or a column is shorter than Bars.
func (f *IndicatorFrame) Row(i int) IndicatorRow {
	return IndicatorRow{
		Bar:        f.Bars[i],
		RSI:        f.RSI[i],
		EMAFast:    f.EMAFast[i],
		EMASlow:    f.EMASlow[i],
		MACD:       f.MACD[i],
		Signal:     f.Signal[i],
		MA5:        f.MA5[i],
		MA10:       f.MA10[i],
		MA20:       f.MA20[i],
		MA60:       f.MA60[i],
		Volatility: f.Volatility[i],
		BandUpper:  f.BandUpper[i],
		BandMiddle: f.BandMiddle[i],
		BandLower:  f.BandLower[i],
		Strength:   f.Strength[i],
	}
}

// Columns returns all indicator columns, used for consistency checks.
func (f *IndicatorFrame) Columns() [][]float64 {
	return [][]float64{
		f.RSI, f.EMAFast, f.EMASlow, f.MACD, f.Signal,
		f.MA5, f.MA10, f.MA20, f.MA60, f.Volatility,
		f.BandUpper, f.BandMiddle, f.BandLower, f.Strength,
	}
}

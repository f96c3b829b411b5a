package calculator

import "StockAdvisor/internal/model"

const (
	RSIPeriod        = 14
	FastSpan         = 12
	SlowSpan         = 26
	SignalSpan       = 9
	VolatilityWindow = 20
	BandWindow       = 20
	BandWidth        = 2.0
	StrengthWindow   = 60
)

// Calculate derives every indicator column for bars. The returned frame owns
// a copy of bars; the caller's slice is neither mutated nor retained.
func Calculate(bars []model.OHLCV) *model.IndicatorFrame {
	own := make([]model.OHLCV, len(bars))
	copy(own, bars)
	closes := Closes(own)

	macd, signal := MACD(closes, FastSpan, SlowSpan, SignalSpan)
	upper, middle, lower := Bands(closes, BandWindow, BandWidth)

	return &model.IndicatorFrame{
		Bars:       own,
		RSI:        RSI(closes, RSIPeriod),
		EMAFast:    EMA(closes, FastSpan),
		EMASlow:    EMA(closes, SlowSpan),
		MACD:       macd,
		Signal:     signal,
		MA5:        RollingSMA(closes, 5),
		MA10:       RollingSMA(closes, 10),
		MA20:       RollingSMA(closes, 20),
		MA60:       RollingSMA(closes, 60),
		Volatility: Volatility(closes, VolatilityWindow),
		BandUpper:  upper,
		BandMiddle: middle,
		BandLower:  lower,
		Strength:   Strength(closes, StrengthWindow),
	}
}

package strategy

import (
	"errors"
	"fmt"
	"log"
	"math"

	"StockAdvisor/internal/calculator"
	"StockAdvisor/internal/model"
)

// MinHistoryBars is the shortest series the detailed path will score.
const MinHistoryBars = 20

// Rule weights; they sum to 100.
const (
	WeightTrend       = 30
	WeightMomentum    = 20
	WeightTrendSignal = 20
	WeightVolume      = 15
	WeightVolatility  = 15
)

const (
	OverboughtRSI        = 70.0
	OversoldRSI          = 30.0
	LowVolatilityPct     = 30.0
	RecentVolumeBars     = 5
	LongVolumeBars       = 20
	ChannelOversoldPct   = 20.0
	ChannelOverboughtPct = 80.0
)

var errMalformedFrame = errors.New("malformed indicator frame")

// ScoreSeries computes indicators for bars and scores the most recent bar.
// Series shorter than MinHistoryBars yield the insufficient-data sentinel.
func ScoreSeries(bars []model.OHLCV) model.ScoreResult {
	if len(bars) < MinHistoryBars {
		return insufficientResult(model.SourceDetailed)
	}
	return AnalyzeFrame(calculator.Calculate(bars))
}

// AnalyzeFrame scores the latest bar of an indicator frame. It never panics:
// a malformed frame yields the failed sentinel.
func AnalyzeFrame(frame *model.IndicatorFrame) (result model.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] detailed analysis panicked: %v", r)
			result = failedResult(model.SourceDetailed)
		}
	}()

	if frame == nil || frame.Len() < MinHistoryBars {
		return insufficientResult(model.SourceDetailed)
	}
	res, err := analyzeFrame(frame)
	if err != nil {
		log.Printf("[WARN] detailed analysis failed: %v", err)
		return failedResult(model.SourceDetailed)
	}
	return res
}

func analyzeFrame(frame *model.IndicatorFrame) (model.ScoreResult, error) {
	n := frame.Len()
	for i, col := range frame.Columns() {
		if len(col) != n {
			return model.ScoreResult{}, fmt.Errorf("%w: column %d has %d values, want %d", errMalformedFrame, i, len(col), n)
		}
	}

	if err := model.ValidateSeries(frame.Bars); err != nil {
		return model.ScoreResult{}, fmt.Errorf("%w: %w", errMalformedFrame, err)
	}

	row := frame.Row(n - 1)
	required := []struct {
		name  string
		value float64
	}{
		{"close", row.Bar.Close},
		{"MA5", row.MA5},
		{"MA20", row.MA20},
		{"RSI", row.RSI},
		{"MACD", row.MACD},
		{"signal", row.Signal},
		{"band upper", row.BandUpper},
		{"band lower", row.BandLower},
	}
	for _, r := range required {
		if !isFinite(r.value) {
			return model.ScoreResult{}, fmt.Errorf("%w: %s is %v on the latest bar", errMalformedFrame, r.name, r.value)
		}
	}

	volumes := calculator.Volumes(frame.Bars)
	recentVol, err := calculator.CalculateSMA(volumes, RecentVolumeBars)
	if err != nil {
		return model.ScoreResult{}, fmt.Errorf("recent volume: %w", err)
	}
	longVol, err := calculator.CalculateSMA(volumes, LongVolumeBars)
	if err != nil {
		return model.ScoreResult{}, fmt.Errorf("long volume: %w", err)
	}

	trend := model.TrendDown
	if row.MA5 > row.MA20 {
		trend = model.TrendUp
	}

	momentum := model.MomentumNeutral
	switch {
	case row.RSI > OverboughtRSI:
		momentum = model.MomentumOverbought
	case row.RSI < OversoldRSI:
		momentum = model.MomentumOversold
	}
	// scored on the open band, independent of the label
	momentumHealthy := row.RSI > OversoldRSI && row.RSI < OverboughtRSI

	trendSignal := model.TrendSignalSell
	if row.MACD > row.Signal {
		trendSignal = model.TrendSignalBuy
	}

	volumeSignal := model.VolumeLow
	if recentVol > longVol {
		volumeSignal = model.VolumeHigh
	}

	volatility := row.Volatility
	volatilityLow := isFinite(volatility) && volatility < LowVolatilityPct
	volatilityNote := fmt.Sprintf("annualised %.2f%%", volatility)
	if !isFinite(volatility) {
		volatility = 0
		volatilityNote = "not enough returns"
	}

	position := calculator.ChannelPosition(row.Bar.Close, row.BandUpper, row.BandLower)
	channel := model.ChannelNeutral
	switch {
	case position < ChannelOversoldPct:
		channel = model.ChannelOversoldZone
	case position > ChannelOverboughtPct:
		channel = model.ChannelOverboughtZone
	}

	factors := []model.Factor{
		award("trend", WeightTrend, trend == model.TrendUp,
			fmt.Sprintf("MA5=%.2f MA20=%.2f", row.MA5, row.MA20)),
		award("momentum", WeightMomentum, momentumHealthy,
			fmt.Sprintf("RSI=%.2f", row.RSI)),
		award("trend_signal", WeightTrendSignal, trendSignal == model.TrendSignalBuy,
			fmt.Sprintf("MACD=%.4f signal=%.4f", row.MACD, row.Signal)),
		award("volume", WeightVolume, volumeSignal == model.VolumeHigh,
			fmt.Sprintf("5-bar avg=%.0f 20-bar avg=%.0f", recentVol, longVol)),
		award("volatility", WeightVolatility, volatilityLow, volatilityNote),
	}
	score := sumPoints(factors)

	return model.ScoreResult{
		Status:          model.StatusOK,
		Source:          model.SourceDetailed,
		Score:           score,
		Recommendation:  MapRecommendation(score),
		Trend:           trend,
		MomentumSignal:  momentum,
		TrendSignal:     trendSignal,
		VolumeSignal:    volumeSignal,
		Volatility:      volatility,
		VolatilityLow:   volatilityLow,
		ChannelSignal:   channel,
		RSI:             row.RSI,
		ChannelPosition: position,
		RecentVolume:    recentVol,
		LongVolume:      longVol,
		Factors:         factors,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package strategy

import (
	"fmt"
	"log"
	"math"

	"StockAdvisor/internal/model"
)

// Proxy thresholds used when only a single quote is available.
const (
	FixedVolumeThreshold = 500000.0
	OverboughtChangePct  = 5.0
	OversoldChangePct    = -5.0
	HealthyChangeLow     = -2.0
	HealthyChangeHigh    = 3.0
	CalmChangePct        = 3.0
)

// ScoreSnapshot scores a quote without history, substituting the daily
// change and volume for the indicators. A snapshot missing price, change,
// volume or turnover yields the insufficient-data sentinel.
func ScoreSnapshot(s model.Snapshot) (result model.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] snapshot scoring panicked for %s: %v", s.Symbol, r)
			result = failedResult(model.SourceSnapshot)
		}
	}()

	if s.CurrentPrice == nil || s.ChangePct == nil || s.Volume == nil || s.Turnover == nil {
		return missingFieldResult()
	}
	change, volume := *s.ChangePct, *s.Volume
	if !isFinite(change) || !isFinite(volume) {
		log.Printf("[WARN] snapshot for %s has non-finite change %v or volume %v", s.Symbol, change, volume)
		return failedResult(model.SourceSnapshot)
	}

	// zero change counts as down
	trend := model.TrendDown
	if change > 0 {
		trend = model.TrendUp
	}

	volumeSignal := model.VolumeLow
	volumeNote := fmt.Sprintf("volume=%.0f threshold=%.0f", volume, FixedVolumeThreshold)
	if s.AvgVolume != nil && *s.AvgVolume > 0 {
		if volume > *s.AvgVolume {
			volumeSignal = model.VolumeHigh
		}
		volumeNote = fmt.Sprintf("volume=%.0f avg=%.0f", volume, *s.AvgVolume)
	} else if volume > FixedVolumeThreshold {
		volumeSignal = model.VolumeHigh
	}

	momentum := model.MomentumNeutral
	switch {
	case change > OverboughtChangePct:
		momentum = model.MomentumOverbought
	case change < OversoldChangePct:
		momentum = model.MomentumOversold
	}
	healthy := change >= HealthyChangeLow && change <= HealthyChangeHigh

	trendSignal := model.TrendSignalSell
	if change > 0 && volumeSignal == model.VolumeHigh {
		trendSignal = model.TrendSignalBuy
	}

	calm := math.Abs(change) < CalmChangePct

	factors := []model.Factor{
		award("trend", WeightTrend, trend == model.TrendUp, fmt.Sprintf("change=%+.2f%%", change)),
		award("momentum", WeightMomentum, healthy, fmt.Sprintf("change=%+.2f%% in [%.0f, %.0f]", change, HealthyChangeLow, HealthyChangeHigh)),
		award("trend_signal", WeightTrendSignal, trendSignal == model.TrendSignalBuy, "rising on high volume"),
		award("volume", WeightVolume, volumeSignal == model.VolumeHigh, volumeNote),
		award("volatility", WeightVolatility, calm, fmt.Sprintf("|change|=%.2f%%", math.Abs(change))),
	}
	score := sumPoints(factors)

	return model.ScoreResult{
		Status:         model.StatusOK,
		Source:         model.SourceSnapshot,
		Score:          score,
		Recommendation: MapRecommendation(score),
		Trend:          trend,
		MomentumSignal: momentum,
		TrendSignal:    trendSignal,
		VolumeSignal:   volumeSignal,
		VolatilityLow:  calm,
		Factors:        factors,
	}
}

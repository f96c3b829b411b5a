package strategy

import "StockAdvisor/internal/model"

// SentinelScore is the neutral score carried by no-opinion results.
const SentinelScore = 50

func insufficientResult(source model.ScoreSource) model.ScoreResult {
	r := model.ScoreResult{
		Status:         model.StatusInsufficient,
		Source:         source,
		Score:          SentinelScore,
		Recommendation: model.RecommendInsufficient,
		Trend:          model.TrendInsufficient,
		MomentumSignal: model.MomentumInsufficient,
		TrendSignal:    model.TrendSignalInsufficient,
		VolumeSignal:   model.VolumeInsufficient,
	}
	if source == model.SourceDetailed {
		r.ChannelSignal = model.ChannelInsufficient
	}
	return r
}

// missingFieldResult is returned when a snapshot lacks a required quote field.
func missingFieldResult() model.ScoreResult {
	return model.ScoreResult{
		Status:         model.StatusInsufficient,
		Source:         model.SourceSnapshot,
		Score:          SentinelScore,
		Recommendation: model.RecommendInsufficient,
		Trend:          model.TrendUnknown,
		MomentumSignal: model.MomentumUnknown,
		TrendSignal:    model.TrendSignalUnknown,
		VolumeSignal:   model.VolumeUnknown,
	}
}

func failedResult(source model.ScoreSource) model.ScoreResult {
	r := model.ScoreResult{
		Status:         model.StatusFailed,
		Source:         source,
		Score:          SentinelScore,
		Recommendation: model.RecommendInsufficient,
		Trend:          model.TrendFailed,
		MomentumSignal: model.MomentumUnknown,
		TrendSignal:    model.TrendSignalUnknown,
		VolumeSignal:   model.VolumeUnknown,
	}
	if source == model.SourceDetailed {
		r.ChannelSignal = model.ChannelUnknown
	}
	return r
}

// award returns a factor worth its full weight when hit, zero otherwise.
func award(name string, weight int, hit bool, commentary string) model.Factor {
	f := model.Factor{Name: name, Weight: weight, Commentary: commentary}
	if hit {
		f.Points = weight
	}
	return f
}

func sumPoints(factors []model.Factor) int {
	total := 0
	for _, f := range factors {
		total += f.Points
	}
	return total
}

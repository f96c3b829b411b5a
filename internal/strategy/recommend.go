package strategy

import "StockAdvisor/internal/model"

// Tiers maps score bands to recommendations, highest band first.
var Tiers = []struct {
	MinScore int
	Tier     model.Recommendation
}{
	{80, model.RecommendStrongBuy},
	{60, model.RecommendBuy},
	{40, model.RecommendHold},
	{20, model.RecommendReduce},
}

// DefaultTier is the tier for scores below 20.
const DefaultTier = model.RecommendSell

// MapRecommendation maps a 0~100 score to its recommendation tier.
func MapRecommendation(score int) model.Recommendation {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

package strategy

import "StockAdvisor/internal/model"

// Evaluate scores one symbol. The detailed path is used when bars hold at
// least MinHistoryBars sessions; otherwise the snapshot is scored. A nil
// snapshot with short history yields the insufficient-data sentinel.
func Evaluate(bars []model.OHLCV, snap *model.Snapshot) model.ScoreResult {
	if len(bars) >= MinHistoryBars {
		return ScoreSeries(bars)
	}
	if snap == nil {
		return insufficientResult(model.SourceDetailed)
	}
	return ScoreSnapshot(*snap)
}

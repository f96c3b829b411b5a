package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockAdvisor/internal/model"
	"StockAdvisor/internal/recorder"
)

var recommendationLabels = map[model.Recommendation]string{
	model.RecommendStrongBuy:    "强烈买入",
	model.RecommendBuy:          "买入",
	model.RecommendHold:         "持有",
	model.RecommendReduce:       "减持",
	model.RecommendSell:         "卖出",
	model.RecommendInsufficient: "数据不足",
}

var recommendationIcons = map[model.Recommendation]string{
	model.RecommendStrongBuy: "🟢",
	model.RecommendBuy:       "🟢",
	model.RecommendHold:      "🟡",
	model.RecommendReduce:    "🟠",
	model.RecommendSell:      "🔴",
}

// RecommendationLabel returns the display label for r.
func RecommendationLabel(r model.Recommendation) string {
	if l, ok := recommendationLabels[r]; ok {
		return l
	}
	return string(r)
}

func icon(res model.ScoreResult) string {
	if res.Insufficient() {
		return "⚪"
	}
	if i, ok := recommendationIcons[res.Recommendation]; ok {
		return i
	}
	return "⚪"
}

func sourceLabel(s model.ScoreSource) string {
	if s == model.SourceSnapshot {
		return "快照估算"
	}
	return "日线分析"
}

// ScoreLine is one symbol's entry in a watchlist summary.
type ScoreLine struct {
	Symbol string
	Name   string
	Price  float64
	Result model.ScoreResult
	Err    error
}

// FormatScoreReport formats a single symbol's score with its factor breakdown.
func FormatScoreReport(line ScoreLine, at time.Time) string {
	var b strings.Builder
	res := line.Result

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s\n\n", html.EscapeString(line.Symbol), html.EscapeString(line.Name), at.Format("2006-01-02 15:04")))
	if line.Err != nil {
		b.WriteString(fmt.Sprintf("⚠️ 行情获取失败: %s\n", html.EscapeString(line.Err.Error())))
	}
	if res.Insufficient() {
		b.WriteString(fmt.Sprintf("%s 暂无评分 (%s)\n", icon(res), res.Status))
		b.WriteString("数据不足时的 50 分不代表持有建议。\n")
		return b.String()
	}

	if line.Price > 0 {
		b.WriteString(fmt.Sprintf("当前价格: %.2f\n", line.Price))
	}
	b.WriteString(fmt.Sprintf("%s 综合评分: <b>%d</b> → %s\n", icon(res), res.Score, RecommendationLabel(res.Recommendation)))
	b.WriteString(fmt.Sprintf("评分方式: %s\n\n", sourceLabel(res.Source)))

	b.WriteString("📈 <b>因子明细:</b>\n")
	for _, f := range res.Factors {
		mark := "✗"
		if f.Points > 0 {
			mark = "✓"
		}
		b.WriteString(fmt.Sprintf("  %s %s %d/%d  %s\n", mark, f.Name, f.Points, f.Weight, html.EscapeString(f.Commentary)))
	}
	b.WriteString("\n")

	if res.Source == model.SourceDetailed {
		b.WriteString(fmt.Sprintf("RSI: %.1f | 波动率: %.1f%%\n", res.RSI, res.Volatility))
		b.WriteString(fmt.Sprintf("通道位置: %.0f%% (%s)\n", res.ChannelPosition, res.ChannelSignal))
	}
	b.WriteString(fmt.Sprintf("趋势: %s | 动量: %s | 量能: %s\n", res.Trend, res.MomentumSignal, res.VolumeSignal))
	return b.String()
}

// FormatWatchlistSummary formats one line per watchlist symbol.
func FormatWatchlistSummary(lines []ScoreLine, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>自选股评分</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	if len(lines) == 0 {
		b.WriteString("自选股列表为空。\n")
		return b.String()
	}
	for _, l := range lines {
		name := html.EscapeString(l.Name)
		switch {
		case l.Err != nil:
			b.WriteString(fmt.Sprintf("⚠️ %s %s: 获取失败\n", l.Symbol, name))
		case l.Result.Insufficient():
			b.WriteString(fmt.Sprintf("%s %s %s: 数据不足\n", icon(l.Result), l.Symbol, name))
		default:
			b.WriteString(fmt.Sprintf("%s %s %s: %d %s (%s)\n",
				icon(l.Result), l.Symbol, name, l.Result.Score,
				RecommendationLabel(l.Result.Recommendation), sourceLabel(l.Result.Source)))
		}
	}
	return b.String()
}

// FormatHistory formats recorded scores, newest first.
func FormatHistory(symbol string, records []recorder.ScoreRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕘 <b>%s 评分历史</b>\n\n", html.EscapeString(symbol)))
	if len(records) == 0 {
		b.WriteString("暂无记录。\n")
		return b.String()
	}
	for _, r := range records {
		ts := r.Timestamp.Format("01-02 15:04")
		if r.Result.Insufficient() {
			b.WriteString(fmt.Sprintf("%s  --  %s\n", ts, RecommendationLabel(model.RecommendInsufficient)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s  %3d  %s (%s)\n", ts, r.Result.Score,
			RecommendationLabel(r.Result.Recommendation), sourceLabel(r.Result.Source)))
	}
	return b.String()
}

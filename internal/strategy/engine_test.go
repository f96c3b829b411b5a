package strategy

import (
	"math"
	"testing"
	"time"

	"StockAdvisor/internal/model"
)

func barsFromCloses(closes []float64, volume float64) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volume,
		}
	}
	return bars
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// testFrame builds a 25-bar frame whose latest bar passes every rule except
// volume (flat volume gives equal 5- and 20-bar averages).
func testFrame() *model.IndicatorFrame {
	const n = 25
	bars := barsFromCloses(filled(n, 10), 1000)
	return &model.IndicatorFrame{
		Bars:       bars,
		RSI:        filled(n, 50),
		EMAFast:    filled(n, 10.2),
		EMASlow:    filled(n, 10),
		MACD:       filled(n, 0.2),
		Signal:     filled(n, 0.1),
		MA5:        filled(n, 11),
		MA10:       filled(n, 10.5),
		MA20:       filled(n, 10),
		MA60:       filled(n, math.NaN()),
		Volatility: filled(n, 20),
		BandUpper:  filled(n, 12),
		BandMiddle: filled(n, 10),
		BandLower:  filled(n, 8),
		Strength:   filled(n, math.NaN()),
	}
}

func setLatest(col []float64, v float64) { col[len(col)-1] = v }

func raiseRecentVolume(f *model.IndicatorFrame) {
	for i := f.Len() - RecentVolumeBars; i < f.Len(); i++ {
		f.Bars[i].Volume = 2000
	}
}

func TestAnalyzeFrame_AllRulesHit(t *testing.T) {
	f := testFrame()
	raiseRecentVolume(f)
	res := AnalyzeFrame(f)

	if res.Status != model.StatusOK || res.Source != model.SourceDetailed {
		t.Fatalf("unexpected status/source: %s/%s", res.Status, res.Source)
	}
	if res.Score != 100 {
		t.Errorf("expected score 100, got %d (%+v)", res.Score, res.Factors)
	}
	if res.Recommendation != model.RecommendStrongBuy {
		t.Errorf("expected strong buy, got %q", res.Recommendation)
	}
	if res.Trend != model.TrendUp || res.TrendSignal != model.TrendSignalBuy || res.VolumeSignal != model.VolumeHigh {
		t.Errorf("unexpected signals: %+v", res)
	}
	if res.ChannelSignal != model.ChannelNeutral || res.ChannelPosition != 50 {
		t.Errorf("expected neutral channel at 50, got %q at %.2f", res.ChannelSignal, res.ChannelPosition)
	}
	if res.RecentVolume != 2000 || res.LongVolume != 1250 {
		t.Errorf("unexpected volume averages: recent=%v long=%v", res.RecentVolume, res.LongVolume)
	}
	if len(res.Factors) != 5 {
		t.Fatalf("expected 5 factors, got %d", len(res.Factors))
	}
}

func TestAnalyzeFrame_SingleRuleMisses(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *model.IndicatorFrame)
		want   int
	}{
		{"trend down", func(f *model.IndicatorFrame) { setLatest(f.MA5, 9) }, 70},
		{"MA5 equal MA20", func(f *model.IndicatorFrame) { setLatest(f.MA5, 10) }, 70},
		{"rsi overbought", func(f *model.IndicatorFrame) { setLatest(f.RSI, 75) }, 80},
		{"rsi at 70", func(f *model.IndicatorFrame) { setLatest(f.RSI, 70) }, 80},
		{"rsi at 30", func(f *model.IndicatorFrame) { setLatest(f.RSI, 30) }, 80},
		{"macd below signal", func(f *model.IndicatorFrame) { setLatest(f.MACD, 0.05) }, 80},
		{"volume flat", func(f *model.IndicatorFrame) {
			for i := range f.Bars {
				f.Bars[i].Volume = 1000
			}
		}, 85},
		{"volatility at 30", func(f *model.IndicatorFrame) { setLatest(f.Volatility, 30) }, 85},
		{"volatility undefined", func(f *model.IndicatorFrame) { setLatest(f.Volatility, math.NaN()) }, 85},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFrame()
			raiseRecentVolume(f)
			tt.mutate(f)
			res := AnalyzeFrame(f)
			if res.Score != tt.want {
				t.Errorf("expected score %d, got %d (%+v)", tt.want, res.Score, res.Factors)
			}
			if res.Recommendation != MapRecommendation(tt.want) {
				t.Errorf("recommendation %q does not match score %d", res.Recommendation, res.Score)
			}
		})
	}
}

func TestAnalyzeFrame_MomentumLabels(t *testing.T) {
	tests := []struct {
		rsi  float64
		want model.MomentumSignal
	}{
		{85, model.MomentumOverbought},
		{70.01, model.MomentumOverbought},
		{70, model.MomentumNeutral},
		{50, model.MomentumNeutral},
		{30, model.MomentumNeutral},
		{29.99, model.MomentumOversold},
		{10, model.MomentumOversold},
	}
	for _, tt := range tests {
		f := testFrame()
		setLatest(f.RSI, tt.rsi)
		res := AnalyzeFrame(f)
		if res.MomentumSignal != tt.want {
			t.Errorf("rsi %.2f: expected %q, got %q", tt.rsi, tt.want, res.MomentumSignal)
		}
		if res.RSI != tt.rsi {
			t.Errorf("rsi %.2f: raw value reported as %.2f", tt.rsi, res.RSI)
		}
	}
}

func TestAnalyzeFrame_ChannelZones(t *testing.T) {
	tests := []struct {
		close float64
		want  model.ChannelSignal
	}{
		{11.8, model.ChannelOverboughtZone},
		{11.2, model.ChannelNeutral},
		{8.4, model.ChannelOversoldZone},
		{7.0, model.ChannelOversoldZone},
	}
	for _, tt := range tests {
		f := testFrame()
		f.Bars[f.Len()-1].Close = tt.close
		res := AnalyzeFrame(f)
		if res.ChannelSignal != tt.want {
			t.Errorf("close %.2f: expected %q, got %q (position %.1f)", tt.close, tt.want, res.ChannelSignal, res.ChannelPosition)
		}
	}
}

func TestAnalyzeFrame_UndefinedVolatilityIsReportedAsZero(t *testing.T) {
	f := testFrame()
	setLatest(f.Volatility, math.NaN())
	res := AnalyzeFrame(f)
	if res.Volatility != 0 || res.VolatilityLow {
		t.Errorf("expected volatility 0 and not low, got %v/%v", res.Volatility, res.VolatilityLow)
	}
}

func TestScoreSeries_InsufficientHistory(t *testing.T) {
	for _, n := range []int{0, 1, 5, 19} {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 10 + float64(i)
		}
		res := ScoreSeries(barsFromCloses(closes, 1e6))
		if res.Score != SentinelScore || res.Recommendation != model.RecommendInsufficient {
			t.Errorf("%d bars: expected sentinel, got %d/%q", n, res.Score, res.Recommendation)
		}
		if res.Trend != model.TrendInsufficient || res.Status != model.StatusInsufficient || !res.Insufficient() {
			t.Errorf("%d bars: expected insufficient labels, got %+v", n, res)
		}
	}
}

func TestAnalyzeFrame_MalformedFrame(t *testing.T) {
	short := testFrame()
	short.RSI = short.RSI[:10]

	missing := testFrame()
	missing.Strength = nil

	nan := testFrame()
	setLatest(nan.MA20, math.NaN())

	unordered := testFrame()
	unordered.Bars[3].Time = unordered.Bars[2].Time

	frames := map[string]*model.IndicatorFrame{
		"short column":   short,
		"nil column":     missing,
		"NaN MA20":       nan,
		"duplicate date": unordered,
	}
	for name, f := range frames {
		res := AnalyzeFrame(f)
		if res.Status != model.StatusFailed || res.Trend != model.TrendFailed {
			t.Errorf("%s: expected failed sentinel, got %s/%s", name, res.Status, res.Trend)
		}
		if res.Score != SentinelScore || res.Recommendation != model.RecommendInsufficient {
			t.Errorf("%s: expected score 50 and insufficient data, got %d/%q", name, res.Score, res.Recommendation)
		}
	}

	if res := AnalyzeFrame(nil); res.Status != model.StatusInsufficient {
		t.Errorf("nil frame: expected insufficient, got %s", res.Status)
	}
}

func TestScoreSeries_RisingSeries(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	res := ScoreSeries(barsFromCloses(closes, 1000))

	if res.Trend != model.TrendUp {
		t.Errorf("expected up trend, got %q", res.Trend)
	}
	if res.TrendSignal != model.TrendSignalBuy {
		t.Errorf("expected buy trend signal, got %q", res.TrendSignal)
	}
	// no losses in the window: RSI saturates, so the momentum rule scores nothing
	if res.MomentumSignal != model.MomentumOverbought || res.RSI != 100 {
		t.Errorf("expected overbought at RSI 100, got %q at %.2f", res.MomentumSignal, res.RSI)
	}
	if res.Score != 65 || res.Recommendation != model.RecommendBuy {
		t.Errorf("expected 65/buy, got %d/%q (%+v)", res.Score, res.Recommendation, res.Factors)
	}
}

func TestScoreSeries_ScoreInvariants(t *testing.T) {
	seed := uint32(7)
	next := func() float64 {
		seed = seed*1664525 + 1013904223
		return float64(seed%1000)/1000 - 0.5
	}
	for run := 0; run < 50; run++ {
		n := 20 + run*3
		bars := make([]model.OHLCV, n)
		price := 20.0
		start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
		for i := range bars {
			price *= 1 + next()*0.08
			bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: price, Volume: 1e5 * (1.5 + next())}
		}
		res := ScoreSeries(bars)
		if res.Score < 0 || res.Score > 100 || res.Score%5 != 0 {
			t.Fatalf("run %d: score %d out of contract", run, res.Score)
		}
		if res.Recommendation != MapRecommendation(res.Score) {
			t.Fatalf("run %d: recommendation %q does not match score %d", run, res.Recommendation, res.Score)
		}
		total := 0
		for _, f := range res.Factors {
			if f.Points != 0 && f.Points != f.Weight {
				t.Fatalf("run %d: factor %s awarded partial credit %d/%d", run, f.Name, f.Points, f.Weight)
			}
			total += f.Points
		}
		if total != res.Score {
			t.Fatalf("run %d: factors sum to %d, score is %d", run, total, res.Score)
		}
	}
}

func TestMapRecommendation_AllBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  model.Recommendation
	}{
		{100, model.RecommendStrongBuy},
		{80, model.RecommendStrongBuy},
		{79, model.RecommendBuy},
		{60, model.RecommendBuy},
		{59, model.RecommendHold},
		{40, model.RecommendHold},
		{39, model.RecommendReduce},
		{20, model.RecommendReduce},
		{19, model.RecommendSell},
		{0, model.RecommendSell},
	}
	for _, tt := range tests {
		if got := MapRecommendation(tt.score); got != tt.want {
			t.Errorf("score %d: expected %q, got %q", tt.score, tt.want, got)
		}
	}
}

func TestMapRecommendation_Monotonic(t *testing.T) {
	prev := MapRecommendation(0).Rank()
	for s := 1; s <= 100; s++ {
		rank := MapRecommendation(s).Rank()
		if rank < 0 {
			t.Fatalf("score %d mapped outside the five tiers", s)
		}
		if rank < prev {
			t.Fatalf("score %d: rank dropped from %d to %d", s, prev, rank)
		}
		prev = rank
	}
}

func TestEvaluate_PathSelection(t *testing.T) {
	snap := &model.Snapshot{
		Symbol:       "600000",
		CurrentPrice: model.Float(10),
		ChangePct:    model.Float(1),
		Volume:       model.Float(600000),
		Turnover:     model.Float(2),
	}
	long := make([]float64, 25)
	for i := range long {
		long[i] = 10 + 0.1*float64(i)
	}

	if res := Evaluate(barsFromCloses(long, 1000), snap); res.Source != model.SourceDetailed {
		t.Errorf("expected detailed path with 25 bars, got %s", res.Source)
	}
	if res := Evaluate(barsFromCloses(long[:10], 1000), snap); res.Source != model.SourceSnapshot || res.Status != model.StatusOK {
		t.Errorf("expected snapshot fallback with 10 bars, got %s/%s", res.Source, res.Status)
	}
	if res := Evaluate(barsFromCloses(long[:10], 1000), nil); res.Status != model.StatusInsufficient {
		t.Errorf("expected insufficient without snapshot, got %s", res.Status)
	}
}

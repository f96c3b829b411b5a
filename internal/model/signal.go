package model

// ScoreStatus tags whether a ScoreResult carries a real opinion.
type ScoreStatus string

const (
	StatusOK           ScoreStatus = "ok"
	StatusInsufficient ScoreStatus = "insufficient"
	StatusFailed       ScoreStatus = "failed"
)

// ScoreSource indicates which scoring path produced the result.
type ScoreSource string

const (
	SourceDetailed ScoreSource = "detailed"
	SourceSnapshot ScoreSource = "snapshot"
)

// Recommendation is one of five ordered tiers, or the no-opinion label.
type Recommendation string

const (
	RecommendStrongBuy    Recommendation = "strong buy"
	RecommendBuy          Recommendation = "buy"
	RecommendHold         Recommendation = "hold"
	RecommendReduce       Recommendation = "reduce"
	RecommendSell         Recommendation = "sell"
	RecommendInsufficient Recommendation = "insufficient data"
)

// Rank orders tiers from sell (0) to strong buy (4); the no-opinion label is -1.
func (r Recommendation) Rank() int {
	switch r {
	case RecommendSell:
		return 0
	case RecommendReduce:
		return 1
	case RecommendHold:
		return 2
	case RecommendBuy:
		return 3
	case RecommendStrongBuy:
		return 4
	default:
		return -1
	}
}

type Trend string

const (
	TrendUp           Trend = "up"
	TrendDown         Trend = "down"
	TrendInsufficient Trend = "insufficient"
	TrendFailed       Trend = "failed"
	TrendUnknown      Trend = "unknown"
)

type MomentumSignal string

const (
	MomentumOverbought   MomentumSignal = "overbought"
	MomentumOversold     MomentumSignal = "oversold"
	MomentumNeutral      MomentumSignal = "neutral"
	MomentumInsufficient MomentumSignal = "insufficient"
	MomentumUnknown      MomentumSignal = "unknown"
)

type TrendSignal string

const (
	TrendSignalBuy          TrendSignal = "buy"
	TrendSignalSell         TrendSignal = "sell"
	TrendSignalInsufficient TrendSignal = "insufficient"
	TrendSignalUnknown      TrendSignal = "unknown"
)

type VolumeSignal string

const (
	VolumeHigh         VolumeSignal = "high"
	VolumeLow          VolumeSignal = "low"
	VolumeInsufficient VolumeSignal = "insufficient"
	VolumeUnknown      VolumeSignal = "unknown"
)

type ChannelSignal string

const (
	ChannelOversoldZone   ChannelSignal = "oversold zone"
	ChannelOverboughtZone ChannelSignal = "overbought zone"
	ChannelNeutral        ChannelSignal = "neutral"
	ChannelInsufficient   ChannelSignal = "insufficient"
	ChannelUnknown        ChannelSignal = "unknown"
)

// Factor is one binary contribution to the total score.
type Factor struct {
	Name       string `json:"name"`
	Weight     int    `json:"weight"`
	Points     int    `json:"points"` // either 0 or Weight
	Commentary string `json:"commentary"`
}

// ScoreResult is the output of both scoring paths. Raw numeric fields are
// always finite so the value can be serialised as JSON.
type ScoreResult struct {
	Status         ScoreStatus    `json:"status"`
	Source         ScoreSource    `json:"source"`
	Score          int            `json:"score"`
	Recommendation Recommendation `json:"recommendation"`
	Trend          Trend          `json:"trend"`
	MomentumSignal MomentumSignal `json:"momentum_signal"`
	TrendSignal    TrendSignal    `json:"trend_signal"`
	VolumeSignal   VolumeSignal   `json:"volume_signal"`
	Volatility     float64        `json:"volatility"`
	VolatilityLow  bool           `json:"volatility_low"`
	ChannelSignal  ChannelSignal  `json:"channel_signal,omitempty"`

	RSI             float64 `json:"rsi"`
	ChannelPosition float64 `json:"bband_position"`
	RecentVolume    float64 `json:"recent_vol,omitempty"`
	LongVolume      float64 `json:"long_vol_avg,omitempty"`

	Factors []Factor `json:"factors,omitempty"`
}

// Insufficient reports whether r is a no-opinion sentinel. Callers must not
// read its score of 50 as a hold signal.
func (r ScoreResult) Insufficient() bool {
	return r.Status != StatusOK
}

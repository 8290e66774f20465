package scoring

// Hegemony score methodology constants.
//
// 4 dimensions, 100 points total:
//   - Scale (35): market cap share + volume ratio
//   - Growth (30): revenue growth + earnings growth
//   - Profitability (20): operating margin + ROE
//   - Sentiment (15): analyst recommendation + target upside
//
// These values are shared with every consumer of the persisted scores
// and must not be changed independently.

const (
	// EMAAlpha is the smoothing factor applied between a run's raw
	// total and the previously persisted smoothed score.
	EMAAlpha = 0.3

	// HistoryRetentionDays bounds the persisted score history. Rows
	// dated strictly before today minus this window are deleted after
	// every run; a row dated exactly at the cutoff is retained.
	HistoryRetentionDays = 90
)

// Scale dimension (35 points)
const (
	MarketCapShareMax = 20.0
	// Market cap share at or above this fraction of the sector total
	// earns the full sub-score; linear below.
	MarketCapShareFull = 0.5

	VolumeRatioMax = 15.0
	// Volume divided by trailing average volume is capped here before
	// rescaling.
	VolumeRatioCap = 3.0
)

// Growth dimension (30 points)
const (
	RevenueGrowthMax  = 15.0
	RevenueGrowthLo   = -0.5
	RevenueGrowthHi   = 1.0
	EarningsGrowthMax = 15.0
	EarningsGrowthLo  = -1.0
	EarningsGrowthHi  = 2.0
)

// Profitability dimension (20 points)
const (
	OperatingMarginMax = 10.0
	OperatingMarginLo  = -0.2
	OperatingMarginHi  = 0.5
	ReturnOnEquityMax  = 10.0
	ReturnOnEquityLo   = -0.2
	ReturnOnEquityHi   = 0.6
)

// Sentiment dimension (15 points)
const (
	RecommendationMax = 8.0
	TargetUpsideMax   = 7.0
	TargetUpsideLo    = -0.3
	TargetUpsideHi    = 0.6
)

// recommendationScores maps analyst recommendation keys to points.
// Unknown or absent keys score as "none".
var recommendationScores = map[string]float64{
	"strong_buy":   8,
	"buy":          6,
	"hold":         4,
	"underperform": 2,
	"sell":         1,
	"none":         4,
}

// fundamentalFieldCount is the size of the fixed field checklist used
// by the data quality estimator: revenue growth, earnings growth,
// operating margin, return on equity, recommendation key, analyst
// count, target mean price.
const fundamentalFieldCount = 7

package contracts

import "time"

// Sector is a curated group of companies competing in one technology
// market. Created and edited by operator tooling; the scoring engine
// only reads it.
type Sector struct {
	ID          string
	CategoryID  *string
	Name        string
	NameEn      *string
	Order       int
	Description *string
}

// Company is a tracked public company keyed by ticker
type Company struct {
	Ticker  string
	Name    string
	NameKo  *string
	LogoURL *string
}

// SectorCompany is a sector membership with its current rank.
// Rank is dense and unique within a sector; only the ranking engine
// mutates it after creation.
type SectorCompany struct {
	SectorID string
	Ticker   string
	Rank     int
	Notes    *string
}

// Snapshot is one day's market data for a ticker. Any field except
// ticker and date may be absent.
type Snapshot struct {
	Ticker      string
	Date        time.Time
	MarketCap   *int64
	Price       *float64
	PriceChange *float64
	Week52High  *float64
	Week52Low   *float64
	DayHigh     *float64
	DayLow      *float64
	Volume      *int64
	AvgVolume   *int64
	PERatio     *float64
	PEGRatio    *float64
}

// Fundamentals holds the externally ingested metric inputs for one
// ticker. All fields are optional; missing values degrade data quality
// but never abort scoring.
type Fundamentals struct {
	RevenueGrowth     *float64
	EarningsGrowth    *float64
	OperatingMargin   *float64
	ReturnOnEquity    *float64
	RecommendationKey *string
	AnalystCount      *int
	TargetMeanPrice   *float64
	FreeCashflow      *int64
	Beta              *float64
	DebtToEquity      *float64
}

// CompanyRow is the joined input record for scoring one company in one
// sector context: membership x as-of snapshot x current fundamentals.
// Produced by an outer join, so every field except Ticker may be nil.
type CompanyRow struct {
	Ticker    string
	MarketCap *int64
	Price     *float64
	Volume    *int64
	AvgVolume *int64
	Fundamentals
}

// ScoreSet is one scoring evaluation for a ticker
type ScoreSet struct {
	Scale         float64
	Growth        float64
	Profitability float64
	Sentiment     float64
	RawTotal      float64
	DataQuality   float64
}

// CompanyScore is the persisted current score record for a ticker
type CompanyScore struct {
	Ticker    string
	Scores    ScoreSet
	Smoothed  float64
	UpdatedAt *time.Time
}

// HistoryPoint is one per-(ticker,date) score history row
type HistoryPoint struct {
	Ticker        string
	Date          time.Time
	RawTotal      float64
	Smoothed      float64
	Scale         float64
	Growth        float64
	Profitability float64
	Sentiment     float64
}

// Standing is a company's position inside one sector ranking:
// current stored rank plus the ordering inputs.
type Standing struct {
	Ticker    string
	OldRank   int
	Score     float64 // smoothed score, 0 when absent
	MarketCap int64   // latest market cap, 0 when absent
}

// RankedCompany is a company with its newly assigned rank
type RankedCompany struct {
	Ticker  string
	Rank    int
	OldRank int
	Score   float64
}

// RunResult summarizes one scoring and ranking run
type RunResult struct {
	AsOf          time.Time     `json:"as_of"`
	Scored        int           `json:"scored"`
	SectorsRanked int           `json:"sectors_ranked"`
	HistoryPruned int64         `json:"history_pruned"`
	Duration      time.Duration `json:"duration"`
	Skipped       bool          `json:"skipped"`
}

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/hegemony/internal/contracts"
)

func TestScaleScore_DominantCompany(t *testing.T) {
	// 50%+ share earns the full market cap sub-score
	mc, vol := ScaleScore(i64(600), i64(100), i64(100), 1000)
	assert.Equal(t, 20.0, mc)
	// volume == avg volume -> ratio 1 of cap 3
	assert.InDelta(t, 5.0, vol, 1e-9)
}

func TestScaleScore_LinearBelowDominance(t *testing.T) {
	// 25% share is half of the 50% dominance threshold
	mc, _ := ScaleScore(i64(250), nil, nil, 1000)
	assert.InDelta(t, 10.0, mc, 1e-9)
}

func TestScaleScore_MissingFallbacks(t *testing.T) {
	// Missing market cap -> half credit
	mc, vol := ScaleScore(nil, nil, nil, 1000)
	assert.Equal(t, 10.0, mc)
	assert.Equal(t, 7.5, vol)

	// Zero sector total -> half credit even with a cap
	mc, _ = ScaleScore(i64(500), nil, nil, 0)
	assert.Equal(t, 10.0, mc)

	// Zero average volume must not divide
	_, vol = ScaleScore(i64(500), i64(100), i64(0), 1000)
	assert.Equal(t, 7.5, vol)
}

func TestScaleScore_VolumeRatioCapped(t *testing.T) {
	// 10x average volume caps at 3x -> full sub-score
	_, vol := ScaleScore(nil, i64(1000), i64(100), 0)
	assert.Equal(t, 15.0, vol)
}

func TestGrowthScore(t *testing.T) {
	rev, earn := GrowthScore(f64(1.0), f64(2.0))
	assert.Equal(t, 15.0, rev)
	assert.Equal(t, 15.0, earn)

	rev, earn = GrowthScore(nil, nil)
	assert.Equal(t, 7.5, rev)
	assert.Equal(t, 7.5, earn)

	rev, _ = GrowthScore(f64(-0.5), nil)
	assert.Equal(t, 0.0, rev)
}

func TestProfitabilityScore(t *testing.T) {
	om, roe := ProfitabilityScore(f64(0.5), f64(0.6))
	assert.Equal(t, 10.0, om)
	assert.Equal(t, 10.0, roe)

	om, roe = ProfitabilityScore(nil, nil)
	assert.Equal(t, 5.0, om)
	assert.Equal(t, 5.0, roe)
}

func TestSentimentScore_RecommendationTable(t *testing.T) {
	tests := []struct {
		key  *string
		want float64
	}{
		{str("strong_buy"), 8},
		{str("buy"), 6},
		{str("hold"), 4},
		{str("underperform"), 2},
		{str("sell"), 1},
		{str("none"), 4},
		{str("STRONG_BUY"), 8}, // case-insensitive
		{str("outperform"), 4}, // unknown key scores as none
		{nil, 4},
		{str(""), 4},
	}

	for _, tt := range tests {
		rec, _ := SentimentScore(tt.key, nil, nil)
		assert.Equal(t, tt.want, rec)
	}
}

func TestSentimentScore_TargetUpside(t *testing.T) {
	// 30% upside in band [-0.3, 0.6] -> 2/3 of the cap
	_, upside := SentimentScore(nil, f64(130), f64(100))
	assert.InDelta(t, 7.0*2.0/3.0, upside, 1e-9)

	// Missing target -> half credit
	_, upside = SentimentScore(nil, nil, f64(100))
	assert.Equal(t, 3.5, upside)

	// Non-positive price must not divide
	_, upside = SentimentScore(nil, f64(130), f64(0))
	assert.Equal(t, 3.5, upside)
}

func TestEvaluate_DimensionBounds(t *testing.T) {
	rows := []contracts.CompanyRow{
		{Ticker: "FULL", MarketCap: i64(900), Price: f64(100), Volume: i64(500), AvgVolume: i64(100),
			Fundamentals: contracts.Fundamentals{
				RevenueGrowth:     f64(2.0),
				EarningsGrowth:    f64(3.0),
				OperatingMargin:   f64(0.9),
				ReturnOnEquity:    f64(0.9),
				RecommendationKey: str("strong_buy"),
				TargetMeanPrice:   f64(200),
			}},
		{Ticker: "EMPTY"},
		{Ticker: "WORST", MarketCap: i64(1), Price: f64(100), Volume: i64(1), AvgVolume: i64(1000000),
			Fundamentals: contracts.Fundamentals{
				RevenueGrowth:     f64(-9),
				EarningsGrowth:    f64(-9),
				OperatingMargin:   f64(-9),
				ReturnOnEquity:    f64(-9),
				RecommendationKey: str("sell"),
				TargetMeanPrice:   f64(1),
			}},
	}

	total := SectorTotalMarketCap(rows)
	assert.Equal(t, int64(901), total)

	for _, row := range rows {
		s := Evaluate(row, total)
		assert.GreaterOrEqual(t, s.Scale, 0.0)
		assert.LessOrEqual(t, s.Scale, 35.0)
		assert.GreaterOrEqual(t, s.Growth, 0.0)
		assert.LessOrEqual(t, s.Growth, 30.0)
		assert.GreaterOrEqual(t, s.Profitability, 0.0)
		assert.LessOrEqual(t, s.Profitability, 20.0)
		assert.GreaterOrEqual(t, s.Sentiment, 0.0)
		assert.LessOrEqual(t, s.Sentiment, 15.0)
		assert.GreaterOrEqual(t, s.RawTotal, 0.0)
		assert.LessOrEqual(t, s.RawTotal, 100.0)
		assert.InDelta(t, s.Scale+s.Growth+s.Profitability+s.Sentiment, s.RawTotal, 1e-9)
	}

	// The maxed-out row earns the full 35/30/20/15 split
	full := Evaluate(rows[0], total)
	assert.Equal(t, 35.0, full.Scale)
	assert.Equal(t, 30.0, full.Growth)
	assert.Equal(t, 20.0, full.Profitability)
	assert.Equal(t, 15.0, full.Sentiment)
	assert.Equal(t, 100.0, full.RawTotal)
}

func TestSectorTotalMarketCap_MissingCountsAsZero(t *testing.T) {
	rows := []contracts.CompanyRow{
		{Ticker: "A", MarketCap: i64(100)},
		{Ticker: "B"}, // unknown cap still counts toward the denominator as zero
		{Ticker: "C", MarketCap: i64(300)},
	}
	assert.Equal(t, int64(400), SectorTotalMarketCap(rows))
}

func TestDataQuality(t *testing.T) {
	// All 7 checklist fields present
	full := contracts.Fundamentals{
		RevenueGrowth:     f64(0.1),
		EarningsGrowth:    f64(0.1),
		OperatingMargin:   f64(0.1),
		ReturnOnEquity:    f64(0.1),
		RecommendationKey: str("buy"),
		AnalystCount:      iptr(30),
		TargetMeanPrice:   f64(100),
	}
	assert.Equal(t, 1.0, DataQuality(full))

	// 4 of 7 present -> 4/7
	partial := contracts.Fundamentals{
		RevenueGrowth:     f64(0.1),
		EarningsGrowth:    f64(0.1),
		OperatingMargin:   f64(0.1),
		RecommendationKey: str("hold"),
		// FreeCashflow, Beta, DebtToEquity are not on the checklist
		FreeCashflow: i64(1000),
		Beta:         f64(1.2),
		DebtToEquity: f64(40),
	}
	assert.InDelta(t, 4.0/7.0, DataQuality(partial), 1e-9)

	assert.Equal(t, 0.0, DataQuality(contracts.Fundamentals{FreeCashflow: i64(5)}))
}

func TestSmooth(t *testing.T) {
	// 0.3*80 + 0.7*50 = 59.0
	assert.InDelta(t, 59.0, Smooth(80, f64(50)), 1e-9)

	// First-ever observation seeds with the raw total exactly
	assert.Equal(t, 62.0, Smooth(62, nil))
}

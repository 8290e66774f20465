package scoring

import "github.com/wonny/hegemony/internal/contracts"

// SectorTotalMarketCap sums the market caps of a sector's members at
// the as-of date. A company with unknown cap counts toward the
// denominator as zero, it is not excluded.
func SectorTotalMarketCap(rows []contracts.CompanyRow) int64 {
	var total int64
	for _, row := range rows {
		if row.MarketCap != nil {
			total += *row.MarketCap
		}
	}
	return total
}

// Evaluate scores one company in one sector context
func Evaluate(row contracts.CompanyRow, sectorTotalMarketCap int64) contracts.ScoreSet {
	mcScore, volScore := ScaleScore(row.MarketCap, row.Volume, row.AvgVolume, sectorTotalMarketCap)
	revScore, earnScore := GrowthScore(row.RevenueGrowth, row.EarningsGrowth)
	omScore, roeScore := ProfitabilityScore(row.OperatingMargin, row.ReturnOnEquity)
	recScore, upsideScore := SentimentScore(row.RecommendationKey, row.TargetMeanPrice, row.Price)

	scale := mcScore + volScore
	growth := revScore + earnScore
	profitability := omScore + roeScore
	sentiment := recScore + upsideScore

	return contracts.ScoreSet{
		Scale:         scale,
		Growth:        growth,
		Profitability: profitability,
		Sentiment:     sentiment,
		RawTotal:      scale + growth + profitability + sentiment,
		DataQuality:   DataQuality(row.Fundamentals),
	}
}

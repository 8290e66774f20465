package scoring

import "github.com/wonny/hegemony/internal/contracts"

// DataQuality returns the fraction of the fixed fundamental field
// checklist present for a ticker, in [0, 1]. This is a coverage
// indicator stored alongside the scores; it does not feed back into
// the raw total.
func DataQuality(f contracts.Fundamentals) float64 {
	available := 0
	if f.RevenueGrowth != nil {
		available++
	}
	if f.EarningsGrowth != nil {
		available++
	}
	if f.OperatingMargin != nil {
		available++
	}
	if f.ReturnOnEquity != nil {
		available++
	}
	if f.RecommendationKey != nil {
		available++
	}
	if f.AnalystCount != nil {
		available++
	}
	if f.TargetMeanPrice != nil {
		available++
	}
	return float64(available) / float64(fundamentalFieldCount)
}

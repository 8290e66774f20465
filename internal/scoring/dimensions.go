package scoring

import "strings"

// ScaleScore calculates the scale dimension (max 35 points).
// Returns (market cap share score, volume ratio score).
//
// A sector-dominant company (50%+ of the sector's total market cap)
// earns the full share sub-score; below that the sub-score is linear
// in share. Volume is judged against the trailing average, capped at
// 3x. Missing or zero inputs fall back to half credit.
func ScaleScore(marketCap *int64, volume, avgVolume *int64, sectorTotalMarketCap int64) (float64, float64) {
	// Market cap share (max 20 points)
	var mcScore float64
	if marketCap != nil && *marketCap > 0 && sectorTotalMarketCap > 0 {
		share := float64(*marketCap) / float64(sectorTotalMarketCap)
		frac := share / MarketCapShareFull
		if frac > 1.0 {
			frac = 1.0
		}
		mcScore = frac * MarketCapShareMax
	} else {
		mcScore = MarketCapShareMax * 0.5
	}

	// Volume ratio (max 15 points)
	var volScore float64
	if volume != nil && *volume > 0 && avgVolume != nil && *avgVolume > 0 {
		ratio := float64(*volume) / float64(*avgVolume)
		if ratio > VolumeRatioCap {
			ratio = VolumeRatioCap
		}
		volScore = (ratio / VolumeRatioCap) * VolumeRatioMax
	} else {
		volScore = VolumeRatioMax * 0.5
	}

	return mcScore, volScore
}

// GrowthScore calculates the growth dimension (max 30 points).
// Returns (revenue growth score, earnings growth score).
func GrowthScore(revenueGrowth, earningsGrowth *float64) (float64, float64) {
	revScore := Normalize(revenueGrowth, RevenueGrowthLo, RevenueGrowthHi, RevenueGrowthMax)
	earnScore := Normalize(earningsGrowth, EarningsGrowthLo, EarningsGrowthHi, EarningsGrowthMax)
	return revScore, earnScore
}

// ProfitabilityScore calculates the profitability dimension (max 20 points).
// Returns (operating margin score, ROE score).
func ProfitabilityScore(operatingMargin, returnOnEquity *float64) (float64, float64) {
	omScore := Normalize(operatingMargin, OperatingMarginLo, OperatingMarginHi, OperatingMarginMax)
	roeScore := Normalize(returnOnEquity, ReturnOnEquityLo, ReturnOnEquityHi, ReturnOnEquityMax)
	return omScore, roeScore
}

// SentimentScore calculates the sentiment dimension (max 15 points).
// Returns (recommendation score, target upside score).
//
// The recommendation sub-score comes from a fixed lookup table; an
// absent or unrecognized key scores as "none". Target upside needs a
// strictly positive current price, otherwise it falls back to half
// credit.
func SentimentScore(recommendationKey *string, targetMeanPrice, currentPrice *float64) (float64, float64) {
	recKey := "none"
	if recommendationKey != nil && *recommendationKey != "" {
		recKey = strings.ToLower(*recommendationKey)
	}
	recScore, ok := recommendationScores[recKey]
	if !ok {
		recScore = recommendationScores["none"]
	}

	var upsideScore float64
	if targetMeanPrice != nil && currentPrice != nil && *currentPrice > 0 {
		upside := (*targetMeanPrice - *currentPrice) / *currentPrice
		upsideScore = Normalize(&upside, TargetUpsideLo, TargetUpsideHi, TargetUpsideMax)
	} else {
		upsideScore = TargetUpsideMax * 0.5
	}

	return recScore, upsideScore
}

package scoring

// Smooth blends a run's raw total with the previously persisted
// smoothed score using an exponential moving average. When no prior
// value exists the raw total seeds the series unchanged, so a brand
// new ticker is not biased toward zero.
func Smooth(rawTotal float64, previous *float64) float64 {
	if previous == nil {
		return rawTotal
	}
	return EMAAlpha*rawTotal + (1-EMAAlpha)*(*previous)
}

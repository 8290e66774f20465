package scoring

// Normalize maps a raw metric value onto [0, maxScore] by clamping it
// to [min, max] and rescaling linearly. A nil value and a degenerate
// band both return the neutral midpoint: missing data is treated as
// average, not worst-case.
func Normalize(value *float64, min, max, maxScore float64) float64 {
	if value == nil {
		return maxScore * 0.5
	}
	if max == min {
		return maxScore * 0.5
	}

	clamped := *value
	if clamped < min {
		clamped = min
	}
	if clamped > max {
		clamped = max
	}

	return ((clamped - min) / (max - min)) * maxScore
}

package calculator

// Percentage bounds applied to every forecast value.
const (
	MinPercent = 0.0
	MaxPercent = 100.0
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent limits v to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, MinPercent, MaxPercent)
}

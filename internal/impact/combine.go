package impact

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Combination is how overlapping event effects are merged.
type Combination string

const (
	Additive       Combination = "additive"
	Multiplicative Combination = "multiplicative"
	Max            Combination = "max"
)

// ParseCombination validates a combination method name.
func ParseCombination(s string) (Combination, error) {
	switch Combination(s) {
	case Additive, Multiplicative, Max:
		return Combination(s), nil
	}
	return "", fmt.Errorf("unknown combination method %q", s)
}

// Combiner merges effect series. Baseline seeds the accumulator; with the
// zero value a multiplicative combination stays at 0 whatever the effects.
type Combiner struct {
	Baseline float64
}

// Combine aligns the series on the union of their dates, treating missing
// points as 0, and folds them with method: sum, running product of (1+e)
// onto Baseline, or elementwise maximum. Unknown methods fall back to
// additive.
func (c Combiner) Combine(effects []EffectSeries, method Combination) EffectSeries {
	if len(effects) == 0 {
		return EffectSeries{}
	}

	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, s := range effects {
		for _, p := range s {
			if _, ok := seen[p.Date]; !ok {
				seen[p.Date] = struct{}{}
				dates = append(dates, p.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	acc := make([]float64, len(dates))
	for i := range acc {
		switch method {
		case Multiplicative:
			acc[i] = c.Baseline
		case Max:
			acc[i] = math.Inf(-1)
		}
	}

	for _, s := range effects {
		aligned := make(map[time.Time]float64, len(s))
		for _, p := range s {
			aligned[p.Date] = p.Value
		}
		for i, d := range dates {
			e := aligned[d]
			switch method {
			case Multiplicative:
				acc[i] *= 1 + e
			case Max:
				acc[i] = math.Max(acc[i], e)
			default:
				acc[i] += e
			}
		}
	}

	out := make(EffectSeries, len(dates))
	for i, d := range dates {
		out[i] = EffectPoint{Date: d, Value: acc[i]}
	}
	return out
}

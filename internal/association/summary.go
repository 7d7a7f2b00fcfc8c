package association

import "math"

// Summary describes a matrix. MaxPositive and MinNegative are the matrix-wide
// maximum and minimum including zero cells, as the report prints them.
type Summary struct {
	TotalEvents           int
	TotalIndicators       int
	TotalImpacts          int
	PositiveImpacts       int
	NegativeImpacts       int
	EventsWithImpacts     int
	IndicatorsWithImpacts int
	MaxPositive           float64
	MinNegative           float64
	MeanAbsMagnitude      float64
}

// Summarize computes counts and extremes. MeanAbsMagnitude averages only the
// non-zero cells and is 0 when there are none. An empty matrix yields the
// zero Summary.
func Summarize(m *Matrix) Summary {
	var s Summary
	if m.Empty() {
		return s
	}
	s.TotalEvents = len(m.Events)
	s.TotalIndicators = len(m.Indicators)
	s.MaxPositive = math.Inf(-1)
	s.MinNegative = math.Inf(1)

	colHit := make([]bool, len(m.Indicators))
	var sumAbs float64
	for _, row := range m.Values {
		rowHit := false
		for j, v := range row {
			s.MaxPositive = math.Max(s.MaxPositive, v)
			s.MinNegative = math.Min(s.MinNegative, v)
			if v == 0 {
				continue
			}
			rowHit = true
			colHit[j] = true
			s.TotalImpacts++
			sumAbs += math.Abs(v)
			if v > 0 {
				s.PositiveImpacts++
			} else {
				s.NegativeImpacts++
			}
		}
		if rowHit {
			s.EventsWithImpacts++
		}
	}
	for _, hit := range colHit {
		if hit {
			s.IndicatorsWithImpacts++
		}
	}
	if s.TotalImpacts > 0 {
		s.MeanAbsMagnitude = sumAbs / float64(s.TotalImpacts)
	}
	return s
}

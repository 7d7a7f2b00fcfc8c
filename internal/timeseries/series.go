// Package timeseries extracts per-year indicator series from the unified dataset.
package timeseries

import (
	"sort"

	"InclusionSentinel/internal/model"
)

// Point is one (year, value) observation.
type Point struct {
	Year  int
	Value float64
}

// Series is a historical series sorted ascending by year with at most one
// point per year.
type Series struct {
	IndicatorCode string
	Pillar        string
	Points        []Point
}

// Len returns the number of points.
func (s *Series) Len() int {
	return len(s.Points)
}

// Empty reports whether the series has no points.
func (s *Series) Empty() bool {
	return len(s.Points) == 0
}

// Years returns the years as float64, ready for regression.
func (s *Series) Years() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = float64(p.Year)
	}
	return out
}

// Values returns the observed values.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// New builds a series from points, sorting by year. Duplicate years are not
// collapsed; use Extract for raw records.
func New(points []Point) *Series {
	ps := make([]Point, len(points))
	copy(ps, points)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Year < ps[j].Year })
	return &Series{Points: ps}
}

// Extract pulls the historical series for one indicator and pillar.
// Within a year the last valued record in collection order wins. Records
// with an unparseable date or no value are ignored, so a year without any
// value does not appear.
func Extract(records []model.Record, indicatorCode, pillar string) *Series {
	byYear := make(map[int]float64)
	for _, r := range records {
		if r.RecordType != model.RecordObservation || r.Pillar != pillar || r.IndicatorCode != indicatorCode {
			continue
		}
		if r.ValueNumeric == nil {
			continue
		}
		d, ok := r.Date()
		if !ok {
			continue
		}
		byYear[d.Year()] = *r.ValueNumeric
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	s := &Series{IndicatorCode: indicatorCode, Pillar: pillar}
	for _, y := range years {
		s.Points = append(s.Points, Point{Year: y, Value: byYear[y]})
	}
	return s
}

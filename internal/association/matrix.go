// Package association builds the event × indicator matrix of signed impact
// magnitudes.
package association

import (
	"math"

	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/model"
)

// Matrix holds one row per event and one column per indicator.
// A zero cell means no recorded effect.
type Matrix struct {
	Events     []string
	Indicators []string
	Values     [][]float64

	rowIndex map[string]int
	colIndex map[string]int
}

func newMatrix(events, indicators []string) *Matrix {
	m := &Matrix{
		Events:     events,
		Indicators: indicators,
		Values:     make([][]float64, len(events)),
		rowIndex:   make(map[string]int, len(events)),
		colIndex:   make(map[string]int, len(indicators)),
	}
	for i, e := range events {
		m.rowIndex[e] = i
		m.Values[i] = make([]float64, len(indicators))
	}
	for j, c := range indicators {
		m.colIndex[c] = j
	}
	return m
}

// Empty reports whether the matrix has no cells.
func (m *Matrix) Empty() bool {
	return m == nil || len(m.Events) == 0 || len(m.Indicators) == 0
}

// At returns the cell for (event, indicator); ok is false when either key is
// not part of the matrix.
func (m *Matrix) At(event, indicator string) (v float64, ok bool) {
	if m == nil {
		return 0, false
	}
	i, okRow := m.rowIndex[event]
	j, okCol := m.colIndex[indicator]
	if !okRow || !okCol {
		return 0, false
	}
	return m.Values[i][j], true
}

// uniqueInOrder returns distinct non-empty values in first-seen order.
func uniqueInOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Build fills a matrix from impact links. When indicators or events is nil,
// every distinct value found in the links is used, in first-seen order.
// Cells hold the policy's signed magnitude; when several links hit the same
// cell the one with the larger absolute value is kept.
func Build(links []model.ImpactLink, indicators, events []string, policy impact.Policy) *Matrix {
	if len(links) == 0 {
		return newMatrix(nil, nil)
	}
	if events == nil {
		ids := make([]string, len(links))
		for i, l := range links {
			ids[i] = l.ParentID
		}
		events = ids
	}
	if indicators == nil {
		codes := make([]string, len(links))
		for i, l := range links {
			codes[i] = l.RelatedIndicator
		}
		indicators = codes
	}

	m := newMatrix(uniqueInOrder(events), uniqueInOrder(indicators))
	set := make([][]bool, len(m.Events))
	for i := range set {
		set[i] = make([]bool, len(m.Indicators))
	}

	for _, l := range links {
		i, okRow := m.rowIndex[l.ParentID]
		j, okCol := m.colIndex[l.RelatedIndicator]
		if !okRow || !okCol {
			continue
		}
		v := policy.SignedMagnitude(l)
		if !set[i][j] || math.Abs(v) > math.Abs(m.Values[i][j]) {
			m.Values[i][j] = v
			set[i][j] = true
		}
	}
	return m
}

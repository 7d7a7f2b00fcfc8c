package association

import (
	"math"
	"testing"

	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/model"
)

func link(event, indicator, direction string, magnitude *float64) model.ImpactLink {
	return model.ImpactLink{
		ParentID:         event,
		RelatedIndicator: indicator,
		ImpactDirection:  direction,
		ImpactMagnitude:  magnitude,
	}
}

func TestBuild_LargerAbsoluteWins(t *testing.T) {
	links := []model.ImpactLink{
		link("EVT_0001", "ACC_MM_ACCOUNT", model.DirectionIncrease, model.Float(0.3)),
		link("EVT_0001", "ACC_MM_ACCOUNT", model.DirectionDecrease, model.Float(0.7)),
	}
	m := Build(links, nil, nil, impact.DefaultPolicy())

	v, ok := m.At("EVT_0001", "ACC_MM_ACCOUNT")
	if !ok {
		t.Fatal("cell missing")
	}
	if v != -0.7 {
		t.Errorf("cell = %v, want -0.7", v)
	}

	// Order of the conflicting links must not matter.
	links[0], links[1] = links[1], links[0]
	m = Build(links, nil, nil, impact.DefaultPolicy())
	if v, _ := m.At("EVT_0001", "ACC_MM_ACCOUNT"); v != -0.7 {
		t.Errorf("reversed order cell = %v, want -0.7", v)
	}
}

func TestBuild_FirstSeenOrderAndDefaults(t *testing.T) {
	links := []model.ImpactLink{
		link("EVT_0003", "USG_DIGITAL_PAY", model.DirectionIncrease, nil),
		link("EVT_0001", "ACC_OWNERSHIP", model.DirectionDecrease, nil),
		link("EVT_0003", "ACC_OWNERSHIP", model.DirectionIncrease, model.Float(2)),
	}
	m := Build(links, nil, nil, impact.DefaultPolicy())

	wantEvents := []string{"EVT_0003", "EVT_0001"}
	wantIndicators := []string{"USG_DIGITAL_PAY", "ACC_OWNERSHIP"}
	for i, e := range wantEvents {
		if m.Events[i] != e {
			t.Errorf("Events[%d] = %s, want %s", i, m.Events[i], e)
		}
	}
	for i, c := range wantIndicators {
		if m.Indicators[i] != c {
			t.Errorf("Indicators[%d] = %s, want %s", i, m.Indicators[i], c)
		}
	}

	tests := []struct {
		event, indicator string
		want             float64
	}{
		{"EVT_0003", "USG_DIGITAL_PAY", 0.1},
		{"EVT_0001", "ACC_OWNERSHIP", -0.1},
		{"EVT_0003", "ACC_OWNERSHIP", 2},
		{"EVT_0001", "USG_DIGITAL_PAY", 0},
	}
	for _, tt := range tests {
		got, ok := m.At(tt.event, tt.indicator)
		if !ok {
			t.Errorf("At(%s, %s) missing", tt.event, tt.indicator)
			continue
		}
		if got != tt.want {
			t.Errorf("At(%s, %s) = %v, want %v", tt.event, tt.indicator, got, tt.want)
		}
	}
}

func TestBuild_Filters(t *testing.T) {
	links := []model.ImpactLink{
		link("EVT_0001", "ACC_OWNERSHIP", model.DirectionIncrease, model.Float(1)),
		link("EVT_0002", "ACC_OWNERSHIP", model.DirectionIncrease, model.Float(2)),
		link("EVT_0002", "USG_DIGITAL_PAY", model.DirectionIncrease, model.Float(3)),
	}
	m := Build(links, []string{"ACC_OWNERSHIP", "ACC_FAYDA"}, []string{"EVT_0002"}, impact.DefaultPolicy())

	if len(m.Events) != 1 || len(m.Indicators) != 2 {
		t.Fatalf("shape = %dx%d, want 1x2", len(m.Events), len(m.Indicators))
	}
	if v, _ := m.At("EVT_0002", "ACC_OWNERSHIP"); v != 2 {
		t.Errorf("filtered cell = %v, want 2", v)
	}
	if v, ok := m.At("EVT_0002", "ACC_FAYDA"); !ok || v != 0 {
		t.Errorf("unlinked cell = %v (ok=%v), want 0", v, ok)
	}
	if _, ok := m.At("EVT_0001", "ACC_OWNERSHIP"); ok {
		t.Error("filtered-out event should not be addressable")
	}
}

func TestBuild_Empty(t *testing.T) {
	m := Build(nil, nil, nil, impact.DefaultPolicy())
	if !m.Empty() {
		t.Error("matrix from no links should be empty")
	}
	if s := Summarize(m); s != (Summary{}) {
		t.Errorf("Summarize(empty) = %+v, want zero", s)
	}
}

func TestSummarize(t *testing.T) {
	links := []model.ImpactLink{
		link("EVT_0001", "ACC_OWNERSHIP", model.DirectionIncrease, model.Float(4)),
		link("EVT_0001", "USG_DIGITAL_PAY", model.DirectionDecrease, model.Float(2)),
		link("EVT_0002", "ACC_OWNERSHIP", model.DirectionIncrease, model.Float(1)),
	}
	m := Build(links, []string{"ACC_OWNERSHIP", "USG_DIGITAL_PAY", "ACC_FAYDA"}, []string{"EVT_0001", "EVT_0002", "EVT_0009"}, impact.DefaultPolicy())
	s := Summarize(m)

	want := Summary{
		TotalEvents:           3,
		TotalIndicators:       3,
		TotalImpacts:          3,
		PositiveImpacts:       2,
		NegativeImpacts:       1,
		EventsWithImpacts:     2,
		IndicatorsWithImpacts: 2,
		MaxPositive:           4,
		MinNegative:           -2,
		MeanAbsMagnitude:      7.0 / 3.0,
	}
	if math.Abs(s.MeanAbsMagnitude-want.MeanAbsMagnitude) > 1e-12 {
		t.Errorf("MeanAbsMagnitude = %v, want %v", s.MeanAbsMagnitude, want.MeanAbsMagnitude)
	}
	s.MeanAbsMagnitude = want.MeanAbsMagnitude
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
}

func TestSummarize_AllPositiveIncludesZeroMin(t *testing.T) {
	links := []model.ImpactLink{
		link("EVT_0001", "ACC_OWNERSHIP", model.DirectionIncrease, model.Float(4)),
		link("EVT_0002", "USG_DIGITAL_PAY", model.DirectionIncrease, model.Float(1)),
	}
	s := Summarize(Build(links, nil, nil, impact.DefaultPolicy()))
	if s.MinNegative != 0 {
		t.Errorf("MinNegative = %v, want 0 (zero cells count)", s.MinNegative)
	}
	if s.MaxPositive != 4 {
		t.Errorf("MaxPositive = %v, want 4", s.MaxPositive)
	}
}

package impact

import (
	"math"
	"testing"
	"time"

	"InclusionSentinel/internal/model"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestEffect_Immediate(t *testing.T) {
	p := DefaultPolicy()
	if got := p.Effect(5, 2.0, 6, Immediate); got != 0 {
		t.Errorf("before lag: expected 0, got %v", got)
	}
	if got := p.Effect(6, 2.0, 6, Immediate); got != 2.0 {
		t.Errorf("at lag: expected 2.0, got %v", got)
	}
	if got := p.Effect(30, 2.0, 6, Immediate); got != 2.0 {
		t.Errorf("after lag: expected 2.0, got %v", got)
	}
}

func TestEffect_GradualRampSaturates(t *testing.T) {
	p := DefaultPolicy()
	const mag, lag = 4.75, 6
	if got := p.Effect(3, mag, lag, Gradual); got != 0 {
		t.Errorf("before lag: expected 0, got %v", got)
	}
	if got := p.Effect(12, mag, lag, Gradual); math.Abs(got-mag*0.5) > 1e-12 {
		t.Errorf("half way: expected %v, got %v", mag*0.5, got)
	}
	for m := lag + 12; m <= lag+60; m++ {
		if got := p.Effect(float64(m), mag, lag, Gradual); got != mag {
			t.Errorf("t=%d: expected saturated %v, got %v", m, mag, got)
		}
	}
}

func TestEffect_DistributedDecaysMonotonically(t *testing.T) {
	p := DefaultPolicy()
	const mag, lag = 3.0, 4
	if got := p.Effect(float64(lag), mag, lag, Distributed); got != mag {
		t.Errorf("at lag: expected %v, got %v", mag, got)
	}
	prev := p.Effect(float64(lag), mag, lag, Distributed)
	for step := 1; step <= 48; step++ {
		tm := float64(lag) + float64(step)*0.5
		cur := p.Effect(tm, mag, lag, Distributed)
		if cur > prev {
			t.Fatalf("effect increased at t=%.1f: %v > %v", tm, cur, prev)
		}
		prev = cur
	}
	if got := p.Effect(float64(lag+1), mag, lag, Distributed); math.Abs(got-mag*0.95) > 1e-12 {
		t.Errorf("one month after lag: expected %v, got %v", mag*0.95, got)
	}
}

func TestEffect_UnknownTypeIsZero(t *testing.T) {
	if got := DefaultPolicy().Effect(20, 1, 0, EffectType("sigmoid")); got != 0 {
		t.Errorf("expected 0 for unknown type, got %v", got)
	}
	if _, err := ParseEffectType("sigmoid"); err == nil {
		t.Error("expected parse error for unknown type")
	}
}

func TestEffectOverTime_MonthEndIndex(t *testing.T) {
	p := DefaultPolicy()
	s := p.EffectOverTime(date("2021-05-11"), 2.0, 0, Immediate)
	if len(s) != 36 {
		t.Fatalf("expected 36 points, got %d", len(s))
	}
	if !s[0].Date.Equal(date("2021-05-31")) {
		t.Errorf("expected first point at 2021-05-31, got %s", s[0].Date.Format("2006-01-02"))
	}
	if !s[1].Date.Equal(date("2021-06-30")) {
		t.Errorf("expected second point at 2021-06-30, got %s", s[1].Date.Format("2006-01-02"))
	}
	if !s[35].Date.Equal(date("2024-04-30")) {
		t.Errorf("expected last point at 2024-04-30, got %s", s[35].Date.Format("2006-01-02"))
	}
	for _, pt := range s {
		if pt.Value != 2.0 {
			t.Errorf("%s: expected immediate effect 2.0, got %v", pt.Date.Format("2006-01-02"), pt.Value)
		}
	}

	g := p.EffectOverTime(date("2021-05-11"), 2.0, 0, Gradual)
	want := 2.0 * (20.0 / 30.0) / 12.0
	if math.Abs(g[0].Value-want) > 1e-12 {
		t.Errorf("expected first gradual value %v, got %v", want, g[0].Value)
	}
}

func TestEffectSeries_ValueAt(t *testing.T) {
	s := EffectSeries{
		{Date: date("2021-05-31"), Value: 1},
		{Date: date("2021-06-30"), Value: 2},
		{Date: date("2021-07-31"), Value: 3},
	}
	tests := []struct {
		at   string
		want float64
	}{
		{"2021-05-01", 0},
		{"2021-05-31", 1},
		{"2021-06-15", 1},
		{"2021-06-30", 2},
		{"2030-01-01", 3},
	}
	for _, tt := range tests {
		if got := s.ValueAt(date(tt.at)); got != tt.want {
			t.Errorf("ValueAt(%s): expected %v, got %v", tt.at, tt.want, got)
		}
	}
}

func TestSignedMagnitude(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		name string
		link model.ImpactLink
		want float64
	}{
		{"increase", model.ImpactLink{ImpactDirection: "increase", ImpactMagnitude: model.Float(0.3)}, 0.3},
		{"decrease", model.ImpactLink{ImpactDirection: "decrease", ImpactMagnitude: model.Float(0.7)}, -0.7},
		{"default increase", model.ImpactLink{ImpactDirection: "increase"}, 0.1},
		{"default decrease", model.ImpactLink{ImpactDirection: "decrease"}, -0.1},
		{"nan magnitude", model.ImpactLink{ImpactDirection: "increase", ImpactMagnitude: model.Float(math.NaN())}, 0.1},
	}
	for _, tt := range tests {
		if got := p.SignedMagnitude(tt.link); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}

	custom := Policy{DefaultMagnitude: 0.25}
	if got := custom.SignedMagnitude(model.ImpactLink{ImpactDirection: "decrease"}); got != -0.25 {
		t.Errorf("custom default: expected -0.25, got %v", got)
	}
}

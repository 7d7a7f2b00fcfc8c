package outlook

import (
	"errors"
	"math"
	"testing"

	"InclusionSentinel/internal/forecast"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/timeseries"
)

func result(values ...float64) *forecast.Result {
	rows := make([]model.ForecastRecord, len(values))
	for i, v := range values {
		rows[i] = model.ForecastRecord{Year: 2025 + i, Forecast: v}
	}
	return &forecast.Result{
		IndicatorCode: "ACC_OWNERSHIP",
		Historical:    timeseries.New([]timeseries.Point{{Year: 2021, Value: 46}, {Year: 2024, Value: 49}}),
		Forecast:      rows,
		Scenarios:     forecast.GenerateScenarios(rows, forecast.DefaultMultipliers()),
	}
}

func TestEvaluate_Reached(t *testing.T) {
	p, err := Evaluate(result(52, 55, 58), model.ScenarioOptimistic, 60)
	if err != nil {
		t.Fatal(err)
	}
	// Optimistic is ×1.2: 62.4, 66, 69.6.
	if p.ReachedYear != 2025 {
		t.Errorf("reached year = %d, want 2025", p.ReachedYear)
	}
	if p.GrowthNeeded != 0 {
		t.Errorf("growth needed = %v, want 0 once reached", p.GrowthNeeded)
	}
	if p.Tier != "Target reached" {
		t.Errorf("tier = %s", p.Tier)
	}
}

func TestEvaluate_Behind(t *testing.T) {
	p, err := Evaluate(result(50, 52, 54), model.ScenarioBase, 60)
	if err != nil {
		t.Fatal(err)
	}
	if p.ReachedYear != 0 {
		t.Errorf("reached year = %d, want 0", p.ReachedYear)
	}
	if p.Current != 49 || p.CurrentYear != 2024 {
		t.Errorf("current = %v in %d", p.Current, p.CurrentYear)
	}
	if math.Abs(p.ProgressPct-49.0/60*100) > 1e-9 {
		t.Errorf("progress = %v", p.ProgressPct)
	}
	if p.Gap != 6 {
		t.Errorf("gap = %v, want 6", p.Gap)
	}
	// (60-49) over 2024→2027.
	if math.Abs(p.GrowthNeeded-11.0/3) > 1e-9 {
		t.Errorf("growth needed = %v, want %v", p.GrowthNeeded, 11.0/3)
	}
	if p.Tier != "On track" {
		t.Errorf("tier = %s, want On track (54/60 = 0.9)", p.Tier)
	}
}

func TestMapTier(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.2, "Target reached"},
		{1.0, "Target reached"},
		{0.95, "On track"},
		{0.8, "Within reach"},
		{0.6, "Behind"},
		{0.1, DefaultTier},
	}
	for _, tt := range tests {
		if got := mapTier(tt.ratio); got != tt.want {
			t.Errorf("mapTier(%v) = %s, want %s", tt.ratio, got, tt.want)
		}
	}
}

func TestEvaluate_Errors(t *testing.T) {
	if _, err := Evaluate(result(50), model.ScenarioBase, 0); !errors.Is(err, ErrNoGoal) {
		t.Errorf("err = %v, want ErrNoGoal", err)
	}
	if _, err := Evaluate(result(50), "stress", 60); err == nil {
		t.Error("expected error for unknown scenario")
	}
	if _, err := Evaluate(&forecast.Result{Historical: timeseries.New(nil)}, model.ScenarioBase, 60); !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestGoalFromTargets(t *testing.T) {
	rows := []model.Record{
		{RecordType: model.RecordTarget, ObservationDate: "2030-12-31", ValueNumeric: model.Float(75)},
		{RecordType: model.RecordTarget, ObservationDate: "2025-12-31", ValueNumeric: model.Float(70)},
		{RecordType: model.RecordTarget, ObservationDate: "2026-12-31"},
	}
	if got := GoalFromTargets(rows); got != 75 {
		t.Errorf("goal = %v, want 75 (latest target)", got)
	}
	if got := GoalFromTargets(nil); got != 0 {
		t.Errorf("goal = %v, want 0", got)
	}
}

package forecast

import (
	"math"
	"testing"

	"InclusionSentinel/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGenerateScenarios_Defaults(t *testing.T) {
	rows := []model.ForecastRecord{{Year: 2026, Forecast: 50, LowerBound: 45, UpperBound: 55, ConfidenceLevel: 0.95}}
	set := GenerateScenarios(rows, Multipliers{})

	tests := []struct {
		scenario            string
		forecast, low, high float64
	}{
		{model.ScenarioOptimistic, 60, 54, 66},
		{model.ScenarioBase, 50, 45, 55},
		{model.ScenarioPessimistic, 40, 36, 44},
	}
	for _, tt := range tests {
		got := set[tt.scenario]
		if len(got) != 1 {
			t.Fatalf("%s: %d rows", tt.scenario, len(got))
		}
		r := got[0]
		if !approx(r.Forecast, tt.forecast) || !approx(r.LowerBound, tt.low) || !approx(r.UpperBound, tt.high) {
			t.Errorf("%s = (%v, %v, %v), want (%v, %v, %v)",
				tt.scenario, r.Forecast, r.LowerBound, r.UpperBound, tt.forecast, tt.low, tt.high)
		}
		if r.Year != 2026 || r.ConfidenceLevel != 0.95 {
			t.Errorf("%s lost year or confidence: %+v", tt.scenario, r)
		}
	}
}

func TestGenerateScenarios_Clamps(t *testing.T) {
	rows := []model.ForecastRecord{{Year: 2027, Forecast: 90, LowerBound: 85, UpperBound: 95}}
	set := GenerateScenarios(rows, Multipliers{Optimistic: 1.5, Pessimistic: 0.5})

	opt := set[model.ScenarioOptimistic][0]
	if opt.Forecast != 100 || opt.UpperBound != 100 || opt.LowerBound != 100 {
		t.Errorf("optimistic = %+v, want all clamped to 100", opt)
	}
	pes := set[model.ScenarioPessimistic][0]
	if !approx(pes.Forecast, 45) {
		t.Errorf("pessimistic forecast = %v, want 45", pes.Forecast)
	}
}

func TestGenerateScenarios_DoesNotAlias(t *testing.T) {
	rows := []model.ForecastRecord{{Year: 2025, Forecast: 50}}
	set := GenerateScenarios(rows, DefaultMultipliers())
	set[model.ScenarioBase][0].Forecast = 1
	if rows[0].Forecast != 50 {
		t.Error("base scenario shares memory with input")
	}
}

func TestForecastTable(t *testing.T) {
	res := &Result{Scenarios: model.ScenarioSet{
		model.ScenarioBase: {
			{Year: 2025, Forecast: 54.8237, LowerBound: 40.04, UpperBound: 69.61},
		},
	}}
	rows := ForecastTable(res, model.ScenarioBase)
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	want := TableRow{Year: 2025, Forecast: 54.8, Lower: 40.0, Upper: 69.6, Range: 29.6}
	if rows[0] != want {
		t.Errorf("row = %+v, want %+v", rows[0], want)
	}
	if ForecastTable(res, "stress") != nil {
		t.Error("unknown scenario should yield nil")
	}
}

func TestInterpret(t *testing.T) {
	fc := []model.ForecastRecord{
		{Year: 2025, Forecast: 50, LowerBound: 44, UpperBound: 56},
		{Year: 2026, Forecast: 53, LowerBound: 46, UpperBound: 60},
		{Year: 2027, Forecast: 56, LowerBound: 48, UpperBound: 64},
	}
	res := &Result{Forecast: fc, Scenarios: GenerateScenarios(fc, DefaultMultipliers())}
	in := Interpret(res)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"average", in.AverageForecast, 53},
		{"growth", in.Growth, 6},
		{"half range", in.HalfRange, 7},
		{"optimistic", in.OptimisticAvg, 63.6},
		{"pessimistic", in.PessimisticAvg, 42.4},
		{"spread", in.ScenarioSpread, 21.2},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if Interpret(nil) != (Interpretation{}) {
		t.Error("nil result should interpret to zero")
	}
}

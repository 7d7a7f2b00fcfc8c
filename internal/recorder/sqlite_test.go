package recorder

import (
	"path/filepath"
	"testing"

	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/model"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "sentinel.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, r *SQLiteRecorder, query string, args ...any) int {
	t.Helper()
	var n int
	if err := r.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestRecordForecast(t *testing.T) {
	r := openTemp(t)
	rows := []model.ForecastRecord{
		{Year: 2025, Forecast: 52, LowerBound: 45, UpperBound: 59, ConfidenceLevel: 0.95, EventEffect: 3.75},
		{Year: 2026, Forecast: 55, LowerBound: 47, UpperBound: 63, ConfidenceLevel: 0.95, EventEffect: 3.75},
	}
	r2 := 0.97
	run := &ForecastRun{
		Target:        "access",
		IndicatorCode: "ACC_OWNERSHIP",
		Pillar:        "ACCESS",
		Metrics:       model.FitMetrics{RMSE: 2.3, MAE: 2.1, R2: &r2, ModelType: "linear"},
		Scenarios: model.ScenarioSet{
			model.ScenarioOptimistic:  rows,
			model.ScenarioBase:        rows,
			model.ScenarioPessimistic: rows,
		},
	}
	if err := r.RecordForecast(run); err != nil {
		t.Fatalf("RecordForecast: %v", err)
	}

	if n := count(t, r, `SELECT COUNT(*) FROM forecast_runs`); n != 1 {
		t.Errorf("runs = %d, want 1", n)
	}
	if n := count(t, r, `SELECT COUNT(*) FROM forecast_rows WHERE scenario = ?`, model.ScenarioBase); n != 2 {
		t.Errorf("base rows = %d, want 2", n)
	}
	if n := count(t, r, `SELECT COUNT(*) FROM forecast_rows`); n != 6 {
		t.Errorf("rows = %d, want 6", n)
	}

	var effect float64
	if err := r.db.QueryRow(`SELECT event_effect FROM forecast_rows WHERE year = 2026 AND scenario = 'base'`).Scan(&effect); err != nil {
		t.Fatal(err)
	}
	if effect != 3.75 {
		t.Errorf("event_effect = %v, want 3.75", effect)
	}
}

func TestRecordForecast_LogModelStoresNullR2(t *testing.T) {
	r := openTemp(t)
	run := &ForecastRun{IndicatorCode: "ACC_OWNERSHIP", Metrics: model.FitMetrics{ModelType: "log"}}
	if err := r.RecordForecast(run); err != nil {
		t.Fatalf("RecordForecast: %v", err)
	}
	if n := count(t, r, `SELECT COUNT(*) FROM forecast_runs WHERE r2 IS NULL`); n != 1 {
		t.Errorf("null r2 rows = %d, want 1", n)
	}
}

func TestRecordMatrix(t *testing.T) {
	r := openTemp(t)
	links := []model.ImpactLink{
		{ParentID: "EVT_0001", RelatedIndicator: "ACC_OWNERSHIP", ImpactDirection: model.DirectionIncrease, ImpactMagnitude: model.Float(4.75)},
		{ParentID: "EVT_0002", RelatedIndicator: "USG_DIGITAL_PAY", ImpactDirection: model.DirectionDecrease},
	}
	m := association.Build(links, nil, nil, impact.DefaultPolicy())
	if err := r.RecordMatrix(&MatrixSnapshot{Matrix: m, Summary: association.Summarize(m)}); err != nil {
		t.Fatalf("RecordMatrix: %v", err)
	}
	if n := count(t, r, `SELECT COUNT(*) FROM matrix_cells`); n != 2 {
		t.Errorf("cells = %d, want 2 non-zero", n)
	}
	if n := count(t, r, `SELECT total_impacts FROM matrix_summaries`); n != 2 {
		t.Errorf("total_impacts = %d, want 2", n)
	}
}

func TestRecordValidation(t *testing.T) {
	r := openTemp(t)
	rel := 15.79
	results := []impact.ValidationResult{
		{Validated: true, IndicatorCode: "ACC_MM_ACCOUNT", EventID: "EVT_0001", PredictedImpact: 4, ObservedChange: 4.75, Difference: 0.75, RelativeErrorPct: &rel},
		{Validated: false, Reason: impact.ReasonNoLink, IndicatorCode: "ACC_FAYDA", EventID: "EVT_0001"},
	}
	for i := range results {
		if err := r.RecordValidation(&results[i]); err != nil {
			t.Fatalf("RecordValidation: %v", err)
		}
	}
	if n := count(t, r, `SELECT COUNT(*) FROM validations WHERE validated = 1`); n != 1 {
		t.Errorf("validated rows = %d, want 1", n)
	}
	if n := count(t, r, `SELECT COUNT(*) FROM validations WHERE relative_error_pct IS NULL`); n != 1 {
		t.Errorf("null relative error rows = %d, want 1", n)
	}
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	if err := rec.RecordForecast(&ForecastRun{}); err != nil {
		t.Error(err)
	}
	if err := rec.RecordMatrix(&MatrixSnapshot{}); err != nil {
		t.Error(err)
	}
	if err := rec.RecordValidation(&impact.ValidationResult{}); err != nil {
		t.Error(err)
	}
	if err := rec.Close(); err != nil {
		t.Error(err)
	}
}

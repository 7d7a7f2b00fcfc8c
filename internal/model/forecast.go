package model

// ForecastRecord is one forecast year with its confidence interval.
type ForecastRecord struct {
	Year            int     `json:"year"`
	Forecast        float64 `json:"forecast"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
	ConfidenceLevel float64 `json:"confidence_level"`
	EventEffect     float64 `json:"event_effect"` // 0 unless event adjustment ran
}

// Scenario names.
const (
	ScenarioOptimistic  = "optimistic"
	ScenarioBase        = "base"
	ScenarioPessimistic = "pessimistic"
)

// ScenarioNames lists scenarios in report order.
var ScenarioNames = []string{ScenarioOptimistic, ScenarioBase, ScenarioPessimistic}

// ScenarioSet maps a scenario name to its forecast rows.
type ScenarioSet map[string][]ForecastRecord

// FitMetrics describes how well a trend model fits its history.
// R2 is nil for the log model.
type FitMetrics struct {
	RMSE      float64
	MAE       float64
	R2        *float64
	ModelType string
}

// CopyForecast returns an independent copy of rows.
func CopyForecast(rows []ForecastRecord) []ForecastRecord {
	out := make([]ForecastRecord, len(rows))
	copy(out, rows)
	return out
}

package recorder

import (
	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/model"
)

// ForecastRun holds one indicator forecast with its scenarios.
type ForecastRun struct {
	Target        string // config target name, e.g. "access"
	IndicatorCode string
	Pillar        string
	UsedFallback  bool
	Metrics       model.FitMetrics
	Scenarios     model.ScenarioSet
}

// MatrixSnapshot holds the association matrix and its summary.
type MatrixSnapshot struct {
	Matrix  *association.Matrix
	Summary association.Summary
}

// Recorder persists analysis runs for later comparison.
type Recorder interface {
	RecordForecast(run *ForecastRun) error
	RecordMatrix(snap *MatrixSnapshot) error
	RecordValidation(res *impact.ValidationResult) error
	Close() error
}

package recorder

import "InclusionSentinel/internal/impact"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordForecast(_ *ForecastRun) error              { return nil }
func (n *NoopRecorder) RecordMatrix(_ *MatrixSnapshot) error             { return nil }
func (n *NoopRecorder) RecordValidation(_ *impact.ValidationResult) error { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }

// Package metrics exposes pipeline counters and the latest forecast values
// to Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/model"
)

// Forecast outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	ReportRuns     *prometheus.CounterVec
	ReportDuration prometheus.Histogram
	Forecasts      *prometheus.CounterVec
	ForecastValue  *prometheus.GaugeVec
	MatrixImpacts  *prometheus.GaugeVec
	ValidationErr  *prometheus.GaugeVec
}

// New creates all metrics and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ReportRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inclusion_report_runs_total",
				Help: "Report runs by status",
			},
			[]string{"status"},
		),
		ReportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "inclusion_report_duration_seconds",
			Help:    "Wall time of one report run",
			Buckets: prometheus.DefBuckets,
		}),
		Forecasts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inclusion_forecasts_total",
				Help: "Indicator forecasts by outcome",
			},
			[]string{"indicator", "outcome"},
		),
		ForecastValue: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inclusion_forecast_percent",
				Help: "Latest forecast value per indicator, scenario and year",
			},
			[]string{"indicator", "scenario", "year"},
		),
		MatrixImpacts: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inclusion_matrix_impacts",
				Help: "Non-zero association matrix cells by sign",
			},
			[]string{"sign"},
		),
		ValidationErr: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "inclusion_validation_relative_error_percent",
				Help: "Relative error of the latest back-test per event and indicator",
			},
			[]string{"indicator", "event"},
		),
	}
}

// ObserveScenarios sets the forecast gauges from a scenario set.
func (m *Metrics) ObserveScenarios(indicator string, set model.ScenarioSet) {
	for name, rows := range set {
		for _, r := range rows {
			m.ForecastValue.WithLabelValues(indicator, name, strconv.Itoa(r.Year)).Set(r.Forecast)
		}
	}
}

// ObserveMatrix sets the matrix gauges from a summary.
func (m *Metrics) ObserveMatrix(s association.Summary) {
	m.MatrixImpacts.WithLabelValues("positive").Set(float64(s.PositiveImpacts))
	m.MatrixImpacts.WithLabelValues("negative").Set(float64(s.NegativeImpacts))
}

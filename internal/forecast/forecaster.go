// Package forecast wires extraction, trend fitting, event adjustment and
// scenario generation into one pipeline per indicator.
package forecast

import (
	"context"
	"fmt"

	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/calculator"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/timeseries"
)

// DefaultYears is the forecast horizon used when a request names none.
var DefaultYears = []int{2025, 2026, 2027}

// DefaultConfidenceLevel is used when a request leaves it at zero.
const DefaultConfidenceLevel = 0.95

// Request describes one forecast run.
type Request struct {
	IndicatorCode   string
	Pillar          string
	ForecastYears   []int
	IncludeEvents   bool
	ModelType       calculator.ModelType
	ConfidenceLevel float64
}

func (r Request) withDefaults() Request {
	if len(r.ForecastYears) == 0 {
		r.ForecastYears = DefaultYears
	}
	if r.ModelType == "" {
		r.ModelType = calculator.Linear
	}
	if r.ConfidenceLevel == 0 {
		r.ConfidenceLevel = DefaultConfidenceLevel
	}
	return r
}

// Result is the full output of ForecastIndicator.
type Result struct {
	IndicatorCode string
	Pillar        string
	Historical    *timeseries.Series
	Baseline      []model.ForecastRecord
	Forecast      []model.ForecastRecord
	Scenarios     model.ScenarioSet
	Metrics       model.FitMetrics
	ModelType     calculator.ModelType
}

// Options tunes a Forecaster. Zero fields take their defaults.
type Options struct {
	Policy      impact.Policy
	Multipliers Multipliers
	Combiner    impact.Combiner
}

// Forecaster runs the pipeline over one loaded dataset. Inputs are read-only
// after construction, so repeated calls give identical results.
type Forecaster struct {
	records     []model.Record
	events      []model.Event
	links       []model.ImpactLink
	policy      impact.Policy
	multipliers Multipliers
	combiner    impact.Combiner
}

// New creates a Forecaster. links is the pre-extracted impact-link table.
func New(records []model.Record, events []model.Event, links []model.ImpactLink, opts Options) *Forecaster {
	return &Forecaster{
		records:     records,
		events:      events,
		links:       links,
		policy:      opts.Policy,
		multipliers: opts.Multipliers.withDefaults(),
		combiner:    opts.Combiner,
	}
}

// NewFromDataset is New over a dataset's records, events and links.
func NewFromDataset(ds *model.Dataset, opts Options) *Forecaster {
	return New(ds.Records, ds.Events(), ds.Links(), opts)
}

// Historical returns the extracted yearly series for an indicator.
func (f *Forecaster) Historical(indicatorCode, pillar string) *timeseries.Series {
	return timeseries.Extract(f.records, indicatorCode, pillar)
}

// ForecastIndicator runs extract, fit, baseline, event adjustment and
// scenarios for one indicator. An empty or single-point history fails with
// model.ErrInsufficientData before any fitting.
func (f *Forecaster) ForecastIndicator(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req = req.withDefaults()

	hist := f.Historical(req.IndicatorCode, req.Pillar)
	if hist.Len() < 2 {
		return nil, fmt.Errorf("forecast %s/%s: %d historical points: %w",
			req.IndicatorCode, req.Pillar, hist.Len(), model.ErrInsufficientData)
	}

	trend, _, metrics, err := calculator.Fit(hist, req.ModelType)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", req.IndicatorCode, err)
	}

	baseline, err := calculator.Forecast(trend, hist, req.ForecastYears, req.ConfidenceLevel)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", req.IndicatorCode, err)
	}

	adjusted := model.CopyForecast(baseline)
	if req.IncludeEvents {
		adjusted = f.policy.ApplyToForecast(baseline, f.events, f.links, req.IndicatorCode)
	}

	logger.Log.Infof("forecast %s/%s: %d points, model=%s, rmse=%.3f",
		req.IndicatorCode, req.Pillar, hist.Len(), req.ModelType, metrics.RMSE)

	return &Result{
		IndicatorCode: req.IndicatorCode,
		Pillar:        req.Pillar,
		Historical:    hist,
		Baseline:      baseline,
		Forecast:      adjusted,
		Scenarios:     GenerateScenarios(adjusted, f.multipliers),
		Metrics:       metrics,
		ModelType:     req.ModelType,
	}, nil
}

// BuildAssociationMatrix builds the event × indicator matrix from the
// forecaster's links. nil filters select every value present in the links.
func (f *Forecaster) BuildAssociationMatrix(indicators, events []string) *association.Matrix {
	return association.Build(f.links, indicators, events, f.policy)
}

// ValidateAgainstHistorical back-tests the gradual effect of eventID on
// indicatorCode against an observed change over period.
func (f *Forecaster) ValidateAgainstHistorical(indicatorCode, eventID string, observedChange float64, period impact.Period) impact.ValidationResult {
	return impact.NewValidator(f.policy, f.events, f.links).Validate(indicatorCode, eventID, observedChange, period)
}

// CombinedEffect builds one effect curve per dated event linked to
// indicatorCode and merges them with method.
func (f *Forecaster) CombinedEffect(indicatorCode string, et impact.EffectType, method impact.Combination) impact.EffectSeries {
	byID := make(map[string]model.Event, len(f.events))
	for _, e := range f.events {
		if _, dup := byID[e.RecordID]; !dup {
			byID[e.RecordID] = e
		}
	}

	var curves []impact.EffectSeries
	for _, l := range f.links {
		if l.RelatedIndicator != indicatorCode {
			continue
		}
		ev, ok := byID[l.ParentID]
		if !ok || !ev.HasDate {
			continue
		}
		curves = append(curves, f.policy.EffectOverTime(ev.Date, f.policy.SignedMagnitude(l), l.Lag(), et))
	}
	return f.combiner.Combine(curves, method)
}

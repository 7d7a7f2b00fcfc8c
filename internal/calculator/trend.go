package calculator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/timeseries"
)

// ModelType selects the regression form.
type ModelType string

const (
	// Linear fits value ~ year.
	Linear ModelType = "linear"
	// Log fits log(value+1) ~ year and back-transforms with exp(pred)-1.
	Log ModelType = "log"
)

// ParseModelType validates a model type name.
func ParseModelType(s string) (ModelType, error) {
	switch ModelType(s) {
	case Linear, Log:
		return ModelType(s), nil
	}
	return "", fmt.Errorf("%w: %q", model.ErrUnknownModel, s)
}

// TrendModel is a fitted regression line. Intercept and Slope live in the
// transformed space for the log model.
type TrendModel struct {
	Type      ModelType
	Intercept float64
	Slope     float64
}

// predictRaw returns the prediction in the fitting space.
func (m *TrendModel) predictRaw(year float64) float64 {
	return m.Intercept + m.Slope*year
}

// Predict returns the back-transformed prediction for year.
func (m *TrendModel) Predict(year float64) float64 {
	raw := m.predictRaw(year)
	if m.Type == Log {
		return math.Exp(raw) - 1
	}
	return raw
}

// fitSpace maps observed values into the regression space.
func fitSpace(mt ModelType, values []float64) []float64 {
	if mt != Log {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Log(v + 1)
	}
	return out
}

// sumSquaredDeviations returns the mean of xs and Σ(x - x̄)².
func sumSquaredDeviations(xs []float64) (mean, ss float64) {
	mean = stat.Mean(xs, nil)
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return mean, ss
}

// Fit runs ordinary least squares over the series and returns the model,
// the in-sample predictions and the residual metrics.
func Fit(s *timeseries.Series, mt ModelType) (*TrendModel, []float64, model.FitMetrics, error) {
	var metrics model.FitMetrics
	if s == nil || s.Len() < 2 {
		return nil, nil, metrics, model.ErrInsufficientData
	}
	if mt != Linear && mt != Log {
		return nil, nil, metrics, fmt.Errorf("%w: %q", model.ErrUnknownModel, mt)
	}

	x := s.Years()
	y := s.Values()
	if _, ss := sumSquaredDeviations(x); ss == 0 {
		return nil, nil, metrics, model.ErrDegenerateSeries
	}

	target := fitSpace(mt, y)
	alpha, beta := stat.LinearRegression(x, target, nil, false)
	m := &TrendModel{Type: mt, Intercept: alpha, Slope: beta}

	preds := make([]float64, len(x))
	var sumSq, sumAbs float64
	for i, xi := range x {
		preds[i] = m.Predict(xi)
		r := y[i] - preds[i]
		sumSq += r * r
		sumAbs += math.Abs(r)
	}
	n := float64(len(x))
	metrics = model.FitMetrics{
		RMSE:      math.Sqrt(sumSq / n),
		MAE:       sumAbs / n,
		ModelType: string(mt),
	}
	if mt == Linear {
		r2 := stat.RSquared(x, y, nil, alpha, beta)
		metrics.R2 = &r2
	}
	return m, preds, metrics, nil
}

// CriticalValue returns the two-sided Student-t critical value for the
// confidence level with df degrees of freedom.
func CriticalValue(confidenceLevel float64, df int) (float64, error) {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return 0, fmt.Errorf("confidence level must be in (0, 1), got %v", confidenceLevel)
	}
	if df < 1 {
		return 0, errors.New("student-t needs at least one degree of freedom")
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return t.Quantile((1 + confidenceLevel) / 2), nil
}

// Forecast projects the model over years with residual-based confidence
// intervals. The linear model widens its margin away from the mean year; the
// log model uses a constant log-space margin scaled by the forecast. All
// three output values are clamped to [0, 100].
func Forecast(m *TrendModel, s *timeseries.Series, years []int, confidenceLevel float64) ([]model.ForecastRecord, error) {
	if m == nil {
		return nil, errors.New("nil trend model")
	}
	if s == nil || s.Len() < 2 {
		return nil, model.ErrInsufficientData
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return nil, fmt.Errorf("confidence level must be in (0, 1), got %v", confidenceLevel)
	}

	x := s.Years()
	target := fitSpace(m.Type, s.Values())
	n := len(x)

	residuals := make([]float64, n)
	for i, xi := range x {
		residuals[i] = target[i] - m.predictRaw(xi)
	}
	_, variance := stat.PopMeanVariance(residuals, nil)
	stdError := math.Sqrt(variance)

	xMean, sxx := sumSquaredDeviations(x)
	if sxx == 0 {
		return nil, model.ErrDegenerateSeries
	}

	tCrit, err := CriticalValue(confidenceLevel, n-2)
	if err != nil {
		// Two points fit exactly; the interval collapses onto the forecast.
		logger.Log.Warnf("no residual degrees of freedom (n=%d), using zero-width interval", n)
		tCrit = 0
	}

	out := make([]model.ForecastRecord, len(years))
	for i, year := range years {
		x0 := float64(year)
		forecast := m.Predict(x0)

		var margin float64
		switch m.Type {
		case Log:
			margin = forecast * (math.Exp(tCrit*stdError) - 1)
		default:
			d := x0 - xMean
			se := stdError * math.Sqrt(1+1/float64(n)+d*d/sxx)
			margin = tCrit * se
		}

		out[i] = model.ForecastRecord{
			Year:            year,
			Forecast:        ClampPercent(forecast),
			LowerBound:      ClampPercent(forecast - margin),
			UpperBound:      ClampPercent(forecast + margin),
			ConfidenceLevel: confidenceLevel,
		}
	}
	return out, nil
}

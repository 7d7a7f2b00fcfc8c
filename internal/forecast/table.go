package forecast

import (
	"math"

	"InclusionSentinel/internal/model"
)

// TableRow is one printable forecast year, rounded to one decimal.
type TableRow struct {
	Year     int
	Forecast float64
	Lower    float64
	Upper    float64
	Range    float64
}

// round1 rounds half to even, as the published tables do.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

// ForecastTable returns the rows of one scenario ready for reporting. Range
// is computed from the unrounded bounds. Unknown scenarios yield nil.
func ForecastTable(res *Result, scenario string) []TableRow {
	if res == nil {
		return nil
	}
	rows, ok := res.Scenarios[scenario]
	if !ok {
		return nil
	}
	out := make([]TableRow, len(rows))
	for i, r := range rows {
		out[i] = TableRow{
			Year:     r.Year,
			Forecast: round1(r.Forecast),
			Lower:    round1(r.LowerBound),
			Upper:    round1(r.UpperBound),
			Range:    round1(r.UpperBound - r.LowerBound),
		}
	}
	return out
}

// ScenarioAverages returns the mean forecast per scenario.
func ScenarioAverages(set model.ScenarioSet) map[string]float64 {
	out := make(map[string]float64, len(set))
	for name, rows := range set {
		if len(rows) == 0 {
			continue
		}
		var sum float64
		for _, r := range rows {
			sum += r.Forecast
		}
		out[name] = sum / float64(len(rows))
	}
	return out
}

// Interpretation holds the headline numbers of one forecast run.
type Interpretation struct {
	AverageForecast float64
	Growth          float64 // last minus first forecast year, in points
	HalfRange       float64 // mean of (upper-lower)/2
	OptimisticAvg   float64
	PessimisticAvg  float64
	ScenarioSpread  float64
}

// Interpret summarizes the event-adjusted forecast and its scenarios.
func Interpret(res *Result) Interpretation {
	var in Interpretation
	if res == nil || len(res.Forecast) == 0 {
		return in
	}
	rows := res.Forecast
	var sum, width float64
	for _, r := range rows {
		sum += r.Forecast
		width += r.UpperBound - r.LowerBound
	}
	n := float64(len(rows))
	in.AverageForecast = sum / n
	in.Growth = rows[len(rows)-1].Forecast - rows[0].Forecast
	in.HalfRange = width / n / 2

	avgs := ScenarioAverages(res.Scenarios)
	in.OptimisticAvg = avgs[model.ScenarioOptimistic]
	in.PessimisticAvg = avgs[model.ScenarioPessimistic]
	in.ScenarioSpread = in.OptimisticAvg - in.PessimisticAvg
	return in
}

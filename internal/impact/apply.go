package impact

import (
	"math"

	"InclusionSentinel/internal/calculator"
	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
)

// ApplyToForecast adds the effects of every link targeting indicator to a
// baseline forecast. An event's effect ramps linearly to its full signed
// magnitude over RampMonths once its lag has passed. Links whose event is
// unknown or undated are skipped. Bounds are left as forecast by the trend.
func (p Policy) ApplyToForecast(baseline []model.ForecastRecord, events []model.Event, links []model.ImpactLink, indicator string) []model.ForecastRecord {
	p = p.withDefaults()
	out := model.CopyForecast(baseline)
	for i := range out {
		out[i].EventEffect = 0
	}

	byID := make(map[string]model.Event, len(events))
	for _, e := range events {
		if _, dup := byID[e.RecordID]; !dup {
			byID[e.RecordID] = e
		}
	}

	applied := 0
	for _, link := range links {
		if link.RelatedIndicator != indicator || link.ParentID == "" {
			continue
		}
		ev, ok := byID[link.ParentID]
		if !ok || !ev.HasDate {
			logger.Log.Debugf("skipping link %s -> %s: event missing or undated", link.ParentID, indicator)
			continue
		}
		magnitude := p.SignedMagnitude(link)
		eventYear := ev.Date.Year()
		for i := range out {
			monthsAfter := float64((out[i].Year-eventYear)*12 - link.Lag())
			if monthsAfter <= 0 {
				continue
			}
			out[i].EventEffect += math.Min(1, monthsAfter/p.RampMonths) * magnitude
		}
		applied++
	}
	if applied == 0 {
		logger.Log.Infof("no impact links applied for %s", indicator)
	}

	for i := range out {
		out[i].Forecast = calculator.ClampPercent(out[i].Forecast + out[i].EventEffect)
	}
	return out
}

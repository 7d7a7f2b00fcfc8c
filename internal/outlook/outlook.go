// Package outlook measures forecast scenarios against policy targets.
package outlook

import (
	"errors"
	"fmt"
	"math"

	"InclusionSentinel/internal/forecast"
	"InclusionSentinel/internal/model"
)

// Tiers maps the final-year forecast as a share of the goal to a label,
// highest threshold first.
var Tiers = []struct {
	MinRatio float64
	Label    string
}{
	{1.0, "Target reached"},
	{0.9, "On track"},
	{0.75, "Within reach"},
	{0.5, "Behind"},
}

// DefaultTier is used below the lowest threshold.
const DefaultTier = "Far behind"

// ErrNoGoal is returned when no positive goal is available.
var ErrNoGoal = errors.New("no target goal")

// Progress describes how one scenario tracks a goal.
type Progress struct {
	IndicatorCode string
	Scenario      string
	Goal          float64
	CurrentYear   int
	Current       float64
	ProgressPct   float64 // current as % of goal, capped at 100
	ReachedYear   int     // first forecast year at or above goal, 0 if none
	FinalYear     int
	FinalRate     float64
	Gap           float64 // goal minus final forecast, in points
	GrowthNeeded  float64 // points per year from current to goal, 0 once reached
	Tier          string
}

func mapTier(ratio float64) string {
	for _, t := range Tiers {
		if ratio >= t.MinRatio {
			return t.Label
		}
	}
	return DefaultTier
}

// Evaluate compares a scenario of res against goal.
func Evaluate(res *forecast.Result, scenario string, goal float64) (*Progress, error) {
	if goal <= 0 {
		return nil, ErrNoGoal
	}
	if res == nil || res.Historical.Empty() {
		return nil, model.ErrInsufficientData
	}
	rows, ok := res.Scenarios[scenario]
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("scenario %q not in result", scenario)
	}

	last := res.Historical.Points[res.Historical.Len()-1]
	final := rows[len(rows)-1]
	p := &Progress{
		IndicatorCode: res.IndicatorCode,
		Scenario:      scenario,
		Goal:          goal,
		CurrentYear:   last.Year,
		Current:       last.Value,
		ProgressPct:   math.Min(100, last.Value/goal*100),
		FinalYear:     final.Year,
		FinalRate:     final.Forecast,
		Gap:           goal - final.Forecast,
		Tier:          mapTier(final.Forecast / goal),
	}
	for _, r := range rows {
		if r.Forecast >= goal {
			p.ReachedYear = r.Year
			break
		}
	}
	if p.ReachedYear == 0 && p.FinalYear > p.CurrentYear {
		p.GrowthNeeded = math.Max(0, (goal-p.Current)/float64(p.FinalYear-p.CurrentYear))
	}
	return p, nil
}

// GoalFromTargets returns the latest-dated target value among rows, or 0.
func GoalFromTargets(rows []model.Record) float64 {
	var goal float64
	var bestYear int
	for _, r := range rows {
		if r.ValueNumeric == nil {
			continue
		}
		year := 0
		if d, ok := r.Date(); ok {
			year = d.Year()
		}
		if goal == 0 || year >= bestYear {
			goal = *r.ValueNumeric
			bestYear = year
		}
	}
	return goal
}

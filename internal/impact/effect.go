package impact

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// EffectType is the functional form of an event's effect over time.
type EffectType string

const (
	// Immediate applies the full magnitude once the lag has passed.
	Immediate EffectType = "immediate"
	// Gradual ramps linearly to full magnitude over GradualMonths.
	Gradual EffectType = "gradual"
	// Distributed starts at full magnitude and decays by DecayRate per month.
	Distributed EffectType = "distributed"
)

// ParseEffectType validates an effect type name.
func ParseEffectType(s string) (EffectType, error) {
	switch EffectType(s) {
	case Immediate, Gradual, Distributed:
		return EffectType(s), nil
	}
	return "", fmt.Errorf("unknown effect type %q", s)
}

// Effect returns the effect t months after the event. Unknown types yield 0.
func (p Policy) Effect(t, magnitude float64, lagMonths int, et EffectType) float64 {
	p = p.withDefaults()
	m := t - float64(lagMonths)
	if m < 0 {
		return 0
	}
	switch et {
	case Immediate:
		return magnitude
	case Gradual:
		return magnitude * math.Min(m/p.GradualMonths, 1)
	case Distributed:
		return magnitude * math.Pow(p.DecayRate, m)
	}
	return 0
}

// EffectPoint is the effect value at one date.
type EffectPoint struct {
	Date  time.Time
	Value float64
}

// EffectSeries is a date-ordered effect curve.
type EffectSeries []EffectPoint

// ValueAt returns the value at date, carrying the last earlier value forward
// when date is not indexed. Dates before the first point yield 0.
func (s EffectSeries) ValueAt(date time.Time) float64 {
	i := sort.Search(len(s), func(i int) bool { return s[i].Date.After(date) })
	if i == 0 {
		return 0
	}
	return s[i-1].Value
}

// monthEnd returns the last day of t's month.
func monthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, t.Location())
}

// EffectOverTime samples the effect at HorizonMonths consecutive month ends
// starting with the month of the event. Elapsed months are days/30.
func (p Policy) EffectOverTime(eventDate time.Time, magnitude float64, lagMonths int, et EffectType) EffectSeries {
	p = p.withDefaults()
	start := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, eventDate.Location())
	out := make(EffectSeries, p.HorizonMonths)
	first := monthEnd(start)
	for i := range out {
		d := monthEnd(time.Date(first.Year(), first.Month()+time.Month(i), 1, 0, 0, 0, 0, first.Location()))
		t := d.Sub(start).Hours() / 24 / 30
		out[i] = EffectPoint{Date: d, Value: p.Effect(t, magnitude, lagMonths, et)}
	}
	return out
}

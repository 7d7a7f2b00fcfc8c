// Package impact models how events move indicators over time: single-event
// effect curves, their combination, their overlay on a trend forecast and
// back-testing against observed changes.
package impact

import (
	"math"

	"InclusionSentinel/internal/model"
)

// Policy holds the constants of the effect model. Tests and config read the
// same values, so none of them are hidden in the formulas.
type Policy struct {
	// DefaultMagnitude is used, signed by direction, when a link has no magnitude.
	DefaultMagnitude float64 `yaml:"default_magnitude"`
	// GradualMonths is the ramp length of the gradual effect type.
	GradualMonths float64 `yaml:"gradual_months"`
	// DecayRate is the monthly retention of the distributed effect type.
	DecayRate float64 `yaml:"decay_rate"`
	// RampMonths is the ramp length used when overlaying effects on a forecast.
	RampMonths float64 `yaml:"ramp_months"`
	// HorizonMonths is the length of a generated effect series.
	HorizonMonths int `yaml:"horizon_months"`
}

// DefaultPolicy returns the reference constants.
func DefaultPolicy() Policy {
	return Policy{
		DefaultMagnitude: 0.1,
		GradualMonths:    12,
		DecayRate:        0.95,
		RampMonths:       24,
		HorizonMonths:    36,
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.DefaultMagnitude == 0 {
		p.DefaultMagnitude = d.DefaultMagnitude
	}
	if p.GradualMonths <= 0 {
		p.GradualMonths = d.GradualMonths
	}
	if p.DecayRate <= 0 {
		p.DecayRate = d.DecayRate
	}
	if p.RampMonths <= 0 {
		p.RampMonths = d.RampMonths
	}
	if p.HorizonMonths <= 0 {
		p.HorizonMonths = d.HorizonMonths
	}
	return p
}

// SignedMagnitude resolves a link's magnitude: the recorded value, or the
// default when absent, negated for decreasing links.
func (p Policy) SignedMagnitude(l model.ImpactLink) float64 {
	v := p.withDefaults().DefaultMagnitude
	if l.ImpactMagnitude != nil && !math.IsNaN(*l.ImpactMagnitude) {
		v = *l.ImpactMagnitude
	}
	if l.Decreasing() {
		return -v
	}
	return v
}

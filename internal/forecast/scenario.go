package forecast

import (
	"InclusionSentinel/internal/calculator"
	"InclusionSentinel/internal/model"
)

// Multipliers scale the adjusted forecast into the outer scenarios.
type Multipliers struct {
	Optimistic  float64 `yaml:"optimistic"`
	Pessimistic float64 `yaml:"pessimistic"`
}

// DefaultMultipliers returns ×1.2 and ×0.8.
func DefaultMultipliers() Multipliers {
	return Multipliers{Optimistic: 1.2, Pessimistic: 0.8}
}

func (m Multipliers) withDefaults() Multipliers {
	d := DefaultMultipliers()
	if m.Optimistic <= 0 {
		m.Optimistic = d.Optimistic
	}
	if m.Pessimistic <= 0 {
		m.Pessimistic = d.Pessimistic
	}
	return m
}

// GenerateScenarios derives optimistic, base and pessimistic variants.
// Base is an unscaled copy; the others scale forecast and both bounds, then
// clamp each to [0, 100].
func GenerateScenarios(rows []model.ForecastRecord, m Multipliers) model.ScenarioSet {
	m = m.withDefaults()
	return model.ScenarioSet{
		model.ScenarioOptimistic:  scale(rows, m.Optimistic),
		model.ScenarioBase:        model.CopyForecast(rows),
		model.ScenarioPessimistic: scale(rows, m.Pessimistic),
	}
}

func scale(rows []model.ForecastRecord, k float64) []model.ForecastRecord {
	out := model.CopyForecast(rows)
	for i := range out {
		out[i].Forecast = calculator.ClampPercent(out[i].Forecast * k)
		out[i].UpperBound = calculator.ClampPercent(out[i].UpperBound * k)
		out[i].LowerBound = calculator.ClampPercent(out[i].LowerBound * k)
	}
	return out
}

// Package report renders analysis results as plain text.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/forecast"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/outlook"
)

// SummaryFile is the name of the forecast summary written by WriteFile callers.
const SummaryFile = "forecast_summary.txt"

var rule = strings.Repeat("=", 80)

// TargetSection is one forecast target as it appears in the report.
type TargetSection struct {
	Description string
	Result      *forecast.Result
	ProxyFor    string // primary indicator when a fallback was forecast
	Progress    *outlook.Progress

	// CombinedEffect is the merged event-effect curve read at EffectDate.
	CombinedEffect float64
	EffectLabel    string // e.g. "gradual, additive"; empty skips the line
	EffectDate     time.Time
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatForecastTable renders the base scenario of res.
func FormatForecastTable(res *forecast.Result) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%6s %13s %16s %16s %7s\n", "Year", "Forecast (%)", "Lower Bound (%)", "Upper Bound (%)", "Range"))
	for _, r := range forecast.ForecastTable(res, model.ScenarioBase) {
		b.WriteString(fmt.Sprintf("%6d %13.1f %16.1f %16.1f %7.1f\n", r.Year, r.Forecast, r.Lower, r.Upper, r.Range))
	}
	return b.String()
}

// FormatScenarioComparison lists the average forecast per scenario.
func FormatScenarioComparison(res *forecast.Result) string {
	var b strings.Builder
	b.WriteString("Scenario Comparison:\n")
	avgs := forecast.ScenarioAverages(res.Scenarios)
	for _, name := range model.ScenarioNames {
		if avg, ok := avgs[name]; ok {
			b.WriteString(fmt.Sprintf("  %s: %.1f%% average\n", capitalize(name), avg))
		}
	}
	return b.String()
}

// FormatInterpretation renders the headline numbers of res.
func FormatInterpretation(description string, res *forecast.Result) string {
	in := forecast.Interpret(res)
	first, last := 0, 0
	if n := len(res.Forecast); n > 0 {
		first, last = res.Forecast[0].Year, res.Forecast[n-1].Year
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s:\n", description))
	b.WriteString(fmt.Sprintf("  Average forecast (%d-%d): %.1f%%\n", first, last, in.AverageForecast))
	b.WriteString(fmt.Sprintf("  Projected growth: %+.1f percentage points\n", in.Growth))
	b.WriteString(fmt.Sprintf("  Average uncertainty range: ±%.1f percentage points\n", in.HalfRange))
	b.WriteString(fmt.Sprintf("  Scenario range: %.1f%% - %.1f%%\n", in.PessimisticAvg, in.OptimisticAvg))
	b.WriteString(fmt.Sprintf("  Total scenario spread: %.1f percentage points\n", in.ScenarioSpread))
	return b.String()
}

// FormatProgress renders progress toward a goal.
func FormatProgress(p *outlook.Progress) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Progress toward %.0f%% target (%s scenario): %s\n", p.Goal, capitalize(p.Scenario), p.Tier))
	b.WriteString(fmt.Sprintf("  Current rate (%d): %.1f%% (%.0f%% of target)\n", p.CurrentYear, p.Current, p.ProgressPct))
	if p.ReachedYear != 0 {
		b.WriteString(fmt.Sprintf("  Target reached: %d\n", p.ReachedYear))
	} else {
		b.WriteString(fmt.Sprintf("  Projected (%d): %.1f%%, %.1fpp gap\n", p.FinalYear, p.FinalRate, p.Gap))
		b.WriteString(fmt.Sprintf("  Avg growth needed: %.2fpp/year\n", p.GrowthNeeded))
	}
	return b.String()
}

// FormatMatrixSummary renders association matrix statistics.
func FormatMatrixSummary(s association.Summary) string {
	var b strings.Builder
	b.WriteString("Event-Indicator Association Matrix:\n")
	b.WriteString(fmt.Sprintf("  Events: %d (%d with impacts)\n", s.TotalEvents, s.EventsWithImpacts))
	b.WriteString(fmt.Sprintf("  Indicators: %d (%d with impacts)\n", s.TotalIndicators, s.IndicatorsWithImpacts))
	b.WriteString(fmt.Sprintf("  Impacts: %d (%d positive, %d negative)\n", s.TotalImpacts, s.PositiveImpacts, s.NegativeImpacts))
	b.WriteString(fmt.Sprintf("  Max positive: %.2f | Min: %.2f | Mean |impact|: %.2f\n", s.MaxPositive, s.MinNegative, s.MeanAbsMagnitude))
	return b.String()
}

// FormatValidation renders one back-test result.
func FormatValidation(v impact.ValidationResult) string {
	if !v.Validated {
		return fmt.Sprintf("  %s on %s: not validated (%s)\n", v.EventID, v.IndicatorCode, v.Reason)
	}
	rel := "n/a"
	if v.RelativeErrorPct != nil {
		rel = fmt.Sprintf("%.1f%%", *v.RelativeErrorPct)
	}
	return fmt.Sprintf("  %s on %s (event %s, lag %dm): predicted %.2f, observed %.2f, difference %.2f, relative error %s\n",
		v.EventID, v.IndicatorCode, v.EventDate.Format("2006-01-02"), v.LagMonths,
		v.PredictedImpact, v.ObservedChange, v.Difference, rel)
}

// FormatSummary renders the full forecast summary document.
func FormatSummary(title string, targets []TargetSection, matrix *association.Summary, validations []impact.ValidationResult) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(rule + "\n\n")

	for _, t := range targets {
		b.WriteString("\n" + t.Description + "\n")
		if t.ProxyFor != "" {
			b.WriteString(fmt.Sprintf("(proxy %s used for %s)\n", t.Result.IndicatorCode, t.ProxyFor))
		}
		b.WriteString(strings.Repeat("-", 80) + "\n")
		b.WriteString(FormatForecastTable(t.Result))
		b.WriteString("\n")
		b.WriteString(FormatScenarioComparison(t.Result))
		b.WriteString("\n")
	}

	if len(targets) > 0 {
		b.WriteString(rule + "\nFORECAST INTERPRETATION\n" + rule + "\n\n")
		for _, t := range targets {
			b.WriteString(FormatInterpretation(t.Description, t.Result))
			if t.EffectLabel != "" {
				b.WriteString(fmt.Sprintf("  Combined event effect (%s) by %s: %+.2f percentage points\n",
					t.EffectLabel, t.EffectDate.Format("2006-01-02"), t.CombinedEffect))
			}
			if t.Progress != nil {
				b.WriteString(FormatProgress(t.Progress))
			}
			b.WriteString("\n")
		}
	}

	if matrix != nil {
		b.WriteString(FormatMatrixSummary(*matrix))
		b.WriteString("\n")
	}

	if len(validations) > 0 {
		b.WriteString("Historical Validation:\n")
		for _, v := range validations {
			b.WriteString(FormatValidation(v))
		}
		b.WriteString("\n")
	}

	b.WriteString("Key Limitations:\n")
	b.WriteString("  - Sparse historical data (few survey points per indicator)\n")
	b.WriteString("  - Limited event impact data for some indicators\n")
	b.WriteString("  - Does not account for unknown future events\n")
	b.WriteString("  - Confidence intervals based on historical residuals only\n")
	return b.String()
}

// FormatDigest is a short message summarizing a run for chat delivery.
func FormatDigest(targets []TargetSection, failed []string) string {
	var b strings.Builder
	b.WriteString("<b>InclusionSentinel report</b>\n\n")
	for _, t := range targets {
		in := forecast.Interpret(t.Result)
		b.WriteString(fmt.Sprintf("%s: %.1f%% avg (%+.1fpp)", t.Result.IndicatorCode, in.AverageForecast, in.Growth))
		if t.Progress != nil {
			b.WriteString(" | " + t.Progress.Tier)
		}
		b.WriteString("\n")
	}
	if len(failed) > 0 {
		b.WriteString(fmt.Sprintf("\nNot available: %s\n", strings.Join(failed, ", ")))
	}
	return b.String()
}

// WriteFile writes text to dir/name, creating dir if needed, and returns the path.
func WriteFile(dir, name, text string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/forecast"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/outlook"
	"InclusionSentinel/internal/timeseries"
)

func sampleResult() *forecast.Result {
	rows := []model.ForecastRecord{
		{Year: 2025, Forecast: 54.84, LowerBound: 45.02, UpperBound: 64.66},
		{Year: 2026, Forecast: 57.68, LowerBound: 47.31, UpperBound: 68.05},
		{Year: 2027, Forecast: 60.53, LowerBound: 49.5, UpperBound: 71.56},
	}
	return &forecast.Result{
		IndicatorCode: "ACC_OWNERSHIP",
		Pillar:        "ACCESS",
		Historical:    timeseries.New([]timeseries.Point{{Year: 2021, Value: 46}, {Year: 2024, Value: 49}}),
		Forecast:      rows,
		Scenarios:     forecast.GenerateScenarios(rows, forecast.DefaultMultipliers()),
	}
}

func TestFormatForecastTable(t *testing.T) {
	out := FormatForecastTable(sampleResult())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header + 3 rows:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Forecast (%)") || !strings.Contains(lines[0], "Range") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "2025") || !strings.Contains(lines[1], "54.8") || !strings.Contains(lines[1], "19.6") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestFormatScenarioComparison(t *testing.T) {
	out := FormatScenarioComparison(sampleResult())
	optimistic := strings.Index(out, "Optimistic:")
	base := strings.Index(out, "Base: 57.7% average")
	pessimistic := strings.Index(out, "Pessimistic:")
	if optimistic < 0 || base < 0 || pessimistic < 0 {
		t.Fatalf("missing scenario lines:\n%s", out)
	}
	if !(optimistic < base && base < pessimistic) {
		t.Errorf("scenarios out of order:\n%s", out)
	}
}

func TestFormatInterpretation(t *testing.T) {
	out := FormatInterpretation("Account Ownership", sampleResult())
	for _, want := range []string{
		"Average forecast (2025-2027): 57.7%",
		"Projected growth: +5.7 percentage points",
		"Total scenario spread:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatValidation(t *testing.T) {
	rel := 15.789
	ok := FormatValidation(impact.ValidationResult{
		Validated: true, EventID: "EVT_0001", IndicatorCode: "ACC_MM_ACCOUNT",
		EventDate: time.Date(2021, 5, 11, 0, 0, 0, 0, time.UTC), LagMonths: 12,
		PredictedImpact: 4, ObservedChange: 4.75, Difference: 0.75, RelativeErrorPct: &rel,
	})
	if !strings.Contains(ok, "relative error 15.8%") || !strings.Contains(ok, "2021-05-11") {
		t.Errorf("validated line = %q", ok)
	}

	zero := FormatValidation(impact.ValidationResult{Validated: true, EventID: "EVT_0001", IndicatorCode: "X"})
	if !strings.Contains(zero, "relative error n/a") {
		t.Errorf("zero-change line = %q", zero)
	}

	failed := FormatValidation(impact.ValidationResult{EventID: "EVT_0009", IndicatorCode: "X", Reason: impact.ReasonNoLink})
	if !strings.Contains(failed, "not validated (No impact link found)") {
		t.Errorf("failed line = %q", failed)
	}
}

func TestFormatSummary(t *testing.T) {
	res := sampleResult()
	p, err := outlook.Evaluate(res, model.ScenarioBase, 60)
	if err != nil {
		t.Fatal(err)
	}
	out := FormatSummary("FORECAST SUMMARY",
		[]TargetSection{{Description: "Account Ownership", Result: res, Progress: p}, {Description: "Digital Payments", Result: res, ProxyFor: "USG_DIGITAL_PAY"}},
		&association.Summary{TotalEvents: 3, TotalImpacts: 4, PositiveImpacts: 3, NegativeImpacts: 1},
		[]impact.ValidationResult{{EventID: "EVT_0001", IndicatorCode: "X", Reason: impact.ReasonNoEvent}},
	)
	for _, want := range []string{
		"FORECAST SUMMARY",
		"(proxy ACC_OWNERSHIP used for USG_DIGITAL_PAY)",
		"FORECAST INTERPRETATION",
		"Progress toward 60% target (Base scenario): Target reached",
		"Impacts: 4 (3 positive, 1 negative)",
		"Historical Validation:",
		"Key Limitations:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestFormatDigest(t *testing.T) {
	out := FormatDigest([]TargetSection{{Result: sampleResult()}}, []string{"USG_DIGITAL_PAY"})
	if !strings.Contains(out, "ACC_OWNERSHIP: 57.7% avg (+5.7pp)") {
		t.Errorf("digest = %q", out)
	}
	if !strings.Contains(out, "Not available: USG_DIGITAL_PAY") {
		t.Errorf("digest = %q", out)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteFile(dir, SummaryFile, "hello")
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "hello" {
		t.Errorf("read back %q, %v", data, err)
	}
}

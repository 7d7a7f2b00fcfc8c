package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"InclusionSentinel/internal/calculator"
	"InclusionSentinel/internal/forecast"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/model"
)

// Target is one indicator the report forecasts. When the primary indicator
// has too little history the fallback proxy is forecast instead.
type Target struct {
	Name           string  `yaml:"name"`
	Description    string  `yaml:"description"`
	IndicatorCode  string  `yaml:"indicator_code"`
	Pillar         string  `yaml:"pillar"`
	FallbackCode   string  `yaml:"fallback_code"`
	FallbackPillar string  `yaml:"fallback_pillar"`
	Goal           float64 `yaml:"goal"` // policy target rate, 0 = none
}

// ValidationCase is a known event whose modelled impact is back-tested.
type ValidationCase struct {
	IndicatorCode  string  `yaml:"indicator_code"`
	EventID        string  `yaml:"event_id"`
	ObservedChange float64 `yaml:"observed_change"`
	PeriodStart    string  `yaml:"period_start"`
	PeriodEnd      string  `yaml:"period_end"`
}

// Period parses the case's observation window.
func (v ValidationCase) Period() (impact.Period, error) {
	start, ok := model.ParseDate(v.PeriodStart)
	if !ok {
		return impact.Period{}, fmt.Errorf("bad period_start %q", v.PeriodStart)
	}
	end, ok := model.ParseDate(v.PeriodEnd)
	if !ok {
		return impact.Period{}, fmt.Errorf("bad period_end %q", v.PeriodEnd)
	}
	return impact.Period{Start: start, End: end}, nil
}

// Config holds all application configuration.
type Config struct {
	Data struct {
		Dir          string `yaml:"dir"`
		File         string `yaml:"file"`
		URL          string `yaml:"url"`
		EvidenceFile string `yaml:"evidence_file"`
		CacheSize    int    `yaml:"cache_size"`
	} `yaml:"data"`
	Analysis struct {
		Targets         []Target            `yaml:"targets"`
		ForecastYears   []int               `yaml:"forecast_years"`
		ModelType       string              `yaml:"model_type"`
		ConfidenceLevel float64             `yaml:"confidence_level"`
		IncludeEvents   *bool               `yaml:"include_events"`
		EffectType      string              `yaml:"effect_type"`
		Combination     string              `yaml:"combination"`
		CombineBaseline float64             `yaml:"combine_baseline"`
		Policy          impact.Policy       `yaml:"policy"`
		Scenarios       forecast.Multipliers `yaml:"scenarios"`
		Validations     []ValidationCase    `yaml:"validations"`
	} `yaml:"analysis"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Report struct {
		Dir string `yaml:"dir"`
	} `yaml:"report"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// DefaultTargets are the access and usage headline indicators.
func DefaultTargets() []Target {
	return []Target{
		{
			Name:          "access",
			Description:   "Account Ownership Rate (% of adults with account)",
			IndicatorCode: "ACC_OWNERSHIP",
			Pillar:        "ACCESS",
			Goal:          60,
		},
		{
			Name:           "usage",
			Description:    "Digital Payment Usage (% of adults using digital payments)",
			IndicatorCode:  "USG_DIGITAL_PAY",
			Pillar:         "USAGE",
			FallbackCode:   "ACC_MM_ACCOUNT",
			FallbackPillar: "ACCESS",
		},
	}
}

// DefaultValidations back-tests the Telebirr launch against mobile money
// account growth.
func DefaultValidations() []ValidationCase {
	return []ValidationCase{{
		IndicatorCode:  "ACC_MM_ACCOUNT",
		EventID:        "EVT_0001",
		ObservedChange: 4.75,
		PeriodStart:    "2021-05-01",
		PeriodEnd:      "2024-12-31",
	}}
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATASET_FILE"); v != "" {
		cfg.Data.File = v
	}
	if v := os.Getenv("DATASET_URL"); v != "" {
		cfg.Data.URL = v
	}
	if v := os.Getenv("EVIDENCE_FILE"); v != "" {
		cfg.Data.EvidenceFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("REPORT_CRON"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v := os.Getenv("REPORT_DIR"); v != "" {
		cfg.Report.Dir = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("CONFIDENCE_LEVEL"); v != "" {
		if cl, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analysis.ConfidenceLevel = cl
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.File == "" {
		c.Data.File = "ethiopia_fi_unified_data.yaml"
	}
	if c.Data.EvidenceFile == "" {
		c.Data.EvidenceFile = "data/comparable_evidence.json"
	}
	if c.Data.CacheSize == 0 {
		c.Data.CacheSize = 16
	}
	if len(c.Analysis.Targets) == 0 {
		c.Analysis.Targets = DefaultTargets()
	}
	if len(c.Analysis.ForecastYears) == 0 {
		c.Analysis.ForecastYears = []int{2025, 2026, 2027}
	}
	if c.Analysis.ModelType == "" {
		c.Analysis.ModelType = string(calculator.Linear)
	}
	if c.Analysis.ConfidenceLevel == 0 {
		c.Analysis.ConfidenceLevel = 0.95
	}
	if c.Analysis.IncludeEvents == nil {
		on := true
		c.Analysis.IncludeEvents = &on
	}
	if c.Analysis.EffectType == "" {
		c.Analysis.EffectType = string(impact.Gradual)
	}
	if c.Analysis.Combination == "" {
		c.Analysis.Combination = string(impact.Additive)
	}
	if c.Analysis.Policy == (impact.Policy{}) {
		c.Analysis.Policy = impact.DefaultPolicy()
	}
	if c.Analysis.Scenarios == (forecast.Multipliers{}) {
		c.Analysis.Scenarios = forecast.DefaultMultipliers()
	}
	if c.Analysis.Validations == nil {
		c.Analysis.Validations = DefaultValidations()
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 6 1 * *"
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "reports"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/inclusion_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all required fields are set and in range.
func (c *Config) Validate() error {
	if c.Data.File == "" && c.Data.URL == "" {
		return fmt.Errorf("data.file or data.url is required")
	}
	if _, err := calculator.ParseModelType(c.Analysis.ModelType); err != nil {
		return fmt.Errorf("analysis.model_type: %w", err)
	}
	if c.Analysis.ConfidenceLevel <= 0 || c.Analysis.ConfidenceLevel >= 1 {
		return fmt.Errorf("analysis.confidence_level must be in (0, 1), got %v", c.Analysis.ConfidenceLevel)
	}
	if _, err := impact.ParseEffectType(c.Analysis.EffectType); err != nil {
		return fmt.Errorf("analysis.effect_type: %w", err)
	}
	if _, err := impact.ParseCombination(c.Analysis.Combination); err != nil {
		return fmt.Errorf("analysis.combination: %w", err)
	}
	if c.Analysis.Scenarios.Optimistic < 0 || c.Analysis.Scenarios.Pessimistic < 0 {
		return fmt.Errorf("analysis.scenarios multipliers must not be negative")
	}
	for i, t := range c.Analysis.Targets {
		if t.IndicatorCode == "" || t.Pillar == "" {
			return fmt.Errorf("analysis.targets[%d]: indicator_code and pillar are required", i)
		}
		if t.FallbackCode != "" && t.FallbackPillar == "" {
			return fmt.Errorf("analysis.targets[%d]: fallback_pillar is required with fallback_code", i)
		}
		if t.Goal < 0 || t.Goal > 100 {
			return fmt.Errorf("analysis.targets[%d]: goal must be in [0, 100]", i)
		}
	}
	for i, v := range c.Analysis.Validations {
		if v.IndicatorCode == "" || v.EventID == "" {
			return fmt.Errorf("analysis.validations[%d]: indicator_code and event_id are required", i)
		}
		if _, err := v.Period(); err != nil {
			return fmt.Errorf("analysis.validations[%d]: %w", i, err)
		}
	}
	return nil
}

// ForecastRequest builds the pipeline request for one indicator.
func (c *Config) ForecastRequest(code, pillar string) forecast.Request {
	return forecast.Request{
		IndicatorCode:   code,
		Pillar:          pillar,
		ForecastYears:   c.Analysis.ForecastYears,
		IncludeEvents:   *c.Analysis.IncludeEvents,
		ModelType:       calculator.ModelType(c.Analysis.ModelType),
		ConfidenceLevel: c.Analysis.ConfidenceLevel,
	}
}

// ForecastOptions builds the Forecaster options from the analysis section.
func (c *Config) ForecastOptions() forecast.Options {
	return forecast.Options{
		Policy:      c.Analysis.Policy,
		Multipliers: c.Analysis.Scenarios,
		Combiner:    impact.Combiner{Baseline: c.Analysis.CombineBaseline},
	}
}

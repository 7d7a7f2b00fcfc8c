package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/config"
	"InclusionSentinel/internal/evidence"
	"InclusionSentinel/internal/forecast"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/loader"
	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/metrics"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/notifier"
	"InclusionSentinel/internal/outlook"
	"InclusionSentinel/internal/recorder"
	"InclusionSentinel/internal/report"
)

// Scheduler runs the report pipeline on a cron schedule or on demand.
type Scheduler struct {
	Cron     *cron.Cron
	Config   *config.Config
	Loader   *loader.Loader
	Evidence *evidence.Store // optional
	Recorder recorder.Recorder
	Notifier notifier.Notifier
	Metrics  *metrics.Metrics
	Ctx      context.Context
}

// Run is the outcome of one report run.
type Run struct {
	Targets     []report.TargetSection
	Failed      []string
	Matrix      association.Summary
	Validations []impact.ValidationResult
	Text        string
	Path        string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, ld *loader.Loader, ev *evidence.Store,
	rec recorder.Recorder, n notifier.Notifier, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Config:   cfg,
		Loader:   ld,
		Evidence: ev,
		Recorder: rec,
		Notifier: n,
		Metrics:  m,
		Ctx:      ctx,
	}
}

// Register adds the report task on the configured cron expression.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc(s.Config.Schedule.ReportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Log.Info("scheduler stopped")
}

// RunReportNow executes the report task immediately.
func (s *Scheduler) RunReportNow() (*Run, error) {
	return s.RunReport(s.Ctx)
}

func (s *Scheduler) reportTask() {
	logger.Log.Info("running scheduled report")
	// Scheduled runs always re-read the dataset.
	s.Loader.ClearCache()
	run, err := s.RunReport(s.Ctx)
	if err != nil {
		logger.Log.Errorf("report run: %v", err)
		s.trySend(fmt.Sprintf("Report run failed: %v", err))
		return
	}
	s.trySend(report.FormatDigest(run.Targets, run.Failed))
}

// Forecaster loads the dataset and builds a Forecaster, filling unknown link
// magnitudes from comparable evidence when a store is configured.
func (s *Scheduler) Forecaster(ctx context.Context) (*forecast.Forecaster, *model.Dataset, error) {
	ds, err := s.Loader.Load(ctx, s.Config.Data.File, true)
	if err != nil {
		return nil, nil, err
	}
	events := ds.Events()
	links := ds.Links()
	if s.Evidence != nil {
		links, _ = s.Evidence.FillLinks(links, events, evidence.MethodMedian)
	}
	return forecast.New(ds.Records, events, links, s.Config.ForecastOptions()), ds, nil
}

// RunReport forecasts every target, builds the association matrix, runs the
// validation cases, writes the summary file and records everything. A target
// without data is reported as not available instead of failing the run.
func (s *Scheduler) RunReport(ctx context.Context) (run *Run, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.Metrics.ReportRuns.WithLabelValues(status).Inc()
		s.Metrics.ReportDuration.Observe(time.Since(start).Seconds())
	}()

	f, ds, err := s.Forecaster(ctx)
	if err != nil {
		return nil, err
	}
	cfg := s.Config
	run = &Run{}

	for _, t := range cfg.Analysis.Targets {
		section, err := s.forecastTarget(ctx, f, ds, t)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Log.Warnf("%s: data not available: %v", t.IndicatorCode, err)
			run.Failed = append(run.Failed, t.IndicatorCode)
			continue
		}
		run.Targets = append(run.Targets, *section)
	}

	m := f.BuildAssociationMatrix(nil, nil)
	run.Matrix = association.Summarize(m)
	s.Metrics.ObserveMatrix(run.Matrix)
	if err := s.Recorder.RecordMatrix(&recorder.MatrixSnapshot{Matrix: m, Summary: run.Matrix}); err != nil {
		logger.Log.Errorf("record matrix: %v", err)
	}

	for _, vc := range cfg.Analysis.Validations {
		period, err := vc.Period()
		if err != nil {
			logger.Log.Warnf("skip validation %s/%s: %v", vc.EventID, vc.IndicatorCode, err)
			continue
		}
		res := f.ValidateAgainstHistorical(vc.IndicatorCode, vc.EventID, vc.ObservedChange, period)
		run.Validations = append(run.Validations, res)
		if res.RelativeErrorPct != nil {
			s.Metrics.ValidationErr.WithLabelValues(res.IndicatorCode, res.EventID).Set(*res.RelativeErrorPct)
		}
		if err := s.Recorder.RecordValidation(&res); err != nil {
			logger.Log.Errorf("record validation: %v", err)
		}
	}

	years := cfg.Analysis.ForecastYears
	title := fmt.Sprintf("FORECAST SUMMARY: ACCESS AND USAGE (%d-%d)", years[0], years[len(years)-1])
	run.Text = report.FormatSummary(title, run.Targets, &run.Matrix, run.Validations)
	run.Path, err = report.WriteFile(cfg.Report.Dir, report.SummaryFile, run.Text)
	if err != nil {
		return run, err
	}
	logger.Log.Infof("forecast summary saved to %s", run.Path)
	return run, nil
}

// forecastTarget forecasts one target, falling back to its proxy indicator.
func (s *Scheduler) forecastTarget(ctx context.Context, f *forecast.Forecaster, ds *model.Dataset, t config.Target) (*report.TargetSection, error) {
	cfg := s.Config
	res, err := f.ForecastIndicator(ctx, cfg.ForecastRequest(t.IndicatorCode, t.Pillar))
	usedFallback := false
	if err != nil && t.FallbackCode != "" && ctx.Err() == nil {
		logger.Log.Warnf("could not forecast %s: %v, trying proxy %s", t.IndicatorCode, err, t.FallbackCode)
		res, err = f.ForecastIndicator(ctx, cfg.ForecastRequest(t.FallbackCode, t.FallbackPillar))
		usedFallback = err == nil
	}
	if err != nil {
		s.Metrics.Forecasts.WithLabelValues(t.IndicatorCode, metrics.OutcomeFailed).Inc()
		return nil, err
	}

	outcome := metrics.OutcomeOK
	section := &report.TargetSection{Description: t.Description, Result: res}
	if usedFallback {
		outcome = metrics.OutcomeFallback
		section.ProxyFor = t.IndicatorCode
		logger.Log.Infof("used %s as proxy for %s", t.FallbackCode, t.IndicatorCode)
	}
	s.Metrics.Forecasts.WithLabelValues(t.IndicatorCode, outcome).Inc()
	s.Metrics.ObserveScenarios(res.IndicatorCode, res.Scenarios)

	if err := s.Recorder.RecordForecast(&recorder.ForecastRun{
		Target:        t.Name,
		IndicatorCode: res.IndicatorCode,
		Pillar:        res.Pillar,
		UsedFallback:  usedFallback,
		Metrics:       res.Metrics,
		Scenarios:     res.Scenarios,
	}); err != nil {
		logger.Log.Errorf("record forecast: %v", err)
	}

	et := impact.EffectType(cfg.Analysis.EffectType)
	method := impact.Combination(cfg.Analysis.Combination)
	if last := res.Forecast; len(last) > 0 {
		section.EffectDate = time.Date(last[len(last)-1].Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		if curve := f.CombinedEffect(res.IndicatorCode, et, method); len(curve) > 0 {
			section.CombinedEffect = curve.ValueAt(section.EffectDate)
			section.EffectLabel = fmt.Sprintf("%s, %s", et, method)
		}
	}

	goal := t.Goal
	if goal == 0 {
		goal = outlook.GoalFromTargets(ds.Targets(t.IndicatorCode))
	}
	if goal > 0 {
		if p, err := outlook.Evaluate(res, model.ScenarioBase, goal); err == nil {
			section.Progress = p
		}
	}
	return section, nil
}

func (s *Scheduler) trySend(text string) {
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, text, 3, time.Second); err != nil {
		logger.Log.Errorf("send notification: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"InclusionSentinel/internal/config"
	"InclusionSentinel/internal/evidence"
	"InclusionSentinel/internal/forecast"
	"InclusionSentinel/internal/loader"
	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/metrics"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/notifier"
	"InclusionSentinel/internal/recorder"
	"InclusionSentinel/internal/scheduler"
)

// app bundles the collaborators every subcommand needs.
type app struct {
	cfg      *config.Config
	sched    *scheduler.Scheduler
	evidence *evidence.Store
	recorder recorder.Recorder
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// newApp loads config, initializes logging and wires the pipeline.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var src loader.Source
	if cfg.Data.URL != "" {
		src = loader.NewHTTPSource(cfg.Data.URL, cfg.Proxy)
	} else {
		src = &loader.FileSource{BaseDir: cfg.Data.Dir}
	}
	logger.Log.Debugf("data source: %s", src.Name())
	ld, err := loader.New(src, cfg.Data.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("init loader: %w", err)
	}

	ev, err := evidence.Open(cfg.Data.EvidenceFile)
	if err != nil {
		return nil, fmt.Errorf("open evidence: %w", err)
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	var n notifier.Notifier = notifier.NoopNotifier{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		n = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	sched := scheduler.NewScheduler(ctx, cfg, ld, ev, rec, n, m)
	return &app{cfg: cfg, sched: sched, evidence: ev, recorder: rec}, nil
}

func (a *app) forecaster(ctx context.Context) (*forecast.Forecaster, *model.Dataset, error) {
	return a.sched.Forecaster(ctx)
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		logger.Log.Errorf("close recorder: %v", err)
	}
}

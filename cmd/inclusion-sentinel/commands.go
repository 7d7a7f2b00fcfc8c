package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"InclusionSentinel/internal/association"
	"InclusionSentinel/internal/calculator"
	"InclusionSentinel/internal/evidence"
	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
	"InclusionSentinel/internal/outlook"
	"InclusionSentinel/internal/report"
)

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func forecastCmd() *cobra.Command {
	var (
		indicator  string
		pillar     string
		modelType  string
		years      []int
		confidence float64
		noEvents   bool
		goal       float64
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast one indicator with confidence intervals and scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, ds, err := a.forecaster(ctx)
			if err != nil {
				return err
			}
			req := a.cfg.ForecastRequest(indicator, pillar)
			if modelType != "" {
				mt, err := calculator.ParseModelType(modelType)
				if err != nil {
					return err
				}
				req.ModelType = mt
			}
			if len(years) > 0 {
				req.ForecastYears = years
			}
			if confidence > 0 {
				req.ConfidenceLevel = confidence
			}
			if noEvents {
				req.IncludeEvents = false
			}

			res, err := f.ForecastIndicator(ctx, req)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"indicator": res.IndicatorCode,
					"pillar":    res.Pillar,
					"model":     res.ModelType,
					"metrics":   res.Metrics,
					"forecast":  res.Forecast,
					"scenarios": res.Scenarios,
				})
			}

			fmt.Println(report.FormatForecastTable(res))
			fmt.Println(report.FormatScenarioComparison(res))
			fmt.Println(report.FormatInterpretation(indicator, res))

			if goal == 0 {
				goal = outlook.GoalFromTargets(ds.Targets(indicator))
			}
			if goal > 0 {
				p, err := outlook.Evaluate(res, model.ScenarioBase, goal)
				if err != nil {
					return err
				}
				fmt.Println(report.FormatProgress(p))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&indicator, "indicator", "i", "", "Indicator code (required)")
	cmd.Flags().StringVarP(&pillar, "pillar", "p", "", "Pillar (required)")
	cmd.Flags().StringVarP(&modelType, "model", "m", "", "Trend model: linear or log")
	cmd.Flags().IntSliceVar(&years, "years", nil, "Forecast years, e.g. 2025,2026,2027")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence level in (0, 1)")
	cmd.Flags().BoolVar(&noEvents, "no-events", false, "Skip the event overlay")
	cmd.Flags().Float64Var(&goal, "goal", 0, "Target rate for progress evaluation")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of tables")
	cmd.MarkFlagRequired("indicator")
	cmd.MarkFlagRequired("pillar")

	return cmd
}

func matrixCmd() *cobra.Command {
	var indicators, events string

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Build the event by indicator association matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			f, _, err := a.forecaster(ctx)
			if err != nil {
				return err
			}
			m := f.BuildAssociationMatrix(splitList(indicators), splitList(events))
			summary := association.Summarize(m)
			fmt.Print(report.FormatMatrixSummary(summary))

			for i, ev := range m.Events {
				for j, ind := range m.Indicators {
					if v := m.Values[i][j]; v != 0 {
						fmt.Printf("  %-12s %-20s %+.2f\n", ev, ind, v)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&indicators, "indicators", "", "Comma separated indicator codes (default all linked)")
	cmd.Flags().StringVar(&events, "events", "", "Comma separated event ids (default all linked)")
	return cmd
}

func validateCmd() *cobra.Command {
	var (
		indicator string
		eventID   string
		observed  float64
		start     string
		end       string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compare an event's modelled impact with an observed change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			s, ok := model.ParseDate(start)
			if !ok {
				return fmt.Errorf("bad --start %q", start)
			}
			e, ok := model.ParseDate(end)
			if !ok {
				return fmt.Errorf("bad --end %q", end)
			}

			f, _, err := a.forecaster(ctx)
			if err != nil {
				return err
			}
			res := f.ValidateAgainstHistorical(indicator, eventID, observed, impact.Period{Start: s, End: e})
			if err := a.recorder.RecordValidation(&res); err != nil {
				logger.Log.Errorf("record validation: %v", err)
			}
			fmt.Println(report.FormatValidation(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&indicator, "indicator", "i", "", "Indicator code (required)")
	cmd.Flags().StringVarP(&eventID, "event", "e", "", "Event id (required)")
	cmd.Flags().Float64Var(&observed, "observed", 0, "Observed change in percentage points")
	cmd.Flags().StringVar(&start, "start", "", "Period start YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "Period end YYYY-MM-DD (required)")
	cmd.MarkFlagRequired("indicator")
	cmd.MarkFlagRequired("event")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	return cmd
}

func effectsCmd() *cobra.Command {
	var indicator, effectType, method string

	cmd := &cobra.Command{
		Use:   "effects",
		Short: "Print the combined monthly event effect on one indicator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if effectType == "" {
				effectType = a.cfg.Analysis.EffectType
			}
			if method == "" {
				method = a.cfg.Analysis.Combination
			}
			et, err := impact.ParseEffectType(effectType)
			if err != nil {
				return err
			}
			cm, err := impact.ParseCombination(method)
			if err != nil {
				return err
			}

			f, _, err := a.forecaster(ctx)
			if err != nil {
				return err
			}
			series := f.CombinedEffect(indicator, et, cm)
			if len(series) == 0 {
				fmt.Printf("No events linked to %s\n", indicator)
				return nil
			}
			for _, p := range series {
				fmt.Printf("%s  %+.3f\n", p.Date.Format("2006-01"), p.Value)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&indicator, "indicator", "i", "", "Indicator code (required)")
	cmd.Flags().StringVar(&effectType, "type", "", "Effect shape: immediate, gradual or distributed")
	cmd.Flags().StringVar(&method, "method", "", "Combination: additive, multiplicative or max")
	cmd.MarkFlagRequired("indicator")
	return cmd
}

func evidenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evidence",
		Short: "Manage comparable-country evidence",
	}
	cmd.AddCommand(evidenceAddCmd())
	cmd.AddCommand(evidenceEstimateCmd())
	return cmd
}

func evidenceAddCmd() *cobra.Command {
	var ev evidence.Evidence

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one comparable-country observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.evidence.Add(ev)
		},
	}

	cmd.Flags().StringVar(&ev.EventType, "event-type", "", "Event category, e.g. product_launch (required)")
	cmd.Flags().StringVar(&ev.Country, "country", "", "Comparable country")
	cmd.Flags().StringVar(&ev.Indicator, "indicator", "", "Indicator code (required)")
	cmd.Flags().Float64Var(&ev.ImpactMagnitude, "magnitude", 0, "Observed impact magnitude")
	cmd.Flags().IntVar(&ev.LagMonths, "lag", 0, "Observed lag in months")
	cmd.Flags().StringVar(&ev.Source, "source", "", "Citation")
	cmd.Flags().StringVar(&ev.Notes, "notes", "", "Free text")
	cmd.MarkFlagRequired("event-type")
	cmd.MarkFlagRequired("indicator")
	return cmd
}

func evidenceEstimateCmd() *cobra.Command {
	var eventType, indicator, method string

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate an impact from comparable evidence",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			est := a.evidence.Estimate(eventType, indicator, method)
			if !est.Estimated {
				fmt.Println(est.Reason)
				return nil
			}
			fmt.Printf("Impact magnitude: %.2f (%s of %d)\n", est.ImpactMagnitude, est.Method, est.EvidenceCount)
			fmt.Printf("Lag months:       %d\n", est.LagMonths)
			fmt.Printf("Countries:        %s\n", strings.Join(est.Countries, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&eventType, "event-type", "", "Event category (required)")
	cmd.Flags().StringVar(&indicator, "indicator", "", "Indicator code (required)")
	cmd.Flags().StringVar(&method, "method", evidence.MethodMedian, "median, mean, min or max")
	cmd.MarkFlagRequired("event-type")
	cmd.MarkFlagRequired("indicator")
	return cmd
}

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run the full forecast report once and write the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.sched.RunReportNow()
			if err != nil {
				return err
			}
			fmt.Println(run.Text)
			fmt.Printf("Summary written to %s\n", run.Path)
			return nil
		},
	}
}

func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the report on its cron schedule and serve metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sched.Register(); err != nil {
				return err
			}
			a.sched.Start()
			defer a.sched.Stop()

			var srv *http.Server
			if a.cfg.Metrics.Addr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				srv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}
				go func() {
					logger.Log.Infof("metrics listening on %s", a.cfg.Metrics.Addr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Log.Errorf("metrics server: %v", err)
					}
				}()
			}

			logger.Log.Infof("inclusion-sentinel scheduled (%s)", a.cfg.Schedule.ReportCron)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logger.Log.Infof("received signal %v, shutting down", sig)
			cancel()

			if srv != nil {
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Log.Errorf("metrics shutdown: %v", err)
				}
			}
			return nil
		},
	}
}

package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"InclusionSentinel/internal/impact"
	"InclusionSentinel/internal/logger"
	"InclusionSentinel/internal/model"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			target         TEXT,
			indicator_code TEXT NOT NULL,
			pillar         TEXT,
			used_fallback  INTEGER,
			model_type     TEXT,
			rmse           REAL,
			mae            REAL,
			r2             REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_runs_ts ON forecast_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_rows (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           INTEGER NOT NULL REFERENCES forecast_runs(id),
			scenario         TEXT NOT NULL,
			year             INTEGER NOT NULL,
			forecast         REAL,
			lower_bound      REAL,
			upper_bound      REAL,
			confidence_level REAL,
			event_effect     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_rows_run ON forecast_rows(run_id)`,

		`CREATE TABLE IF NOT EXISTS matrix_summaries (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp               INTEGER NOT NULL,
			total_events            INTEGER,
			total_indicators        INTEGER,
			total_impacts           INTEGER,
			positive_impacts        INTEGER,
			negative_impacts        INTEGER,
			events_with_impacts     INTEGER,
			indicators_with_impacts INTEGER,
			max_positive            REAL,
			min_negative            REAL,
			mean_abs_magnitude      REAL
		)`,

		`CREATE TABLE IF NOT EXISTS matrix_cells (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			summary_id     INTEGER NOT NULL REFERENCES matrix_summaries(id),
			event_id       TEXT NOT NULL,
			indicator_code TEXT NOT NULL,
			value          REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matrix_cells_summary ON matrix_cells(summary_id)`,

		`CREATE TABLE IF NOT EXISTS validations (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			indicator_code     TEXT,
			event_id           TEXT,
			validated          INTEGER,
			reason             TEXT,
			predicted_impact   REAL,
			observed_change    REAL,
			difference         REAL,
			relative_error_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_validations_ts ON validations(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps a nil pointer to SQL NULL.
func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (r *SQLiteRecorder) RecordForecast(run *ForecastRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO forecast_runs
		(timestamp, target, indicator_code, pillar, used_fallback, model_type, rmse, mae, r2)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), run.Target, run.IndicatorCode, run.Pillar, run.UsedFallback,
		run.Metrics.ModelType, run.Metrics.RMSE, run.Metrics.MAE, nullable(run.Metrics.R2),
	)
	if err != nil {
		return fmt.Errorf("insert forecast run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, name := range model.ScenarioNames {
		for _, row := range run.Scenarios[name] {
			if _, err := tx.Exec(`INSERT INTO forecast_rows
				(run_id, scenario, year, forecast, lower_bound, upper_bound, confidence_level, event_effect)
				VALUES (?,?,?,?,?,?,?,?)`,
				runID, name, row.Year, row.Forecast, row.LowerBound, row.UpperBound,
				row.ConfidenceLevel, row.EventEffect,
			); err != nil {
				return fmt.Errorf("insert forecast row: %w", err)
			}
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordMatrix(snap *MatrixSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s := snap.Summary
	res, err := tx.Exec(`INSERT INTO matrix_summaries
		(timestamp, total_events, total_indicators, total_impacts, positive_impacts, negative_impacts,
		 events_with_impacts, indicators_with_impacts, max_positive, min_negative, mean_abs_magnitude)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), s.TotalEvents, s.TotalIndicators, s.TotalImpacts,
		s.PositiveImpacts, s.NegativeImpacts, s.EventsWithImpacts, s.IndicatorsWithImpacts,
		s.MaxPositive, s.MinNegative, s.MeanAbsMagnitude,
	)
	if err != nil {
		return fmt.Errorf("insert matrix summary: %w", err)
	}
	summaryID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// Zero cells mean "no effect" and are not stored.
	if m := snap.Matrix; !m.Empty() {
		for i, event := range m.Events {
			for j, indicator := range m.Indicators {
				v := m.Values[i][j]
				if v == 0 {
					continue
				}
				if _, err := tx.Exec(`INSERT INTO matrix_cells
					(summary_id, event_id, indicator_code, value) VALUES (?,?,?,?)`,
					summaryID, event, indicator, v,
				); err != nil {
					return fmt.Errorf("insert matrix cell: %w", err)
				}
			}
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordValidation(res *impact.ValidationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO validations
		(timestamp, indicator_code, event_id, validated, reason,
		 predicted_impact, observed_change, difference, relative_error_pct)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), res.IndicatorCode, res.EventID, res.Validated, res.Reason,
		res.PredictedImpact, res.ObservedChange, res.Difference, nullable(res.RelativeErrorPct),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	logger.Log.Info("closing sqlite recorder")
	return r.db.Close()
}

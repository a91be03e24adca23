package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"PairFeed/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	now    func() time.Time
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{
		db:     db,
		now:    time.Now,
		logger: logger.With().Str("component", "recorder").Logger(),
	}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS payload_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			interval      TEXT NOT NULL,
			updated       INTEGER,
			records       INTEGER,
			first_ts      INTEGER,
			last_ts       INTEGER,
			session_open  REAL,
			session_high  REAL,
			session_low   REAL,
			session_close REAL,
			volume_sum    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payload_ts ON payload_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecasts (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			model        TEXT NOT NULL,
			generated    INTEGER,
			horizon_days INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecast_ts ON forecasts(timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_points (
			forecast_id INTEGER NOT NULL REFERENCES forecasts(id),
			step        INTEGER NOT NULL,
			ts          INTEGER NOT NULL,
			yhat        REAL,
			yhat_lower  REAL,
			yhat_upper  REAL,
			PRIMARY KEY (forecast_id, step)
		)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			status           TEXT,
			intraday_records INTEGER,
			daily_records    INTEGER,
			forecast_model   TEXT,
			files            INTEGER,
			error            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordPayload(p *model.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := p.Meta.SessionOHLC
	_, err := r.db.Exec(`INSERT INTO payload_snapshots
		(timestamp, symbol, interval, updated, records, first_ts, last_ts,
		 session_open, session_high, session_low, session_close, volume_sum)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), p.Symbol, p.Interval, p.Updated, p.Meta.Records,
		p.Meta.FirstTS, p.Meta.LastTS,
		sess.Open, sess.High, sess.Low, sess.Close, p.Meta.VolumeSum,
	)
	return err
}

func (r *SQLiteRecorder) RecordForecast(f *model.ForecastResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO forecasts
		(timestamp, symbol, model, generated, horizon_days)
		VALUES (?,?,?,?,?)`,
		r.now().Unix(), f.Symbol, f.Model, f.Generated, f.HorizonDays,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, p := range f.Points {
		if _, err := tx.Exec(`INSERT INTO forecast_points
			(forecast_id, step, ts, yhat, yhat_lower, yhat_upper)
			VALUES (?,?,?,?,?,?)`,
			id, i+1, p.TS, p.YHat, p.YLower, p.YUpper,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO runs
		(timestamp, status, intraday_records, daily_records, forecast_model, files, error)
		VALUES (?,?,?,?,?,?,?)`,
		r.now().Unix(), evt.Status, evt.IntradayRecords, evt.DailyRecords,
		evt.ForecastModel, evt.Files, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

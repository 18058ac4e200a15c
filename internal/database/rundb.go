package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/compscan/compscan/internal/model"
)

// dbFileName is the SQLite file name inside the data directory.
const dbFileName = "compscan.db"

// dateLayout is the ISO date format used for run dates.
const dateLayout = "2006-01-02"

// RunDB provides SQLite-based storage for monitoring run history.
// It manages connection pooling and provides methods for CRUD operations.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Run reports store one assembled report per run date as JSON.
	CREATE TABLE IF NOT EXISTS run_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_date TEXT NOT NULL UNIQUE,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		summary_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_date ON run_reports(run_date);

	-- Entity outcomes store per-entity results for history queries.
	CREATE TABLE IF NOT EXISTS entity_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_date TEXT NOT NULL,
		entity TEXT NOT NULL,
		classification TEXT,
		score REAL,
		baseline_date TEXT,
		error_stage TEXT,
		error_message TEXT,
		UNIQUE(run_date, entity)
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_entity ON entity_outcomes(entity);
	CREATE INDEX IF NOT EXISTS idx_outcomes_date ON entity_outcomes(run_date);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun saves a run's report and per-entity outcomes. Saving the same
// run date again replaces the previous rows, matching the archive's
// overwrite-on-rerun behavior.
func (rdb *RunDB) SaveRun(ctx context.Context, report *model.IntelligenceReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}
	runDate := report.RunDate.Format(dateLayout)

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO run_reports (run_date, report_json, summary_json)
	VALUES (?, ?, ?)
	ON CONFLICT(run_date) DO UPDATE SET
		report_json = excluded.report_json,
		summary_json = excluded.summary_json,
		timestamp = CURRENT_TIMESTAMP
	`, runDate, string(reportJSON), string(summaryJSON))
	if err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entity_outcomes WHERE run_date = ?`, runDate); err != nil {
		return fmt.Errorf("failed to clear previous outcomes: %w", err)
	}

	for _, s := range report.Sections {
		var baselineDate any
		if !s.Outcome.BaselineDate.IsZero() {
			baselineDate = s.Outcome.BaselineDate.Format(dateLayout)
		}
		var score any
		if s.Outcome.HasScore() {
			score = s.Outcome.Score
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO entity_outcomes (run_date, entity, classification, score, baseline_date)
		VALUES (?, ?, ?, ?, ?)
		`, runDate, s.Outcome.Entity, s.Outcome.Classification.WireName(), score, baselineDate)
		if err != nil {
			return fmt.Errorf("failed to save outcome for %s: %w", s.Outcome.Entity, err)
		}
	}

	for _, e := range report.Errors {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO entity_outcomes (run_date, entity, error_stage, error_message)
		VALUES (?, ?, ?, ?)
		`, runDate, e.Entity, string(e.Stage), e.Message)
		if err != nil {
			return fmt.Errorf("failed to save error for %s: %w", e.Entity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves the stored report for a run date.
// It returns nil with no error when the run date has no stored report.
func (rdb *RunDB) GetRun(ctx context.Context, runDate time.Time) (*model.IntelligenceReport, error) {
	var reportJSON string
	err := rdb.db.QueryRowContext(ctx, `
	SELECT report_json FROM run_reports WHERE run_date = ?
	`, runDate.Format(dateLayout)).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run report: %w", err)
	}

	var report model.IntelligenceReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// RunSummary contains summary information about a stored run.
// This is used for displaying run history without loading the full report.
type RunSummary struct {
	// RunDate is the date of the run.
	RunDate time.Time

	// Timestamp is when the run was stored.
	Timestamp time.Time

	// Summary holds the run's derived counts.
	Summary model.Summary
}

// ListRuns returns stored run summaries, newest first.
func (rdb *RunDB) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT run_date, timestamp, summary_json
	FROM run_reports
	ORDER BY run_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var rs RunSummary
		var runDate, timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&runDate, &timestamp, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		if rs.RunDate, err = time.Parse(dateLayout, runDate); err != nil {
			return nil, fmt.Errorf("failed to parse run date %q: %w", runDate, err)
		}
		rs.Timestamp = parseTimestamp(timestamp)
		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &rs.Summary); err != nil {
				return nil, fmt.Errorf("failed to parse summary: %w", err)
			}
		}
		results = append(results, rs)
	}

	return results, rows.Err()
}

// EntityHistory is one entity's outcome in one stored run.
type EntityHistory struct {
	// RunDate is the date of the run.
	RunDate time.Time

	// Entity is the configured entity name.
	Entity string

	// Classification is the recorded classification wire name, empty
	// when the entity failed on that run.
	Classification string

	// Score is the recorded similarity score. Valid only when the
	// classification carries a score.
	Score sql.NullFloat64

	// BaselineDate is the recorded baseline date, empty when the
	// entity had no baseline.
	BaselineDate string

	// ErrorStage and ErrorMessage describe the failure, empty on
	// success.
	ErrorStage   string
	ErrorMessage string
}

// Failed reports whether the entity failed on that run.
func (h EntityHistory) Failed() bool {
	return h.ErrorStage != ""
}

// History returns an entity's outcomes across stored runs, newest first.
func (rdb *RunDB) History(ctx context.Context, entity string) ([]EntityHistory, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT run_date, entity, classification, score, baseline_date, error_stage, error_message
	FROM entity_outcomes
	WHERE entity = ?
	ORDER BY run_date DESC
	`, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity history: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows)
}

// HistoryForRun returns every entity outcome stored for a run date, in
// entity order.
func (rdb *RunDB) HistoryForRun(ctx context.Context, runDate time.Time) ([]EntityHistory, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT run_date, entity, classification, score, baseline_date, error_stage, error_message
	FROM entity_outcomes
	WHERE run_date = ?
	ORDER BY entity
	`, runDate.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get run outcomes: %w", err)
	}
	defer rows.Close()

	return scanHistory(rows)
}

// ListEntities returns every entity name with a stored outcome, sorted.
func (rdb *RunDB) ListEntities(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT DISTINCT entity FROM entity_outcomes
	ORDER BY entity
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []string
	for rows.Next() {
		var entity string
		if err := rows.Scan(&entity); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

func scanHistory(rows *sql.Rows) ([]EntityHistory, error) {
	var results []EntityHistory
	for rows.Next() {
		var h EntityHistory
		var runDate string
		var classification, baselineDate, errorStage, errorMessage sql.NullString

		err := rows.Scan(&runDate, &h.Entity, &classification, &h.Score, &baselineDate, &errorStage, &errorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		if h.RunDate, err = time.Parse(dateLayout, runDate); err != nil {
			return nil, fmt.Errorf("failed to parse run date %q: %w", runDate, err)
		}
		h.Classification = classification.String
		h.BaselineDate = baselineDate.String
		h.ErrorStage = errorStage.String
		h.ErrorMessage = errorMessage.String
		results = append(results, h)
	}
	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"drivesort/internal/config"
	"drivesort/internal/organize"
	"drivesort/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with a different version are rejected.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists run reports backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Summary is the listing view of one stored run.
type Summary struct {
	OperationID     string    `json:"operation_id"`
	Status          string    `json:"status"`
	DryRun          bool      `json:"dry_run"`
	SourceFolder    string    `json:"source_folder"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds float64   `json:"duration_seconds"`
	TotalFiles      int       `json:"total_files"`
	FilesMoved      int       `json:"files_moved"`
	FilesSkipped    int       `json:"files_skipped"`
	FilesFailed     int       `json:"files_failed"`
}

// Open initializes or connects to the history database configured in cfg.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.History.DBPath)
}

// OpenPath initializes or connects to the history database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the database file to start over)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// newOperationID derives a sortable run identifier from the run start time
// with a short random suffix to break same-second collisions.
func newOperationID(start time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return start.UTC().Format("20060102_150405") + "_" + suffix
}

// SaveOperation stores one run report and returns its operation id.
func (s *Store) SaveOperation(ctx context.Context, report *organize.RunReport) (string, error) {
	if report == nil {
		return "", services.Wrap(services.ErrData, "history", "save", "nil report", nil)
	}

	operationID := newOperationID(report.StartTime)
	payload, err := json.Marshal(report)
	if err != nil {
		return "", services.Wrap(services.ErrData, "history", "save", "encode report", err)
	}

	dryRun := 0
	if report.DryRun {
		dryRun = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO operations (
			operation_id, status, dry_run, source_folder,
			started_at, finished_at, duration_seconds,
			total_files, files_moved, files_skipped, files_failed, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		operationID,
		string(report.Status),
		dryRun,
		report.SourceFolder,
		report.StartTime.UTC().Format(time.RFC3339),
		report.EndTime.UTC().Format(time.RFC3339),
		report.DurationSeconds,
		report.Stats.TotalFiles,
		report.Stats.FilesMoved,
		report.Stats.FilesSkipped,
		report.Stats.FilesFailed,
		string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert operation %s: %w", operationID, err)
	}
	return operationID, nil
}

// Get loads the full report for one operation id.
func (s *Store) Get(ctx context.Context, operationID string) (*organize.RunReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT report FROM operations WHERE operation_id = ?", operationID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "history", "get",
			fmt.Sprintf("operation %s not found", operationID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load operation %s: %w", operationID, err)
	}

	var report organize.RunReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, services.Wrap(services.ErrData, "history", "get",
			fmt.Sprintf("decode operation %s", operationID), err)
	}
	return &report, nil
}

// List returns run summaries newest first. A positive limit caps the result
// count; a positive days value restricts results to runs started within that
// many days.
func (s *Store) List(ctx context.Context, limit, days int) ([]Summary, error) {
	query := `
		SELECT operation_id, status, dry_run, source_folder,
		       started_at, duration_seconds,
		       total_files, files_moved, files_skipped, files_failed
		FROM operations`
	args := make([]any, 0, 2)
	if days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		query += " WHERE started_at >= ?"
		args = append(args, cutoff.Format(time.RFC3339))
	}
	query += " ORDER BY started_at DESC, operation_id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var (
			summary Summary
			dryRun  int
			started string
		)
		if err := rows.Scan(
			&summary.OperationID, &summary.Status, &dryRun, &summary.SourceFolder,
			&started, &summary.DurationSeconds,
			&summary.TotalFiles, &summary.FilesMoved, &summary.FilesSkipped, &summary.FilesFailed,
		); err != nil {
			return nil, err
		}
		summary.DryRun = dryRun != 0
		if ts, parseErr := time.Parse(time.RFC3339, started); parseErr == nil {
			summary.StartedAt = ts
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Cleanup deletes runs older than the given number of days and reports how
// many rows were removed. days <= 0 removes everything.
func (s *Store) Cleanup(ctx context.Context, days int) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if days <= 0 {
		res, err = s.db.ExecContext(ctx, "DELETE FROM operations")
	} else {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		res, err = s.db.ExecContext(ctx,
			"DELETE FROM operations WHERE started_at < ?", cutoff.Format(time.RFC3339))
	}
	if err != nil {
		return 0, fmt.Errorf("cleanup operations: %w", err)
	}
	return res.RowsAffected()
}

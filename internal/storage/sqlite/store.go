// Package sqlite provides a SQLite-backed run archive implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/platform/storage/sqlitemigrate"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage/sqlite/migrations"
)

// Store persists planner runs and telemetry in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite run archive and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutRun inserts one run record.
func (s *Store) PutRun(ctx context.Context, run storage.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(run.ID)
	if id == "" {
		return fmt.Errorf("run id is required")
	}
	createdAt := run.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO runs (
		   id, created_at, query, status, score, steps, nodes,
		   elapsed_ms, roster_digest, result_json
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		toMillis(createdAt),
		run.Query,
		run.Status,
		run.Score,
		run.Steps,
		run.Nodes,
		run.Elapsed.Milliseconds(),
		run.RosterDigest,
		run.ResultJSON,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put run: %w", err)
	}
	return nil
}

// GetRun returns one run record by ID.
func (s *Store) GetRun(ctx context.Context, id string) (storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RunRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RunRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.RunRecord{}, fmt.Errorf("run id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, created_at, query, status, score, steps, nodes,
		        elapsed_ms, roster_digest, result_json
		   FROM runs
		  WHERE id = ?`,
		id,
	)
	run, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.RunRecord{}, storage.ErrNotFound
		}
		return storage.RunRecord{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns one page of run records newest first. The page token is
// opaque to callers; it encodes the (created_at, id) position of the last
// record on the previous page.
func (s *Store) ListRuns(ctx context.Context, pageSize int, pageToken string) (storage.RunPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.RunPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.RunPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.RunPage{}, fmt.Errorf("page size must be greater than zero")
	}

	var (
		rows *sql.Rows
		err  error
	)
	if strings.TrimSpace(pageToken) == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, created_at, query, status, score, steps, nodes,
			        elapsed_ms, roster_digest, result_json
			   FROM runs
			  ORDER BY created_at DESC, id ASC
			  LIMIT ?`,
			pageSize+1,
		)
	} else {
		afterMillis, afterID, tokenErr := decodePageToken(pageToken)
		if tokenErr != nil {
			return storage.RunPage{}, tokenErr
		}
		rows, err = s.sqlDB.QueryContext(
			ctx,
			`SELECT id, created_at, query, status, score, steps, nodes,
			        elapsed_ms, roster_digest, result_json
			   FROM runs
			  WHERE created_at < ? OR (created_at = ? AND id > ?)
			  ORDER BY created_at DESC, id ASC
			  LIMIT ?`,
			afterMillis,
			afterMillis,
			afterID,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.RunPage{}, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	page := storage.RunPage{Runs: make([]storage.RunRecord, 0, pageSize)}
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return storage.RunPage{}, fmt.Errorf("list runs: %w", err)
		}
		page.Runs = append(page.Runs, run)
	}
	if err := rows.Err(); err != nil {
		return storage.RunPage{}, fmt.Errorf("list runs: %w", err)
	}
	if len(page.Runs) > pageSize {
		last := page.Runs[pageSize-1]
		page.Runs = page.Runs[:pageSize]
		page.NextPageToken = encodePageToken(toMillis(last.CreatedAt), last.ID)
	}
	return page, nil
}

// AppendTelemetryEvent records one operational telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(evt.EventName) == "" {
		return fmt.Errorf("event name is required")
	}
	if strings.TrimSpace(evt.Severity) == "" {
		return fmt.Errorf("severity is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	var attributes []byte
	if len(evt.Attributes) > 0 {
		payload, err := json.Marshal(evt.Attributes)
		if err != nil {
			return fmt.Errorf("marshal telemetry attributes: %w", err)
		}
		attributes = payload
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (timestamp, event_name, severity, run_id, attributes_json)
		 VALUES (?, ?, ?, ?, ?)`,
		toMillis(evt.Timestamp),
		evt.EventName,
		evt.Severity,
		evt.RunID,
		attributes,
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

func scanRun(scan func(...any) error) (storage.RunRecord, error) {
	var run storage.RunRecord
	var createdAt int64
	var elapsedMillis int64
	if err := scan(
		&run.ID,
		&createdAt,
		&run.Query,
		&run.Status,
		&run.Score,
		&run.Steps,
		&run.Nodes,
		&elapsedMillis,
		&run.RosterDigest,
		&run.ResultJSON,
	); err != nil {
		return storage.RunRecord{}, err
	}
	run.CreatedAt = fromMillis(createdAt)
	run.Elapsed = time.Duration(elapsedMillis) * time.Millisecond
	return run, nil
}

func encodePageToken(millis int64, id string) string {
	return strconv.FormatInt(millis, 10) + ":" + id
}

func decodePageToken(token string) (int64, string, error) {
	millisPart, id, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return 0, "", fmt.Errorf("malformed page token")
	}
	millis, err := strconv.ParseInt(millisPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed page token: %w", err)
	}
	return millis, id, nil
}

// isUniqueViolation reports whether an insert hit a uniqueness constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var (
	_ storage.RunStore       = (*Store)(nil)
	_ storage.TelemetryStore = (*Store)(nil)
)

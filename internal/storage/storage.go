// Package storage defines the persistence interfaces for the scheduler's
// run archive and operational telemetry. Persisting results is a
// collaborator concern: the casting core never touches these interfaces,
// and a run with no archive configured uses the in-memory implementation.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested persistence record is missing. Callers
// use this to differentiate between legitimate "no such run" states and
// transport or data corruption failures.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates an insert collided with an existing record ID.
// Run IDs are generated per run, so a collision points at a caller reusing
// a record rather than at the store.
var ErrAlreadyExists = errors.New("record already exists")

// RunRecord captures one archived planner run: what was asked, how it
// ended, and the full result document for later inspection.
type RunRecord struct {
	ID           string
	CreatedAt    time.Time
	Query        string
	Status       string
	Score        int
	Steps        int
	Nodes        int
	Elapsed      time.Duration
	RosterDigest string
	ResultJSON   []byte
}

// RunPage describes a page of archived runs, newest first.
type RunPage struct {
	Runs          []RunRecord
	NextPageToken string
}

// RunStore persists planner run records.
type RunStore interface {
	PutRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, error)
	// ListRuns returns a page of run records newest first, starting after
	// the page token. A page size below one is an error.
	ListRuns(ctx context.Context, pageSize int, pageToken string) (RunPage, error)
}

// TelemetryEvent captures one operational observation emitted during a
// planner run.
type TelemetryEvent struct {
	Timestamp  time.Time
	EventName  string
	Severity   string
	RunID      string
	Attributes map[string]any
}

// TelemetryStore persists operational telemetry records for audits and
// after-the-fact run analysis.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, evt TelemetryEvent) error
}

// Package schedfakes provides lightweight storage fakes for tests that
// need to observe or fail persistence without a real store.
package schedfakes

import (
	"context"
	"errors"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage"
)

// RunStore is an in-memory RunStore fake. Records are exposed directly so
// tests can assert on what was written.
type RunStore struct {
	Runs map[string]storage.RunRecord
}

// NewRunStore constructs a RunStore fake with initialized state maps.
func NewRunStore() *RunStore {
	return &RunStore{Runs: make(map[string]storage.RunRecord)}
}

func (s *RunStore) PutRun(_ context.Context, run storage.RunRecord) error {
	if _, ok := s.Runs[run.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.Runs[run.ID] = run
	return nil
}

func (s *RunStore) GetRun(_ context.Context, id string) (storage.RunRecord, error) {
	run, ok := s.Runs[id]
	if !ok {
		return storage.RunRecord{}, storage.ErrNotFound
	}
	return run, nil
}

func (s *RunStore) ListRuns(_ context.Context, _ int, _ string) (storage.RunPage, error) {
	return storage.RunPage{}, nil
}

// TelemetryStore is an in-memory TelemetryStore fake recording every event
// in append order.
type TelemetryStore struct {
	Events []storage.TelemetryEvent
}

// NewTelemetryStore constructs an empty TelemetryStore fake.
func NewTelemetryStore() *TelemetryStore {
	return &TelemetryStore{}
}

func (s *TelemetryStore) AppendTelemetryEvent(_ context.Context, evt storage.TelemetryEvent) error {
	s.Events = append(s.Events, evt)
	return nil
}

// FailingStore fails every operation with the configured error. It stands
// in for a broken backing store in degradation tests.
type FailingStore struct {
	Err error
}

// NewFailingStore constructs a FailingStore with a default error.
func NewFailingStore() *FailingStore {
	return &FailingStore{Err: errors.New("store unavailable")}
}

func (s *FailingStore) PutRun(context.Context, storage.RunRecord) error {
	return s.Err
}

func (s *FailingStore) GetRun(context.Context, string) (storage.RunRecord, error) {
	return storage.RunRecord{}, s.Err
}

func (s *FailingStore) ListRuns(context.Context, int, string) (storage.RunPage, error) {
	return storage.RunPage{}, s.Err
}

func (s *FailingStore) AppendTelemetryEvent(context.Context, storage.TelemetryEvent) error {
	return s.Err
}

var (
	_ storage.RunStore       = (*RunStore)(nil)
	_ storage.TelemetryStore = (*TelemetryStore)(nil)
	_ storage.RunStore       = (*FailingStore)(nil)
	_ storage.TelemetryStore = (*FailingStore)(nil)
)

// Package memory provides an in-memory storage implementation. It backs
// tests and archive-less CLI runs; records vanish with the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage"
)

// Store keeps run and telemetry records in process memory. The zero value
// is not usable; create stores with New.
type Store struct {
	mu     sync.RWMutex
	runs   map[string]storage.RunRecord
	events []storage.TelemetryEvent
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]storage.RunRecord)}
}

// PutRun stores one run record.
func (s *Store) PutRun(ctx context.Context, run storage.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return storage.ErrAlreadyExists
	}
	s.runs[run.ID] = run
	return nil
}

// GetRun returns one run record by ID.
func (s *Store) GetRun(ctx context.Context, id string) (storage.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RunRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return storage.RunRecord{}, storage.ErrNotFound
	}
	return run, nil
}

// ListRuns returns a page of run records newest first. The page token is
// the composite sort key of the last record on the previous page.
func (s *Store) ListRuns(ctx context.Context, pageSize int, pageToken string) (storage.RunPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.RunPage{}, err
	}
	if pageSize <= 0 {
		return storage.RunPage{}, fmt.Errorf("page size must be greater than zero")
	}
	s.mu.RLock()
	all := make([]storage.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		all = append(all, run)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return sortKey(all[i]) < sortKey(all[j]) })

	page := storage.RunPage{Runs: make([]storage.RunRecord, 0, pageSize)}
	token := strings.TrimSpace(pageToken)
	for _, run := range all {
		if token != "" && sortKey(run) <= token {
			continue
		}
		page.Runs = append(page.Runs, run)
		if len(page.Runs) > pageSize {
			break
		}
	}
	if len(page.Runs) > pageSize {
		page.Runs = page.Runs[:pageSize]
		page.NextPageToken = sortKey(page.Runs[pageSize-1])
	}
	return page, nil
}

// AppendTelemetryEvent records one telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, evt storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

// TelemetryEvents returns a copy of every recorded telemetry event in
// append order, for test assertions.
func (s *Store) TelemetryEvents() []storage.TelemetryEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.TelemetryEvent, len(s.events))
	copy(out, s.events)
	return out
}

// sortKey orders runs newest first with the ID as a deterministic
// tie-break. Negating millis keeps the token comparison a plain string
// ordering.
func sortKey(run storage.RunRecord) string {
	const maxMillis = int64(1) << 62
	millis := run.CreatedAt.UTC().UnixMilli()
	return pad(maxMillis-millis) + "/" + run.ID
}

func pad(v int64) string {
	const width = 19
	digits := []byte("0000000000000000000")
	for i := width - 1; i >= 0 && v > 0; i-- {
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits)
}

var (
	_ storage.RunStore       = (*Store)(nil)
	_ storage.TelemetryStore = (*Store)(nil)
)

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage"
)

func TestGetRunMissingReturnsNotFound(t *testing.T) {
	store := New()
	_, err := store.GetRun(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutRunRoundTrip(t *testing.T) {
	store := New()
	run := storage.RunRecord{
		ID:        "run-1",
		CreatedAt: time.UnixMilli(1700000000000).UTC(),
		Query:     "feasible",
		Status:    "found",
		Steps:     5,
	}
	if err := store.PutRun(context.Background(), run); err != nil {
		t.Fatalf("put run: %v", err)
	}
	got, err := store.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if got.Query != "feasible" || got.Status != "found" || got.Steps != 5 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("expected created at %v, got %v", run.CreatedAt, got.CreatedAt)
	}
}

func TestListRunsNewestFirstWithPaging(t *testing.T) {
	store := New()
	base := time.UnixMilli(1700000000000).UTC()
	ids := []string{"run-a", "run-b", "run-c"}
	for i, id := range ids {
		err := store.PutRun(context.Background(), storage.RunRecord{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("put run %s: %v", id, err)
		}
	}

	first, err := store.ListRuns(context.Background(), 2, "")
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(first.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(first.Runs))
	}
	if first.Runs[0].ID != "run-c" || first.Runs[1].ID != "run-b" {
		t.Fatalf("expected newest first, got %s then %s", first.Runs[0].ID, first.Runs[1].ID)
	}
	if first.NextPageToken == "" {
		t.Fatal("expected next page token")
	}

	second, err := store.ListRuns(context.Background(), 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(second.Runs) != 1 || second.Runs[0].ID != "run-a" {
		t.Fatalf("unexpected second page: %+v", second.Runs)
	}
	if second.NextPageToken != "" {
		t.Fatalf("expected empty token at end, got %q", second.NextPageToken)
	}
}

func TestListRunsRejectsNonPositivePageSize(t *testing.T) {
	store := New()
	for _, size := range []int{0, -1} {
		if _, err := store.ListRuns(context.Background(), size, ""); err == nil {
			t.Fatalf("expected error for page size %d", size)
		}
	}
}

func TestTelemetryEventsAppendInOrder(t *testing.T) {
	store := New()
	for _, name := range []string{"run.started", "run.finished"} {
		err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{
			EventName: name,
			Severity:  "INFO",
		})
		if err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}
	events := store.TelemetryEvents()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventName != "run.started" || events[1].EventName != "run.finished" {
		t.Fatalf("unexpected order: %s then %s", events[0].EventName, events[1].EventName)
	}
}

package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/planner"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/score"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage/memory"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/testkit/schedfakes"
)

func TestEmitNilEmitterAndStoreAreNoOps(t *testing.T) {
	var emitter *Emitter
	if err := emitter.Emit(context.Background(), storage.TelemetryEvent{EventName: "x"}); err != nil {
		t.Fatalf("nil emitter: %v", err)
	}
	if err := NewEmitter(nil).Emit(context.Background(), storage.TelemetryEvent{EventName: "x"}); err != nil {
		t.Fatalf("nil store: %v", err)
	}
}

func TestEmitStampsMissingTimestamp(t *testing.T) {
	store := memory.New()
	emitter := NewEmitter(store)
	fixed := time.UnixMilli(1700000000000).UTC()
	emitter.clock = func() time.Time { return fixed }

	err := emitter.Emit(context.Background(), storage.TelemetryEvent{
		EventName: "run.started",
		Severity:  "INFO",
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := store.TelemetryEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].Timestamp.Equal(fixed) {
		t.Fatalf("expected clock timestamp %v, got %v", fixed, events[0].Timestamp)
	}
}

func TestRunFinishedSplitsBudgetCuts(t *testing.T) {
	tests := []struct {
		name         string
		result       planner.Result
		wantEvent    string
		wantSeverity string
	}{
		{
			name:         "found",
			result:       planner.Result{Query: planner.QueryFeasible, Status: planner.StatusFound},
			wantEvent:    EventRunFinished,
			wantSeverity: string(SeverityInfo),
		},
		{
			name:         "budget cut",
			result:       planner.Result{Query: planner.QueryOptimize, Status: planner.StatusBudgetExceeded},
			wantEvent:    EventBudgetExceeded,
			wantSeverity: string(SeverityWarn),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			emitter := NewEmitter(store)
			if err := emitter.RunFinished(context.Background(), "run-1", tt.result); err != nil {
				t.Fatalf("run finished: %v", err)
			}
			events := store.TelemetryEvents()
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].EventName != tt.wantEvent {
				t.Fatalf("event = %q, want %q", events[0].EventName, tt.wantEvent)
			}
			if events[0].Severity != tt.wantSeverity {
				t.Fatalf("severity = %q, want %q", events[0].Severity, tt.wantSeverity)
			}
		})
	}
}

func TestRunFinishedIncludesScoreWhenPresent(t *testing.T) {
	store := memory.New()
	emitter := NewEmitter(store)
	res := planner.Result{
		Query:  planner.QueryOptimize,
		Status: planner.StatusFound,
		Score:  &score.Breakdown{Total: 7},
	}
	if err := emitter.RunFinished(context.Background(), "run-1", res); err != nil {
		t.Fatalf("run finished: %v", err)
	}
	events := store.TelemetryEvents()
	if got := events[0].Attributes["score"]; got != 7 {
		t.Fatalf("score attribute = %v, want 7", got)
	}
}

func TestRunLayerRecordsCounters(t *testing.T) {
	store := memory.New()
	emitter := NewEmitter(store)
	info := planner.LayerInfo{Depth: 3, Frontier: 12, Generated: 40, Duplicates: 5, Pruned: 2}
	if err := emitter.RunLayer(context.Background(), "run-1", info); err != nil {
		t.Fatalf("run layer: %v", err)
	}
	events := store.TelemetryEvents()
	if events[0].EventName != EventRunLayer {
		t.Fatalf("event = %q, want %q", events[0].EventName, EventRunLayer)
	}
	if got := events[0].Attributes["depth"]; got != 3 {
		t.Fatalf("depth attribute = %v, want 3", got)
	}
}

func TestEmitSurfacesStoreFailure(t *testing.T) {
	emitter := NewEmitter(schedfakes.NewFailingStore())
	err := emitter.RunStarted(context.Background(), "run-1", planner.QueryFeasible)
	if err == nil {
		t.Fatal("expected store failure to surface")
	}
}

func TestRunStartedRecordsQuery(t *testing.T) {
	store := schedfakes.NewTelemetryStore()
	emitter := NewEmitter(store)
	if err := emitter.RunStarted(context.Background(), "run-1", planner.QueryOptimize); err != nil {
		t.Fatalf("run started: %v", err)
	}
	if len(store.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.Events))
	}
	evt := store.Events[0]
	if evt.EventName != EventRunStarted || evt.RunID != "run-1" {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if got := evt.Attributes["query"]; got != "optimize" {
		t.Fatalf("query attribute = %v, want optimize", got)
	}
}

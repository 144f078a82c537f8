// Package telemetry records planner lifecycle events to a telemetry store.
// Emission is best-effort: a failing or absent store degrades to nothing
// and never fails the run it observes.
package telemetry

import (
	"context"
	"time"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/planner"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Event names emitted across a planner run's lifecycle.
const (
	EventRunStarted     = "run.started"
	EventRunLayer       = "run.layer"
	EventRunFinished    = "run.finished"
	EventBudgetExceeded = "run.budget_exceeded"
)

// Emitter records operational telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, evt storage.TelemetryEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	return e.store.AppendTelemetryEvent(ctx, evt)
}

// RunStarted records the start of a planner run.
func (e *Emitter) RunStarted(ctx context.Context, runID string, query planner.Query) error {
	return e.Emit(ctx, storage.TelemetryEvent{
		EventName: EventRunStarted,
		Severity:  string(SeverityInfo),
		RunID:     runID,
		Attributes: map[string]any{
			"query": string(query),
		},
	})
}

// RunLayer records one completed search layer.
func (e *Emitter) RunLayer(ctx context.Context, runID string, info planner.LayerInfo) error {
	return e.Emit(ctx, storage.TelemetryEvent{
		EventName: EventRunLayer,
		Severity:  string(SeverityInfo),
		RunID:     runID,
		Attributes: map[string]any{
			"depth":      info.Depth,
			"frontier":   info.Frontier,
			"generated":  info.Generated,
			"duplicates": info.Duplicates,
			"pruned":     info.Pruned,
		},
	})
}

// RunFinished records a run outcome. Budget cuts are recorded under their
// own event name at warning severity so inconclusive runs stand out in the
// archive.
func (e *Emitter) RunFinished(ctx context.Context, runID string, res planner.Result) error {
	name := EventRunFinished
	severity := SeverityInfo
	if res.Status == planner.StatusBudgetExceeded {
		name = EventBudgetExceeded
		severity = SeverityWarn
	}
	attrs := map[string]any{
		"query":           string(res.Query),
		"status":          res.Status.String(),
		"nodes_expanded":  res.Stats.NodesExpanded,
		"nodes_generated": res.Stats.NodesGenerated,
		"depth_reached":   res.Stats.DepthReached,
		"elapsed_ms":      res.Stats.Elapsed.Milliseconds(),
	}
	if res.Score != nil {
		attrs["score"] = res.Score.Total
	}
	return e.Emit(ctx, storage.TelemetryEvent{
		EventName:  name,
		Severity:   string(severity),
		RunID:      runID,
		Attributes: attrs,
	})
}

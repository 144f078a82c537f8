// Package scheduler parses CLI flags and runs one casting query end to
// end: load the roster, search, archive the result, and print the report.
package scheduler

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/planner"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/ingest"
	entrypoint "github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/platform/cmd"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/platform/i18n/catalog"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/platform/id"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/report"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage/memory"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/storage/sqlite"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/telemetry"
)

// Exit codes map the search outcome onto the shell: scripts can branch on
// whether a cast was found without parsing the report.
const (
	ExitFound          = 0
	ExitError          = 1
	ExitUnsat          = 2
	ExitBudgetExceeded = 3
)

// Config holds scheduler command configuration.
type Config struct {
	Roster   string        `env:"SCHEDULER_ROSTER"`
	Mode     string        `env:"SCHEDULER_MODE" envDefault:"feasible"`
	MinSteps int           `env:"SCHEDULER_MIN_STEPS" envDefault:"-1"`
	MaxSteps int           `env:"SCHEDULER_MAX_STEPS" envDefault:"-1"`
	Workers  int           `env:"SCHEDULER_WORKERS"`
	Timeout  time.Duration `env:"SCHEDULER_TIMEOUT"`
	MaxNodes int           `env:"SCHEDULER_MAX_NODES"`
	Archive  string        `env:"SCHEDULER_ARCHIVE"`
	Locale   string        `env:"SCHEDULER_LANG" envDefault:"en-US"`
	JSON     bool          `env:"SCHEDULER_JSON"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Roster, "roster", cfg.Roster, "Roster document path (required)")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Query mode: feasible or optimize")
	fs.IntVar(&cfg.MinSteps, "min-steps", cfg.MinSteps, "Minimum trace length (-1 = roster default)")
	fs.IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "Maximum search depth (-1 = roster default)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Expansion workers per layer (0 = all CPUs)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Wall-clock search budget (0 = unlimited)")
	fs.IntVar(&cfg.MaxNodes, "max-nodes", cfg.MaxNodes, "Node budget (0 = unlimited)")
	fs.StringVar(&cfg.Archive, "archive", cfg.Archive, "Run archive SQLite path (empty = in-memory)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Report locale")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "Emit the report as JSON")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes one casting query and returns the exit code for its outcome.
func Run(ctx context.Context, cfg Config) (int, error) {
	var res planner.Result
	err := entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceScheduler, func(ctx context.Context) error {
		var runErr error
		res, runErr = run(ctx, cfg, os.Stdout)
		return runErr
	})
	if err != nil {
		return ExitError, err
	}
	return exitCode(res.Status), nil
}

func exitCode(status planner.Status) int {
	switch status {
	case planner.StatusFound:
		return ExitFound
	case planner.StatusUnsatWithinHorizon:
		return ExitUnsat
	case planner.StatusBudgetExceeded:
		return ExitBudgetExceeded
	default:
		return ExitError
	}
}

func run(ctx context.Context, cfg Config, out io.Writer) (planner.Result, error) {
	if cfg.Roster == "" {
		return planner.Result{}, fmt.Errorf("a roster path is required")
	}

	roster, err := ingest.LoadFile(cfg.Roster)
	if err != nil {
		return planner.Result{}, err
	}
	u, err := roster.Universe()
	if err != nil {
		return planner.Result{}, err
	}

	bounds := roster.SearchBounds()
	if cfg.MinSteps >= 0 {
		bounds.MinSteps = cfg.MinSteps
	}
	if cfg.MaxSteps >= 0 {
		bounds.MaxSteps = cfg.MaxSteps
	}
	pol := roster.CastingPolicy()
	req := planner.Request{
		Bounds: bounds,
		Budget: planner.Budget{
			MaxNodes:    cfg.MaxNodes,
			MaxDuration: cfg.Timeout,
		},
		Policy:  pol,
		Workers: cfg.Workers,
	}

	var query func(context.Context, *domain.Universe, planner.Request) (planner.Result, error)
	switch cfg.Mode {
	case "feasible":
		query = planner.Feasible
	case "optimize":
		query = planner.Optimize
	default:
		return planner.Result{}, fmt.Errorf("mode %q is not supported (want feasible or optimize)", cfg.Mode)
	}

	var runs storage.RunStore
	var events storage.TelemetryStore
	if cfg.Archive != "" {
		store, err := sqlite.Open(cfg.Archive)
		if err != nil {
			return planner.Result{}, fmt.Errorf("open archive: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close archive: %v", err)
			}
		}()
		runs, events = store, store
	} else {
		store := memory.New()
		runs, events = store, store
	}

	runID, err := id.NewID()
	if err != nil {
		return planner.Result{}, fmt.Errorf("generate run id: %w", err)
	}
	emitter := telemetry.NewEmitter(events)
	if err := emitter.RunStarted(ctx, runID, planner.Query(cfg.Mode)); err != nil {
		log.Printf("telemetry: %v", err)
	}
	req.OnLayer = func(info planner.LayerInfo) {
		if err := emitter.RunLayer(ctx, runID, info); err != nil {
			log.Printf("telemetry: %v", err)
		}
	}

	res, err := query(ctx, u, req)
	if err != nil {
		return planner.Result{}, err
	}
	if err := emitter.RunFinished(ctx, runID, res); err != nil {
		log.Printf("telemetry: %v", err)
	}

	if err := archive(ctx, runs, runID, roster, u, res, pol); err != nil {
		log.Printf("archive run: %v", err)
	}

	if cfg.JSON {
		if err := report.JSON(out, u, res, pol); err != nil {
			return planner.Result{}, err
		}
		return res, nil
	}
	if err := report.Text(out, u, res, pol, catalog.Default().Printer(cfg.Locale)); err != nil {
		return planner.Result{}, err
	}
	return res, nil
}

// archive stores the run outcome alongside the full report document, so a
// run can be read back later without re-running the search.
func archive(ctx context.Context, runs storage.RunStore, runID string, roster *ingest.Roster, u *domain.Universe, res planner.Result, pol domain.Policy) error {
	doc := report.Build(u, res, pol)
	resultJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	rec := storage.RunRecord{
		ID:           runID,
		CreatedAt:    time.Now().UTC(),
		Query:        string(res.Query),
		Status:       res.Status.String(),
		Steps:        res.Trace.Len(),
		Nodes:        res.Stats.NodesGenerated,
		Elapsed:      res.Stats.Elapsed,
		RosterDigest: roster.Digest(),
		ResultJSON:   resultJSON,
	}
	if res.Score != nil {
		rec.Score = res.Score.Total
	}
	return runs.PutRun(ctx, rec)
}

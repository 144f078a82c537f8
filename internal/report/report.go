// Package report renders planner results for human inspection and for
// scripting. The text encoding is a locale-aware status line, action
// script, cast sheet, and score table; the JSON encoding is a stable wire
// shape consumed by tooling. Both orderings follow universe index order,
// so two renders of the same result are byte-identical.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/message"

	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/domain"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/invariant"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/planner"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/score"
	"github.com/nicolesanchez-soto/cs1710-practice-scheduler/internal/casting/state"
)

// Step is one rendered trace transition.
type Step struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
}

// PieceCast is the final cast of one piece.
type PieceCast struct {
	Piece   string   `json:"piece"`
	Min     int      `json:"min"`
	Max     int      `json:"max"`
	Dancers []string `json:"dancers"`
}

// Document is the full report of one planner run: the stable shape the
// JSON encoding emits and the text encoding renders.
type Document struct {
	Query      string           `json:"query"`
	Status     string           `json:"status"`
	Steps      []Step           `json:"steps,omitempty"`
	Casts      []PieceCast      `json:"casts,omitempty"`
	Score      *score.Breakdown `json:"score,omitempty"`
	Violations invariant.Set    `json:"violations,omitempty"`
	Stats      planner.Stats    `json:"stats"`
}

// Build assembles the report document for a result. Violations are listed
// only when the result carries a witness that is not fully valid (budget
// cuts), or reports nothing at all.
func Build(u *domain.Universe, res planner.Result, pol domain.Policy) Document {
	doc := Document{
		Query:  string(res.Query),
		Status: res.Status.String(),
		Stats:  res.Stats,
		Score:  res.Score,
	}
	if !res.Witness() {
		return doc
	}

	final := res.Trace.Final()
	for i, line := range res.Trace.Script(u) {
		doc.Steps = append(doc.Steps, Step{Index: i + 1, Action: line})
	}
	doc.Casts = casts(u, final)
	if violations := invariant.Check(u, final, pol).Blocking(pol); len(violations) > 0 {
		doc.Violations = violations
	}
	return doc
}

func casts(u *domain.Universe, s state.Assignment) []PieceCast {
	out := make([]PieceCast, 0, u.PieceCount())
	for p := 0; p < u.PieceCount(); p++ {
		piece := u.PieceAt(p)
		cast := PieceCast{Piece: piece.ID, Min: piece.MinDancers, Max: piece.MaxDancers}
		for d := 0; d < u.DancerCount(); d++ {
			if s.Has(d, p) {
				cast.Dancers = append(cast.Dancers, u.DancerAt(d).ID)
			}
		}
		out = append(out, cast)
	}
	return out
}

// JSON writes the report document as indented JSON.
func JSON(w io.Writer, u *domain.Universe, res planner.Result, pol domain.Policy) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Build(u, res, pol)); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// Text writes the human-readable report. Labels resolve through the
// printer so the CLI's locale selection applies.
func Text(w io.Writer, u *domain.Universe, res planner.Result, pol domain.Policy, p *message.Printer) error {
	if p == nil {
		p = message.NewPrinter(message.MatchLanguage("en-US"))
	}
	doc := Build(u, res, pol)

	fmt.Fprintf(w, "%s: %s\n", p.Sprintf("scheduler.report.query"), doc.Query)
	fmt.Fprintf(w, "%s: %s\n", p.Sprintf("scheduler.report.status"), p.Sprintf("scheduler.status."+doc.Status))

	if len(doc.Steps) == 0 {
		fmt.Fprintf(w, "%s\n", p.Sprintf("scheduler.report.no_witness"))
		return writeStats(w, doc.Stats, p)
	}

	fmt.Fprintf(w, "\n%s:\n", p.Sprintf("scheduler.report.script"))
	for _, step := range doc.Steps {
		fmt.Fprintf(w, "  %2d. %s\n", step.Index, step.Action)
	}

	fmt.Fprintf(w, "\n%s:\n", p.Sprintf("scheduler.report.cast"))
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\n", p.Sprintf("scheduler.report.piece"), p.Sprintf("scheduler.report.dancers"))
	for _, cast := range doc.Casts {
		names := p.Sprintf("scheduler.report.uncast")
		if len(cast.Dancers) > 0 {
			names = strings.Join(cast.Dancers, ", ")
		}
		fmt.Fprintf(tw, "  %s (%d..%d)\t%s\n", cast.Piece, cast.Min, cast.Max, names)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: flush cast sheet: %w", err)
	}

	if doc.Score != nil {
		fmt.Fprintf(w, "\n%s:\n", p.Sprintf("scheduler.report.scores"))
		tw = tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			p.Sprintf("scheduler.report.dancer"),
			p.Sprintf("scheduler.report.score"),
			p.Sprintf("scheduler.report.must_have"),
			p.Sprintf("scheduler.report.preferred"),
			p.Sprintf("scheduler.report.avoided"),
		)
		for _, row := range doc.Score.Dancers {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%d\n", row.Dancer, row.Score, row.MustHave, row.Preferred, row.Avoided)
		}
		fmt.Fprintf(tw, "  %s\t%d\t\t\t\n", p.Sprintf("scheduler.report.total"), doc.Score.Total)
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("report: flush score table: %w", err)
		}
	}

	if len(doc.Violations) > 0 {
		fmt.Fprintf(w, "\n%s:\n", p.Sprintf("scheduler.report.violations"))
		for _, v := range doc.Violations {
			fmt.Fprintf(w, "  - %s: %s\n", v.Kind, v.Detail)
		}
	}

	fmt.Fprintln(w)
	return writeStats(w, doc.Stats, p)
}

func writeStats(w io.Writer, stats planner.Stats, p *message.Printer) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s:\n", p.Sprintf("scheduler.report.stats"))
	fmt.Fprintf(tw, "  %s\t%d\n", p.Sprintf("scheduler.report.nodes_expanded"), stats.NodesExpanded)
	fmt.Fprintf(tw, "  %s\t%d\n", p.Sprintf("scheduler.report.nodes_generated"), stats.NodesGenerated)
	fmt.Fprintf(tw, "  %s\t%d\n", p.Sprintf("scheduler.report.duplicates"), stats.Duplicates)
	fmt.Fprintf(tw, "  %s\t%d\n", p.Sprintf("scheduler.report.pruned"), stats.Pruned)
	fmt.Fprintf(tw, "  %s\t%d\n", p.Sprintf("scheduler.report.depth"), stats.DepthReached)
	fmt.Fprintf(tw, "  %s\t%s\n", p.Sprintf("scheduler.report.elapsed"), stats.Elapsed)
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("report: flush stats: %w", err)
	}
	return nil
}

package compat

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/agnivade/levenshtein"
	"github.com/dotnet/arcade-sub016/pkg/baseline"
	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/dotnet/arcade-sub016/pkg/rules"
	"github.com/k0kubun/pp/v3"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

// writer walks mappings, routes every difference through the baseline and
// keeps the running totals of one run.
type writer struct {
	logger        *zap.Logger
	engine        *rules.Engine
	rctx          *rules.Context
	suppressor    *baseline.Suppressor
	informational bool
	validate      bool

	total      int
	suppressed int
	counts     map[models.DifferenceType]int
	groups     []models.ReportGroup
	unused     []string
	// reported holds the printed differences that got past the baseline.
	reported []string
}

func newWriter(logger *zap.Logger, engine *rules.Engine, rctx *rules.Context, suppressor *baseline.Suppressor, informational, validate bool) *writer {
	return &writer{
		logger:        logger,
		engine:        engine,
		rctx:          rctx,
		suppressor:    suppressor,
		informational: informational,
		validate:      validate,
		counts:        make(map[models.DifferenceType]int),
	}
}

// visit evaluates every node of am and records the reportable differences
// under header. One-sided types are reported by the rules but their members
// are not descended into.
func (w *writer) visit(header string, am *mapping.AssemblyMapping) {
	var diffs []models.Difference
	collect := func(n mapping.Node) {
		diffs = append(diffs, w.evaluate(n)...)
	}
	mapping.Walk(am, mapping.Visitor{
		Assembly: func(a *mapping.AssemblyMapping) bool {
			collect(a)
			return true
		},
		Namespace: func(n *mapping.NamespaceMapping) bool {
			collect(n)
			return true
		},
		Type: func(t *mapping.TypeMapping) bool {
			collect(t)
			return t.HasLeft() && t.HasRight()
		},
		Member: func(m *mapping.MemberMapping) { collect(m) },
	})
	if len(diffs) == 0 {
		return
	}
	w.groups = append(w.groups, models.ReportGroup{Header: header, Differences: diffs})
}

// evaluate offers every non-Unchanged difference to the baseline. Only
// Incompatible ones count toward the verdict.
func (w *writer) evaluate(n mapping.Node) []models.Difference {
	var out []models.Difference
	for _, d := range w.engine.Evaluate(w.rctx, n) {
		if d.Kind == models.Unchanged {
			continue
		}
		if w.suppressor != nil && !w.suppressor.Include(d) {
			w.suppressed++
			w.logger.Debug("difference suppressed by baseline", zap.String("difference", d.String()))
			continue
		}
		w.counts[d.Kind]++
		if d.Kind.Breaking() {
			w.total++
		}
		if d.Kind.Breaking() || w.informational {
			out = append(out, d)
			w.reported = append(w.reported, d.String())
		}
	}
	return out
}

// finish collects the unused baseline entries once every mapping was visited.
func (w *writer) finish() {
	if w.suppressor == nil {
		return
	}
	for _, e := range w.suppressor.Unused() {
		w.unused = append(w.unused, e.Text)
		if hint, ok := closest(e.Text, w.reported); ok {
			w.logger.Warn("baseline entry matched nothing, a reported difference is close to it",
				zap.String("entry", e.Text), zap.String("source", e.Source), zap.Int("line", e.Line), zap.String("closest", hint))
			continue
		}
		w.logger.Debug("baseline entry matched nothing", zap.String("entry", e.Text), zap.String("source", e.Source), zap.Int("line", e.Line))
	}
	if w.validate {
		w.total += len(w.unused)
	}
}

// closest returns the candidate nearest to entry when it is within a fifth
// of the entry's length, which catches renamed parameters and typos.
func closest(entry string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(entry, c)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	if bestDist < 0 || bestDist > len(entry)/5 {
		return "", false
	}
	return best, true
}

// render writes the text report. Its lines can be fed back as a baseline.
func (w *writer) render(out io.Writer) error {
	for _, g := range w.groups {
		if _, err := fmt.Fprintln(out, g.Header); err != nil {
			return err
		}
		for _, d := range g.Differences {
			if _, err := fmt.Fprintln(out, d.String()); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(out, "%s: %d\n", models.TotalIssuesPrefix, w.total); err != nil {
		return err
	}
	if len(w.unused) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(out, models.UnusedBaselineHeader); err != nil {
		return err
	}
	for _, e := range w.unused {
		if _, err := fmt.Fprintln(out, e); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) verdict() models.Verdict {
	if w.total > 0 {
		return models.VerdictIncompatible
	}
	return models.VerdictCompatible
}

func (w *writer) differences() []models.Difference {
	var out []models.Difference
	for _, g := range w.groups {
		out = append(out, g.Differences...)
	}
	return out
}

// summary renders the per kind counts as a table.
func (w *writer) summary() (string, error) {
	buf := &bytes.Buffer{}
	table := tablewriter.NewWriter(buf)
	table.Header("Kind", "Count")
	for _, k := range models.AllDifferenceTypes {
		if k == models.Unchanged {
			continue
		}
		if err := table.Append([]string{string(k), strconv.Itoa(w.counts[k])}); err != nil {
			return "", err
		}
	}
	if err := table.Append([]string{"Suppressed", strconv.Itoa(w.suppressed)}); err != nil {
		return "", err
	}
	if err := table.Append([]string{"Unused baseline", strconv.Itoa(len(w.unused))}); err != nil {
		return "", err
	}
	if err := table.Render(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// logSummary logs the counts table and the coloured verdict. With debug
// logging on the reported differences are dumped as well.
func (w *writer) logSummary() {
	table, err := w.summary()
	if err != nil {
		w.logger.Warn("failed to render the summary table", zap.Error(err))
	} else {
		w.logger.Info("compatibility summary\n" + table)
	}

	if w.verdict() == models.VerdictCompatible {
		w.logger.Info(models.HighlightPassingString("surfaces are compatible"), zap.Int("issues", w.total))
	} else {
		w.logger.Info(models.HighlightFailingString("surfaces are incompatible"), zap.Int("issues", w.total))
	}

	if ce := w.logger.Check(zap.DebugLevel, "reported differences"); ce != nil && w.total > 0 {
		printer := pp.New()
		printer.WithLineInfo = false
		printer.SetColorScheme(models.GetFailingColorScheme())
		ce.Write(zap.String("dump", printer.Sprint(dumpable(w.differences()))))
	}
}

// dumpedDifference leaves out the declaration pointers, which reach the whole
// surface graph.
type dumpedDifference struct {
	Kind models.DifferenceType
	Text string
}

func dumpable(diffs []models.Difference) []dumpedDifference {
	out := make([]dumpedDifference, 0, len(diffs))
	for _, d := range diffs {
		out = append(out, dumpedDifference{Kind: d.Kind, Text: d.String()})
	}
	return out
}

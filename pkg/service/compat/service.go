// Package compat runs a compatibility check end to end: load both surfaces,
// map them, evaluate the rules and write the report.
package compat

import (
	"context"
	"io"

	"github.com/dotnet/arcade-sub016/pkg/models"
)

type Service interface {
	Check(ctx context.Context) (*Result, error)
	ListRules(ctx context.Context, w io.Writer) error
}

// SurfaceDB loads the declaration model of both sides.
type SurfaceDB interface {
	LoadContracts(ctx context.Context) ([]*models.Assembly, error)
	LoadImplementations(ctx context.Context, contracts []*models.Assembly) ([]*models.Assembly, error)
}

type ReportDB interface {
	InsertReport(ctx context.Context, report *models.CompatReport) error
}

// Result is the outcome of one check.
type Result struct {
	RunID       string
	Verdict     models.Verdict
	TotalIssues int
	// Differences are the reported differences in report order, informational
	// ones included only when they are printed.
	Differences    []models.Difference
	Suppressed     int
	UnusedBaseline []string
	Counts         map[models.DifferenceType]int
}

// Failed reports whether the run should fail the build.
func (r *Result) Failed() bool {
	return r.Verdict == models.VerdictIncompatible
}

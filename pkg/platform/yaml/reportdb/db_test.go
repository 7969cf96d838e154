package reportdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleReport() *models.CompatReport {
	return &models.CompatReport{
		RunID:       "7a1f",
		Contract:    "contracts",
		Verdict:     models.VerdictIncompatible,
		TotalIssues: 1,
		Groups: []models.ReportGroup{{
			Header: "Compat issues with assembly Contoso:",
			Differences: []models.Difference{{
				ID:      "TypesMustExist",
				Kind:    models.Incompatible,
				Message: "Type 'Contoso.Gone' does not exist in the implementation but it does exist in the contract.",
			}},
		}},
		Counts: map[models.DifferenceType]int{models.Incompatible: 1},
	}
}

func TestInsertReportNamesSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	db := New(zap.NewNop(), dir)
	ctx := context.Background()

	first := sampleReport()
	require.NoError(t, db.InsertReport(ctx, first))
	assert.Equal(t, "compat-report-1", first.Name)

	second := sampleReport()
	require.NoError(t, db.InsertReport(ctx, second))
	assert.Equal(t, "compat-report-2", second.Name)

	_, err := os.Stat(filepath.Join(dir, "compat-report-2.yaml"))
	assert.NoError(t, err)
}

func TestGetReportRoundTrip(t *testing.T) {
	db := New(zap.NewNop(), t.TempDir())
	ctx := context.Background()
	report := sampleReport()
	report.Name = "nightly"
	require.NoError(t, db.InsertReport(ctx, report))

	got, err := db.GetReport(ctx, "nightly")
	require.NoError(t, err)
	assert.Equal(t, report.Verdict, got.Verdict)
	assert.Equal(t, report.Groups, got.Groups)
	assert.Equal(t, 1, got.Counts[models.Incompatible])

	_, err = db.GetReport(ctx, "../escape")
	assert.Error(t, err)
}

// Package reportdb persists compatibility reports as yaml documents.
package reportdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/dotnet/arcade-sub016/pkg/platform/yaml"
	"github.com/dotnet/arcade-sub016/utils"
	"go.uber.org/zap"
	yamlLib "gopkg.in/yaml.v3"
)

// ReportPrefix names report files, e.g. compat-report-3.yaml.
const ReportPrefix = "compat-report"

type ReportDb struct {
	m      sync.Mutex
	logger *zap.Logger
	Path   string
}

func New(logger *zap.Logger, reportPath string) *ReportDb {
	return &ReportDb{
		logger: logger,
		Path:   reportPath,
	}
}

// InsertReport writes report to the next free report file. An unnamed report
// gets its name here.
func (db *ReportDb) InsertReport(ctx context.Context, report *models.CompatReport) error {
	db.m.Lock()
	defer db.m.Unlock()

	if report.Name == "" {
		lastIndex, err := yaml.FindLastIndex(db.Path, ReportPrefix)
		if err != nil {
			return err
		}
		report.Name = fmt.Sprintf("%s-%d", ReportPrefix, lastIndex)
	}

	data, err := yamlLib.Marshal(report)
	if err != nil {
		utils.LogError(db.logger, err, "failed to marshal the compat report", zap.String("report", report.Name))
		return fmt.Errorf("failed to marshal document to yaml: %w", err)
	}

	if err := yaml.WriteFile(ctx, db.logger, db.Path, report.Name, data); err != nil {
		utils.LogError(db.logger, err, "failed to write the compat report", zap.String("report", report.Name))
		return err
	}
	return nil
}

// GetReport reads a previously written report by name.
func (db *ReportDb) GetReport(ctx context.Context, name string) (*models.CompatReport, error) {
	path, err := yaml.ValidatePath(filepath.Join(db.Path, name+".yaml"))
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var report models.CompatReport
	decoder := yamlLib.NewDecoder(&yaml.ContextReader{Reader: file, Ctx: ctx})
	if err := decoder.Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode the compat report %s: %w", name, err)
	}
	return &report, nil
}

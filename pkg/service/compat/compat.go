package compat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/pkg/baseline"
	"github.com/dotnet/arcade-sub016/pkg/filter"
	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/dotnet/arcade-sub016/pkg/rules"
	"github.com/dotnet/arcade-sub016/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ Service = (*Compat)(nil)

type Compat struct {
	logger    *zap.Logger
	surfaceDB SurfaceDB
	reportDB  ReportDB
	registry  *rules.Registry
	config    *config.Config
	stdout    io.Writer
}

// New builds the check service. reportDB may be nil when no report is
// persisted.
func New(logger *zap.Logger, surfaceDB SurfaceDB, reportDB ReportDB, registry *rules.Registry, cfg *config.Config) *Compat {
	return &Compat{
		logger:    logger,
		surfaceDB: surfaceDB,
		reportDB:  reportDB,
		registry:  registry,
		config:    cfg,
		stdout:    os.Stdout,
	}
}

func (c *Compat) ListRules(_ context.Context, w io.Writer) error {
	return c.registry.ListRules(w)
}

// Check compares the configured surfaces. Setup problems such as missing
// files are returned as errors; incompatibilities are only reflected in the
// result.
func (c *Compat) Check(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	c.logger.Debug("starting compatibility check", zap.String("runId", runID))

	suppressor, err := c.loadBaseline()
	if err != nil {
		return nil, err
	}
	comparer, err := c.comparer()
	if err != nil {
		return nil, err
	}
	ignore, err := c.attributeIgnoreList()
	if err != nil {
		return nil, err
	}

	contracts, err := c.surfaceDB.LoadContracts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load the %s surface: %w", c.config.LeftOperand, err)
	}
	impls, err := c.surfaceDB.LoadImplementations(ctx, contracts)
	if err != nil {
		return nil, fmt.Errorf("failed to load the %s surface: %w", c.config.RightOperand, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	includeInternals := c.config.RespectInternals && anyInternalsVisibleTo(contracts)
	c.warnConflicts(includeInternals)

	f := c.buildFilter(includeInternals, filter.NewTypeIndex(contracts, impls))
	rctx := rules.NewContext(f, comparer)
	rctx.LeftTypes = filter.NewTypeIndex(contracts)
	rctx.RightTypes = filter.NewTypeIndex(impls)
	rctx.AttributeIgnore = ignore
	rctx.AllowDefaultInterfaceMethods = c.config.AllowDefaultInterfaceMethods
	if c.config.LeftOperand != "" {
		rctx.Contract = c.config.LeftOperand
	}
	if c.config.RightOperand != "" {
		rctx.Implementation = c.config.RightOperand
	}

	selected := c.registry.Select(rules.SelectOptions{
		EnforceOptionalRules: c.config.EnforceOptionalRules,
		ServicingMode:        c.config.MdilServicingMode,
	})
	engine := rules.NewEngine(c.logger.Named("rules"), selected)
	c.logger.Debug("rules selected", zap.Int("count", len(selected)))

	w := newWriter(c.logger, engine, rctx, suppressor, c.config.ReportInformational, c.config.ValidateBaseline)
	mapper := mapping.NewMapper(f, comparer)
	if c.config.GroupByAssembly {
		for _, am := range mapper.Map(contracts, impls) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !am.HasLeft() || !am.HasRight() {
				c.logger.Warn("assembly has no counterpart with the same name and is not compared",
					zap.String("assembly", am.Name()), zap.Bool("contract", am.HasLeft()), zap.Bool("implementation", am.HasRight()))
				continue
			}
			w.visit(fmt.Sprintf("%s %s:", models.AssemblyHeaderPrefix, am.Name()), am)
		}
	} else {
		contractSet := strings.Join(c.config.Contracts, ",")
		implSet := strings.Join(c.config.ImplDirs, ",")
		am := mapper.MapSet(contractSet, implSet, contracts, impls)
		w.visit(fmt.Sprintf("%s %s set %s and %s set %s:", models.SetHeaderPrefix,
			rctx.Implementation, implSet, rctx.Contract, contractSet), am)
	}
	w.finish()

	if err := c.writeReport(w); err != nil {
		return nil, err
	}
	w.logSummary()

	res := &Result{
		RunID:          runID,
		Verdict:        w.verdict(),
		TotalIssues:    w.total,
		Differences:    w.differences(),
		Suppressed:     w.suppressed,
		UnusedBaseline: w.unused,
		Counts:         w.counts,
	}
	if err := c.persist(ctx, w, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Compat) loadBaseline() (*baseline.Suppressor, error) {
	if len(c.config.Baseline) == 0 {
		return nil, nil
	}
	s := baseline.New(c.logger.Named("baseline"))
	for _, path := range c.config.Baseline {
		if err := s.AddFile(path); err != nil {
			utils.LogError(c.logger, err, "failed to load baseline", zap.String("path", path))
			return nil, err
		}
	}
	return s, nil
}

func (c *Compat) comparer() (mapping.Comparer, error) {
	if c.config.RemapFile == "" {
		return mapping.DefaultComparer{}, nil
	}
	rc, err := mapping.NewRemapComparer(c.config.RemapFile)
	if err != nil {
		utils.LogError(c.logger, err, "failed to load remap file", zap.String("path", c.config.RemapFile))
		return nil, err
	}
	c.logger.Debug("loaded remap rules", zap.Int("rules", rc.Len()))
	return rc, nil
}

func (c *Compat) attributeIgnoreList() (*filter.AttributeIgnoreList, error) {
	l := filter.NewAttributeIgnoreList()
	for _, path := range c.config.ExcludeAttributes {
		if err := l.AddFile(path); err != nil {
			utils.LogError(c.logger, err, "failed to load attribute exclusion file", zap.String("path", path))
			return nil, err
		}
	}
	return l, nil
}

func anyInternalsVisibleTo(contracts []*models.Assembly) bool {
	for _, a := range contracts {
		if a.HasAttribute(models.InternalsVisibleToAttribute) {
			return true
		}
	}
	return false
}

func (c *Compat) warnConflicts(includeInternals bool) {
	if c.config.MdilServicingMode && c.config.ExcludeNonBrowsable {
		c.logger.Warn("Enforcing MDIL servicing rules and exclusion of non-browsable types are both enabled, but they are not compatible so non-browsable types will not be excluded.")
	}
	if includeInternals && (c.config.MdilServicingMode || c.config.ExcludeNonBrowsable) {
		c.logger.Warn("Enforcing MDIL servicing rules or exclusion of non-browsable types are enabled along with including internals -- an incompatible combination. Internal members will not be included.")
	}
	if c.config.RespectInternals && !includeInternals {
		c.logger.Debug("no contract grants InternalsVisibleTo, comparing the public surface only")
	}
}

// buildFilter picks the visibility policy. Servicing mode wins over the
// browsable filter, and both win over internals.
func (c *Compat) buildFilter(includeInternals bool, idx *filter.TypeIndex) filter.Filter {
	opts := filter.Options{
		IncludeForwardedTypes: true,
		ExcludeAttributes:     c.config.SkipAttributes,
		Index:                 idx,
	}
	var f filter.Filter
	switch {
	case c.config.MdilServicingMode:
		f = filter.NewServicingPublicOnly(opts)
	case c.config.ExcludeNonBrowsable:
		f = filter.NewPublicEditorBrowsable(opts)
	case includeInternals:
		opts.IncludeForwardedTypes = false
		f = filter.NewInternalsAndPublic(opts)
	default:
		f = filter.NewPublicOnly(opts)
	}
	if c.config.ExcludeCompilerGenerated {
		f = filter.NewIntersection(f, filter.NewExcludeCompilerGenerated())
	}
	return f
}

// writeReport renders the text report to the configured output, stdout by
// default.
func (c *Compat) writeReport(w *writer) error {
	if c.config.Out == "" {
		return w.render(c.stdout)
	}
	if dir := filepath.Dir(c.config.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			utils.LogError(c.logger, err, "failed to create the output directory", zap.String("path", dir))
			return err
		}
	}
	f, err := os.Create(c.config.Out)
	if err != nil {
		utils.LogError(c.logger, err, "failed to create the output file", zap.String("path", c.config.Out))
		return err
	}
	if err := w.render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write the report: %w", err)
	}
	return f.Close()
}

func (c *Compat) persist(ctx context.Context, w *writer, res *Result) error {
	if c.reportDB == nil {
		return nil
	}
	report := &models.CompatReport{
		Version:        utils.Version,
		RunID:          res.RunID,
		Contract:       strings.Join(c.config.Contracts, ","),
		Implementation: strings.Join(c.config.ImplDirs, ","),
		Verdict:        res.Verdict,
		TotalIssues:    res.TotalIssues,
		Suppressed:     res.Suppressed,
		Groups:         w.groups,
		UnusedBaseline: res.UnusedBaseline,
		Counts:         res.Counts,
	}
	if err := c.reportDB.InsertReport(ctx, report); err != nil {
		utils.LogError(c.logger, err, "failed to persist the report")
		return err
	}
	c.logger.Info("report written", zap.String("name", report.Name))
	return nil
}

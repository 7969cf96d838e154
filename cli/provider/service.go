package provider

import (
	"context"
	"errors"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/pkg/platform/yaml/reportdb"
	"github.com/dotnet/arcade-sub016/pkg/platform/yaml/surfacedb"
	"github.com/dotnet/arcade-sub016/pkg/rules"
	"github.com/dotnet/arcade-sub016/pkg/service/compat"
	"github.com/dotnet/arcade-sub016/pkg/service/tools"
	"github.com/dotnet/arcade-sub016/utils/log"
	"go.uber.org/zap"
)

type ServiceProvider struct {
	logger *zap.Logger
	cfg    *config.Config
}

func NewServiceProvider(logger *zap.Logger, cfg *config.Config) *ServiceProvider {
	return &ServiceProvider{
		logger: logger,
		cfg:    cfg,
	}
}

// GetService builds the service behind cmd. It runs after the flags were
// validated, so the config is final here.
func (n *ServiceProvider) GetService(ctx context.Context, cmd string) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loggers := log.NewModuleLoggerFactory(n.logger, n.cfg.Debug, nil)
	switch cmd {
	case "config":
		return tools.NewTools(loggers.GetLogger(log.ModuleConfig)), nil
	case "check", "rules":
		surfaceDB := surfacedb.New(loggers.GetLogger(log.ModuleSurface), n.cfg)
		// nil unless a report path is set
		var reportDB compat.ReportDB
		if n.cfg.ReportPath != "" {
			reportDB = reportdb.New(loggers.GetLogger(log.ModuleReport), n.cfg.ReportPath)
		}
		return compat.New(loggers.GetLogger(log.ModuleCompat), surfaceDB, reportDB, rules.DefaultRegistry(), n.cfg), nil
	default:
		return nil, errors.New("invalid command")
	}
}

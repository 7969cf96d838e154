package cli

import (
	"context"
	"errors"

	"github.com/dotnet/arcade-sub016/cli/provider"
	"github.com/dotnet/arcade-sub016/config"
	compatSvc "github.com/dotnet/arcade-sub016/pkg/service/compat"
	"github.com/dotnet/arcade-sub016/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	Register("check", Check)
}

// Check compares the contract surfaces given as arguments or in the config
// file against the implementation directories.
func Check(ctx context.Context, logger *zap.Logger, cfg *config.Config, serviceFactory ServiceFactory, cmdConfigurator CmdConfigurator) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "check [contracts]",
		Short:   "compare contract surfaces with their implementations",
		Example: `apicompat check contracts/ --implDirs impl/ --baseline baseline.txt`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdConfigurator.ValidateFlags(ctx, cmd); err != nil {
				utils.LogError(logger, err, "failed to validate flags")
				return &ExitError{Code: ExitSetupError, Err: err}
			}
			config.SetContracts(cfg, args)
			if len(cfg.Contracts) == 0 {
				err := errors.New("missing contracts, pass them as arguments or set contracts in the config file")
				utils.LogError(logger, err, "nothing to compare")
				logger.Info(provider.LogExample(cmd.Example))
				return &ExitError{Code: ExitSetupError, Err: err}
			}
			if len(cfg.ImplDirs) == 0 {
				err := errors.New("missing required --implDirs flag or implDirs in config file")
				utils.LogError(logger, err, "nothing to compare against")
				return &ExitError{Code: ExitSetupError, Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := serviceFactory.GetService(ctx, cmd.Name())
			if err != nil {
				utils.LogError(logger, err, "failed to get service")
				return &ExitError{Code: ExitSetupError, Err: err}
			}
			compat, ok := svc.(compatSvc.Service)
			if !ok {
				err := errors.New("service doesn't satisfy compat service interface")
				utils.LogError(logger, err, "failed to get service")
				return &ExitError{Code: ExitSetupError, Err: err}
			}

			res, err := compat.Check(ctx)
			if err != nil {
				utils.LogError(logger, err, "failed to run the compatibility check")
				return &ExitError{Code: ExitSetupError, Err: err}
			}
			if res.Failed() {
				return &ExitError{Code: ExitIncompatible}
			}
			return nil
		},
	}
	if err := cmdConfigurator.AddFlags(cmd); err != nil {
		utils.LogError(logger, err, "failed to add check flags")
		return nil
	}
	return cmd
}

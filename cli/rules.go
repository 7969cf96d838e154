package cli

import (
	"context"
	"errors"

	"github.com/dotnet/arcade-sub016/config"
	compatSvc "github.com/dotnet/arcade-sub016/pkg/service/compat"
	"github.com/dotnet/arcade-sub016/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	Register("rules", Rules)
}

// Rules prints the names of the registered difference rules.
func Rules(ctx context.Context, logger *zap.Logger, _ *config.Config, serviceFactory ServiceFactory, cmdConfigurator CmdConfigurator) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "rules",
		Short:   "list the difference rules",
		Example: "apicompat rules",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmdConfigurator.ValidateFlags(ctx, cmd); err != nil {
				utils.LogError(logger, err, "failed to validate flags")
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := serviceFactory.GetService(ctx, cmd.Name())
			if err != nil {
				utils.LogError(logger, err, "failed to get service")
				return err
			}
			compat, ok := svc.(compatSvc.Service)
			if !ok {
				return errors.New("service doesn't satisfy compat service interface")
			}
			return compat.ListRules(ctx, cmd.OutOrStdout())
		},
	}
	if err := cmdConfigurator.AddFlags(cmd); err != nil {
		utils.LogError(logger, err, "failed to add rules flags")
		return nil
	}
	return cmd
}

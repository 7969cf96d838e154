package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/dotnet/arcade-sub016/cli/provider"
	"github.com/dotnet/arcade-sub016/config"
	toolsSvc "github.com/dotnet/arcade-sub016/pkg/service/tools"
	"github.com/dotnet/arcade-sub016/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	Register("config", Config)
}

func Config(ctx context.Context, logger *zap.Logger, _ *config.Config, servicefactory ServiceFactory, cmdConfigurator CmdConfigurator) *cobra.Command {
	var cmd = &cobra.Command{
		Use:     "config",
		Short:   "manage the apicompat configuration file",
		Example: "apicompat config --generate --path /path/to/localdir",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmdConfigurator.ValidateFlags(ctx, cmd); err != nil {
				utils.LogError(logger, err, "failed to validate flags")
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			isGenerate, err := cmd.Flags().GetBool("generate")
			if err != nil {
				utils.LogError(logger, err, "failed to get generate flag")
				return err
			}
			if !isGenerate {
				return errors.New("only generate flag is supported in the config command")
			}

			path, err := cmd.Flags().GetString("path")
			if err != nil {
				utils.LogError(logger, err, "failed to get path flag")
				return err
			}
			filePath := filepath.Join(path, provider.ConfigFileName+".yml")
			if utils.CheckFileExists(filePath) {
				override, err := utils.AskForConfirmation(cmd.InOrStdin(), os.Stderr, "Config file already exists. Do you want to override it?")
				if err != nil {
					utils.LogError(logger, err, "failed to ask for confirmation")
					return err
				}
				if !override {
					return nil
				}
			}

			svc, err := servicefactory.GetService(ctx, cmd.Name())
			if err != nil {
				utils.LogError(logger, err, "failed to get service")
				return err
			}
			tools, ok := svc.(toolsSvc.Service)
			if !ok {
				err := errors.New("service doesn't satisfy tools service interface")
				utils.LogError(logger, err, "failed to get service")
				return err
			}
			if err := tools.CreateConfig(ctx, filePath, ""); err != nil {
				utils.LogError(logger, err, "failed to create config")
				return err
			}
			return nil
		},
	}
	if err := cmdConfigurator.AddFlags(cmd); err != nil {
		utils.LogError(logger, err, "failed to add config flags")
		return nil
	}
	return cmd
}

package cli

import (
	"context"
	"sort"

	"github.com/dotnet/arcade-sub016/cli/provider"
	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Root(ctx context.Context, logger *zap.Logger, svcFactory ServiceFactory, cmdConfigurator CmdConfigurator, conf *config.Config) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "apicompat",
		Short:         "Checks that an implementation keeps the API surface of its contract",
		Example:       provider.RootExamples,
		Version:       utils.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetHelpTemplate(provider.RootCustomHelpTemplate)
	rootCmd.SetVersionTemplate(provider.VersionTemplate)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	if err := cmdConfigurator.AddFlags(rootCmd); err != nil {
		utils.LogError(logger, err, "failed to set flags")
		return nil
	}

	names := make([]string, 0, len(Registered))
	for name := range Registered {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := Registered[name](ctx, logger, conf, svcFactory, cmdConfigurator)
		if c == nil {
			continue
		}
		rootCmd.AddCommand(c)
	}
	return rootCmd
}

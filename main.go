package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dotnet/arcade-sub016/cli"
	"github.com/dotnet/arcade-sub016/cli/provider"
	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/utils"
	"github.com/dotnet/arcade-sub016/utils/log"
	"go.uber.org/zap"
)

// version is injected during build by ldflags

var version string

func main() {
	if version == "" {
		version = "1-dev"
	}
	utils.Version = version
	os.Exit(start())
}

func start() int {
	logger, err := log.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to start the logger for the CLI:", err)
		return cli.ExitSetupError
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := utils.NewCtx()
	defer cancel()

	conf := config.New()
	svcProvider := provider.NewServiceProvider(logger, conf)
	cmdConfigurator := provider.NewCmdConfigurator(logger, conf)
	rootCmd := cli.Root(ctx, logger, svcProvider, cmdConfigurator, conf)
	if rootCmd == nil {
		return cli.ExitSetupError
	}
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			logger.Error("command failed", zap.Error(err))
		}
		return cli.ExitCode(err)
	}
	return cli.ExitCompatible
}

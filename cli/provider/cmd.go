// Package provider builds the flags and services behind the cli commands.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/dotnet/arcade-sub016/utils"
	"github.com/dotnet/arcade-sub016/utils/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func LogExample(example string) string {
	return fmt.Sprintf("Example usage: %s", example)
}

var RootCustomHelpTemplate = `{{.Short}}

Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Available Commands:{{range .Commands}}{{if .IsAvailableCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}

Examples:
{{.Example}}

Use "{{.CommandPath}} [command] --help" for more information about a command.
`

var RootExamples = `
  Check:
	apicompat check contracts/ --implDirs impl/

  Check against a baseline, grouping everything under one header:
	apicompat check contracts/Contoso.yaml --implDirs impl/ --baseline baseline.txt --groupByAssembly=false

  Config:
	apicompat config --generate -p "/path/to/localdir"
`

var VersionTemplate = `{{with .Version}}{{printf "apicompat %s" .}}{{end}}{{"\n"}}`

// ConfigFileName is the base name of the config file, without extension.
const ConfigFileName = "apicompat"

type CmdConfigurator struct {
	logger *zap.Logger
	cfg    *config.Config
}

func NewCmdConfigurator(logger *zap.Logger, config *config.Config) *CmdConfigurator {
	return &CmdConfigurator{
		logger: logger,
		cfg:    config,
	}
}

func (c *CmdConfigurator) AddFlags(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "config":
		cmd.Flags().StringP("path", "p", ".", "Path to local directory where generated config is stored")
		cmd.Flags().Bool("generate", false, "Generate a new apicompat configuration file")
	case "rules":
		return nil
	case "check":
		c.addCheckFlags(cmd)
	case "apicompat":
		cmd.PersistentFlags().Bool("debug", c.cfg.Debug, "Run in debug mode")
		cmd.PersistentFlags().Bool("disableANSI", c.cfg.DisableANSI, "Disable ANSI colours in logs and the summary")
		cmd.PersistentFlags().String("configPath", c.cfg.ConfigPath, "Path to the local directory where the apicompat configuration file is stored")
		err := viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))
		if err != nil {
			errMsg := "failed to bind flag to config"
			utils.LogError(c.logger, err, errMsg)
			return errors.New(errMsg)
		}
	default:
		return errors.New("unknown command name")
	}
	return nil
}

func (c *CmdConfigurator) addCheckFlags(cmd *cobra.Command) {
	cfg := c.cfg
	f := cmd.Flags()

	f.StringSliceP("implDirs", "i", cfg.ImplDirs, "Directories searched for the implementation of every contract assembly")
	f.StringSlice("contractDepends", cfg.ContractDepends, "Directories used to resolve references of the contract assemblies")
	f.StringSliceP("baseline", "b", cfg.Baseline, "Baseline files listing differences to ignore")
	f.Bool("validateBaseline", cfg.ValidateBaseline, "Count unused baseline entries as issues")
	f.String("remapFile", cfg.RemapFile, "File with namespace or type renames applied to the contract before matching")
	f.StringSlice("excludeAttributes", cfg.ExcludeAttributes, "DocId files listing attribute types whose differences are ignored")
	f.Bool("skipAttributes", cfg.SkipAttributes, "Leave attributes out of the compared surface")

	f.Bool("respectInternals", cfg.RespectInternals, "Compare internal members when the contract grants InternalsVisibleTo")
	f.Bool("excludeNonBrowsable", cfg.ExcludeNonBrowsable, "Leave out declarations marked EditorBrowsable(Never)")
	f.Bool("excludeCompilerGenerated", cfg.ExcludeCompilerGenerated, "Leave out compiler generated declarations")
	f.Bool("enforceOptionalRules", cfg.EnforceOptionalRules, "Run the optional rules too")
	f.BoolP("mdilServicingMode", "m", cfg.MdilServicingMode, "Enforce the stricter servicing rules")
	f.Bool("groupByAssembly", cfg.GroupByAssembly, "Report differences under one header per assembly")

	f.Bool("warnOnMissingAssemblies", cfg.WarnOnMissingAssemblies, "Warn and skip when an implementation assembly is missing")
	f.Bool("warnOnIncorrectVersion", cfg.WarnOnIncorrectVersion, "Warn when an implementation version differs from the contract")
	f.Bool("ignoreDesignTimeFacades", cfg.IgnoreDesignTimeFacades, "Drop contract assemblies that only forward types")
	f.Bool("unresolvedAsError", cfg.UnresolvedAsError, "Fail when an assembly reference cannot be resolved")
	f.Bool("allowDefaultInterfaceMethods", cfg.AllowDefaultInterfaceMethods, "Allow non-abstract members to be added to interfaces")

	f.StringP("leftOperand", "l", cfg.LeftOperand, "Name of the left side in difference messages")
	f.StringP("rightOperand", "r", cfg.RightOperand, "Name of the right side in difference messages")
	f.StringP("out", "o", cfg.Out, "File the text report is written to instead of stdout")
	f.String("reportPath", cfg.ReportPath, "Directory where a yaml report of the run is stored")
	f.Bool("reportInformational", cfg.ReportInformational, "Print added and changed declarations alongside breaking ones")
}

func (c CmdConfigurator) ValidateFlags(ctx context.Context, cmd *cobra.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := utils.BindFlagsToViper(c.logger, cmd); err != nil {
		errMsg := "failed to bind flags to config"
		utils.LogError(c.logger, err, errMsg)
		return errors.New(errMsg)
	}

	configPath, err := cmd.Flags().GetString("configPath")
	if err != nil {
		utils.LogError(c.logger, nil, "failed to read the config path")
		return err
	}
	viper.SetConfigName(ConfigFileName)
	viper.SetConfigType("yml")
	viper.AddConfigPath(configPath)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			errMsg := "failed to read config file"
			utils.LogError(c.logger, err, errMsg)
			return models.NewAppError(models.ErrInvalidConfig, err)
		}
		c.logger.Debug("config file not found; proceeding with flags only")
	}

	if err := viper.Unmarshal(c.cfg); err != nil {
		errMsg := "failed to unmarshal the config"
		utils.LogError(c.logger, err, errMsg)
		return models.NewAppError(models.ErrInvalidConfig, err)
	}
	config.Normalize(c.cfg)

	if c.cfg.DisableANSI {
		models.IsAnsiDisabled = true
		logger, err := log.DisableColor()
		if err != nil {
			errMsg := "failed to disable log colours"
			utils.LogError(c.logger, err, errMsg)
			return errors.New(errMsg)
		}
		*c.logger = *logger
	}
	if c.cfg.Debug {
		logger, err := log.ChangeLogLevel(zap.DebugLevel)
		if err != nil {
			errMsg := "failed to change log level"
			utils.LogError(c.logger, err, errMsg)
			return errors.New(errMsg)
		}
		*c.logger = *logger
	}
	c.logger.Debug("config has been initialised", zap.String("for cmd", cmd.Name()), zap.Any("config", c.cfg))
	return nil
}

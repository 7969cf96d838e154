// Package utils holds the helpers shared by the cli and the services.
package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version is injected at build time through ldflags.
var Version string

// EnvPrefix prefixes the environment variables bound to flags.
const EnvPrefix = "APICOMPAT"

// LogError logs err unless it only reports a cancelled context.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if logger == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Error(msg, fields...)
}

func CheckFileExists(path string) bool {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	return true
}

// AskForConfirmation asks the user for confirmation. "y" and "yes" in any case
// count as yes, "n" and "no" as no; anything else asks again.
func AskForConfirmation(in io.Reader, out io.Writer, s string) (bool, error) {
	reader := bufio.NewReader(in)

	for {
		fmt.Fprintf(out, "%s [y/n]: ", s)

		response, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}

		response = strings.ToLower(strings.TrimSpace(response))

		if response == "y" || response == "yes" {
			return true, nil
		} else if response == "n" || response == "no" {
			return false, nil
		}
	}
}

// BindFlagsToViper binds every flag of cmd to the viper key of the same name
// and to an environment variable, e.g. --implDirs to APICOMPAT_IMPLDIRS.
func BindFlagsToViper(logger *zap.Logger, cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if bindErr != nil {
			return
		}
		if err := viper.BindPFlag(flag.Name, flag); err != nil {
			LogError(logger, err, "failed to bind flag to config", zap.String("flag", flag.Name))
			bindErr = err
			return
		}
		envVarName := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag.Name, "-", "_"))
		if err := viper.BindEnv(flag.Name, envVarName); err != nil {
			LogError(logger, err, "failed to bind environment variable", zap.String("env", envVarName))
			bindErr = err
		}
	})
	return bindErr
}

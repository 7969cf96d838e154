package tools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/utils"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ConfigGuide is appended to generated config files.
const ConfigGuide = `
# Run "apicompat check --help" for the full list of options.
# Every option can also be passed as a flag, e.g. --respectInternals,
# or as an APICOMPAT_ prefixed environment variable.
`

func NewTools(logger *zap.Logger) Service {
	return &Tools{
		logger: logger,
	}
}

type Tools struct {
	logger *zap.Logger
}

// CreateConfig writes configData to filePath. An empty configData writes the
// merged default config.
func (t *Tools) CreateConfig(ctx context.Context, filePath string, configData string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var node yaml.Node
	var data []byte
	var err error

	if configData != "" {
		data = []byte(configData)
	} else {
		configData, err = config.Merge(config.GetDefaultConfig(), config.InternalConfig)
		if err != nil {
			utils.LogError(t.logger, err, "failed to create the default config string")
			return err
		}
		data = []byte(configData)
	}

	if err := yaml.Unmarshal(data, &node); err != nil {
		utils.LogError(t.logger, err, "failed to parse the config")
		return err
	}
	if len(node.Content) == 0 {
		return errors.New("config is empty")
	}
	results, err := yaml.Marshal(node.Content[0])
	if err != nil {
		utils.LogError(t.logger, err, "failed to marshal the config")
		return err
	}

	finalOutput := append(results, []byte(ConfigGuide)...)

	if err := os.WriteFile(filePath, finalOutput, 0o644); err != nil {
		utils.LogError(t.logger, err, "failed to write config file", zap.String("path", filePath))
		return fmt.Errorf("failed to write config file: %w", err)
	}

	t.logger.Info("Config file generated successfully", zap.String("path", filePath))
	return nil
}

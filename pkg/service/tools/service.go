// Package tools holds the housekeeping commands of the cli.
package tools

import (
	"context"
)

type Service interface {
	CreateConfig(ctx context.Context, filePath string, config string) error
}

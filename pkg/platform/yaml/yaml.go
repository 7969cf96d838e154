// Package yaml holds the file helpers shared by the yaml backed stores.
package yaml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Extensions lists the file extensions treated as yaml documents.
var Extensions = []string{".yaml", ".yml"}

// ContextReader wraps an io.Reader with a context for cancellation support
type ContextReader struct {
	Reader io.Reader
	Ctx    context.Context
}

func (cr *ContextReader) Read(p []byte) (n int, err error) {
	select {
	case <-cr.Ctx.Done():
		return 0, cr.Ctx.Err()
	default:
		return cr.Reader.Read(p)
	}
}

// WriteFile writes docData to <path>/<fileName>.yaml, creating the directory
// when needed. An existing document is replaced.
func WriteFile(ctx context.Context, logger *zap.Logger, path, fileName string, docData []byte) error {
	if _, err := CreateYamlFile(ctx, logger, path, fileName); err != nil {
		return err
	}
	yamlPath := filepath.Join(path, fileName+".yaml")
	if err := os.WriteFile(yamlPath, docData, 0o644); err != nil {
		logger.Error("failed to write the yaml document", zap.Error(err), zap.String("yaml file name", fileName))
		return err
	}
	return nil
}

// CreateYamlFile makes sure <path>/<fileName>.yaml exists and reports
// whether it had to be created.
func CreateYamlFile(ctx context.Context, logger *zap.Logger, path string, fileName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	yamlPath, err := ValidatePath(filepath.Join(path, fileName+".yaml"))
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(yamlPath); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, fs.ModePerm); err != nil {
		logger.Error("failed to create a directory for the yaml file", zap.Error(err), zap.String("path directory", path), zap.String("yaml", fileName))
		return false, err
	}
	file, err := os.OpenFile(yamlPath, os.O_CREATE, 0o644)
	if err != nil {
		logger.Error("failed to create a yaml file", zap.Error(err), zap.String("path directory", path), zap.String("yaml", fileName))
		return false, err
	}
	return true, file.Close()
}

func ValidatePath(path string) (string, error) {
	// Validate the input to prevent directory traversal attack
	if strings.Contains(path, "..") {
		return "", errors.New("invalid path: contains '..' indicating directory traversal")
	}
	return path, nil
}

// FindLastIndex returns the index for the next "<prefix>-<n>" yaml file in
// path. A missing directory starts at 1.
func FindLastIndex(path, prefix string) (int, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	lastIndex := 0
	for _, e := range entries {
		if e.IsDir() || !IsYAMLFile(e.Name()) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		rest, ok := strings.CutPrefix(name, prefix+"-")
		if !ok {
			continue
		}
		indx, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if indx > lastIndex {
			lastIndex = indx
		}
	}
	return lastIndex + 1, nil
}

func IsYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ListYAMLFiles returns the yaml documents directly inside dir, sorted by
// name.
func ListYAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && IsYAMLFile(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// FindDocument looks for <name>.yaml or <name>.yml in the given directories
// and returns the first hit.
func FindDocument(dirs []string, name string) (string, bool) {
	for _, dir := range dirs {
		for _, ext := range Extensions {
			p := filepath.Join(dir, name+ext)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

// Package surfacedb loads api surface documents written as yaml.
package surfacedb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/dotnet/arcade-sub016/pkg/platform/yaml"
	"github.com/dotnet/arcade-sub016/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	yamlLib "gopkg.in/yaml.v3"
)

type SurfaceDb struct {
	logger *zap.Logger
	cfg    *config.Config
	// limit bounds the number of documents decoded at once.
	limit int
}

func New(logger *zap.Logger, cfg *config.Config) *SurfaceDb {
	return &SurfaceDb{
		logger: logger,
		cfg:    cfg,
		limit:  runtime.GOMAXPROCS(0),
	}
}

// LoadContracts decodes every contract document, in the order the paths were
// given.
func (db *SurfaceDb) LoadContracts(ctx context.Context) ([]*models.Assembly, error) {
	files, err := expand(db.cfg.Contracts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, models.NewAppError(models.ErrMissingFile, errors.New("no contract surface documents were found"))
	}

	asms, err := db.decodeAll(ctx, files)
	if err != nil {
		return nil, err
	}

	out := asms[:0]
	for _, a := range asms {
		if db.cfg.IgnoreDesignTimeFacades && a.IsFacade() {
			db.logger.Debug("ignoring design time facade", zap.String("assembly", a.Name))
			continue
		}
		out = append(out, a)
	}

	if err := db.resolveReferences(out, "contract", db.cfg.ContractDepends); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadImplementations finds the implementation of every contract assembly by
// name in the implementation directories.
func (db *SurfaceDb) LoadImplementations(ctx context.Context, contracts []*models.Assembly) ([]*models.Assembly, error) {
	var files []string
	var wanted []*models.Assembly
	for _, c := range contracts {
		path, ok := yaml.FindDocument(db.cfg.ImplDirs, c.Name)
		if !ok {
			err := models.NewAppError(models.ErrMissingAssembly, fmt.Errorf("could not find matching assembly: '%s' in any of the search directories", c.Name))
			if db.cfg.WarnOnMissingAssemblies {
				db.logger.Warn("could not find matching assembly in any of the search directories", zap.String("assembly", c.Name))
				continue
			}
			utils.LogError(db.logger, err, "failed to find the implementation assembly", zap.String("assembly", c.Name))
			return nil, err
		}
		files = append(files, path)
		wanted = append(wanted, c)
	}

	impls, err := db.decodeAll(ctx, files)
	if err != nil {
		return nil, err
	}

	for i, impl := range impls {
		if c := wanted[i]; !strings.EqualFold(impl.Name, c.Name) {
			db.logger.Warn("implementation document declares a different assembly name, it will not be paired with the contract",
				zap.String("assembly", c.Name),
				zap.String("declared", impl.Name),
				zap.String("path", impl.Location))
		}
	}

	if db.cfg.WarnOnIncorrectVersion {
		for i, impl := range impls {
			if c := wanted[i]; impl.Version != c.Version {
				db.logger.Warn("implementation version does not match the contract",
					zap.String("assembly", c.Name),
					zap.String("contractVersion", c.Version),
					zap.String("implementationVersion", impl.Version))
			}
		}
	}

	if err := db.resolveReferences(impls, "implementation", db.cfg.ImplDirs); err != nil {
		return nil, err
	}
	return impls, nil
}

func (db *SurfaceDb) decodeAll(ctx context.Context, files []string) ([]*models.Assembly, error) {
	asms := make([]*models.Assembly, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(db.limit)
	for i, file := range files {
		g.Go(func() error {
			a, err := db.decode(gctx, file)
			if err != nil {
				return err
			}
			asms[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return asms, nil
}

func (db *SurfaceDb) decode(ctx context.Context, path string) (*models.Assembly, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewAppError(models.ErrMissingFile, err)
		}
		return nil, err
	}
	defer f.Close()

	var asm models.Assembly
	dec := yamlLib.NewDecoder(&yaml.ContextReader{Reader: f, Ctx: ctx})
	dec.KnownFields(true)
	if err := dec.Decode(&asm); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		utils.LogError(db.logger, err, "failed to decode the surface document", zap.String("path", path))
		return nil, models.NewAppError(models.ErrInvalidSurface, fmt.Errorf("%s: %w", path, err))
	}
	if asm.Name == "" {
		base := filepath.Base(path)
		asm.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	asm.Location = path
	asm.Link()
	db.logger.Debug("loaded surface", zap.String("assembly", asm.Name), zap.String("path", path))
	return &asm, nil
}

// resolveReferences checks that every referenced assembly is either loaded
// or present in one of the search directories.
func (db *SurfaceDb) resolveReferences(asms []*models.Assembly, side string, dirs []string) error {
	loaded := make(map[string]bool, len(asms))
	for _, a := range asms {
		loaded[a.Name] = true
	}
	var unresolved []error
	for _, a := range asms {
		for _, ref := range a.References {
			if loaded[ref] {
				continue
			}
			if _, ok := yaml.FindDocument(dirs, ref); ok {
				continue
			}
			msg := fmt.Sprintf("Unable to resolve assembly '%s' referenced by the %s assembly '%s'.", ref, side, a.Name)
			if db.cfg.UnresolvedAsError {
				db.logger.Error(msg)
				unresolved = append(unresolved, errors.New(msg))
				continue
			}
			db.logger.Warn(msg)
		}
	}
	if len(unresolved) > 0 {
		return models.NewAppError(models.ErrUnresolvedReference, errors.Join(unresolved...))
	}
	return nil
}

// expand turns files and directories into the list of yaml documents they
// name. Directories contribute their yaml files in name order.
func expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, models.NewAppError(models.ErrMissingFile, err)
			}
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		docs, err := yaml.ListYAMLFiles(p)
		if err != nil {
			return nil, err
		}
		files = append(files, docs...)
	}
	return files, nil
}

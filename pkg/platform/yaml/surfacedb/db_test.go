package surfacedb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const contosoV1 = `name: Contoso
version: 1.0.0.0
references: [System.Runtime]
namespaces:
  - name: Contoso
    types:
      - name: Widget
        visibility: public
        members:
          - name: Start
            kind: method
            visibility: public
            returnType: System.Void
`

const contosoV2 = `name: Contoso
version: 2.0.0.0
namespaces:
  - name: Contoso
    types:
      - name: Widget
        visibility: public
`

const facade = `name: Contoso.Facade
forwards: [Contoso.Widget]
`

func writeDoc(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func newTestDb(t *testing.T, mutate func(*config.Config)) (*SurfaceDb, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := &config.Config{}
	mutate(cfg)
	return New(zap.New(core), cfg), logs
}

func TestLoadContracts(t *testing.T) {
	root := t.TempDir()
	contracts := filepath.Join(root, "contracts")
	depends := filepath.Join(root, "depends")
	writeDoc(t, contracts, "Contoso.yaml", contosoV1)
	writeDoc(t, contracts, "Contoso.Facade.yml", facade)
	writeDoc(t, contracts, "notes.txt", "ignored")
	writeDoc(t, depends, "System.Runtime.yaml", "name: System.Runtime\n")

	t.Run("directory in name order", func(t *testing.T) {
		db, _ := newTestDb(t, func(c *config.Config) {
			c.Contracts = []string{contracts}
			c.ContractDepends = []string{depends}
		})
		asms, err := db.LoadContracts(context.Background())
		require.NoError(t, err)
		require.Len(t, asms, 2)
		assert.Equal(t, "Contoso.Facade", asms[0].Name)
		assert.Equal(t, "Contoso", asms[1].Name)
		assert.Equal(t, filepath.Join(contracts, "Contoso.yaml"), asms[1].Location)
		widget := asms[1].Namespaces[0].Types[0]
		assert.Same(t, asms[1], widget.Assembly)
	})

	t.Run("design time facades dropped", func(t *testing.T) {
		db, _ := newTestDb(t, func(c *config.Config) {
			c.Contracts = []string{contracts}
			c.ContractDepends = []string{depends}
			c.IgnoreDesignTimeFacades = true
		})
		asms, err := db.LoadContracts(context.Background())
		require.NoError(t, err)
		require.Len(t, asms, 1)
		assert.Equal(t, "Contoso", asms[0].Name)
	})

	t.Run("unresolved reference warns", func(t *testing.T) {
		db, logs := newTestDb(t, func(c *config.Config) {
			c.Contracts = []string{filepath.Join(contracts, "Contoso.yaml")}
		})
		_, err := db.LoadContracts(context.Background())
		require.NoError(t, err)
		warned := logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage(
			"Unable to resolve assembly 'System.Runtime' referenced by the contract assembly 'Contoso'.")
		assert.Equal(t, 1, warned.Len())
	})

	t.Run("unresolved reference as error", func(t *testing.T) {
		db, _ := newTestDb(t, func(c *config.Config) {
			c.Contracts = []string{filepath.Join(contracts, "Contoso.yaml")}
			c.UnresolvedAsError = true
		})
		_, err := db.LoadContracts(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.AppError{AppErrorType: models.ErrUnresolvedReference}))
	})

	t.Run("missing path", func(t *testing.T) {
		db, _ := newTestDb(t, func(c *config.Config) {
			c.Contracts = []string{filepath.Join(root, "nope.yaml")}
		})
		_, err := db.LoadContracts(context.Background())
		assert.True(t, models.IsFatal(err))
		assert.True(t, errors.Is(err, models.AppError{AppErrorType: models.ErrMissingFile}))
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		bad := writeDoc(t, filepath.Join(root, "bad"), "Bad.yaml", "name: Bad\nflavour: sweet\n")
		db, _ := newTestDb(t, func(c *config.Config) {
			c.Contracts = []string{bad}
		})
		_, err := db.LoadContracts(context.Background())
		assert.True(t, errors.Is(err, models.AppError{AppErrorType: models.ErrInvalidSurface}))
	})
}

func TestLoadContractsDefaultsNameToFile(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "Fabrikam.yaml", "version: 1.0.0.0\n")
	db, _ := newTestDb(t, func(c *config.Config) {
		c.Contracts = []string{p}
	})
	asms, err := db.LoadContracts(context.Background())
	require.NoError(t, err)
	require.Len(t, asms, 1)
	assert.Equal(t, "Fabrikam", asms[0].Name)
}

func TestLoadImplementations(t *testing.T) {
	root := t.TempDir()
	implDir := filepath.Join(root, "impl")
	writeDoc(t, implDir, "Contoso.yaml", contosoV2)
	contracts := []*models.Assembly{
		{Name: "Contoso", Version: "1.0.0.0"},
		{Name: "Missing"},
	}

	t.Run("missing implementation is fatal", func(t *testing.T) {
		db, _ := newTestDb(t, func(c *config.Config) {
			c.ImplDirs = []string{implDir}
		})
		_, err := db.LoadImplementations(context.Background(), contracts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.AppError{AppErrorType: models.ErrMissingAssembly}))
	})

	t.Run("missing implementation warns", func(t *testing.T) {
		db, logs := newTestDb(t, func(c *config.Config) {
			c.ImplDirs = []string{filepath.Join(root, "empty"), implDir}
			c.WarnOnMissingAssemblies = true
			c.WarnOnIncorrectVersion = true
		})
		impls, err := db.LoadImplementations(context.Background(), contracts)
		require.NoError(t, err)
		require.Len(t, impls, 1)
		assert.Equal(t, "2.0.0.0", impls[0].Version)
		assert.Equal(t, 1, logs.FilterMessage("could not find matching assembly in any of the search directories").Len())
		assert.Equal(t, 1, logs.FilterMessage("implementation version does not match the contract").Len())
	})
}

func TestLoadHonoursCancellation(t *testing.T) {
	p := writeDoc(t, t.TempDir(), "Contoso.yaml", contosoV1)
	db, _ := newTestDb(t, func(c *config.Config) {
		c.Contracts = []string{p}
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := db.LoadContracts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadImplementationsWarnsOnDeclaredName(t *testing.T) {
	implDir := filepath.Join(t.TempDir(), "impl")
	writeDoc(t, implDir, "Contoso.yaml", "name: Fabrikam\n")
	db, logs := newTestDb(t, func(c *config.Config) {
		c.ImplDirs = []string{implDir}
	})
	impls, err := db.LoadImplementations(context.Background(), []*models.Assembly{{Name: "Contoso"}})
	require.NoError(t, err)
	require.Len(t, impls, 1)

	warned := logs.FilterLevelExact(zapcore.WarnLevel).
		FilterMessage("implementation document declares a different assembly name, it will not be paired with the contract")
	require.Equal(t, 1, warned.Len())
	assert.Equal(t, "Fabrikam", warned.All()[0].ContextMap()["declared"])
}

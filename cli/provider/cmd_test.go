package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/dotnet/arcade-sub016/pkg/service/compat"
	"github.com/dotnet/arcade-sub016/pkg/service/tools"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCheckCmd(t *testing.T, conf *config.Config, args ...string) (*CmdConfigurator, *cobra.Command) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	c := NewCmdConfigurator(zap.NewNop(), conf)
	root := &cobra.Command{Use: "apicompat"}
	require.NoError(t, c.AddFlags(root))
	cmd := &cobra.Command{Use: "check", RunE: func(*cobra.Command, []string) error { return nil }}
	require.NoError(t, c.AddFlags(cmd))
	root.AddCommand(cmd)
	root.SetArgs(append([]string{"check"}, args...))
	require.NoError(t, root.Execute())
	return c, cmd
}

func TestAddFlagsUnknownCommand(t *testing.T) {
	c := NewCmdConfigurator(zap.NewNop(), config.New())
	assert.Error(t, c.AddFlags(&cobra.Command{Use: "record"}))
}

func TestValidateFlagsMergesConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := "implDirs: [impl]\nbaseline: \"a.txt;b.txt\"\nrespectInternals: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apicompat.yml"), []byte(file), 0o644))

	conf := config.New()
	c, cmd := newCheckCmd(t, conf, "--configPath", dir, "--excludeAttributes", "x.txt,y.txt", "--groupByAssembly=false")
	require.NoError(t, c.ValidateFlags(context.Background(), cmd))

	assert.Equal(t, []string{"impl"}, conf.ImplDirs)
	assert.Equal(t, []string{"a.txt", "b.txt"}, conf.Baseline)
	assert.Equal(t, []string{"x.txt", "y.txt"}, conf.ExcludeAttributes)
	assert.True(t, conf.RespectInternals)
	assert.False(t, conf.GroupByAssembly)
	assert.Equal(t, "contract", conf.LeftOperand)
}

func TestValidateFlagsRejectsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apicompat.yml"), []byte("implDirs: [\n"), 0o644))

	conf := config.New()
	c, cmd := newCheckCmd(t, conf, "--configPath", dir)
	err := c.ValidateFlags(context.Background(), cmd)
	assert.True(t, models.IsFatal(err))
}

func TestValidateFlagsReadsEnvironment(t *testing.T) {
	t.Setenv("APICOMPAT_RIGHTOPERAND", "net9.0")
	conf := config.New()
	c, cmd := newCheckCmd(t, conf, "--configPath", t.TempDir())
	require.NoError(t, c.ValidateFlags(context.Background(), cmd))
	assert.Equal(t, "net9.0", conf.RightOperand)
}

func TestGetService(t *testing.T) {
	conf := config.New()
	p := NewServiceProvider(zap.NewNop(), conf)
	ctx := context.Background()

	svc, err := p.GetService(ctx, "check")
	require.NoError(t, err)
	assert.Implements(t, (*compat.Service)(nil), svc)

	svc, err = p.GetService(ctx, "config")
	require.NoError(t, err)
	assert.Implements(t, (*tools.Service)(nil), svc)

	_, err = p.GetService(ctx, "record")
	assert.Error(t, err)
}

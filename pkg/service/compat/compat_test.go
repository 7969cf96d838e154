package compat

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotnet/arcade-sub016/config"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/dotnet/arcade-sub016/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const droppedMember = "MembersMustExist : Member 'Contoso.Widget.Stop()' does not exist in the implementation but it does exist in the contract."

func addedMember(name string) string {
	return "MembersMustExist : Member 'Contoso.Widget." + name + "()' exists in the implementation but not the contract."
}

type fakeSurface struct {
	contracts func() []*models.Assembly
	impls     func() []*models.Assembly
	err       error
}

func (f fakeSurface) LoadContracts(context.Context) ([]*models.Assembly, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.contracts(), nil
}

func (f fakeSurface) LoadImplementations(context.Context, []*models.Assembly) ([]*models.Assembly, error) {
	return f.impls(), nil
}

type fakeReports struct {
	reports []*models.CompatReport
}

func (f *fakeReports) InsertReport(_ context.Context, r *models.CompatReport) error {
	r.Name = "compat-report-1"
	f.reports = append(f.reports, r)
	return nil
}

func method(name string, vis models.Visibility) *models.Member {
	return &models.Member{Name: name, Kind: models.MemberKindMethod, Visibility: vis, ReturnType: "System.Void"}
}

func widget(members ...*models.Member) func() []*models.Assembly {
	return func() []*models.Assembly {
		a := &models.Assembly{
			Name:    "Contoso",
			Version: "1.0.0.0",
			Namespaces: []*models.Namespace{{
				Name: "Contoso",
				Types: []*models.Type{{
					Name:       "Widget",
					Kind:       models.TypeKindClass,
					Visibility: models.VisibilityPublic,
					Members:    members,
				}},
			}},
		}
		a.Link()
		return []*models.Assembly{a}
	}
}

// withIVT marks the contract as granting friend access.
func withIVT(load func() []*models.Assembly) func() []*models.Assembly {
	return func() []*models.Assembly {
		out := load()
		out[0].Attributes = append(out[0].Attributes, models.Attribute{
			Type:      models.InternalsVisibleToAttribute,
			Arguments: []models.AttributeArgument{{Value: `"Contoso.Tests"`}},
		})
		return out
	}
}

func newConfig(mutate ...func(*config.Config)) *config.Config {
	cfg := config.New()
	cfg.Contracts = []string{"contracts/Contoso.yaml"}
	cfg.ImplDirs = []string{"impl"}
	for _, m := range mutate {
		m(cfg)
	}
	return cfg
}

func check(t *testing.T, cfg *config.Config, surface fakeSurface, reports ReportDB) (*Result, string) {
	t.Helper()
	svc := New(zaptest.NewLogger(t), surface, reports, rules.DefaultRegistry(), cfg)
	var out bytes.Buffer
	svc.stdout = &out
	res, err := svc.Check(context.Background())
	require.NoError(t, err)
	return res, out.String()
}

func TestCheckDroppedMember(t *testing.T) {
	surface := fakeSurface{
		contracts: widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic)),
		impls:     widget(method("Start", models.VisibilityPublic)),
	}
	res, out := check(t, newConfig(), surface, nil)

	assert.Equal(t, models.VerdictIncompatible, res.Verdict)
	assert.True(t, res.Failed())
	assert.Equal(t, 1, res.TotalIssues)
	require.Len(t, res.Differences, 1)
	assert.Equal(t, models.Incompatible, res.Differences[0].Kind)
	assert.Equal(t, "Compat issues with assembly Contoso:\n"+droppedMember+"\nTotal Issues: 1\n", out)
	assert.NotEmpty(t, res.RunID)
}

func TestCheckIdenticalSurfaces(t *testing.T) {
	load := widget(method("Start", models.VisibilityPublic))
	res, out := check(t, newConfig(), fakeSurface{contracts: load, impls: load}, nil)

	assert.Equal(t, models.VerdictCompatible, res.Verdict)
	assert.Empty(t, res.Differences)
	assert.Equal(t, "Total Issues: 0\n", out)
}

func TestCheckInternalMembers(t *testing.T) {
	added := fakeSurface{
		contracts: widget(method("Start", models.VisibilityPublic)),
		impls:     widget(method("Start", models.VisibilityPublic), method("Helper", models.VisibilityAssembly)),
	}
	removed := fakeSurface{
		contracts: withIVT(widget(method("Start", models.VisibilityPublic), method("Helper", models.VisibilityAssembly))),
		impls:     widget(method("Start", models.VisibilityPublic)),
	}

	t.Run("ignored by default", func(t *testing.T) {
		res, _ := check(t, newConfig(), added, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Zero(t, res.Counts[models.Added])

		res, _ = check(t, newConfig(), removed, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
	})

	t.Run("respectInternals without InternalsVisibleTo", func(t *testing.T) {
		res, _ := check(t, newConfig(func(c *config.Config) { c.RespectInternals = true }), added, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Zero(t, res.Counts[models.Added])
	})

	t.Run("respectInternals with InternalsVisibleTo", func(t *testing.T) {
		respect := func(c *config.Config) { c.RespectInternals = true }
		withFriend := fakeSurface{contracts: withIVT(added.contracts), impls: added.impls}

		res, out := check(t, newConfig(respect), withFriend, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict, "additions are informational")
		assert.Equal(t, 1, res.Counts[models.Added])
		assert.Contains(t, out, "Member 'Contoso.Widget.Helper()' exists in the implementation but not the contract.")

		res, out = check(t, newConfig(respect), removed, nil)
		assert.Equal(t, models.VerdictIncompatible, res.Verdict)
		assert.Contains(t, out, "Member 'Contoso.Widget.Helper()' does not exist in the implementation")
	})
}

func TestCheckReportInformational(t *testing.T) {
	surface := fakeSurface{
		contracts: widget(method("Start", models.VisibilityPublic)),
		impls:     widget(method("Start", models.VisibilityPublic), method("Pause", models.VisibilityPublic)),
	}

	t.Run("printed by default", func(t *testing.T) {
		res, out := check(t, newConfig(), surface, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Equal(t, "Compat issues with assembly Contoso:\n"+addedMember("Pause")+"\nTotal Issues: 0\n", out)
	})

	t.Run("turned off", func(t *testing.T) {
		res, out := check(t, newConfig(func(c *config.Config) { c.ReportInformational = false }), surface, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Empty(t, res.Differences)
		assert.Equal(t, 1, res.Counts[models.Added])
		assert.Equal(t, "Total Issues: 0\n", out)
	})
}

func TestCheckAddedRemovedSymmetry(t *testing.T) {
	small := widget(method("Start", models.VisibilityPublic))
	large := widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic))

	res, _ := check(t, newConfig(), fakeSurface{contracts: small, impls: large}, nil)
	require.Len(t, res.Differences, 1)
	assert.Equal(t, models.Added, res.Differences[0].Kind)
	assert.Equal(t, addedMember("Stop"), res.Differences[0].String())
	assert.Equal(t, models.VerdictCompatible, res.Verdict)

	res, _ = check(t, newConfig(), fakeSurface{contracts: large, impls: small}, nil)
	require.Len(t, res.Differences, 1)
	assert.Equal(t, models.Incompatible, res.Differences[0].Kind)
	assert.Equal(t, droppedMember, res.Differences[0].String())
	assert.Equal(t, models.VerdictIncompatible, res.Verdict)
}

func TestCheckWarnsOnUnpairedAssembly(t *testing.T) {
	renamed := func() []*models.Assembly {
		out := widget(method("Start", models.VisibilityPublic))()
		out[0].Name = "Fabrikam"
		return out
	}
	surface := fakeSurface{contracts: widget(method("Start", models.VisibilityPublic)), impls: renamed}

	core, logs := observer.New(zapcore.WarnLevel)
	svc := New(zap.New(core), surface, nil, rules.DefaultRegistry(), newConfig())
	svc.stdout = &bytes.Buffer{}
	_, err := svc.Check(context.Background())
	require.NoError(t, err)

	warned := logs.FilterMessage("assembly has no counterpart with the same name and is not compared")
	require.Equal(t, 2, warned.Len())
	assert.Equal(t, "Contoso", warned.All()[0].ContextMap()["assembly"])
	assert.Equal(t, "Fabrikam", warned.All()[1].ContextMap()["assembly"])
}

func TestCheckBaseline(t *testing.T) {
	surface := fakeSurface{
		contracts: widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic)),
		impls:     widget(method("Start", models.VisibilityPublic)),
	}
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	t.Run("exact line suppresses", func(t *testing.T) {
		path := write("exact.txt", "# accepted\n"+droppedMember+"\n")
		res, out := check(t, newConfig(func(c *config.Config) { c.Baseline = []string{path} }), surface, nil)

		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Equal(t, 1, res.Suppressed)
		assert.Empty(t, res.UnusedBaseline)
		assert.Equal(t, "Total Issues: 0\n", out)
	})

	t.Run("previous report is a valid baseline", func(t *testing.T) {
		_, report := check(t, newConfig(), surface, nil)
		path := write("report.txt", report)
		res, _ := check(t, newConfig(func(c *config.Config) { c.Baseline = []string{path} }), surface, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Empty(t, res.UnusedBaseline)
	})

	t.Run("added lines are matched too", func(t *testing.T) {
		grown := fakeSurface{
			contracts: widget(method("Start", models.VisibilityPublic)),
			impls:     widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic)),
		}
		path := write("added.txt", addedMember("Stop")+"\n")
		res, out := check(t, newConfig(func(c *config.Config) {
			c.Baseline = []string{path}
			c.ValidateBaseline = true
		}), grown, nil)

		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Equal(t, 1, res.Suppressed)
		assert.Empty(t, res.UnusedBaseline)
		assert.Equal(t, "Total Issues: 0\n", out)
	})

	t.Run("previous report with additions is a valid baseline", func(t *testing.T) {
		mixed := fakeSurface{
			contracts: widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic)),
			impls:     widget(method("Start", models.VisibilityPublic), method("Pause", models.VisibilityPublic)),
		}
		_, report := check(t, newConfig(), mixed, nil)
		require.Contains(t, report, addedMember("Pause"))
		path := write("mixed.txt", report)

		res, _ := check(t, newConfig(func(c *config.Config) {
			c.Baseline = []string{path}
			c.ValidateBaseline = true
		}), mixed, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Equal(t, 2, res.Suppressed)
		assert.Empty(t, res.UnusedBaseline)
	})

	t.Run("unused entries", func(t *testing.T) {
		path := write("stale.txt", droppedMember+"\nCannotSealType : Type 'Contoso.Gone' is sealed.\n")

		res, out := check(t, newConfig(func(c *config.Config) { c.Baseline = []string{path} }), surface, nil)
		assert.Equal(t, models.VerdictCompatible, res.Verdict)
		assert.Equal(t, []string{"CannotSealType : Type 'Contoso.Gone' is sealed."}, res.UnusedBaseline)
		assert.True(t, strings.HasSuffix(out, "Total Issues: 0\n"+models.UnusedBaselineHeader+"\nCannotSealType : Type 'Contoso.Gone' is sealed.\n"))

		res, out = check(t, newConfig(func(c *config.Config) {
			c.Baseline = []string{path}
			c.ValidateBaseline = true
		}), surface, nil)
		assert.Equal(t, models.VerdictIncompatible, res.Verdict)
		assert.Contains(t, out, "Total Issues: 1\n")
	})
}

func TestCheckSetHeader(t *testing.T) {
	surface := fakeSurface{
		contracts: widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic)),
		impls:     widget(method("Start", models.VisibilityPublic)),
	}
	_, out := check(t, newConfig(func(c *config.Config) { c.GroupByAssembly = false }), surface, nil)
	assert.True(t, strings.HasPrefix(out, "Compat issues between implementation set impl and contract set contracts/Contoso.yaml:\n"+droppedMember+"\n"))
}

func TestCheckOperandNames(t *testing.T) {
	surface := fakeSurface{
		contracts: widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic)),
		impls:     widget(method("Start", models.VisibilityPublic)),
	}
	_, out := check(t, newConfig(func(c *config.Config) {
		c.LeftOperand = "reference"
		c.RightOperand = "build"
	}), surface, nil)
	assert.Contains(t, out, "does not exist in the build but it does exist in the reference.")
}

func TestCheckPersistsReportAndWritesOut(t *testing.T) {
	surface := fakeSurface{
		contracts: widget(method("Start", models.VisibilityPublic), method("Stop", models.VisibilityPublic)),
		impls:     widget(method("Start", models.VisibilityPublic)),
	}
	outPath := filepath.Join(t.TempDir(), "out", "compat.txt")
	reports := &fakeReports{}
	res, stdout := check(t, newConfig(func(c *config.Config) { c.Out = outPath }), surface, reports)

	assert.Empty(t, stdout)
	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), droppedMember)

	require.Len(t, reports.reports, 1)
	r := reports.reports[0]
	assert.Equal(t, res.RunID, r.RunID)
	assert.Equal(t, models.VerdictIncompatible, r.Verdict)
	assert.Equal(t, 1, r.TotalIssues)
	require.Len(t, r.Groups, 1)
	assert.Equal(t, "Compat issues with assembly Contoso:", r.Groups[0].Header)
}

func TestCheckSetupErrors(t *testing.T) {
	load := widget(method("Start", models.VisibilityPublic))
	surface := fakeSurface{contracts: load, impls: load}
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"baseline", func(c *config.Config) { c.Baseline = []string{missing} }},
		{"remap", func(c *config.Config) { c.RemapFile = missing }},
		{"exclude attributes", func(c *config.Config) { c.ExcludeAttributes = []string{missing} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(zaptest.NewLogger(t), surface, nil, rules.DefaultRegistry(), newConfig(tt.mutate))
			_, err := svc.Check(context.Background())
			require.Error(t, err)
			assert.True(t, models.IsFatal(err))
			assert.True(t, errors.Is(err, models.AppError{AppErrorType: models.ErrMissingFile}))
		})
	}

	t.Run("surface", func(t *testing.T) {
		failing := fakeSurface{err: models.NewAppError(models.ErrMissingAssembly, errors.New("Contoso"))}
		svc := New(zaptest.NewLogger(t), failing, nil, rules.DefaultRegistry(), newConfig())
		_, err := svc.Check(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.AppError{AppErrorType: models.ErrMissingAssembly}))
	})
}

func TestListRules(t *testing.T) {
	svc := New(zaptest.NewLogger(t), fakeSurface{}, nil, rules.DefaultRegistry(), newConfig())
	var buf bytes.Buffer
	require.NoError(t, svc.ListRules(context.Background(), &buf))
	assert.Contains(t, buf.String(), "MembersMustExist\n")
}

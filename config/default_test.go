package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/kustomize/kyaml/yaml"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg := New()
	assert.True(t, cfg.GroupByAssembly)
	assert.Equal(t, "contract", cfg.LeftOperand)
	assert.Equal(t, "implementation", cfg.RightOperand)
	assert.Equal(t, ".", cfg.ConfigPath)
	assert.False(t, cfg.ValidateBaseline)
	assert.Empty(t, cfg.Contracts)
}

func TestNewReturnsFreshConfig(t *testing.T) {
	a := New()
	a.Contracts = []string{"a.yaml"}
	b := New()
	assert.Empty(t, b.Contracts)
}

func TestSetDefaultConfig(t *testing.T) {
	old := GetDefaultConfig()
	t.Cleanup(func() { SetDefaultConfig(old) })

	SetDefaultConfig("groupByAssembly: false\nleftOperand: \"reference\"\n")
	cfg := New()
	assert.False(t, cfg.GroupByAssembly)
	assert.Equal(t, "reference", cfg.LeftOperand)
	assert.Equal(t, ".", cfg.ConfigPath, "internal values are still merged in")
}

func TestMergeStrings(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		dest    string
		wantErr bool
		want    []string
	}{
		{
			name: "src overrides dest and keeps dest only keys",
			src:  "out: report.txt\n",
			dest: "out: \"\"\nconfigPath: .\n",
			want: []string{"out: report.txt", "configPath: ."},
		},
		{
			name:    "invalid src",
			src:     "contracts: [unclosed",
			dest:    "out: x\n",
			wantErr: true,
		},
		{
			name:    "invalid dest",
			src:     "out: x\n",
			dest:    "contracts: {unclosed",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mergeStrings(tt.src, tt.dest, false, yaml.MergeOptions{})
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
		})
	}
}

package compat

import (
	"testing"

	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestClosest(t *testing.T) {
	reported := []string{
		"MembersMustExist : Member 'Contoso.Widget.Stop()' does not exist in the implementation but it does exist in the contract.",
		"TypesMustExist : Type 'Contoso.Gadget' does not exist in the implementation but it does exist in the contract.",
	}

	tests := []struct {
		name  string
		entry string
		want  string
		found bool
	}{
		{
			name:  "renamed member",
			entry: "MembersMustExist : Member 'Contoso.Widget.Halt()' does not exist in the implementation but it does exist in the contract.",
			want:  reported[0],
			found: true,
		},
		{
			name:  "unrelated entry",
			entry: "CannotSealType : Type 'Contoso.Gone' is sealed.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := closest(tt.entry, reported)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := closest("anything", nil)
	assert.False(t, ok)
}

func TestLogSummaryDumpsDifferenceText(t *testing.T) {
	asm := &models.Assembly{
		Name: "Contoso",
		Namespaces: []*models.Namespace{{
			Name:  "Contoso",
			Types: []*models.Type{{Name: "Gadget", Visibility: models.VisibilityPublic, Members: []*models.Member{{Name: "SecretHandshake"}}}},
		}},
	}
	asm.Link()
	gadget := asm.Namespaces[0].Types[0]

	core, logs := observer.New(zapcore.DebugLevel)
	w := newWriter(zap.New(core), nil, nil, nil, true, false)
	w.total = 1
	w.groups = []models.ReportGroup{{
		Header: "Compat issues with assembly Contoso:",
		Differences: []models.Difference{{
			ID:      "TypesMustExist",
			Kind:    models.Incompatible,
			Message: "Type 'Contoso.Gadget' does not exist in the implementation but it does exist in the contract.",
			Left:    gadget,
		}},
	}}
	w.logSummary()

	dumps := logs.FilterMessage("reported differences").All()
	require.Len(t, dumps, 1)
	dump, ok := dumps[0].ContextMap()["dump"].(string)
	require.True(t, ok)
	assert.Contains(t, dump, "Type 'Contoso.Gadget' does not exist in the implementation")
	assert.NotContains(t, dump, "SecretHandshake")
}

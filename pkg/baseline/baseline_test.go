package baseline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dotnet/arcade-sub016/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var removedMember = models.Difference{
	ID:      "MembersMustExist",
	Kind:    models.Incompatible,
	Message: "Member 'Contoso.C.M()' does not exist in the implementation but it does exist in the contract.",
}

var sealedType = models.Difference{
	ID:      "CannotSealType",
	Kind:    models.Incompatible,
	Message: "Type 'Contoso.C' is sealed in the implementation but not sealed in the contract.",
}

var removedType = models.Difference{
	ID:      "TypesMustExist",
	Kind:    models.Incompatible,
	Message: "Type 'Contoso.D' does not exist in the implementation but it does exist in the contract.",
}

func load(t *testing.T, content string) *Suppressor {
	t.Helper()
	s := New(zap.NewNop())
	require.NoError(t, s.Read(strings.NewReader(content), "baseline.txt"))
	return s
}

func TestParse(t *testing.T) {
	s := load(t, `Compat issues with assembly Contoso:
MembersMustExist : Member 'Contoso.C.M()' does not exist in the implementation but it does exist in the contract.   # accepted in 2.0

   # only a comment
CannotSealType
CannotSealType
Total Issues: 2
`)
	require.Equal(t, 2, s.Len())
	unused := s.Unused()
	assert.Equal(t, removedMember.String(), unused[0].Text)
	assert.Equal(t, 2, unused[0].Line)
	assert.Equal(t, "baseline.txt", unused[0].Source)
	assert.Equal(t, "CannotSealType", unused[1].Text)
}

func TestInclude(t *testing.T) {
	s := load(t, removedMember.String()+"\nCannotSealType\nTypesMustExist : something else\n")

	assert.False(t, s.Include(removedMember), "exact string")
	assert.False(t, s.Include(sealedType), "rule id")
	assert.True(t, s.Include(removedType))

	unused := s.Unused()
	require.Len(t, unused, 1)
	assert.Equal(t, "TypesMustExist : something else", unused[0].Text)
}

func TestSuppressionIsIdempotent(t *testing.T) {
	s := load(t, removedMember.String()+"\nCannotSealType\nStale : entry\n")
	diffs := []models.Difference{removedMember, sealedType, removedType, sealedType}

	pass := func() ([]models.Difference, []Entry) {
		var kept []models.Difference
		for _, d := range diffs {
			if s.Include(d) {
				kept = append(kept, d)
			}
		}
		return kept, s.Unused()
	}

	kept1, unused1 := pass()
	kept2, unused2 := pass()
	assert.Equal(t, kept1, kept2)
	assert.Equal(t, unused1, unused2)

	s.Reset()
	kept3, unused3 := pass()
	assert.Equal(t, kept1, kept3)
	assert.Equal(t, unused1, unused3)

	assert.Equal(t, []models.Difference{removedType}, kept1)
	require.Len(t, unused1, 1)
	assert.Equal(t, "Stale : entry", unused1[0].Text)
}

func TestResetForgetsUsage(t *testing.T) {
	s := load(t, "CannotSealType\n")
	s.Include(sealedType)
	assert.Empty(t, s.Unused())
	s.Reset()
	assert.Len(t, s.Unused(), 1)
}

func TestAddFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "baseline.txt")
	require.NoError(t, os.WriteFile(path, []byte(removedMember.String()+"\n"), 0o644))

	s := New(zap.NewNop())
	require.NoError(t, s.AddFile(path))
	assert.False(t, s.Include(removedMember))

	err := s.AddFile(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.True(t, models.IsFatal(err))
}

package rules

import (
	"strconv"
	"strings"

	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
)

type assemblyIdentityMustMatch struct{ base }

func (r assemblyIdentityMustMatch) EvaluateAssembly(ctx *Context, m *mapping.AssemblyMapping) []models.Difference {
	if m.Left == nil || m.Right == nil {
		return nil
	}
	l, rt := m.Left, m.Right
	if strings.EqualFold(l.Culture, rt.Culture) &&
		strings.EqualFold(l.PublicKeyToken, rt.PublicKeyToken) &&
		compareVersions(rt.Version, l.Version) >= 0 {
		return nil
	}
	return []models.Difference{r.incompatible(l, rt,
		"Assembly identity '%s' in the %s does not match '%s' in the %s.",
		identity(l), ctx.Contract, identity(rt), ctx.Implementation)}
}

func identity(a *models.Assembly) string {
	culture := a.Culture
	if culture == "" {
		culture = "neutral"
	}
	token := a.PublicKeyToken
	if token == "" {
		token = "null"
	}
	version := a.Version
	if version == "" {
		version = "0.0.0.0"
	}
	return a.Name + ", Version=" + version + ", Culture=" + culture + ", PublicKeyToken=" + token
}

// compareVersions compares dotted versions numerically. Missing or
// unparsable parts count as zero.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	part := func(parts []string, i int) int {
		if i >= len(parts) {
			return 0
		}
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0
		}
		return v
	}
	for i := 0; i < n; i++ {
		x, y := part(as, i), part(bs, i)
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

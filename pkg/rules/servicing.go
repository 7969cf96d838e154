package rules

import (
	"strings"

	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
)

// Servicing releases must not change the vtable or the layout of a type
// other assemblies may have been compiled against.

type cannotAddVirtualMembers struct{ base }

func (r cannotAddVirtualMembers) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left != nil || m.Right == nil || !m.Right.IsVirtual() || m.Right.Abstract {
		return nil
	}
	contractType := m.Type.Left
	if contractType == nil || contractType.IsInterface() || contractType.IsEffectivelySealed() {
		return nil
	}
	return []models.Difference{r.incompatible(nil, m.Right,
		"Member '%s' is virtual in the %s but is missing in the %s.", m.Right.FullName(), ctx.Implementation, ctx.Contract)}
}

type valueTypeLayoutMustMatch struct{ base }

func (r valueTypeLayoutMustMatch) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Left.Kind != models.TypeKindStruct || m.Right.Kind != models.TypeKindStruct {
		return nil
	}
	l := layout(ctx, m.Left, mapping.Left)
	rt := layout(ctx, m.Right, mapping.Right)
	if l == rt {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Instance field layout of value type '%s' changed from '%s' in the %s to '%s' in the %s.",
		m.Left.FullName(), l, ctx.Contract, rt, ctx.Implementation)}
}

// layout renders the instance fields of t in declaration order.
func layout(ctx *Context, t *models.Type, side mapping.Side) string {
	var fields []string
	for _, f := range t.Members {
		if f.Kind != models.MemberKindField || f.Static {
			continue
		}
		fields = append(fields, ctx.Comparer.TypeRefKey(f.ReturnType, side)+" "+f.Name)
	}
	return strings.Join(fields, "; ")
}

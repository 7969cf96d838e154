package rules

import (
	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
)

type typesMustExist struct{ base }

func (r typesMustExist) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	switch {
	case m.Left != nil && m.Right == nil:
		return []models.Difference{r.incompatible(m.Left, nil,
			"Type '%s' does not exist in the %s but it does exist in the %s.", m.Left.FullName(), ctx.Implementation, ctx.Contract)}
	case m.Left == nil && m.Right != nil:
		return []models.Difference{r.difference(models.Added, nil, m.Right,
			"Type '%s' exists in the %s but not the %s.", m.Right.FullName(), ctx.Implementation, ctx.Contract)}
	}
	return []models.Difference{r.unchanged(m.Left, m.Right)}
}

type cannotChangeTypeKind struct{ base }

func (r cannotChangeTypeKind) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Left.Kind == m.Right.Kind {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Type '%s' is a '%s' in the %s but is a '%s' in the %s.",
		m.Left.FullName(), m.Right.Kind, ctx.Implementation, m.Left.Kind, ctx.Contract)}
}

type cannotSealType struct{ base }

func (r cannotSealType) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Left.Kind != models.TypeKindClass || m.Right.Kind != models.TypeKindClass {
		return nil
	}
	if m.Left.IsEffectivelySealed() || !m.Right.IsEffectivelySealed() {
		return nil
	}
	if m.Right.Sealed || m.Right.Static {
		return []models.Difference{r.incompatible(m.Left, m.Right,
			"Type '%s' is sealed in the %s but not sealed in the %s.", m.Left.FullName(), ctx.Implementation, ctx.Contract)}
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Type '%s' is effectively (has a private constructor) sealed in the %s but not sealed in the %s.",
		m.Left.FullName(), ctx.Implementation, ctx.Contract)}
}

type cannotMakeTypeAbstract struct{ base }

func (r cannotMakeTypeAbstract) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Right.Kind != models.TypeKindClass || m.Right.Static {
		return nil
	}
	if !m.Right.Abstract || m.Left.Abstract {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Type '%s' is abstract in the %s but is not abstract in the %s.", m.Left.FullName(), ctx.Implementation, ctx.Contract)}
}

type cannotRemoveBaseTypeOrInterface struct{ base }

func (r cannotRemoveBaseTypeOrInterface) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	if m.Left == nil || m.Right == nil {
		return nil
	}
	var diffs []models.Difference

	implBases := ctx.baseTypes(m.Right, mapping.Right)
	for _, b := range ctx.baseTypes(m.Left, mapping.Left) {
		if !ctx.visibleRef(b) {
			continue
		}
		found := false
		for _, ib := range implBases {
			if ctx.sameRef(b, ib) {
				found = true
				break
			}
		}
		if !found {
			diffs = append(diffs, r.incompatible(m.Left, m.Right,
				"Type '%s' does not inherit from base type '%s' in the %s but it does in the %s.",
				m.Left.FullName(), b, ctx.Implementation, ctx.Contract))
		}
	}

	implInterfaces := map[string]bool{}
	for name := range ctx.interfaces(m.Right, mapping.Right) {
		implInterfaces[ctx.Comparer.TypeRefKey(name, mapping.Right)] = true
	}
	for _, name := range m.Left.Interfaces {
		if !ctx.visibleRef(name) {
			continue
		}
		if !implInterfaces[ctx.Comparer.TypeRefKey(name, mapping.Left)] {
			diffs = append(diffs, r.incompatible(m.Left, m.Right,
				"Type '%s' does not implement interface '%s' in the %s but it does in the %s.",
				m.Left.FullName(), name, ctx.Implementation, ctx.Contract))
		}
	}
	return diffs
}

type cannotChangeVisibility struct{ base }

func (r cannotChangeVisibility) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Right.Visibility.Rank() >= m.Left.Visibility.Rank() {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Visibility of type '%s' is '%s' in the %s but '%s' in the %s.",
		m.Left.FullName(), m.Right.Visibility, ctx.Implementation, m.Left.Visibility, ctx.Contract)}
}

func (r cannotChangeVisibility) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Right.Visibility.Rank() >= m.Left.Visibility.Rank() {
		return nil
	}
	// narrowing on a type nobody outside can derive from only hides protected
	// access that was unusable anyway
	if m.Left.Visibility == models.VisibilityFamily && m.Left.ContainingType.IsEffectivelySealed() {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Visibility of member '%s' is '%s' in the %s but '%s' in the %s.",
		m.Left.FullName(), m.Right.Visibility, ctx.Implementation, m.Left.Visibility, ctx.Contract)}
}

package rules

import (
	"sort"
	"strings"

	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
)

// attributeDifference compares the attribute applications of paired types
// and members.
type attributeDifference struct{ base }

func (r attributeDifference) EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference {
	if m.Left == nil || m.Right == nil {
		return nil
	}
	return r.compare(ctx, m.Left, m.Right, m.Left.FullName(), m.Left.Attributes, m.Right.Attributes)
}

func (r attributeDifference) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil {
		return nil
	}
	return r.compare(ctx, m.Left, m.Right, m.Left.FullName(), m.Left.Attributes, m.Right.Attributes)
}

// attributeGroup holds the sorted keys of every application of one attribute
// type on one side.
type attributeGroup map[string][]string

func (r attributeDifference) group(ctx *Context, attrs models.Attributes) attributeGroup {
	g := attributeGroup{}
	for _, a := range attrs {
		if !ctx.Filter.IncludeAttribute(a) || ctx.AttributeIgnore.ShouldExclude(a.Type) {
			continue
		}
		g[a.Type] = append(g[a.Type], a.Key())
	}
	for _, keys := range g {
		sort.Strings(keys)
	}
	return g
}

func (r attributeDifference) compare(ctx *Context, left, right models.Declaration, target string, contract, impl models.Attributes) []models.Difference {
	lg := r.group(ctx, contract)
	rg := r.group(ctx, impl)

	names := make([]string, 0, len(lg)+len(rg))
	for n := range lg {
		names = append(names, n)
	}
	for n := range rg {
		if _, ok := lg[n]; !ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	var diffs []models.Difference
	for _, name := range names {
		lk, inLeft := lg[name]
		rk, inRight := rg[name]
		switch {
		case inLeft && !inRight:
			diffs = append(diffs, models.Difference{
				ID: "CannotRemoveAttribute", Kind: models.Incompatible, Left: left, Right: right,
				Message: "Attribute '" + name + "' exists on '" + target + "' in the " + ctx.Contract + " but not the " + ctx.Implementation + ".",
			})
		case !inLeft && inRight:
			diffs = append(diffs, models.Difference{
				ID: "AddedAttribute", Kind: models.Added, Left: left, Right: right,
				Message: "Attribute '" + name + "' exists on '" + target + "' in the " + ctx.Implementation + " but not the " + ctx.Contract + ".",
			})
		default:
			l, rr := strings.Join(lk, ", "), strings.Join(rk, ", ")
			if l == rr {
				continue
			}
			diffs = append(diffs, models.Difference{
				ID: "CannotChangeAttribute", Kind: models.Incompatible, Left: left, Right: right,
				Message: "Attribute '" + name + "' on '" + target + "' changed from '" + l + "' in the " + ctx.Contract + " to '" + rr + "' in the " + ctx.Implementation + ".",
			})
		}
	}
	return diffs
}

package rules

import (
	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
)

type findResult int

const (
	notFound findResult = iota
	found
	returnTypeChanged
)

type membersMustExist struct{ base }

func (r membersMustExist) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	switch {
	case m.Left != nil && m.Right != nil:
		return []models.Difference{r.unchanged(m.Left, m.Right)}
	case m.Left == nil:
		return []models.Difference{r.difference(models.Added, nil, m.Right,
			"Member '%s' exists in the %s but not the %s.", m.Right.FullName(), ctx.Implementation, ctx.Contract)}
	}

	contract := m.Left
	// explicit implementations are reported through the interface they implement
	if contract.Kind == models.MemberKindMethod && contract.IsExplicitInterfaceImplementation() {
		return nil
	}
	msg := r.difference(models.Incompatible, contract, nil,
		"Member '%s' does not exist in the %s but it does exist in the %s.", contract.FullName(), ctx.Implementation, ctx.Contract)

	if impl := m.Type.Right; impl != nil && contract.Kind != models.MemberKindConstructor {
		// moving a member to a base type keeps it reachable
		res, match := r.findInBase(ctx, impl, contract)
		switch res {
		case found:
			return nil
		case returnTypeChanged:
			msg.Message += " There does exist a member with return type '" + match.ReturnType + "' instead of '" + contract.ReturnType + "'"
		}
	}
	return []models.Difference{msg}
}

func (r membersMustExist) findInBase(ctx *Context, impl *models.Type, contract *models.Member) (findResult, *models.Member) {
	key := ctx.Comparer.MemberKey(contract, mapping.Left)
	result := notFound
	var changed *models.Member
	for _, name := range ctx.baseTypes(impl, mapping.Right) {
		bt, ok := ctx.RightTypes.Lookup(name)
		if !ok {
			continue
		}
		for _, candidate := range bt.Members {
			if candidate.IsExplicitInterfaceImplementation() || candidate.Kind != contract.Kind {
				continue
			}
			if !ctx.Filter.IncludeMember(candidate) {
				continue
			}
			if ctx.Comparer.MemberKey(candidate, mapping.Right) != key {
				continue
			}
			if contract.ReturnType == "" || candidate.ReturnType == "" || ctx.sameRef(contract.ReturnType, candidate.ReturnType) {
				return found, candidate
			}
			result, changed = returnTypeChanged, candidate
		}
	}
	return result, changed
}

type returnTypesMustMatch struct{ base }

func (r returnTypesMustMatch) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Left.Kind == models.MemberKindConstructor {
		return nil
	}
	if ctx.sameRef(m.Left.ReturnType, m.Right.ReturnType) {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Return type on member '%s' is '%s' in the %s but '%s' in the %s.",
		m.Left.FullName(), m.Right.ReturnType, ctx.Implementation, m.Left.ReturnType, ctx.Contract)}
}

// overridable reports whether a derived type in another assembly could
// override the contract member.
func overridable(m *models.Member) bool {
	t := m.ContainingType
	return m.IsVirtual() && !m.Sealed && t != nil && !t.IsInterface() && !t.IsEffectivelySealed()
}

type cannotMakeMemberNonVirtual struct{ base }

func (r cannotMakeMemberNonVirtual) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || !overridable(m.Left) {
		return nil
	}
	if m.Right.IsVirtual() && !m.Right.Sealed {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Member '%s' is non-virtual in the %s but is virtual in the %s.", m.Left.FullName(), ctx.Implementation, ctx.Contract)}
}

type cannotMakeMemberAbstract struct{ base }

func (r cannotMakeMemberAbstract) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Left.Abstract || !m.Right.Abstract {
		return nil
	}
	if t := m.Right.ContainingType; t != nil && t.IsInterface() {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Member '%s' is abstract in the %s but is not abstract in the %s.", m.Left.FullName(), ctx.Implementation, ctx.Contract)}
}

type cannotChangeStaticness struct{ base }

func (r cannotChangeStaticness) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Left.Static == m.Right.Static {
		return nil
	}
	if m.Right.Static {
		return []models.Difference{r.incompatible(m.Left, m.Right,
			"Member '%s' is static in the %s but is not static in the %s.", m.Left.FullName(), ctx.Implementation, ctx.Contract)}
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Member '%s' is not static in the %s but is static in the %s.", m.Left.FullName(), ctx.Implementation, ctx.Contract)}
}

type parameterModifiersCannotChange struct{ base }

func (r parameterModifiersCannotChange) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || len(m.Left.Parameters) != len(m.Right.Parameters) {
		return nil
	}
	var diffs []models.Difference
	for i, lp := range m.Left.Parameters {
		rp := m.Right.Parameters[i]
		if lp.Modifier == rp.Modifier {
			continue
		}
		diffs = append(diffs, r.incompatible(m.Left, m.Right,
			"Modifiers on parameter '%s' on member '%s' changed from '%s' in the %s to '%s' in the %s.",
			lp.Name, m.Left.FullName(), modifier(lp), ctx.Contract, modifier(rp), ctx.Implementation))
	}
	return diffs
}

func modifier(p models.Parameter) string {
	if p.Modifier == "" {
		return "none"
	}
	return p.Modifier
}

type parameterNamesCannotChange struct{ base }

func (r parameterNamesCannotChange) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || len(m.Left.Parameters) != len(m.Right.Parameters) {
		return nil
	}
	var diffs []models.Difference
	for i, lp := range m.Left.Parameters {
		rp := m.Right.Parameters[i]
		if lp.Name == rp.Name {
			continue
		}
		diffs = append(diffs, r.incompatible(m.Left, m.Right,
			"Parameter name on member '%s' is '%s' in the %s but '%s' in the %s.",
			m.Left.FullName(), rp.Name, ctx.Implementation, lp.Name, ctx.Contract))
	}
	return diffs
}

type cannotAddAbstractMembers struct{ base }

func (r cannotAddAbstractMembers) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left != nil || m.Right == nil || !m.Right.Abstract {
		return nil
	}
	contractType := m.Type.Left
	if contractType == nil || contractType.IsInterface() || contractType.IsEffectivelySealed() {
		return nil
	}
	return []models.Difference{r.incompatible(nil, m.Right,
		"Member '%s' is abstract in the %s but is missing in the %s.", m.Right.FullName(), ctx.Implementation, ctx.Contract)}
}

type interfacesShouldHaveSameMembers struct{ base }

func (r interfacesShouldHaveSameMembers) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left != nil || m.Right == nil {
		return nil
	}
	contractType := m.Type.Left
	if contractType == nil || !contractType.IsInterface() {
		return nil
	}
	member := m.Right
	if member.Static && !member.Abstract {
		return nil
	}
	if !member.Abstract && ctx.AllowDefaultInterfaceMethods {
		return nil
	}
	return []models.Difference{r.incompatible(nil, member,
		"Interface member '%s' is present in the %s but not in the %s.", member.FullName(), ctx.Implementation, ctx.Contract)}
}

type enumValuesMustMatch struct{ base }

func (r enumValuesMustMatch) EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference {
	if m.Left == nil || m.Right == nil || m.Left.Kind != models.MemberKindField {
		return nil
	}
	if t := m.Left.ContainingType; t == nil || t.Kind != models.TypeKindEnum {
		return nil
	}
	if m.Left.ConstantValue == m.Right.ConstantValue {
		return nil
	}
	return []models.Difference{r.incompatible(m.Left, m.Right,
		"Enum value '%s' is (%s) in the %s but (%s) in the %s.",
		m.Left.FullName(), m.Right.ConstantValue, ctx.Implementation, m.Left.ConstantValue, ctx.Contract)}
}

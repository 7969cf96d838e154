// Package rules holds the difference rules and the engine that runs them
// against mapping nodes.
package rules

import (
	"fmt"

	"github.com/dotnet/arcade-sub016/pkg/filter"
	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
)

// Metadata carries the selection flags of a rule.
type Metadata struct {
	// Optional rules run only when optional rules are enforced.
	Optional bool
	// ServicingOnly rules run only in servicing mode.
	ServicingOnly bool
}

// Rule is a named check. A rule implements one or more of AssemblyRule,
// NamespaceRule, TypeRule and MemberRule.
type Rule interface {
	Name() string
	Metadata() Metadata
}

type AssemblyRule interface {
	Rule
	EvaluateAssembly(ctx *Context, m *mapping.AssemblyMapping) []models.Difference
}

type NamespaceRule interface {
	Rule
	EvaluateNamespace(ctx *Context, m *mapping.NamespaceMapping) []models.Difference
}

type TypeRule interface {
	Rule
	EvaluateType(ctx *Context, m *mapping.TypeMapping) []models.Difference
}

type MemberRule interface {
	Rule
	EvaluateMember(ctx *Context, m *mapping.MemberMapping) []models.Difference
}

// Context is what a rule may consult besides the node it inspects.
type Context struct {
	Comparer mapping.Comparer
	Filter   filter.Filter
	// LeftTypes and RightTypes resolve type references of each side, for
	// base type chains and interface lists.
	LeftTypes  *filter.TypeIndex
	RightTypes *filter.TypeIndex
	// Contract and Implementation name the operands in messages.
	Contract                     string
	Implementation               string
	AttributeIgnore              *filter.AttributeIgnoreList
	AllowDefaultInterfaceMethods bool
}

// NewContext fills the operand names and comparer with their defaults.
func NewContext(f filter.Filter, c mapping.Comparer) *Context {
	if c == nil {
		c = mapping.DefaultComparer{}
	}
	return &Context{
		Comparer:       c,
		Filter:         f,
		Contract:       models.DefaultLeftOperand,
		Implementation: models.DefaultRightOperand,
	}
}

func (ctx *Context) index(side mapping.Side) *filter.TypeIndex {
	if side == mapping.Left {
		return ctx.LeftTypes
	}
	return ctx.RightTypes
}

// sameRef compares a contract type reference with an implementation one.
func (ctx *Context) sameRef(left, right string) bool {
	return ctx.Comparer.TypeRefKey(left, mapping.Left) == ctx.Comparer.TypeRefKey(right, mapping.Right)
}

// baseTypes returns the base type chain of t, nearest first, as far as the
// side's index can resolve it. Unresolvable names end the chain but are
// still returned.
func (ctx *Context) baseTypes(t *models.Type, side mapping.Side) []string {
	var out []string
	seen := map[string]bool{}
	for cur := t; cur != nil && cur.BaseType != "" && !seen[cur.BaseType]; {
		name := cur.BaseType
		seen[name] = true
		out = append(out, name)
		next, ok := ctx.index(side).Lookup(name)
		if !ok {
			break
		}
		cur = next
	}
	return out
}

// interfaces returns every interface t implements, including those of its
// base types and those inherited by its interfaces.
func (ctx *Context) interfaces(t *models.Type, side mapping.Side) map[string]bool {
	out := map[string]bool{}
	var visit func(names []string)
	visit = func(names []string) {
		for _, n := range names {
			if out[n] {
				continue
			}
			out[n] = true
			if it, ok := ctx.index(side).Lookup(n); ok {
				visit(it.Interfaces)
			}
		}
	}
	visit(t.Interfaces)
	for _, b := range ctx.baseTypes(t, side) {
		if bt, ok := ctx.index(side).Lookup(b); ok {
			visit(bt.Interfaces)
		}
	}
	return out
}

// visibleRef reports whether a contract side type reference is part of the
// compared surface. Unknown references count as visible.
func (ctx *Context) visibleRef(name string) bool {
	t, ok := ctx.LeftTypes.Lookup(name)
	if !ok {
		return true
	}
	return ctx.Filter.IncludeType(t)
}

type base struct {
	name string
	meta Metadata
}

func (b base) Name() string       { return b.name }
func (b base) Metadata() Metadata { return b.meta }

func (b base) difference(kind models.DifferenceType, left, right models.Declaration, format string, args ...interface{}) models.Difference {
	return models.Difference{
		ID:      b.name,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Left:    left,
		Right:   right,
	}
}

func (b base) incompatible(left, right models.Declaration, format string, args ...interface{}) models.Difference {
	return b.difference(models.Incompatible, left, right, format, args...)
}

func (b base) unchanged(left, right models.Declaration) models.Difference {
	return models.Difference{ID: b.name, Kind: models.Unchanged, Left: left, Right: right}
}

package rules

import (
	"fmt"
	"runtime/debug"

	"github.com/dotnet/arcade-sub016/pkg/mapping"
	"github.com/dotnet/arcade-sub016/pkg/models"
	"go.uber.org/zap"
)

// RuleFailureID identifies the difference recorded when a rule panics.
const RuleFailureID = "RuleFailure"

// Engine runs a fixed set of rules against mapping nodes.
type Engine struct {
	logger     *zap.Logger
	assemblies []AssemblyRule
	namespaces []NamespaceRule
	types      []TypeRule
	members    []MemberRule
}

// NewEngine sorts rules by the node kinds they inspect once, up front.
func NewEngine(logger *zap.Logger, rules []Rule) *Engine {
	e := &Engine{logger: logger}
	for _, r := range rules {
		if ar, ok := r.(AssemblyRule); ok {
			e.assemblies = append(e.assemblies, ar)
		}
		if nr, ok := r.(NamespaceRule); ok {
			e.namespaces = append(e.namespaces, nr)
		}
		if tr, ok := r.(TypeRule); ok {
			e.types = append(e.types, tr)
		}
		if mr, ok := r.(MemberRule); ok {
			e.members = append(e.members, mr)
		}
	}
	return e
}

// Evaluate returns every difference of every rule applying to node, in rule
// order. Nothing is deduplicated.
func (e *Engine) Evaluate(ctx *Context, node mapping.Node) []models.Difference {
	var out []models.Difference
	switch n := node.(type) {
	case *mapping.AssemblyMapping:
		for _, r := range e.assemblies {
			out = append(out, e.run(r, n, func() []models.Difference { return r.EvaluateAssembly(ctx, n) })...)
		}
	case *mapping.NamespaceMapping:
		for _, r := range e.namespaces {
			out = append(out, e.run(r, n, func() []models.Difference { return r.EvaluateNamespace(ctx, n) })...)
		}
	case *mapping.TypeMapping:
		for _, r := range e.types {
			out = append(out, e.run(r, n, func() []models.Difference { return r.EvaluateType(ctx, n) })...)
		}
	case *mapping.MemberMapping:
		for _, r := range e.members {
			out = append(out, e.run(r, n, func() []models.Difference { return r.EvaluateMember(ctx, n) })...)
		}
	}
	return out
}

// run turns a panicking rule into one incompatible difference so the other
// rules still get to look at the node.
func (e *Engine) run(r Rule, node mapping.Node, eval func() []models.Difference) (diffs []models.Difference) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("rule panicked while evaluating a node",
				zap.String("rule", r.Name()),
				zap.String("node", node.Key()),
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())))
			diffs = []models.Difference{{
				ID:      RuleFailureID,
				Kind:    models.Incompatible,
				Message: fmt.Sprintf("Rule '%s' failed on %s '%s': %v", r.Name(), node.Kind(), node.Key(), rec),
			}}
		}
	}()
	return eval()
}

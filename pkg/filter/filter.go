// Package filter decides which declarations of a loaded surface belong to the
// comparable API.
package filter

import (
	"github.com/dotnet/arcade-sub016/pkg/models"
)

// Filter answers inclusion for each declaration kind.
type Filter interface {
	IncludeNamespace(ns *models.Namespace) bool
	IncludeType(t *models.Type) bool
	IncludeMember(m *models.Member) bool
	IncludeAttribute(a models.Attribute) bool
}

// Options are shared by the visibility based filters.
type Options struct {
	// IncludeForwardedTypes keeps type forwards in the surface.
	IncludeForwardedTypes bool
	// ExcludeAttributes drops every attribute application.
	ExcludeAttributes bool
	// Index resolves type names referenced by attribute arguments. A nil index
	// treats every referenced type as visible.
	Index *TypeIndex
}

// policy is the part that differs between the visibility filters.
type policy struct {
	name string
	// typeVisible reports whether t alone, ignoring its declaring types, is
	// visible under the policy.
	typeVisible func(t *models.Type) bool
	// memberVisible reports whether the member's own accessibility is enough.
	memberVisible func(m *models.Member) bool
	// hidden drops declarations by attribute regardless of accessibility.
	hidden func(attrs models.Attributes) bool
}

type visibilityFilter struct {
	policy
	opts Options
}

func newVisibilityFilter(p policy, opts Options) *visibilityFilter {
	if p.hidden == nil {
		p.hidden = func(models.Attributes) bool { return false }
	}
	return &visibilityFilter{policy: p, opts: opts}
}

func (f *visibilityFilter) String() string { return f.name }

func (f *visibilityFilter) IncludeNamespace(ns *models.Namespace) bool {
	if ns == nil {
		return false
	}
	for _, t := range ns.Types {
		if f.IncludeType(t) {
			return true
		}
	}
	return false
}

func (f *visibilityFilter) IncludeType(t *models.Type) bool {
	if t == nil {
		return false
	}
	if t.Forwarded && !f.opts.IncludeForwardedTypes {
		return false
	}
	for cur := t; cur != nil; cur = cur.DeclaringType {
		if !f.typeVisible(cur) || f.hidden(cur.Attributes) {
			return false
		}
	}
	return true
}

func (f *visibilityFilter) IncludeMember(m *models.Member) bool {
	if m == nil || !f.IncludeType(m.ContainingType) {
		return false
	}
	if f.hidden(m.Attributes) {
		return false
	}
	if f.memberVisible(m) {
		return true
	}
	// protected members stay in even on sealed types, derived type code
	// generated from the surface has to see them
	switch m.Visibility {
	case models.VisibilityFamily, models.VisibilityFamilyOrAssembly:
		return true
	}
	if m.IsExplicitInterfaceImplementation() && f.interfaceVisible(m.ExplicitInterface) {
		return true
	}
	t := m.ContainingType
	return m.Abstract && t.Abstract && t.HasVisibleConstructor()
}

func (f *visibilityFilter) interfaceVisible(name string) bool {
	it, ok := f.opts.Index.Lookup(name)
	if !ok {
		return true
	}
	return f.IncludeType(it)
}

func (f *visibilityFilter) IncludeAttribute(a models.Attribute) bool {
	if f.opts.ExcludeAttributes {
		return false
	}
	if !f.referenceVisible(a.Type) {
		return false
	}
	for _, arg := range a.Arguments {
		if arg.TypeOf != "" && !f.referenceVisible(arg.TypeOf) {
			return false
		}
	}
	return true
}

func (f *visibilityFilter) referenceVisible(name string) bool {
	t, ok := f.opts.Index.Lookup(name)
	if !ok {
		return true
	}
	return f.IncludeType(t)
}

// topLevel reports whether t is not nested.
func topLevel(t *models.Type) bool {
	return t.DeclaringType == nil
}

// NewPublicOnly includes what a consumer in another assembly can reference.
func NewPublicOnly(opts Options) Filter {
	return newVisibilityFilter(publicOnly(), opts)
}

func publicOnly() policy {
	return policy{
		name: "public-only",
		typeVisible: func(t *models.Type) bool {
			if topLevel(t) {
				return t.Visibility == models.VisibilityPublic
			}
			return t.Visibility.VisibleOutside()
		},
		memberVisible: func(m *models.Member) bool {
			return m.Visibility == models.VisibilityPublic
		},
	}
}

// NewInternalsAndPublic additionally includes declarations visible to friend
// assemblies through InternalsVisibleTo.
func NewInternalsAndPublic(opts Options) Filter {
	return newVisibilityFilter(policy{
		name: "internals-and-public",
		typeVisible: func(t *models.Type) bool {
			return t.Visibility != models.VisibilityPrivate
		},
		memberVisible: func(m *models.Member) bool {
			return m.Visibility != models.VisibilityPrivate
		},
	}, opts)
}

// NewPublicEditorBrowsable is public-only minus declarations hidden with
// EditorBrowsable(EditorBrowsableState.Never).
func NewPublicEditorBrowsable(opts Options) Filter {
	p := publicOnly()
	p.name = "public-editor-browsable"
	p.hidden = func(attrs models.Attributes) bool {
		return attrs.EditorBrowsableNever()
	}
	return newVisibilityFilter(p, opts)
}

// NewServicingPublicOnly is public-only plus the declarations that fix the
// layout or the vtable of a visible type: every instance field of a value type
// and every virtual member of a type that can be derived from.
func NewServicingPublicOnly(opts Options) Filter {
	p := publicOnly()
	p.name = "servicing-public-only"
	base := p.memberVisible
	p.memberVisible = func(m *models.Member) bool {
		if base(m) {
			return true
		}
		t := m.ContainingType
		if m.Kind == models.MemberKindField && !m.Static && t.Kind.IsValueType() {
			return true
		}
		return m.IsVirtual() && !t.IsEffectivelySealed()
	}
	return newVisibilityFilter(p, opts)
}

// excludeCompilerGenerated drops declarations the compiler synthesised.
type excludeCompilerGenerated struct{}

// NewExcludeCompilerGenerated returns a filter meant to be intersected with a
// visibility filter; alone it includes everything not marked compiler generated.
func NewExcludeCompilerGenerated() Filter {
	return excludeCompilerGenerated{}
}

func (e excludeCompilerGenerated) IncludeNamespace(ns *models.Namespace) bool {
	if ns == nil {
		return false
	}
	for _, t := range ns.Types {
		if e.IncludeType(t) {
			return true
		}
	}
	return false
}

func (excludeCompilerGenerated) IncludeType(t *models.Type) bool {
	for cur := t; cur != nil; cur = cur.DeclaringType {
		if cur.Attributes.Has(models.CompilerGeneratedAttribute) {
			return false
		}
	}
	return t != nil
}

func (e excludeCompilerGenerated) IncludeMember(m *models.Member) bool {
	if m == nil || m.Attributes.Has(models.CompilerGeneratedAttribute) {
		return false
	}
	return m.ContainingType == nil || e.IncludeType(m.ContainingType)
}

func (excludeCompilerGenerated) IncludeAttribute(a models.Attribute) bool {
	return a.Type != models.CompilerGeneratedAttribute
}

// Intersection includes a declaration only when every filter does, asking
// them in order.
type Intersection struct {
	filters []Filter
}

func NewIntersection(filters ...Filter) *Intersection {
	return &Intersection{filters: filters}
}

// Filters returns the filters in evaluation order.
func (in *Intersection) Filters() []Filter {
	return in.filters
}

// IncludeNamespace is the plain AND of each filter's answer. It can hold for a
// namespace where no single type passes every filter; the mapper only emits
// namespaces that received a type.
func (in *Intersection) IncludeNamespace(ns *models.Namespace) bool {
	for _, f := range in.filters {
		if !f.IncludeNamespace(ns) {
			return false
		}
	}
	return true
}

func (in *Intersection) IncludeType(t *models.Type) bool {
	for _, f := range in.filters {
		if !f.IncludeType(t) {
			return false
		}
	}
	return true
}

func (in *Intersection) IncludeMember(m *models.Member) bool {
	for _, f := range in.filters {
		if !f.IncludeMember(m) {
			return false
		}
	}
	return true
}

func (in *Intersection) IncludeAttribute(a models.Attribute) bool {
	for _, f := range in.filters {
		if !f.IncludeAttribute(a) {
			return false
		}
	}
	return true
}

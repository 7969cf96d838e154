package models

import (
	"strconv"
	"strings"
)

// Visibility is the accessibility of a type or member as declared in metadata.
type Visibility string

const (
	VisibilityPrivate           Visibility = "private"
	VisibilityAssembly          Visibility = "internal"
	VisibilityFamilyAndAssembly Visibility = "private protected"
	VisibilityFamily            Visibility = "protected"
	VisibilityFamilyOrAssembly  Visibility = "protected internal"
	VisibilityPublic            Visibility = "public"
)

// Rank orders visibilities by how much of the world can see them. An empty
// visibility is treated as private.
func (v Visibility) Rank() int {
	switch v {
	case VisibilityPublic:
		return 5
	case VisibilityFamilyOrAssembly:
		return 4
	case VisibilityFamily:
		return 3
	case VisibilityFamilyAndAssembly:
		return 2
	case VisibilityAssembly:
		return 1
	}
	return 0
}

// VisibleOutside reports whether a consumer in another assembly can reach the
// declaration, either directly or by deriving from its declaring type.
func (v Visibility) VisibleOutside() bool {
	switch v {
	case VisibilityPublic, VisibilityFamily, VisibilityFamilyOrAssembly:
		return true
	}
	return false
}

// ExternallyAccessible reports whether a derived type in another assembly
// keeps at least the access a contract member granted to it.
func (v Visibility) ExternallyAccessible() bool {
	return v.VisibleOutside()
}

type TypeKind string

const (
	TypeKindClass     TypeKind = "class"
	TypeKindStruct    TypeKind = "struct"
	TypeKindInterface TypeKind = "interface"
	TypeKindEnum      TypeKind = "enum"
	TypeKindDelegate  TypeKind = "delegate"
)

// IsValueType reports whether instances of the kind are laid out inline.
func (k TypeKind) IsValueType() bool {
	return k == TypeKindStruct || k == TypeKindEnum
}

type MemberKind string

const (
	MemberKindMethod      MemberKind = "method"
	MemberKindConstructor MemberKind = "constructor"
	MemberKindField       MemberKind = "field"
	MemberKindProperty    MemberKind = "property"
	MemberKindEvent       MemberKind = "event"
)

type DeclarationKind string

const (
	DeclarationAssembly  DeclarationKind = "assembly"
	DeclarationNamespace DeclarationKind = "namespace"
	DeclarationType      DeclarationKind = "type"
	DeclarationMember    DeclarationKind = "member"
	DeclarationAttribute DeclarationKind = "attribute"
)

// Declaration is a read-only handle to one element of a loaded surface.
type Declaration interface {
	FullName() string
	DeclarationKind() DeclarationKind
}

// Well known attribute type names the filters and rules look at.
const (
	CompilerGeneratedAttribute  = "System.Runtime.CompilerServices.CompilerGeneratedAttribute"
	EditorBrowsableAttribute    = "System.ComponentModel.EditorBrowsableAttribute"
	InternalsVisibleToAttribute = "System.Runtime.CompilerServices.InternalsVisibleToAttribute"
	EditorBrowsableNever        = "Never"
)

type AttributeArgument struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Value  string `json:"value,omitempty" yaml:"value,omitempty"`
	TypeOf string `json:"typeOf,omitempty" yaml:"typeOf,omitempty"`
}

// String renders the argument the way it would appear in source.
func (a AttributeArgument) String() string {
	v := a.Value
	if a.TypeOf != "" {
		v = "typeof(" + a.TypeOf + ")"
	}
	if a.Name != "" {
		return a.Name + " = " + v
	}
	return v
}

// Attribute is one custom attribute application.
type Attribute struct {
	Type      string              `json:"type" yaml:"type"`
	Arguments []AttributeArgument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

func (a Attribute) FullName() string                 { return a.Type }
func (a Attribute) DeclarationKind() DeclarationKind { return DeclarationAttribute }

// Key identifies the attribute together with its arguments, so two
// applications of the same type with different arguments have different keys.
func (a Attribute) Key() string {
	args := make([]string, len(a.Arguments))
	for i, arg := range a.Arguments {
		args[i] = arg.String()
	}
	return a.Type + "(" + strings.Join(args, ", ") + ")"
}

type Attributes []Attribute

// Find returns the first application of the named attribute type.
func (as Attributes) Find(typeName string) (Attribute, bool) {
	for _, a := range as {
		if a.Type == typeName {
			return a, true
		}
	}
	return Attribute{}, false
}

func (as Attributes) Has(typeName string) bool {
	_, ok := as.Find(typeName)
	return ok
}

// EditorBrowsableNever reports whether the declaration is hidden from
// IntelliSense with EditorBrowsable(EditorBrowsableState.Never).
func (as Attributes) EditorBrowsableNever() bool {
	a, ok := as.Find(EditorBrowsableAttribute)
	if !ok || len(a.Arguments) == 0 {
		return false
	}
	v := a.Arguments[0].Value
	return v == EditorBrowsableNever || strings.HasSuffix(v, "."+EditorBrowsableNever) || v == "1"
}

type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	// Modifier is one of ref, out, in or params.
	Modifier string `json:"modifier,omitempty" yaml:"modifier,omitempty"`
}

// IsByRef reports whether the parameter is passed by reference. ref, out and
// in share one metadata signature and differ only in source.
func (p Parameter) IsByRef() bool {
	switch p.Modifier {
	case "ref", "out", "in":
		return true
	}
	return false
}

// Assembly is one loaded binary surface.
type Assembly struct {
	Name           string       `json:"name" yaml:"name"`
	Version        string       `json:"version,omitempty" yaml:"version,omitempty"`
	Culture        string       `json:"culture,omitempty" yaml:"culture,omitempty"`
	PublicKeyToken string       `json:"publicKeyToken,omitempty" yaml:"publicKeyToken,omitempty"`
	References     []string     `json:"references,omitempty" yaml:"references,omitempty"`
	Attributes     Attributes   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Namespaces     []*Namespace `json:"namespaces,omitempty" yaml:"namespaces,omitempty"`
	// Forwards lists full names of types forwarded to another assembly.
	Forwards []string `json:"forwards,omitempty" yaml:"forwards,omitempty"`

	// Location is the file the surface was loaded from.
	Location string `json:"-" yaml:"-"`
}

func (a *Assembly) FullName() string                 { return a.Name }
func (a *Assembly) DeclarationKind() DeclarationKind { return DeclarationAssembly }

// IsFacade reports whether the assembly only forwards types elsewhere.
func (a *Assembly) IsFacade() bool {
	if len(a.Forwards) == 0 {
		return false
	}
	for _, ns := range a.Namespaces {
		for _, t := range ns.Types {
			if !t.Forwarded {
				return false
			}
		}
	}
	return true
}

func (a *Assembly) HasAttribute(typeName string) bool {
	return a.Attributes.Has(typeName)
}

// Link sets the back pointers of every namespace, type and member and
// materialises forwarded types into their namespaces. It must be called once
// after decoding and before the assembly is handed to the engine.
func (a *Assembly) Link() {
	byName := make(map[string]*Namespace, len(a.Namespaces))
	for _, ns := range a.Namespaces {
		byName[ns.Name] = ns
		ns.Assembly = a
		for _, t := range ns.Types {
			t.link(a, ns, nil)
		}
	}
	for _, fwd := range a.Forwards {
		nsName, name := SplitTypeName(fwd)
		ns, ok := byName[nsName]
		if !ok {
			ns = &Namespace{Name: nsName, Assembly: a}
			byName[nsName] = ns
			a.Namespaces = append(a.Namespaces, ns)
		}
		t := &Type{Name: name, Kind: TypeKindClass, Visibility: VisibilityPublic, Forwarded: true}
		t.link(a, ns, nil)
		ns.Types = append(ns.Types, t)
	}
}

// AllTypes returns every type of the assembly, nested types included.
func (a *Assembly) AllTypes() []*Type {
	var out []*Type
	var walk func(t *Type)
	walk = func(t *Type) {
		out = append(out, t)
		for _, n := range t.NestedTypes {
			walk(n)
		}
	}
	for _, ns := range a.Namespaces {
		for _, t := range ns.Types {
			walk(t)
		}
	}
	return out
}

type Namespace struct {
	Name  string  `json:"name" yaml:"name"`
	Types []*Type `json:"types,omitempty" yaml:"types,omitempty"`

	Assembly *Assembly `json:"-" yaml:"-"`
}

func (n *Namespace) FullName() string                 { return n.Name }
func (n *Namespace) DeclarationKind() DeclarationKind { return DeclarationNamespace }

type Type struct {
	Name              string     `json:"name" yaml:"name"`
	Kind              TypeKind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Visibility        Visibility `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Abstract          bool       `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Sealed            bool       `json:"sealed,omitempty" yaml:"sealed,omitempty"`
	Static            bool       `json:"static,omitempty" yaml:"static,omitempty"`
	BaseType          string     `json:"baseType,omitempty" yaml:"baseType,omitempty"`
	Interfaces        []string   `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	GenericParameters []string   `json:"genericParameters,omitempty" yaml:"genericParameters,omitempty"`
	Attributes        Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Members           []*Member  `json:"members,omitempty" yaml:"members,omitempty"`
	NestedTypes       []*Type    `json:"nestedTypes,omitempty" yaml:"nestedTypes,omitempty"`
	Forwarded         bool       `json:"forwarded,omitempty" yaml:"forwarded,omitempty"`

	Namespace     *Namespace `json:"-" yaml:"-"`
	DeclaringType *Type      `json:"-" yaml:"-"`
	Assembly      *Assembly  `json:"-" yaml:"-"`
}

func (t *Type) link(a *Assembly, ns *Namespace, declaring *Type) {
	t.Assembly = a
	t.Namespace = ns
	t.DeclaringType = declaring
	if t.Kind == "" {
		t.Kind = TypeKindClass
	}
	if t.Visibility == "" {
		t.Visibility = VisibilityPrivate
		if declaring == nil {
			t.Visibility = VisibilityAssembly
		}
	}
	for _, m := range t.Members {
		m.ContainingType = t
		if m.Visibility == "" {
			m.Visibility = VisibilityPrivate
		}
	}
	for _, n := range t.NestedTypes {
		n.link(a, ns, t)
	}
}

// MetadataName is the simple name with the generic arity suffix.
func (t *Type) MetadataName() string {
	if n := len(t.GenericParameters); n > 0 {
		return t.Name + "`" + strconv.Itoa(n)
	}
	return t.Name
}

// FullName is the namespace qualified name, with nested types joined by '+'.
func (t *Type) FullName() string {
	if t.DeclaringType != nil {
		return t.DeclaringType.FullName() + "+" + t.MetadataName()
	}
	if t.Namespace == nil || t.Namespace.Name == "" {
		return t.MetadataName()
	}
	return t.Namespace.Name + "." + t.MetadataName()
}

func (t *Type) DeclarationKind() DeclarationKind { return DeclarationType }

func (t *Type) IsInterface() bool { return t.Kind == TypeKindInterface }

// IsEffectivelySealed reports whether no type outside the assembly can derive
// from t.
func (t *Type) IsEffectivelySealed() bool {
	if t.Sealed || t.Static || t.Kind.IsValueType() || t.Kind == TypeKindDelegate {
		return true
	}
	return t.Kind == TypeKindClass && !t.HasVisibleConstructor()
}

// HasVisibleConstructor reports whether a derived type in another assembly can
// chain to one of t's constructors. A class without declared constructors gets
// the implicit public one.
func (t *Type) HasVisibleConstructor() bool {
	if t.Kind != TypeKindClass || t.Static {
		return false
	}
	declared := false
	for _, m := range t.Members {
		if m.Kind != MemberKindConstructor || m.Static {
			continue
		}
		declared = true
		if m.Visibility.VisibleOutside() {
			return true
		}
	}
	return !declared
}

// Member is a method, constructor, field, property or event of a type.
type Member struct {
	Name              string      `json:"name" yaml:"name"`
	Kind              MemberKind  `json:"kind,omitempty" yaml:"kind,omitempty"`
	Visibility        Visibility  `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Abstract          bool        `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Virtual           bool        `json:"virtual,omitempty" yaml:"virtual,omitempty"`
	Sealed            bool        `json:"sealed,omitempty" yaml:"sealed,omitempty"`
	Static            bool        `json:"static,omitempty" yaml:"static,omitempty"`
	ReturnType        string      `json:"returnType,omitempty" yaml:"returnType,omitempty"`
	Parameters        []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	GenericParameters []string    `json:"genericParameters,omitempty" yaml:"genericParameters,omitempty"`
	// ExplicitInterface names the interface when the member is an explicit
	// interface implementation.
	ExplicitInterface string     `json:"explicitInterface,omitempty" yaml:"explicitInterface,omitempty"`
	ConstantValue     string     `json:"constantValue,omitempty" yaml:"constantValue,omitempty"`
	Attributes        Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	ContainingType *Type `json:"-" yaml:"-"`
}

func (m *Member) DeclarationKind() DeclarationKind { return DeclarationMember }

// IsVirtual reports whether the member takes part in virtual dispatch.
func (m *Member) IsVirtual() bool {
	return m.Virtual || m.Abstract
}

func (m *Member) IsExplicitInterfaceImplementation() bool {
	return m.ExplicitInterface != ""
}

// Signature is the name, generic arity and parameter types of the member.
// Fields and events have no parameter list.
func (m *Member) Signature() string {
	return m.SignatureWith(func(s string) string { return s })
}

// SignatureWith renders the signature mapping every parameter type through
// typeRef, which lets comparers normalise type names.
func (m *Member) SignatureWith(typeRef func(string) string) string {
	var b strings.Builder
	if m.ExplicitInterface != "" {
		b.WriteString(typeRef(m.ExplicitInterface))
		b.WriteByte('.')
	}
	b.WriteString(m.Name)
	if n := len(m.GenericParameters); n > 0 {
		b.WriteString("``")
		b.WriteString(strconv.Itoa(n))
	}
	switch m.Kind {
	case MemberKindField, MemberKindEvent:
		return b.String()
	case MemberKindProperty:
		if len(m.Parameters) == 0 {
			return b.String()
		}
	}
	b.WriteByte('(')
	for i, p := range m.Parameters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(typeRef(p.Type))
		if p.IsByRef() {
			b.WriteByte('&')
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (m *Member) FullName() string {
	if m.ContainingType == nil {
		return m.Signature()
	}
	return m.ContainingType.FullName() + "." + m.Signature()
}

// SplitTypeName splits a namespace qualified type name into its namespace
// and simple name.
func SplitTypeName(fullName string) (string, string) {
	if i := strings.IndexByte(fullName, '+'); i >= 0 {
		fullName = fullName[:i]
	}
	i := strings.LastIndexByte(fullName, '.')
	if i < 0 {
		return "", fullName
	}
	return fullName[:i], fullName[i+1:]
}

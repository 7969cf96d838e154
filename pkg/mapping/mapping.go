// Package mapping pairs the declarations of a contract surface with the
// declarations of an implementation surface.
package mapping

import (
	"github.com/dotnet/arcade-sub016/pkg/models"
)

type NodeKind int

const (
	AssemblyNode NodeKind = iota
	NamespaceNode
	TypeNode
	MemberNode
)

func (k NodeKind) String() string {
	switch k {
	case AssemblyNode:
		return "assembly"
	case NamespaceNode:
		return "namespace"
	case TypeNode:
		return "type"
	}
	return "member"
}

// Node is one paired element of the mapping tree. At least one side is set.
type Node interface {
	Kind() NodeKind
	Key() string
	HasLeft() bool
	HasRight() bool
}

// AssemblyMapping is the root of one comparison.
type AssemblyMapping struct {
	Left       *models.Assembly
	Right      *models.Assembly
	Namespaces []*NamespaceMapping
	name       string
}

func (a *AssemblyMapping) Kind() NodeKind { return AssemblyNode }
func (a *AssemblyMapping) Key() string    { return a.name }
func (a *AssemblyMapping) HasLeft() bool  { return a.Left != nil }
func (a *AssemblyMapping) HasRight() bool { return a.Right != nil }

// Name is the contract assembly name, or the implementation's when the
// contract side is missing.
func (a *AssemblyMapping) Name() string { return a.name }

type NamespaceMapping struct {
	Left     *models.Namespace
	Right    *models.Namespace
	Types    []*TypeMapping
	Assembly *AssemblyMapping
	key      string
	index    map[string]*TypeMapping
}

func (n *NamespaceMapping) Kind() NodeKind { return NamespaceNode }
func (n *NamespaceMapping) Key() string    { return n.key }
func (n *NamespaceMapping) HasLeft() bool  { return n.Left != nil }
func (n *NamespaceMapping) HasRight() bool { return n.Right != nil }

type TypeMapping struct {
	Left          *models.Type
	Right         *models.Type
	Members       []*MemberMapping
	NestedTypes   []*TypeMapping
	Namespace     *NamespaceMapping
	DeclaringType *TypeMapping
	key           string
	nested        map[string]*TypeMapping
	members       map[string]*MemberMapping
}

func (t *TypeMapping) Kind() NodeKind { return TypeNode }
func (t *TypeMapping) Key() string    { return t.key }
func (t *TypeMapping) HasLeft() bool  { return t.Left != nil }
func (t *TypeMapping) HasRight() bool { return t.Right != nil }

// Representative returns the left type when present, otherwise the right one.
func (t *TypeMapping) Representative() *models.Type {
	if t.Left != nil {
		return t.Left
	}
	return t.Right
}

type MemberMapping struct {
	Left  *models.Member
	Right *models.Member
	Type  *TypeMapping
	key   string
}

func (m *MemberMapping) Kind() NodeKind { return MemberNode }
func (m *MemberMapping) Key() string    { return m.key }
func (m *MemberMapping) HasLeft() bool  { return m.Left != nil }
func (m *MemberMapping) HasRight() bool { return m.Right != nil }

func (m *MemberMapping) Representative() *models.Member {
	if m.Left != nil {
		return m.Left
	}
	return m.Right
}

// Visitor holds optional callbacks per node kind. A callback returning false
// skips the children of that node.
type Visitor struct {
	Assembly  func(*AssemblyMapping) bool
	Namespace func(*NamespaceMapping) bool
	Type      func(*TypeMapping) bool
	Member    func(*MemberMapping)
}

// Walk visits node and its descendants depth first, members of a type before
// its nested types.
func Walk(node Node, v Visitor) {
	switch n := node.(type) {
	case *AssemblyMapping:
		if v.Assembly != nil && !v.Assembly(n) {
			return
		}
		for _, ns := range n.Namespaces {
			Walk(ns, v)
		}
	case *NamespaceMapping:
		if v.Namespace != nil && !v.Namespace(n) {
			return
		}
		for _, t := range n.Types {
			Walk(t, v)
		}
	case *TypeMapping:
		if v.Type != nil && !v.Type(n) {
			return
		}
		for _, m := range n.Members {
			Walk(m, v)
		}
		for _, nt := range n.NestedTypes {
			Walk(nt, v)
		}
	case *MemberMapping:
		if v.Member != nil {
			v.Member(n)
		}
	}
}

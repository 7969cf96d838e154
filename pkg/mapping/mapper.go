package mapping

import (
	"sort"
	"strings"

	"github.com/dotnet/arcade-sub016/pkg/filter"
	"github.com/dotnet/arcade-sub016/pkg/models"
)

// Mapper builds mapping trees. It only pairs declarations; deciding what a
// one sided node means is left to the rules.
type Mapper struct {
	filter   filter.Filter
	comparer Comparer
}

func NewMapper(f filter.Filter, c Comparer) *Mapper {
	if c == nil {
		c = DefaultComparer{}
	}
	return &Mapper{filter: f, comparer: c}
}

func (mp *Mapper) Comparer() Comparer {
	return mp.comparer
}

// Map pairs assemblies by name, ignoring case, and maps each pair. Assemblies
// present on one side only produce one sided mappings.
func (mp *Mapper) Map(left, right []*models.Assembly) []*AssemblyMapping {
	byName := make(map[string]*AssemblyMapping)
	var out []*AssemblyMapping
	for _, a := range left {
		k := strings.ToLower(a.Name)
		if _, ok := byName[k]; ok {
			continue
		}
		am := &AssemblyMapping{Left: a, name: a.Name}
		byName[k] = am
		out = append(out, am)
	}
	for _, a := range right {
		k := strings.ToLower(a.Name)
		am, ok := byName[k]
		if !ok {
			am = &AssemblyMapping{name: a.Name}
			byName[k] = am
			out = append(out, am)
		}
		if am.Right == nil {
			am.Right = a
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].name) < strings.ToLower(out[j].name)
	})
	for _, am := range out {
		mp.fill(am)
	}
	return out
}

// MapSet flattens every assembly of each side into one mapping, so types that
// moved between assemblies of the same set still pair.
func (mp *Mapper) MapSet(leftName, rightName string, left, right []*models.Assembly) *AssemblyMapping {
	am := &AssemblyMapping{
		Left:  flatten(leftName, left),
		Right: flatten(rightName, right),
		name:  leftName,
	}
	mp.fill(am)
	return am
}

func flatten(name string, set []*models.Assembly) *models.Assembly {
	out := &models.Assembly{Name: name}
	for _, a := range set {
		out.Namespaces = append(out.Namespaces, a.Namespaces...)
		out.Attributes = append(out.Attributes, a.Attributes...)
		if out.Version == "" {
			out.Version, out.Culture, out.PublicKeyToken = a.Version, a.Culture, a.PublicKeyToken
		}
	}
	return out
}

// MapAssembly maps one explicit pair. Either side may be nil.
func (mp *Mapper) MapAssembly(left, right *models.Assembly) *AssemblyMapping {
	am := &AssemblyMapping{Left: left, Right: right}
	if left != nil {
		am.name = left.Name
	} else if right != nil {
		am.name = right.Name
	}
	mp.fill(am)
	return am
}

func (mp *Mapper) fill(am *AssemblyMapping) {
	namespaces := make(map[string]*NamespaceMapping)
	add := func(asm *models.Assembly, side Side) {
		if asm == nil {
			return
		}
		for _, ns := range asm.Namespaces {
			if !mp.filter.IncludeNamespace(ns) {
				continue
			}
			for _, t := range ns.Types {
				if !mp.filter.IncludeType(t) {
					continue
				}
				key := mp.comparer.TypeKey(t, side)
				nsKey := mp.comparer.NamespaceKey(ns.Name, side)
				// a type level remap moves the type to another namespace
				if moved, _ := models.SplitTypeName(key); moved != nsKey {
					nsKey = moved
				}
				nm, ok := namespaces[nsKey]
				if !ok {
					nm = &NamespaceMapping{Assembly: am, key: nsKey, index: make(map[string]*TypeMapping)}
					namespaces[nsKey] = nm
					am.Namespaces = append(am.Namespaces, nm)
				}
				if side == Left && nm.Left == nil {
					nm.Left = ns
				}
				if side == Right && nm.Right == nil {
					nm.Right = ns
				}
				mp.addType(&nm.Types, nm.index, nm, nil, t, key, side)
			}
		}
	}
	add(am.Left, Left)
	add(am.Right, Right)

	sort.SliceStable(am.Namespaces, func(i, j int) bool {
		return am.Namespaces[i].key < am.Namespaces[j].key
	})
	for _, nm := range am.Namespaces {
		sortTypes(nm.Types)
	}
}

// addType pairs t into list by key. The first declaration of a side wins
// when a side holds duplicates.
func (mp *Mapper) addType(list *[]*TypeMapping, index map[string]*TypeMapping, nm *NamespaceMapping, declaring *TypeMapping, t *models.Type, key string, side Side) {
	tm, ok := index[key]
	if !ok {
		tm = &TypeMapping{
			Namespace:     nm,
			DeclaringType: declaring,
			key:           key,
			nested:        make(map[string]*TypeMapping),
			members:       make(map[string]*MemberMapping),
		}
		index[key] = tm
		*list = append(*list, tm)
	}
	switch {
	case side == Left && tm.Left == nil:
		tm.Left = t
	case side == Right && tm.Right == nil:
		tm.Right = t
	default:
		return
	}

	for _, m := range t.Members {
		if !mp.filter.IncludeMember(m) {
			continue
		}
		mp.addMember(tm, m, mp.comparer.MemberKey(m, side), side)
	}
	for _, n := range t.NestedTypes {
		if !mp.filter.IncludeType(n) {
			continue
		}
		mp.addType(&tm.NestedTypes, tm.nested, nm, tm, n, mp.comparer.TypeKey(n, side), side)
	}
}

func (mp *Mapper) addMember(tm *TypeMapping, m *models.Member, key string, side Side) {
	mm, ok := tm.members[key]
	if !ok {
		mm = &MemberMapping{Type: tm, key: key}
		tm.members[key] = mm
		tm.Members = append(tm.Members, mm)
	}
	if side == Left && mm.Left == nil {
		mm.Left = m
	} else if side == Right && mm.Right == nil {
		mm.Right = m
	}
}

var memberKindOrder = map[models.MemberKind]int{
	models.MemberKindField:       0,
	models.MemberKindConstructor: 1,
	models.MemberKindProperty:    2,
	models.MemberKindEvent:       3,
	models.MemberKindMethod:      4,
}

func sortTypes(types []*TypeMapping) {
	sort.SliceStable(types, func(i, j int) bool {
		return types[i].key < types[j].key
	})
	for _, t := range types {
		sort.SliceStable(t.Members, func(i, j int) bool {
			ki := memberKindOrder[t.Members[i].Representative().Kind]
			kj := memberKindOrder[t.Members[j].Representative().Kind]
			if ki != kj {
				return ki < kj
			}
			return t.Members[i].key < t.Members[j].key
		})
		sortTypes(t.NestedTypes)
	}
}

package rules

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Registry is the ordered list of known rules.
type Registry struct {
	rules []Rule
}

func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// DefaultRegistry returns every built-in rule in evaluation order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		assemblyIdentityMustMatch{base{name: "AssemblyIdentityMustMatch", meta: Metadata{Optional: true}}},
		typesMustExist{base{name: "TypesMustExist"}},
		cannotChangeTypeKind{base{name: "CannotChangeTypeKind"}},
		cannotSealType{base{name: "CannotSealType"}},
		cannotMakeTypeAbstract{base{name: "CannotMakeTypeAbstract"}},
		cannotRemoveBaseTypeOrInterface{base{name: "CannotRemoveBaseTypeOrInterface"}},
		cannotChangeVisibility{base{name: "CannotChangeVisibility"}},
		membersMustExist{base{name: "MembersMustExist"}},
		returnTypesMustMatch{base{name: "ReturnTypesMustMatch"}},
		cannotMakeMemberNonVirtual{base{name: "CannotMakeMemberNonVirtual"}},
		cannotMakeMemberAbstract{base{name: "CannotMakeMemberAbstract"}},
		cannotChangeStaticness{base{name: "CannotChangeStaticness"}},
		parameterModifiersCannotChange{base{name: "ParameterModifiersCannotChange"}},
		parameterNamesCannotChange{base{name: "ParameterNamesCannotChange", meta: Metadata{Optional: true}}},
		cannotAddAbstractMembers{base{name: "CannotAddAbstractMembers"}},
		interfacesShouldHaveSameMembers{base{name: "InterfacesShouldHaveSameMembers"}},
		enumValuesMustMatch{base{name: "EnumValuesMustMatch"}},
		attributeDifference{base{name: "AttributeDifference"}},
		cannotAddVirtualMembers{base{name: "CannotAddVirtualMembers", meta: Metadata{ServicingOnly: true}}},
		valueTypeLayoutMustMatch{base{name: "ValueTypeLayoutMustMatch", meta: Metadata{ServicingOnly: true}}},
	)
}

// Register appends a rule after the existing ones.
func (r *Registry) Register(rule Rule) {
	r.rules = append(r.rules, rule)
}

func (r *Registry) Rules() []Rule {
	return r.rules
}

// SelectOptions decide which flagged rules take part in a run.
type SelectOptions struct {
	EnforceOptionalRules bool
	ServicingMode        bool
}

// Select returns the rules enabled by opts, keeping registry order.
func (r *Registry) Select(opts SelectOptions) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		meta := rule.Metadata()
		if meta.Optional && !opts.EnforceOptionalRules {
			continue
		}
		if meta.ServicingOnly && !opts.ServicingMode {
			continue
		}
		out = append(out, rule)
	}
	return out
}

// ListRules writes one rule name per line, sorted ignoring case, marking the
// optional ones.
func (r *Registry) ListRules(w io.Writer) error {
	rules := make([]Rule, len(r.rules))
	copy(rules, r.rules)
	sort.SliceStable(rules, func(i, j int) bool {
		return strings.ToLower(rules[i].Name()) < strings.ToLower(rules[j].Name())
	})
	for _, rule := range rules {
		name := rule.Name()
		if rule.Metadata().Optional {
			name += " (optional)"
		}
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

package validator

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
)

// RuleSet is an immutable mapping from rule name to Rule. It is safe for
// concurrent use.
type RuleSet struct {
	rules map[string]Rule
	names []string
}

var emptyRuleSet = &RuleSet{rules: map[string]Rule{}}

// NewRuleSet validates every rule and copies rules into a new RuleSet.
func NewRuleSet(rules map[string]Rule) (*RuleSet, error) {
	rs := &RuleSet{rules: make(map[string]Rule, len(rules))}
	for name, rule := range rules {
		if name == "" {
			return nil, fmt.Errorf("%w: empty rule name", ErrInvalidRule)
		}
		if rule == nil {
			return nil, fmt.Errorf("%w: rule %q is nil", ErrInvalidRule, name)
		}
		if err := rule.check(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		rs.rules[name] = rule
	}
	rs.names = slices.Sorted(maps.Keys(rs.rules))
	return rs, nil
}

// Get returns the rule registered under name.
func (rs *RuleSet) Get(name string) (Rule, bool) {
	r, ok := rs.rules[name]
	return r, ok
}

// Names returns the rule names in sorted order.
func (rs *RuleSet) Names() []string {
	return slices.Clone(rs.names)
}

func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Registry publishes the current RuleSet. Readers take one snapshot per
// validation; Swap replaces the whole set at once.
type Registry struct {
	current atomic.Pointer[RuleSet]
}

// NewRegistry creates a registry holding rs, or an empty set when rs is nil.
func NewRegistry(rs *RuleSet) *Registry {
	r := &Registry{}
	r.Swap(rs)
	return r
}

// Load returns the current RuleSet. It never returns nil.
func (r *Registry) Load() *RuleSet {
	if rs := r.current.Load(); rs != nil {
		return rs
	}
	return emptyRuleSet
}

// Swap installs rs and returns the previous set.
func (r *Registry) Swap(rs *RuleSet) *RuleSet {
	if rs == nil {
		rs = emptyRuleSet
	}
	old := r.current.Swap(rs)
	if old == nil {
		return emptyRuleSet
	}
	return old
}

package rules

import (
	"errors"
	"sort"

	"github.com/dhamidi/grammars/pattern"
)

// Unresolved is the reference count recorded for a name that is referenced
// but never defined.
const Unresolved = -1

// ErrNoRules is returned when a grammar yields no usable rule.
var ErrNoRules = errors.New("no rules")

// Rule is a named pattern.
type Rule struct {
	Name    string
	Pattern pattern.Pattern
}

// RuleSet is the finished result of a conversion: an ordered list of
// rules, with the rule nobody refers to first.
type RuleSet struct {
	rules  []Rule
	index  map[string]int
	counts map[string]int
	refs   map[string][]string
	diags  []Diagnostic
}

// NewRuleSet builds a rule set from already constructed patterns, in the
// given order. References are found by pattern identity: a sub-pattern that
// is the pattern of another rule, or a recursion targeting one, refers to
// that rule.
func NewRuleSet(rules ...Rule) *RuleSet {
	rs := newRuleSet(rules)
	rs.refs = patternReferences(rs.rules)
	for _, refs := range rs.refs {
		for _, name := range refs {
			rs.counts[name]++
		}
	}
	return rs
}

func newRuleSet(rules []Rule) *RuleSet {
	rs := &RuleSet{
		rules:  rules,
		index:  make(map[string]int, len(rules)),
		counts: make(map[string]int),
		refs:   make(map[string][]string),
	}
	for i, r := range rules {
		rs.index[r.Name] = i
	}
	return rs
}

// Rules returns the rules in order.
func (rs *RuleSet) Rules() []Rule {
	return append([]Rule(nil), rs.rules...)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Get returns the pattern of the named rule.
func (rs *RuleSet) Get(name string) (pattern.Pattern, bool) {
	i, ok := rs.index[name]
	if !ok {
		return nil, false
	}
	return rs.rules[i].Pattern, true
}

// Names returns the rule names in order.
func (rs *RuleSet) Names() []string {
	out := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = r.Name
	}
	return out
}

// First returns the root rule.
func (rs *RuleSet) First() (Rule, bool) {
	if len(rs.rules) == 0 {
		return Rule{}, false
	}
	return rs.rules[0], true
}

// Count returns how often name is referenced by other rules, or Unresolved
// if it is referenced but never defined.
func (rs *RuleSet) Count(name string) int {
	return rs.counts[name]
}

// Unresolved returns the referenced but undefined names, sorted.
func (rs *RuleSet) Unresolved() []string {
	var out []string
	for name, n := range rs.counts {
		if n == Unresolved {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Diagnostics returns the problems found while building the set.
func (rs *RuleSet) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), rs.diags...)
}

// References returns the reference graph: for every rule, the defined
// rules it refers to, in order of first appearance. The map is a copy.
func (rs *RuleSet) References() map[string][]string {
	out := make(map[string][]string, len(rs.rules))
	for _, r := range rs.rules {
		out[r.Name] = append([]string(nil), rs.refs[r.Name]...)
	}
	return out
}

// SortedNames returns the rule names in dependency order: every rule comes
// after the rules it refers to, except where a cycle makes that impossible.
func (rs *RuleSet) SortedNames() []string {
	return sortedNames(rs.Names(), rs.refs)
}

func sortedNames(order []string, refs map[string][]string) []string {
	var result []string
	marks := make(map[string]bool)
	var visit func(node string)
	visit = func(node string) {
		if marks[node] {
			return
		}
		marks[node] = true
		for _, r := range refs[node] {
			visit(r)
		}
		result = append(result, node)
	}
	for _, name := range order {
		visit(name)
	}
	return result
}

func patternReferences(rules []Rule) map[string][]string {
	owners := make(map[pattern.Pattern]string, len(rules))
	for _, r := range rules {
		if _, ok := owners[r.Pattern]; !ok {
			owners[r.Pattern] = r.Name
		}
	}

	refs := make(map[string][]string, len(rules))
	for _, r := range rules {
		var out []string
		seen := map[string]bool{r.Name: true}
		add := func(name string) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		visited := make(map[pattern.Pattern]bool)
		var walk func(p pattern.Pattern, root bool)
		walk = func(p pattern.Pattern, root bool) {
			if p == nil || visited[p] {
				return
			}
			if name, ok := owners[p]; ok && (!root || name != r.Name) {
				add(name)
				return
			}
			visited[p] = true
			switch p := p.(type) {
			case *pattern.Alternation:
				for _, el := range p.Elements {
					walk(el, false)
				}
			case *pattern.Concatenation:
				for _, el := range p.Elements {
					walk(el, false)
				}
				walk(p.Skip, false)
			case *pattern.Repetition:
				walk(p.Inner, false)
				walk(p.Skip, false)
			case *pattern.Recursion:
				walk(p.Target(), false)
			case *pattern.Latch:
				walk(p.Inner, false)
			}
		}
		walk(r.Pattern, true)
		refs[r.Name] = out
	}
	return refs
}

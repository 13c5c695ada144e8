package rules

import (
	"fmt"
	"strings"
)

// Cycles describes the reference cycles of a RuleSet and how they can be
// nested for display. A consumer that emits rules one per definition can
// print each cycle root with its internal members defined inside it, and
// skip the orphaned members at the top level.
type Cycles struct {
	// Roots lists the cycle roots in discovery order.
	Roots []string
	// Members maps a root to its cycles, each listing the members after
	// the root in reference order.
	Members map[string][][]string
	// Internal maps a root to the members that can be defined inside it.
	Internal map[string][]string
	// Orphans lists every internalized member.
	Orphans []string
	// References is the reference graph with the edge closing each cycle
	// removed.
	References map[string][]string
	// Diagnostics reports members that cannot be internalized.
	Diagnostics []Diagnostic
}

// IsOrphan reports whether name was internalized into a cycle root.
func (c *Cycles) IsOrphan(name string) bool {
	for _, o := range c.Orphans {
		if o == name {
			return true
		}
	}
	return false
}

// Cycles finds the reference cycles of rs. A member is internalized into
// its root when it has a single referer, or when every referer is already
// internal to the root or referenced from the root's subtree. Members
// failing both tests are reported.
func (rs *RuleSet) Cycles() *Cycles {
	refs := rs.References()
	order := rs.Names()
	c := &Cycles{
		Members:    make(map[string][][]string),
		Internal:   make(map[string][]string),
		References: refs,
	}

	marks := make(map[string]bool)
	var path []string
	var visit func(node string)
	visit = func(node string) {
		if marks[node] {
			return
		}
		if i := indexOf(path, node); i >= 0 {
			cycle := append([]string(nil), path[i+1:]...)
			if len(cycle) == 0 {
				return
			}
			if _, ok := c.Members[node]; !ok {
				c.Roots = append(c.Roots, node)
			}
			c.Members[node] = append(c.Members[node], cycle)
			last := cycle[len(cycle)-1]
			refs[last] = without(refs[last], node)
			return
		}
		path = append(path, node)
		for _, r := range append([]string(nil), refs[node]...) {
			visit(r)
		}
		path = path[:len(path)-1]
		marks[node] = true
	}
	for _, name := range order {
		visit(name)
	}

	for _, root := range c.Roots {
		for _, cycle := range c.Members[root] {
			for _, member := range cycle {
				c.internalize(root, member, order)
			}
		}
	}
	return c
}

func (c *Cycles) internalize(root, member string, order []string) {
	if indexOf(c.Internal[root], member) >= 0 {
		return
	}
	referers := referersOf(member, c.References, order)
	reparent := func() {
		c.Internal[root] = append(c.Internal[root], member)
		if !c.IsOrphan(member) {
			c.Orphans = append(c.Orphans, member)
		}
	}
	switch len(referers) {
	case 0:
		c.Diagnostics = append(c.Diagnostics, Diagnostic{
			Severity: Warning,
			Rule:     root,
			Name:     member,
			Offset:   -1,
			Message:  fmt.Sprintf("cycle member %q has no referers", member),
		})
		return
	case 1:
		reparent()
		return
	}
	external := c.externalReferences(root, map[string]bool{})
	for _, r := range referers {
		if indexOf(c.Internal[root], r) < 0 && indexOf(external, r) < 0 {
			c.Diagnostics = append(c.Diagnostics, Diagnostic{
				Severity: Warning,
				Rule:     root,
				Name:     member,
				Offset:   -1,
				Message: fmt.Sprintf("cannot internalize %q into %q, referenced by %s",
					member, root, strings.Join(referers, ", ")),
			})
			return
		}
	}
	reparent()
}

// externalReferences lists what rule and its internal members refer to,
// excluding the internal members themselves.
func (c *Cycles) externalReferences(rule string, seen map[string]bool) []string {
	if seen[rule] {
		return nil
	}
	seen[rule] = true
	var out []string
	for _, in := range c.Internal[rule] {
		for _, r := range c.externalReferences(in, seen) {
			if indexOf(out, r) < 0 {
				out = append(out, r)
			}
		}
	}
	out = append(out, c.References[rule]...)
	var result []string
	for _, r := range out {
		if indexOf(c.Internal[rule], r) < 0 {
			result = append(result, r)
		}
	}
	return result
}

func referersOf(name string, refs map[string][]string, order []string) []string {
	var out []string
	for _, rule := range order {
		if indexOf(refs[rule], name) >= 0 {
			out = append(out, rule)
		}
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, x := range list {
		if x == s {
			return i
		}
	}
	return -1
}

func without(list []string, s string) []string {
	out := list[:0:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}

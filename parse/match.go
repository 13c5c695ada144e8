// Package parse interprets pattern trees against input text.
//
// Two engines are provided. RecursiveDescent is a backtracking interpreter
// that evaluates every alternative and keeps the longest. Packrat runs the
// same interpreter but memoizes results per (offset, pattern) for the
// duration of one Parse call.
//
// A failed parse is reported as a nil result, never as an error. A Match
// whose Start equals its End is a successful empty match and is distinct
// from failure.
package parse

import "github.com/dhamidi/grammars/pattern"

// Match is a node of the concrete tree produced by a successful parse.
// Leaves come from literals, character classes and regular expressions;
// interior nodes have Children, in which nil stands for an element that
// was allowed to fail.
type Match struct {
	Pattern  pattern.Pattern // The pattern that produced this match
	Start    int             // Byte offset of the first matched byte
	End      int             // Byte offset after the last matched byte
	Text     string          // Source text covered by the match
	Children []*Match        // Sub-matches (nil for leaves)
}

// Len returns the number of bytes matched.
func (m *Match) Len() int {
	return m.End - m.Start
}

// IsEmpty reports whether the match consumed no input.
func (m *Match) IsEmpty() bool {
	return m.Start == m.End
}

// IsLeaf reports whether m was produced by a terminal pattern.
func (m *Match) IsLeaf() bool {
	switch m.Pattern.(type) {
	case *pattern.Literal, *pattern.CharClass, *pattern.Regex:
		return true
	}
	return false
}

// Child returns the i-th child, or nil when out of range.
func (m *Match) Child(i int) *Match {
	if m == nil || i < 0 || i >= len(m.Children) {
		return nil
	}
	return m.Children[i]
}

// Equal reports whether m and o were produced by the same patterns over the
// same text. Offsets are ignored, so a capture can be compared with a match
// found elsewhere in the input.
func (m *Match) Equal(o *Match) bool {
	if m == nil || o == nil {
		return m == nil && o == nil
	}
	if m.Pattern != o.Pattern || m.Text != o.Text || len(m.Children) != len(o.Children) {
		return false
	}
	for i := range m.Children {
		if !m.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Walk calls fn for m and every non-nil descendant in depth-first order.
// Returning false from fn skips the children of that match.
func (m *Match) Walk(fn func(*Match) bool) {
	if m == nil || !fn(m) {
		return
	}
	for _, c := range m.Children {
		c.Walk(fn)
	}
}

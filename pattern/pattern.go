// Package pattern defines the grammar algebra: the node types a grammar is
// lowered into and that the parse package interprets against input.
//
// Nodes are immutable once built, with one exception: a Recursion's target
// is assigned exactly once, after the pattern it points at has been
// constructed. That is how cyclic grammars are represented.
//
// Node identity matters. The packrat cache, latch scopes and rule lookups are
// keyed by pointer, so a sub-pattern shared across a grammar must be the same
// instance to be recognised as shared.
package pattern

import (
	"fmt"
	"regexp"
)

// Pattern is implemented by the pointer node types of this package only.
type Pattern interface {
	fmt.Stringer
	pattern()
}

// Unbounded is the Max of a repetition without an upper limit.
const Unbounded = -1

// Literal matches its text exactly. The empty literal always succeeds.
type Literal struct {
	Text string
}

// Range is an inclusive range of runes.
type Range struct {
	Lo, Hi rune
}

// Char returns the range containing only r.
func Char(r rune) Range {
	return Range{Lo: r, Hi: r}
}

// CharClass matches a single rune that falls into one of its ranges, or
// into none of them when Negated is set.
type CharClass struct {
	Ranges  []Range
	Negated bool
}

// Contains reports whether the class accepts r.
func (c *CharClass) Contains(r rune) bool {
	in := false
	for _, rg := range c.Ranges {
		if r >= rg.Lo && r <= rg.Hi {
			in = true
			break
		}
	}
	return in != c.Negated
}

// Regex matches a regular expression anchored at the cursor.
type Regex struct {
	Source string

	re           *regexp.Regexp
	matchesEmpty bool
}

// MatchLength returns the number of bytes of s matched from its start, or
// -1 if the expression does not match there.
func (r *Regex) MatchLength(s string) int {
	loc := r.re.FindStringIndex(s)
	if loc == nil {
		return -1
	}
	return loc[1]
}

// MatchesEmpty reports whether the expression can match the empty string.
func (r *Regex) MatchesEmpty() bool {
	return r.matchesEmpty
}

// Alternation matches the longest of its elements.
type Alternation struct {
	Elements []Pattern
	Locals   []*Latch
}

// Concatenation matches its elements in order. Skip, when set, may be
// consumed between elements (never before the first one).
type Concatenation struct {
	Elements []Pattern
	Skip     Pattern
	Locals   []*Latch
}

// Repetition matches Inner at least Min and at most Max times.
type Repetition struct {
	Inner Pattern
	Min   int
	Max   int
	Skip  Pattern
}

// Recursion stands in for a pattern that is not built yet.
type Recursion struct {
	name   string
	target Pattern
}

// Latch captures the first match of Inner within its scope; later
// occurrences in the same scope must match the same text.
type Latch struct {
	Inner Pattern
}

func (*Literal) pattern()       {}
func (*CharClass) pattern()     {}
func (*Regex) pattern()         {}
func (*Alternation) pattern()   {}
func (*Concatenation) pattern() {}
func (*Repetition) pattern()    {}
func (*Recursion) pattern()     {}
func (*Latch) pattern()         {}

// NewRecursion returns an unassigned recursion placeholder. The name is
// only used for display.
func NewRecursion(name string) *Recursion {
	return &Recursion{name: name}
}

// Name returns the display name given to NewRecursion.
func (r *Recursion) Name() string {
	return r.name
}

// Target returns the assigned pattern, or nil before Set.
func (r *Recursion) Target() Pattern {
	return r.target
}

// IsSet reports whether the target has been assigned.
func (r *Recursion) IsSet() bool {
	return r.target != nil
}

// Set assigns the target. It panics when called twice, with nil, or with the
// receiver itself.
func (r *Recursion) Set(p Pattern) {
	if r.target != nil {
		panic(fmt.Sprintf("pattern: recursion %q already set", r.name))
	}
	if p == nil {
		panic(fmt.Sprintf("pattern: recursion %q set to nil", r.name))
	}
	if q, ok := p.(*Recursion); ok && q == r {
		panic(fmt.Sprintf("pattern: recursion %q set to itself", r.name))
	}
	r.target = p
}

// IsZeroOrOne reports whether the repetition is logically optional, in
// which case it yields a bare match instead of a list.
func (r *Repetition) IsZeroOrOne() bool {
	return r.Min == 0 && r.Max == 1
}

// IsOptional reports whether p may succeed without consuming input, which
// lets an enclosing concatenation tolerate its failure.
func IsOptional(p Pattern) bool {
	switch p := p.(type) {
	case *Literal:
		return p.Text == ""
	case *Regex:
		return p.MatchesEmpty()
	case *Alternation:
		for _, el := range p.Elements {
			if IsOptional(el) {
				return true
			}
		}
		return false
	case *Concatenation:
		for _, el := range p.Elements {
			if !IsOptional(el) {
				return false
			}
		}
		return true
	case *Repetition:
		return p.Min == 0
	case *Latch:
		return IsOptional(p.Inner)
	}
	return false
}

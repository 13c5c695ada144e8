package pattern

import (
	"fmt"
	"regexp"
)

// Lit returns a literal pattern.
func Lit(text string) *Literal {
	return &Literal{Text: text}
}

// Class returns a character class accepting any rune in ranges.
func Class(ranges ...Range) *CharClass {
	return &CharClass{Ranges: ranges}
}

// NotClass returns a character class accepting any rune outside ranges.
func NotClass(ranges ...Range) *CharClass {
	return &CharClass{Ranges: ranges, Negated: true}
}

// NewRegex compiles expr into a pattern anchored at the cursor.
func NewRegex(expr string) (*Regex, error) {
	re, err := regexp.Compile(`\A(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile regex %q: %w", expr, err)
	}
	return &Regex{
		Source:       expr,
		re:           re,
		matchesEmpty: re.MatchString(""),
	}, nil
}

// MustRegex is like NewRegex but panics on an invalid expression. It is
// meant for meta-grammars built at package initialisation.
func MustRegex(expr string) *Regex {
	r, err := NewRegex(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// Alt returns an alternation over elements.
func Alt(elements ...Pattern) *Alternation {
	return &Alternation{Elements: elements}
}

// WithLocals returns a copy of a that declares its own scope for latches.
func (a *Alternation) WithLocals(latches ...*Latch) *Alternation {
	c := *a
	c.Locals = latches
	return &c
}

// Cat returns a concatenation of elements.
func Cat(elements ...Pattern) *Concatenation {
	return &Concatenation{Elements: elements}
}

// WithSkip returns a copy of c that may consume skip between elements.
func (c *Concatenation) WithSkip(skip Pattern) *Concatenation {
	d := *c
	d.Skip = skip
	return &d
}

// WithLocals returns a copy of c that declares its own scope for latches.
func (c *Concatenation) WithLocals(latches ...*Latch) *Concatenation {
	d := *c
	d.Locals = latches
	return &d
}

// Repeat matches p between min and max times. Use Unbounded for no upper
// limit.
func Repeat(min, max int, p Pattern) *Repetition {
	if min < 0 {
		min = 0
	}
	if max != Unbounded && max < min {
		panic(fmt.Sprintf("pattern: repetition max %d below min %d", max, min))
	}
	return &Repetition{Inner: p, Min: min, Max: max}
}

// Any matches p zero or more times.
func Any(p Pattern) *Repetition {
	return Repeat(0, Unbounded, p)
}

// Optional matches p zero or one time.
func Optional(p Pattern) *Repetition {
	return Repeat(0, 1, p)
}

// AtLeast matches p n or more times.
func AtLeast(n int, p Pattern) *Repetition {
	return Repeat(n, Unbounded, p)
}

// AtMost matches p up to n times.
func AtMost(n int, p Pattern) *Repetition {
	return Repeat(0, n, p)
}

// WithSkip returns a copy of r that may consume skip between iterations.
func (r *Repetition) WithSkip(skip Pattern) *Repetition {
	d := *r
	d.Skip = skip
	return &d
}

// NewLatch returns a latch over inner.
func NewLatch(inner Pattern) *Latch {
	return &Latch{Inner: inner}
}

// Package rules lowers dialect-neutral grammar productions into the pattern
// algebra.
//
// Readers for the individual grammar dialects produce a []Production. Convert
// resolves rule references, eliminates direct left and right recursion,
// breaks indirect recursion cycles with recursion proxies, and returns a
// RuleSet ordered so that the presumed root rule comes first.
package rules

import "github.com/dhamidi/grammars/pattern"

// Production is one rule as written in a grammar source.
type Production struct {
	Name   string
	Offset int // byte offset of the name in the source
	Body   Choice
}

// Choice is a list of alternatives.
type Choice []Sequence

// Sequence is a list of terms matched in order.
type Sequence []Term

// Term is an element of a Sequence.
type Term interface {
	term()
}

// Terminal is a term that is already a pattern, such as a quoted literal
// or a character range.
type Terminal struct {
	Pattern pattern.Pattern
}

// Ref is a reference to another rule by name.
type Ref struct {
	Name   string
	Offset int
}

// Group is a parenthesized choice.
type Group struct {
	Body Choice
}

// Repeat is a choice matched between Min and Max times. Max may be
// pattern.Unbounded.
type Repeat struct {
	Body Choice
	Min  int
	Max  int
}

func (Terminal) term() {}
func (Ref) term()      {}
func (Group) term()    {}
func (Repeat) term()   {}

// Lit is shorthand for a literal terminal.
func Lit(text string) Terminal {
	return Terminal{Pattern: pattern.Lit(text)}
}

// Seq is shorthand for a sequence of terms.
func Seq(terms ...Term) Sequence {
	return Sequence(terms)
}

// Alts is shorthand for a choice.
func Alts(seqs ...Sequence) Choice {
	return Choice(seqs)
}

// References returns the names p refers to, in order of first appearance,
// without duplicates and without p itself.
func (p *Production) References() []string {
	var out []string
	seen := map[string]bool{p.Name: true}
	p.Body.walkRefs(func(r Ref) {
		if !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r.Name)
		}
	})
	return out
}

// Refs returns every reference in p, including repeated and self references.
func (p *Production) Refs() []Ref {
	var out []Ref
	p.Body.walkRefs(func(r Ref) {
		out = append(out, r)
	})
	return out
}

func (c Choice) walkRefs(fn func(Ref)) {
	for _, seq := range c {
		for _, t := range seq {
			switch t := t.(type) {
			case Ref:
				fn(t)
			case Group:
				t.Body.walkRefs(fn)
			case Repeat:
				t.Body.walkRefs(fn)
			}
		}
	}
}

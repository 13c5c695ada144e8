// Package ebnf reads grammars written in ISO-style Extended Backus-Naur
// Form:
//
//	digits = digit , { digit } ;
//	number = [ "-" ] , digits , [ "." , digits ] ;
//
// Concatenation is written with commas and alternation with bars. Square
// brackets mark an optional part, braces a repetition of zero or more, and
// parentheses a group. The terminating semicolon may be left out when
// every rule starts on its own line. Comments are written (* like this *).
package ebnf

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

var log = commonlog.GetLogger("grammars.ebnf")

// ErrNoParse is wrapped by Parse errors.
var ErrNoParse = parse.ErrNoParse

// ws matches white space and comments.
const ws = `(?:\s|\(\*(?s:.*?)\*\))*`

// The meta-grammar.
var (
	Identifier = pattern.MustRegex(`[A-Za-z][A-Za-z0-9_]*`)
	Terminal   = pattern.Alt(
		pattern.Cat(pattern.Lit(`'`), pattern.MustRegex(`[^']*`), pattern.Lit(`'`)),
		pattern.Cat(pattern.Lit(`"`), pattern.MustRegex(`[^"]*`), pattern.Lit(`"`)),
	)

	rhs = pattern.NewRecursion("rhs")

	OptionGroup = bracketed("[", "]")
	RepeatGroup = bracketed("{", "}")
	Group       = bracketed("(", ")")

	Primary = pattern.Alt(Identifier, Terminal, OptionGroup, RepeatGroup, Group)
	List    = pattern.Cat(Primary, pattern.Any(pattern.Cat(pattern.MustRegex(ws+`,`+ws), Primary)))
	RHS     = pattern.Cat(List, pattern.Any(pattern.Cat(pattern.MustRegex(ws+`\|`+ws), List)))
	Rule    = pattern.Cat(
		Identifier,
		pattern.MustRegex(ws+`=`+ws),
		RHS,
		pattern.Optional(pattern.MustRegex(ws+`;`)),
	)

	space = pattern.MustRegex(ws)
	Rules = pattern.Cat(space, Rule, pattern.Any(pattern.Cat(space, Rule)), space)
)

func init() {
	rhs.Set(RHS)
}

func bracketed(open, close string) *pattern.Concatenation {
	s := pattern.MustRegex(ws)
	return pattern.Cat(pattern.Lit(open), s, rhs, s, pattern.Lit(close))
}

// Parse returns the concrete tree of src.
func Parse(src string) (*parse.Match, error) {
	m, err := parse.Complete(parse.NewRecursiveDescent(Rules), src)
	if err != nil {
		return nil, fmt.Errorf("parse ebnf: %w", err)
	}
	return m, nil
}

// Productions parses src and returns its rules in source order.
func Productions(src string) ([]rules.Production, error) {
	m, err := Parse(src)
	if err != nil {
		return nil, err
	}
	prods := []rules.Production{production(m.Child(1))}
	for _, next := range m.Child(2).Children {
		prods = append(prods, production(next.Child(1)))
	}
	log.Debugf("read %d productions", len(prods))
	return prods, nil
}

// Read parses src and converts it into a rule set.
func Read(src string) (*rules.RuleSet, error) {
	prods, err := Productions(src)
	if err != nil {
		return nil, err
	}
	return rules.Convert(prods)
}

func production(m *parse.Match) rules.Production {
	name := m.Child(0)
	return rules.Production{Name: name.Text, Offset: name.Start, Body: choice(m.Child(2))}
}

// choice reads an alternation. An empty group has no body match and
// reads as a single empty alternative.
func choice(m *parse.Match) rules.Choice {
	if m == nil {
		return rules.Alts(rules.Seq())
	}
	body := rules.Choice{sequence(m.Child(0))}
	for _, alt := range m.Child(1).Children {
		body = append(body, sequence(alt.Child(1)))
	}
	return body
}

func sequence(m *parse.Match) rules.Sequence {
	seq := rules.Sequence{term(m.Child(0))}
	for _, next := range m.Child(1).Children {
		seq = append(seq, term(next.Child(1)))
	}
	return seq
}

func term(m *parse.Match) rules.Term {
	m = m.Chosen()
	switch m.Pattern {
	case Identifier:
		return rules.Ref{Name: m.Text, Offset: m.Start}
	case OptionGroup:
		return rules.Repeat{Body: choice(m.Child(2)), Min: 0, Max: 1}
	case RepeatGroup:
		return rules.Repeat{Body: choice(m.Child(2)), Min: 0, Max: pattern.Unbounded}
	case Group:
		return rules.Group{Body: choice(m.Child(2))}
	}
	// a quoted terminal, unwrapped to its concatenation
	return rules.Lit(m.Child(1).Text)
}

// Package bnf reads grammars in classic Backus-Naur Form:
//
//	<syntax> ::= <rule> | <rule> <syntax>
//	<digit>  ::= "0" | "1" | "2"
//
// Every rule starts on a new line. Terms are quoted literals or rule
// names in angle brackets. A semicolon starts a comment that runs to the
// end of the line.
package bnf

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

var log = commonlog.GetLogger("grammars.bnf")

// ErrNoParse is wrapped by Parse errors.
var ErrNoParse = parse.ErrNoParse

// The meta-grammar.
var (
	RuleName = pattern.MustRegex(`[A-Za-z][A-Za-z0-9_-]*`)
	Literal  = pattern.Alt(
		pattern.Cat(pattern.Lit(`"`), pattern.MustRegex(`[^"\r\n]*`), pattern.Lit(`"`)),
		pattern.Cat(pattern.Lit(`'`), pattern.MustRegex(`[^'\r\n]*`), pattern.Lit(`'`)),
	)
	Reference = pattern.Cat(pattern.Lit("<"), RuleName, pattern.Lit(">"))
	Term      = pattern.Alt(Literal, Reference)

	OptWhitespace = pattern.MustRegex(`[ \t\f\v]*`)

	List       = pattern.Cat(Term, pattern.Any(pattern.Cat(OptWhitespace, Term)))
	Expression = pattern.Cat(List, pattern.Any(pattern.Cat(pattern.MustRegex(`\s*\|\s*`), List)))
	Rule       = pattern.Cat(
		pattern.Lit("<"), RuleName, pattern.Lit(">"),
		OptWhitespace, pattern.Lit("::="), OptWhitespace,
		Expression,
	)

	space   = pattern.MustRegex(`(?:\s|;[^\n]*)*`)
	lineEnd = pattern.MustRegex(`[ \t\f\v]*(?:;[^\n]*)?\r?\n(?:\s|;[^\n]*)*`)
	Syntax  = pattern.Cat(space, Rule, pattern.Any(pattern.Cat(lineEnd, Rule)), space)
)

// Parse returns the concrete tree of src.
func Parse(src string) (*parse.Match, error) {
	m, err := parse.Complete(parse.NewRecursiveDescent(Syntax), src)
	if err != nil {
		return nil, fmt.Errorf("parse bnf: %w", err)
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
	name := m.Child(1)
	return rules.Production{Name: name.Text, Offset: name.Start, Body: expression(m.Child(6))}
}

func expression(m *parse.Match) rules.Choice {
	body := rules.Choice{list(m.Child(0))}
	for _, alt := range m.Child(1).Children {
		body = append(body, list(alt.Child(1)))
	}
	return body
}

func list(m *parse.Match) rules.Sequence {
	seq := rules.Sequence{term(m.Child(0))}
	for _, next := range m.Child(1).Children {
		seq = append(seq, term(next.Child(1)))
	}
	return seq
}

func term(m *parse.Match) rules.Term {
	m = m.Chosen()
	if m.Pattern == Reference {
		name := m.Child(1)
		return rules.Ref{Name: name.Text, Offset: name.Start}
	}
	return rules.Lit(m.Child(1).Text)
}

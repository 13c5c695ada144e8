// Package goebnf reads grammars in the EBNF dialect of the Go language
// specification, as implemented by golang.org/x/exp/ebnf:
//
//	Expression = Term { ( "+" | "-" ) Term } .
//	digit      = "0" … "9" .
//
// Productions end with a period. A range "a" … "z" becomes a character
// class.
package goebnf

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

var log = commonlog.GetLogger("grammars.goebnf")

// ErrNoParse is wrapped by Parse errors.
var ErrNoParse = parse.ErrNoParse

// Parse parses src with golang.org/x/exp/ebnf.
func Parse(src string) (ebnf.Grammar, error) {
	g, err := ebnf.Parse("grammar", strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse go ebnf: %w: %w", ErrNoParse, err)
	}
	return g, nil
}

// Productions parses src and returns its rules in source order.
func Productions(src string) ([]rules.Production, error) {
	g, err := Parse(src)
	if err != nil {
		return nil, err
	}
	prods := make([]rules.Production, 0, len(g))
	for _, p := range g {
		prods = append(prods, rules.Production{
			Name:   p.Name.String,
			Offset: p.Name.StringPos.Offset,
			Body:   choice(p.Expr),
		})
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Offset < prods[j].Offset
	})
	log.Debugf("read %d productions", len(prods))
	return prods, nil
}

// Read parses src and converts it into a rule set. Problems found by
// ebnf.Verify, starting from the root rule, are logged as warnings.
func Read(src string) (*rules.RuleSet, error) {
	prods, err := Productions(src)
	if err != nil {
		return nil, err
	}
	rs, err := rules.Convert(prods)
	if err != nil {
		return rs, err
	}
	if root, ok := rs.First(); ok {
		if err := Verify(src, root.Name); err != nil {
			log.Warningf("%s", err)
		}
	}
	return rs, nil
}

// Verify checks that every production of src is defined and reachable
// from start, and that ranges span single characters.
func Verify(src, start string) error {
	g, err := Parse(src)
	if err != nil {
		return err
	}
	if err := ebnf.Verify(g, start); err != nil {
		return fmt.Errorf("verify go ebnf: %w", err)
	}
	return nil
}

func choice(x ebnf.Expression) rules.Choice {
	if alt, ok := x.(ebnf.Alternative); ok {
		body := make(rules.Choice, 0, len(alt))
		for _, a := range alt {
			body = append(body, sequence(a))
		}
		return body
	}
	return rules.Alts(sequence(x))
}

func sequence(x ebnf.Expression) rules.Sequence {
	switch x := x.(type) {
	case nil:
		return rules.Seq()
	case ebnf.Sequence:
		seq := make(rules.Sequence, 0, len(x))
		for _, e := range x {
			seq = append(seq, term(e))
		}
		return seq
	}
	return rules.Seq(term(x))
}

func term(x ebnf.Expression) rules.Term {
	switch x := x.(type) {
	case *ebnf.Name:
		return rules.Ref{Name: x.String, Offset: x.StringPos.Offset}
	case *ebnf.Token:
		return rules.Lit(x.String)
	case *ebnf.Range:
		lo, _ := utf8.DecodeRuneInString(x.Begin.String)
		hi, _ := utf8.DecodeRuneInString(x.End.String)
		return rules.Terminal{Pattern: pattern.Class(pattern.Range{Lo: lo, Hi: hi})}
	case *ebnf.Group:
		return rules.Group{Body: choice(x.Body)}
	case *ebnf.Option:
		return rules.Repeat{Body: choice(x.Body), Min: 0, Max: 1}
	case *ebnf.Repetition:
		return rules.Repeat{Body: choice(x.Body), Min: 0, Max: pattern.Unbounded}
	case ebnf.Alternative, ebnf.Sequence:
		return rules.Group{Body: choice(x)}
	}
	panic(fmt.Sprintf("goebnf: unexpected expression %T", x))
}

// Package w3c reads grammars in the EBNF notation of the W3C
// recommendations (XML 1.0, section 6):
//
//	document ::= prolog element Misc*
//	Char     ::= #x9 | #xA | #xD | [#x20-#xD7FF]
//	NameChar ::= [a-zA-Z0-9] | "." | "-" | "_"
//
// Juxtaposition is concatenation and a bar separates alternatives. The
// postfix operators ?, * and + mark optional, repeated and one-or-more
// expressions. A list may continue on an indented line. Comments are
// written /* like this */. Exclusion (A - B) is not supported.
package w3c

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

var log = commonlog.GetLogger("grammars.w3c")

var (
	// ErrNoParse is wrapped by Parse errors.
	ErrNoParse = parse.ErrNoParse
	// ErrExclusion is returned for grammars using the A - B operator.
	ErrExclusion = errors.New("exclusion is not supported")
)

// ws matches white space and comments.
const ws = `(?:\s|/\*(?s:.*?)\*/)*`

// The meta-grammar.
var (
	Hex        = pattern.MustRegex(`#x[0-9A-Fa-f]+`)
	Identifier = pattern.MustRegex(`[A-Za-z_][A-Za-z0-9_.]*`)
	Terminal   = pattern.Alt(
		pattern.Cat(pattern.Lit(`'`), pattern.MustRegex(`[^']*`), pattern.Lit(`'`)),
		pattern.Cat(pattern.Lit(`"`), pattern.MustRegex(`[^"]*`), pattern.Lit(`"`)),
	)
	CharRange = pattern.MustRegex(`\[\^?(?:#x[0-9A-Fa-f]+|[^\]])+\]`)

	rhs   = pattern.NewRecursion("rhs")
	space = pattern.MustRegex(ws)
	Group = pattern.Cat(pattern.Lit("("), space, rhs, space, pattern.Lit(")"))

	Primary    = pattern.Alt(Hex, Identifier, Terminal, CharRange, Group)
	Suffix     = pattern.MustRegex(`[?*+]`)
	Expression = pattern.Cat(Primary, pattern.Optional(Suffix))
	Exclusion  = pattern.Cat(pattern.MustRegex(`[ \t]*-[ \t]*`), Expression)
	Term       = pattern.Cat(Expression, pattern.Optional(Exclusion))
	List       = pattern.Cat(Term, pattern.Any(pattern.Cat(pattern.MustRegex(`[ \t]*(?:/\*.*?\*/[ \t]*)*(?:\r?\n[ \t]+)?`), Term)))
	RHS        = pattern.Cat(List, pattern.Any(pattern.Cat(pattern.MustRegex(ws+`\|`+ws), List)))
	Rule       = pattern.Cat(Identifier, pattern.MustRegex(`[ \t]*::=`+ws), RHS)

	Rules = pattern.Cat(space, Rule, pattern.Any(pattern.Cat(space, Rule)), space)
)

func init() {
	rhs.Set(RHS)
}

// Parse returns the concrete tree of src.
func Parse(src string) (*parse.Match, error) {
	m, err := parse.Complete(parse.NewRecursiveDescent(Rules), src)
	if err != nil {
		return nil, fmt.Errorf("parse w3c: %w", err)
	}
	return m, nil
}

// Productions parses src and returns its rules in source order.
func Productions(src string) ([]rules.Production, error) {
	m, err := Parse(src)
	if err != nil {
		return nil, err
	}
	var r reader
	prods := []rules.Production{r.production(m.Child(1))}
	for _, next := range m.Child(2).Children {
		prods = append(prods, r.production(next.Child(1)))
	}
	if r.err != nil {
		return nil, fmt.Errorf("read w3c: %w", r.err)
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

// reader walks a concrete tree and keeps the first error.
type reader struct {
	err error
}

func (r *reader) fail(offset int, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("offset %d: %w", offset, err)
	}
}

func (r *reader) production(m *parse.Match) rules.Production {
	name := m.Child(0)
	return rules.Production{Name: name.Text, Offset: name.Start, Body: r.choice(m.Child(2))}
}

// choice reads an alternation; a nil m is the body of an empty group.
func (r *reader) choice(m *parse.Match) rules.Choice {
	if m == nil {
		return rules.Alts(rules.Seq())
	}
	body := rules.Choice{r.sequence(m.Child(0))}
	for _, alt := range m.Child(1).Children {
		body = append(body, r.sequence(alt.Child(1)))
	}
	return body
}

func (r *reader) sequence(m *parse.Match) rules.Sequence {
	seq := rules.Sequence{r.term(m.Child(0))}
	for _, next := range m.Child(1).Children {
		seq = append(seq, r.term(next.Child(1)))
	}
	return seq
}

func (r *reader) term(m *parse.Match) rules.Term {
	if excl := m.Child(1); excl != nil {
		r.fail(excl.Start, ErrExclusion)
	}
	return r.expression(m.Child(0))
}

func (r *reader) expression(m *parse.Match) rules.Term {
	t := r.primary(m.Child(0))
	suffix := m.Child(1)
	if suffix == nil {
		return t
	}
	body := rules.Alts(rules.Seq(t))
	switch suffix.Text {
	case "?":
		return rules.Repeat{Body: body, Min: 0, Max: 1}
	case "*":
		return rules.Repeat{Body: body, Min: 0, Max: pattern.Unbounded}
	default:
		return rules.Repeat{Body: body, Min: 1, Max: pattern.Unbounded}
	}
}

func (r *reader) primary(m *parse.Match) rules.Term {
	m = m.Chosen()
	switch m.Pattern {
	case Hex:
		c, err := hexRune(m.Text)
		if err != nil {
			r.fail(m.Start, err)
		}
		return rules.Lit(string(c))
	case Identifier:
		return rules.Ref{Name: m.Text, Offset: m.Start}
	case CharRange:
		class, err := charClass(m.Text)
		if err != nil {
			r.fail(m.Start, err)
			return rules.Lit("")
		}
		return rules.Terminal{Pattern: class}
	case Group:
		return rules.Group{Body: r.choice(m.Child(2))}
	}
	// a quoted terminal, unwrapped to its concatenation
	return rules.Lit(m.Child(1).Text)
}

// hexRune decodes a #xN code point.
func hexRune(s string) (rune, error) {
	n, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return utf8.RuneError, fmt.Errorf("invalid code point %s", s)
	}
	return rune(n), nil
}

// charClass decodes a bracketed range such as [a-zA-Z_] or [^#x0-#x1F].
// A dash that cannot start a range stands for itself.
func charClass(s string) (*pattern.CharClass, error) {
	body := s[1 : len(s)-1]
	negated := strings.HasPrefix(body, "^")
	if negated {
		body = body[1:]
	}
	var ranges []pattern.Range
	for body != "" {
		lo, n, err := classRune(body)
		if err != nil {
			return nil, err
		}
		body = body[n:]
		hi := lo
		if len(body) > 1 && body[0] == '-' {
			hi, n, err = classRune(body[1:])
			if err != nil {
				return nil, err
			}
			body = body[1+n:]
			if hi < lo {
				return nil, fmt.Errorf("invalid range %s: %c > %c", s, lo, hi)
			}
		}
		ranges = append(ranges, pattern.Range{Lo: lo, Hi: hi})
	}
	if negated {
		return pattern.NotClass(ranges...), nil
	}
	return pattern.Class(ranges...), nil
}

func classRune(s string) (rune, int, error) {
	if strings.HasPrefix(s, "#x") {
		end := 2
		for end < len(s) && strings.IndexByte("0123456789abcdefABCDEF", s[end]) >= 0 {
			end++
		}
		if end > 2 {
			c, err := hexRune(s[:end])
			return c, end, err
		}
	}
	c, n := utf8.DecodeRuneInString(s)
	return c, n, nil
}

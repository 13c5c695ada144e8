package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

// EBNFEncoder writes a rule set in the W3C EBNF notation, one rule per
// line. Sub-patterns shared with another rule are written as references
// to that rule.
type EBNFEncoder struct {
	w  io.Writer
	rs *rules.RuleSet

	// Order returns the names of the rules to write. It defaults to
	// (*rules.RuleSet).Names.
	Order func(rs *rules.RuleSet) []string
}

func NewEBNFEncoder(w io.Writer) *EBNFEncoder {
	return &EBNFEncoder{w: w, Order: (*rules.RuleSet).Names}
}

func (e *EBNFEncoder) Encode(rs *rules.RuleSet) error {
	e.rs = rs
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *EBNFEncoder) MarshalText() ([]byte, error) {
	if e.rs == nil {
		return nil, errors.New("ebnf: no rule set")
	}
	names := ruleNames(e.rs)
	width := 0
	order := e.Order(e.rs)
	for _, name := range order {
		width = max(width, len(name))
	}

	var sb strings.Builder
	for _, name := range order {
		p, ok := e.rs.Get(name)
		if !ok {
			return nil, fmt.Errorf("ebnf: unknown rule %q", name)
		}
		w := ebnfWriter{sb: &sb, names: names, self: p}
		fmt.Fprintf(&sb, "%-*s ::= ", width, name)
		w.write(p, precAlt)
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}

// Binding strength of the context an expression is written into.
const (
	precAlt     = iota // alternative of an alternation
	precSeq            // element of a concatenation
	precPostfix        // operand of ?, * or +
)

type ebnfWriter struct {
	sb    *strings.Builder
	names map[pattern.Pattern]string
	self  pattern.Pattern
}

func (w *ebnfWriter) write(p pattern.Pattern, prec int) {
	if name, ok := w.names[p]; ok && p != w.self {
		w.sb.WriteString(name)
		return
	}
	switch p := p.(type) {
	case *pattern.Literal:
		w.literal(p.Text, prec)
	case *pattern.CharClass, *pattern.Regex:
		w.sb.WriteString(p.String())
	case *pattern.Alternation:
		w.list(p.Elements, " | ", prec, precAlt)
	case *pattern.Concatenation:
		w.list(p.Elements, " ", prec, precSeq)
	case *pattern.Repetition:
		w.repetition(p, prec)
	case *pattern.Recursion:
		if name, ok := w.names[p.Target()]; ok {
			w.sb.WriteString(name)
		} else {
			w.sb.WriteString(p.String())
		}
	case *pattern.Latch:
		w.write(p.Inner, prec)
	default:
		panic(fmt.Sprintf("format: unknown pattern %T", p))
	}
}

// list writes elements separated by sep, in parentheses when the
// surrounding context binds more tightly than level.
func (w *ebnfWriter) list(elements []pattern.Pattern, sep string, prec, level int) {
	switch len(elements) {
	case 0:
		w.sb.WriteString(`""`)
		return
	case 1:
		w.write(elements[0], prec)
		return
	}
	open := prec > level
	if open {
		w.sb.WriteByte('(')
	}
	for i, el := range elements {
		if i > 0 {
			w.sb.WriteString(sep)
		}
		w.write(el, level)
	}
	if open {
		w.sb.WriteByte(')')
	}
}

// literal quotes text. Text holding both kinds of quote is split into a
// concatenation around its double quotes.
func (w *ebnfWriter) literal(text string, prec int) {
	if !strings.Contains(text, `"`) {
		fmt.Fprintf(w.sb, `"%s"`, text)
		return
	}
	if !strings.Contains(text, `'`) {
		fmt.Fprintf(w.sb, `'%s'`, text)
		return
	}
	parts := strings.Split(text, `"`)
	var pieces []string
	for i, part := range parts {
		if i > 0 {
			pieces = append(pieces, "#x22")
		}
		if part != "" {
			pieces = append(pieces, `"`+part+`"`)
		}
	}
	if prec >= precPostfix {
		w.sb.WriteByte('(')
		defer w.sb.WriteByte(')')
	}
	w.sb.WriteString(strings.Join(pieces, " "))
}

// repetition expands counted repetitions into the ?, * and + operators:
// x{2,} becomes x x+ and x{1,3} becomes x (x x?)?.
func (w *ebnfWriter) repetition(p *pattern.Repetition, prec int) {
	operand := func(suffix string) {
		w.write(p.Inner, precPostfix)
		w.sb.WriteString(suffix)
	}
	var parts []func()
	switch {
	case p.Min == 0 && p.Max == 1:
		parts = append(parts, func() { operand("?") })
	case p.Min == 0 && p.Max == pattern.Unbounded:
		parts = append(parts, func() { operand("*") })
	case p.Max == pattern.Unbounded:
		for i := 1; i < p.Min; i++ {
			parts = append(parts, func() { operand("") })
		}
		parts = append(parts, func() { operand("+") })
	default:
		for i := 0; i < p.Min; i++ {
			parts = append(parts, func() { operand("") })
		}
		if n := p.Max - p.Min; n > 0 {
			parts = append(parts, func() { w.optionalRun(p.Inner, n) })
		}
	}
	if len(parts) == 0 {
		w.sb.WriteString(`""`)
		return
	}
	open := prec >= precPostfix
	if open {
		w.sb.WriteByte('(')
	}
	for i, part := range parts {
		if i > 0 {
			w.sb.WriteByte(' ')
		}
		part()
	}
	if open {
		w.sb.WriteByte(')')
	}
}

// optionalRun writes up to n further occurrences of inner.
func (w *ebnfWriter) optionalRun(inner pattern.Pattern, n int) {
	if n == 1 {
		w.write(inner, precPostfix)
		w.sb.WriteByte('?')
		return
	}
	w.sb.WriteByte('(')
	w.write(inner, precSeq)
	w.sb.WriteByte(' ')
	w.optionalRun(inner, n-1)
	w.sb.WriteString(")?")
}

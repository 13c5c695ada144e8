package pattern

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

func (l *Literal) String() string {
	return strconv.Quote(l.Text)
}

func (c *CharClass) String() string {
	var b strings.Builder
	b.WriteByte('[')
	if c.Negated {
		b.WriteByte('^')
	}
	for _, r := range c.Ranges {
		writeClassRune(&b, r.Lo)
		if r.Hi != r.Lo {
			b.WriteByte('-')
			writeClassRune(&b, r.Hi)
		}
	}
	b.WriteByte(']')
	return b.String()
}

func writeClassRune(b *strings.Builder, r rune) {
	switch {
	case r == ']' || r == '^' || r == '-' || r == '\\':
		fmt.Fprintf(b, "#x%02X", r)
	case unicode.IsPrint(r) && r != ' ':
		b.WriteRune(r)
	default:
		fmt.Fprintf(b, "#x%02X", r)
	}
}

func (r *Regex) String() string {
	return "/" + r.Source + "/"
}

func (a *Alternation) String() string {
	return "(" + join(a.Elements, " | ") + ")"
}

func (c *Concatenation) String() string {
	return "(" + join(c.Elements, " ") + ")"
}

func (r *Repetition) String() string {
	inner := r.Inner.String()
	switch {
	case r.Min == 0 && r.Max == 1:
		return inner + "?"
	case r.Min == 0 && r.Max == Unbounded:
		return inner + "*"
	case r.Min == 1 && r.Max == Unbounded:
		return inner + "+"
	case r.Max == Unbounded:
		return fmt.Sprintf("%s{%d,}", inner, r.Min)
	}
	return fmt.Sprintf("%s{%d,%d}", inner, r.Min, r.Max)
}

// String never descends into the target, so cyclic grammars print.
func (r *Recursion) String() string {
	if r.name == "" {
		return "<recursion>"
	}
	return r.name
}

func (l *Latch) String() string {
	return "latch(" + l.Inner.String() + ")"
}

func join(ps []Pattern, sep string) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, sep)
}

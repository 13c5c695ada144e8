package parse

import (
	"errors"
	"fmt"

	"github.com/dhamidi/grammars/pattern"
)

// ErrNoParse is wrapped by every SyntaxError.
var ErrNoParse = errors.New("no parse")

// ErrAmbiguous is returned by Complete when several roots match all of the
// input. It wraps ErrNoParse.
var ErrAmbiguous = fmt.Errorf("ambiguous input: %w", ErrNoParse)

// SyntaxError reports input that was not accepted in full. Offset is the
// end of the longest accepted prefix, or 0 when nothing was accepted.
type SyntaxError struct {
	Offset int
	Near   string
}

func (e *SyntaxError) Error() string {
	if e.Near == "" {
		return fmt.Sprintf("parse error at offset %d: unexpected end of input", e.Offset)
	}
	return fmt.Sprintf("parse error at offset %d: unexpected %q", e.Offset, e.Near)
}

func (e *SyntaxError) Unwrap() error {
	return ErrNoParse
}

// Complete parses input with e and returns the single match that covers
// all of it. Roots that accept only a prefix are ignored when another root
// covers the input. When none does, the error is a SyntaxError at the end
// of the longest prefix; when several do, it wraps ErrAmbiguous.
func Complete(e Engine, input string) (*Match, error) {
	var full []*Match
	offset := 0
	for _, m := range e.Parse(input) {
		if m.End == len(input) {
			full = append(full, m)
		}
		if m.End > offset {
			offset = m.End
		}
	}
	switch len(full) {
	case 1:
		return full[0], nil
	case 0:
		return nil, &SyntaxError{Offset: offset, Near: near(input[offset:])}
	}
	return nil, fmt.Errorf("%d roots matched all of the input: %w", len(full), ErrAmbiguous)
}

// near returns at most the first 16 runes of rest.
func near(rest string) string {
	n := 0
	for i := range rest {
		if n == 16 {
			return rest[:i]
		}
		n++
	}
	return rest
}

// Chosen returns the match an Alternation resolved to, looking through
// nested alternations. Other matches are returned unchanged.
func (m *Match) Chosen() *Match {
	for m != nil && len(m.Children) == 1 {
		if _, ok := m.Pattern.(*pattern.Alternation); !ok {
			break
		}
		m = m.Children[0]
	}
	return m
}

package parse

import (
	"errors"
	"testing"

	"github.com/dhamidi/grammars/pattern"
)

func TestComplete(t *testing.T) {
	tests := []struct {
		name   string
		roots  []pattern.Pattern
		input  string
		want   string
		offset int
		err    error
	}{
		{
			name:  "single root",
			roots: []pattern.Pattern{pattern.Lit("abc")},
			input: "abc",
			want:  "abc",
		},
		{
			name:  "full root among prefix roots",
			roots: []pattern.Pattern{pattern.Lit("ab"), pattern.Lit("abc"), pattern.Lit("a")},
			input: "abc",
			want:  "abc",
		},
		{
			name:   "only prefixes",
			roots:  []pattern.Pattern{pattern.Lit("a"), pattern.Lit("ab")},
			input:  "abc",
			offset: 2,
			err:    ErrNoParse,
		},
		{
			name:   "nothing matches",
			roots:  []pattern.Pattern{pattern.Lit("x")},
			input:  "abc",
			offset: 0,
			err:    ErrNoParse,
		},
		{
			name:  "two full roots",
			roots: []pattern.Pattern{pattern.Lit("abc"), pattern.Cat(pattern.Lit("ab"), pattern.Lit("c"))},
			input: "abc",
			err:   ErrAmbiguous,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Complete(NewRecursiveDescent(tt.roots...), tt.input)
			if tt.err == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if m.Text != tt.want {
					t.Errorf("Text = %q, want %q", m.Text, tt.want)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("error = %v, want %v", err, tt.err)
			}
			var serr *SyntaxError
			if tt.err == ErrAmbiguous {
				if errors.As(err, &serr) {
					t.Errorf("ambiguity reported as a syntax error: %v", err)
				}
				if !errors.Is(err, ErrNoParse) {
					t.Errorf("expected %v to wrap ErrNoParse", err)
				}
				return
			}
			if !errors.As(err, &serr) {
				t.Fatalf("expected a SyntaxError, got %T", err)
			}
			if serr.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", serr.Offset, tt.offset)
			}
		})
	}
}

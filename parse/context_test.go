package parse

import (
	"testing"

	"github.com/dhamidi/grammars/pattern"
)

func TestContext_Scoping(t *testing.T) {
	a := pattern.NewLatch(pattern.Lit("a"))
	b := pattern.NewLatch(pattern.Lit("b"))
	ma := &Match{Pattern: a.Inner, Text: "a"}
	mb := &Match{Pattern: b.Inner, Text: "b"}

	root := NewContext(a)
	root.Set(a, ma)

	child := root.Push(b)
	if got := child.Get(a); got != ma {
		t.Errorf("expected child to see the parent's capture")
	}
	if !child.Has(a) || !child.Has(b) {
		t.Errorf("expected child to know both latches")
	}

	child.Set(b, mb)
	if root.Get(b) != nil || root.Has(b) {
		t.Errorf("expected writes to stay in the child")
	}
	if child.Pop() != root {
		t.Errorf("expected Pop to return the parent")
	}
	if root.Pop() != nil {
		t.Errorf("expected Pop of the root to return nil")
	}
}

func TestContext_Shadowing(t *testing.T) {
	l := pattern.NewLatch(pattern.Lit("a"))
	root := NewContext(l)
	root.Set(l, &Match{Pattern: l.Inner, Text: "a"})

	child := root.Push(l)
	if got := child.Get(l); got != nil {
		t.Errorf("expected a redeclared latch to shadow the parent, got %q", got.Text)
	}
	if child.Scope(l) != child {
		t.Errorf("expected the child to be the nearest declaring scope")
	}
}

func TestContext_PushPattern(t *testing.T) {
	l := pattern.NewLatch(pattern.Lit("a"))
	root := NewContext()

	tests := []struct {
		name     string
		p        pattern.Pattern
		newScope bool
	}{
		{"literal", pattern.Lit("a"), false},
		{"concatenation without locals", pattern.Cat(pattern.Lit("a")), false},
		{"concatenation with locals", pattern.Cat(l).WithLocals(l), true},
		{"alternation with locals", pattern.Alt(l).WithLocals(l), true},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := root.PushPattern(tt.p)
			if (got != root) != tt.newScope {
				t.Errorf("PushPattern allocated a scope = %v, want %v", got != root, tt.newScope)
			}
			if tt.newScope && got.Scope(l) != got {
				t.Errorf("expected the new scope to declare the latch")
			}
		})
	}
}

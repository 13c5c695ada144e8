package pattern

import "testing"

func TestIsOptional(t *testing.T) {
	tests := []struct {
		name string
		p    Pattern
		want bool
	}{
		{"empty literal", Lit(""), true},
		{"literal", Lit("abc"), false},
		{"regex matching empty", MustRegex(`,*`), true},
		{"regex requiring input", MustRegex(`[0-9]+`), false},
		{"any", Any(Lit("a")), true},
		{"optional", Optional(Lit("a")), true},
		{"at least one", AtLeast(1, Lit("a")), false},
		{"alternation with empty branch", Alt(Lit("a"), Lit("")), true},
		{"alternation without empty branch", Alt(Lit("a"), Lit("b")), false},
		{"concatenation of optionals", Cat(Optional(Lit("a")), Lit("")), true},
		{"concatenation with required element", Cat(Optional(Lit("a")), Lit("b")), false},
		{"latch over optional", NewLatch(Any(Lit("a"))), true},
		{"recursion", NewRecursion("r"), false},
		{"char class", Class(Range{'a', 'z'}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOptional(tt.p); got != tt.want {
				t.Errorf("IsOptional(%s) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Pattern
		want bool
	}{
		{"same literal text", Lit("abc"), Lit("abc"), true},
		{"different literal text", Lit("abc"), Lit("abd"), false},
		{"literal against concatenation", Lit("abc"), Cat(Lit("abc")), false},
		{"nested concatenation", Cat(Lit("a"), Any(Lit("b"))), Cat(Lit("a"), Any(Lit("b"))), true},
		{"repetition bounds differ", AtLeast(1, Lit("a")), Any(Lit("a")), false},
		{"alternation order matters", Alt(Lit("a"), Lit("b")), Alt(Lit("b"), Lit("a")), false},
		{"skip differs", Cat(Lit("a")).WithSkip(Lit(" ")), Cat(Lit("a")), false},
		{"char classes", NotClass(Char('"')), NotClass(Char('"')), true},
		{"negation differs", NotClass(Char('"')), Class(Char('"')), false},
		{"regex source", MustRegex(`\s*`), MustRegex(`\s*`), true},
		{"unset recursions by name", NewRecursion("x"), NewRecursion("x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEqual_CyclicRecursion(t *testing.T) {
	build := func() *Recursion {
		r := NewRecursion("list")
		r.Set(Alt(Lit("x"), Cat(Lit("("), r, Lit(")"))))
		return r
	}
	a, b := build(), build()
	if !Equal(a, b) {
		t.Fatalf("expected cyclic grammars %s and %s to be equal", a.Target(), b.Target())
	}

	c := NewRecursion("list")
	c.Set(Alt(Lit("x"), Cat(Lit("["), c, Lit("]"))))
	if Equal(a, c) {
		t.Errorf("expected grammars with different brackets to differ")
	}
}

func TestRecursion_SetOnce(t *testing.T) {
	r := NewRecursion("r")
	r.Set(Lit("a"))

	defer func() {
		if recover() == nil {
			t.Errorf("expected second Set to panic")
		}
	}()
	r.Set(Lit("b"))
}

func TestRecursion_SetSelf(t *testing.T) {
	r := NewRecursion("r")
	defer func() {
		if recover() == nil {
			t.Errorf("expected self assignment to panic")
		}
	}()
	r.Set(r)
}

func TestRegex_MatchLength(t *testing.T) {
	re := MustRegex(`[a-z]+`)
	if got := re.MatchLength("abc123"); got != 3 {
		t.Errorf("MatchLength = %d, want 3", got)
	}
	if got := re.MatchLength("1abc"); got != -1 {
		t.Errorf("MatchLength of unanchored match = %d, want -1", got)
	}
	if re.MatchesEmpty() || !MustRegex(`[a-z]*`).MatchesEmpty() {
		t.Errorf("MatchesEmpty wrong for [a-z]+ or [a-z]*")
	}
	if _, err := NewRegex(`(`); err == nil {
		t.Errorf("expected error for invalid expression")
	}
}

func TestCharClass_Contains(t *testing.T) {
	digits := Class(Range{'0', '9'})
	if !digits.Contains('5') || digits.Contains('a') {
		t.Errorf("digit class membership wrong")
	}
	notQuote := NotClass(Char('"'))
	if notQuote.Contains('"') || !notQuote.Contains('x') {
		t.Errorf("negated class membership wrong")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		p    Pattern
		want string
	}{
		{Lit("abc"), `"abc"`},
		{Cat(Lit("a"), Any(Lit("b"))), `("a" "b"*)`},
		{Alt(Lit("a"), Optional(Lit("b"))), `("a" | "b"?)`},
		{AtLeast(1, Lit("a")), `"a"+`},
		{Repeat(2, 3, Lit("a")), `"a"{2,3}`},
		{Class(Range{'a', 'z'}, Char('_')), `[a-z_]`},
		{NotClass(Char(']')), `[^#x5D]`},
		{MustRegex(`\s*`), `/\s*/`},
	}

	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

package w3c

import (
	"errors"
	"strings"
	"testing"

	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

func lit(s string) *pattern.Literal {
	return pattern.Lit(s)
}

func mustRead(t *testing.T, lines ...string) *rules.RuleSet {
	t.Helper()
	rs, err := Read(strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return rs
}

func get(t *testing.T, rs *rules.RuleSet, name string) pattern.Pattern {
	t.Helper()
	p, ok := rs.Get(name)
	if !ok {
		t.Fatalf("rule %q missing, have %v", name, rs.Names())
	}
	return p
}

func TestRead_Rule(t *testing.T) {
	abcdef := func() pattern.Pattern { return pattern.Cat(lit("abc"), lit("def")) }
	tests := []struct {
		src  string
		want pattern.Pattern
	}{
		{`rule ::= "abc"`, lit("abc")},
		{`rule ::= ""`, lit("")},
		{`rule ::= "abc" | "xyz"`, pattern.Alt(lit("abc"), lit("xyz"))},
		{`rule ::= "abc" "def"`, abcdef()},
		{`rule ::= "abc" "def" | "xyz"`, pattern.Alt(abcdef(), lit("xyz"))},
		{`rule ::= ("abc")`, lit("abc")},
		{`rule ::= ("abc" | "def")`, pattern.Alt(lit("abc"), lit("def"))},
		{`rule ::= "abc"?`, pattern.Optional(lit("abc"))},
		{`rule ::= ("abc" "def")?`, pattern.Optional(abcdef())},
		{`rule ::= ("abc" | "def")?`, pattern.Optional(pattern.Alt(lit("abc"), lit("def")))},
		{`rule ::= "abc"*`, pattern.Any(lit("abc"))},
		{`rule ::= "abc"+`, pattern.AtLeast(1, lit("abc"))},
		{`rule ::= ("abc" "def")*`, pattern.Any(abcdef())},
		{`rule ::= ("abc" | "def")*`, pattern.Any(pattern.Alt(lit("abc"), lit("def")))},
		{`rule ::= (("abc" "def"))*`, pattern.Any(abcdef())},
		{`rule ::= (("abc" | "def"))*`, pattern.Any(pattern.Alt(lit("abc"), lit("def")))},
		{`rule ::= #x41 #x3A`, pattern.Cat(lit("A"), lit(":"))},
		{`rule ::= [a-z_]`, pattern.Class(pattern.Range{Lo: 'a', Hi: 'z'}, pattern.Char('_'))},
		{`rule ::= [^#x0-#x1F]`, pattern.NotClass(pattern.Range{Lo: 0, Hi: 0x1f})},
		{`rule ::= [-+]`, pattern.Class(pattern.Char('-'), pattern.Char('+'))},
		{`rule ::= "abc" /* a comment */ "def"`, abcdef()},
		{"rule ::= \"abc\"\n    \"def\"", abcdef()},
		{"rule ::= \"abc\"\n  | \"xyz\"", pattern.Alt(lit("abc"), lit("xyz"))},

		// direct recursion
		{`rule ::= "abc" "def" | rule rule`, pattern.AtLeast(1, abcdef())},
		{`rule ::= "abc" "def" | rule "xyz"`, pattern.Cat(lit("abc"), lit("def"), pattern.Any(lit("xyz")))},
		{`rule ::= "abc" | rule "abc"`, pattern.AtLeast(1, lit("abc"))},
		{`rule ::= "abc" "def" | rule "abc" "def"`, pattern.AtLeast(1, abcdef())},
		{`rule ::= "abc" | rule "def" | rule "xyz"`, pattern.Cat(lit("abc"), pattern.Any(pattern.Alt(lit("def"), lit("xyz"))))},
		{`rule ::= "abc" "def" | "xyz" rule`, pattern.Cat(pattern.Any(lit("xyz")), lit("abc"), lit("def"))},
		{`rule ::= "abc" | "abc" rule`, pattern.AtLeast(1, lit("abc"))},
		{`rule ::= "abc" "def" | "abc" "def" rule`, pattern.AtLeast(1, abcdef())},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := get(t, mustRead(t, tt.src), "rule")
			if !pattern.Equal(got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRead_MultipleRules(t *testing.T) {
	rs := mustRead(t, `rule0 ::= "abc"`, `rule1 ::= "xyz"`)
	if got := rs.Names(); len(got) != 2 || got[0] != "rule0" || got[1] != "rule1" {
		t.Fatalf("Names = %v", got)
	}
}

func TestRead_References(t *testing.T) {
	rs := mustRead(t, `rule0::="abc" "def"`, `rule1::="xyz" rule0`)
	if first, _ := rs.First(); first.Name != "rule1" {
		t.Errorf("first rule = %s, want rule1", first.Name)
	}
	rule0 := get(t, rs, "rule0")
	if cat := get(t, rs, "rule1").(*pattern.Concatenation); cat.Elements[1] != rule0 {
		t.Errorf("expected rule1 to embed rule0 by identity")
	}

	rs = mustRead(t, `rule0::="abc" rule1`, `rule1::="def" "xyz"`)
	rule1 := get(t, rs, "rule1")
	if cat := get(t, rs, "rule0").(*pattern.Concatenation); cat.Elements[1] != rule1 {
		t.Errorf("expected rule0 to embed rule1 by identity")
	}
}

func TestRead_IndirectRecursion(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		first string
	}{
		{
			name:  "simple",
			lines: []string{`rule1 ::= "abc" | rule2`, `rule2 ::= "def" | rule3`, `rule3 ::= "xyz" | rule1`},
			first: "rule1",
		},
		{
			name:  "nested",
			lines: []string{`rule1 ::= "abc" | rule2`, `rule2 ::= "def" | (rule3)`, `rule3 ::= "xyz" | rule1`},
			first: "rule1",
		},
		{
			name: "referenced",
			lines: []string{
				`rule1 ::= "abc" | rule2`, `rule2 ::= "def" | rule3`, `rule3 ::= "xyz" | rule1`,
				`rule4 ::= "abc" rule1`,
			},
			first: "rule4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustRead(t, tt.lines...)
			if first, _ := rs.First(); first.Name != tt.first {
				t.Errorf("first rule = %s, want %s", first.Name, tt.first)
			}
			rule1 := get(t, rs, "rule1").(*pattern.Alternation)
			rule2 := get(t, rs, "rule2").(*pattern.Alternation)
			rule3 := get(t, rs, "rule3").(*pattern.Alternation)
			if rule1.Elements[1] != rule2 || rule2.Elements[1] != rule3 {
				t.Errorf("expected rule1 -> rule2 -> rule3 by identity")
			}
			rec, ok := rule3.Elements[1].(*pattern.Recursion)
			if !ok || rec.Target() != rule1 {
				t.Errorf("expected rule3 to close the cycle with a recursion to rule1, got %s", rule3.Elements[1])
			}
		})
	}
}

func TestRead_Exclusion(t *testing.T) {
	_, err := Read(`rule ::= Char - "a"`)
	if !errors.Is(err, ErrExclusion) {
		t.Errorf("err = %v, want ErrExclusion", err)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{
		``,
		`rule ::=`,
		`rule = "abc"`,
		`rule ::= "abc`,
		`rule ::= [abc`,
		"rule ::= \"abc\"\n\"def\"",
	} {
		if _, err := Parse(src); !errors.Is(err, ErrNoParse) {
			t.Errorf("Parse(%q) = %v, want ErrNoParse", src, err)
		}
	}
}

func TestCharClass(t *testing.T) {
	tests := []struct {
		src     string
		in, out []rune
	}{
		{`[abc]`, []rune("abc"), []rune("d")},
		{`[a-]`, []rune("a-"), []rune("b")},
		{`[#x41-#x43]`, []rune("ABC"), []rune("D")},
		{`[^"]`, []rune("x"), []rune(`"`)},
	}
	for _, tt := range tests {
		class, err := charClass(tt.src)
		if err != nil {
			t.Fatalf("charClass(%s): %v", tt.src, err)
		}
		for _, r := range tt.in {
			if !class.Contains(r) {
				t.Errorf("%s should contain %q", tt.src, r)
			}
		}
		for _, r := range tt.out {
			if class.Contains(r) {
				t.Errorf("%s should not contain %q", tt.src, r)
			}
		}
	}

	if _, err := charClass(`[z-a]`); err == nil {
		t.Errorf("expected an inverted range to fail")
	}
}

func TestRead_EmptyGroups(t *testing.T) {
	tests := []struct {
		src  string
		want pattern.Pattern
	}{
		{`a ::= ()`, lit("")},
		{`a ::= ( )`, lit("")},
		{`a ::= ()?`, pattern.Optional(lit(""))},
		{`a ::= "x" ( )*`, pattern.Cat(lit("x"), pattern.Any(lit("")))},
		{`a ::= "x" | ( /* nothing */ )`, pattern.Alt(lit("x"), lit(""))},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := get(t, mustRead(t, tt.src), "a")
			if !pattern.Equal(got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

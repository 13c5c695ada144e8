package goebnf

import (
	"testing"

	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

func TestRead_Rule(t *testing.T) {
	lit := pattern.Lit
	tests := []struct {
		src  string
		want pattern.Pattern
	}{
		{`rule = "abc" .`, lit("abc")},
		{`rule = "abc" | "xyz" .`, pattern.Alt(lit("abc"), lit("xyz"))},
		{`rule = "abc" "def" | "xyz" .`, pattern.Alt(pattern.Cat(lit("abc"), lit("def")), lit("xyz"))},
		{`rule = [ "abc" ] .`, pattern.Optional(lit("abc"))},
		{`rule = { "abc" "def" } .`, pattern.Any(pattern.Cat(lit("abc"), lit("def")))},
		{`rule = ( "abc" | "def" ) .`, pattern.Alt(lit("abc"), lit("def"))},
		{`rule = "a" … "z" .`, pattern.Class(pattern.Range{Lo: 'a', Hi: 'z'})},
		{`rule = "abc" | rule "xyz" .`, pattern.Cat(lit("abc"), pattern.Any(lit("xyz")))},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			rs, err := Read(tt.src)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			got, ok := rs.Get("rule")
			if !ok {
				t.Fatalf("rule missing, have %v", rs.Names())
			}
			if !pattern.Equal(got, tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProductions_SourceOrder(t *testing.T) {
	src := "Number = Digit { Digit } .\nDigit = \"0\" … \"9\" .\nEmpty = .\n"
	prods, err := Productions(src)
	if err != nil {
		t.Fatalf("Productions: %v", err)
	}
	var names []string
	for _, p := range prods {
		names = append(names, p.Name)
	}
	if len(names) != 3 || names[0] != "Number" || names[1] != "Digit" || names[2] != "Empty" {
		t.Fatalf("names = %v", names)
	}
	if prods[1].Offset != 27 {
		t.Errorf("Digit offset = %d, want 27", prods[1].Offset)
	}
	if len(prods[2].Body) != 1 || len(prods[2].Body[0]) != 0 {
		t.Errorf("Empty body = %#v, want one empty sequence", prods[2].Body)
	}
	if ref, ok := prods[0].Body[0][0].(rules.Ref); !ok || ref.Name != "Digit" {
		t.Errorf("first term = %#v", prods[0].Body[0][0])
	}
}

func TestVerify(t *testing.T) {
	src := "Number = Digit .\nDigit = \"0\" … \"9\" .\n"
	if err := Verify(src, "Number"); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if err := Verify(src+"Unused = \"x\" .\n", "Number"); err == nil {
		t.Errorf("expected an unreachable production to be reported")
	}
	if err := Verify("Number = Missing .", "Number"); err == nil {
		t.Errorf("expected an undefined production to be reported")
	}
}

func TestParse_Error(t *testing.T) {
	if _, err := Read(`rule = "abc"`); err == nil {
		t.Errorf("expected a missing period to fail")
	}
	if _, err := Read(`<rule> ::= "abc"`); err == nil {
		t.Errorf("expected BNF to fail")
	}
}

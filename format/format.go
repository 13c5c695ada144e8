// Package format writes rule sets and match trees in textual formats.
package format

import (
	"encoding"

	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(rs *rules.RuleSet) error
}

// ruleNames maps the pattern of every rule to the rule's name. The first
// rule wins when rules share a pattern.
func ruleNames(rs *rules.RuleSet) map[pattern.Pattern]string {
	names := make(map[pattern.Pattern]string, rs.Len())
	for _, r := range rs.Rules() {
		if _, ok := names[r.Pattern]; !ok {
			names[r.Pattern] = r.Name
		}
	}
	return names
}

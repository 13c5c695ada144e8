package format

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/grammars/rules"
)

// LineEncoder writes one tab-separated line per rule, unresolved name
// and diagnostic:
//
//	rule	<name>	<count>	<references>
//	unresolved	<name>
//	<severity>	<rule>	<offset>	<message>
type LineEncoder struct {
	w  io.Writer
	rs *rules.RuleSet
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(rs *rules.RuleSet) error {
	e.rs = rs
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	if e.rs == nil {
		return nil, errors.New("line: no rule set")
	}
	var sb strings.Builder
	rs := e.rs
	refs := rs.References()

	for _, name := range rs.Names() {
		fmt.Fprintf(&sb, "rule\t%s\t%d\t%s\n", name, rs.Count(name), strings.Join(refs[name], ","))
	}
	for _, name := range rs.Unresolved() {
		fmt.Fprintf(&sb, "unresolved\t%s\n", name)
	}
	for _, d := range rs.Diagnostics() {
		fmt.Fprintf(&sb, "%s\t%s\t%d\t%s\n", d.Severity, e.subject(d), d.Offset, d.Message)
	}
	return []byte(sb.String()), nil
}

func (e *LineEncoder) subject(d rules.Diagnostic) string {
	if d.Rule != "" {
		return d.Rule
	}
	return d.Name
}

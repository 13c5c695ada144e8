package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

// MatchJSONEncoder writes match trees. When Rules is set, matches produced
// by the pattern of a rule carry the rule's name.
type MatchJSONEncoder struct {
	w     io.Writer
	Rules *rules.RuleSet
}

func NewMatchJSONEncoder(w io.Writer) *MatchJSONEncoder {
	return &MatchJSONEncoder{w: w}
}

func (e *MatchJSONEncoder) Encode(m *parse.Match) error {
	text, err := e.Marshal(m)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *MatchJSONEncoder) Marshal(m *parse.Match) ([]byte, error) {
	var names map[pattern.Pattern]string
	if e.Rules != nil {
		names = ruleNames(e.Rules)
	}
	return json.MarshalIndent(matchToJSON(m, names), "", "  ")
}

type matchJSONNode struct {
	Kind     string           `json:"kind"`
	Rule     string           `json:"rule,omitempty"`
	Start    int              `json:"start"`
	End      int              `json:"end"`
	Text     *string          `json:"text,omitempty"`
	Children []*matchJSONNode `json:"children,omitempty"`
}

// matchToJSON converts m. Children that were allowed to fail stay in
// place as nulls.
func matchToJSON(m *parse.Match, names map[pattern.Pattern]string) *matchJSONNode {
	if m == nil {
		return nil
	}
	jn := &matchJSONNode{
		Kind:  patternKind(m.Pattern),
		Rule:  names[m.Pattern],
		Start: m.Start,
		End:   m.End,
	}
	if m.IsLeaf() {
		jn.Text = &m.Text
		return jn
	}
	for _, c := range m.Children {
		jn.Children = append(jn.Children, matchToJSON(c, names))
	}
	return jn
}

func patternKind(p pattern.Pattern) string {
	switch p.(type) {
	case *pattern.Literal:
		return "literal"
	case *pattern.CharClass:
		return "class"
	case *pattern.Regex:
		return "regex"
	case *pattern.Alternation:
		return "alternation"
	case *pattern.Concatenation:
		return "concatenation"
	case *pattern.Repetition:
		return "repetition"
	case *pattern.Recursion:
		return "recursion"
	case *pattern.Latch:
		return "latch"
	}
	return "unknown"
}

package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
)

type RulesJSONEncoder struct {
	w  io.Writer
	rs *rules.RuleSet
}

func NewRulesJSONEncoder(w io.Writer) *RulesJSONEncoder {
	return &RulesJSONEncoder{w: w}
}

func (e *RulesJSONEncoder) Encode(rs *rules.RuleSet) error {
	e.rs = rs
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *RulesJSONEncoder) MarshalText() ([]byte, error) {
	if e.rs == nil {
		return nil, errors.New("json: no rule set")
	}
	return json.MarshalIndent(e.buildRuleSetData(), "", "  ")
}

type jsonRuleSet struct {
	Rules       []jsonRule       `json:"rules"`
	Unresolved  []string         `json:"unresolved,omitempty"`
	Cycles      []jsonCycle      `json:"cycles,omitempty"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonRule struct {
	Name       string       `json:"name"`
	Count      int          `json:"count"`
	References []string     `json:"references,omitempty"`
	Pattern    *jsonPattern `json:"pattern"`
}

type jsonCycle struct {
	Root     string     `json:"root"`
	Members  [][]string `json:"members"`
	Internal []string   `json:"internal,omitempty"`
}

type jsonDiagnostic struct {
	Severity string `json:"severity"`
	Rule     string `json:"rule,omitempty"`
	Name     string `json:"name,omitempty"`
	Offset   int    `json:"offset"`
	Message  string `json:"message"`
}

type jsonPattern struct {
	Kind     string         `json:"kind"`
	Rule     string         `json:"rule,omitempty"`
	Text     *string        `json:"text,omitempty"`
	Ranges   []jsonRange    `json:"ranges,omitempty"`
	Negated  bool           `json:"negated,omitempty"`
	Min      *int           `json:"min,omitempty"`
	Max      *int           `json:"max,omitempty"`
	Skip     *jsonPattern   `json:"skip,omitempty"`
	Elements []*jsonPattern `json:"elements,omitempty"`
}

type jsonRange struct {
	Lo string `json:"lo"`
	Hi string `json:"hi"`
}

func (e *RulesJSONEncoder) buildRuleSetData() jsonRuleSet {
	rs := e.rs
	names := ruleNames(rs)
	refs := rs.References()
	data := jsonRuleSet{
		Rules:      make([]jsonRule, 0, rs.Len()),
		Unresolved: rs.Unresolved(),
	}
	for _, r := range rs.Rules() {
		data.Rules = append(data.Rules, jsonRule{
			Name:       r.Name,
			Count:      rs.Count(r.Name),
			References: refs[r.Name],
			Pattern:    patternToJSON(r.Pattern, names, r.Pattern),
		})
	}
	cycles := rs.Cycles()
	for _, root := range cycles.Roots {
		data.Cycles = append(data.Cycles, jsonCycle{
			Root:     root,
			Members:  cycles.Members[root],
			Internal: cycles.Internal[root],
		})
	}
	for _, d := range rs.Diagnostics() {
		data.Diagnostics = append(data.Diagnostics, jsonDiagnostic{
			Severity: d.Severity.String(),
			Rule:     d.Rule,
			Name:     d.Name,
			Offset:   d.Offset,
			Message:  d.Message,
		})
	}
	return data
}

// patternToJSON converts p. Patterns of other rules and recursion targets
// become references by name, so the result is always a finite tree.
func patternToJSON(p pattern.Pattern, names map[pattern.Pattern]string, self pattern.Pattern) *jsonPattern {
	if p == nil {
		return nil
	}
	if name, ok := names[p]; ok && p != self {
		return &jsonPattern{Kind: "rule", Rule: name}
	}
	elements := func(ps []pattern.Pattern) []*jsonPattern {
		out := make([]*jsonPattern, len(ps))
		for i, el := range ps {
			out[i] = patternToJSON(el, names, self)
		}
		return out
	}
	switch p := p.(type) {
	case *pattern.Literal:
		return &jsonPattern{Kind: "literal", Text: &p.Text}
	case *pattern.CharClass:
		jp := &jsonPattern{Kind: "class", Negated: p.Negated}
		for _, r := range p.Ranges {
			jp.Ranges = append(jp.Ranges, jsonRange{Lo: string(r.Lo), Hi: string(r.Hi)})
		}
		return jp
	case *pattern.Regex:
		return &jsonPattern{Kind: "regex", Text: &p.Source}
	case *pattern.Alternation:
		return &jsonPattern{Kind: "alternation", Elements: elements(p.Elements)}
	case *pattern.Concatenation:
		return &jsonPattern{
			Kind:     "concatenation",
			Elements: elements(p.Elements),
			Skip:     patternToJSON(p.Skip, names, self),
		}
	case *pattern.Repetition:
		lo, hi := p.Min, p.Max
		jp := &jsonPattern{
			Kind:     "repetition",
			Min:      &lo,
			Elements: elements([]pattern.Pattern{p.Inner}),
			Skip:     patternToJSON(p.Skip, names, self),
		}
		if hi != pattern.Unbounded {
			jp.Max = &hi
		}
		return jp
	case *pattern.Recursion:
		name := p.Name()
		if n, ok := names[p.Target()]; ok {
			name = n
		}
		return &jsonPattern{Kind: "recursion", Rule: name}
	case *pattern.Latch:
		return &jsonPattern{Kind: "latch", Elements: elements([]pattern.Pattern{p.Inner})}
	}
	panic(fmt.Sprintf("format: unknown pattern %T", p))
}

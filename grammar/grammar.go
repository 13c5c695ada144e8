// Package grammar reads grammar files in any supported dialect and loads
// them into a parse engine.
//
// Read tries the dialects in the order of Dialects and keeps the first
// whose meta-grammar accepts the source:
//
//	rs, err := grammar.Read(src)
//	engine, err := grammar.LoadRules(rs, grammar.WithPackrat())
//	matches := engine.Parse(input)
package grammar

import (
	"errors"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/grammars/grammar/bnf"
	"github.com/dhamidi/grammars/grammar/ebnf"
	"github.com/dhamidi/grammars/grammar/goebnf"
	"github.com/dhamidi/grammars/grammar/w3c"
	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/rules"
)

var log = commonlog.GetLogger("grammars.grammar")

var (
	// ErrNoDialect is returned when no dialect accepts a source.
	ErrNoDialect = errors.New("no dialect accepts the grammar")
	// ErrUnknownDialect is returned by ReadDialect for an unknown name.
	ErrUnknownDialect = errors.New("unknown dialect")
	// ErrUnknownRule is returned by Load for a root that is not defined.
	ErrUnknownRule = errors.New("unknown rule")
)

// Dialect is a grammar notation.
type Dialect struct {
	Name        string
	Productions func(src string) ([]rules.Production, error)
}

// Dialects lists the supported notations in the order Read tries them.
var Dialects = []Dialect{
	{Name: "bnf", Productions: bnf.Productions},
	{Name: "ebnf", Productions: ebnf.Productions},
	{Name: "w3c", Productions: w3c.Productions},
	{Name: "go", Productions: goebnf.Productions},
}

// Lookup returns the dialect called name.
func Lookup(name string) (Dialect, bool) {
	for _, d := range Dialects {
		if d.Name == name {
			return d, true
		}
	}
	return Dialect{}, false
}

// Detect returns the productions of src in the first dialect that accepts
// it. When none does, the error wraps ErrNoDialect and the syntax error
// that got furthest.
func Detect(src string) (Dialect, []rules.Production, error) {
	var best error
	bestOffset := -1
	for _, d := range Dialects {
		prods, err := d.Productions(src)
		if err == nil {
			log.Debugf("read grammar as %s", d.Name)
			return d, prods, nil
		}
		if !errors.Is(err, parse.ErrNoParse) {
			return d, nil, err
		}
		offset := 0
		var serr *parse.SyntaxError
		if errors.As(err, &serr) {
			offset = serr.Offset
		}
		if offset > bestOffset {
			best, bestOffset = err, offset
		}
	}
	return Dialect{}, nil, fmt.Errorf("%w: %w", ErrNoDialect, best)
}

// Read converts src, written in any supported dialect, into a rule set.
func Read(src string) (*rules.RuleSet, error) {
	_, prods, err := Detect(src)
	if err != nil {
		return nil, err
	}
	return rules.Convert(prods)
}

// ReadDialect converts src, written in the named dialect, into a rule set.
func ReadDialect(name, src string) (*rules.RuleSet, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, ErrUnknownDialect)
	}
	prods, err := d.Productions(src)
	if err != nil {
		return nil, err
	}
	return rules.Convert(prods)
}

// ReadFile reads and converts the grammar stored at path.
func ReadFile(path string) (*rules.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	rs, err := Read(string(data))
	if err != nil {
		return rs, fmt.Errorf("read %s: %w", path, err)
	}
	return rs, nil
}

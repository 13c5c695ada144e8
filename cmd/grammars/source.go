package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/grammars/grammar"
	"github.com/dhamidi/grammars/rules"
)

// source is a grammar file and the dialect it was read in.
type source struct {
	name    string
	text    string
	dialect string
	rules   *rules.RuleSet
}

// readSource reads a file, or stdin for "-", into a string.
func readSource(filename string) (string, error) {
	var data []byte
	var err error
	if filename == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filename)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
	}
	return string(data), nil
}

// readGrammar reads and converts a grammar file. An empty dialect tries
// every dialect in turn. The rule set is returned together with a
// conversion error so its diagnostics can still be shown.
func readGrammar(filename, dialect string) (*source, error) {
	text, err := readSource(filename)
	if err != nil {
		return nil, err
	}

	var d grammar.Dialect
	var prods []rules.Production
	if dialect == "" {
		d, prods, err = grammar.Detect(text)
	} else {
		var ok bool
		d, ok = grammar.Lookup(dialect)
		if !ok {
			return nil, fmt.Errorf("read %s: %w", dialect, grammar.ErrUnknownDialect)
		}
		prods, err = d.Productions(text)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	rs, err := rules.Convert(prods)
	src := &source{name: filename, text: text, dialect: d.Name, rules: rs}
	if err != nil {
		return src, fmt.Errorf("convert %s: %w", filename, err)
	}
	return src, nil
}

package grammar

import (
	"fmt"

	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/rules"
)

type loader struct {
	packrat bool
	root    string
	dialect string
}

type Option func(*loader)

// WithPackrat loads the grammar into a memoizing engine.
func WithPackrat() Option {
	return func(l *loader) {
		l.packrat = true
	}
}

// WithRoot seeds the engine with the named rule instead of the first one.
func WithRoot(name string) Option {
	return func(l *loader) {
		l.root = name
	}
}

// WithDialect skips dialect detection.
func WithDialect(name string) Option {
	return func(l *loader) {
		l.dialect = name
	}
}

// Load reads src and returns an engine seeded with its root rule.
func Load(src string, opts ...Option) (parse.Engine, error) {
	l := newLoader(opts)
	var rs *rules.RuleSet
	var err error
	if l.dialect != "" {
		rs, err = ReadDialect(l.dialect, src)
	} else {
		rs, err = Read(src)
	}
	if err != nil {
		return nil, err
	}
	return l.load(rs)
}

// LoadRules returns an engine seeded with a rule of rs.
func LoadRules(rs *rules.RuleSet, opts ...Option) (parse.Engine, error) {
	return newLoader(opts).load(rs)
}

func newLoader(opts []Option) *loader {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) load(rs *rules.RuleSet) (parse.Engine, error) {
	root, ok := rs.First()
	if !ok {
		return nil, fmt.Errorf("load: %w", rules.ErrNoRules)
	}
	if l.root != "" {
		p, ok := rs.Get(l.root)
		if !ok {
			return nil, fmt.Errorf("load %q: %w", l.root, ErrUnknownRule)
		}
		root = rules.Rule{Name: l.root, Pattern: p}
	}
	log.Debugf("loading rule %q", root.Name)
	if l.packrat {
		return parse.NewPackrat(root.Pattern), nil
	}
	return parse.NewRecursiveDescent(root.Pattern), nil
}

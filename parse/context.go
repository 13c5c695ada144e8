package parse

import "github.com/dhamidi/grammars/pattern"

// Context is a chain of scopes holding latch captures. Lookups walk towards
// the root, writes always go to the receiver.
type Context struct {
	local  map[*pattern.Latch]*Match
	parent *Context
}

// NewContext returns a root scope declaring locals.
func NewContext(locals ...*pattern.Latch) *Context {
	return newScope(nil, locals)
}

func newScope(parent *Context, locals []*pattern.Latch) *Context {
	c := &Context{local: make(map[*pattern.Latch]*Match, len(locals)), parent: parent}
	for _, l := range locals {
		c.local[l] = nil
	}
	return c
}

// Get returns the capture for l. A scope that declares l answers even when
// it holds no capture yet, shadowing captures further up.
func (c *Context) Get(l *pattern.Latch) *Match {
	for s := c; s != nil; s = s.parent {
		if m, ok := s.local[l]; ok {
			return m
		}
	}
	return nil
}

// Has reports whether any scope in the chain declares or captured l.
func (c *Context) Has(l *pattern.Latch) bool {
	return c.Scope(l) != nil
}

// Scope returns the nearest scope that knows l, or nil.
func (c *Context) Scope(l *pattern.Latch) *Context {
	for s := c; s != nil; s = s.parent {
		if _, ok := s.local[l]; ok {
			return s
		}
	}
	return nil
}

// Set stores a capture in the receiver.
func (c *Context) Set(l *pattern.Latch, m *Match) {
	c.local[l] = m
}

// Push returns a child scope declaring locals.
func (c *Context) Push(locals ...*pattern.Latch) *Context {
	return newScope(c, locals)
}

// PushPattern returns a child scope if p declares local latches and the
// receiver otherwise.
func (c *Context) PushPattern(p pattern.Pattern) *Context {
	var locals []*pattern.Latch
	switch p := p.(type) {
	case *pattern.Alternation:
		locals = p.Locals
	case *pattern.Concatenation:
		locals = p.Locals
	}
	if len(locals) == 0 {
		return c
	}
	return c.Push(locals...)
}

// Pop returns the parent scope, or nil at the root.
func (c *Context) Pop() *Context {
	return c.parent
}

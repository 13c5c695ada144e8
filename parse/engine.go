package parse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/grammars/pattern"
)

// Engine parses input against a list of root patterns.
type Engine interface {
	// Push appends a root pattern.
	Push(p pattern.Pattern)
	// Parse returns one match per root that accepts a prefix of input, or
	// nil when every root fails.
	Parse(input string) []*Match
	// ParseScanner is like Parse but starts at the scanner's position and
	// leaves it after the last successful root.
	ParseScanner(s *Scanner) []*Match
}

// RecursiveDescent is a backtracking interpreter over the pattern algebra.
// It is not safe for concurrent use.
type RecursiveDescent struct {
	roots []pattern.Pattern
}

// NewRecursiveDescent returns an engine seeded with roots.
func NewRecursiveDescent(roots ...pattern.Pattern) *RecursiveDescent {
	return &RecursiveDescent{roots: roots}
}

func (e *RecursiveDescent) Push(p pattern.Pattern) {
	e.roots = append(e.roots, p)
}

func (e *RecursiveDescent) Parse(input string) []*Match {
	return e.ParseScanner(NewScanner(input))
}

func (e *RecursiveDescent) ParseScanner(s *Scanner) []*Match {
	return parseRoots(newInterpreter(s, nil), e.roots)
}

// parseRoots tries every root from the same start position.
func parseRoots(in *interpreter, roots []pattern.Pattern) []*Match {
	start := in.s.Pos()
	end := start
	var forest []*Match
	for _, root := range roots {
		in.s.SetPos(start)
		if m := in.visit(root, NewContext()); m != nil {
			forest = append(forest, m)
			end = in.s.Pos()
		}
	}
	in.s.SetPos(end)
	return forest
}

// activeKey identifies a recursion being expanded at an offset.
type activeKey struct {
	rec    *pattern.Recursion
	offset int
}

type interpreter struct {
	s      *Scanner
	cache  *Cache
	active map[activeKey]bool
}

func newInterpreter(s *Scanner, cache *Cache) *interpreter {
	return &interpreter{s: s, cache: cache, active: make(map[activeKey]bool)}
}

// visit applies p at the cursor. On failure the cursor is where it was.
func (in *interpreter) visit(p pattern.Pattern, ctx *Context) *Match {
	if in.cache == nil || !cacheable(p) {
		return in.apply(p, ctx)
	}
	pos := in.s.Pos()
	if e, ok := in.cache.Lookup(pos, p); ok {
		in.s.SetPos(pos + e.Length)
		return e.Match
	}
	m := in.apply(p, ctx)
	in.cache.store(pos, p, in.s.Pos()-pos, m)
	return m
}

// cacheable excludes patterns that are cheaper to re-check than to look up,
// and latches, whose outcome depends on the scope.
func cacheable(p pattern.Pattern) bool {
	switch p.(type) {
	case *pattern.Literal, *pattern.CharClass, *pattern.Latch:
		return false
	}
	return true
}

func (in *interpreter) apply(p pattern.Pattern, ctx *Context) *Match {
	switch p := p.(type) {
	case *pattern.Literal:
		if !strings.HasPrefix(in.s.Rest(), p.Text) {
			return nil
		}
		return in.leaf(p, len(p.Text))
	case *pattern.CharClass:
		r, size := utf8.DecodeRuneInString(in.s.Rest())
		if size == 0 || !p.Contains(r) {
			return nil
		}
		return in.leaf(p, size)
	case *pattern.Regex:
		n := p.MatchLength(in.s.Rest())
		if n < 0 {
			return nil
		}
		return in.leaf(p, n)
	case *pattern.Alternation:
		return in.alternation(p, ctx.PushPattern(p))
	case *pattern.Concatenation:
		return in.concatenation(p, ctx.PushPattern(p))
	case *pattern.Repetition:
		return in.repetition(p, ctx)
	case *pattern.Recursion:
		return in.recursion(p, ctx)
	case *pattern.Latch:
		return in.latch(p, ctx)
	}
	panic(fmt.Sprintf("parse: unknown pattern %T", p))
}

func (in *interpreter) leaf(p pattern.Pattern, n int) *Match {
	start := in.s.Pos()
	in.s.Advance(n)
	return &Match{Pattern: p, Start: start, End: start + n, Text: in.s.slice(start, start+n)}
}

func (in *interpreter) node(p pattern.Pattern, start int, children []*Match) *Match {
	end := in.s.Pos()
	return &Match{Pattern: p, Start: start, End: end, Text: in.s.slice(start, end), Children: children}
}

// alternation evaluates every element from the same start and keeps the
// one ending furthest. An empty success only wins while nothing else has
// matched.
func (in *interpreter) alternation(p *pattern.Alternation, ctx *Context) *Match {
	start := in.s.Pos()
	var best *Match
	bestEnd := start
	for _, el := range p.Elements {
		in.s.SetPos(start)
		m := in.visit(el, ctx)
		if m == nil {
			continue
		}
		if best == nil || in.s.Pos() > bestEnd {
			best, bestEnd = m, in.s.Pos()
		}
	}
	if best == nil {
		in.s.SetPos(start)
		return nil
	}
	in.s.SetPos(bestEnd)
	return in.node(p, start, []*Match{best})
}

func (in *interpreter) concatenation(p *pattern.Concatenation, ctx *Context) *Match {
	start := in.s.Pos()
	children := make([]*Match, 0, len(p.Elements))
	for i, el := range p.Elements {
		elStart := in.s.Pos()
		m := in.visit(el, ctx)
		if i > 0 && p.Skip != nil && (m == nil || in.s.Pos() == elStart) {
			m = in.retryAfterSkip(el, p.Skip, ctx, m, elStart)
		}
		if m == nil && !allowedToFail(el) {
			in.s.SetPos(start)
			return nil
		}
		children = append(children, m)
	}
	return in.node(p, start, children)
}

// allowedToFail reports whether a concatenation tolerates el not matching.
func allowedToFail(el pattern.Pattern) bool {
	if _, ok := el.(*pattern.Recursion); ok {
		return true
	}
	return pattern.IsOptional(el)
}

// retryAfterSkip consumes skip once and applies el again. The retry is
// kept only if it gets further than the skip alone; otherwise the cursor
// returns to elStart and prev, the result of the first attempt, stands.
func (in *interpreter) retryAfterSkip(el, skip pattern.Pattern, ctx *Context, prev *Match, elStart int) *Match {
	in.s.SetPos(elStart)
	if in.visit(skip, ctx) == nil || in.s.Pos() == elStart {
		in.s.SetPos(elStart)
		return prev
	}
	afterSkip := in.s.Pos()
	m := in.visit(el, ctx)
	if m == nil || in.s.Pos() == afterSkip {
		in.s.SetPos(elStart)
		return prev
	}
	return m
}

func (in *interpreter) repetition(p *pattern.Repetition, ctx *Context) *Match {
	start := in.s.Pos()
	results := make([]*Match, 0, p.Min)
	for len(results) < p.Min {
		m := in.iterate(p, ctx, len(results))
		if m == nil {
			in.s.SetPos(start)
			return nil
		}
		results = append(results, m)
	}
	for p.Max == pattern.Unbounded || len(results) < p.Max {
		iterStart := in.s.Pos()
		m := in.iterate(p, ctx, len(results))
		if m == nil {
			in.s.SetPos(iterStart)
			break
		}
		results = append(results, m)
		if in.s.Pos() == iterStart || in.s.EOS() {
			break
		}
	}
	if p.IsZeroOrOne() {
		if len(results) == 0 {
			return nil
		}
		return results[0]
	}
	return in.node(p, start, results)
}

// iterate matches one repetition of p.Inner. Only iterations after the
// first may be preceded by the skip pattern.
func (in *interpreter) iterate(p *pattern.Repetition, ctx *Context, count int) *Match {
	iterStart := in.s.Pos()
	m := in.visit(p.Inner, ctx)
	if count > 0 && p.Skip != nil && (m == nil || in.s.Pos() == iterStart) {
		m = in.retryAfterSkip(p.Inner, p.Skip, ctx, m, iterStart)
	}
	return m
}

// recursion fails instead of re-entering the same recursion at the same
// offset, which could never make progress.
func (in *interpreter) recursion(p *pattern.Recursion, ctx *Context) *Match {
	target := p.Target()
	if target == nil {
		return nil
	}
	key := activeKey{rec: p, offset: in.s.Pos()}
	if in.active[key] {
		return nil
	}
	in.active[key] = true
	defer delete(in.active, key)
	return in.visit(target, ctx)
}

func (in *interpreter) latch(p *pattern.Latch, ctx *Context) *Match {
	scope := ctx.Scope(p)
	if scope == nil {
		scope = ctx
	}
	if captured := scope.Get(p); captured != nil {
		return in.replay(p, captured, ctx)
	}
	m := in.visit(p.Inner, ctx)
	if m != nil {
		scope.Set(p, m)
	}
	return m
}

// replay requires the input at the cursor to repeat an earlier capture.
func (in *interpreter) replay(p *pattern.Latch, captured *Match, ctx *Context) *Match {
	if lit, ok := captured.Pattern.(*pattern.Literal); ok {
		if !strings.HasPrefix(in.s.Rest(), captured.Text) {
			return nil
		}
		return in.leaf(lit, len(captured.Text))
	}
	start := in.s.Pos()
	m := in.visit(p.Inner, ctx)
	if m == nil || !m.Equal(captured) {
		in.s.SetPos(start)
		return nil
	}
	return m
}

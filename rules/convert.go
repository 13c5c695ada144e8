package rules

import (
	"fmt"
	"sort"

	"github.com/dhamidi/grammars/pattern"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("grammars.rules")

// Convert lowers productions into a RuleSet.
//
// Rules are converted repeatedly until no further rule can be converted. A
// reference to a converted rule inlines its pattern; a reference to an
// undefined name becomes a recursion that is never set, so it fails at
// match time and is reported as a diagnostic. Direct left and right
// recursion is rewritten into repetitions. When conversion stalls, rules
// that reach themselves through other stalled rules get a recursion proxy,
// which unblocks the cycle; proxies are pointed at their rule's pattern
// once conversion is complete.
//
// The returned rules are ordered by ascending reference count, ties broken
// by declaration order, so an unreferenced root rule comes first.
func Convert(prods []Production) (*RuleSet, error) {
	if len(prods) == 0 {
		return nil, fmt.Errorf("convert: %w", ErrNoRules)
	}
	c := newConverter(prods)
	c.run()
	return c.ruleSet()
}

type converter struct {
	prods   []*Production
	index   map[string]*Production
	done    map[string]pattern.Pattern
	dead    map[string]bool
	proxies map[string]*pattern.Recursion
	counts  map[string]int
	missing map[string]*pattern.Recursion
	blocked map[string]string
	diags   []Diagnostic
}

// attempt accumulates the side effects of converting one rule. They are
// applied only if the rule converts.
type attempt struct {
	rule    string
	counts  map[string]int
	missing []Ref
	self    *pattern.Recursion
	diags   []Diagnostic
	blocked string
}

func newConverter(prods []Production) *converter {
	c := &converter{
		index:   make(map[string]*Production),
		done:    make(map[string]pattern.Pattern),
		dead:    make(map[string]bool),
		proxies: make(map[string]*pattern.Recursion),
		counts:  make(map[string]int),
		missing: make(map[string]*pattern.Recursion),
		blocked: make(map[string]string),
	}
	for _, p := range prods {
		if prev, ok := c.index[p.Name]; ok {
			prev.Body = append(append(Choice(nil), prev.Body...), p.Body...)
			c.report(Diagnostic{
				Severity: Warning,
				Rule:     p.Name,
				Offset:   p.Offset,
				Message:  "duplicate rule, alternatives merged",
			})
			continue
		}
		cp := p
		c.prods = append(c.prods, &cp)
		c.index[p.Name] = &cp
	}
	return c
}

func (c *converter) run() {
	for {
		c.fixpoint()
		if len(c.pending()) == 0 || !c.discover() {
			break
		}
	}
	for _, p := range c.pending() {
		c.report(Diagnostic{
			Severity: Error,
			Rule:     p.Name,
			Name:     c.blocked[p.Name],
			Offset:   p.Offset,
			Message:  fmt.Sprintf("rule never converts, blocked on %q", c.blocked[p.Name]),
		})
	}
	c.fixUp()
}

func (c *converter) settled(name string) bool {
	_, ok := c.done[name]
	return ok || c.dead[name]
}

func (c *converter) pending() []*Production {
	var out []*Production
	for _, p := range c.prods {
		if !c.settled(p.Name) {
			out = append(out, p)
		}
	}
	return out
}

// fixpoint converts rules until an iteration makes no progress.
func (c *converter) fixpoint() {
	for progress := true; progress; {
		progress = false
		for _, p := range c.prods {
			if c.settled(p.Name) {
				continue
			}
			if c.convert(p) {
				progress = true
			}
		}
	}
}

type recursionKind int

const (
	nonRecursive recursionKind = iota
	leftRecursive
	rightRecursive
	bothRecursive
	selfOnly
)

// classify looks for a direct self reference at the edges of an
// alternative. Self references elsewhere are center recursion and are left
// to the recursion proxy.
func classify(name string, seq Sequence) recursionKind {
	isSelf := func(t Term) bool {
		r, ok := t.(Ref)
		return ok && r.Name == name
	}
	n := len(seq)
	switch {
	case n == 1 && isSelf(seq[0]):
		return selfOnly
	case n == 2 && isSelf(seq[0]) && isSelf(seq[1]):
		return bothRecursive
	case n > 1 && isSelf(seq[0]):
		return leftRecursive
	case n > 1 && isSelf(seq[n-1]):
		return rightRecursive
	}
	return nonRecursive
}

// convert attempts p and reports whether it is now settled.
func (c *converter) convert(p *Production) bool {
	a := &attempt{rule: p.Name, counts: make(map[string]int)}
	var bases, lefts, rights []pattern.Pattern
	both := false
	for _, seq := range p.Body {
		var (
			pat pattern.Pattern
			ok  bool
		)
		switch classify(p.Name, seq) {
		case selfOnly:
			a.diags = append(a.diags, Diagnostic{
				Severity: Warning,
				Rule:     p.Name,
				Name:     p.Name,
				Offset:   seq[0].(Ref).Offset,
				Message:  "alternative consisting only of the rule itself ignored",
			})
			continue
		case bothRecursive:
			both = true
			continue
		case leftRecursive:
			if pat, ok = c.sequence(seq[1:], a); ok {
				lefts = append(lefts, pat)
			}
		case rightRecursive:
			if pat, ok = c.sequence(seq[:len(seq)-1], a); ok {
				rights = append(rights, pat)
			}
		default:
			if pat, ok = c.sequence(seq, a); ok {
				bases = append(bases, pat)
			}
		}
		if !ok {
			c.blocked[p.Name] = a.blocked
			return false
		}
	}

	if len(bases) == 0 {
		c.dead[p.Name] = true
		c.report(Diagnostic{
			Severity: Error,
			Rule:     p.Name,
			Offset:   p.Offset,
			Message:  "rule has no non-recursive alternative",
		})
		return true
	}

	c.commit(p, a, eliminate(bases, lefts, rights, both))
	return true
}

func (c *converter) commit(p *Production, a *attempt, pat pattern.Pattern) {
	for name, n := range a.counts {
		c.counts[name] += n
	}
	for _, r := range a.missing {
		c.counts[r.Name] = Unresolved
		c.report(Diagnostic{
			Severity: Warning,
			Rule:     p.Name,
			Name:     r.Name,
			Offset:   r.Offset,
			Message:  fmt.Sprintf("reference to undefined rule %q", r.Name),
		})
	}
	for _, d := range a.diags {
		c.report(d)
	}
	if a.self != nil {
		c.proxies[p.Name] = a.self
	}
	c.done[p.Name] = pat
	delete(c.blocked, p.Name)
}

// eliminate rewrites direct recursion. Left remainders are pooled into one
// trailing repetition and right remainders into one leading repetition,
// applied to every base alternative. A base equal to the only pooled
// remainder collapses into a one-or-more repetition of it.
func eliminate(bases, lefts, rights []pattern.Pattern, both bool) pattern.Pattern {
	var leftRem, rightRem pattern.Pattern
	if len(lefts) > 0 {
		leftRem = choiceOf(lefts)
	}
	if len(rights) > 0 {
		rightRem = choiceOf(rights)
	}

	alts := make([]pattern.Pattern, 0, len(bases))
	for _, b := range bases {
		var alt pattern.Pattern
		switch {
		case leftRem != nil && rightRem == nil && pattern.Equal(b, leftRem):
			alt = pattern.AtLeast(1, leftRem)
		case rightRem != nil && leftRem == nil && pattern.Equal(b, rightRem):
			alt = pattern.AtLeast(1, rightRem)
		case leftRem == nil && rightRem == nil:
			alt = b
		default:
			var els []pattern.Pattern
			if rightRem != nil {
				els = append(els, pattern.Any(rightRem))
			}
			els = append(els, spliceable(b)...)
			if leftRem != nil {
				els = append(els, pattern.Any(leftRem))
			}
			alt = sequenceOf(els)
		}
		if both {
			alt = pattern.AtLeast(1, alt)
		}
		alts = append(alts, alt)
	}
	return choiceOf(alts)
}

// spliceable returns the elements of a plain concatenation, so that a
// repetition attached to it extends the sequence instead of nesting it.
func spliceable(p pattern.Pattern) []pattern.Pattern {
	if cat, ok := p.(*pattern.Concatenation); ok && cat.Skip == nil && len(cat.Locals) == 0 {
		return cat.Elements
	}
	return []pattern.Pattern{p}
}

func sequenceOf(els []pattern.Pattern) pattern.Pattern {
	switch len(els) {
	case 0:
		return pattern.Lit("")
	case 1:
		return els[0]
	}
	return pattern.Cat(els...)
}

func choiceOf(alts []pattern.Pattern) pattern.Pattern {
	switch len(alts) {
	case 0:
		return pattern.Lit("")
	case 1:
		return alts[0]
	}
	return pattern.Alt(alts...)
}

func (c *converter) sequence(seq Sequence, a *attempt) (pattern.Pattern, bool) {
	els := make([]pattern.Pattern, 0, len(seq))
	for _, t := range seq {
		p, ok := c.term(t, a)
		if !ok {
			return nil, false
		}
		els = append(els, p)
	}
	return sequenceOf(els), true
}

func (c *converter) choice(body Choice, a *attempt) (pattern.Pattern, bool) {
	alts := make([]pattern.Pattern, 0, len(body))
	for _, seq := range body {
		p, ok := c.sequence(seq, a)
		if !ok {
			return nil, false
		}
		alts = append(alts, p)
	}
	return choiceOf(alts), true
}

func (c *converter) term(t Term, a *attempt) (pattern.Pattern, bool) {
	switch t := t.(type) {
	case Terminal:
		return t.Pattern, true
	case Ref:
		return c.ref(t, a)
	case Group:
		return c.choice(t.Body, a)
	case Repeat:
		inner, ok := c.choice(t.Body, a)
		if !ok {
			return nil, false
		}
		return pattern.Repeat(t.Min, t.Max, inner), true
	}
	panic(fmt.Sprintf("rules: unknown term %T", t))
}

func (c *converter) ref(r Ref, a *attempt) (pattern.Pattern, bool) {
	if pat, ok := c.done[r.Name]; ok && r.Name != a.rule {
		a.counts[r.Name]++
		return pat, true
	}
	if r.Name == a.rule {
		if proxy, ok := c.proxies[r.Name]; ok {
			return proxy, true
		}
		if a.self == nil {
			a.self = pattern.NewRecursion(r.Name)
		}
		return a.self, true
	}
	if proxy, ok := c.proxies[r.Name]; ok {
		a.counts[r.Name]++
		return proxy, true
	}
	if _, ok := c.index[r.Name]; !ok || c.dead[r.Name] {
		a.missing = append(a.missing, r)
		return c.dangling(r.Name), true
	}
	a.blocked = r.Name
	return nil, false
}

// dangling returns the shared, never assigned recursion standing in for an
// undefined name.
func (c *converter) dangling(name string) *pattern.Recursion {
	rec, ok := c.missing[name]
	if !ok {
		rec = pattern.NewRecursion(name)
		c.missing[name] = rec
	}
	return rec
}

// discover gives a proxy to every stalled rule that reaches itself through
// other stalled rules. Rules that already own a proxy are not entered, so
// one proxy per cycle suffices.
func (c *converter) discover() bool {
	found := false
	for _, p := range c.prods {
		if c.settled(p.Name) || c.proxies[p.Name] != nil {
			continue
		}
		if c.reaches(p.Name) {
			log.Debugf("recursion proxy for %q", p.Name)
			c.proxies[p.Name] = pattern.NewRecursion(p.Name)
			found = true
		}
	}
	return found
}

func (c *converter) reaches(start string) bool {
	visited := make(map[string]bool)
	var dfs func(name string) bool
	dfs = func(name string) bool {
		for _, ref := range c.index[name].References() {
			if ref == start {
				return true
			}
			if _, ok := c.index[ref]; !ok || visited[ref] || c.settled(ref) || c.proxies[ref] != nil {
				continue
			}
			visited[ref] = true
			if dfs(ref) {
				return true
			}
		}
		return false
	}
	return dfs(start)
}

// fixUp points every proxy at the pattern of its rule.
func (c *converter) fixUp() {
	names := make([]string, 0, len(c.proxies))
	for name := range c.proxies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		proxy := c.proxies[name]
		pat, ok := c.done[name]
		if !ok {
			continue
		}
		if rec, isRec := pat.(*pattern.Recursion); isRec && rec == proxy {
			delete(c.done, name)
			c.counts[name] = Unresolved
			c.report(Diagnostic{
				Severity: Error,
				Rule:     name,
				Offset:   c.index[name].Offset,
				Message:  "rule only refers to itself",
			})
			continue
		}
		proxy.Set(pat)
	}
}

func (c *converter) report(d Diagnostic) {
	switch d.Severity {
	case Error:
		log.Errorf("%s", d)
	default:
		log.Warningf("%s", d)
	}
	c.diags = append(c.diags, d)
}

func (c *converter) ruleSet() (*RuleSet, error) {
	var rules []Rule
	for _, p := range c.prods {
		if pat, ok := c.done[p.Name]; ok {
			rules = append(rules, Rule{Name: p.Name, Pattern: pat})
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return c.counts[rules[i].Name] < c.counts[rules[j].Name]
	})

	rs := newRuleSet(rules)
	rs.counts = c.counts
	for _, r := range rules {
		var refs []string
		for _, name := range c.index[r.Name].References() {
			if _, ok := rs.index[name]; ok {
				refs = append(refs, name)
			}
		}
		rs.refs[r.Name] = refs
	}
	rs.diags = c.diags

	cycles := rs.Cycles()
	for _, d := range cycles.Diagnostics {
		c.report(d)
	}
	rs.diags = c.diags

	if n := len(rs.Unresolved()); n > 0 {
		log.Warningf("%d unresolved references", n)
	}
	if len(rules) == 0 {
		return rs, fmt.Errorf("convert: %w", ErrNoRules)
	}
	return rs, nil
}

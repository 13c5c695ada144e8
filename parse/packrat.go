package parse

import (
	"sort"

	"github.com/dhamidi/grammars/pattern"
)

// Packrat is a RecursiveDescent engine that memoizes the result of every
// pattern at every offset within one Parse call.
type Packrat struct {
	RecursiveDescent
	cache *Cache
}

// NewPackrat returns a memoizing engine seeded with roots.
func NewPackrat(roots ...pattern.Pattern) *Packrat {
	return &Packrat{RecursiveDescent: RecursiveDescent{roots: roots}}
}

func (e *Packrat) Parse(input string) []*Match {
	return e.ParseScanner(NewScanner(input))
}

// ParseScanner starts every call with an empty cache.
func (e *Packrat) ParseScanner(s *Scanner) []*Match {
	e.cache = newCache()
	return parseRoots(newInterpreter(s, e.cache), e.roots)
}

// Cache returns the cache of the most recent parse, or nil before the
// first one.
func (e *Packrat) Cache() *Cache {
	return e.cache
}

// CacheEntry is a memoized outcome. A nil Match records a failure.
type CacheEntry struct {
	Length int
	Match  *Match
}

// Cache maps offset and pattern identity to a memoized outcome.
type Cache struct {
	entries map[int]map[pattern.Pattern]CacheEntry
}

func newCache() *Cache {
	return &Cache{entries: make(map[int]map[pattern.Pattern]CacheEntry)}
}

// Lookup returns the entry for p at offset pos.
func (c *Cache) Lookup(pos int, p pattern.Pattern) (CacheEntry, bool) {
	e, ok := c.entries[pos][p]
	return e, ok
}

func (c *Cache) store(pos int, p pattern.Pattern, length int, m *Match) {
	at, ok := c.entries[pos]
	if !ok {
		at = make(map[pattern.Pattern]CacheEntry)
		c.entries[pos] = at
	}
	at[p] = CacheEntry{Length: length, Match: m}
}

// Len returns the number of offsets with at least one entry.
func (c *Cache) Len() int {
	return len(c.entries)
}

// LenAt returns the number of patterns memoized at pos.
func (c *Cache) LenAt(pos int) int {
	return len(c.entries[pos])
}

// Positions returns the memoized offsets in ascending order.
func (c *Cache) Positions() []int {
	out := make([]int, 0, len(c.entries))
	for pos := range c.entries {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

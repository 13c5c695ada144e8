package parse

import (
	"testing"

	"github.com/dhamidi/grammars/pattern"
)

func expectEntry(t *testing.T, c *Cache, pos int, p pattern.Pattern, length int, matched bool) {
	t.Helper()
	e, ok := c.Lookup(pos, p)
	if !ok {
		t.Fatalf("no cache entry for %s at %d", p, pos)
	}
	if e.Length != length {
		t.Errorf("entry for %s at %d has length %d, want %d", p, pos, e.Length, length)
	}
	if (e.Match != nil) != matched {
		t.Errorf("entry for %s at %d matched = %v, want %v", p, pos, e.Match != nil, matched)
	}
}

func TestPackrat_Literal(t *testing.T) {
	e := NewPackrat(pattern.Lit("abc"))
	e.Parse("abc")
	if e.Cache().Len() != 0 {
		t.Errorf("expected literals to bypass the cache, got %d offsets", e.Cache().Len())
	}
}

func TestPackrat_FreshCachePerParse(t *testing.T) {
	re := pattern.MustRegex(`abc`)
	e := NewPackrat(re)
	if e.Cache() != nil {
		t.Fatalf("expected no cache before the first parse")
	}

	e.Parse("abc")
	first := e.Cache()
	expectEntry(t, first, 0, re, 3, true)

	e.Parse("xyz")
	second := e.Cache()
	if second == first {
		t.Fatalf("expected a new cache for the second parse")
	}
	expectEntry(t, second, 0, re, 0, false)
	if _, ok := first.Lookup(0, re); !ok {
		t.Errorf("expected the first cache to be left alone")
	}
}

func TestPackrat_CharClassBypassesCache(t *testing.T) {
	e := NewPackrat(pattern.Cat(pattern.Class(pattern.Range{Lo: 'a', Hi: 'z'})))
	e.Parse("d")
	if n := e.Cache().LenAt(0); n != 1 {
		t.Errorf("expected only the concatenation to be cached, got %d entries", n)
	}
}

func TestPackrat_Alternation(t *testing.T) {
	abc := pattern.Cat(pattern.Lit("abc"))
	def := pattern.Cat(pattern.Lit("def"))
	alt := pattern.Alt(abc, def)

	e := NewPackrat(alt)
	e.Parse("abc")
	c := e.Cache()
	if c.Len() != 1 || c.LenAt(0) != 3 {
		t.Fatalf("expected 3 entries at offset 0, got %d offsets, %d entries", c.Len(), c.LenAt(0))
	}
	expectEntry(t, c, 0, alt, 3, true)
	expectEntry(t, c, 0, abc, 3, true)
	expectEntry(t, c, 0, def, 0, false)
}

func TestPackrat_Repetition(t *testing.T) {
	abc := pattern.Cat(pattern.Lit("abc"))
	rep := pattern.AtLeast(3, abc)

	e := NewPackrat(rep)
	e.Parse("abcabc")
	c := e.Cache()
	expectEntry(t, c, 0, rep, 0, false)
	expectEntry(t, c, 0, abc, 3, true)
	expectEntry(t, c, 3, abc, 3, true)
	expectEntry(t, c, 6, abc, 0, false)
}

func TestPackrat_Optional(t *testing.T) {
	abc := pattern.Cat(pattern.Lit("abc"))
	opt := pattern.Optional(abc)

	e := NewPackrat(opt)
	e.Parse("abc")
	c := e.Cache()
	if c.Len() != 1 || c.LenAt(0) != 2 {
		t.Fatalf("expected 2 entries at one offset, got %d offsets, %d entries", c.Len(), c.LenAt(0))
	}
	expectEntry(t, c, 0, opt, 3, true)
	expectEntry(t, c, 0, abc, 3, true)

	e.Parse("")
	c = e.Cache()
	expectEntry(t, c, 0, opt, 0, false)
	expectEntry(t, c, 0, abc, 0, false)
}

func TestPackrat_ReusesMemoizedMatch(t *testing.T) {
	prefix := pattern.Cat(pattern.Lit("abc"))
	alt := pattern.Alt(pattern.Cat(prefix, pattern.Lit("x")), pattern.Cat(prefix, pattern.Lit("y")))

	e := NewPackrat(alt)
	got := e.Parse("abcy")
	if len(got) != 1 || got[0].Text != "abcy" {
		t.Fatalf("expected abcy, got %v", got)
	}
	cached, ok := e.Cache().Lookup(0, prefix)
	if !ok {
		t.Fatal("expected the shared prefix to be cached")
	}
	if got[0].Child(0).Child(0) != cached.Match {
		t.Errorf("expected the second branch to reuse the memoized prefix match")
	}
}

func TestPackrat_Latch(t *testing.T) {
	t.Run("simple latch", func(t *testing.T) {
		l := pattern.NewLatch(pattern.Lit("abc"))
		g := pattern.Cat(l, l)
		e := NewPackrat(g)
		e.Parse("abcabc")
		c := e.Cache()
		if c.Len() != 1 || c.LenAt(0) != 1 {
			t.Fatalf("expected only the concatenation cached, got %d offsets, %d entries", c.Len(), c.LenAt(0))
		}
		expectEntry(t, c, 0, g, 6, true)
	})

	t.Run("latched alternation", func(t *testing.T) {
		inner := pattern.Alt(pattern.Lit("abc"), pattern.Lit("xyz"))
		l := pattern.NewLatch(inner)
		g := pattern.Cat(l, l)
		e := NewPackrat(g)
		e.Parse("abcabc")
		c := e.Cache()
		if c.Len() != 2 || c.LenAt(0) != 2 || c.LenAt(3) != 1 {
			t.Fatalf("unexpected cache shape: %v", c.Positions())
		}
		expectEntry(t, c, 0, g, 6, true)
		expectEntry(t, c, 0, inner, 3, true)
		expectEntry(t, c, 3, inner, 3, true)
		if e, _ := c.Lookup(3, inner); e.Match.Start != 3 {
			t.Errorf("Start = %d, want 3", e.Match.Start)
		}
	})

	t.Run("outer context", func(t *testing.T) {
		alt := pattern.Alt(pattern.Lit("abc"), pattern.Lit("xyz"))
		l := pattern.NewLatch(alt)
		inner := pattern.Cat(l, pattern.Lit("def"))
		outer := pattern.Cat(inner, inner).WithLocals(l)
		e := NewPackrat(outer)
		e.Parse("abcdefabcdef")
		c := e.Cache()
		if c.Len() != 2 || c.LenAt(0) != 3 || c.LenAt(6) != 2 {
			t.Fatalf("unexpected cache shape: %v", c.Positions())
		}
		expectEntry(t, c, 0, outer, 12, true)
		expectEntry(t, c, 0, inner, 6, true)
		expectEntry(t, c, 0, alt, 3, true)
		expectEntry(t, c, 6, inner, 6, true)
		expectEntry(t, c, 6, alt, 3, true)
	})

	t.Run("inner context", func(t *testing.T) {
		alt := pattern.Alt(pattern.Lit("abc"), pattern.Lit("xyz"))
		l := pattern.NewLatch(alt)
		inner := pattern.Cat(l, l).WithLocals(l)
		outer := pattern.Cat(inner, inner)
		e := NewPackrat(outer)
		e.Parse("abcabcxyzxyz")
		c := e.Cache()
		if c.Len() != 4 || c.LenAt(0) != 3 || c.LenAt(6) != 2 {
			t.Fatalf("unexpected cache shape: %v", c.Positions())
		}
		expectEntry(t, c, 0, outer, 12, true)
		expectEntry(t, c, 0, inner, 6, true)
		expectEntry(t, c, 6, inner, 6, true)
		expectEntry(t, c, 6, alt, 3, true)
	})
}

package pattern

// Equal reports whether a and b describe the same pattern. Recursions are
// compared by their targets; a pair already under comparison is assumed
// equal, which makes cyclic grammars terminate.
func Equal(a, b Pattern) bool {
	return equal(a, b, map[[2]*Recursion]bool{})
}

func equal(a, b Pattern, seen map[[2]*Recursion]bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	switch a := a.(type) {
	case *Literal:
		b, ok := b.(*Literal)
		return ok && a.Text == b.Text
	case *CharClass:
		b, ok := b.(*CharClass)
		if !ok || a.Negated != b.Negated || len(a.Ranges) != len(b.Ranges) {
			return false
		}
		for i := range a.Ranges {
			if a.Ranges[i] != b.Ranges[i] {
				return false
			}
		}
		return true
	case *Regex:
		b, ok := b.(*Regex)
		return ok && a.Source == b.Source
	case *Alternation:
		b, ok := b.(*Alternation)
		return ok && equalAll(a.Elements, b.Elements, seen) && equalLatches(a.Locals, b.Locals, seen)
	case *Concatenation:
		b, ok := b.(*Concatenation)
		return ok && equalAll(a.Elements, b.Elements, seen) &&
			equal(a.Skip, b.Skip, seen) && equalLatches(a.Locals, b.Locals, seen)
	case *Repetition:
		b, ok := b.(*Repetition)
		return ok && a.Min == b.Min && a.Max == b.Max &&
			equal(a.Inner, b.Inner, seen) && equal(a.Skip, b.Skip, seen)
	case *Recursion:
		b, ok := b.(*Recursion)
		if !ok {
			return false
		}
		if a.target == nil || b.target == nil {
			return a.target == nil && b.target == nil && a.name == b.name
		}
		key := [2]*Recursion{a, b}
		if seen[key] {
			return true
		}
		seen[key] = true
		return equal(a.target, b.target, seen)
	case *Latch:
		b, ok := b.(*Latch)
		return ok && equal(a.Inner, b.Inner, seen)
	}
	return false
}

func equalAll(a, b []Pattern, seen map[[2]*Recursion]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], seen) {
			return false
		}
	}
	return true
}

func equalLatches(a, b []*Latch, seen map[[2]*Recursion]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], seen) {
			return false
		}
	}
	return true
}

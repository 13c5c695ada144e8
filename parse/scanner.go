package parse

// Scanner is the input cursor shared by all patterns of one parse.
type Scanner struct {
	src string
	pos int
}

// NewScanner returns a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Pos returns the current byte offset.
func (s *Scanner) Pos() int {
	return s.pos
}

// SetPos moves the cursor. It is how the engine backtracks.
func (s *Scanner) SetPos(pos int) {
	if pos < 0 || pos > len(s.src) {
		panic("parse: scanner position out of range")
	}
	s.pos = pos
}

// Advance moves the cursor n bytes forward.
func (s *Scanner) Advance(n int) {
	s.SetPos(s.pos + n)
}

// EOS reports whether the cursor is at the end of the input.
func (s *Scanner) EOS() bool {
	return s.pos >= len(s.src)
}

// Rest returns the unconsumed input.
func (s *Scanner) Rest() string {
	return s.src[s.pos:]
}

func (s *Scanner) slice(start, end int) string {
	return s.src[start:end]
}

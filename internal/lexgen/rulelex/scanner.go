// Package rulelex provides a buffered, position-tracking rune scanner over a
// rules-file source, the low-level reading primitive the rules package's
// recursive-descent parser is built on.
package rulelex

// Scanner reads a rules file one rune at a time, tracking line, column, and
// the full text of the current line for later diagnostic reporting - the
// same bookkeeping a lexed token carries in a hand-rolled lazy lexer, just
// applied directly to the rule-file scanner instead of through a separate
// token stream.
type Scanner struct {
	src   []rune
	pos   int
	lines []string // src split on '\n', for FullLine lookup
	line  int      // 1-indexed line of src[pos]
	col   int      // 1-indexed column of src[pos]
}

// New creates a Scanner over src.
func New(src string) *Scanner {
	runes := []rune(src)
	var lines []string
	var cur []rune
	for _, r := range runes {
		if r == '\n' {
			lines = append(lines, string(cur))
			cur = nil
			continue
		}
		cur = append(cur, r)
	}
	lines = append(lines, string(cur))

	return &Scanner{src: runes, lines: lines, line: 1, col: 1}
}

// Eof returns whether the scanner has consumed the entire source.
func (s *Scanner) Eof() bool {
	return s.pos >= len(s.src)
}

// Peek returns the rune at the cursor without advancing it.
func (s *Scanner) Peek() (rune, bool) {
	return s.PeekAt(0)
}

// PeekAt returns the rune offset runes ahead of the cursor without advancing
// it.
func (s *Scanner) PeekAt(offset int) (rune, bool) {
	idx := s.pos + offset
	if idx < 0 || idx >= len(s.src) {
		return 0, false
	}
	return s.src[idx], true
}

// Next consumes and returns the rune at the cursor, advancing line/column
// bookkeeping.
func (s *Scanner) Next() (rune, bool) {
	r, ok := s.Peek()
	if !ok {
		return 0, false
	}
	s.pos++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r, true
}

// Pos returns the current 1-indexed line/column and the full text of the
// current line, for attaching to a diag.Error.
func (s *Scanner) Pos() (line, col int, fullLine string) {
	idx := s.line - 1
	if idx < 0 || idx >= len(s.lines) {
		return s.line, s.col, ""
	}
	return s.line, s.col, s.lines[idx]
}

// Mark returns an opaque cursor position usable with Reset to backtrack,
// mirroring the Mark/Restore pattern of the teacher's buffered regex reader.
func (s *Scanner) Mark() (pos, line, col int) {
	return s.pos, s.line, s.col
}

// Reset restores the scanner to a position previously returned by Mark.
func (s *Scanner) Reset(pos, line, col int) {
	s.pos = pos
	s.line = line
	s.col = col
}

// Remaining returns everything left unconsumed, for "trailing garbage"
// errors when a parse does not consume the whole file.
func (s *Scanner) Remaining() string {
	return string(s.src[s.pos:])
}

package rulelex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Scanner_peekNextAndPosition(t *testing.T) {
	assert := assert.New(t)

	s := New("ab\ncd")

	r, ok := s.Peek()
	assert.True(ok)
	assert.Equal('a', r)

	r, ok = s.Next()
	assert.True(ok)
	assert.Equal('a', r)

	line, col, full := s.Pos()
	assert.Equal(1, line)
	assert.Equal(2, col)
	assert.Equal("ab", full)

	s.Next() // 'b'
	s.Next() // '\n'

	line, col, full = s.Pos()
	assert.Equal(2, line)
	assert.Equal(1, col)
	assert.Equal("cd", full)
}

func Test_Scanner_markAndReset(t *testing.T) {
	assert := assert.New(t)

	s := New("abc")
	pos, line, col := s.Mark()
	s.Next()
	s.Next()

	s.Reset(pos, line, col)
	r, ok := s.Peek()
	assert.True(ok)
	assert.Equal('a', r)
}

func Test_Scanner_eofAndRemaining(t *testing.T) {
	assert := assert.New(t)

	s := New("ab")
	assert.False(s.Eof())
	assert.Equal("ab", s.Remaining())

	s.Next()
	s.Next()
	assert.True(s.Eof())
	assert.Equal("", s.Remaining())

	_, ok := s.Next()
	assert.False(ok)
}

package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_messageFormatting(t *testing.T) {
	testCases := []struct {
		name   string
		err    *Error
		expect string
	}{
		{
			name:   "no position",
			err:    New(Semantic, "rule name %q is not unique", "IF"),
			expect: `semantic error: rule name "IF" is not unique`,
		},
		{
			name:   "with position",
			err:    NewAt(Parse, Position{Line: 3, Col: 5, FullLine: "token = ;"}, "expected element"),
			expect: "parse error at line 3, col 5: expected element",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.err.Error())
		})
	}
}

func Test_Wrap_preservesUnderlyingError(t *testing.T) {
	assert := assert.New(t)

	cause := fmt.Errorf("file not found")
	wrapped := Wrap(IO, cause)

	assert.Equal(cause, wrapped.Unwrap())

	var derr *Error
	assert.True(errors.As(wrapped, &derr))
	assert.Equal(IO, derr.Kind)
}

func Test_Kind_String(t *testing.T) {
	testCases := []struct {
		kind   Kind
		expect string
	}{
		{IO, "I/O error"},
		{Parse, "parse error"},
		{Semantic, "semantic error"},
		{DFA, "DFA error"},
		{Config, "config error"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expect, tc.kind.String())
	}
}

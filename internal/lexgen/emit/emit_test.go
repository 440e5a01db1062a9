package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/lexgen/automaton"
	"github.com/dekarrin/lexgen/internal/lexgen/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestDFA(t *testing.T) (*automaton.DFA, alphabet.Alphabet) {
	t.Helper()
	require := require.New(t)

	terminals := []rules.Rule{
		{Name: "IF", IsTerminal: true, Element: rules.Element{Kind: rules.Literal, Text: "if"}},
		{
			Name: "ID", IsTerminal: true, DeclOrder: 1,
			Element: rules.Element{Kind: rules.OneOrMore, Inner: &rules.Element{
				Kind:   rules.Set,
				Ranges: []rules.CharRange{{Lo: 'a', Hi: 'z'}},
			}},
		},
	}

	alpha := alphabet.Build(terminals, 127)
	nfa, err := automaton.BuildNFA(terminals, alpha)
	require.NoError(err)
	// "if" matches both IF and ID; the ordered tie-break keeps IF there.
	dfa, err := automaton.BuildDFA(nfa, alpha, automaton.WithOrderedTieBreak())
	require.NoError(err)
	return dfa, alpha
}

func Test_ParseLanguage(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    Language
		wantErr bool
	}{
		{name: "cpp", in: "cpp", want: CPP},
		{name: "rust", in: "rust", want: Rust},
		{name: "java", in: "java", want: Java},
		{name: "unsupported", in: "python", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			got, err := ParseLanguage(tc.in)
			if tc.wantErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.want, got)
		})
	}
}

func Test_Generate_allTargetsProduceNonEmptyFiles(t *testing.T) {
	dfa, alpha := buildTestDFA(t)

	testCases := []struct {
		name  string
		lang  Language
		files []string
	}{
		{name: "cpp", lang: CPP, files: []string{"lexer.h", "lexer.cpp"}},
		{name: "rust", lang: Rust, files: []string{"lexer.rs"}},
		{name: "java", lang: Java, files: []string{"Lexer.java"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dir := t.TempDir()
			err := Generate(tc.lang, dfa, alpha, dir)
			require.NoError(err)

			for _, f := range tc.files {
				data, err := os.ReadFile(filepath.Join(dir, f))
				require.NoError(err)
				assert.NotEmpty(data)
				assert.Contains(string(data), "IF")
				assert.Contains(string(data), "ID")
			}
		})
	}
}

func Test_Generate_neverEmitsUndeclaredTrapEnumerator(t *testing.T) {
	// cpp/rust enums never declare a _TRAP member, so the trap state must
	// never appear as a "just accepted" token inside the generated body -
	// only Java's Token enum declares _TRAP.
	assert := assert.New(t)
	require := require.New(t)
	dfa, alpha := buildTestDFA(t)

	dir := t.TempDir()
	require.NoError(Generate(CPP, dfa, alpha, dir))
	cpp, err := os.ReadFile(filepath.Join(dir, "lexer.cpp"))
	require.NoError(err)
	assert.NotContains(string(cpp), "Token::_TRAP")

	dir = t.TempDir()
	require.NoError(Generate(Rust, dfa, alpha, dir))
	rs, err := os.ReadFile(filepath.Join(dir, "lexer.rs"))
	require.NoError(err)
	assert.NotContains(string(rs), "Token::_TRAP")
}

func Test_newView_excludesTrapAndEmptyFromTokens(t *testing.T) {
	assert := assert.New(t)
	dfa, alpha := buildTestDFA(t)

	v := newView(dfa, alpha)
	for _, tok := range v.Tokens {
		assert.NotEqual(automaton.TrapLabel, tok)
		assert.NotEmpty(tok)
	}
	assert.ElementsMatch([]string{"IF", "ID"}, v.Tokens)
}

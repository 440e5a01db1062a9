package automaton

import (
	"testing"

	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/lexgen/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literalRule(name, text string) rules.Rule {
	return rules.Rule{Name: name, IsTerminal: true, Element: rules.Element{Kind: rules.Literal, Text: text}}
}

func plusRule(name string, inner rules.Element) rules.Rule {
	return rules.Rule{Name: name, IsTerminal: true, Element: rules.Element{Kind: rules.OneOrMore, Inner: &inner}}
}

// simulate walks the DFA transition function directly, without ever
// rewinding, to check plain acceptance (not maximal munch) for equivalence
// testing against the source NFA.
func simulate(dfa *DFA, alpha alphabet.Alphabet, input string) bool {
	state := 0
	for _, c := range input {
		idx := -1
		for i, iv := range alpha.Intervals {
			if c >= iv.Lo && c <= iv.Hi {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false
		}
		iv := alpha.Intervals[idx]
		next := -1
		for _, conn := range dfa.Connections(state) {
			if conn.Lo == iv.Lo && conn.Hi == iv.Hi {
				next = conn.To
				break
			}
		}
		if next < 0 {
			return false
		}
		state = next
	}
	return dfa.Accept[state] != "" && dfa.Accept[state] != TrapLabel
}

func buildPipeline(t *testing.T, terminals []rules.Rule, maxCP rune, opts ...Option) (*DFA, alphabet.Alphabet) {
	t.Helper()
	require := require.New(t)

	alpha := alphabet.Build(terminals, maxCP)
	nfa, err := BuildNFA(terminals, alpha)
	require.NoError(err)
	dfa, err := BuildDFA(nfa, alpha, opts...)
	require.NoError(err)
	return dfa, alpha
}

func Test_BuildDFA_keywordVsIdentifier(t *testing.T) {
	assert := assert.New(t)

	idElem := rules.Element{Kind: rules.Set, Chars: nil, Ranges: []rules.CharRange{{Lo: 'a', Hi: 'z'}, {Lo: 'A', Hi: 'Z'}}}
	idMany := rules.Element{
		Kind: rules.Group,
		Subs: []rules.Element{
			idElem,
			{Kind: rules.ZeroOrMore, Inner: &rules.Element{
				Kind: rules.Set,
				Ranges: []rules.CharRange{
					{Lo: 'a', Hi: 'z'}, {Lo: 'A', Hi: 'Z'}, {Lo: '0', Hi: '9'},
				},
			}},
		},
	}

	terminals := []rules.Rule{
		literalRule("IF", "if"),
		{Name: "ID", IsTerminal: true, DeclOrder: 1, Element: idMany},
	}

	// "if" matches both rules, so the build needs the declaration-order
	// tie-break; without it BuildDFA rejects the grammar as ambiguous.
	dfa, alpha := buildPipeline(t, terminals, 127, WithOrderedTieBreak())

	assert.True(simulate(dfa, alpha, "iffy"))
	assert.True(simulate(dfa, alpha, "if"))
	assert.False(simulate(dfa, alpha, ""))
	assert.False(simulate(dfa, alpha, "if you"))
}

func Test_BuildDFA_ambiguityIsRejected(t *testing.T) {
	assert := assert.New(t)

	terminals := []rules.Rule{
		literalRule("A", "ab"),
		literalRule("B", "ab"),
	}

	alpha := alphabet.Build(terminals, 127)
	nfa, err := BuildNFA(terminals, alpha)
	assert.NoError(err)

	_, err = BuildDFA(nfa, alpha)
	assert.Error(err)
	assert.Contains(err.Error(), "accepting state must accept exactly one rule")
}

func Test_BuildDFA_orderedTieBreakExtension(t *testing.T) {
	assert := assert.New(t)

	terminals := []rules.Rule{
		literalRule("A", "ab"),
		literalRule("B", "ab"),
	}
	terminals[0].DeclOrder = 0
	terminals[1].DeclOrder = 1

	alpha := alphabet.Build(terminals, 127)
	nfa, err := BuildNFA(terminals, alpha)
	assert.NoError(err)

	dfa, err := BuildDFA(nfa, alpha, WithOrderedTieBreak())
	assert.NoError(err)
	assert.True(simulate(dfa, alpha, "ab"))
}

func Test_BuildDFA_repetition(t *testing.T) {
	assert := assert.New(t)

	digit := rules.Element{Kind: rules.Set, Ranges: []rules.CharRange{{Lo: '0', Hi: '9'}}}
	terminals := []rules.Rule{plusRule("NUM", digit)}

	dfa, alpha := buildPipeline(t, terminals, 127)

	assert.True(simulate(dfa, alpha, "007"))
	assert.True(simulate(dfa, alpha, "9"))
	assert.False(simulate(dfa, alpha, ""))
}

func Test_BuildDFA_negatedSet(t *testing.T) {
	assert := assert.New(t)

	quote := rules.Element{Kind: rules.Literal, Text: "\""}
	inner := rules.Element{Kind: rules.ZeroOrMore, Inner: &rules.Element{Kind: rules.NegatedSet, Chars: []rune{'"'}}}
	terminals := []rules.Rule{
		{Name: "STR", IsTerminal: true, Element: rules.Element{Kind: rules.Group, Subs: []rules.Element{quote, inner, quote}}},
	}

	dfa, alpha := buildPipeline(t, terminals, 127)

	assert.True(simulate(dfa, alpha, `"abc"`))
	assert.False(simulate(dfa, alpha, `"abc`))
}

func Test_BuildDFA_longestMatchWins(t *testing.T) {
	assert := assert.New(t)

	terminals := []rules.Rule{
		literalRule("LT", "<"),
		literalRule("LE", "<="),
	}

	dfa, alpha := buildPipeline(t, terminals, 127)

	// maximal munch is an emitter-level concern (§4.F), but the DFA must at
	// least accept both "<" and "<=" along distinct paths for the emitted
	// lexer's remember/rewind loop to pick the longer one.
	assert.True(simulate(dfa, alpha, "<"))
	assert.True(simulate(dfa, alpha, "<="))
}

func Test_DFA_totalityAndDeterminism(t *testing.T) {
	assert := assert.New(t)

	terminals := []rules.Rule{
		literalRule("IF", "if"),
		literalRule("ID", "x"),
	}
	dfa, alpha := buildPipeline(t, terminals, 127)

	trap := dfa.TrapState()
	if !assert.GreaterOrEqual(trap, 0) {
		return
	}
	assert.Equal(TrapLabel, dfa.Accept[trap])

	for s := range dfa.Accept {
		if s == trap {
			continue
		}
		conns := dfa.Connections(s)
		assert.Len(conns, len(alpha.Intervals), "state %d must have exactly one transition per alphabet interval", s)

		seen := make(map[alphabet.Interval]bool)
		for _, c := range conns {
			iv := alphabet.Interval{Lo: c.Lo, Hi: c.Hi}
			assert.False(seen[iv], "state %d must not have two transitions for the same interval", s)
			seen[iv] = true
		}
	}
}

func Test_DFA_acceptUniqueness(t *testing.T) {
	assert := assert.New(t)

	terminals := []rules.Rule{
		literalRule("IF", "if"),
		literalRule("ID", "x"),
	}
	dfa, _ := buildPipeline(t, terminals, 127)

	names := map[string]bool{"IF": true, "ID": true, TrapLabel: true, "": true}
	for _, acc := range dfa.Accept {
		assert.True(names[acc], "unexpected accept label %q", acc)
	}
}

func Test_BuildNFA_rejectsNonTerminalReference(t *testing.T) {
	assert := assert.New(t)

	terminals := []rules.Rule{
		{Name: "BAD", IsTerminal: true, Element: rules.Element{Kind: rules.RuleRef, RefName: "other"}},
	}
	alpha := alphabet.Build(nil, 127)
	_, err := BuildNFA(terminals, alpha)
	assert.Error(err)
}

func Test_BuildNFA_rejectsEmptyGroup(t *testing.T) {
	assert := assert.New(t)

	terminals := []rules.Rule{
		{Name: "BAD", IsTerminal: true, Element: rules.Element{Kind: rules.Group, Subs: nil}},
	}
	alpha := alphabet.Build(nil, 127)
	_, err := BuildNFA(terminals, alpha)
	assert.Error(err)
}

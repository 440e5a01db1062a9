package automaton

import (
	"github.com/dekarrin/lexgen/internal/diag"
	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/lexgen/rules"
)

// BuildNFA composes the shared NFA for every terminal rule by Thompson
// construction over alpha, connecting each rule's fragment from the NFA's
// global entry to a dedicated accept state labelled with the rule's name.
func BuildNFA(terminals []rules.Rule, alpha alphabet.Alphabet) (*NFA, error) {
	nfa := newNFA()

	for i := range terminals {
		rule := &terminals[i]
		accept := nfa.addAccepting(rule.Name)
		nfa.AcceptOrder[rule.Name] = rule.DeclOrder

		entry, exit, err := connectElement(nfa, &alpha, &rule.Element)
		if err != nil {
			return nil, err
		}
		nfa.connectEpsilon(nfa.Entry, entry)
		nfa.connectEpsilon(exit, accept)
	}

	return nfa, nil
}

// connectElement compiles a single Element into an (entry, exit) fragment
// inside nfa, per the element-to-fragment contracts: Literal chains ranged
// transitions one code point at a time, Set/NegatedSet decompose a user
// range into the contiguous run of alphabet intervals it covers, Group
// concatenates children via epsilon edges, Alternatives fans out and back in,
// and the Kleene forms wire the appropriate back/skip epsilon edges.
func connectElement(nfa *NFA, alpha *alphabet.Alphabet, e *rules.Element) (entry, exit int, err error) {
	switch e.Kind {
	case rules.Literal:
		return connectLiteral(nfa, e.Text)

	case rules.Set, rules.NegatedSet:
		intervals, err := resolveSetIntervals(alpha, e)
		if err != nil {
			return 0, 0, err
		}
		in := nfa.addEmpty()
		out := nfa.addEmpty()
		for _, iv := range intervals {
			nfa.connectRange(in, out, iv.Lo, iv.Hi)
		}
		return in, out, nil

	case rules.Group:
		if len(e.Subs) == 0 {
			return 0, 0, diag.New(diag.Semantic, "empty group")
		}
		entry, prevExit, err := connectElement(nfa, alpha, &e.Subs[0])
		if err != nil {
			return 0, 0, err
		}
		for i := 1; i < len(e.Subs); i++ {
			subEntry, subExit, err := connectElement(nfa, alpha, &e.Subs[i])
			if err != nil {
				return 0, 0, err
			}
			nfa.connectEpsilon(prevExit, subEntry)
			prevExit = subExit
		}
		return entry, prevExit, nil

	case rules.Alternatives:
		in := nfa.addEmpty()
		out := nfa.addEmpty()
		for i := range e.Subs {
			subEntry, subExit, err := connectElement(nfa, alpha, &e.Subs[i])
			if err != nil {
				return 0, 0, err
			}
			nfa.connectEpsilon(in, subEntry)
			nfa.connectEpsilon(subExit, out)
		}
		return in, out, nil

	case rules.OneOrMore:
		innerEntry, innerExit, err := connectElement(nfa, alpha, e.Inner)
		if err != nil {
			return 0, 0, err
		}
		nfa.connectEpsilon(innerExit, innerEntry)
		return innerEntry, innerExit, nil

	case rules.ZeroOrMore:
		innerEntry, innerExit, err := connectElement(nfa, alpha, e.Inner)
		if err != nil {
			return 0, 0, err
		}
		nfa.connectEpsilon(innerExit, innerEntry)
		nfa.connectEpsilon(innerEntry, innerExit)
		return innerEntry, innerExit, nil

	case rules.Optional:
		innerEntry, innerExit, err := connectElement(nfa, alpha, e.Inner)
		if err != nil {
			return 0, 0, err
		}
		nfa.connectEpsilon(innerEntry, innerExit)
		return innerEntry, innerExit, nil

	case rules.RuleRef:
		return 0, 0, diag.New(diag.Semantic, "non-terminal reference inside terminal element")

	default:
		return 0, 0, diag.New(diag.Semantic, "unrecognized element kind %v", e.Kind)
	}
}

func connectLiteral(nfa *NFA, text string) (entry, exit int, err error) {
	if text == "" {
		return 0, 0, diag.New(diag.Semantic, "literal must not be empty")
	}
	prev := nfa.addEmpty()
	entry = prev
	for _, c := range text {
		next := nfa.addEmpty()
		nfa.connectRange(prev, next, c, c)
		prev = next
	}
	return entry, prev, nil
}

// resolveSetIntervals expands a Set/NegatedSet's chars and user ranges into
// the de-duplicated list of alphabet intervals it covers. For Set this is
// exactly the union of those intervals; for NegatedSet it is the complement
// within the full alphabet.
func resolveSetIntervals(alpha *alphabet.Alphabet, e *rules.Element) ([]alphabet.Interval, error) {
	included := make(map[alphabet.Interval]bool)

	for _, c := range e.Chars {
		included[alphabet.Interval{Lo: c, Hi: c}] = true
	}
	for _, r := range e.Ranges {
		run, err := intervalRun(alpha, r.Lo, r.Hi)
		if err != nil {
			return nil, err
		}
		for _, iv := range run {
			included[iv] = true
		}
	}

	if e.Kind == rules.Set {
		return sortedIntervals(included), nil
	}

	// NegatedSet: complement within the full alphabet.
	complement := make([]alphabet.Interval, 0, len(alpha.Intervals))
	for _, iv := range alpha.Intervals {
		if !included[iv] {
			complement = append(complement, iv)
		}
	}
	return complement, nil
}

// intervalRun finds the contiguous run of alphabet intervals spanning
// [lo, hi]: both endpoints are guaranteed present as singleton intervals by
// the alphabet builder.
func intervalRun(alpha *alphabet.Alphabet, lo, hi rune) ([]alphabet.Interval, error) {
	startIdx := alpha.IndexOfLo(lo)
	endIdx := alpha.IndexOfHi(hi)
	if startIdx < 0 || endIdx < 0 || startIdx > endIdx {
		return nil, diag.New(diag.Semantic, "range [%c-%c] has no corresponding alphabet run", lo, hi)
	}
	return alpha.Intervals[startIdx : endIdx+1], nil
}

func sortedIntervals(set map[alphabet.Interval]bool) []alphabet.Interval {
	out := make([]alphabet.Interval, 0, len(set))
	for iv := range set {
		out = append(out, iv)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Lo > out[j].Lo; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

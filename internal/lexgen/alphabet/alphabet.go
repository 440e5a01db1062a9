// Package alphabet builds the disjoint code-point alphabet every NFA/DFA
// transition is labelled with, grounded on the break-point/gap algorithm in
// the original lexer's construct_alphabet.
package alphabet

import (
	"sort"

	"github.com/dekarrin/lexgen/internal/lexgen/rules"
)

// DefaultMaxCodepoint is the inclusive upper bound of the alphabet when the
// CLI does not override it with --max-codepoint. It is Unicode's highest
// scalar value (U+10FFFF), the same bound the original lexer used
// (char::MAX).
const DefaultMaxCodepoint = 0x10FFFF

// Interval is one disjoint, closed code-point range in the alphabet.
type Interval struct {
	Lo rune
	Hi rune
}

// Alphabet is the sorted, non-overlapping sequence of intervals that
// exactly partitions [0, MaxCodepoint].
type Alphabet struct {
	Intervals    []Interval
	MaxCodepoint rune
}

// IndexOfLo returns the index of the interval whose Lo equals c, or -1.
func (a *Alphabet) IndexOfLo(c rune) int {
	for i := range a.Intervals {
		if a.Intervals[i].Lo == c {
			return i
		}
	}
	return -1
}

// IndexOfHi returns the index of the interval whose Hi equals c, or -1.
func (a *Alphabet) IndexOfHi(c rune) int {
	for i := range a.Intervals {
		if a.Intervals[i].Hi == c {
			return i
		}
	}
	return -1
}

// IndexOfRange returns the index of the interval exactly equal to [lo, hi].
// Every DFA connection's range is guaranteed to equal exactly one alphabet
// interval, so this never returns -1 for a range taken from a DFA.
func (a *Alphabet) IndexOfRange(lo, hi rune) int {
	for i := range a.Intervals {
		if a.Intervals[i].Lo == lo && a.Intervals[i].Hi == hi {
			return i
		}
	}
	return -1
}

// Build computes the disjoint alphabet covering [0, maxCodepoint] from the
// literal characters and range endpoints used by terminal rules.
//
// Algorithm: collect every break point (literal char, or range endpoint)
// used by any terminal rule, sort it, and walk the sorted list emitting the
// gap interval before each break point (when non-empty) followed by the
// break point's own singleton interval. This is the inclusive gap-emission
// variant: a gap is emitted whenever prev+1 <= p-1, never skipped for a
// single-point gap.
func Build(terminals []rules.Rule, maxCodepoint rune) Alphabet {
	breakSet := make(map[rune]bool)
	for i := range terminals {
		collectBreakPoints(&terminals[i].Element, breakSet)
	}

	points := make([]rune, 0, len(breakSet))
	for p := range breakSet {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i] < points[j] })

	var out []Interval
	prev := rune(-1)
	for _, p := range points {
		if prev+1 <= p-1 {
			out = append(out, Interval{Lo: prev + 1, Hi: p - 1})
		}
		out = append(out, Interval{Lo: p, Hi: p})
		prev = p
	}
	if prev+1 <= maxCodepoint {
		out = append(out, Interval{Lo: prev + 1, Hi: maxCodepoint})
	}

	return Alphabet{Intervals: out, MaxCodepoint: maxCodepoint}
}

func collectBreakPoints(e *rules.Element, into map[rune]bool) {
	switch e.Kind {
	case rules.Literal:
		for _, c := range e.Text {
			into[c] = true
		}
	case rules.Set, rules.NegatedSet:
		for _, c := range e.Chars {
			into[c] = true
		}
		for _, r := range e.Ranges {
			into[r.Lo] = true
			into[r.Hi] = true
		}
	case rules.OneOrMore, rules.ZeroOrMore, rules.Optional:
		collectBreakPoints(e.Inner, into)
	case rules.Group, rules.Alternatives:
		for i := range e.Subs {
			collectBreakPoints(&e.Subs[i], into)
		}
	case rules.RuleRef:
		// non-terminal references are never reached here since only
		// terminal rules are passed to Build.
	}
}

// Package automaton implements the NFA/DFA core: Thompson construction over
// a disjoint alphabet, subset (powerset) construction, and the read-only DFA
// view emitters consume. States are identified purely by their integer index
// into flat slices; nothing here embeds one state inside another, so the
// graphs are trivially copyable and serializable - required by the build
// cache.
package automaton

import "github.com/dekarrin/lexgen/internal/util"

// ConnKind discriminates an NFA connection: a free (epsilon) move, or a move
// consuming exactly one alphabet interval.
type ConnKind int

const (
	Epsilon ConnKind = iota
	Ranged
)

// NFAState carries an optional accept label. Only states created by
// addAccepting ever have one set; the shared entry state never does.
type NFAState struct {
	Accept string
}

// NFAConnection is a tagged-variant edge: either Epsilon(A, B) or
// Ranged([Lo,Hi], A, B), where [Lo,Hi] is always exactly one alphabet
// interval.
type NFAConnection struct {
	Kind ConnKind
	Lo   rune
	Hi   rune
	A    int
	B    int
}

// NFA is the ε-NFA built by Thompson composition over all terminal rules,
// sharing a single entry state.
type NFA struct {
	States      []NFAState
	Entry       int
	Connections []NFAConnection

	// AcceptOrder maps each accept label to the declaration index of the
	// rule it came from, used only by the opt-in ordered tie-break DFA
	// build (see WithOrderedTieBreak).
	AcceptOrder map[string]int
}

func newNFA() *NFA {
	return &NFA{
		States:      []NFAState{{}},
		Entry:       0,
		AcceptOrder: make(map[string]int),
	}
}

func (n *NFA) addEmpty() int {
	n.States = append(n.States, NFAState{})
	return len(n.States) - 1
}

func (n *NFA) addAccepting(label string) int {
	n.States = append(n.States, NFAState{Accept: label})
	return len(n.States) - 1
}

func (n *NFA) connectEpsilon(a, b int) {
	n.Connections = append(n.Connections, NFAConnection{Kind: Epsilon, A: a, B: b})
}

func (n *NFA) connectRange(a, b int, lo, hi rune) {
	n.Connections = append(n.Connections, NFAConnection{Kind: Ranged, Lo: lo, Hi: hi, A: a, B: b})
}

// epsilonClosure extends set in place to include every state reachable via
// zero or more Epsilon connections, using an explicit work list rather than
// recursion so pathological inputs cannot exhaust the call stack.
func epsilonClosure(n *NFA, set util.KeySet[int]) {
	var worklist []int
	for s := range set {
		worklist = append(worklist, s)
	}
	for len(worklist) > 0 {
		a := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, conn := range n.Connections {
			if conn.Kind == Epsilon && conn.A == a && !set.Has(conn.B) {
				set.Add(conn.B)
				worklist = append(worklist, conn.B)
			}
		}
	}
}

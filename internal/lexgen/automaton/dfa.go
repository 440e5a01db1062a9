package automaton

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/lexgen/internal/diag"
	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/util"
)

// TrapLabel is the reserved accept label carried by the DFA's distinguished
// trap state.
const TrapLabel = "_TRAP"

// DFAConnection is a (range, start, end) transition triple; Lo/Hi is always
// exactly one alphabet interval.
type DFAConnection struct {
	Lo   rune
	Hi   rune
	From int
	To   int
}

// DFA is the deterministic automaton produced by subset construction. State
// 0 is always the start state. Accept[i] is the rule name that state i
// accepts, or "" if it is non-accepting; exactly one state carries
// TrapLabel.
type DFA struct {
	Accept      []string
	Connections []DFAConnection
}

// States returns the accept label of every state in index order, matching
// the DFA API contract consumed by emitters.
func (d *DFA) States() []string {
	return d.Accept
}

// Connections returns every outgoing transition from state s, one per
// alphabet interval.
func (d *DFA) Connections(s int) []DFAConnection {
	var out []DFAConnection
	for _, c := range d.Connections {
		if c.From == s {
			out = append(out, c)
		}
	}
	return out
}

// TrapState returns the index of the distinguished trap state.
func (d *DFA) TrapState() int {
	for i, label := range d.Accept {
		if label == TrapLabel {
			return i
		}
	}
	return -1
}

type buildOptions struct {
	orderedTieBreak bool
}

// Option configures BuildDFA.
type Option func(*buildOptions)

// WithOrderedTieBreak is a documented, opt-in extension: when two or more
// rules' accepts land in the same DFA subset, instead of rejecting the
// grammar as ambiguous, the builder keeps whichever rule was declared first
// in the rule file. Without this option (the default), BuildDFA rejects any
// such ambiguity - that remains the core behavior.
func WithOrderedTieBreak() Option {
	return func(o *buildOptions) { o.orderedTieBreak = true }
}

// BuildDFA performs subset (powerset) construction over nfa using an
// explicit work list of pending subsets rather than recursion, so the
// builder's stack depth does not grow with the number of reachable states.
func BuildDFA(nfa *NFA, alpha alphabet.Alphabet, opts ...Option) (*DFA, error) {
	var options buildOptions
	for _, o := range opts {
		o(&options)
	}

	var subsets [][]int
	seen := make(map[string]int)
	var queue []int

	register := func(members util.KeySet[int]) int {
		sorted := members.Elements()
		sort.Ints(sorted)
		key := subsetKey(sorted)
		if id, ok := seen[key]; ok {
			return id
		}
		id := len(subsets)
		subsets = append(subsets, sorted)
		seen[key] = id
		queue = append(queue, id)
		return id
	}

	start := util.NewKeySet(map[int]bool{nfa.Entry: true})
	epsilonClosure(nfa, start)
	register(start) // guaranteed to be id 0

	var conns []DFAConnection

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		members := make(util.KeySet[int], len(subsets[id]))
		for _, m := range subsets[id] {
			members.Add(m)
		}

		for _, r := range alpha.Intervals {
			target := make(util.KeySet[int])
			for _, conn := range nfa.Connections {
				if conn.Kind == Ranged && members.Has(conn.A) && conn.Lo == r.Lo && conn.Hi == r.Hi {
					target.Add(conn.B)
				}
			}
			epsilonClosure(nfa, target)
			toID := register(target)
			conns = append(conns, DFAConnection{Lo: r.Lo, Hi: r.Hi, From: id, To: toID})
		}
	}

	// guarantee a trap state exists even on the degenerate chance no
	// transition ever produced the empty subset.
	if _, ok := seen[""]; !ok {
		seen[""] = len(subsets)
		subsets = append(subsets, nil)
	}

	accept := make([]string, len(subsets))
	for id, members := range subsets {
		if len(members) == 0 {
			accept[id] = TrapLabel
			continue
		}

		labels := make(map[string]bool)
		for _, m := range members {
			if nfa.States[m].Accept != "" {
				labels[nfa.States[m].Accept] = true
			}
		}

		switch len(labels) {
		case 0:
			// non-accepting, non-empty subset.
		case 1:
			for l := range labels {
				accept[id] = l
			}
		default:
			if options.orderedTieBreak {
				best := ""
				bestOrder := math.MaxInt
				for l := range labels {
					if order := nfa.AcceptOrder[l]; order < bestOrder {
						bestOrder = order
						best = l
					}
				}
				accept[id] = best
			} else {
				names := make([]string, 0, len(labels))
				for l := range labels {
					names = append(names, l)
				}
				sort.Strings(names)
				return nil, diag.New(diag.DFA,
					"accepting state must accept exactly one rule (ambiguous between %s)",
					util.MakeTextList(names))
			}
		}
	}

	return &DFA{Accept: accept, Connections: conns}, nil
}

func subsetKey(sorted []int) string {
	var sb strings.Builder
	for i, m := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(m))
	}
	return sb.String()
}

// String renders the DFA in a compact, deterministic form for debugging and
// golden-file comparisons in tests.
func (d *DFA) String() string {
	var sb strings.Builder
	for i, acc := range d.Accept {
		label := acc
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(&sb, "state %d [%s]:\n", i, label)
		for _, c := range d.Connections(i) {
			fmt.Fprintf(&sb, "  [%d,%d] -> %d\n", c.Lo, c.Hi, c.To)
		}
	}
	return sb.String()
}

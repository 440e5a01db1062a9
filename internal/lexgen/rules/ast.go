// Package rules parses the surface rule-file grammar into the Element/Rule
// tree consumed by the alphabet builder and NFA builder.
package rules

// ElementKind discriminates the tagged-variant Element sum. There is no
// object hierarchy here: every traversal switches on Kind and reads the
// fields that variant defines, exhaustively.
type ElementKind int

const (
	Literal ElementKind = iota
	Set
	NegatedSet
	Group
	Alternatives
	OneOrMore
	ZeroOrMore
	Optional
	RuleRef
)

func (k ElementKind) String() string {
	switch k {
	case Literal:
		return "Literal"
	case Set:
		return "Set"
	case NegatedSet:
		return "NegatedSet"
	case Group:
		return "Group"
	case Alternatives:
		return "Alternatives"
	case OneOrMore:
		return "OneOrMore"
	case ZeroOrMore:
		return "ZeroOrMore"
	case Optional:
		return "Optional"
	case RuleRef:
		return "RuleRef"
	default:
		return "Unknown"
	}
}

// CharRange is an inclusive, user-authored code-point range as it appeared
// in a set or negated set, prior to alphabet decomposition.
type CharRange struct {
	Lo rune
	Hi rune
}

// Element is the regular-expression AST node. Exactly one of the payload
// groups below is meaningful, selected by Kind.
type Element struct {
	Kind ElementKind

	// Literal
	Text string

	// Set / NegatedSet
	Chars  []rune
	Ranges []CharRange

	// Group / Alternatives
	Subs []Element

	// OneOrMore / ZeroOrMore / Optional
	Inner *Element

	// RuleRef
	RefVar  string
	RefName string
}

// Rule is a single named production from the rule file. Only rules with
// IsTerminal set to true are fed to the NFA builder; non-terminal rules are
// pass-through metadata the lexer core does not compile.
type Rule struct {
	Name             string
	IsTerminal       bool
	Export           bool
	Element          Element
	ConstructorName  string
	ConstructorVars  []string

	// DeclOrder is the rule's 0-indexed position in the rule file, carried
	// so an ordered-tie-break DFA build (see automaton.WithOrderedTieBreak)
	// has something deterministic to prefer.
	DeclOrder int
}

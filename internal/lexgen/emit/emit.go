// Package emit walks the stable DFA API to produce target-language lexer
// source. Each emitter is a thin table walker: it owns no automaton logic of
// its own, only the syntactic shape of the language it targets.
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dekarrin/lexgen/internal/diag"
	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/lexgen/automaton"
)

// Language is a supported emitter target.
type Language string

const (
	CPP  Language = "cpp"
	Rust Language = "rust"
	Java Language = "java"
)

// ParseLanguage validates a -l/--lang flag value.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case CPP, Rust, Java:
		return Language(s), nil
	default:
		return "", diag.New(diag.Config, "unsupported target language %q (want cpp, rust, or java)", s)
	}
}

// view bundles the data every emitter needs, pre-computed once so templates
// stay declarative.
type view struct {
	DFA      *automaton.DFA
	Alphabet alphabet.Alphabet
	Tokens   []string // sorted user rule names, excluding "" and _TRAP
	Trap     int
}

func newView(dfa *automaton.DFA, alpha alphabet.Alphabet) view {
	seen := make(map[string]bool)
	for _, label := range dfa.Accept {
		if label != "" && label != automaton.TrapLabel {
			seen[label] = true
		}
	}
	tokens := make([]string, 0, len(seen))
	for t := range seen {
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)

	return view{DFA: dfa, Alphabet: alpha, Tokens: tokens, Trap: dfa.TrapState()}
}

// Generate writes the lexer source for lang into outDir, creating it if
// necessary.
func Generate(lang Language, dfa *automaton.DFA, alpha alphabet.Alphabet, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return diag.Wrap(diag.IO, fmt.Errorf("creating output directory %q: %w", outDir, err))
	}

	v := newView(dfa, alpha)

	switch lang {
	case CPP:
		return writeCPP(v, outDir)
	case Rust:
		return writeRust(v, outDir)
	case Java:
		return writeJava(v, outDir)
	default:
		return diag.New(diag.Config, "unsupported target language %q", lang)
	}
}

func writeFile(dir, name, contents string) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return diag.Wrap(diag.IO, fmt.Errorf("writing %q: %w", path, err))
	}
	return nil
}

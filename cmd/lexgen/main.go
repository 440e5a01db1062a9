/*
Lexgen compiles a rules file describing a lexical grammar into DFA-driven
lexer source for a target language.

It reads a rules file describing tokens as regular expressions, builds the
minimal alphabet those expressions need, compiles them into a shared NFA by
Thompson construction, determinizes that NFA into a DFA by subset
construction, and emits lexer source for the requested target language.

Usage:

	lexgen [flags] <rules-file>

The flags are:

	-l, --lang cpp|rust|java
		Target language to emit. Required unless supplied by --config.

	-o, --output DIR
		Directory to write generated source into. Defaults to the current
		directory, created if it does not exist.

	-c, --config FILE
		TOML file supplying defaults for --lang, --output, and
		--max-codepoint. Flags given on the command line override it.

	--max-codepoint N
		Upper bound (inclusive) of the alphabet. Defaults to 0x10FFFF.

	--cache-dir DIR
		Directory to store and read compiled DFA artifacts from, keyed on
		the rules file's contents and resolved settings. When set and a
		matching entry exists, the rules->DFA pipeline is skipped entirely.

	-v, --version
		Print the current version and exit.
*/
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/lexgen/internal/cache"
	"github.com/dekarrin/lexgen/internal/config"
	"github.com/dekarrin/lexgen/internal/diag"
	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/lexgen/automaton"
	"github.com/dekarrin/lexgen/internal/lexgen/emit"
	"github.com/dekarrin/lexgen/internal/lexgen/rules"
	"github.com/dekarrin/lexgen/internal/version"

	"github.com/dekarrin/rosed"
)

const (
	// ExitSuccess indicates a successful run.
	ExitSuccess = iota

	// ExitIOError indicates a problem reading the rules file, config file,
	// cache entry, or writing generated output.
	ExitIOError

	// ExitParseError indicates the rules file violated the surface grammar.
	ExitParseError

	// ExitSemanticError indicates a structurally valid but semantically
	// invalid rule set (duplicate names, non-terminal references inside a
	// terminal, empty groups).
	ExitSemanticError

	// ExitDFAError indicates an ambiguous accepting state was discovered
	// during subset construction.
	ExitDFAError

	// ExitConfigError indicates a bad flag, config file, or unsupported
	// target language.
	ExitConfigError
)

const terminalWidth = 80

var (
	returnCode   int     = ExitSuccess
	flagVersion  *bool   = pflag.BoolP("version", "v", false, "Print the current version and exit")
	flagLang     *string = pflag.StringP("lang", "l", "", "Target language to emit: cpp, rust, or java")
	flagOutput   *string = pflag.StringP("output", "o", "", "Directory to write generated source into")
	flagConfig   *string = pflag.StringP("config", "c", "", "TOML file supplying flag defaults")
	flagMaxCP    *int64  = pflag.Int64("max-codepoint", 0, "Upper bound (inclusive) of the alphabet")
	flagCacheDir *string = pflag.String("cache-dir", "", "Directory to store and read compiled DFA artifacts from")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if err := run(); err != nil {
		reportAndSetCode(err)
	}
}

func run() error {
	if pflag.NArg() < 1 {
		return diag.New(diag.Config, "missing required rules file argument")
	}
	rulesPath := pflag.Arg(0)

	lang, outputDir, maxCP, cacheDir := *flagLang, *flagOutput, *flagMaxCP, *flagCacheDir
	if *flagConfig != "" {
		cfg, err := config.Load(*flagConfig)
		if err != nil {
			return err
		}
		lang, outputDir, maxCP, cacheDir = cfg.ApplyDefaults(lang, outputDir, maxCP, cacheDir)
	}
	if outputDir == "" {
		outputDir = "."
	}
	if maxCP == 0 {
		maxCP = alphabet.DefaultMaxCodepoint
	}
	if lang == "" {
		return diag.New(diag.Config, "target language required: pass -l/--lang or set it in --config")
	}

	target, err := emit.ParseLanguage(lang)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(rulesPath)
	if err != nil {
		return diag.Wrap(diag.IO, fmt.Errorf("reading rules file %q: %w", rulesPath, err))
	}

	var store *cache.Store
	var cacheKey string
	if cacheDir != "" {
		store, err = cache.New(cacheDir)
		if err != nil {
			return err
		}
		cacheKey = cache.Key(src, string(target), rune(maxCP))

		if dfa, alpha, hit, err := store.Load(cacheKey); err != nil {
			return err
		} else if hit {
			fmt.Fprintf(os.Stderr, "lexgen: cache hit for %s, skipping compile\n", rulesPath)
			return emit.Generate(target, dfa, alpha, outputDir)
		}
	}

	dfa, alpha, err := compile(string(src), maxCP)
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.Save(cacheKey, dfa, alpha); err != nil {
			return err
		}
	}

	return emit.Generate(target, dfa, alpha, outputDir)
}

// compile runs the rules->DFA pipeline: parse, build the alphabet, Thompson
// construction, subset construction. It is the only place that knows about
// every stage at once; each stage otherwise only knows the one before it.
func compile(src string, maxCP int64) (*automaton.DFA, alphabet.Alphabet, error) {
	allRules, err := rules.Parse(src)
	if err != nil {
		return nil, alphabet.Alphabet{}, err
	}

	var terminals []rules.Rule
	for _, r := range allRules {
		if r.IsTerminal {
			terminals = append(terminals, r)
		}
	}
	if len(terminals) == 0 {
		return nil, alphabet.Alphabet{}, diag.New(diag.Semantic, "rule file defines no terminal (token) rules")
	}

	alpha := alphabet.Build(terminals, rune(maxCP))

	nfa, err := automaton.BuildNFA(terminals, alpha)
	if err != nil {
		return nil, alphabet.Alphabet{}, err
	}

	dfa, err := automaton.BuildDFA(nfa, alpha)
	if err != nil {
		return nil, alphabet.Alphabet{}, err
	}

	return dfa, alpha, nil
}

func reportAndSetCode(err error) {
	msg := err.Error()
	wrapped := rosed.Edit(msg).Wrap(terminalWidth).String()

	code := ExitIOError
	var derr *diag.Error
	if errors.As(err, &derr) {
		switch derr.Kind {
		case diag.IO:
			code = ExitIOError
		case diag.Parse:
			code = ExitParseError
		case diag.Semantic:
			code = ExitSemanticError
		case diag.DFA:
			code = ExitDFAError
		case diag.Config:
			code = ExitConfigError
		}
	}

	fmt.Fprintf(os.Stderr, "lexgen: %s\n", wrapped)
	returnCode = code
}

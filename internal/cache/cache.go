// Package cache implements the build cache: a content-addressed store that
// lets a rules file's compiled automaton be skipped entirely on an unchanged
// rebuild, keyed on the rules file's bytes and the resolved target settings.
// This is a build-time shortcut, not the incremental relexing spec.md §1
// marks as a Non-goal: a cache hit replaces the whole rules->DFA pipeline
// with one file read, it never lets a running lexer resume mid-token.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"

	"github.com/dekarrin/lexgen/internal/diag"
	"github.com/dekarrin/lexgen/internal/lexgen/alphabet"
	"github.com/dekarrin/lexgen/internal/lexgen/automaton"
)

// Key hashes a rules file's contents together with the settings that affect
// its compiled output, so a change to either invalidates the cache entry.
func Key(rulesSrc []byte, lang string, maxCodepoint rune) string {
	h := sha256.New()
	h.Write(rulesSrc)
	fmt.Fprintf(h, "|%s|%d", lang, maxCodepoint)
	return hex.EncodeToString(h.Sum(nil))
}

// Artifact is the cached compiled output for one rules file, encoded with
// rezi exactly as internal/tqw encodes its own on-disk structures.
type Artifact struct {
	Accept       []string
	Conns        []automaton.DFAConnection
	Intervals    []alphabet.Interval
	MaxCodepoint rune
}

// Store is a directory of rezi-encoded artifacts, one file per cache key.
type Store struct {
	Dir string
}

// New returns a Store rooted at dir, creating dir if it does not exist.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, diag.Wrap(diag.IO, fmt.Errorf("creating cache dir %q: %w", dir, err))
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, key+".rezi")
}

// Load returns the cached DFA and alphabet for key, and false if there is no
// entry (a cache miss is not an error: the caller falls back to compiling).
func (s *Store) Load(key string) (*automaton.DFA, alphabet.Alphabet, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, alphabet.Alphabet{}, false, nil
		}
		return nil, alphabet.Alphabet{}, false, diag.Wrap(diag.IO, err)
	}

	var art Artifact
	n, err := rezi.DecBinary(data, &art)
	if err != nil {
		return nil, alphabet.Alphabet{}, false, diag.Wrap(diag.IO, fmt.Errorf("decoding cache entry: %w", err))
	}
	if n != len(data) {
		return nil, alphabet.Alphabet{}, false, diag.Wrap(diag.IO, fmt.Errorf("cache entry %s: decoded %d/%d bytes", key, n, len(data)))
	}

	dfa := &automaton.DFA{Accept: art.Accept, Connections: art.Conns}
	alpha := alphabet.Alphabet{Intervals: art.Intervals, MaxCodepoint: art.MaxCodepoint}
	return dfa, alpha, true, nil
}

// Save records dfa and alpha under key, overwriting any prior entry.
func (s *Store) Save(key string, dfa *automaton.DFA, alpha alphabet.Alphabet) error {
	art := Artifact{
		Accept:       dfa.Accept,
		Conns:        dfa.Connections,
		Intervals:    alpha.Intervals,
		MaxCodepoint: alpha.MaxCodepoint,
	}

	data := rezi.EncBinary(art)

	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return diag.Wrap(diag.IO, fmt.Errorf("writing cache entry: %w", err))
	}
	return nil
}

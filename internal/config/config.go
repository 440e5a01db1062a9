// Package config decodes the optional TOML defaults file accepted by
// cmd/lexgen via -c/--config, in the same style internal/tqw decodes its own
// TOML-formatted resource files in the teacher repo.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/dekarrin/lexgen/internal/diag"
)

// Config mirrors the CLI's own flags one-for-one, so a loaded file's values
// can be used as defaults that explicit flags then override.
type Config struct {
	Lang         string `toml:"lang"`
	OutputDir    string `toml:"output_dir"`
	MaxCodepoint int64  `toml:"max_codepoint"`
	CacheDir     string `toml:"cache_dir"`
}

// Load decodes a TOML config file from path.
func Load(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, diag.Wrap(diag.Config, fmt.Errorf("loading config %q: %w", path, err))
	}
	return c, nil
}

// ApplyDefaults returns its arguments with each zero-valued one replaced by
// the matching field of c, leaving values the caller already set (e.g. from
// explicit flags) untouched.
func (c Config) ApplyDefaults(lang, outputDir string, maxCodepoint int64, cacheDir string) (string, string, int64, string) {
	if lang == "" {
		lang = c.Lang
	}
	if outputDir == "" {
		outputDir = c.OutputDir
	}
	if maxCodepoint == 0 {
		maxCodepoint = c.MaxCodepoint
	}
	if cacheDir == "" {
		cacheDir = c.CacheDir
	}
	return lang, outputDir, maxCodepoint, cacheDir
}

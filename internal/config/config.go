// Package config defines fread's caller-tunable Options and loads them
// from a TOML file. Grounded on ChristianF88-cidrx's src/config/config.go
// LoadConfig, simplified: cidrx's config has nested tables and decodes
// through an intermediate map[string]any, but fread.Options is flat, so a
// single toml.DecodeFile onto the struct is enough.
package config

import (
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Options is fread's full set of caller-tunable knobs (spec.md §6.1).
// Every field's zero value means "auto-detect" or "off", so a caller can
// build one with a single field set and leave everything else at default.
type Options struct {
	// Input is either a filesystem path, or a literal byte string
	// containing at least one line terminator (treated as in-memory
	// input rather than a path to open).
	Input string `toml:"input"`

	// Sep, Quote, and Dec override dialect auto-detection when non-empty.
	// Each must be exactly one byte, except Quote which also accepts the
	// literal "none" to disable quoting entirely. Leave all three empty
	// to auto-detect the whole dialect.
	Sep   string `toml:"sep"`
	Quote string `toml:"quote"`
	Dec   string `toml:"dec"`

	// NAStrings are additional field spellings that count as missing,
	// on top of the empty field which always does.
	NAStrings []string `toml:"naStrings"`

	// Header is "auto" (default), "true", or "false".
	Header string `toml:"header"`

	// SkipNRow and SkipString are mutually exclusive ways to position the
	// reader past a junk preamble before dialect detection runs.
	SkipNRow   int    `toml:"skipNrow"`
	SkipString string `toml:"skipString"`

	StripWhite     bool `toml:"stripWhite"`
	SkipEmptyLines bool `toml:"skipEmptyLines"`
	Fill           bool `toml:"fill"`

	// BoolZeroOne additionally accepts "0"/"1" as logical values; off by
	// default since a bare 0/1 column is ordinarily inferred as INT32.
	BoolZeroOne bool `toml:"boolZeroOne"`

	// ShowProgress and Verbose don't change parsing itself; they tell a
	// caller (such as cmd/freadbench) which collab.ProgressSink/
	// DiagnosticSink to wire in instead of the no-op defaults.
	ShowProgress bool `toml:"showProgress"`
	Verbose      bool `toml:"verbose"`

	// NRowLimit caps the number of body rows read; 0 means unlimited.
	NRowLimit int `toml:"nrowLimit"`
	// NThread caps how many worker goroutines parse the body in parallel.
	NThread int `toml:"nthread"`

	// DisableSampling forces the sampler's deterministic two-point pass
	// (first window and final window only) instead of its usual jump
	// count, which scales with file size. Type inference on a very large,
	// non-uniform file is less accurate this way, but the sample taken
	// is reproducible across runs regardless of machine or file size.
	DisableSampling bool `toml:"disableSampling"`
}

// Default returns the zero-configuration Options: auto dialect, auto
// header, one worker per available core, no row limit.
func Default() Options {
	return Options{
		Header:  "auto",
		NThread: runtime.GOMAXPROCS(0),
	}
}

// Load decodes path's TOML contents onto a copy of Default, so any field
// the file omits keeps its default instead of zeroing out.
func Load(path string) (Options, error) {
	opts := Default()
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if opts.SkipNRow > 0 && opts.SkipString != "" {
		return Options{}, fmt.Errorf("config: skipNrow and skipString are mutually exclusive")
	}
	return opts, nil
}

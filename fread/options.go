// Package fread is the public entry point: Read executes one full parse
// of a delimited text file per spec.md's §4 pipeline (dialect detection,
// header resolution, sampling, parallel body read, reread of any columns
// that escalated past their sampled type).
package fread

import "github.com/csvquery/fread/internal/config"

// Options controls one Read call. It is an alias of internal/config.Options,
// where its fields are documented and where LoadOptions decodes it from TOML.
type Options = config.Options

// DefaultOptions returns the zero-configuration Options.
func DefaultOptions() Options { return config.Default() }

// LoadOptions reads a TOML file at path into Options.
func LoadOptions(path string) (Options, error) { return config.Load(path) }

package fread

import (
	"errors"
	"fmt"

	"github.com/csvquery/fread/internal/body"
)

// Sentinel error kinds (spec.md §7); every error Read returns wraps
// exactly one of these or ErrChunkDesync below, so a caller can dispatch
// with errors.Is without parsing message text.
var (
	ErrSetup     = errors.New("fread: setup error")
	ErrDialect   = errors.New("fread: dialect error")
	ErrShape     = errors.New("fread: shape error")
	ErrCancelled = errors.New("fread: cancelled")
)

// ErrChunkDesync is internal/body.ErrChunkDesync re-exported so callers
// never need to import an internal package to match it with errors.Is.
var ErrChunkDesync = body.ErrChunkDesync

func setupErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrSetup, args)...)
}

func dialectError(err error) error {
	return fmt.Errorf("%w: %w", ErrDialect, err)
}

func shapeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, prepend(ErrShape, args)...)
}

// classifyBodyError maps an error from internal/body into one of the
// sentinel kinds above, preserving ErrChunkDesync identity (its message
// already carries the byte-offset context spec.md §7 calls for) and
// treating anything else from that package as a row-shape failure.
func classifyBodyError(err error) error {
	if errors.Is(err, body.ErrChunkDesync) {
		return err
	}
	return shapeErrorf("%v", err)
}

func prepend(first error, rest []any) []any {
	out := make([]any, 0, len(rest)+1)
	out = append(out, first)
	out = append(out, rest...)
	return out
}

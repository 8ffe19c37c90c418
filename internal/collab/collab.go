// Package collab defines the narrow interfaces external callers can supply
// to override fread's default behavior — storage allocation, per-column
// type/name overrides, progress reporting, and diagnostics — plus a
// reference default implementation of each, so Read works out of the box
// when the caller supplies none of them.
package collab

import (
	"github.com/csvquery/fread/internal/table"
	"github.com/csvquery/fread/internal/typecode"
)

// Allocator owns Table storage for the duration of a read: the initial
// allocation from the sampler's row-count estimate, any mid-read column
// retyping (a column escalated past its sampled type), the final resize
// once the true row count is known, and the per-chunk buffer merge.
type Allocator interface {
	// AllocateDT allocates a Table with ncol columns of the given types and
	// names, pre-sized to nrowEstimate rows.
	AllocateDT(types []typecode.Type, names []string, nrowEstimate int) (*table.Table, error)
	// ReallocColType widens column col in place to newType, preserving
	// already-read values by reinterpreting them (spec.md §5.4).
	ReallocColType(t *table.Table, col int, newType typecode.Type) error
	// SetFinalNrow resizes every column to the true row count once the body
	// read (or the reread pass) has finished.
	SetFinalNrow(t *table.Table, n int)
	// PushBuffer copies a worker's RowBuffer into t starting at startRow,
	// which is the ordered merge's write point for that chunk.
	PushBuffer(t *table.Table, startRow int, buf *table.RowBuffer) error
	// PushBufferMasked behaves like PushBuffer but only copies columns
	// whose writeMask entry is true (a nil mask means "copy all"), used by
	// the reread controller (spec.md §4.6) to overwrite only the columns
	// that actually went through a second pass, leaving already-correct
	// columns from the first pass untouched.
	PushBufferMasked(t *table.Table, startRow int, buf *table.RowBuffer, writeMask []bool) error
}

// UserOverride lets a caller pin a column's type or name ahead of
// inference, or drop it from the result entirely (spec.md §6). ColumnType,
// ColumnName, and Drop are consulted once per column; Finalize is then
// called exactly once with the fully resolved type vector and names,
// mirroring the single userOverride(type_vector, column_names,
// name_anchor, ncol) callback of spec.md §6.2 that the narrow per-column
// queries above are split out from.
type UserOverride interface {
	// ColumnType returns a forced type for column idx/name, if any.
	ColumnType(name string, idx int) (typecode.Type, bool)
	// ColumnName returns a replacement name for column idx, if any.
	ColumnName(idx int) (string, bool)
	// Drop reports whether column idx should be excluded from the result.
	Drop(idx int) bool
	// Finalize sees the fully resolved per-column types and names (post
	// ColumnType/ColumnName/Drop) and returns false to abort the read with
	// a clean cancel (spec.md §6.2, §7: "userOverride returned false.
	// Clean return, no data, no error") rather than the ctx-driven
	// ErrCancelled path, which always carries a non-nil error.
	Finalize(types []typecode.Type, names []string) bool
}

// ProgressSink receives coarse-grained phase progress during a read.
type ProgressSink interface {
	OnPhase(phase string, fraction float64)
	OnDone()
}

// DiagnosticSink receives the verbose trace a caller can opt into
// (spec.md §6's diagnostic/verbose mode) — dialect detection steps, type
// promotions, reread decisions.
type DiagnosticSink interface {
	Verbose(format string, args ...any)
	Warn(format string, args ...any)
}

// NoopOverride is a UserOverride that never overrides anything.
type NoopOverride struct{}

func (NoopOverride) ColumnType(string, int) (typecode.Type, bool)        { return 0, false }
func (NoopOverride) ColumnName(int) (string, bool)                       { return "", false }
func (NoopOverride) Drop(int) bool                                       { return false }
func (NoopOverride) Finalize(types []typecode.Type, names []string) bool { return true }

// NoopProgress discards all progress events.
type NoopProgress struct{}

func (NoopProgress) OnPhase(string, float64) {}
func (NoopProgress) OnDone()                 {}

package body

import (
	"fmt"

	"github.com/csvquery/fread/internal/collab"
	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/table"
	"github.com/csvquery/fread/internal/typecode"
)

// RereadPlan carries everything a reread pass needs beyond the shared type
// vector and Table, mirroring Plan but without AssignedTypes/WriteMask
// (Reread computes those itself from the vector's exception state).
type RereadPlan struct {
	Data          []byte
	BodyStart     int
	BodyEnd       int
	Dialect       dialect.Dialect
	NAStrings     []string
	MaxLineLength int
	RowCapHint    int
	Threads       int
	NrowLimit     int
	RowOptions    RowOptions
}

// Reread implements spec.md §4.6: if the first body-read pass recorded any
// out-of-sample type exceptions, it reallocates the escalated columns to
// their resolved wider type, then re-parses the whole body, merging only
// those columns' values back into tbl (every other column keeps its
// first-pass values untouched). It reports whether a reread actually ran.
// firstPassRows is the row count body.Read's first pass actually wrote
// (which can be less than tbl.Nrow, the pre-sized allocation estimate);
// the no-op path returns it unchanged rather than guessing from tbl.Nrow.
//
// A fresh type exception observed *during* the reread pass is a logic
// error, not a normal escalation: the resolved types from PrepareReread are
// meant to be final, so Reread treats that case as an abort rather than
// looping indefinitely.
func Reread(firstPassRows int, p RereadPlan, types *typecode.Vector, alloc collab.Allocator, tbl *table.Table, diag collab.DiagnosticSink) (rowsWritten int, performed bool, err error) {
	if !types.AnyException() {
		return firstPassRows, false, nil
	}

	before := types.Snapshot()
	writeMask := make([]bool, len(before))
	for i, t := range before {
		writeMask[i] = t.IsException()
	}

	resolved := types.PrepareReread()

	for i, want := range resolved {
		if !writeMask[i] {
			continue
		}
		if err := alloc.ReallocColType(tbl, i, want); err != nil {
			return 0, true, fmt.Errorf("body: reread realloc column %d to %v: %w", i, want, err)
		}
	}

	diag.Verbose("reread: %d of %d columns escalated, reparsing body", countTrue(writeMask), len(writeMask))

	n, err := Read(Plan{
		Data:          p.Data,
		BodyStart:     p.BodyStart,
		BodyEnd:       p.BodyEnd,
		Dialect:       p.Dialect,
		AssignedTypes: resolved,
		NAStrings:     p.NAStrings,
		MaxLineLength: p.MaxLineLength,
		RowCapHint:    p.RowCapHint,
		Threads:       p.Threads,
		NrowLimit:     p.NrowLimit,
		WriteMask:     writeMask,
		RowOptions:    p.RowOptions,
	}, types, alloc, tbl, diag)
	if err != nil {
		return n, true, err
	}

	// types.AnyException() is not the right check here: PrepareReread marks
	// every *non*-escalated column with the -String "skip but step"
	// sentinel, which is itself negative, so the vector always reports an
	// exception present after a reread. Only a fresh exception on a column
	// this pass actually re-stored (writeMask[i] true) indicates a bug.
	after := types.Snapshot()
	for i, rewritten := range writeMask {
		if rewritten && after[i].IsException() {
			return n, true, fmt.Errorf("body: reread produced a new type exception on column %d; resolved types should have been final", i)
		}
	}

	// Remove PrepareReread's -String skip sentinel from columns that did not
	// need rereading, restoring their original plain type now that the
	// reread pass is done with them.
	for i, rewritten := range writeMask {
		if !rewritten {
			types.ClearSentinel(i, before[i])
		}
	}

	return n, true, nil
}

func countTrue(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

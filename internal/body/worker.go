package body

import (
	"fmt"

	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/scan"
	"github.com/csvquery/fread/internal/table"
	"github.com/csvquery/fread/internal/typecode"
)

// chunkResult is what one worker produces for its chunk before entering the
// serialized merge region.
type chunkResult struct {
	buf        *table.RowBuffer
	start, end int // the worker's actual (nextGoodLine-adjusted) byte range
	err        error
	failRow    int // rows successfully buffered before err, for the merge's line-number context
}

// parseChunk implements spec.md §4.5 steps 1-4 for one chunk. assignedTypes
// is this pass's per-column storage type: the sampled types on the first
// pass, or typecode.Vector.PrepareReread's resolved types on the second.
// types is the shared vector that type exceptions are bumped into.
func parseChunk(data []byte, rng Range, isFirst bool, d dialect.Dialect, assignedTypes []typecode.Type, naStrings []string, types *typecode.Vector, rowCapHint int, opts RowOptions) chunkResult {
	ncol := len(assignedTypes)

	start := rng.Start
	if !isFirst {
		good, ok := scan.NextGoodLine(data, rng.Start, d, ncol)
		if !ok {
			return chunkResult{err: fmt.Errorf("body: chunk starting at byte %d never resynchronizes to a %d-column row", rng.Start, ncol)}
		}
		start = good
	}

	// assignedTypes is always non-exception here (the sampler never emits an
	// exception type, and typecode.Vector.PrepareReread resolves every
	// column to a plain magnitude before a reread pass). Columns that the
	// reread pass does not need to re-store are still parsed normally; the
	// caller discards them at merge time via a writeMask instead.
	storeTypes := assignedTypes
	names := make([]string, ncol)
	buf := table.NewRowBuffer(storeTypes, names, rowCapHint)

	localType := make([]typecode.Type, ncol)
	localExc := make([]bool, ncol)
	for i, t := range assignedTypes {
		localType[i] = t.Magnitude()
	}

	limit := rng.End + d.EOLLen()
	if limit > len(data) {
		limit = len(data)
	}

	pos := start
	for pos < limit {
		if opts.SkipEmptyLines && scan.AtEOL(data, pos, d) {
			next := scan.SkipEOL(data, pos, d)
			if next <= pos {
				break
			}
			pos = next
			continue
		}
		row := buf.Reserve()
		next, err := parseRow(data, pos, d, ncol, storeTypes, localType, localExc, types, naStrings, buf, row, opts)
		if err != nil {
			return chunkResult{err: err, failRow: row}
		}
		if next <= pos {
			break
		}
		pos = next
	}

	return chunkResult{buf: buf, start: start, end: pos}
}

// parseRow scans one row's fields, storing into buf's row-th slot for every
// non-skip column and handling the local type-exception escalation spec.md
// §4.5 step 4 describes.
func parseRow(data []byte, pos int, d dialect.Dialect, ncol int, storeTypes, localType []typecode.Type, localExc []bool, types *typecode.Vector, naStrings []string, buf *table.RowBuffer, row int, opts RowOptions) (int, error) {
	i := pos
	cols := buf.Columns()

	for col := 0; col < ncol; col++ {
		fstart, fend, next, quoted := scan.Field(data, i, d)
		if opts.StripWhite && !quoted {
			fstart, fend = stripWhite(data, fstart, fend)
		}
		field := data[fstart:fend]
		isNA := scan.IsNAString(field, naStrings)

		if storeTypes[col] != typecode.Drop {
			if !isNA && !localExc[col] {
				if !tryStore(&cols[col], row, localType[col], field, fstart, fend, opts.BoolZeroOne) {
					// First exception for this column in this chunk: widen
					// locally until the field is accepted (STRING always
					// is), then publish the exception to the shared vector.
					t := localType[col]
					for t < typecode.String && !scanAccepts(t.Wider(), field, opts.BoolZeroOne) {
						t = t.Wider()
					}
					t = t.Wider()
					types.Bump(col, t)
					localType[col] = t
					localExc[col] = true
					cols[col].NA[row] = true
				}
			} else if !localExc[col] {
				cols[col].NA[row] = true
			} else {
				// Already in local exception mode: keep stepping the field
				// through at the widened type, still discarding the value.
				if !isNA && !scanAccepts(localType[col], field, opts.BoolZeroOne) {
					t := localType[col]
					for t < typecode.String && !scanAccepts(t.Wider(), field, opts.BoolZeroOne) {
						t = t.Wider()
					}
					t = t.Wider()
					types.Bump(col, t)
					localType[col] = t
				}
				cols[col].NA[row] = true
			}
		}

		i = next
		if i >= len(data) {
			if col == ncol-1 {
				return len(data), nil
			}
			if opts.Fill {
				padRemaining(cols, col+1, ncol, row)
				return len(data), nil
			}
			return 0, fmt.Errorf("body: row starting at byte %d ended after %d of %d columns", pos, col+1, ncol)
		}
		if col < ncol-1 {
			if data[i] != d.Sep {
				if opts.Fill && scan.AtEOL(data, i, d) {
					padRemaining(cols, col+1, ncol, row)
					return scan.SkipEOL(data, i, d), nil
				}
				return 0, fmt.Errorf("body: row starting at byte %d has too few columns under the detected dialect", pos)
			}
			i++
		}
	}

	if i < len(data) && !scan.AtEOL(data, i, d) {
		return 0, fmt.Errorf("body: row starting at byte %d has too many columns under the detected dialect", pos)
	}
	return scan.SkipEOL(data, i, d), nil
}

// padRemaining marks columns [from, ncol) as NA for row, used when Fill
// lets a short row stand in for a full one instead of raising a shape error.
func padRemaining(cols []table.Column, from, ncol, row int) {
	for col := from; col < ncol; col++ {
		cols[col].NA[row] = true
	}
}

// stripWhite trims ASCII spaces and tabs off both ends of an unquoted
// field's bounds (spec.md §6.1's StripWhite option); quoted fields are left
// exactly as the quote rule produced them.
func stripWhite(data []byte, start, end int) (int, int) {
	for start < end && isBlank(data[start]) {
		start++
	}
	for end > start && isBlank(data[end-1]) {
		end--
	}
	return start, end
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// tryStore attempts to scan field at type t and, on success, writes it into
// col[row]; it never promotes t itself (the caller owns promotion).
func tryStore(col *table.Column, row int, t typecode.Type, field []byte, fstart, fend int, boolZeroOne bool) bool {
	switch t {
	case typecode.Bool8:
		v, ok := scan.Bool8(field, boolZeroOne)
		if !ok {
			return false
		}
		col.Bool8[row] = v
	case typecode.Int32:
		v, ok := scan.Int32(field)
		if !ok {
			return false
		}
		col.Int32[row] = v
	case typecode.Int64:
		v, ok := scan.Int64(field)
		if !ok {
			return false
		}
		col.Int64[row] = v
	case typecode.Float64:
		v, ok := scan.Float64(field)
		if !ok {
			return false
		}
		col.Float64[row] = v
	case typecode.String:
		col.Strings[row] = table.StringSlice{Offset: fstart, Length: fend - fstart}
	default:
		return true // DROP: nothing to store, always "succeeds"
	}
	return true
}

func scanAccepts(t typecode.Type, field []byte, boolZeroOne bool) bool {
	switch t {
	case typecode.Bool8:
		_, ok := scan.Bool8(field, boolZeroOne)
		return ok
	case typecode.Int32:
		_, ok := scan.Int32(field)
		return ok
	case typecode.Int64:
		_, ok := scan.Int64(field)
		return ok
	case typecode.Float64:
		_, ok := scan.Float64(field)
		return ok
	default:
		return true
	}
}

package scan

import "github.com/csvquery/fread/internal/dialect"

// ConsecutiveGoodRows is the run length NextGoodLine requires before it
// trusts a candidate line start (spec.md §4.4, §4.5: "five consecutive
// rows with the expected field count").
const ConsecutiveGoodRows = 5

// NextGoodLine advances from pos to the first line start whose next
// ConsecutiveGoodRows rows all have exactly ncol fields under d. Both the
// sampler's jump points and the body reader's chunk boundaries use this to
// resynchronize to a real row start after landing mid-row.
func NextGoodLine(data []byte, pos int, d dialect.Dialect, ncol int) (int, bool) {
	candidate := skipToLineStart(data, pos, d)
	if candidate >= len(data) {
		// pos lies in the last line: no row starts after it, so the resync
		// point is the end of input.
		return len(data), true
	}

	for candidate < len(data) {
		if countConsecutiveGoodRows(data, candidate, d, ncol) >= ConsecutiveGoodRows {
			return candidate, true
		}
		next := skipOneLine(data, candidate, d)
		if next <= candidate {
			return 0, false
		}
		candidate = next
	}
	return 0, false
}

func skipToLineStart(data []byte, pos int, d dialect.Dialect) int {
	i := pos
	for i < len(data) && !AtEOL(data, i, d) {
		i++
	}
	if i >= len(data) {
		return i
	}
	return SkipEOL(data, i, d)
}

func countConsecutiveGoodRows(data []byte, rowStart int, d dialect.Dialect, ncol int) int {
	pos := rowStart
	count := 0
	for count < ConsecutiveGoodRows {
		if pos >= len(data) {
			// Ran out of input without hitting a bad row: there's nothing
			// left to misparse, so the run is as confirmed as it can be.
			// Otherwise any chunk or sample whose tail has fewer than
			// ConsecutiveGoodRows rows left would wrongly fail to resync.
			return ConsecutiveGoodRows
		}
		fields, next, ok := RowFieldCount(data, pos, d)
		if !ok || fields != ncol {
			break
		}
		count++
		pos = next
	}
	return count
}

func skipOneLine(data []byte, pos int, d dialect.Dialect) int {
	_, next, ok := RowFieldCount(data, pos, d)
	if !ok {
		return skipToLineStart(data, pos+1, d)
	}
	return next
}

// RowFieldCount tokenizes one row starting at pos, returning the field
// count and the offset of the next row.
func RowFieldCount(data []byte, pos int, d dialect.Dialect) (fields int, next int, ok bool) {
	i := pos
	if i >= len(data) {
		return 0, i, false
	}
	fields = 1
	for {
		_, _, nextField, _ := Field(data, i, d)
		i = nextField
		if i >= len(data) {
			return fields, i, true
		}
		if AtEOL(data, i, d) {
			return fields, SkipEOL(data, i, d), true
		}
		if data[i] != d.Sep {
			return 0, 0, false
		}
		i++
		fields++
		if fields > 100000 {
			return 0, 0, false
		}
	}
}

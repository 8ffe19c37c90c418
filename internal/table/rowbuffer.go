package table

import "github.com/csvquery/fread/internal/typecode"

// RowBuffer is a worker-local scratch table: each body-read goroutine
// parses its chunk into one of these, growing it geometrically (x1.5, the
// teacher's Scanner used the same growth factor for its row-estimate
// buffers) rather than row-by-row, then the chunk is copied into the
// shared Table's pre-sized columns under the ordered merge.
type RowBuffer struct {
	cols []Column
	n    int
	cap  int
}

// NewRowBuffer allocates a buffer for the given column types with an
// initial capacity hint (typically the sampler's per-chunk row estimate).
func NewRowBuffer(types []typecode.Type, names []string, capHint int) *RowBuffer {
	if capHint < 8 {
		capHint = 8
	}
	cols := make([]Column, len(types))
	for i, t := range types {
		nm := ""
		if i < len(names) {
			nm = names[i]
		}
		cols[i] = NewColumn(nm, t, capHint)
	}
	return &RowBuffer{cols: cols, cap: capHint}
}

// Len returns the number of rows currently stored.
func (b *RowBuffer) Len() int { return b.n }

// Columns exposes the buffer's columns for in-place writes by the scanner.
func (b *RowBuffer) Columns() []Column { return b.cols }

// Reserve ensures room for one more row, growing by x1.5 if needed, and
// returns the row index to write into.
func (b *RowBuffer) Reserve() int {
	if b.n >= b.cap {
		newCap := b.cap + b.cap/2
		if newCap <= b.cap {
			newCap = b.cap + 1
		}
		for i := range b.cols {
			b.cols[i] = growColumn(b.cols[i], newCap)
		}
		b.cap = newCap
	}
	row := b.n
	b.n++
	return row
}

// Reset clears the buffer for reuse without releasing its backing arrays,
// so a worker can reuse one RowBuffer across successive chunks.
func (b *RowBuffer) Reset() {
	b.n = 0
	for i := range b.cols {
		na := b.cols[i].NA
		for j := range na {
			na[j] = false
		}
	}
}

// Slice returns a RowBuffer view over the first n rows, sharing the
// underlying column arrays (no copy). Used when NrowLimit cuts a chunk's
// contribution short mid-buffer.
func (b *RowBuffer) Slice(n int) *RowBuffer {
	if n >= b.n {
		return b
	}
	cols := make([]Column, len(b.cols))
	for i, c := range b.cols {
		sliced := c
		sliced.NA = c.NA[:n]
		if c.Bool8 != nil {
			sliced.Bool8 = c.Bool8[:n]
		}
		if c.Int32 != nil {
			sliced.Int32 = c.Int32[:n]
		}
		if c.Int64 != nil {
			sliced.Int64 = c.Int64[:n]
		}
		if c.Float64 != nil {
			sliced.Float64 = c.Float64[:n]
		}
		if c.Strings != nil {
			sliced.Strings = c.Strings[:n]
		}
		cols[i] = sliced
	}
	return &RowBuffer{cols: cols, n: n, cap: n}
}

func growColumn(c Column, n int) Column {
	grown := NewColumn(c.Name, c.Type, n)
	copy(grown.NA, c.NA)
	copy(grown.Bool8, c.Bool8)
	copy(grown.Int32, c.Int32)
	copy(grown.Int64, c.Int64)
	copy(grown.Float64, c.Float64)
	copy(grown.Strings, c.Strings)
	return grown
}

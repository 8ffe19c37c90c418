// Package table holds the columnar result of a read: one typed slice per
// column, indexed by row. Storage is allocated once up front from the
// sampler's row-count estimate and resized (never per-row-appended) by the
// body reader, mirroring how internal/indexer/scanner.go favored one
// pre-sized allocation over incremental append for its hot path.
package table

import "github.com/csvquery/fread/internal/typecode"

// Column is one column's storage. Exactly one of the typed slices is valid,
// selected by Type; the others are nil. A bit vector tracks which rows are
// NA independent of the typed sentinel, so a column legitimately containing
// the sentinel value is never misread as missing.
type Column struct {
	Name string
	Type typecode.Type

	Bool8   []byte
	Int32   []int32
	Int64   []int64
	Float64 []float64
	Strings []StringSlice

	NA []bool
}

// StringSlice is an (offset, length) view into the mapped input, avoiding a
// copy for every string cell; Table.Raw must stay alive for as long as any
// StringSlice from it is read.
type StringSlice struct {
	Offset int
	Length int
}

// Bytes resolves s against the backing input raw.
func (s StringSlice) Bytes(raw []byte) []byte {
	if s.Length == 0 {
		return nil
	}
	return raw[s.Offset : s.Offset+s.Length]
}

// Table is the fully materialized result of a read.
type Table struct {
	Columns []Column
	Nrow    int

	// Raw backs every StringSlice in every STRING column; callers that want
	// to outlive the mapped input must copy string cells out first.
	Raw []byte
}

// NewColumn allocates storage for n rows of the given type.
func NewColumn(name string, t typecode.Type, n int) Column {
	c := Column{Name: name, Type: t, NA: make([]bool, n)}
	switch t {
	case typecode.Bool8:
		c.Bool8 = make([]byte, n)
	case typecode.Int32:
		c.Int32 = make([]int32, n)
	case typecode.Int64:
		c.Int64 = make([]int64, n)
	case typecode.Float64:
		c.Float64 = make([]float64, n)
	case typecode.String:
		c.Strings = make([]StringSlice, n)
	}
	return c
}

// Resize grows or shrinks every column's storage to n rows, preserving
// existing contents up to min(old, n). Used once the body reader has
// established the true row count (spec.md §5.3's "final nrow" step).
func (t *Table) Resize(n int) {
	for i := range t.Columns {
		c := &t.Columns[i]
		c.NA = resizeBool(c.NA, n)
		switch c.Type {
		case typecode.Bool8:
			c.Bool8 = resizeByte(c.Bool8, n)
		case typecode.Int32:
			c.Int32 = resizeInt32(c.Int32, n)
		case typecode.Int64:
			c.Int64 = resizeInt64(c.Int64, n)
		case typecode.Float64:
			c.Float64 = resizeFloat64(c.Float64, n)
		case typecode.String:
			c.Strings = resizeSlice(c.Strings, n)
		}
	}
	t.Nrow = n
}

func resizeBool(s []bool, n int) []bool {
	out := make([]bool, n)
	copy(out, s)
	return out
}
func resizeByte(s []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, s)
	return out
}
func resizeInt32(s []int32, n int) []int32 {
	out := make([]int32, n)
	copy(out, s)
	return out
}
func resizeInt64(s []int64, n int) []int64 {
	out := make([]int64, n)
	copy(out, s)
	return out
}
func resizeFloat64(s []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, s)
	return out
}
func resizeSlice(s []StringSlice, n int) []StringSlice {
	out := make([]StringSlice, n)
	copy(out, s)
	return out
}

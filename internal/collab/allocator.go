package collab

import (
	"fmt"

	"github.com/csvquery/fread/internal/table"
	"github.com/csvquery/fread/internal/typecode"
)

// SliceAllocator is the default Allocator: plain Go slices sized up front,
// resized (never incrementally appended) the way internal/table.Table
// expects. It keeps no state of its own; every method operates on the
// Table passed in.
type SliceAllocator struct{}

func (SliceAllocator) AllocateDT(types []typecode.Type, names []string, nrowEstimate int) (*table.Table, error) {
	if len(types) != len(names) {
		return nil, fmt.Errorf("collab: %d types but %d names", len(types), len(names))
	}
	if nrowEstimate < 0 {
		nrowEstimate = 0
	}
	cols := make([]table.Column, len(types))
	for i, t := range types {
		cols[i] = table.NewColumn(names[i], t, nrowEstimate)
	}
	return &table.Table{Columns: cols, Nrow: nrowEstimate}, nil
}

func (SliceAllocator) ReallocColType(t *table.Table, col int, newType typecode.Type) error {
	if col < 0 || col >= len(t.Columns) {
		return fmt.Errorf("collab: column index %d out of range", col)
	}
	old := t.Columns[col]
	if old.Type == newType {
		return nil
	}
	n := len(old.NA)
	widened := table.NewColumn(old.Name, newType, n)
	copy(widened.NA, old.NA)
	if err := reinterpret(old, &widened); err != nil {
		return err
	}
	t.Columns[col] = widened
	return nil
}

// reinterpret copies already-parsed values from old into widened,
// converting numerically where the new type is strictly wider (spec.md
// §5.4: INT32 values promoted to INT64/FLOAT64 must keep their magnitude).
func reinterpret(old table.Column, widened *table.Column) error {
	switch old.Type {
	case typecode.Bool8:
		for i, v := range old.Bool8 {
			assignNumeric(widened, i, float64(v), int64(v))
		}
	case typecode.Int32:
		for i, v := range old.Int32 {
			assignNumeric(widened, i, float64(v), int64(v))
		}
	case typecode.Int64:
		for i, v := range old.Int64 {
			assignNumeric(widened, i, float64(v), v)
		}
	case typecode.Float64:
		if widened.Type != typecode.Float64 && widened.Type != typecode.String {
			return fmt.Errorf("collab: cannot narrow FLOAT64 column to %v", widened.Type)
		}
	case typecode.Drop:
		// nothing to carry forward
	}
	return nil
}

func assignNumeric(widened *table.Column, row int, f float64, i64 int64) {
	switch widened.Type {
	case typecode.Int32:
		widened.Int32[row] = int32(i64)
	case typecode.Int64:
		widened.Int64[row] = i64
	case typecode.Float64:
		widened.Float64[row] = f
	}
}

func (SliceAllocator) SetFinalNrow(t *table.Table, n int) {
	t.Resize(n)
}

func (SliceAllocator) PushBuffer(t *table.Table, startRow int, buf *table.RowBuffer) error {
	return SliceAllocator{}.PushBufferMasked(t, startRow, buf, nil)
}

func (SliceAllocator) PushBufferMasked(t *table.Table, startRow int, buf *table.RowBuffer, writeMask []bool) error {
	src := buf.Columns()
	if len(src) != len(t.Columns) {
		return fmt.Errorf("collab: buffer has %d columns, table has %d", len(src), len(t.Columns))
	}
	n := buf.Len()
	if startRow+n > t.Nrow {
		return fmt.Errorf("collab: push would overrun table (startRow=%d n=%d nrow=%d)", startRow, n, t.Nrow)
	}
	for i := range src {
		if writeMask != nil && i < len(writeMask) && !writeMask[i] {
			continue
		}
		dst := &t.Columns[i]
		copy(dst.NA[startRow:startRow+n], src[i].NA[:n])
		switch dst.Type {
		case typecode.Bool8:
			copy(dst.Bool8[startRow:startRow+n], src[i].Bool8[:n])
		case typecode.Int32:
			copy(dst.Int32[startRow:startRow+n], src[i].Int32[:n])
		case typecode.Int64:
			copy(dst.Int64[startRow:startRow+n], src[i].Int64[:n])
		case typecode.Float64:
			copy(dst.Float64[startRow:startRow+n], src[i].Float64[:n])
		case typecode.String:
			copy(dst.Strings[startRow:startRow+n], src[i].Strings[:n])
		}
	}
	return nil
}

package table

import (
	"testing"

	"github.com/csvquery/fread/internal/typecode"
)

func TestNewColumnAllocatesRightSlice(t *testing.T) {
	c := NewColumn("x", typecode.Int32, 10)
	if len(c.Int32) != 10 {
		t.Fatalf("Int32 len = %d, want 10", len(c.Int32))
	}
	if c.Float64 != nil || c.Strings != nil {
		t.Fatalf("unrelated typed slices should stay nil")
	}
}

func TestResizePreservesContents(t *testing.T) {
	tbl := &Table{Columns: []Column{NewColumn("a", typecode.Int64, 3)}}
	tbl.Columns[0].Int64[0] = 1
	tbl.Columns[0].Int64[1] = 2
	tbl.Columns[0].Int64[2] = 3
	tbl.Resize(2)
	if tbl.Nrow != 2 {
		t.Fatalf("Nrow = %d, want 2", tbl.Nrow)
	}
	if tbl.Columns[0].Int64[0] != 1 || tbl.Columns[0].Int64[1] != 2 {
		t.Fatalf("resize did not preserve prefix: %v", tbl.Columns[0].Int64)
	}
}

func TestStringSliceBytes(t *testing.T) {
	raw := []byte("hello world")
	s := StringSlice{Offset: 6, Length: 5}
	if string(s.Bytes(raw)) != "world" {
		t.Fatalf("Bytes = %q", s.Bytes(raw))
	}
	if (StringSlice{}).Bytes(raw) != nil {
		t.Fatalf("zero-length slice should resolve to nil")
	}
}

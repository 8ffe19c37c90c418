package body

import (
	"testing"

	"github.com/csvquery/fread/internal/collab"
	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/typecode"
)

func csvDialect() dialect.Dialect {
	return dialect.Dialect{Sep: ',', EOL: dialect.EOLLF, Quote: '"', QuoteRule: dialect.QuoteDoubled, Dec: '.'}
}

func TestPlanChunksCoversWholeRange(t *testing.T) {
	ranges := PlanChunks(0, 10_000_000, 20, 4)
	if len(ranges) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if ranges[0].Start != 0 {
		t.Fatalf("first chunk must start at bodyStart, got %d", ranges[0].Start)
	}
	if ranges[len(ranges)-1].End != 10_000_000 {
		t.Fatalf("last chunk must end at bodyEnd, got %d", ranges[len(ranges)-1].End)
	}
	for i := 1; i < len(ranges); i++ {
		if ranges[i-1].End != ranges[i].Start {
			t.Fatalf("chunk %d is not contiguous with chunk %d: %v vs %v", i-1, i, ranges[i-1], ranges[i])
		}
	}
	if len(ranges)%4 != 0 {
		t.Fatalf("chunk count %d is not a multiple of threads", len(ranges))
	}
}

func TestPlanChunksSmallFileOneChunkPerThread(t *testing.T) {
	ranges := PlanChunks(0, 100, 10, 4)
	if len(ranges) != 4 {
		t.Fatalf("tiny body should still get one chunk per thread, got %d chunks", len(ranges))
	}
}

func TestReadParsesSimpleBody(t *testing.T) {
	data := []byte("1,2.5,a\n2,3.5,b\n3,4.5,c\n")
	types := typecode.NewVector(3, typecode.Int32)
	assignedTypes := []typecode.Type{typecode.Int32, typecode.Float64, typecode.String}

	alloc := collab.SliceAllocator{}
	tbl, err := alloc.AllocateDT(assignedTypes, []string{"a", "b", "c"}, 3)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	n, err := Read(Plan{
		Data:          data,
		BodyStart:     0,
		BodyEnd:       len(data),
		Dialect:       csvDialect(),
		AssignedTypes: assignedTypes,
		MaxLineLength: 8,
		RowCapHint:    4,
		Threads:       2,
	}, types, alloc, tbl, &collab.StdDiagnostics{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows written, got %d", n)
	}
	if types.AnyException() {
		t.Fatalf("no column should have hit an exception on in-sample data")
	}
	if got := tbl.Columns[0].Int32; got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("column 0 = %v, want [1 2 3]", got)
	}
	if got := tbl.Columns[1].Float64; got[0] != 2.5 || got[1] != 3.5 || got[2] != 4.5 {
		t.Fatalf("column 1 = %v, want [2.5 3.5 4.5]", got)
	}
}

func TestReadEscalatesAndReread(t *testing.T) {
	// Column 0 is sampled as INT32 but row 2 overflows into a float.
	data := []byte("1,x\n2,y\n3.5,z\n")
	types := typecode.NewVector(2, typecode.Int32)
	assignedTypes := types.Snapshot()

	alloc := collab.SliceAllocator{}
	tbl, err := alloc.AllocateDT(assignedTypes, []string{"n", "s"}, 3)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	_, err = Read(Plan{
		Data:          data,
		BodyStart:     0,
		BodyEnd:       len(data),
		Dialect:       csvDialect(),
		AssignedTypes: assignedTypes,
		MaxLineLength: 8,
		RowCapHint:    4,
		Threads:       1,
	}, types, alloc, tbl, &collab.StdDiagnostics{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !types.AnyException() {
		t.Fatalf("expected column 0 to escalate past INT32")
	}

	n, performed, err := Reread(3, RereadPlan{
		Data:          data,
		BodyStart:     0,
		BodyEnd:       len(data),
		Dialect:       csvDialect(),
		MaxLineLength: 8,
		RowCapHint:    4,
		Threads:       1,
	}, types, alloc, tbl, &collab.StdDiagnostics{})
	if err != nil {
		t.Fatalf("Reread: %v", err)
	}
	if !performed {
		t.Fatalf("expected a reread pass to run")
	}
	if n != 3 {
		t.Fatalf("expected 3 rows after reread, got %d", n)
	}
	if types.AnyException() {
		t.Fatalf("vector must not report an exception once the reread settles")
	}
	got := tbl.Columns[0].Float64
	if got == nil {
		t.Fatalf("column 0 should have been widened to FLOAT64 storage")
	}
	if got[0] != 1 || got[1] != 2 || got[2] != 3.5 {
		t.Fatalf("column 0 after reread = %v, want [1 2 3.5]", got)
	}
}

func TestRereadNoopWhenNoException(t *testing.T) {
	data := []byte("1,a\n2,b\n")
	types := typecode.NewVector(2, typecode.Int32)
	alloc := collab.SliceAllocator{}
	tbl, _ := alloc.AllocateDT(types.Snapshot(), []string{"n", "s"}, 2)

	n, performed, err := Reread(2, RereadPlan{
		Data:          data,
		BodyStart:     0,
		BodyEnd:       len(data),
		Dialect:       csvDialect(),
		MaxLineLength: 4,
		RowCapHint:    4,
		Threads:       1,
	}, types, alloc, tbl, &collab.StdDiagnostics{})
	if err != nil {
		t.Fatalf("Reread: %v", err)
	}
	if performed {
		t.Fatalf("Reread must be a no-op when no column carries an exception")
	}
	if n != 2 {
		t.Fatalf("no-op Reread must return firstPassRows unchanged, got %d", n)
	}
}

package fread

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/csvquery/fread/internal/collab"
	"github.com/csvquery/fread/internal/typecode"
)

// rejectingOverride is a collab.UserOverride whose Finalize always aborts,
// for exercising the clean-cancel path distinct from ctx cancellation.
type rejectingOverride struct{ collab.NoopOverride }

func (rejectingOverride) Finalize([]typecode.Type, []string) bool { return false }

func mustRead(t *testing.T, opts Options) *Result {
	t.Helper()
	res, err := Read(context.Background(), opts, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return res
}

// S1 — plain comma CSV, header detected, two integer rows.
func TestS1PlainDialect(t *testing.T) {
	res := mustRead(t, Options{Input: "a,b,c\n1,2,3\n4,5,6\n", Header: "auto", NThread: 1})
	if res.Nrow != 2 {
		t.Fatalf("expected 2 rows, got %d", res.Nrow)
	}
	names := []string{"a", "b", "c"}
	for i, want := range names {
		if res.Columns[i].Name != want {
			t.Fatalf("column %d name = %q, want %q", i, res.Columns[i].Name, want)
		}
		if res.Columns[i].Type != typecode.Int32 {
			t.Fatalf("column %d type = %v, want INT32", i, res.Columns[i].Type)
		}
	}
	if res.Columns[0].Int32[0] != 1 || res.Columns[0].Int32[1] != 4 {
		t.Fatalf("column a = %v, want [1 4]", res.Columns[0].Int32)
	}
	if res.Columns[2].Int32[0] != 3 || res.Columns[2].Int32[1] != 6 {
		t.Fatalf("column c = %v, want [3 6]", res.Columns[2].Int32)
	}
}

// S2 — a quoted field containing a literal embedded newline.
func TestS2QuotedNewline(t *testing.T) {
	res := mustRead(t, Options{Input: "x\n\"a\nb\"\nc\n", NThread: 1})
	if res.Nrow != 2 {
		t.Fatalf("expected 2 rows, got %d", res.Nrow)
	}
	if res.Columns[0].Name != "x" {
		t.Fatalf("column name = %q, want x", res.Columns[0].Name)
	}
	if res.Columns[0].Type != typecode.String {
		t.Fatalf("column type = %v, want STRING", res.Columns[0].Type)
	}
	got0 := string(res.Columns[0].Strings[0].Bytes(res.Raw))
	got1 := string(res.Columns[0].Strings[1].Bytes(res.Raw))
	if got0 != "a\nb" {
		t.Fatalf("row 0 = %q, want %q", got0, "a\nb")
	}
	if got1 != "c" {
		t.Fatalf("row 1 = %q, want %q", got1, "c")
	}
}

// S3 — sampler infers INT32 from 9999 integer rows, last row overflows
// into a float; body read must escalate and reread correctly.
func TestS3OutOfSampleFloatEscalates(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 9999; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\n')
	}
	b.WriteString("3.14\n")

	res := mustRead(t, Options{Input: b.String(), NThread: 4})
	if res.Nrow != 10000 {
		t.Fatalf("expected 10000 rows, got %d", res.Nrow)
	}
	if res.Columns[0].Type != typecode.Float64 {
		t.Fatalf("column type = %v, want FLOAT64 after escalation", res.Columns[0].Type)
	}
	if res.Columns[0].Float64[0] != 0 || res.Columns[0].Float64[9998] != 9998 {
		t.Fatalf("early rows corrupted by reread: first=%v row9998=%v", res.Columns[0].Float64[0], res.Columns[0].Float64[9998])
	}
	if res.Columns[0].Float64[9999] != 3.14 {
		t.Fatalf("last row = %v, want 3.14", res.Columns[0].Float64[9999])
	}
}

// S4 — an embedded doubled quote under the default quote rule.
func TestS4EmbeddedDoubledQuote(t *testing.T) {
	res := mustRead(t, Options{Input: "s\n\"he said \"\"hi\"\"\"\n", NThread: 1})
	if res.Nrow != 1 {
		t.Fatalf("expected 1 row, got %d", res.Nrow)
	}
	got := string(res.Columns[0].Strings[0].Bytes(res.Raw))
	if got != `he said "hi"` {
		t.Fatalf("value = %q, want %q", got, `he said "hi"`)
	}
}

// S5 — NA-string handling: the same literal -999 cell is dropped to NA or
// kept as a value depending solely on the caller's NAStrings list.
func TestS5NAStrings(t *testing.T) {
	input := "n\n1\n-999\n"

	missing := mustRead(t, Options{Input: input, NAStrings: []string{"", "NA", "-999"}, NThread: 1})
	if !missing.Columns[0].NA[1] {
		t.Fatalf("-999 should be treated as NA when it's in NAStrings")
	}

	kept := mustRead(t, Options{Input: input, NAStrings: []string{""}, NThread: 1})
	if kept.Columns[0].NA[1] {
		t.Fatalf("-999 should not be NA when NAStrings excludes it")
	}
	if kept.Columns[0].Int32[1] != -999 {
		t.Fatalf("value = %d, want -999", kept.Columns[0].Int32[1])
	}
}

// S6 — fill mode pads a short row with NA; without it, a short row is a
// shape error naming the offending (1-based, body-relative) line.
func TestS6FillMode(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5\n"

	filled := mustRead(t, Options{Input: input, Fill: true, NThread: 1})
	if filled.Nrow != 2 {
		t.Fatalf("expected 2 rows, got %d", filled.Nrow)
	}
	if filled.Columns[0].Int32[1] != 4 || filled.Columns[1].Int32[1] != 5 {
		t.Fatalf("short row values = %d,%d, want 4,5", filled.Columns[0].Int32[1], filled.Columns[1].Int32[1])
	}
	if !filled.Columns[2].NA[1] {
		t.Fatalf("missing trailing column must be NA under fill")
	}

	_, err := Read(context.Background(), Options{Input: input, Fill: false, NThread: 1}, nil, nil, nil, nil)
	if err == nil {
		t.Fatalf("expected a shape error without fill")
	}
	if !errors.Is(err, ErrShape) {
		t.Fatalf("error = %v, want one wrapping ErrShape", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("error %v does not name line 2", err)
	}
}

// Invariant 6: nth=1 and nth>1 must produce byte-identical results.
func TestNThreadEquivalence(t *testing.T) {
	var b strings.Builder
	b.WriteString("n,f\n")
	for i := 0; i < 500; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(float64(i)*1.5, 'f', 1, 64))
		b.WriteByte('\n')
	}
	data := b.String()

	single := mustRead(t, Options{Input: data, NThread: 1})
	multi := mustRead(t, Options{Input: data, NThread: 4})

	if single.Nrow != multi.Nrow {
		t.Fatalf("row count differs: nth=1 -> %d, nth=4 -> %d", single.Nrow, multi.Nrow)
	}
	for i := 0; i < single.Nrow; i++ {
		if single.Columns[0].Int32[i] != multi.Columns[0].Int32[i] {
			t.Fatalf("row %d column n differs: %d vs %d", i, single.Columns[0].Int32[i], multi.Columns[0].Int32[i])
		}
		if single.Columns[1].Float64[i] != multi.Columns[1].Float64[i] {
			t.Fatalf("row %d column f differs: %v vs %v", i, single.Columns[1].Float64[i], multi.Columns[1].Float64[i])
		}
	}
}

// Invariant 7: nrowLimit produces exactly min(k, total) rows.
func TestNrowLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 200; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\n')
	}

	res := mustRead(t, Options{Input: b.String(), NRowLimit: 37, NThread: 4})
	if res.Nrow != 37 {
		t.Fatalf("nrowLimit=37 produced %d rows", res.Nrow)
	}
	for i := 0; i < 37; i++ {
		if res.Columns[0].Int32[i] != int32(i) {
			t.Fatalf("row %d = %d, want %d", i, res.Columns[0].Int32[i], i)
		}
	}

	full := mustRead(t, Options{Input: b.String(), NRowLimit: 10_000, NThread: 4})
	if full.Nrow != 200 {
		t.Fatalf("nrowLimit above total rows produced %d rows, want 200", full.Nrow)
	}
}

// DisableSampling forces the sampler's two-point pass; out-of-sample values
// the wider jump schedule would have caught must still escalate via the
// body reader's own exception handling and reread pass.
func TestDisableSampling(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 9999; i++ {
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('\n')
	}
	b.WriteString("3.14\n")

	res := mustRead(t, Options{Input: b.String(), DisableSampling: true, NThread: 4})
	if res.Nrow != 10000 {
		t.Fatalf("expected 10000 rows, got %d", res.Nrow)
	}
	if res.Columns[0].Type != typecode.Float64 {
		t.Fatalf("column type = %v, want FLOAT64 after escalation", res.Columns[0].Type)
	}
	if res.Columns[0].Float64[9999] != 3.14 {
		t.Fatalf("last row = %v, want 3.14", res.Columns[0].Float64[9999])
	}
}

// TestUserOverrideFinalizeAborts exercises the clean-cancel contract:
// userOverride returning false yields (nil, nil), never an error.
func TestUserOverrideFinalizeAborts(t *testing.T) {
	res, err := Read(context.Background(), Options{Input: "a,b\n1,2\n", NThread: 1}, nil, rejectingOverride{}, nil, nil)
	if err != nil {
		t.Fatalf("Read: expected nil error on clean cancel, got %v", err)
	}
	if res != nil {
		t.Fatalf("Read: expected nil result on clean cancel, got %+v", res)
	}
}

func TestBool8ZeroOneOption(t *testing.T) {
	res := mustRead(t, Options{Input: "flag\n1\n0\n1\n", NThread: 1, BoolZeroOne: true})
	if res.Columns[0].Type != typecode.Bool8 {
		t.Fatalf("column type = %v, want BOOL8 when boolZeroOne accepts 0/1", res.Columns[0].Type)
	}
	want := []byte{1, 0, 1}
	for i, w := range want {
		if res.Columns[0].Bool8[i] != w {
			t.Fatalf("row %d = %v, want %v", i, res.Columns[0].Bool8[i], w)
		}
	}
}

func TestBool8ZeroOneOffByDefault(t *testing.T) {
	res := mustRead(t, Options{Input: "flag\n1\n0\n1\n", NThread: 1})
	if res.Columns[0].Type != typecode.Int32 {
		t.Fatalf("column type = %v, want INT32 when boolZeroOne is off", res.Columns[0].Type)
	}
}

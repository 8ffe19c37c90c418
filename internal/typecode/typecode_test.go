package typecode

import "testing"

func TestOrdering(t *testing.T) {
	order := []Type{Drop, Bool8, Int32, Int64, Float64, String}
	for i := 1; i < len(order); i++ {
		if !(order[i-1] < order[i]) {
			t.Fatalf("expected %v < %v", order[i-1], order[i])
		}
	}
}

func TestNegateMagnitude(t *testing.T) {
	n := Negate(Float64)
	if !n.IsException() {
		t.Fatalf("expected exception flag set")
	}
	if n.Magnitude() != Float64 {
		t.Fatalf("magnitude lost: got %v", n.Magnitude())
	}
	if Negate(Drop) != Drop {
		t.Fatalf("Drop must never carry an exception flag")
	}
}

func TestWider(t *testing.T) {
	if Bool8.Wider() != Int32 {
		t.Fatalf("Bool8.Wider() = %v, want Int32", Bool8.Wider())
	}
	if String.Wider() != String {
		t.Fatalf("String.Wider() must be a ceiling")
	}
}

func TestVectorBumpKeepsStrictest(t *testing.T) {
	v := NewVector(1, Int32)
	if got := v.Bump(0, Float64); got != Float64 {
		t.Fatalf("first bump: got %v want Float64", got)
	}
	// A second, narrower observation must not un-bump the column.
	if got := v.Bump(0, Int64); got != Float64 {
		t.Fatalf("second (narrower) bump: got %v want Float64 preserved", got)
	}
	if !v.Get(0).IsException() {
		t.Fatalf("column must be marked as a type exception after Bump")
	}
	if v.Get(0).Magnitude() != Float64 {
		t.Fatalf("stored magnitude = %v, want Float64", v.Get(0).Magnitude())
	}
}

func TestPrepareReread(t *testing.T) {
	v := NewVector(3, Int32)
	v.Bump(1, String) // column 1 escalated to STRING
	v.MarkDrop(2)      // column 2 dropped by user override

	resolved := v.PrepareReread()
	if resolved[0] != Int32 {
		t.Fatalf("kept column resolved type = %v, want Int32", resolved[0])
	}
	if v.Get(0) != Negate(String) {
		t.Fatalf("kept column must be armed to skip-but-step during reread, got %v", v.Get(0))
	}
	if resolved[1] != String {
		t.Fatalf("escalated column resolved type = %v, want String", resolved[1])
	}
	if v.Get(1) != String {
		t.Fatalf("escalated column must store normally during reread, got %v", v.Get(1))
	}
	if resolved[2] != Drop {
		t.Fatalf("dropped column must stay Drop, got %v", resolved[2])
	}
}

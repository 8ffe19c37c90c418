package typecode

import "sync"

// Vector is the per-column type vector shared across body-read goroutines
// (the sampler keeps its own plain slice). All reads and read-modify-writes go through one mutex-guarded
// critical section — spec.md §5 calls for exactly one such section covering
// the type vector, modeled here on the teacher's
// internal/indexer/sorter.go Sorter.state pattern, generalized from a single
// atomic int32 to a slice since there is one type per column rather than one
// state for the whole sorter.
type Vector struct {
	mu    sync.Mutex
	types []Type
}

// NewVector creates a type vector with all columns initialised to init.
func NewVector(ncol int, init Type) *Vector {
	types := make([]Type, ncol)
	for i := range types {
		types[i] = init
	}
	return &Vector{types: types}
}

// Len returns the number of columns tracked.
func (v *Vector) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.types)
}

// Get returns the current type of column col.
func (v *Vector) Get(col int) Type {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.types[col]
}

// Snapshot returns a copy of the whole vector, safe to read without holding
// the lock afterwards.
func (v *Vector) Snapshot() []Type {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Type, len(v.types))
	copy(out, v.types)
	return out
}

// Promote widens column col to at least want, never narrowing. fread's read
// uses it to seed the vector with the sampled types before any body-read
// goroutine starts, so the lock is uncontended but kept for symmetry with
// Bump.
func (v *Vector) Promote(col int, want Type) {
	v.mu.Lock()
	defer v.mu.Unlock()
	cur := v.types[col]
	if want.Magnitude() > cur.Magnitude() {
		v.types[col] = want.Magnitude()
	}
}

// Bump marks column col as having hit an out-of-sample value during body
// parsing: the shared type is negated at the wider magnitude, unless another
// worker already recorded an equal-or-wider exception (spec.md §4.5's
// "always reread the shared type inside the critical section before
// deciding whether your local observation is still the strictest").
// It reports the type the caller should use locally for the rest of this
// chunk's column (the post-bump magnitude).
func (v *Vector) Bump(col int, want Type) Type {
	v.mu.Lock()
	defer v.mu.Unlock()
	cur := v.types[col]
	curMag := cur.Magnitude()
	wantMag := want.Magnitude()
	if wantMag <= curMag {
		return curMag
	}
	v.types[col] = Negate(wantMag)
	return wantMag
}

// MarkDrop forces column col to Drop.
func (v *Vector) MarkDrop(col int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.types[col] = Drop
}

// ClearSentinel restores column col to plain (non-exception) type t. Used
// by the reread controller once a reread pass completes, to remove the
// -String "skip but step" marker PrepareReread left on columns that did
// not need rereading.
func (v *Vector) ClearSentinel(col int, t Type) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.types[col] = t.Magnitude()
}

// AnyException reports whether any column currently carries a type
// exception (IsException), which is the trigger for a reread pass.
func (v *Vector) AnyException() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, t := range v.types {
		if t.IsException() {
			return true
		}
	}
	return false
}

// PrepareReread resolves exception columns to their absolute (post-bump)
// type and marks every other kept column as -String, the sentinel meaning
// "skip value storage but still step through the field" (spec.md §4.6).
// It returns the resolved types the reread pass should allocate at.
func (v *Vector) PrepareReread() []Type {
	v.mu.Lock()
	defer v.mu.Unlock()
	resolved := make([]Type, len(v.types))
	for i, t := range v.types {
		switch {
		case t == Drop:
			resolved[i] = Drop
		case t.IsException():
			mag := t.Magnitude()
			resolved[i] = mag
			v.types[i] = mag // reread stores this column at its escalated type
		default:
			resolved[i] = t
			v.types[i] = Negate(String) // skip storage, still step through the field
		}
	}
	return resolved
}

package scan

import "testing"

func TestFloat64(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.14", 3.14, true},
		{"-2.5e3", -2500, true},
		{"1e10", 1e10, true},
		{"0", 0, true},
		{".5", 0.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
	}
	for _, c := range cases {
		got, ok := Float64([]byte(c.in))
		if ok != c.ok {
			t.Errorf("Float64(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && !closeEnough(got, c.want) {
			t.Errorf("Float64(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestFloat64Inf(t *testing.T) {
	v, ok := Float64([]byte("Inf"))
	if !ok || v <= 1e300 {
		t.Fatalf("Float64(Inf) = %v, %v", v, ok)
	}
	v, ok = Float64([]byte("-Inf"))
	if !ok || v >= -1e300 {
		t.Fatalf("Float64(-Inf) = %v, %v", v, ok)
	}
}

func TestFloat64NaN(t *testing.T) {
	v, ok := Float64([]byte("NaN"))
	if !ok || !IsFloatNA(v) {
		t.Fatalf("Float64(NaN) = %v, %v, want the NA sentinel", v, ok)
	}
}

func closeEnough(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9*(1+abs(b))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

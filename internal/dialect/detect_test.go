package dialect

import "testing"

func TestDetectEOL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want EOL
	}{
		{"lf", "a,b\n", EOLLF},
		{"crlf", "a,b\r\n", EOLCRLF},
		{"cr", "a,b\r", EOLCR},
		{"lfcr", "a,b\n\r", EOLLFCR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := DetectEOL([]byte(tt.in), 0)
			if got != tt.want {
				t.Fatalf("DetectEOL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestDetectS1 is scenario S1 from spec.md §8.
func TestDetectS1(t *testing.T) {
	in := []byte("a,b,c\n1,2,3\n4,5,6\n")
	eol, next := DetectEOL(in, 0)
	if eol != EOLLF {
		t.Fatalf("eol = %v, want LF", eol)
	}
	d, _, err := Detect(in, 0, eol)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.Sep != ',' {
		t.Fatalf("sep = %q, want ','", d.Sep)
	}
	if d.QuoteRule != QuoteDoubled {
		t.Fatalf("rule = %v, want doubled (lowest tried that fits)", d.QuoteRule)
	}
	_ = next
}

// TestDetectS2 is scenario S2: quoted newline, rule 0 selected.
func TestDetectS2(t *testing.T) {
	in := []byte("x\n\"a\nb\"\nc\n")
	eol, _ := DetectEOL(in, 0)
	d, _, err := Detect(in, 0, eol)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.QuoteRule != QuoteDoubled {
		t.Fatalf("rule = %v, want doubled", d.QuoteRule)
	}
}

// TestDetectQuoteRuleUnescaped: a comma embedded inside a rule-2 quoted
// field (quotes not escaped at all, terminator is quote-then-separator/EOL)
// breaks field counting consistency under every other rule, but rule 2
// tokenizes both rows to the same field count.
func TestDetectQuoteRuleUnescaped(t *testing.T) {
	in := []byte("n,s\n1,\"he said \"hi\" there, friend\"\n2,\"ok\"\n")
	eol, _ := DetectEOL(in, 0)
	d, _, err := Detect(in, 0, eol)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if d.QuoteRule != QuoteUnescaped {
		t.Fatalf("rule = %v, want unescaped", d.QuoteRule)
	}
	if d.Sep != ',' {
		t.Fatalf("sep = %q, want ','", d.Sep)
	}
}

func TestSkipBOM(t *testing.T) {
	withBOM := append(append([]byte{}, bom...), []byte("a,b\n")...)
	if off := SkipBOM(withBOM); off != 3 {
		t.Fatalf("SkipBOM = %d, want 3", off)
	}
	if off := SkipBOM([]byte("a,b\n")); off != 0 {
		t.Fatalf("SkipBOM without bom = %d, want 0", off)
	}
}

func TestDialectValidate(t *testing.T) {
	d := Dialect{Sep: ',', Quote: '"', Dec: '.'}
	if err := d.Validate(); err != nil {
		t.Fatalf("valid dialect rejected: %v", err)
	}
	bad := Dialect{Sep: ',', Quote: ',', Dec: '.'}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error when sep == quote")
	}
}

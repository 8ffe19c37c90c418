package scan

import (
	"testing"

	"github.com/csvquery/fread/internal/dialect"
)

func plainDialect() dialect.Dialect {
	return dialect.Dialect{Sep: ',', Quote: '"', EOL: dialect.EOLLF, QuoteRule: dialect.QuoteDoubled, Dec: '.'}
}

func TestFieldUnquoted(t *testing.T) {
	d := plainDialect()
	row := []byte("abc,def\n")
	start, end, next, quoted := Field(row, 0, d)
	if quoted {
		t.Fatal("unquoted field reported as quoted")
	}
	if string(row[start:end]) != "abc" {
		t.Fatalf("field = %q, want abc", row[start:end])
	}
	if row[next] != ',' {
		t.Fatalf("next landed on %q, want separator", row[next])
	}
}

func TestFieldQuoted(t *testing.T) {
	d := plainDialect()
	row := []byte(`"a,b",c` + "\n")
	start, end, next, quoted := Field(row, 0, d)
	if !quoted {
		t.Fatal("quoted field not detected")
	}
	if string(row[start:end]) != "a,b" {
		t.Fatalf("field = %q, want a,b", row[start:end])
	}
	if row[next] != ',' {
		t.Fatalf("next landed on %q, want separator after closing quote", row[next])
	}
}

func TestFieldQuotedDoubled(t *testing.T) {
	d := plainDialect()
	row := []byte(`"a""b",c` + "\n")
	start, end, _, quoted := Field(row, 0, d)
	if !quoted {
		t.Fatal("quoted field not detected")
	}
	if string(row[start:end]) != `a""b` {
		t.Fatalf("field = %q, want raw a\"\"b (caller unescapes)", row[start:end])
	}
}

func TestFieldQuoteRuleUnescaped(t *testing.T) {
	d := plainDialect()
	d.QuoteRule = dialect.QuoteUnescaped
	row := []byte(`"he said "hi" there",c` + "\n")
	start, end, next, quoted := Field(row, 0, d)
	if !quoted {
		t.Fatal("rule-2 quoted field not detected")
	}
	want := `he said "hi" there`
	if string(row[start:end]) != want {
		t.Fatalf("field = %q, want %q", row[start:end], want)
	}
	if row[next] != ',' {
		t.Fatalf("next landed on %q, want separator after closing quote", row[next])
	}
}

func TestFieldQuoteRuleUnescapedStrayLeadingQuote(t *testing.T) {
	d := plainDialect()
	d.QuoteRule = dialect.QuoteUnescaped
	row := []byte(`"not really quoted,c` + "\n")
	start, end, _, quoted := Field(row, 0, d)
	if quoted {
		t.Fatal("stray leading quote under rule 2 must fall back to an unquoted field")
	}
	want := `"not really quoted`
	if string(row[start:end]) != want {
		t.Fatalf("field = %q, want %q", row[start:end], want)
	}
}

func TestSkipEOL(t *testing.T) {
	d := plainDialect()
	row := []byte("a\nb")
	next := SkipEOL(row, 1, d)
	if next != 2 {
		t.Fatalf("SkipEOL = %d, want 2", next)
	}
}

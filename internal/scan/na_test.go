package scan

import "testing"

func TestIsNAString(t *testing.T) {
	if !IsNAString([]byte(""), DefaultNAStrings) {
		t.Fatal("empty field must always count as NA")
	}
	if !IsNAString([]byte("NA"), DefaultNAStrings) {
		t.Fatal("default NA string not recognized")
	}
	if IsNAString([]byte("na"), DefaultNAStrings) {
		t.Fatal("NA string matching must be case-sensitive")
	}
	custom := []string{"N/A", "null"}
	if !IsNAString([]byte("null"), custom) {
		t.Fatal("custom NA string not recognized")
	}
	if IsNAString([]byte("NA"), custom) {
		t.Fatal("default NA string leaked into custom list check")
	}
	if !IsNAString([]byte(" NA "), DefaultNAStrings) {
		t.Fatal("surrounding whitespace must not stop an NA-string match, regardless of StripWhite")
	}
	if !IsNAString([]byte("\t\t"), DefaultNAStrings) {
		t.Fatal("an all-whitespace field must trim down to empty and count as NA")
	}
}

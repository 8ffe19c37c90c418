package scan

import "github.com/csvquery/fread/internal/typecode"

// Bool8 recognizes the literal spellings spec.md §4.1 accepts for a
// logical column: T/F/TRUE/FALSE/True/False (case-sensitive, exactly these
// spellings — not an arbitrary case-fold, and no lowercase true/false).
// When zeroOne is set, "0" and "1" are also accepted; callers gate this on
// their own option since it is off by default. Returns the typecode.Bool8NA
// sentinel's peer (0 or 1) and whether the field matched.
func Bool8(data []byte, zeroOne bool) (byte, bool) {
	f := trimSpace(data)
	switch string(f) {
	case "T", "TRUE", "True":
		return 1, true
	case "F", "FALSE", "False":
		return 0, true
	}
	if zeroOne {
		switch string(f) {
		case "1":
			return 1, true
		case "0":
			return 0, true
		}
	}
	return typecode.Bool8NA, false
}

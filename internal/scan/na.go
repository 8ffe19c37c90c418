package scan

// DefaultNAStrings are the field spellings that count as "missing" for any
// column type, spec.md §4.1/§6: the empty field always counts in addition
// to whatever this list holds.
var DefaultNAStrings = []string{"NA"}

// IsNAString reports whether field matches one of naStrings or is empty.
// It always trims surrounding spaces/tabs internally before comparing,
// independent of the caller's StripWhite option, matching the original's
// is_NAstring: a whitespace-padded field like " NA " still counts as
// missing even when the unquoted-field trim that StripWhite controls is
// off.
func IsNAString(field []byte, naStrings []string) bool {
	f := trimSpace(field)
	if len(f) == 0 {
		return true
	}
	for _, s := range naStrings {
		if string(f) == s {
			return true
		}
	}
	return false
}

package scan

import "github.com/csvquery/fread/internal/typecode"

// Int32 attempts to parse data as a base-10 int32, per spec.md §4.1:
// optional leading sign, at least one digit, no decimal point or exponent,
// no leading zeros other than "0" itself, magnitude fitting in int32.
// Leading/trailing ASCII space is tolerated.
func Int32(data []byte) (int32, bool) {
	mag, neg, ok := scanUint(data, 1<<31)
	if !ok {
		return 0, false
	}
	if neg {
		if mag > 1<<31 {
			return 0, false
		}
		return int32(-int64(mag)), true
	}
	if mag > 1<<31-1 {
		return 0, false
	}
	return int32(mag), true
}

// Int64 attempts to parse data as a base-10 int64.
func Int64(data []byte) (int64, bool) {
	mag, neg, ok := scanUint(data, 1<<63)
	if !ok {
		return 0, false
	}
	if neg {
		if mag > 1<<63 {
			return 0, false
		}
		return -int64(mag), true
	}
	if mag > 1<<63-1 {
		return 0, false
	}
	return int64(mag), true
}

// scanUint parses an optionally signed decimal integer into an unsigned
// magnitude, capping accumulation at cap (the caller re-checks the exact
// bound once the sign is known, since the negative range of a two's
// complement type is one wider than the positive range). Returns the
// magnitude, the sign, and whether the field was a valid, fully-consumed
// integer literal.
func scanUint(data []byte, cap uint64) (mag uint64, neg bool, ok bool) {
	f := trimSpace(data)
	if len(f) == 0 {
		return 0, false, false
	}
	i := 0
	if f[i] == '+' || f[i] == '-' {
		neg = f[i] == '-'
		i++
	}
	if i >= len(f) {
		return 0, false, false
	}
	// Reject leading zeros other than a lone "0" (spec.md §4.1).
	if f[i] == '0' && i+1 < len(f) && isDigit(f[i+1]) {
		return 0, false, false
	}
	start := i
	for i < len(f) && isDigit(f[i]) {
		d := uint64(f[i] - '0')
		if mag > (cap-d)/10 {
			return 0, false, false // overflow past any valid bound for this type
		}
		mag = mag*10 + d
		i++
	}
	if i != len(f) || i == start {
		return 0, false, false
	}
	return mag, neg, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func trimSpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// IsNA32 reports whether v equals the int32 NA sentinel.
func IsNA32(v int32) bool { return v == typecode.Int32NA }

// IsNA64 reports whether v equals the int64 NA sentinel.
func IsNA64(v int64) bool { return v == typecode.Int64NA }

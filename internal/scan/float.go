package scan

import (
	"math"

	"github.com/csvquery/fread/internal/typecode"
)

// pow10 is a precomputed table of 10^0..10^22, the full range representable
// exactly as a float64 mantissa (spec.md §4.1), used to scale the integer
// mantissa scanned from the field without an intermediate strconv call.
var pow10 = [23]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10,
	1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

// Float64 parses data as a float64 by scanning the mantissa digits into a
// uint64, tracking the decimal exponent implied by the fractional part and
// any explicit e/E exponent, then scaling by a power of ten from pow10 —
// the approach spec.md §4.1 calls for in place of a general-purpose float
// parser. Mantissas wider than 19 digits (possible loss of precision)
// fall back to reporting failure so the caller can special-case them
// rather than silently lose precision; in practice fields this long are
// rare enough that the sampler/body reader treat it as "not float" and
// escalate to STRING.
func Float64(data []byte) (float64, bool) {
	f := trimSpace(data)
	if len(f) == 0 {
		return 0, false
	}
	i := 0
	neg := false
	if f[i] == '+' || f[i] == '-' {
		neg = f[i] == '-'
		i++
	}
	if i >= len(f) {
		return 0, false
	}

	if rest := f[i:]; isFold(rest, "inf") || isFold(rest, "infinity") {
		if neg {
			return negInf(), true
		}
		return posInf(), true
	}
	if rest := f[i:]; isFold(rest, "nan") {
		return typecode.Float64NA, true
	}

	var mantissa uint64
	digits := 0
	overflowed := false
	sawDigit := false
	for i < len(f) && isDigit(f[i]) {
		sawDigit = true
		if digits < 19 {
			mantissa = mantissa*10 + uint64(f[i]-'0')
			digits++
		} else {
			overflowed = true
		}
		i++
	}

	exp := 0
	if i < len(f) && f[i] == '.' {
		i++
		for i < len(f) && isDigit(f[i]) {
			sawDigit = true
			if digits < 19 {
				mantissa = mantissa*10 + uint64(f[i]-'0')
				digits++
				exp--
			} else {
				overflowed = true
			}
			i++
		}
	}
	if !sawDigit {
		return 0, false
	}
	if overflowed {
		return 0, false
	}

	if i < len(f) && (f[i] == 'e' || f[i] == 'E') {
		i++
		expSign := 1
		if i < len(f) && (f[i] == '+' || f[i] == '-') {
			if f[i] == '-' {
				expSign = -1
			}
			i++
		}
		expDigits := 0
		expVal := 0
		for i < len(f) && isDigit(f[i]) {
			expVal = expVal*10 + int(f[i]-'0')
			expDigits++
			i++
			if expVal > 1000 {
				return 0, false // absurd exponent, reject rather than overflow pow10 lookup
			}
		}
		if expDigits == 0 {
			return 0, false
		}
		exp += expSign * expVal
	}

	if i != len(f) {
		return 0, false
	}

	val := float64(mantissa)
	if exp >= 0 {
		if exp < len(pow10) {
			val *= pow10[exp]
		} else {
			val *= pow10[len(pow10)-1]
			for e := exp - (len(pow10) - 1); e > 0; e-- {
				val *= 10
			}
		}
	} else {
		e := -exp
		if e < len(pow10) {
			val /= pow10[e]
		} else {
			val /= pow10[len(pow10)-1]
			for e -= len(pow10) - 1; e > 0; e-- {
				val /= 10
			}
		}
	}
	if neg {
		val = -val
	}
	return val, true
}

func isFold(a []byte, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ac, bc := a[i], b[i]
		if ac >= 'A' && ac <= 'Z' {
			ac += 'a' - 'A'
		}
		if ac != bc {
			return false
		}
	}
	return true
}

func posInf() float64 { return math.Inf(1) }
func negInf() float64 { return math.Inf(-1) }

// IsFloatNA reports whether v is the NaN sentinel fread uses for float NA.
func IsFloatNA(v float64) bool { return typecode.IsFloatNA(v) }

// Package scan holds the field tokenizer and the per-type value scanners
// used by the sampler and the parallel body reader. Field consumes one
// field's worth of bytes at an offset (honoring the dialect's quote rule)
// and reports where the field's content started/ended; the typed scanners
// (Int32, Int64, Float64, Bool8) take that content's bytes and report the
// parsed value plus whether it is a valid value of their type. None of
// these scanners allocate.
package scan

import "github.com/csvquery/fread/internal/dialect"

// Field locates the raw extent of the next field starting at pos, honoring
// d's separator, quote character and quote rule. It returns the content
// bounds (with one layer of quoting stripped when the field was quoted),
// the offset of the byte following the field (at the separator or line
// terminator), and whether the field was quoted.
//
// Field does not itself classify the terminator as separator vs EOL; the
// caller (sampler or body reader) checks the byte at next against the
// dialect to decide whether the row continues.
func Field(data []byte, pos int, d dialect.Dialect) (start, end, next int, quoted bool) {
	n := len(data)
	start = pos
	i := pos

	if d.Quote != dialect.NoneByte && i < n && data[i] == d.Quote && d.QuoteRule == dialect.QuoteUnescaped {
		return fieldUnescaped(data, pos, d)
	}

	if d.Quote != dialect.NoneByte && i < n && data[i] == d.Quote && d.QuoteRule != dialect.QuoteNone {
		quoted = true
		i++
		start = i
		for i < n {
			c := data[i]
			if d.QuoteRule == dialect.QuoteBackslash && c == '\\' && i+1 < n {
				i += 2
				continue
			}
			if c == d.Quote {
				if d.QuoteRule == dialect.QuoteDoubled && i+1 < n && data[i+1] == d.Quote {
					i += 2
					continue
				}
				end = i
				i++
				break
			}
			i++
		}
		if end == 0 && i >= n {
			end = n // unterminated quote at EOF: take what we have
		}
		// Skip anything between the closing quote and the next separator/EOL
		// (spec.md §4.4's "quote then separator terminator" rule: normally
		// nothing, but tolerate trailing bytes rather than fail the field).
		for i < n && data[i] != d.Sep && !isTerm(data[i]) {
			i++
		}
		next = i
		return start, end, next, quoted
	}

	for i < n && data[i] != d.Sep && !isTerm(data[i]) {
		i++
	}
	return start, i, i, false
}

// fieldUnescaped implements quote rule 2 (spec.md §4.1 item 2): embedded
// quotes are not escaped at all, so the only valid terminator is a quote
// immediately followed by the separator, a line terminator, or EOF, and no
// line terminator may occur before that terminator is found. A stray
// leading quote (no such terminator found before an EOL or EOF) falls back
// to an unquoted scan from pos, with the quote itself part of the field's
// literal content.
func fieldUnescaped(data []byte, pos int, d dialect.Dialect) (start, end, next int, quoted bool) {
	n := len(data)
	for j := pos + 1; j < n; j++ {
		if isTerm(data[j]) {
			break
		}
		if data[j] != d.Quote {
			continue
		}
		if j+1 >= n || data[j+1] == d.Sep || isTerm(data[j+1]) {
			i := j + 1
			for i < n && data[i] != d.Sep && !isTerm(data[i]) {
				i++
			}
			return pos + 1, j, i, true
		}
	}

	i := pos
	for i < n && data[i] != d.Sep && !isTerm(data[i]) {
		i++
	}
	return pos, i, i, false
}

func isTerm(c byte) bool { return c == '\n' || c == '\r' }

// AtEOL reports whether the byte at data[pos] begins d's line terminator.
func AtEOL(data []byte, pos int, d dialect.Dialect) bool {
	if pos >= len(data) {
		return true
	}
	return isTerm(data[pos])
}

// SkipEOL advances past one line terminator starting at pos, per d.EOL.
func SkipEOL(data []byte, pos int, d dialect.Dialect) int {
	n := len(data)
	if pos >= n {
		return pos
	}
	term := d.EOL.Bytes()
	if pos+len(term) <= n {
		match := true
		for k := 0; k < len(term); k++ {
			if data[pos+k] != term[k] {
				match = false
				break
			}
		}
		if match {
			return pos + len(term)
		}
	}
	return pos + 1
}

package dialect

// HeaderPreference is the caller's tri-state header override (spec.md §6).
type HeaderPreference int

const (
	HeaderAuto HeaderPreference = iota
	HeaderTrue
	HeaderFalse
)

// NameSlice is a column-name slice (offset, length) into the input window;
// its lifetime equals the window's (spec.md §3). A zero-length slice means
// "no name was captured", used for synthesized default names.
type NameSlice struct {
	Offset int
	Length int
}

// Bytes resolves a NameSlice against the backing input.
func (n NameSlice) Bytes(input []byte) []byte {
	if n.Length == 0 {
		return nil
	}
	return input[n.Offset : n.Offset+n.Length]
}

// looksNumeric is a lightweight stand-in for "the float scanner would
// accept this field", used only during header resolution so that
// internal/dialect does not need to import internal/scan (which itself
// depends on internal/dialect for the Dialect/QuoteRule types). It mirrors
// the float grammar from spec.md §4.1 closely enough to classify header
// cells: optional sign, digits, optional decimal part, optional exponent,
// or the Inf/NAN literals.
func looksNumeric(field []byte, dec byte) bool {
	f := trimASCIISpace(field)
	if len(f) == 0 {
		return false // an empty field fails the float scanner too (NA), so header wins on ties
	}
	i := 0
	if f[i] == '+' || f[i] == '-' {
		i++
	}
	if rest := f[i:]; isASCIIEqualFold(rest, "inf") || isASCIIEqualFold(rest, "infinity") || isASCIIEqualFold(rest, "nan") {
		return true
	}
	digitsSeen := false
	for i < len(f) && isDigit(f[i]) {
		i++
		digitsSeen = true
	}
	if i < len(f) && f[i] == dec {
		i++
		for i < len(f) && isDigit(f[i]) {
			i++
			digitsSeen = true
		}
	}
	if !digitsSeen {
		return false
	}
	if i < len(f) && (f[i] == 'e' || f[i] == 'E') {
		i++
		if i < len(f) && (f[i] == '+' || f[i] == '-') {
			i++
		}
		expDigits := false
		for i < len(f) && isDigit(f[i]) {
			i++
			expDigits = true
		}
		if !expDigits {
			return false
		}
	}
	return i == len(f)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isASCIIEqualFold(a []byte, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ac, bc := a[i], b[i]
		if ac >= 'A' && ac <= 'Z' {
			ac += 'a' - 'A'
		}
		if bc >= 'A' && bc <= 'Z' {
			bc += 'a' - 'A'
		}
		if ac != bc {
			return false
		}
	}
	return true
}

func trimASCIISpace(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}

// splitRow splits one tokenized row into raw field byte-slices, honoring
// the quote rule enough to strip a single layer of quoting — used only for
// header capture / numeric-classification, not for the hot body-read path.
func splitRow(data []byte, start, end int, d Dialect) [][]byte {
	var fields [][]byte
	fieldStart := start
	i := start
	inQuote := false
	for i < end {
		c := data[i]
		if d.Quote != NoneByte && c == d.Quote && i == fieldStart {
			inQuote = true
			i++
			continue
		}
		if inQuote {
			if c == d.Quote {
				if d.QuoteRule == QuoteDoubled && i+1 < end && data[i+1] == d.Quote {
					i += 2
					continue
				}
				inQuote = false
			}
			i++
			continue
		}
		if c == d.Sep {
			fields = append(fields, stripQuotes(data[fieldStart:i], d))
			i++
			fieldStart = i
			continue
		}
		i++
	}
	fields = append(fields, stripQuotes(data[fieldStart:end], d))
	return fields
}

func stripQuotes(f []byte, d Dialect) []byte {
	if d.Quote != NoneByte && len(f) >= 2 && f[0] == d.Quote && f[len(f)-1] == d.Quote {
		return f[1 : len(f)-1]
	}
	return f
}

// ResolveHeader decides whether the first accepted row (data[start:rowEnd])
// is a header, per spec.md §4.3: header iff every field fails the float
// scanner, unless the caller has an explicit preference. When it is a data
// row, default (zero-length) name slices are synthesized; when it is a
// header, each field is captured as an (offset, length) slice.
//
// rowEnd is the offset of the end of the row's content (excluding its
// terminator), computed by the caller from the dialect's tokenizer.
func ResolveHeader(data []byte, start, rowEnd int, d Dialect, pref HeaderPreference, ncol int) (isHeader bool, names []NameSlice) {
	fields := splitRow(data, start, rowEnd, d)

	switch pref {
	case HeaderTrue:
		isHeader = true
	case HeaderFalse:
		isHeader = false
	default:
		isHeader = true
		for _, f := range fields {
			if looksNumeric(f, d.Dec) {
				isHeader = false
				break
			}
		}
	}

	names = make([]NameSlice, ncol)
	if !isHeader {
		return isHeader, names
	}

	// Recompute offsets (not content) for header slices: splitRow already
	// stripped quotes, so re-derive byte offsets the same way to keep
	// NameSlice pointing at raw input bytes rather than a copy.
	offsets := fieldOffsets(data, start, rowEnd, d)
	for i := 0; i < ncol && i < len(offsets); i++ {
		names[i] = offsets[i]
	}
	return isHeader, names
}

// fieldOffsets mirrors splitRow but returns (offset, length) slices of the
// raw (unquoted-stripped) bytes for each field, trimmed of surrounding
// whitespace, so header names are stable NameSlices into the input window.
func fieldOffsets(data []byte, start, end int, d Dialect) []NameSlice {
	var out []NameSlice
	fieldStart := start
	i := start
	inQuote := false
	emit := func(s, e int) {
		// strip one layer of quoting from the offsets themselves
		if d.Quote != NoneByte && e-s >= 2 && data[s] == d.Quote && data[e-1] == d.Quote {
			s++
			e--
		}
		for s < e && (data[s] == ' ' || data[s] == '\t') {
			s++
		}
		for e > s && (data[e-1] == ' ' || data[e-1] == '\t') {
			e--
		}
		out = append(out, NameSlice{Offset: s, Length: e - s})
	}
	for i < end {
		c := data[i]
		if d.Quote != NoneByte && c == d.Quote && i == fieldStart {
			inQuote = true
			i++
			continue
		}
		if inQuote {
			if c == d.Quote {
				if d.QuoteRule == QuoteDoubled && i+1 < end && data[i+1] == d.Quote {
					i += 2
					continue
				}
				inQuote = false
			}
			i++
			continue
		}
		if c == d.Sep {
			emit(fieldStart, i)
			i++
			fieldStart = i
			continue
		}
		i++
	}
	emit(fieldStart, end)
	return out
}

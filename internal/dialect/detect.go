package dialect

import "bytes"

// bom is the three-byte UTF-8 byte order mark, tolerated at the start of
// the input (spec.md §4.2, §6.3).
var bom = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns the offset into data past a leading UTF-8 BOM, or 0 if
// none is present.
func SkipBOM(data []byte) int {
	if bytes.HasPrefix(data, bom) {
		return len(bom)
	}
	return 0
}

// DetectEOL scans from start until the first unquoted \n or \r and
// classifies the line terminator, per spec.md §4.2: \r\n, lone \r, lone \n
// are distinguished; \n\r is diagnosed (by the caller, via the returned
// EOLLFCR) as unusual but accepted. Returns the EOL style and the offset of
// the byte immediately following the terminator.
func DetectEOL(data []byte, start int) (EOL, int) {
	for i := start; i < len(data); i++ {
		switch data[i] {
		case '"':
			// Skip a quoted span so a line break inside it is not taken for
			// the terminator; a quote with no closing partner is plain data.
			if j := bytes.IndexByte(data[i+1:], '"'); j >= 0 {
				i += j + 1
			}
		case '\n':
			if i+1 < len(data) && data[i+1] == '\r' {
				return EOLLFCR, i + 2
			}
			return EOLLF, i + 1
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				return EOLCRLF, i + 2
			}
			return EOLCR, i + 1
		}
	}
	// No terminator found at all (single-line input): default to LF so the
	// rest of the pipeline has something to advance by.
	return EOLLF, len(data)
}

// candidateResult tracks the detector's running score for one (sep,
// quoteRule) pair: the longest contiguous run of rows sharing the same
// field count, and that field count.
type candidateResult struct {
	sep          byte
	rule         QuoteRule
	bestRun      int
	bestFields   int
	rowsExamined int
	failed       bool // a row could not be tokenized under this rule
}

// maxDetectRows is the number of candidate rows scanned per (sep, rule)
// pair during detection (spec.md §4.2: "up to 100 rows").
const maxDetectRows = 100

// Detect enumerates DefaultCandidateSeparators × DefaultCandidateQuoteRules
// in that order, tokenizing up to maxDetectRows rows of data[start:] under
// each pair, and returns the pair whose longest contiguous same-field-count
// run is longest. Ties favor a larger field count, then a non-space
// separator (spec.md §4.2). eol is the previously detected line terminator.
// For each separator the quote rules are tried strictest first, and a
// looser rule is tried only when a stricter one failed to tokenize one of
// the rows it examined.
//
// Detect returns errNoDialect only when no candidate tokenized any row (an
// empty body, for instance). A single-row or single-field file still
// yields a dialect, since a one-row file is trivially "consistent".
func Detect(data []byte, start int, eol EOL) (Dialect, int, error) {
	var best candidateResult
	haveBest := false

	for _, sep := range DefaultCandidateSeparators {
		for _, rule := range DefaultCandidateQuoteRules {
			cr := scoreCandidate(data, start, eol, sep, rule)
			if !haveBest || better(cr, best) {
				best = cr
				haveBest = true
			}
			if !cr.failed {
				break // this rule fits every row examined; looser rules are not tried
			}
		}
	}

	if !haveBest || best.rowsExamined == 0 {
		return Dialect{}, start, errNoDialect
	}

	quote := byte('"')
	if best.rule == QuoteNone {
		quote = NoneByte
	}
	d := Dialect{
		Sep:       best.sep,
		EOL:       eol,
		Quote:     quote,
		QuoteRule: best.rule,
		Dec:       '.',
	}
	if d.Sep == d.Dec {
		d.Dec = ','
	}
	return d, start, nil
}

// better reports whether a is a stronger detector candidate than b, per
// spec.md §4.2's tie-break order: longest run, then more fields, then a
// non-space separator.
func better(a, b candidateResult) bool {
	if a.bestRun != b.bestRun {
		return a.bestRun > b.bestRun
	}
	if a.bestFields != b.bestFields {
		return a.bestFields > b.bestFields
	}
	aSpace := a.sep == ' '
	bSpace := b.sep == ' '
	if aSpace != bSpace {
		return !aSpace
	}
	return false
}

// scoreCandidate tokenizes up to maxDetectRows rows of data[start:] under
// (sep, rule) and returns the longest contiguous run of equal field counts.
func scoreCandidate(data []byte, start int, eol EOL, sep byte, rule QuoteRule) candidateResult {
	res := candidateResult{sep: sep, rule: rule}

	pos := start
	prevFields := -1
	runLen := 0

	for rows := 0; rows < maxDetectRows && pos < len(data); rows++ {
		fields, next, ok := tokenizeRow(data, pos, len(data), eol, sep, rule)
		if !ok {
			// This row cannot be tokenized under this rule at all (e.g. an
			// unterminated quote past the lookahead bound); treat it as
			// breaking any run in progress and stop scoring this candidate;
			// Detect then goes on to the next, looser rule for this separator.
			res.failed = true
			break
		}
		res.rowsExamined++
		if fields == prevFields {
			runLen++
		} else {
			runLen = 1
			prevFields = fields
		}
		if runLen > res.bestRun || (runLen == res.bestRun && fields > res.bestFields) {
			res.bestRun = runLen
			res.bestFields = fields
		}
		if next <= pos {
			break // no progress; avoid spinning on a degenerate input
		}
		pos = next
	}

	return res
}

// tokenizeRow counts the fields in one row starting at pos under (sep,
// rule), returning the field count, the offset of the next row, and whether
// tokenization succeeded (false if a quote rule 0/1 field exceeded
// MaxQuoteLookaheadLines without finding a close, or if its closing quote
// is followed by something other than the separator or a line terminator).
func tokenizeRow(data []byte, pos, limit int, eol EOL, sep byte, rule QuoteRule) (fields int, next int, ok bool) {
	i := pos
	fields = 1
	quoteLines := 0

	for i < limit {
		c := data[i]
		switch {
		case (rule == QuoteDoubled || rule == QuoteBackslash) && c == '"':
			i++
			closed := false
			for i < limit {
				if data[i] == '\n' {
					quoteLines++
					if quoteLines > MaxQuoteLookaheadLines {
						return 0, 0, false
					}
				}
				if rule == QuoteBackslash && data[i] == '\\' && i+1 < limit {
					i += 2
					continue
				}
				if data[i] == '"' {
					if rule == QuoteDoubled && i+1 < limit && data[i+1] == '"' {
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				i++
			}
			if !closed {
				return 0, 0, false
			}
			if i < limit && data[i] != sep && !isEOLByte(data[i]) {
				return 0, 0, false
			}
		case rule == QuoteUnescaped && c == '"':
			// Mirror scan.Field's quote-then-separator terminator search: no
			// EOL may occur before it, and a stray leading quote (no such
			// terminator found) is just literal data, not a field boundary.
			j := i + 1
			closed := false
			for j < limit {
				if isEOLByte(data[j]) {
					break
				}
				if data[j] == '"' && (j+1 >= limit || data[j+1] == sep || isEOLByte(data[j+1])) {
					closed = true
					j++
					break
				}
				j++
			}
			if closed {
				i = j
			} else {
				i++
			}
		case c == sep:
			fields++
			i++
		case isEOLByte(c):
			next = advancePastEOL(data, i, eol)
			return fields, next, true
		default:
			i++
		}
	}
	// Ran off the end of input without a terminator: last row of the file.
	return fields, limit, true
}

func isEOLByte(c byte) bool {
	return c == '\n' || c == '\r'
}

// advancePastEOL moves past the terminator starting at i, honoring eolLen
// arithmetic in one place as spec.md §9's design notes require.
func advancePastEOL(data []byte, i int, eol EOL) int {
	term := eol.Bytes()
	if i+len(term) <= len(data) && bytes.Equal(data[i:i+len(term)], term) {
		return i + len(term)
	}
	// Mismatched terminator at this position (e.g. file mixes styles);
	// advance past whatever single byte we're looking at.
	return i + 1
}

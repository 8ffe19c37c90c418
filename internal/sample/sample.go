// Package sample implements the sampler & type inferer (spec.md §4.4): a
// jump-point scan of the file body that infers each column's type,
// estimates the row count from line-length statistics, and escalates the
// dialect's quote rule if a sampled row cannot be tokenized under it.
package sample

import (
	"math"

	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/scan"
	"github.com/csvquery/fread/internal/typecode"
)

// maxRowsPerPoint is "up to 100 rows" probed at each jump point.
const maxRowsPerPoint = 100

// maxJump0Rows bounds the very first window used to size jump0size.
const maxJump0Rows = 100

// Result is everything the body reader needs before it can allocate and
// start parsing: the inferred per-column types, the dialect (with any
// quote-rule escalation folded in), and row-count sizing.
type Result struct {
	Types            []typecode.Type
	QuoteRule        dialect.QuoteRule
	RowCountEstimate int
	InitialAlloc     int
	MaxLineLength    int
	Exact            bool // true if the sample covered every line in the body
}

// Sample runs the full sampler over data[start:] under dialect d with ncol
// columns, returning inferred types and sizing. naStrings configures which
// field spellings count as missing (spec.md §6); a missing field never
// blocks type promotion. boolZeroOne, when set, lets "0"/"1" count as a
// Bool8 value during inference, consistent with the caller's read option.
// disableSampling forces the deterministic two-point pass (first window
// plus final window only), trading inference accuracy on very large files
// for a reproducible sample across runs.
func Sample(data []byte, start int, d dialect.Dialect, ncol int, naStrings []string, boolZeroOne bool, disableSampling bool) (Result, error) {
	types := make([]typecode.Type, ncol)
	for i := range types {
		types[i] = typecode.Bool8 // narrowest real type; Drop means "excluded", never an inference starting point
	}
	s := &sampler{
		data:        data,
		d:           d,
		ncol:        ncol,
		naStrings:   naStrings,
		boolZeroOne: boolZeroOne,
		types:       types,
		minLine:     math.MaxInt64,
	}

	bodyBytes := len(data) - start
	if bodyBytes <= 0 {
		return Result{Types: s.types, QuoteRule: d.QuoteRule}, nil
	}

	jump0End := s.sampleWindow(start, maxJump0Rows)
	jump0Size := jump0End - start
	if jump0Size <= 0 {
		jump0Size = 1
	}

	jumps := 2
	if !disableSampling {
		if bodyBytes > 200*jump0Size {
			jumps = 101
		} else if bodyBytes > 20*jump0Size {
			jumps = 11
		}
	}

	coveredEnd := jump0End
	if jumps > 2 {
		stride := bodyBytes / (jumps - 1)
		if stride < 1 {
			stride = 1
		}
		for j := 1; j < jumps-1; j++ {
			target := start + j*stride
			if target <= coveredEnd {
				continue
			}
			pos, ok := nextGoodLine(data, target, d, ncol)
			if !ok {
				continue
			}
			end := s.sampleWindow(pos, maxRowsPerPoint)
			if end > coveredEnd {
				coveredEnd = end
			}
		}
	}

	// Final jump, anchored near end-of-file.
	lastTarget := len(data) - jump0Size
	if lastTarget < start {
		lastTarget = start
	}
	exact := false
	if lastTarget > coveredEnd {
		if pos, ok := nextGoodLine(data, lastTarget, d, ncol); ok {
			s.sampleWindow(pos, maxRowsPerPoint)
		}
	} else {
		// The final window would overlap what is already sampled: continue
		// from coveredEnd instead, so the rows in between are not skipped.
		// The count is exact only if this reaches EOF with no gap before it.
		end := s.sampleWindow(coveredEnd, maxRowsPerPoint)
		exact = coveredEnd == jump0End && end >= len(data)
	}

	return s.finish(bodyBytes, exact), nil
}

type sampler struct {
	data        []byte
	d           dialect.Dialect
	ncol        int
	naStrings   []string
	boolZeroOne bool
	types       []typecode.Type

	nRows    int64
	sumLen   int64
	sumSqLen int64
	minLine  int64
	maxLine  int64
}

// sampleWindow probes up to maxRows rows starting at pos and returns the
// offset immediately after the last row consumed.
func (s *sampler) sampleWindow(pos int, maxRows int) int {
	for i := 0; i < maxRows && pos < len(s.data); i++ {
		next, ok := s.sampleRow(pos)
		if !ok {
			break
		}
		if next <= pos {
			break
		}
		s.recordLineLength(next - pos)
		pos = next
	}
	return pos
}

// sampleRow parses one row at pos field-by-field, promoting each column's
// type on failure and restarting the whole row (with the quote rule bumped
// globally) if even STRING cannot satisfy a field. Returns the offset of
// the next row and whether sampling succeeded.
func (s *sampler) sampleRow(pos int) (int, bool) {
	for attempt := 0; attempt < 8; attempt++ { // bounded: each attempt bumps the quote rule, which is itself bounded
		next, ok := s.tryRow(pos)
		if ok {
			return next, true
		}
		if s.d.QuoteRule == dialect.QuoteNone {
			return 0, false // no wider quote rule to try; give up on this row
		}
		s.d.QuoteRule++
	}
	return 0, false
}

// tryRow attempts one row under the sampler's current quote rule.
func (s *sampler) tryRow(pos int) (int, bool) {
	i := pos
	for col := 0; col < s.ncol; col++ {
		start, end, next, _ := scan.Field(s.data, i, s.d)
		field := s.data[start:end]

		if !scan.IsNAString(field, s.naStrings) {
			for {
				cur := s.types[col]
				if cur >= typecode.String {
					break // STRING accepts anything; nothing left to fail
				}
				if s.accepts(cur, field) {
					break
				}
				s.types[col] = cur.Wider()
			}
		}

		i = next
		if i >= len(s.data) {
			if col == s.ncol-1 {
				return len(s.data), true
			}
			return 0, false
		}
		if col < s.ncol-1 {
			if s.data[i] != s.d.Sep {
				return 0, false // short row under this dialect; treat as a tokenization failure
			}
			i++
		}
	}
	if i < len(s.data) && !scan.AtEOL(s.data, i, s.d) {
		return 0, false // trailing bytes before EOL: too many fields
	}
	return scan.SkipEOL(s.data, i, s.d), true
}

func (s *sampler) accepts(t typecode.Type, field []byte) bool {
	switch t {
	case typecode.Drop:
		return true
	case typecode.Bool8:
		_, ok := scan.Bool8(field, s.boolZeroOne)
		return ok
	case typecode.Int32:
		_, ok := scan.Int32(field)
		return ok
	case typecode.Int64:
		_, ok := scan.Int64(field)
		return ok
	case typecode.Float64:
		_, ok := scan.Float64(field)
		return ok
	default:
		return true
	}
}

func (s *sampler) recordLineLength(n int) {
	s.nRows++
	s.sumLen += int64(n)
	s.sumSqLen += int64(n) * int64(n)
	if int64(n) < s.minLine {
		s.minLine = int64(n)
	}
	if int64(n) > s.maxLine {
		s.maxLine = int64(n)
	}
}

func (s *sampler) finish(bodyBytes int, exact bool) Result {
	if s.nRows == 0 {
		return Result{Types: s.types, QuoteRule: s.d.QuoteRule, MaxLineLength: 1}
	}

	mean := float64(s.sumLen) / float64(s.nRows)
	variance := float64(s.sumSqLen)/float64(s.nRows) - mean*mean
	if variance < 0 {
		variance = 0
	}
	sd := math.Sqrt(variance)

	minLine := float64(s.minLine)
	if minLine <= 0 {
		minLine = 1
	}

	est := int(float64(bodyBytes) / mean)
	if est < 1 {
		est = 1
	}

	denom := mean - 2*sd
	if denom < minLine {
		denom = minLine
	}
	alloc := int(float64(bodyBytes) / denom)

	lower := int(1.1 * float64(est))
	upper := 2 * est
	if alloc < lower {
		alloc = lower
	}
	if alloc > upper {
		alloc = upper
	}
	if alloc < 1 {
		alloc = 1
	}

	if exact {
		alloc = int(s.nRows)
		est = int(s.nRows)
	}

	return Result{
		Types:            s.types,
		QuoteRule:        s.d.QuoteRule,
		RowCountEstimate: est,
		InitialAlloc:     alloc,
		MaxLineLength:    int(s.maxLine),
		Exact:            exact,
	}
}

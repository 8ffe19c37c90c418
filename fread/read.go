package fread

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/csvquery/fread/internal/body"
	"github.com/csvquery/fread/internal/cache"
	"github.com/csvquery/fread/internal/collab"
	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/mapper"
	"github.com/csvquery/fread/internal/sample"
	"github.com/csvquery/fread/internal/scan"
	"github.com/csvquery/fread/internal/table"
	"github.com/csvquery/fread/internal/typecode"
)

// Result is a fully materialized read: the columnar Table plus a Close
// that releases the mapped input. Any STRING column's cells are
// StringSlice views into the mapped bytes (table.Table.Raw), so a caller
// that reads them must do so before calling Close, or copy them out first.
type Result struct {
	*table.Table
	closeFn func() error
	closed  bool
}

// Close releases the mapped input. Safe to call more than once.
func (r *Result) Close() error {
	if r.closed || r.closeFn == nil {
		return nil
	}
	r.closed = true
	return r.closeFn()
}

// Read executes one full parse per spec.md §4. alloc, override, progress,
// and diag are the collab collaborators a caller can override; any of
// them may be nil, in which case the package's no-op/default
// implementation is used. ctx is checked for cancellation between phases
// (dialect detection, sampling, body read, reread); it is never threaded
// into the per-row hot loop. If override.Finalize rejects the resolved
// column types/names, Read returns (nil, nil): a clean cancel, distinct
// from ctx cancellation, which always returns a non-nil error wrapping
// ErrCancelled.
func Read(ctx context.Context, opts Options, alloc collab.Allocator, override collab.UserOverride, progress collab.ProgressSink, diag collab.DiagnosticSink) (*Result, error) {
	if alloc == nil {
		alloc = collab.SliceAllocator{}
	}
	if override == nil {
		override = collab.NoopOverride{}
	}
	if progress == nil {
		progress = collab.NoopProgress{}
	}
	if diag == nil {
		diag = collab.NewStdDiagnostics(false)
	}
	if opts.NThread < 1 {
		opts.NThread = 1
	}
	if opts.SkipNRow > 0 && opts.SkipString != "" {
		return nil, setupErrorf("skipNrow and skipString are mutually exclusive")
	}

	m, cachePath, err := openInput(opts.Input)
	if err != nil {
		return nil, setupErrorf("%v", err)
	}

	res, err := read(ctx, opts, m.Data(), cachePath, alloc, override, progress, diag)
	if err != nil {
		m.Close()
		return nil, err
	}
	if res == nil {
		// userOverride.Finalize returned false: clean cancel, no data, no
		// error (spec.md §7).
		m.Close()
		return nil, nil
	}
	res.closeFn = m.Close
	return res, nil
}

// openInput resolves opts.Input to a Mapper, per spec.md §6.3: a literal
// byte string (one containing a line terminator) is wrapped in-memory;
// anything else is treated as a filesystem path to map. cachePath is ""
// for literal input, since there is no file to key a dialect cache on.
func openInput(input string) (mapper.Mapper, string, error) {
	if bytes.ContainsAny([]byte(input), "\n\r") {
		return mapper.NewBytes([]byte(input)), "", nil
	}
	m, err := mapper.Open(input)
	if err != nil {
		return nil, "", err
	}
	return m, input, nil
}

func read(ctx context.Context, opts Options, data []byte, cachePath string, alloc collab.Allocator, override collab.UserOverride, progress collab.ProgressSink, diag collab.DiagnosticSink) (*Result, error) {
	progress.OnPhase("dialect", 0)

	pos := dialect.SkipBOM(data)
	eol, _ := dialect.DetectEOL(data, pos)
	if eol == dialect.EOLLFCR {
		diag.Warn("line terminator is \\n\\r, which is unusual; reading it as given")
	}

	pos, err := applySkip(data, pos, eol, opts)
	if err != nil {
		return nil, setupErrorf("%v", err)
	}
	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	var (
		cached       cache.Result
		haveCacheHit bool
		dc           *cache.DialectCache
	)
	if cachePath != "" {
		dc = cache.Open(cachePath)
		if info, statErr := os.Stat(cachePath); statErr == nil {
			cr, ok, loadErr := dc.Load(info.Size(), info.ModTime().UnixNano())
			if loadErr != nil {
				diag.Warn("cache: load failed, resampling: %v", loadErr)
			} else if ok {
				cached = cr
				haveCacheHit = true
				diag.Verbose("cache: hit for %s", cachePath)
			}
		}
	}

	var d dialect.Dialect
	switch {
	case opts.Sep != "" || opts.Quote != "" || opts.Dec != "":
		d, err = buildOverrideDialect(opts, eol)
		if err != nil {
			return nil, setupErrorf("%v", err)
		}
	case haveCacheHit:
		d = cached.Dialect
	default:
		d, _, err = dialect.Detect(data, pos, eol)
		if err != nil {
			return nil, dialectError(err)
		}
	}
	diag.Verbose("dialect: sep=%q quote=%q quoteRule=%v dec=%q eol=%v", d.Sep, d.Quote, d.QuoteRule, d.Dec, d.EOL)

	rowEnd, afterFirstRow, ncol := tokenizeFirstRow(data, pos, d)
	if ncol == 0 {
		return nil, shapeErrorf("input has no rows to infer columns from")
	}

	isHeader, names := dialect.ResolveHeader(data, pos, rowEnd, d, headerPreference(opts.Header), ncol)
	if haveCacheHit {
		isHeader = cached.HasHeader
	}

	bodyStart := pos
	colNames := make([]string, ncol)
	if isHeader {
		bodyStart = afterFirstRow
	}
	for i := range colNames {
		switch {
		case isHeader && haveCacheHit && i < len(cached.Names):
			colNames[i] = cached.Names[i]
		case isHeader:
			if nb := names[i].Bytes(data); len(nb) > 0 {
				colNames[i] = string(nb)
			} else {
				colNames[i] = fmt.Sprintf("V%d", i+1)
			}
		default:
			colNames[i] = fmt.Sprintf("V%d", i+1)
		}
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	naStrings := opts.NAStrings
	if len(naStrings) == 0 {
		naStrings = scan.DefaultNAStrings
	}

	progress.OnPhase("sample", 0.1)
	var sampled sample.Result
	if haveCacheHit {
		// Trust the cached types, but still run the (cheap, jump-based)
		// sampler for its line-length statistics: chunk sizing and the
		// initial row-count estimate need them regardless of whether type
		// inference itself was skipped.
		sized, sErr := sample.Sample(data, bodyStart, d, ncol, naStrings, opts.BoolZeroOne, opts.DisableSampling)
		if sErr != nil {
			return nil, shapeErrorf("%v", sErr)
		}
		sampled = sized
		sampled.Types = cached.Types
	} else {
		sampled, err = sample.Sample(data, bodyStart, d, ncol, naStrings, opts.BoolZeroOne, opts.DisableSampling)
		if err != nil {
			return nil, shapeErrorf("%v", err)
		}
		d.QuoteRule = sampled.QuoteRule
	}

	finalTypes := make([]typecode.Type, ncol)
	for i := range finalTypes {
		finalTypes[i] = sampled.Types[i]
		if t, ok := override.ColumnType(colNames[i], i); ok {
			finalTypes[i] = t
		}
		if override.Drop(i) {
			finalTypes[i] = typecode.Drop
		}
		if newName, ok := override.ColumnName(i); ok {
			colNames[i] = newName
		}
	}

	if !override.Finalize(finalTypes, colNames) {
		// Clean cancel (spec.md §6.2, §7): no data, no error, distinct
		// from the ctx-driven ErrCancelled path below.
		return nil, nil
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	nrowEstimate := sampled.InitialAlloc
	if opts.NRowLimit > 0 && opts.NRowLimit < nrowEstimate {
		nrowEstimate = opts.NRowLimit
	}
	if nrowEstimate < 1 {
		nrowEstimate = 1
	}

	tbl, err := alloc.AllocateDT(finalTypes, colNames, nrowEstimate)
	if err != nil {
		return nil, setupErrorf("%v", err)
	}
	tbl.Raw = data

	types := typecode.NewVector(ncol, typecode.Drop)
	for i, t := range finalTypes {
		types.Promote(i, t)
	}

	maxLineLength := sampled.MaxLineLength
	if maxLineLength < 1 {
		maxLineLength = 64
	}
	rowCapHint := nrowEstimate / opts.NThread
	if rowCapHint < 16 {
		rowCapHint = 16
	}
	rowOpts := body.RowOptions{Fill: opts.Fill, StripWhite: opts.StripWhite, SkipEmptyLines: opts.SkipEmptyLines, BoolZeroOne: opts.BoolZeroOne}

	progress.OnPhase("body", 0.3)
	n, err := body.Read(body.Plan{
		Data:          data,
		BodyStart:     bodyStart,
		BodyEnd:       len(data),
		Dialect:       d,
		AssignedTypes: finalTypes,
		NAStrings:     naStrings,
		MaxLineLength: maxLineLength,
		RowCapHint:    rowCapHint,
		Threads:       opts.NThread,
		NrowLimit:     opts.NRowLimit,
		RowOptions:    rowOpts,
	}, types, alloc, tbl, diag)
	if err != nil {
		return nil, classifyBodyError(err)
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	progress.OnPhase("reread", 0.8)
	n, _, err = body.Reread(n, body.RereadPlan{
		Data:          data,
		BodyStart:     bodyStart,
		BodyEnd:       len(data),
		Dialect:       d,
		NAStrings:     naStrings,
		MaxLineLength: maxLineLength,
		RowCapHint:    rowCapHint,
		Threads:       opts.NThread,
		NrowLimit:     opts.NRowLimit,
		RowOptions:    rowOpts,
	}, types, alloc, tbl, diag)
	if err != nil {
		return nil, classifyBodyError(err)
	}

	alloc.SetFinalNrow(tbl, n)

	if dc != nil && !haveCacheHit {
		if info, statErr := os.Stat(cachePath); statErr == nil {
			if saveErr := dc.Save(info.Size(), info.ModTime().UnixNano(), d, types.Snapshot(), colNames, isHeader); saveErr != nil {
				diag.Warn("cache: save failed: %v", saveErr)
			}
		}
	}

	progress.OnPhase("done", 1)
	progress.OnDone()
	return &Result{Table: tbl}, nil
}

// tokenizeFirstRow walks the first accepted row starting at pos under d,
// returning the offset of the row's content end (excluding its
// terminator, for dialect.ResolveHeader), the offset of the row after it,
// and the field count. Neither dialect.Detect nor scan.RowFieldCount
// surface rowEnd directly, so Read needs this one-off tokenization pass.
func tokenizeFirstRow(data []byte, pos int, d dialect.Dialect) (rowEnd, next, ncol int) {
	if pos >= len(data) {
		return pos, pos, 0
	}
	i := pos
	ncol = 1
	for {
		_, _, fnext, _ := scan.Field(data, i, d)
		if fnext >= len(data) {
			return fnext, fnext, ncol
		}
		if scan.AtEOL(data, fnext, d) {
			return fnext, scan.SkipEOL(data, fnext, d), ncol
		}
		i = fnext + 1
		ncol++
	}
}

// buildOverrideDialect builds a Dialect from whichever of opts.Sep/Quote/
// Dec the caller set, defaulting the rest to the common CSV convention
// rather than running auto-detection at all: an explicit override is
// read as "I already know the dialect", not "detect around this one
// field".
func buildOverrideDialect(opts Options, eol dialect.EOL) (dialect.Dialect, error) {
	d := dialect.Dialect{Sep: ',', EOL: eol, Quote: '"', QuoteRule: dialect.QuoteDoubled, Dec: '.'}
	if opts.Sep != "" {
		b, err := singleByte(opts.Sep, "sep")
		if err != nil {
			return dialect.Dialect{}, err
		}
		d.Sep = b
	}
	switch opts.Quote {
	case "":
	case "none":
		d.Quote = dialect.NoneByte
		d.QuoteRule = dialect.QuoteNone
	default:
		b, err := singleByte(opts.Quote, "quote")
		if err != nil {
			return dialect.Dialect{}, err
		}
		d.Quote = b
	}
	if opts.Dec != "" {
		b, err := singleByte(opts.Dec, "dec")
		if err != nil {
			return dialect.Dialect{}, err
		}
		d.Dec = b
	}
	if err := d.Validate(); err != nil {
		return dialect.Dialect{}, err
	}
	return d, nil
}

func singleByte(s, field string) (byte, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%s override must be exactly one byte, got %q", field, s)
	}
	return s[0], nil
}

func headerPreference(s string) dialect.HeaderPreference {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return dialect.HeaderTrue
	case "false", "no", "0":
		return dialect.HeaderFalse
	default:
		return dialect.HeaderAuto
	}
}

// applySkip implements spec.md §6.1's skipNrow/skipString: position pos
// past a junk preamble before dialect detection ever sees the data. Both
// knobs only need the line terminator, not the (not-yet-known) dialect.
func applySkip(data []byte, pos int, eol dialect.EOL, opts Options) (int, error) {
	switch {
	case opts.SkipNRow > 0:
		for i := 0; i < opts.SkipNRow; i++ {
			next, ok := skipOneRawLine(data, pos, eol)
			if !ok {
				return 0, fmt.Errorf("skipNrow %d exceeds the input's line count", opts.SkipNRow)
			}
			pos = next
		}
		return pos, nil
	case opts.SkipString != "":
		needle := []byte(opts.SkipString)
		for pos < len(data) {
			end := lineContentEnd(data, pos)
			if bytes.Contains(data[pos:end], needle) {
				return pos, nil
			}
			next, ok := skipOneRawLine(data, pos, eol)
			if !ok {
				break
			}
			pos = next
		}
		return 0, fmt.Errorf("skipString %q was not found in the input", opts.SkipString)
	default:
		return pos, nil
	}
}

func lineContentEnd(data []byte, pos int) int {
	i := pos
	for i < len(data) && data[i] != '\n' && data[i] != '\r' {
		i++
	}
	return i
}

func skipOneRawLine(data []byte, pos int, eol dialect.EOL) (int, bool) {
	if pos >= len(data) {
		return pos, false
	}
	i := lineContentEnd(data, pos)
	if i >= len(data) {
		return i, true
	}
	term := eol.Bytes()
	if i+len(term) <= len(data) && bytes.Equal(data[i:i+len(term)], term) {
		return i + len(term), true
	}
	return i + 1, true
}

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	default:
		return nil
	}
}

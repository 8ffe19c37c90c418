// Package body implements the parallel body reader and reread controller
// (spec.md §4.5, §4.6): a fork-join worker pool parses disjoint byte-range
// chunks into per-thread buffers, then merges them into the shared Table in
// strict source order inside a serialized critical section.
package body

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/csvquery/fread/internal/collab"
	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/table"
	"github.com/csvquery/fread/internal/typecode"
)

// Plan bundles everything one body-reader pass needs besides the Table it
// writes into, so the same Read function serves both the first pass and
// the reread pass (spec.md §4.6) with different AssignedTypes/WriteMask.
type Plan struct {
	Data          []byte
	BodyStart     int
	BodyEnd       int
	Dialect       dialect.Dialect
	AssignedTypes []typecode.Type // this pass's per-column storage type; see parseChunk
	NAStrings     []string
	MaxLineLength int
	RowCapHint    int // per-chunk RowBuffer starting capacity
	Threads       int
	NrowLimit     int    // 0 means unlimited
	WriteMask     []bool // nil means "write every column"
	RowOptions    RowOptions
}

// RowOptions mirrors the row-shape knobs of fread.Options (spec.md §6.1)
// that change how parseRow interprets a row, as opposed to MaxLineLength
// and the chunking/threading knobs above which only affect scheduling.
type RowOptions struct {
	Fill           bool // pad short rows with NA instead of a shape error
	StripWhite     bool // trim surrounding whitespace off unquoted fields
	SkipEmptyLines bool // a line with no fields at all is not a row
	BoolZeroOne    bool // also accept "0"/"1" as a logical column's values
}

// Read runs one full parallel pass over Plan, merging results into tbl
// starting at row 0, and returns the number of rows actually written
// (which may be less than tbl.Nrow if NrowLimit cut the read short).
func Read(p Plan, types *typecode.Vector, alloc collab.Allocator, tbl *table.Table, diag collab.DiagnosticSink) (int, error) {
	ranges := PlanChunks(p.BodyStart, p.BodyEnd, p.MaxLineLength, p.Threads)
	if len(ranges) == 0 {
		return 0, nil
	}

	threads := p.Threads
	if threads < 1 {
		threads = 1
	}
	if threads > len(ranges) {
		threads = len(ranges)
	}

	m := &merger{
		wantIndex: 0,
		ansi:      0,
		nrowLimit: p.NrowLimit,
	}
	m.cond = sync.NewCond(&m.mu)

	results := make([]chunkResult, len(ranges))
	var nextChunk int64 = -1
	var firstErr error
	var firstErrOnce sync.Once

	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if atomic.LoadInt32(&m.stopTeam) != 0 {
					return
				}
				idx := int(atomic.AddInt64(&nextChunk, 1))
				if idx >= len(ranges) {
					return
				}

				res := parseChunk(p.Data, ranges[idx], idx == 0, p.Dialect, p.AssignedTypes, p.NAStrings, types, p.RowCapHint, p.RowOptions)
				results[idx] = res

				if err := m.merge(idx, p.Data, results, alloc, tbl, diag, p.WriteMask); err != nil {
					firstErrOnce.Do(func() { firstErr = err })
					atomic.StoreInt32(&m.stopTeam, 1)
					m.cond.Broadcast()
					return
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return m.rowsWritten(), firstErr
	}
	return m.rowsWritten(), nil
}

// merger holds the serialized-merge-region state: a ticket lock
// (wantIndex) ensuring chunks merge in ascending index order regardless of
// parse completion order, the shared row cursor ansi, and the byte cursor
// used for the chunk-desync assertion.
type merger struct {
	mu            sync.Mutex
	cond          *sync.Cond
	wantIndex     int
	ansi          int
	prevThreadEnd int
	haveFirst     bool
	stopTeam      int32
	nrowLimit     int
}

func (m *merger) rowsWritten() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ansi
}

// merge waits its turn (ticket lock on idx), then performs the ordered
// critical section: asserts byte-range continuity with the previous
// chunk, reserves a destination row range via ansi, checks the row limit,
// and (outside the lock) hands the buffer to the allocator's push.
func (m *merger) merge(idx int, data []byte, results []chunkResult, alloc collab.Allocator, tbl *table.Table, diag collab.DiagnosticSink, writeMask []bool) error {
	m.mu.Lock()
	for m.wantIndex != idx {
		if atomic.LoadInt32(&m.stopTeam) != 0 {
			m.mu.Unlock()
			return nil
		}
		m.cond.Wait()
	}

	res := results[idx]
	if res.err != nil {
		line := m.ansi + res.failRow + 1
		m.wantIndex++
		m.cond.Broadcast()
		m.mu.Unlock()
		return fmt.Errorf("line %d: %w", line, res.err)
	}

	if m.haveFirst && m.prevThreadEnd != res.start {
		m.wantIndex++
		m.cond.Broadcast()
		m.mu.Unlock()
		return fmt.Errorf("%w: previous chunk ended at byte %d, chunk %d started at byte %d (bytes before: %q, bytes after: %q)",
			ErrChunkDesync, m.prevThreadEnd, idx, res.start, contextAround(data, m.prevThreadEnd), contextAround(data, res.start))
	}
	m.haveFirst = true
	m.prevThreadEnd = res.end

	startRow := m.ansi
	n := res.buf.Len()
	if m.nrowLimit > 0 && startRow+n > m.nrowLimit {
		n = m.nrowLimit - startRow
		if n < 0 {
			n = 0
		}
	}
	m.ansi = startRow + n
	if m.nrowLimit > 0 && m.ansi >= m.nrowLimit {
		atomic.StoreInt32(&m.stopTeam, 1)
	}

	m.wantIndex++
	m.cond.Broadcast()
	m.mu.Unlock()

	if n == 0 {
		return nil
	}
	if n < res.buf.Len() {
		diag.Verbose("chunk %d truncated to %d of %d rows by nrowLimit", idx, n, res.buf.Len())
	}
	return alloc.PushBufferMasked(tbl, startRow, truncatedBuffer(res.buf, n), writeMask)
}

// contextAroundRadius is how many bytes of context the desync error quotes
// on each side of the boundary (spec.md §7 calls for "~50 bytes").
const contextAroundRadius = 50

// contextAround quotes up to contextAroundRadius bytes on each side of pos, for
// the chunk-desync error message; it never indexes out of range.
func contextAround(data []byte, pos int) string {
	lo := pos - contextAroundRadius
	if lo < 0 {
		lo = 0
	}
	hi := pos + contextAroundRadius
	if hi > len(data) {
		hi = len(data)
	}
	if lo >= hi {
		return ""
	}
	return string(data[lo:hi])
}

// truncatedBuffer returns buf unchanged if n covers its full length,
// otherwise a view limited to n rows (used when NrowLimit cuts a chunk
// short mid-buffer).
func truncatedBuffer(buf *table.RowBuffer, n int) *table.RowBuffer {
	if n >= buf.Len() {
		return buf
	}
	return buf.Slice(n)
}

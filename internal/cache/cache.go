// Package cache persists a file's detected dialect and inferred column
// types to a sidecar next to the input, keyed by path/size/mtime, so a
// repeat read of an unchanged file can skip dialect detection and type
// inference (the sampler still runs, for row-count sizing). Modeled on
// internal/schema/manager.go's sidecar-JSON-next-to-the-input idiom and
// internal/indexer/sorter.go's use of github.com/pierrec/lz4/v4 to
// compress on-disk scratch data; here the payload is a small JSON document
// rather than sorted index records, so LZ4's frame writer wraps the JSON
// encoder directly instead of a binary record stream.
package cache

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"

	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/typecode"
)

// entry is the on-disk (pre-compression) shape of one cache record.
type entry struct {
	Size    int64         `json:"size"`
	ModTime int64         `json:"modTime"` // unix nanos
	Dialect dialectDoc    `json:"dialect"`
	Types   []string      `json:"types"`
	Names   []string      `json:"names"`
	HasHdr  bool          `json:"hasHeader"`
}

type dialectDoc struct {
	Sep       byte `json:"sep"`
	EOL       int  `json:"eol"`
	Quote     byte `json:"quote"`
	QuoteRule int  `json:"quoteRule"`
	Dec       byte `json:"dec"`
}

// DialectCache reads/writes the sidecar for one input file.
type DialectCache struct {
	path string // <csvPath>.fread.cache
}

func sidecarPath(csvPath string) string {
	abs, err := filepath.Abs(csvPath)
	if err != nil {
		abs = csvPath
	}
	return abs + ".fread.cache"
}

// Open returns a DialectCache bound to csvPath's sidecar location. It does
// not read the file yet; call Load to attempt that.
func Open(csvPath string) *DialectCache {
	return &DialectCache{path: sidecarPath(csvPath)}
}

// Result is what a cache hit restores, so detection and type inference are
// not redone.
type Result struct {
	Dialect    dialect.Dialect
	Types      []typecode.Type
	Names      []string
	HasHeader  bool
}

// Load returns (result, true, nil) on a cache hit matching size/modTime
// exactly, (zero, false, nil) on a miss (including "file does not exist",
// which is not an error), or a non-nil error only for a genuinely corrupt
// cache file.
func (c *DialectCache) Load(size int64, modTime int64) (Result, bool, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, false, nil
		}
		return Result{}, false, err
	}

	zr := lz4.NewReader(bytes.NewReader(raw))
	decoded, err := io.ReadAll(zr)
	if err != nil {
		return Result{}, false, err
	}

	var e entry
	if err := json.Unmarshal(decoded, &e); err != nil {
		return Result{}, false, err
	}
	if e.Size != size || e.ModTime != modTime {
		return Result{}, false, nil
	}

	types := make([]typecode.Type, len(e.Types))
	for i, s := range e.Types {
		t, ok := typeFromName(s)
		if !ok {
			return Result{}, false, nil // stale/unknown type name: treat as a miss
		}
		types[i] = t
	}

	return Result{
		Dialect: dialect.Dialect{
			Sep:       e.Dialect.Sep,
			EOL:       dialect.EOL(e.Dialect.EOL),
			Quote:     e.Dialect.Quote,
			QuoteRule: dialect.QuoteRule(e.Dialect.QuoteRule),
			Dec:       e.Dialect.Dec,
		},
		Types:     types,
		Names:     e.Names,
		HasHeader: e.HasHdr,
	}, true, nil
}

// Save writes (or overwrites) the sidecar. Failure to save is never fatal
// to a read; callers should log and continue rather than propagate it.
func (c *DialectCache) Save(size, modTime int64, d dialect.Dialect, types []typecode.Type, names []string, hasHeader bool) error {
	e := entry{
		Size:    size,
		ModTime: modTime,
		HasHdr:  hasHeader,
		Names:   names,
		Dialect: dialectDoc{
			Sep:       d.Sep,
			EOL:       int(d.EOL),
			Quote:     d.Quote,
			QuoteRule: int(d.QuoteRule),
			Dec:       d.Dec,
		},
	}
	e.Types = make([]string, len(types))
	for i, t := range types {
		e.Types[i] = t.String()
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return os.WriteFile(c.path, buf.Bytes(), 0o644)
}

func typeFromName(s string) (typecode.Type, bool) {
	switch s {
	case "DROP":
		return typecode.Drop, true
	case "BOOL8":
		return typecode.Bool8, true
	case "INT32":
		return typecode.Int32, true
	case "INT64":
		return typecode.Int64, true
	case "FLOAT64":
		return typecode.Float64, true
	case "STRING":
		return typecode.String, true
	default:
		return 0, false
	}
}

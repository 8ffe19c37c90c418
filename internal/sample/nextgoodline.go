package sample

import (
	"github.com/csvquery/fread/internal/dialect"
	"github.com/csvquery/fread/internal/scan"
)

// nextGoodLine delegates to the shared scanner helper — see
// internal/scan.NextGoodLine for the resynchronization algorithm shared
// with the body reader's chunk-boundary handling.
func nextGoodLine(data []byte, pos int, d dialect.Dialect, ncol int) (int, bool) {
	return scan.NextGoodLine(data, pos, d, ncol)
}

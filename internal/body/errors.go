package body

import "errors"

// ErrChunkDesync is wrapped into the error returned by the ordered merge
// region when one chunk's parsed end does not meet the next chunk's parsed
// start (spec.md §7's chunk-boundary assertion). Callers can match it with
// errors.Is to distinguish a data/dialect bug from an I/O or shape error.
var ErrChunkDesync = errors.New("body: chunk desync")

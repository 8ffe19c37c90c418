package dialect

import "errors"

// errNoDialect is returned by Detect when no (sep, quoteRule) pair yields
// any rows at all (e.g. an empty body) — a terminal "Dialect" error per
// spec.md §7.
var errNoDialect = errors.New("dialect: no separator/quote-rule combination produced a consistent row")

// ErrNoDialect exposes errNoDialect for errors.Is comparisons by callers.
var ErrNoDialect = errNoDialect

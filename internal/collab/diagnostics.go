package collab

import (
	"fmt"
	"io"
	"os"
)

// StdDiagnostics writes verbose/warning trace lines to an io.Writer
// (stderr by default), in the same plain "[component] message" style
// internal/indexer/scanner.go and internal/server/daemon.go print their
// own progress lines in.
type StdDiagnostics struct {
	W              io.Writer
	VerboseEnabled bool
}

// NewStdDiagnostics returns a DiagnosticSink writing to stderr; verbose
// controls whether Verbose() calls are actually printed (Warn always is).
func NewStdDiagnostics(verbose bool) *StdDiagnostics {
	return &StdDiagnostics{W: os.Stderr, VerboseEnabled: verbose}
}

func (d *StdDiagnostics) Verbose(format string, args ...any) {
	if !d.VerboseEnabled {
		return
	}
	fmt.Fprintf(d.W, "[fread] "+format+"\n", args...)
}

func (d *StdDiagnostics) Warn(format string, args ...any) {
	fmt.Fprintf(d.W, "[fread] warning: "+format+"\n", args...)
}

// StdProgress prints coarse phase progress to an io.Writer, one line per
// OnPhase call (no carriage-return redraw — matching the teacher's
// plain-line console output rather than a TUI progress bar).
type StdProgress struct {
	W io.Writer
}

func NewStdProgress() *StdProgress { return &StdProgress{W: os.Stderr} }

func (p *StdProgress) OnPhase(phase string, fraction float64) {
	fmt.Fprintf(p.W, "[fread] %s: %.0f%%\n", phase, fraction*100)
}

func (p *StdProgress) OnDone() {
	fmt.Fprintln(p.W, "[fread] done")
}

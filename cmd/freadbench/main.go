// Command freadbench generates synthetic delimited-text fixtures and
// benchmarks fread.Read against them, mirroring the teacher's
// cmd/benchmark tool (fixture generation + timed indexer.Run) but driven
// through urfave/cli/v2 subcommands in ChristianF88-cidrx's style instead
// of a single positional argument.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/csvquery/fread/fread"
	"github.com/csvquery/fread/internal/collab"
	cli "github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to a TOML options file (overrides all other read flags)",
	}
	inputFlag = &cli.StringFlag{
		Name:     "input",
		Usage:    "Path to the delimited text file to read",
		Required: true,
	}
	sepFlag        = &cli.StringFlag{Name: "sep", Usage: "Force a separator byte instead of auto-detecting"}
	quoteFlag      = &cli.StringFlag{Name: "quote", Usage: "Force a quote byte, or \"none\""}
	decFlag        = &cli.StringFlag{Name: "dec", Usage: "Force a decimal point byte"}
	headerFlag     = &cli.StringFlag{Name: "header", Usage: "auto (default), true, or false", Value: "auto"}
	naStringsFlag  = &cli.StringSliceFlag{Name: "naStrings", Usage: "Field spellings that count as missing, beyond the empty field"}
	skipNRowFlag   = &cli.IntFlag{Name: "skipNrow", Usage: "Skip this many raw lines before dialect detection"}
	skipStringFlag = &cli.StringFlag{Name: "skipString", Usage: "Skip lines until one contains this substring"}
	stripWhiteFlag = &cli.BoolFlag{Name: "stripWhite", Usage: "Trim surrounding whitespace off unquoted fields"}
	skipEmptyFlag  = &cli.BoolFlag{Name: "skipEmptyLines", Usage: "Treat a blank line as no row at all"}
	fillFlag       = &cli.BoolFlag{Name: "fill", Usage: "Pad short rows with NA instead of a shape error"}
	nrowLimitFlag  = &cli.IntFlag{Name: "nrowLimit", Usage: "Stop after this many body rows (0 = unlimited)"}
	nthreadFlag    = &cli.IntFlag{Name: "nthread", Usage: "Worker goroutines for the body read (0 = GOMAXPROCS)"}
	verboseFlag    = &cli.BoolFlag{Name: "verbose", Usage: "Print the diagnostic trace"}
	progressFlag   = &cli.BoolFlag{Name: "showProgress", Usage: "Print phase progress"}

	outputFlag = &cli.StringFlag{Name: "output", Usage: "Path to write the generated fixture to", Required: true}
	sizeMBFlag = &cli.IntFlag{Name: "sizeMB", Usage: "Approximate fixture size in megabytes", Value: 500}
	seedFlag   = &cli.Int64Flag{Name: "seed", Usage: "Random seed for the synthetic data", Value: 123}
	colsFlag   = &cli.IntFlag{Name: "cols", Usage: "Number of numeric filler columns besides id/code/description", Value: 1}
)

func main() {
	app := &cli.App{
		Name:  "freadbench",
		Usage: "Generate synthetic CSV fixtures and benchmark fread.Read against them",
		Commands: []*cli.Command{
			{
				Name:   "gen",
				Usage:  "Generate a synthetic CSV fixture",
				Flags:  []cli.Flag{outputFlag, sizeMBFlag, seedFlag, colsFlag},
				Action: handleGen,
			},
			{
				Name:  "run",
				Usage: "Read a file with fread and report throughput",
				Flags: []cli.Flag{
					configFlag, inputFlag, sepFlag, quoteFlag, decFlag, headerFlag,
					naStringsFlag, skipNRowFlag, skipStringFlag, stripWhiteFlag,
					skipEmptyFlag, fillFlag, nrowLimitFlag, nthreadFlag, verboseFlag, progressFlag,
				},
				Action: handleRun,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "freadbench:", err)
		os.Exit(1)
	}
}

// handleGen writes a synthetic fixture until it reaches sizeMB, following
// the teacher's cmd/benchmark/main.go row-generation loop (bufio writer,
// fmt.Appendf into a reused buffer) but with a caller-chosen column count
// and output path instead of a hard-coded temp file.
func handleGen(c *cli.Context) error {
	path := c.String("output")
	sizeMB := c.Int("sizeMB")
	ncols := c.Int("cols")
	if ncols < 1 {
		ncols = 1
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := newBufferedWriter(f)
	header := "id,code,description"
	for i := 0; i < ncols; i++ {
		header += fmt.Sprintf(",v%d", i+1)
	}
	w.WriteString(header + "\n")

	rng := rand.New(rand.NewSource(c.Int64("seed")))
	limit := int64(sizeMB) * 1024 * 1024
	var bytesWritten int64
	rows := 0
	buf := make([]byte, 0, 1024)

	for bytesWritten < limit {
		rows++
		buf = buf[:0]
		buf = fmt.Appendf(buf, "%d,US-%d,\"row %d with some padding text to widen the line\"", rows, rng.Intn(1000), rows)
		for i := 0; i < ncols; i++ {
			buf = fmt.Appendf(buf, ",%.3f", rng.Float64()*1000)
		}
		buf = append(buf, '\n')
		n, werr := w.Write(buf)
		if werr != nil {
			return werr
		}
		bytesWritten += int64(n)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("generated %d rows (%.2f MB) at %s\n", rows, float64(bytesWritten)/1024/1024, path)
	return nil
}

// handleRun builds fread.Options from -config (if given) or the
// individual flags, reads the file, and reports throughput the same way
// the teacher's benchmark tool did (MB/s over wall-clock elapsed).
func handleRun(c *cli.Context) error {
	opts, err := optionsFromFlags(c)
	if err != nil {
		return err
	}

	info, err := os.Stat(opts.Input)
	if err != nil {
		return fmt.Errorf("stat %s: %w", opts.Input, err)
	}

	var progress collab.ProgressSink = collab.NoopProgress{}
	if opts.ShowProgress {
		progress = collab.NewStdProgress()
	}
	var diag collab.DiagnosticSink = collab.NewStdDiagnostics(opts.Verbose)

	start := time.Now()
	res, err := fread.Read(context.Background(), opts, nil, nil, progress, diag)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	defer res.Close()
	elapsed := time.Since(start)

	mbPerSec := float64(info.Size()) / 1024 / 1024 / elapsed.Seconds()
	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Rows:       %d\n", res.Nrow)
	fmt.Printf("Columns:    %d\n", len(res.Columns))
	fmt.Printf("Throughput: %.2f MB/s\n", mbPerSec)
	fmt.Printf("Time:       %v\n", elapsed)
	fmt.Printf("--------------------------------------------------\n")
	return nil
}

func optionsFromFlags(c *cli.Context) (fread.Options, error) {
	if cfg := c.String("config"); cfg != "" {
		opts, err := fread.LoadOptions(cfg)
		if err != nil {
			return fread.Options{}, err
		}
		if opts.Input == "" {
			opts.Input = c.String("input")
		}
		return opts, nil
	}

	opts := fread.DefaultOptions()
	opts.Input = c.String("input")
	opts.Sep = c.String("sep")
	opts.Quote = c.String("quote")
	opts.Dec = c.String("dec")
	opts.Header = c.String("header")
	opts.NAStrings = c.StringSlice("naStrings")
	opts.SkipNRow = c.Int("skipNrow")
	opts.SkipString = c.String("skipString")
	opts.StripWhite = c.Bool("stripWhite")
	opts.SkipEmptyLines = c.Bool("skipEmptyLines")
	opts.Fill = c.Bool("fill")
	opts.NRowLimit = c.Int("nrowLimit")
	opts.Verbose = c.Bool("verbose")
	opts.ShowProgress = c.Bool("showProgress")
	if n := c.Int("nthread"); n > 0 {
		opts.NThread = n
	}
	return opts, nil
}

func newBufferedWriter(f *os.File) *bufferedWriter {
	return &bufferedWriter{f: f}
}

// bufferedWriter is a tiny hand-rolled write buffer over *os.File (not a
// bufio.Writer), kept local to this file so the generator reads like the
// teacher's benchmark loop (w.Write, w.WriteString, w.Flush). It writes the
// buffered bytes out once they exceed 64 KiB, and on Flush.
type bufferedWriter struct {
	f   *os.File
	buf []byte
}

func (w *bufferedWriter) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf = append(w.buf, b...)
	if len(w.buf) > 64*1024 {
		return w.flushChunk(len(b))
	}
	return len(b), nil
}

func (w *bufferedWriter) flushChunk(written int) (int, error) {
	if _, err := w.f.Write(w.buf); err != nil {
		return 0, err
	}
	w.buf = w.buf[:0]
	return written, nil
}

func (w *bufferedWriter) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	_, err := w.f.Write(w.buf)
	w.buf = w.buf[:0]
	return err
}

var _ = filepath.Base // kept for parity with the teacher's import set; unused otherwise

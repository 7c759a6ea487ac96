// SPDX-License-Identifier: MPL-2.0

// Package driver runs the cats pipeline over a list of inputs: it sniffs each
// input's byte-order mark, transcodes UTF-16, feeds the shared text filter and
// sends the result to standard output or back into the input file.
package driver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/invowk/cats/internal/bom"
	"github.com/invowk/cats/internal/config"
	"github.com/invowk/cats/internal/filter"
	"github.com/invowk/cats/internal/issue"
	"github.com/invowk/cats/internal/overwrite"
	"github.com/invowk/cats/internal/utf16"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	// StdinArg is the file argument that selects standard input.
	StdinArg = "-"
	// StdinName names standard input in diagnostics.
	StdinName = "STDIN"
)

// ErrIsDirectory is wrapped by the error returned for directory arguments.
var ErrIsDirectory = errors.New("is a directory")

type (
	// Options are the dependencies of a Driver.
	Options struct {
		Config config.Config
		Fs     afero.Fs
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		Logger *log.Logger
		// StdoutIsTerminal makes standard output flush after every line.
		StdoutIsTerminal bool
	}

	// Driver processes the inputs of one invocation. The filter state it owns
	// carries over from one input to the next.
	Driver struct {
		cfg         config.Config
		fs          afero.Fs
		stdin       io.Reader
		stderr      io.Writer
		logger      *log.Logger
		interactive bool

		out       *lockedSink
		filter    *filter.Filter
		rewriter  *overwrite.Coordinator
		interrupt sync.Once
	}

	// report is what the verbose summary says about one input.
	report struct {
		name        string
		sawCR       bool
		mark        bom.Kind
		overwritten bool
	}
)

// New validates cfg and returns a Driver ready to Run.
func New(opts Options) (*Driver, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	return &Driver{
		cfg:         opts.Config,
		fs:          fsys,
		stdin:       opts.Stdin,
		stderr:      opts.Stderr,
		logger:      logger,
		interactive: opts.StdoutIsTerminal,
		out:         newLockedSink(opts.Stdout, opts.Config.Output.BufferSize),
		filter: filter.New(filter.Options{
			LineNumbers:   opts.Config.LineNumbers,
			ShowControl:   opts.Config.ShowControl,
			SuppressBlank: opts.Config.SuppressBlank,
		}),
		rewriter: overwrite.New(fsys, opts.Config.Rewrite.MaxPathLength, logger),
	}, nil
}

// Run processes args in order; no args means standard input. The first
// failure stops the run.
func (d *Driver) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{StdinArg}
	}

	if d.cfg.Overwrite && slices.Contains(args, StdinArg) {
		return issue.NewErrorContext().
			WithSuggestion("Pass file names to overwrite, or drop -o to write to standard output").
			Wrap(errors.New("cannot overwrite standard input")).
			BuildError(issue.KindUsage)
	}

	for _, arg := range args {
		if err := ctx.Err(); err != nil {
			return err
		}

		rep, err := d.process(arg)
		if err != nil {
			return err
		}
		if d.cfg.Verbose {
			d.summarize(rep)
		}
	}

	return nil
}

// Interrupt ends output early: it writes a line feed to standard output,
// reports the interruption when verbose and flushes. Later calls do nothing.
func (d *Driver) Interrupt() {
	d.interrupt.Do(func() {
		if err := d.out.interrupt(); err != nil {
			d.logger.Debug("flush on interrupt failed", "err", err)
		}
		if d.cfg.Verbose {
			fmt.Fprintf(d.stderr, "%s: Interrupted.\n", config.AppName)
		}
	})
}

func (d *Driver) process(arg string) (report, error) {
	if arg == StdinArg {
		rep := report{name: StdinName}
		var err error
		rep.sawCR, rep.mark, err = d.pipe(d.stdin, d.out, filter.FlushEachLine)
		return rep, issue.IO(StdinName, err)
	}

	info, err := d.fs.Stat(arg)
	if err != nil {
		return report{}, issue.IO(arg, err)
	}
	if info.IsDir() {
		return report{}, issue.IO(arg, ErrIsDirectory)
	}

	if d.cfg.Overwrite {
		return d.overwrite(arg)
	}
	return d.stream(arg)
}

// stream filters the file at path to standard output.
func (d *Driver) stream(path string) (rep report, err error) {
	rep.name = path

	f, err := d.fs.Open(path)
	if err != nil {
		return rep, issue.IO(path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = issue.IO(path, closeErr)
		}
	}()

	rep.sawCR, rep.mark, err = d.pipe(f, d.out, d.stdoutPolicy())
	if err != nil {
		return rep, issue.IO(path, err)
	}
	return rep, nil
}

// overwrite filters the file at path back into itself.
func (d *Driver) overwrite(path string) (report, error) {
	rep := report{name: path, overwritten: true}

	err := d.rewriter.Rewrite(path, func(src io.Reader, dst io.Writer) error {
		w := bufio.NewWriterSize(dst, d.cfg.Output.BufferSize)
		var err error
		rep.sawCR, rep.mark, err = d.pipe(src, w, filter.FlushAtEnd)
		return err
	})
	return rep, err
}

// pipe skips the mark at the start of src, decodes UTF-16 when the mark calls
// for it and runs the shared filter into dst.
func (d *Driver) pipe(src io.Reader, dst filter.Sink, policy filter.FlushPolicy) (bool, bom.Kind, error) {
	in, mark, err := bom.Skip(src)
	if err != nil {
		return false, bom.None, err
	}
	d.logger.Debug("sniffed byte-order mark", "bom", mark)

	var (
		r       io.ByteReader = in
		decoder *utf16.Decoder
	)
	if order, ok := mark.Endianness(); ok {
		decoder = utf16.NewDecoder(order)
		r = bufio.NewReader(utf16.NewReader(in, decoder))
	}

	res, err := d.filter.Run(r, dst, policy)
	if err != nil {
		return false, mark, err
	}

	sawCR := res.SawCR
	if decoder != nil {
		sawCR = sawCR || decoder.SawCR()
	}
	return sawCR, mark, nil
}

func (d *Driver) stdoutPolicy() filter.FlushPolicy {
	if d.cfg.Unbuffered || d.interactive {
		return filter.FlushEachLine
	}
	return filter.FlushAtEnd
}

// summarize writes the verbose line for one input. When standard output was
// left mid-line the summary starts on a fresh line.
func (d *Driver) summarize(rep report) {
	var msg []byte
	if !rep.overwritten && !d.filter.AtLineStart() {
		msg = append(msg, '\n')
	}

	msg = fmt.Appendf(msg, "%s: %s: ", config.AppName, rep.name)
	if rep.sawCR {
		msg = append(msg, "Stripped CRs from line ends"...)
	} else {
		msg = append(msg, "No CRs found"...)
	}
	if rep.mark != bom.None {
		msg = fmt.Appendf(msg, ", converted %s to UTF-8", rep.mark)
	} else {
		msg = append(msg, ", no BOM found"...)
	}
	if rep.overwritten {
		msg = append(msg, ", overwrote file"...)
	}
	msg = append(msg, ".\n"...)

	if _, err := d.stderr.Write(msg); err != nil {
		d.logger.Debug("writing summary failed", "err", err)
	}
}

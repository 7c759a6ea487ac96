// SPDX-License-Identifier: MPL-2.0

// Package filter implements the byte-level text filter behind cats: it strips
// carriage returns, optionally collapses blank lines, renders control bytes in
// caret notation and prefixes lines with numbers.
//
// A Filter is stateful. Line numbering and the "at line start" state persist
// across successive Run calls, which is how numbering continues across
// concatenated inputs.
package filter

import (
	"errors"
	"fmt"
	"io"
)

const (
	cr = '\r'
	lf = '\n'
)

// FlushPolicy controls when Run flushes the sink.
type FlushPolicy int

const (
	// FlushAtEnd flushes only when the input is exhausted.
	FlushAtEnd FlushPolicy = iota
	// FlushEachLine additionally flushes after every line feed read.
	FlushEachLine
)

type (
	// Sink receives filtered output.
	Sink interface {
		io.Writer
		io.ByteWriter
		Flush() error
	}

	// Options selects the optional transformations.
	Options struct {
		// LineNumbers prefixes every emitted line with "%6d\t".
		LineNumbers bool
		// ShowControl renders bytes 0x00-0x1F in caret notation; LF becomes "$\n".
		ShowControl bool
		// SuppressBlank drops CR and LF bytes read at the start of a line.
		SuppressBlank bool
	}

	// Result describes one Run.
	Result struct {
		// SawCR is set when at least one carriage return was read.
		SawCR bool
	}

	// Filter carries the state shared by every input of one invocation.
	Filter struct {
		opts Options

		line        int
		atLineStart bool
		last        byte
	}
)

// controlSeqs maps bytes 0x00-0x1F to their rendering. LF renders as "$"
// and is then emitted raw.
var controlSeqs = [...]string{
	"^@", "^A", "^B", "^C", "^D", "^E", "^F", "^G",
	"^H", "^I", "$", "^K", "^L", "^M", "^N", "^O",
	"^P", "^Q", "^R", "^S", "^T", "^U", "^V", "^W",
	"^X", "^Y", "^Z", "^[", "^\\", "^]", "^^", "^_",
}

// New returns a Filter positioned at the start of line 1.
func New(opts Options) *Filter {
	return &Filter{opts: opts, atLineStart: true}
}

// Line returns the number of the last line that received a line number.
func (f *Filter) Line() int {
	return f.line
}

// AtLineStart reports whether the last byte emitted was a line feed, or
// nothing has been emitted yet.
func (f *Filter) AtLineStart() bool {
	return f.atLineStart
}

// Run filters src into dst until src is exhausted and then flushes dst.
// Errors from src other than io.EOF and every error from dst are returned;
// dst is not flushed after an error.
func (f *Filter) Run(src io.ByteReader, dst Sink, policy FlushPolicy) (Result, error) {
	var res Result

	for {
		if f.last == lf {
			f.atLineStart = true
			if policy == FlushEachLine {
				if err := dst.Flush(); err != nil {
					return res, err
				}
			}
		}

		c, err := src.ReadByte()
		if err != nil {
			f.last = 0
			if errors.Is(err, io.EOF) {
				return res, dst.Flush()
			}
			return res, err
		}
		f.last = c

		if c == cr {
			res.SawCR = true
		}

		if f.opts.SuppressBlank && f.atLineStart && (c == cr || c == lf) {
			continue
		}

		if f.opts.LineNumbers && f.atLineStart {
			f.line++
			if _, err := fmt.Fprintf(dst, "%6d\t", f.line); err != nil {
				return res, err
			}
		}

		switch {
		case f.opts.ShowControl && int(c) < len(controlSeqs):
			if _, err := io.WriteString(dst, controlSeqs[c]); err != nil {
				return res, err
			}
			if c != lf {
				f.atLineStart = false
				continue
			}
		case c == cr:
			f.atLineStart = false
			continue
		}

		if c != lf {
			f.atLineStart = false
		}
		if err := dst.WriteByte(c); err != nil {
			return res, err
		}
	}
}

// SPDX-License-Identifier: MPL-2.0

package bom

import (
	"bufio"
	"fmt"
	"io"
)

// PushbackReader delivers a few read-ahead bytes before resuming from the
// underlying source. All pushed-back bytes are returned before any byte of the
// source. It is not safe for concurrent use.
type PushbackReader struct {
	pending [MaxLen]byte
	off     int
	n       int
	src     *bufio.Reader
}

var (
	_ io.Reader     = (*PushbackReader)(nil)
	_ io.ByteReader = (*PushbackReader)(nil)
)

// NewPushbackReader returns a reader that yields leftover first and then r.
// It panics if leftover is longer than MaxLen.
func NewPushbackReader(leftover []byte, r io.Reader) *PushbackReader {
	if len(leftover) > MaxLen {
		panic(fmt.Sprintf("bom: %d pushback bytes exceed the %d-byte buffer", len(leftover), MaxLen))
	}

	p := &PushbackReader{src: bufio.NewReader(r)}
	p.n = copy(p.pending[:], leftover)
	return p
}

// Buffered returns the number of pushed-back bytes not yet delivered.
func (p *PushbackReader) Buffered() int {
	return p.n - p.off
}

// ReadByte returns the next byte, or io.EOF once both the pushback buffer and
// the source are exhausted.
func (p *PushbackReader) ReadByte() (byte, error) {
	if p.off < p.n {
		c := p.pending[p.off]
		p.off++
		return c, nil
	}
	return p.src.ReadByte()
}

// Read implements io.Reader. A read that drains the pushback buffer does not
// also touch the source, so short reads are possible.
func (p *PushbackReader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	if p.off < p.n {
		n := copy(b, p.pending[p.off:p.n])
		p.off += n
		return n, nil
	}
	return p.src.Read(b)
}

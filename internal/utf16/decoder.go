// SPDX-License-Identifier: MPL-2.0

// Package utf16 transcodes UTF-16 code units into UTF-8 one unit at a time.
//
// Only the Basic Multilingual Plane is handled: surrogate halves are not
// paired and each half is emitted as its own three-byte sequence. Carriage
// returns (U+000D) are dropped, and a line feed is appended when the stream
// does not already end with one.
package utf16

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	cr = 0x000D
	lf = 0x000A

	// maxEncodedLen is the longest UTF-8 sequence a single code unit produces.
	maxEncodedLen = 3
)

// Decoder is a transform.Transformer from UTF-16 (without a byte-order mark)
// to UTF-8. A Decoder keeps state between calls and must not be shared.
type Decoder struct {
	order unicode.Endianness

	last     uint16
	decoded  bool
	sawCR    bool
	finished bool
}

var _ transform.Transformer = (*Decoder)(nil)

// NewDecoder returns a Decoder reading code units in the given byte order.
func NewDecoder(order unicode.Endianness) *Decoder {
	return &Decoder{order: order}
}

// NewReader returns a reader yielding the UTF-8 transcoding of r.
func NewReader(r io.Reader, d *Decoder) *transform.Reader {
	return transform.NewReader(r, d)
}

// SawCR reports whether any carriage return was dropped since the last Reset.
func (d *Decoder) SawCR() bool {
	return d.sawCR
}

// Reset implements transform.Transformer.
func (d *Decoder) Reset() {
	*d = Decoder{order: d.order}
}

// Transform implements transform.Transformer. An odd trailing byte at the end
// of the input is discarded.
func (d *Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc+1 < len(src) {
		u := d.unit(src[nSrc], src[nSrc+1])
		if u == cr {
			d.sawCR = true
			d.last = u
			d.decoded = true
			nSrc += 2
			continue
		}
		if nDst+encodedLen(u) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += encode(dst[nDst:], u)
		d.last = u
		d.decoded = true
		nSrc += 2
	}

	if !atEOF {
		if nSrc < len(src) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		return nDst, nSrc, nil
	}

	// Truncated final unit.
	nSrc = len(src)

	if d.decoded && d.last != lf && !d.finished {
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = '\n'
		nDst++
		d.finished = true
	}
	return nDst, nSrc, nil
}

func (d *Decoder) unit(first, second byte) uint16 {
	if d.order == unicode.BigEndian {
		return uint16(first)<<8 | uint16(second)
	}
	return uint16(second)<<8 | uint16(first)
}

func encodedLen(u uint16) int {
	switch {
	case u < 0x80:
		return 1
	case u < 0x800:
		return 2
	default:
		return maxEncodedLen
	}
}

// encode writes the UTF-8 form of u into p, which must have room for it.
// Surrogate halves are encoded like any other BMP value.
func encode(p []byte, u uint16) int {
	switch {
	case u < 0x80:
		p[0] = byte(u)
		return 1
	case u < 0x800:
		p[0] = 0xC0 | byte(u>>6)
		p[1] = 0x80 | byte(u)&0x3F
		return 2
	default:
		p[0] = 0xE0 | byte(u>>12)
		p[1] = 0x80 | byte(u>>6)&0x3F
		p[2] = 0x80 | byte(u)&0x3F
		return 3
	}
}

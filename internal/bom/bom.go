// SPDX-License-Identifier: MPL-2.0

// Package bom detects a leading byte-order mark on a byte stream and hands the
// rest of the stream to consumers through a pushback reader, so sources that
// cannot be rewound (standard input, pipes) never lose the bytes read ahead.
package bom

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// MaxLen is the length of the longest recognized byte-order mark.
const MaxLen = 3

// Kind classifies the byte-order mark found at the start of a stream.
type Kind int

const (
	// None means the stream does not start with a recognized mark.
	None Kind = iota
	// UTF8 is the EF BB BF mark.
	UTF8
	// UTF16BE is the FE FF mark.
	UTF16BE
	// UTF16LE is the FF FE mark.
	UTF16LE
)

// signatures are checked in order and the first match wins, so the three-byte
// UTF-8 mark is tried before the two-byte UTF-16 marks.
var signatures = [...]struct {
	kind Kind
	mark []byte
}{
	{UTF8, []byte{0xEF, 0xBB, 0xBF}},
	{UTF16BE, []byte{0xFE, 0xFF}},
	{UTF16LE, []byte{0xFF, 0xFE}},
}

// String returns the human-readable encoding name used in summaries.
func (k Kind) String() string {
	switch k {
	case UTF8:
		return "UTF-8"
	case UTF16BE:
		return "UTF-16BE"
	case UTF16LE:
		return "UTF-16LE"
	default:
		return "none"
	}
}

// Len returns the number of bytes the mark occupies (0 for None).
func (k Kind) Len() int {
	for _, sig := range signatures {
		if sig.kind == k {
			return len(sig.mark)
		}
	}
	return 0
}

// IsUTF16 reports whether the mark announces UTF-16 content.
func (k Kind) IsUTF16() bool {
	return k == UTF16BE || k == UTF16LE
}

// Endianness returns the UTF-16 byte order announced by the mark.
// The boolean is false for marks that do not announce UTF-16.
func (k Kind) Endianness() (unicode.Endianness, bool) {
	switch k {
	case UTF16BE:
		return unicode.BigEndian, true
	case UTF16LE:
		return unicode.LittleEndian, true
	default:
		return unicode.BigEndian, false
	}
}

// Classify returns the mark that prefixes b, or None.
func Classify(b []byte) Kind {
	for _, sig := range signatures {
		if bytes.HasPrefix(b, sig.mark) {
			return sig.kind
		}
	}
	return None
}

// Sniff reads up to MaxLen bytes from r and classifies them. The returned
// leftover holds the bytes that were read but are not part of the mark; a
// stream shorter than MaxLen bytes is classified on what was available.
// Read errors other than end-of-stream are returned as-is.
func Sniff(r io.Reader) (kind Kind, leftover []byte, err error) {
	var head [MaxLen]byte
	n, err := io.ReadFull(r, head[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return None, nil, err
	}

	kind = Classify(head[:n])
	return kind, bytes.Clone(head[kind.Len():n]), nil
}

// Skip sniffs r and returns a reader positioned just after the mark, together
// with the mark's classification.
func Skip(r io.Reader) (*PushbackReader, Kind, error) {
	kind, leftover, err := Sniff(r)
	if err != nil {
		return nil, None, err
	}
	return NewPushbackReader(leftover, r), kind, nil
}

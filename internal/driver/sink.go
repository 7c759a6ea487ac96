// SPDX-License-Identifier: MPL-2.0

package driver

import (
	"bufio"
	"io"
	"sync"
)

// lockedSink is the buffered standard output shared by the main loop and the
// interrupt handler.
type lockedSink struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func newLockedSink(w io.Writer, size int) *lockedSink {
	return &lockedSink{w: bufio.NewWriterSize(w, size)}
}

func (s *lockedSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *lockedSink) WriteByte(c byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.WriteByte(c)
}

func (s *lockedSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

// interrupt writes a line feed and flushes, holding the lock across both so
// no filter write lands in between.
func (s *lockedSink) interrupt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

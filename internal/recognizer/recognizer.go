// Package recognizer is the boundary to the digit source: recognized
// digits arrive asynchronously and are forwarded to a single consumer.
package recognizer

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"
)

// Event is one recognized digit with its arrival instant.
type Event struct {
	Symbol byte
	At     time.Time
}

// Stream is a bounded single-consumer event queue. After Stop, pushes are
// dropped rather than queued, so no event reaches the consumer once the
// session is no longer interested.
type Stream struct {
	mu      sync.Mutex
	ch      chan Event
	stopped bool
}

// NewStream builds a stream with the given buffer size.
func NewStream(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 16
	}
	return &Stream{ch: make(chan Event, buffer)}
}

// Push enqueues an event. It reports false when the event was dropped
// because the stream was stopped or the buffer is full.
func (s *Stream) Push(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

// Events returns the consumer channel. It is closed by Stop.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// Stop closes the stream. Idempotent; once it returns, Push drops every
// further event.
func (s *Stream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.ch)
}

// ReaderSource adapts a byte stream (for example the stdout of an external
// speech-to-text process) into digit events. Non-digit bytes are filtered
// out; the core never sees them.
type ReaderSource struct {
	r   io.Reader
	now func() time.Time
}

// NewReaderSource wraps r as a digit source.
func NewReaderSource(r io.Reader) *ReaderSource {
	return &ReaderSource{r: r, now: time.Now}
}

// Run reads digits until EOF, context cancellation, or stream stop,
// pushing each onto the stream. The caller owns stopping the stream.
func (s *ReaderSource) Run(ctx context.Context, stream *Stream) error {
	br := bufio.NewReader(s.r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if b < '0' || b > '9' {
			continue
		}
		stream.Push(Event{Symbol: b, At: s.now()})
	}
}

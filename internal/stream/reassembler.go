// Package stream reassembles newline-delimited records from a chunked text
// stream. Chunk boundaries are arbitrary: a record can be split mid-field or
// mid-delimiter, so the trailing unterminated suffix of every chunk is held
// back as carryover until a later chunk (or the final flush) completes it.
package stream

import "strings"

// Reassembler accumulates chunk text and releases complete,
// newline-terminated lines in source order. It is not safe for concurrent
// use; the ingestion pipeline drives it from a single goroutine.
type Reassembler struct {
	carry  strings.Builder
	closed bool
}

// New creates an empty reassembler.
func New() *Reassembler {
	return &Reassembler{}
}

// Push appends one chunk and returns the complete lines it released, in the
// order they appeared in the stream. A chunk without a newline only grows
// the carryover and returns nil. Push after Flush is a no-op.
func (r *Reassembler) Push(chunk string) []string {
	if r.closed {
		return nil
	}
	r.carry.WriteString(chunk)

	buf := r.carry.String()
	if !strings.Contains(buf, "\n") {
		return nil
	}

	parts := strings.Split(buf, "\n")
	// The last element is either empty (the stream ended the line cleanly)
	// or a genuinely incomplete line; the two are indistinguishable here, so
	// both are deferred as the new carryover.
	r.carry.Reset()
	r.carry.WriteString(parts[len(parts)-1])
	return parts[:len(parts)-1]
}

// Flush closes the reassembler and returns the residual carryover as one
// final line, if it is non-blank. After Flush no carryover remains.
func (r *Reassembler) Flush() (string, bool) {
	line := r.carry.String()
	r.carry.Reset()
	r.closed = true
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	return line, true
}

// Carryover exposes the pending unterminated suffix, for diagnostics.
func (r *Reassembler) Carryover() string {
	return r.carry.String()
}

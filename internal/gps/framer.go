// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

// DefaultLineBuffer is the line buffer size in bytes.
const DefaultLineBuffer = 1024

// LineFramer slices a raw byte stream into newline-terminated lines using a
// fixed buffer. A line longer than capacity-1 bytes is discarded together with
// everything up to the next newline, after which framing resumes.
//
// A LineFramer is not safe for concurrent use; the ingestion worker owns it.
type LineFramer struct {
	buf []byte
	n   int

	resync bool

	overflows uint64
	dropped   uint64
}

// NewLineFramer returns a framer with the given buffer capacity. Capacities
// below 2 fall back to DefaultLineBuffer.
func NewLineFramer(capacity int) *LineFramer {
	if capacity < 2 {
		capacity = DefaultLineBuffer
	}
	return &LineFramer{buf: make([]byte, capacity)}
}

// Feed appends p to the buffer and returns every line completed by it, without
// the trailing '\n'. A trailing '\r' is left in place. NUL bytes are skipped.
func (f *LineFramer) Feed(p []byte) []string {
	var lines []string
	for _, b := range p {
		switch {
		case b == 0:
			continue
		case b == '\n':
			if f.resync {
				f.resync = false
				continue
			}
			lines = append(lines, string(f.buf[:f.n]))
			f.n = 0
		case f.resync:
			f.dropped++
		case f.n >= len(f.buf)-1:
			// No room and no newline: give up on this line.
			f.dropped += uint64(f.n) + 1
			f.overflows++
			f.n = 0
			f.resync = true
		default:
			f.buf[f.n] = b
			f.n++
		}
	}
	return lines
}

// Pending returns a copy of the unterminated fragment carried to the next Feed.
func (f *LineFramer) Pending() []byte {
	out := make([]byte, f.n)
	copy(out, f.buf[:f.n])
	return out
}

// Reset drops any buffered fragment and leaves resync mode.
func (f *LineFramer) Reset() {
	f.n = 0
	f.resync = false
}

// Overflows reports how many lines were discarded for exceeding the buffer.
func (f *LineFramer) Overflows() uint64 { return f.overflows }

// Dropped reports how many bytes were discarded by the overflow policy.
func (f *LineFramer) Dropped() uint64 { return f.dropped }

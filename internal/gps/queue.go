// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "sync"

// DefaultQueueSize is the byte capacity of the serial receive queue.
const DefaultQueueSize = 2048

// ByteQueue is a bounded single-producer/single-consumer byte FIFO between the
// serial reader and the ingestion loop. Push never blocks: bytes that do not
// fit are dropped (drop-newest) and counted.
type ByteQueue struct {
	mu      sync.Mutex
	buf     []byte
	head    int // next byte to read
	size    int // bytes currently queued
	dropped uint64

	ready chan struct{}
}

// NewByteQueue returns a queue holding at most capacity bytes.
func NewByteQueue(capacity int) *ByteQueue {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &ByteQueue{
		buf:   make([]byte, capacity),
		ready: make(chan struct{}, 1),
	}
}

// Push copies as much of p as fits and returns the number of bytes accepted.
// The consumer is signalled whenever at least one byte was accepted.
func (q *ByteQueue) Push(p []byte) int {
	q.mu.Lock()
	free := len(q.buf) - q.size
	n := len(p)
	if n > free {
		q.dropped += uint64(n - free)
		n = free
	}
	tail := (q.head + q.size) % len(q.buf)
	for i := 0; i < n; i++ {
		q.buf[(tail+i)%len(q.buf)] = p[i]
	}
	q.size += n
	q.mu.Unlock()

	if n > 0 {
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return n
}

// Drain moves up to len(dst) queued bytes into dst and returns the count.
func (q *ByteQueue) Drain(dst []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(dst)
	if n > q.size {
		n = q.size
	}
	for i := 0; i < n; i++ {
		dst[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.head = (q.head + n) % len(q.buf)
	q.size -= n
	return n
}

// Ready is signalled after bytes arrive. One signal may cover many pushes, so
// the consumer should Drain until it returns 0.
func (q *ByteQueue) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of queued bytes.
func (q *ByteQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Dropped returns the number of bytes rejected because the queue was full.
func (q *ByteQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Reset discards all queued bytes and any pending signal.
func (q *ByteQueue) Reset() {
	q.mu.Lock()
	q.head = 0
	q.size = 0
	q.mu.Unlock()
	select {
	case <-q.ready:
	default:
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bytes"
	"sync"
	"testing"
)

func TestByteQueue_FIFOAndWraparound(t *testing.T) {
	q := NewByteQueue(4)
	if n := q.Push([]byte("abc")); n != 3 {
		t.Fatalf("expected 3 accepted, got %d", n)
	}
	buf := make([]byte, 2)
	if n := q.Drain(buf); n != 2 || string(buf) != "ab" {
		t.Fatalf("unexpected drain %q", buf[:n])
	}
	if n := q.Push([]byte("def")); n != 3 {
		t.Fatalf("expected wraparound push of 3, got %d", n)
	}
	out := make([]byte, 8)
	n := q.Drain(out)
	if string(out[:n]) != "cdef" {
		t.Fatalf("expected cdef, got %q", out[:n])
	}
}

func TestByteQueue_DropsNewestWhenFull(t *testing.T) {
	q := NewByteQueue(4)
	if n := q.Push([]byte("123456")); n != 4 {
		t.Fatalf("expected 4 accepted, got %d", n)
	}
	if q.Dropped() != 2 {
		t.Fatalf("expected 2 dropped, got %d", q.Dropped())
	}
	out := make([]byte, 8)
	n := q.Drain(out)
	if string(out[:n]) != "1234" {
		t.Fatalf("oldest bytes must survive, got %q", out[:n])
	}
}

func TestByteQueue_SignalsReady(t *testing.T) {
	q := NewByteQueue(8)
	q.Push([]byte("x"))
	q.Push([]byte("y"))
	select {
	case <-q.Ready():
	default:
		t.Fatalf("expected ready signal")
	}
	select {
	case <-q.Ready():
		t.Fatalf("signals must coalesce")
	default:
	}
}

func TestByteQueue_ResetClearsData(t *testing.T) {
	q := NewByteQueue(8)
	q.Push([]byte("abc"))
	q.Reset()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
	select {
	case <-q.Ready():
		t.Fatalf("reset must clear pending signal")
	default:
	}
}

func TestByteQueue_ConcurrentProducerConsumer(t *testing.T) {
	q := NewByteQueue(64)
	payload := bytes.Repeat([]byte("0123456789"), 500)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for off := 0; off < len(payload); {
			end := off + 7
			if end > len(payload) {
				end = len(payload)
			}
			off += q.Push(payload[off:end])
		}
	}()

	var got []byte
	buf := make([]byte, 16)
	for len(got) < len(payload) {
		<-q.Ready()
		for {
			n := q.Drain(buf)
			if n == 0 {
				break
			}
			got = append(got, buf[:n]...)
		}
	}
	wg.Wait()

	if !bytes.Equal(got, payload) {
		t.Fatalf("consumer saw %d bytes out of order or lost", len(got))
	}
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
)

// ErrUnavailable is returned by Worker.Start when the serial channel cannot be
// acquired. The worker does not retry.
var ErrUnavailable = errors.New("gps: serial channel unavailable")

// DefaultWakeCommand is written to the module right after the port opens.
const DefaultWakeCommand = "wakeup\r\n"

// State is the ingestion worker lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OpenFunc acquires the serial channel described by cfg.
type OpenFunc func(cfg SerialConfig) (io.ReadWriteCloser, error)

// Metrics receives ingestion events. Implementations must be safe for use from
// the worker goroutines.
type Metrics interface {
	SentenceClassified(kind SentenceKind)
	SentenceRejected()
	BytesDropped(n int)
	LinesDiscarded(n int)
}

type nopMetrics struct{}

func (nopMetrics) SentenceClassified(SentenceKind) {}
func (nopMetrics) SentenceRejected()               {}
func (nopMetrics) BytesDropped(int)                {}
func (nopMetrics) LinesDiscarded(int)              {}

// WorkerConfig configures a Worker. Zero sizes fall back to the defaults.
type WorkerConfig struct {
	Serial      SerialConfig
	WakeCommand []byte
	LineBuffer  int
	QueueSize   int
	Metrics     Metrics
}

// Stats are running counters of the ingestion pipeline.
type Stats struct {
	Lines        uint64 `json:"lines"`
	Rejected     uint64 `json:"rejected"`
	RMC          uint64 `json:"rmc"`
	GGA          uint64 `json:"gga"`
	GLL          uint64 `json:"gll"`
	QueueDropped uint64 `json:"queue_dropped"`
	LineOverflow uint64 `json:"line_overflow"`
}

// Worker owns the serial channel. A reader goroutine pushes raw bytes into a
// bounded queue; the ingestion goroutine frames lines, classifies them and
// updates the position store.
type Worker struct {
	cfg     WorkerConfig
	open    OpenFunc
	metrics Metrics

	store  *PositionStore
	queue  *ByteQueue
	framer *LineFramer

	mu        sync.Mutex
	state     State
	port      io.ReadWriteCloser
	closeOnce *sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	lines    atomic.Uint64
	rejected atomic.Uint64
	byKind   [4]atomic.Uint64
	overflow atomic.Uint64
}

// NewWorker builds a worker that will open its channel with open.
func NewWorker(cfg WorkerConfig, open OpenFunc) *Worker {
	m := cfg.Metrics
	if m == nil {
		m = nopMetrics{}
	}
	return &Worker{
		cfg:     cfg,
		open:    open,
		metrics: m,
		store:   NewPositionStore(),
		queue:   NewByteQueue(cfg.QueueSize),
		framer:  NewLineFramer(cfg.LineBuffer),
	}
}

// Start opens the serial channel, sends the wake-up command and launches the
// reader and ingestion goroutines. Cancelling ctx stops the worker like Stop.
func (w *Worker) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("gps: ctx is nil")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateIdle {
		return fmt.Errorf("gps: worker already %s", w.state)
	}
	w.state = StateStarting

	port, err := w.open(w.cfg.Serial)
	if err != nil {
		w.state = StateStopped
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, w.cfg.Serial.Port, err)
	}
	w.port = port
	w.closeOnce = &sync.Once{}

	if len(w.cfg.WakeCommand) > 0 {
		if _, err := port.Write(w.cfg.WakeCommand); err != nil {
			log.Printf("gps: wake-up command failed: %v", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(2)
	go w.readLoop(runCtx, port)
	go w.ingestLoop(runCtx)

	w.state = StateRunning
	log.Printf("gps: worker running on %s at %d baud", w.cfg.Serial.Port, w.cfg.Serial.BaudRate)
	return nil
}

// Stop signals both goroutines, releases the channel and tears down the queue.
// It is safe to call more than once.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.state != StateRunning {
		w.mu.Unlock()
		return
	}
	w.state = StateStopping
	cancel := w.cancel
	w.mu.Unlock()

	cancel()
	w.closePort()
	w.wg.Wait()

	w.queue.Reset()
	w.framer.Reset()

	w.mu.Lock()
	w.port = nil
	w.cancel = nil
	w.state = StateStopped
	w.mu.Unlock()
	log.Println("gps: worker stopped")
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot returns a copy of the current position.
func (w *Worker) Snapshot() Position {
	return w.store.Snapshot()
}

// Stats returns a copy of the pipeline counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Lines:        w.lines.Load(),
		Rejected:     w.rejected.Load(),
		RMC:          w.byKind[KindRMC].Load(),
		GGA:          w.byKind[KindGGA].Load(),
		GLL:          w.byKind[KindGLL].Load(),
		QueueDropped: w.queue.Dropped(),
		LineOverflow: w.overflow.Load(),
	}
}

func (w *Worker) closePort() {
	w.mu.Lock()
	port, once := w.port, w.closeOnce
	w.mu.Unlock()
	if port == nil || once == nil {
		return
	}
	once.Do(func() {
		if err := port.Close(); err != nil {
			log.Printf("gps: close serial: %v", err)
		}
	})
}

// readLoop is the byte producer. It never blocks on the consumer.
func (w *Worker) readLoop(ctx context.Context, port io.Reader) {
	defer w.wg.Done()

	buf := make([]byte, 256)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			if accepted := w.queue.Push(buf[:n]); accepted < n {
				w.metrics.BytesDropped(n - accepted)
			}
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// A read timeout with no data surfaces as io.EOF.
			if errors.Is(err, io.EOF) {
				continue
			}
			log.Printf("gps: serial read stopped: %v", err)
			return
		}
	}
}

func (w *Worker) ingestLoop(ctx context.Context) {
	defer w.wg.Done()

	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			w.closePort()
			return
		case <-w.queue.Ready():
			w.drain(buf)
		}
	}
}

func (w *Worker) drain(buf []byte) {
	for {
		n := w.queue.Drain(buf)
		if n == 0 {
			return
		}
		before := w.framer.Overflows()
		lines := w.framer.Feed(buf[:n])
		if d := w.framer.Overflows() - before; d > 0 {
			w.overflow.Add(d)
			w.metrics.LinesDiscarded(int(d))
		}
		for _, line := range lines {
			w.handle(line)
		}
	}
}

func (w *Worker) handle(line string) {
	w.lines.Add(1)
	u, err := w.store.handleLine(line)
	if err != nil {
		w.rejected.Add(1)
		w.metrics.SentenceRejected()
		return
	}
	w.byKind[u.Kind].Add(1)
	w.metrics.SentenceClassified(u.Kind)
}

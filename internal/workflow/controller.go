// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package workflow sequences waiting for a fix, scanning and presenting the
// ranked capture list.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
)

// DefaultPollInterval is how often the fix is checked while waiting.
const DefaultPollInterval = time.Second

// State of the controller.
type State int

const (
	StateWaitingForFix State = iota
	StateScanning
	StatePresenting
	StateNoResults
	StateFailed // gps unavailable; only exit is honoured
	StateExited
)

func (s State) String() string {
	switch s {
	case StateWaitingForFix:
		return "waiting-for-fix"
	case StateScanning:
		return "scanning"
	case StatePresenting:
		return "presenting"
	case StateNoResults:
		return "no-results"
	case StateFailed:
		return "failed"
	case StateExited:
		return "exited"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventKind enumerates what the presentation layer can send back.
type EventKind int

const (
	EventRefresh EventKind = iota
	EventSelect
	EventAbout
	EventExit
)

// Event is a user action. Index is used by EventSelect only.
type Event struct {
	Kind  EventKind
	Index int
}

// Presenter is the presentation layer boundary.
type Presenter interface {
	Waiting(pos gps.Position)
	Results(results []capture.Candidate, partial bool)
	NoResults(partial bool)
	Failed(err error)
	About()
	// Open hands the selected file to whatever launches its app.
	Open(c capture.Candidate)
}

// Metrics receives one observation per completed scan.
type Metrics interface {
	ScanCompleted(elapsed time.Duration, discovered, ranked int, partial bool)
}

// Config for a Controller.
type Config struct {
	PollInterval time.Duration
	Sources      []capture.Source
	Metrics      Metrics
}

// Controller is the workflow state machine. It is driven from a single
// goroutine: either Run, or direct Tick/Handle calls.
type Controller struct {
	cfg     Config
	pos     capture.PositionSource
	present Presenter

	state   State
	results []capture.Candidate
}

// New returns a controller in StateWaitingForFix.
func New(cfg Config, pos capture.PositionSource, present Presenter) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Controller{cfg: cfg, pos: pos, present: present}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Results returns a copy of the list being presented.
func (c *Controller) Results() []capture.Candidate {
	return append([]capture.Candidate(nil), c.results...)
}

// Fail moves to StateFailed and reports err. Used when the gps worker could
// not start.
func (c *Controller) Fail(err error) {
	if c.state == StateExited {
		return
	}
	c.state = StateFailed
	c.present.Failed(err)
}

// Tick polls the position while waiting and scans as soon as a fix is valid.
// It does nothing in other states.
func (c *Controller) Tick() {
	if c.state != StateWaitingForFix {
		return
	}
	snap := c.pos.Snapshot()
	if !snap.Valid {
		c.present.Waiting(snap)
		return
	}
	c.scan()
}

// Handle applies one event. It returns false once the workflow has exited.
func (c *Controller) Handle(ev Event) bool {
	if c.state == StateExited {
		return false
	}

	switch ev.Kind {
	case EventExit:
		c.state = StateExited
		c.results = nil
		return false

	case EventRefresh:
		if c.state == StatePresenting || c.state == StateNoResults {
			c.state = StateWaitingForFix
			c.results = nil
			c.Tick()
		}

	case EventSelect:
		if c.state != StatePresenting {
			return true
		}
		if ev.Index < 0 || ev.Index >= len(c.results) {
			log.Printf("workflow: selection %d out of range (%d results)", ev.Index, len(c.results))
			return true
		}
		c.present.Open(c.results[ev.Index])

	case EventAbout:
		c.present.About()
	}
	return true
}

// Run ticks every PollInterval and applies events until an exit event or ctx
// is done. A scan blocks the loop; events that arrive meanwhile wait.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	c.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !c.Handle(ev) {
				return nil
			}
		case <-ticker.C:
			c.Tick()
		}
	}
}

func (c *Controller) scan() {
	c.state = StateScanning
	start := time.Now()

	found, err := capture.Scan(c.cfg.Sources)
	partial := false
	if err != nil {
		partial = errors.Is(err, capture.ErrPartialScan)
		log.Printf("workflow: %v", err)
	}
	discovered := len(found)

	ranked, err := capture.RankFrom(c.pos, found)
	if errors.Is(err, capture.ErrNotReady) {
		c.state = StateWaitingForFix
		return
	}

	if c.cfg.Metrics != nil {
		c.cfg.Metrics.ScanCompleted(time.Since(start), discovered, len(ranked), partial)
	}
	log.Printf("workflow: scan found %d files, %d with coordinates in %s", discovered, len(ranked), time.Since(start).Round(time.Millisecond))

	if len(ranked) == 0 {
		c.state = StateNoResults
		c.present.NoResults(partial)
		return
	}
	c.state = StatePresenting
	c.results = ranked
	c.present.Results(c.Results(), partial)
}

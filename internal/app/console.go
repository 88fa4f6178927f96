// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
	"github.com/relabs-tech/capture_locator/internal/workflow"
)

// ConsolePresenter prints the workflow to a terminal. Waiting updates are
// printed only when the status line changes.
type ConsolePresenter struct {
	out io.Writer

	mu         sync.Mutex
	lastStatus string
}

func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	return &ConsolePresenter{out: out}
}

func (c *ConsolePresenter) Waiting(pos gps.Position) {
	status := waitingStatus(pos)

	c.mu.Lock()
	defer c.mu.Unlock()
	if status == c.lastStatus {
		return
	}
	c.lastStatus = status
	fmt.Fprintf(c.out, "[GPS ] %s\n", status)
}

func (c *ConsolePresenter) Results(results []capture.Candidate, partial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastStatus = ""

	fmt.Fprintf(c.out, "[SCAN] %d captures by distance\n", len(results))
	for i, r := range results {
		fmt.Fprintf(c.out, "%4d  %-32s %8s  %s\n", i+1, r.Name, r.FormattedDistance(), r.App)
	}
	if partial {
		fmt.Fprintln(c.out, "[SCAN] some folders could not be read")
	}
	fmt.Fprintln(c.out, "Enter a number to open, r to refresh, a for about, q to quit")
}

func (c *ConsolePresenter) NoResults(partial bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastStatus = ""

	fmt.Fprintln(c.out, "[SCAN] no captures with coordinates found")
	if partial {
		fmt.Fprintln(c.out, "[SCAN] some folders could not be read")
	}
	fmt.Fprintln(c.out, "r to refresh, q to quit")
}

func (c *ConsolePresenter) Failed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[GPS ] unavailable: %v\n", err)
	fmt.Fprintln(c.out, "q to quit")
}

func (c *ConsolePresenter) About() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, aboutText)
}

func (c *ConsolePresenter) Open(r capture.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "[OPEN] %s with %s (%s)\n", r.Name, r.App, r.Path)
}

// parseCommand maps one console line to an event. Result numbers are 1-based.
func parseCommand(line string) (workflow.Event, bool) {
	line = strings.ToLower(strings.TrimSpace(line))
	switch line {
	case "":
		return workflow.Event{}, false
	case "r", "refresh":
		return workflow.Event{Kind: workflow.EventRefresh}, true
	case "a", "about":
		return workflow.Event{Kind: workflow.EventAbout}, true
	case "q", "quit", "exit":
		return workflow.Event{Kind: workflow.EventExit}, true
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 {
		return workflow.Event{}, false
	}
	return workflow.Event{Kind: workflow.EventSelect, Index: n - 1}, true
}

// ReadEvents turns console lines into workflow events until r ends or ctx is
// done. Unknown commands are logged and ignored.
func ReadEvents(ctx context.Context, r io.Reader, events chan<- workflow.Event) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ev, ok := parseCommand(sc.Text())
		if !ok {
			if strings.TrimSpace(sc.Text()) != "" {
				log.Printf("console: unknown command %q", sc.Text())
			}
			continue
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("console: input error: %v", err)
	}
}

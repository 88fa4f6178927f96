// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"testing"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
)

type callLog struct {
	calls []string
}

func (l *callLog) Waiting(gps.Position)              { l.calls = append(l.calls, "waiting") }
func (l *callLog) Results([]capture.Candidate, bool) { l.calls = append(l.calls, "results") }
func (l *callLog) NoResults(bool)                    { l.calls = append(l.calls, "no-results") }
func (l *callLog) Failed(error)                      { l.calls = append(l.calls, "failed") }
func (l *callLog) About()                            { l.calls = append(l.calls, "about") }
func (l *callLog) Open(capture.Candidate)            { l.calls = append(l.calls, "open") }

func TestPresentersForwardToEach(t *testing.T) {
	a, b := &callLog{}, &callLog{}
	ps := Presenters{a, b}

	ps.Waiting(gps.Position{})
	ps.Results(sampleResults(), false)
	ps.NoResults(false)
	ps.Failed(errors.New("x"))
	ps.About()
	ps.Open(sampleResults()[0])

	want := []string{"waiting", "results", "no-results", "failed", "about", "open"}
	for _, l := range []*callLog{a, b} {
		if len(l.calls) != len(want) {
			t.Fatalf("expected %v, got %v", want, l.calls)
		}
		for i := range want {
			if l.calls[i] != want[i] {
				t.Fatalf("call %d: expected %s, got %s", i, want[i], l.calls[i])
			}
		}
	}
}

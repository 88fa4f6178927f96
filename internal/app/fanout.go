// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
	"github.com/relabs-tech/capture_locator/internal/workflow"
)

// Presenters forwards every call to each presenter in order.
type Presenters []workflow.Presenter

func (ps Presenters) Waiting(pos gps.Position) {
	for _, p := range ps {
		p.Waiting(pos)
	}
}

func (ps Presenters) Results(results []capture.Candidate, partial bool) {
	for _, p := range ps {
		p.Results(results, partial)
	}
}

func (ps Presenters) NoResults(partial bool) {
	for _, p := range ps {
		p.NoResults(partial)
	}
}

func (ps Presenters) Failed(err error) {
	for _, p := range ps {
		p.Failed(err)
	}
}

func (ps Presenters) About() {
	for _, p := range ps {
		p.About()
	}
}

func (ps Presenters) Open(c capture.Candidate) {
	for _, p := range ps {
		p.Open(c)
	}
}

var _ workflow.Presenter = Presenters(nil)

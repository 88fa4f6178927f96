// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
)

// gpsSource is what the presenters and publishers read from the worker.
type gpsSource interface {
	Snapshot() gps.Position
	Stats() gps.Stats
}

// ResultView is one ranked capture as sent over MQTT and the web API.
type ResultView struct {
	Index     int     `json:"index"`
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	App       string  `json:"app"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	DistanceM float64 `json:"distance_m"`
	Distance  string  `json:"distance"` // e.g. "4.3km"
}

// CapturesMessage is the payload of the captures topic and websocket pushes.
type CapturesMessage struct {
	State   string       `json:"state"` // waiting, results, no_results, failed
	Status  string       `json:"status,omitempty"`
	Partial bool         `json:"partial,omitempty"`
	Results []ResultView `json:"results,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// GPSMessage is the payload of the gps topic and /api/position.
type GPSMessage struct {
	gps.Position
	Stats gps.Stats `json:"stats"`
}

// OpenMessage asks an external launcher to open a capture with its app.
type OpenMessage struct {
	Name string `json:"name"`
	Path string `json:"path"`
	App  string `json:"app"`
}

func resultViews(results []capture.Candidate) []ResultView {
	out := make([]ResultView, len(results))
	for i, c := range results {
		out[i] = ResultView{
			Index:     i,
			Name:      c.Name,
			Path:      c.Path,
			App:       c.App,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			DistanceM: c.Distance,
			Distance:  c.FormattedDistance(),
		}
	}
	return out
}

// waitingStatus is the one-line status shown while there is no fix.
func waitingStatus(pos gps.Position) string {
	if !pos.ModuleDetected {
		return "No GPS module detected"
	}
	return fmt.Sprintf("Waiting for fix (%d sats)", pos.Satellites)
}

const aboutText = `Capture Locator
Lists saved Sub-GHz, NFC and RFID captures
by distance from the current GPS position.
Captures need "Lat:" and "Lon:" lines.`

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import "sync"

// Position is a point-in-time copy of the receiver state, suitable for JSON and MQTT.
type Position struct {
	Valid          bool    `json:"valid"`           // at least one sentence reported an active fix
	Latitude       float64 `json:"lat"`             // decimal degrees, meaningful only when Valid
	Longitude      float64 `json:"lon"`             // decimal degrees, meaningful only when Valid
	ModuleDetected bool    `json:"module_detected"` // any line was ever received
	Satellites     int     `json:"satellites"`      // tracked satellites from the last GGA
}

// PositionStore is the single mutable position record shared between the
// ingestion worker (writer) and everyone else (readers).
type PositionStore struct {
	mu  sync.Mutex
	pos Position
}

// NewPositionStore returns a store with no fix and no module detected.
func NewPositionStore() *PositionStore {
	return &PositionStore{}
}

// Snapshot returns a copy of the current position.
func (s *PositionStore) Snapshot() Position {
	s.mu.Lock()
	p := s.pos
	s.mu.Unlock()
	return p
}

func (s *PositionStore) markDetected() {
	s.mu.Lock()
	s.pos.ModuleDetected = true
	s.mu.Unlock()
}

// apply folds one classified sentence into the store. All fields touched by a
// single sentence change together.
func (s *PositionStore) apply(u Update) {
	if !u.HasFix && !u.HasSatellites {
		return
	}
	s.mu.Lock()
	if u.HasSatellites {
		s.pos.Satellites = u.Satellites
	}
	if u.HasFix {
		s.pos.Latitude = u.Latitude
		s.pos.Longitude = u.Longitude
		s.pos.Valid = true
	}
	s.mu.Unlock()
}

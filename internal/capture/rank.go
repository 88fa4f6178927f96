// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"cmp"
	"errors"
	"slices"

	"github.com/relabs-tech/capture_locator/internal/geo"
	"github.com/relabs-tech/capture_locator/internal/gps"
)

// ErrNotReady is returned by RankFrom while there is no valid fix. It means
// "try again later", not failure.
var ErrNotReady = errors.New("capture: waiting for gps fix")

// PositionSource provides consistent position snapshots.
type PositionSource interface {
	Snapshot() gps.Position
}

// RankFrom takes one snapshot from src and ranks candidates against it.
func RankFrom(src PositionSource, candidates []Candidate) ([]Candidate, error) {
	pos := src.Snapshot()
	if !pos.Valid {
		return nil, ErrNotReady
	}
	return Rank(candidates, geo.Point{Lat: pos.Latitude, Lon: pos.Longitude}), nil
}

// Rank extracts coordinates for each candidate, drops those without usable
// coordinates (missing tags or exactly 0,0), and returns the rest sorted by
// distance from ref. Ties keep discovery order. The input slice is reused.
func Rank(candidates []Candidate, ref geo.Point) []Candidate {
	kept := candidates[:0]
	for _, c := range candidates {
		lat, lon, ok := ExtractCoordinates(c.Path)
		if !ok {
			continue
		}
		p := geo.Point{Lat: lat, Lon: lon}
		if p.IsZero() {
			continue
		}
		c.Latitude, c.Longitude = lat, lon
		c.HasCoordinates = true
		c.Distance = geo.Distance(ref, p)
		kept = append(kept, c)
	}
	// Clear the compacted-out tail so dropped entries are not retained.
	clear(candidates[len(kept):])

	slices.SortStableFunc(kept, func(a, b Candidate) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return kept
}

// FormattedDistance is the display form of c.Distance.
func (c Candidate) FormattedDistance() string {
	return geo.FormatDistance(c.Distance)
}

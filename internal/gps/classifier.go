// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// ErrParse marks a line the NMEA parser rejected. Such lines are dropped.
var ErrParse = errors.New("gps: unparseable sentence")

// SentenceKind is the subset of NMEA sentences that can move the position.
type SentenceKind int

const (
	KindOther SentenceKind = iota // parsed, but not fix-relevant
	KindRMC
	KindGGA
	KindGLL
)

func (k SentenceKind) String() string {
	switch k {
	case KindRMC:
		return "RMC"
	case KindGGA:
		return "GGA"
	case KindGLL:
		return "GLL"
	default:
		return "other"
	}
}

// Update is what one sentence contributes to the position store.
type Update struct {
	Kind SentenceKind

	HasFix    bool
	Latitude  float64
	Longitude float64

	HasSatellites bool
	Satellites    int
}

// Classify parses one framed line and extracts its fix-relevant content.
// A parse failure is returned wrapped in ErrParse; a valid sentence without a
// fix yields an Update with HasFix unset.
func Classify(line string) (Update, error) {
	line = strings.TrimRight(line, "\r")
	line = strings.TrimSpace(line)

	sentence, err := nmea.Parse(line)
	if err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	switch m := sentence.(type) {
	case nmea.RMC:
		u := Update{Kind: KindRMC}
		if m.Validity == nmea.ValidRMC {
			u.HasFix = true
			u.Latitude = m.Latitude
			u.Longitude = m.Longitude
		}
		return u, nil

	case nmea.GGA:
		// Satellites are tracked even without a fix.
		u := Update{
			Kind:          KindGGA,
			HasSatellites: true,
			Satellites:    int(m.NumSatellites),
		}
		if q, err := strconv.Atoi(m.FixQuality); err == nil && q > 0 {
			u.HasFix = true
			u.Latitude = m.Latitude
			u.Longitude = m.Longitude
		}
		return u, nil

	case nmea.GLL:
		u := Update{Kind: KindGLL}
		if m.Validity == nmea.ValidGLL {
			u.HasFix = true
			u.Latitude = m.Latitude
			u.Longitude = m.Longitude
		}
		return u, nil

	default:
		return Update{Kind: KindOther}, nil
	}
}

// handleLine runs one framed line through the classifier into the store. The
// module-detected latch is set before parsing: any line proves a module.
func (s *PositionStore) handleLine(line string) (Update, error) {
	s.markDetected()
	u, err := Classify(line)
	if err != nil {
		return u, err
	}
	s.apply(u)
	return u, nil
}

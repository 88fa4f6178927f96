// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func nmeaLine(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}

func TestClassify_RMCActiveUpdatesFix(t *testing.T) {
	u, err := Classify(nmeaLine("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W") + "\r")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Kind != KindRMC || !u.HasFix {
		t.Fatalf("expected RMC fix, got %+v", u)
	}
	if math.Abs(u.Latitude-48.1173) > 1e-4 || math.Abs(u.Longitude-11.5167) > 1e-4 {
		t.Fatalf("unexpected coordinates %f,%f", u.Latitude, u.Longitude)
	}
}

func TestClassify_RMCVoidHasNoFix(t *testing.T) {
	u, err := Classify(nmeaLine("GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Kind != KindRMC || u.HasFix {
		t.Fatalf("void RMC must not carry a fix, got %+v", u)
	}
}

func TestClassify_GGATracksSatellitesWithoutFix(t *testing.T) {
	u, err := Classify(nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,0,05,0.9,545.4,M,46.9,M,,"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !u.HasSatellites || u.Satellites != 5 {
		t.Fatalf("expected 5 satellites, got %+v", u)
	}
	if u.HasFix {
		t.Fatalf("fix quality 0 must not carry a fix")
	}
}

func TestClassify_GGAWithQualityCarriesFix(t *testing.T) {
	u, err := Classify(nmeaLine("GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Kind != KindGGA || !u.HasFix || u.Satellites != 8 {
		t.Fatalf("expected GGA fix with 8 satellites, got %+v", u)
	}
}

func TestClassify_GLLStatus(t *testing.T) {
	active, err := Classify(nmeaLine("GPGLL,4916.45,N,12311.12,W,225444,A,A"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if active.Kind != KindGLL || !active.HasFix {
		t.Fatalf("expected active GLL fix, got %+v", active)
	}
	if active.Longitude >= 0 {
		t.Fatalf("west longitude must be negative, got %f", active.Longitude)
	}

	void, err := Classify(nmeaLine("GPGLL,4916.45,N,12311.12,W,225444,V,N"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if void.HasFix {
		t.Fatalf("void GLL must not carry a fix")
	}
}

func TestClassify_OtherAndGarbage(t *testing.T) {
	u, err := Classify(nmeaLine("GPVTG,054.7,T,034.4,M,005.5,N,010.2,K,A"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if u.Kind != KindOther || u.HasFix || u.HasSatellites {
		t.Fatalf("expected ignored sentence, got %+v", u)
	}

	if _, err := Classify("not a sentence"); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestPositionStore_ModuleDetectedLatch(t *testing.T) {
	s := NewPositionStore()
	if s.Snapshot().ModuleDetected {
		t.Fatalf("fresh store must not report a module")
	}

	if _, err := s.handleLine("garbage"); err == nil {
		t.Fatalf("expected parse error")
	}
	if !s.Snapshot().ModuleDetected {
		t.Fatalf("any line must latch module detection")
	}

	s.handleLine(nmeaLine("GPRMC,123519,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))
	s.handleLine("")
	snap := s.Snapshot()
	if !snap.ModuleDetected {
		t.Fatalf("module detection must never reset")
	}
	if snap.Valid {
		t.Fatalf("no active fix was seen")
	}
}

func TestPositionStore_GGANoFixKeepsValidity(t *testing.T) {
	s := NewPositionStore()
	if _, err := s.handleLine(nmeaLine("GPGGA,123519,4807.038,N,01131.000,E,0,05,0.9,545.4,M,46.9,M,,")); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	snap := s.Snapshot()
	if snap.Satellites != 5 {
		t.Fatalf("expected satellites 5, got %d", snap.Satellites)
	}
	if snap.Valid {
		t.Fatalf("validity must be unchanged by a no-fix GGA")
	}

	s.handleLine(nmeaLine("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W"))
	s.handleLine(nmeaLine("GPGGA,123520,4807.038,N,01131.000,E,0,03,0.9,545.4,M,46.9,M,,"))
	snap = s.Snapshot()
	if !snap.Valid || snap.Satellites != 3 {
		t.Fatalf("expected valid fix kept with 3 satellites, got %+v", snap)
	}
}

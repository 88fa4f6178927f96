// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestExtract_BothTagsEitherOrder(t *testing.T) {
	for _, body := range []string{
		"Filetype: Flipper SubGhz Key File\nLat: 41.0\nLon: 29.0\n",
		"Lon: 29.0\nFrequency: 433920000\nLat: 41.0\n",
	} {
		lat, lon, ok := extractFrom(strings.NewReader(body))
		if !ok || lat != 41 || lon != 29 {
			t.Fatalf("expected (41,29) from %q, got (%v,%v,%v)", body, lat, lon, ok)
		}
	}
}

func TestExtract_MissingAxis(t *testing.T) {
	for _, body := range []string{
		"Lat: 41.0\n",
		"Lon: 29.0\n",
		"Filetype: Flipper NFC device\nUID: 04 A1\n",
		"",
	} {
		if _, _, ok := extractFrom(strings.NewReader(body)); ok {
			t.Fatalf("expected no coordinates from %q", body)
		}
	}
}

func TestExtract_TagVariantsAndLineEndings(t *testing.T) {
	lat, lon, ok := extractFrom(strings.NewReader("Latitute: -12.5\rLongitude: 130.25\r"))
	if !ok || lat != -12.5 || lon != 130.25 {
		t.Fatalf("expected legacy tag with CR endings, got (%v,%v,%v)", lat, lon, ok)
	}

	lat, lon, ok = extractFrom(strings.NewReader("Latitude: 1.5\r\nLon: 2.5\r\n"))
	if !ok || lat != 1.5 || lon != 2.5 {
		t.Fatalf("expected CRLF file to parse, got (%v,%v,%v)", lat, lon, ok)
	}
}

func TestExtract_FirstMatchWins(t *testing.T) {
	lat, lon, ok := extractFrom(strings.NewReader("Lat: 10\nLat: 20\nLon: 30\nLon: 40\n"))
	if !ok || lat != 10 || lon != 30 {
		t.Fatalf("expected first tags to win, got (%v,%v,%v)", lat, lon, ok)
	}
}

func TestExtract_TagsAreCaseSensitive(t *testing.T) {
	if _, _, ok := extractFrom(strings.NewReader("lat: 41\nlon: 29\n")); ok {
		t.Fatalf("lowercase tags must not match")
	}
}

func TestParseLeadingFloat(t *testing.T) {
	cases := map[string]float64{
		"41.0":        41,
		"  -29.5 deg": -29.5,
		"+1e2x":       100,
		"3e":          3,
		".25":         0.25,
		"abc":         0,
		"":            0,
		"-":           0,
	}
	for in, want := range cases {
		if got := parseLeadingFloat(in); got != want {
			t.Fatalf("parseLeadingFloat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExtractCoordinates_MissingFile(t *testing.T) {
	if _, _, ok := ExtractCoordinates(filepath.Join(t.TempDir(), "nope.sub")); ok {
		t.Fatalf("expected no coordinates for missing file")
	}
}

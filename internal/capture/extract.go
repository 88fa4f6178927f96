// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"
)

// Tag prefixes recognised in capture files. "Latitute: " is a misspelling
// written by older firmware and must keep working.
var (
	latitudeTags  = []string{"Lat: ", "Latitude: ", "Latitute: "}
	longitudeTags = []string{"Lon: ", "Longitude: "}
)

const maxLineLength = 1 << 20

// ExtractCoordinates reads the latitude/longitude tags of the file at path.
// ok is false when the file cannot be read or either tag is missing.
func ExtractCoordinates(path string) (lat, lon float64, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()
	return extractFrom(f)
}

func extractFrom(r io.Reader) (lat, lon float64, ok bool) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineLength)
	sc.Split(scanLinesCRLF)

	var haveLat, haveLon bool
	for !(haveLat && haveLon) && sc.Scan() {
		line := sc.Text()
		if !haveLat {
			if v, found := tagValue(line, latitudeTags); found {
				lat, haveLat = v, true
				continue
			}
		}
		if !haveLon {
			if v, found := tagValue(line, longitudeTags); found {
				lon, haveLon = v, true
			}
		}
	}
	if !haveLat || !haveLon {
		return 0, 0, false
	}
	return lat, lon, true
}

func tagValue(line string, tags []string) (float64, bool) {
	for _, tag := range tags {
		if rest, found := strings.CutPrefix(line, tag); found {
			return parseLeadingFloat(rest), true
		}
	}
	return 0, false
}

// scanLinesCRLF splits on '\n' or '\r', so CRLF files produce an empty line
// between records, which no tag matches.
func scanLinesCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// parseLeadingFloat parses the longest decimal float prefix of s, after leading
// whitespace. Text without a numeric prefix yields 0.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t")
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			end = j
		}
	}
	// On range errors ParseFloat still returns ±Inf or 0.
	v, _ := strconv.ParseFloat(s[:end], 64)
	return v
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

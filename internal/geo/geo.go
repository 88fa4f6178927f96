// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package geo holds the small amount of spherical geometry the locator needs.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether both coordinates are exactly zero at single precision.
func (p Point) IsZero() bool {
	return float32(p.Lat) == 0 && float32(p.Lon) == 0
}

// Distance returns the haversine great-circle distance in meters.
//
// Trigonometry runs at single precision; the result is widened to float64.
// This matches the distances the handheld firmware displayed (meter-level
// error, well under 1%), so keep it float32.
func Distance(a, b Point) float64 {
	const rad = float32(math.Pi / 180)

	lat1 := float32(a.Lat) * rad
	lat2 := float32(b.Lat) * rad
	dLat := float32(b.Lat-a.Lat) * rad
	dLon := float32(b.Lon-a.Lon) * rad

	sLat := sin32(dLat / 2)
	sLon := sin32(dLon / 2)
	h := sLat*sLat + cos32(lat1)*cos32(lat2)*sLon*sLon
	c := 2 * atan2_32(sqrt32(h), sqrt32(1-h))

	return EarthRadiusMeters * float64(c)
}

// FormatDistance renders meters for display: "750m", "4.3km", "15km".
func FormatDistance(meters float64) string {
	switch {
	case meters < 1000:
		return fmt.Sprintf("%.0fm", meters)
	case meters < 10000:
		return fmt.Sprintf("%.1fkm", meters/1000)
	default:
		return fmt.Sprintf("%.0fkm", meters/1000)
	}
}

func sin32(x float32) float32       { return float32(math.Sin(float64(x))) }
func cos32(x float32) float32       { return float32(math.Cos(float64(x))) }
func sqrt32(x float32) float32      { return float32(math.Sqrt(float64(x))) }
func atan2_32(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }

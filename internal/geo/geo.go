// SPDX-FileCopyrightText: The roadreport developers
//
// SPDX-License-Identifier: MIT

// Package geo provides the coordinate value type and the small amount of
// spherical math the location resolution engine needs.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Coordinate represents a geographic coordinate in decimal degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Valid checks if the coordinate holds finite values within the EPSG ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// String returns the coordinate as a "lat, lon" pair with six decimal places.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// Bounds describes a latitude/longitude bounding box.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains checks if the coordinate lies within the bounding box. The test is
// inclusive on all four edges.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Latitude >= b.MinLat && c.Latitude <= b.MaxLat &&
		c.Longitude >= b.MinLng && c.Longitude <= b.MaxLng
}

// Valid checks if the bounding box is well-formed.
func (b Bounds) Valid() bool {
	return b.MinLat <= b.MaxLat && b.MinLng <= b.MaxLng &&
		b.MinLat >= -90 && b.MaxLat <= 90 && b.MinLng >= -180 && b.MaxLng <= 180
}

// Distance calculates the great-circle distance between two coordinates in
// kilometers using the Haversine formula. Callers are expected to pass valid
// coordinates; garbage in, garbage out.
func Distance(a, b Coordinate) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

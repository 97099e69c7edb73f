// internal/geo/geo.go
//
// Great-circle helpers used to build guess clues.
// Responsibilities:
//   - Haversine distance between two WGS84 points (kilometers).
//   - Initial compass bearing from one point toward another.
//   - Mapping a bearing onto compass labels and arrow glyphs.
//
// All functions are pure and deterministic.

package geo

import (
	"errors"
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used by HaversineKm.
	EarthRadiusKm = 6371.0

	kmPerMile = 1.609344
)

// ErrClueUnavailable is returned when a point is missing or malformed.
var ErrClueUnavailable = errors.New("clue unavailable")

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether p is a finite coordinate inside the WGS84 range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// InitialBearing returns the initial bearing from `from` toward `to`
// in degrees, normalized to [0, 360).
func InitialBearing(from, to Point) float64 {
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)
	dLon := radians(to.Lon - from.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	// atan2 can land on exactly 360 after the shift for tiny negative values.
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// KmToMiles converts kilometers to statute miles.
func KmToMiles(km float64) float64 { return km / kmPerMile }

func radians(deg float64) float64 { return deg * math.Pi / 180 }

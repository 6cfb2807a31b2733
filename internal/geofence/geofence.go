// Package geofence evaluates GPS coordinates against circular work-location zones.
package geofence

import (
	"errors"
	"math"
)

// EarthRadiusMeters is the mean earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// ErrInvalidCoordinate indicates a latitude or longitude outside its valid range.
var ErrInvalidCoordinate = errors.New("geofence: invalid coordinate")

// Point is a WGS84 latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// Validate reports ErrInvalidCoordinate when the point is out of range or not a number.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return ErrInvalidCoordinate
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return ErrInvalidCoordinate
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Zone is a circular allowed region around a work location.
type Zone struct {
	ID           string
	Center       Point
	RadiusMeters float64
}

// Result describes the outcome of evaluating a point against a set of zones.
type Result struct {
	// NearestID is empty when no zones were supplied.
	NearestID string
	// DistanceMeters is the distance to the nearest zone center.
	DistanceMeters float64
	// Within is true when the point lies inside at least one zone.
	Within bool
}

// HasNearest reports whether a nearest zone was found.
func (r Result) HasNearest() bool {
	return r.NearestID != ""
}

// Distance returns the great-circle distance in meters using the Haversine formula.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if h > 1 {
		h = 1
	}
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Evaluate finds the nearest zone and whether p falls inside any zone.
//
// A point outside every zone is not an error; callers record it and flag it
// for review.
func Evaluate(p Point, zones []Zone) Result {
	var result Result
	best := math.Inf(1)
	for _, zone := range zones {
		d := Distance(p, zone.Center)
		if d < best {
			best = d
			result.NearestID = zone.ID
			result.DistanceMeters = d
		}
		if d <= zone.RadiusMeters {
			result.Within = true
		}
	}
	return result
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Package geo holds the coordinate math shared by routes, progress and rendering.
package geo

import (
	"math"
)

const (
	// EarthRadius is the mean earth radius in meters.
	EarthRadius = 6371000

	// WaypointSpacing is the distance in meters covered by one generated waypoint.
	WaypointSpacing = 300
	MinWaypoints    = 1
	MaxWaypoints    = 20
)

// Coord is a geographic coordinate in degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies within the WGS84 degree ranges.
func (c Coord) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Midpoint returns the arithmetic mean of two coordinates.
func Midpoint(a, b Coord) Coord {
	return Coord{
		Lat: (a.Lat + b.Lat) / 2,
		Lng: (a.Lng + b.Lng) / 2,
	}
}

// Interpolate returns the point at fraction f along the straight segment a→b.
func Interpolate(a, b Coord, f float64) Coord {
	return Coord{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lng: a.Lng + (b.Lng-a.Lng)*f,
	}
}

// Distance calculates the great-circle distance between two points in meters.
func Distance(a, b Coord) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// PathDistance sums the pairwise distances along points, in meters.
func PathDistance(points []Coord) float64 {
	var sum float64
	for i := 1; i < len(points); i++ {
		sum += Distance(points[i-1], points[i])
	}
	return sum
}

// WaypointCount is the number of points GenerateWaypoints places over d meters.
func WaypointCount(d float64) int {
	n := int(math.Floor(d / WaypointSpacing))
	if n < MinWaypoints {
		return MinWaypoints
	}
	if n > MaxWaypoints {
		return MaxWaypoints
	}
	return n
}

// GenerateWaypoints splits start→end into evenly spaced intermediate points.
// The anchors themselves are not included.
func GenerateWaypoints(start, end Coord) []Coord {
	count := WaypointCount(Distance(start, end))
	points := make([]Coord, 0, count)
	for i := 1; i <= count; i++ {
		points = append(points, Interpolate(start, end, float64(i)/float64(count+1)))
	}
	return points
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

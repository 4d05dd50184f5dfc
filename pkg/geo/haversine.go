// Package geo holds the distance functions used across the engine.
//
// Two metrics exist and each has a single job: Haversine measures physical
// edge lengths in meters; PlanarSquared ranks candidate nodes for
// nearest-node lookups. The nearest-node metric is plain Euclidean distance
// in (longitude, latitude) degree space, so it can be bounded exactly by an
// R-tree box distance.
package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Point builds an orb point from latitude and longitude.
func Point(lat, lon float64) orb.Point {
	return orb.Point{lon, lat}
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return orbgeo.DistanceHaversine(Point(lat1, lon1), Point(lat2, lon2))
}

// PlanarSquared returns the squared Euclidean distance in degree space.
func PlanarSquared(lat1, lon1, lat2, lon2 float64) float64 {
	return planar.DistanceSquared(Point(lat1, lon1), Point(lat2, lon2))
}

// LineLength returns the haversine length in meters of a polyline.
func LineLength(ls orb.LineString) float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += orbgeo.DistanceHaversine(ls[i-1], ls[i])
	}
	return total
}

// Public domain.

// Package geo holds geodetic coordinate types and their conversion to a
// Cartesian approximation of the Earth.
package geo

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/unit"
)

// Point is a geodetic position.  Lat and Lon are signed, negative meaning
// south and west.  Alt is meters above the reference ellipsoid, negative
// below.
type Point struct {
	Lat, Lon unit.Angle
	Alt      float64
}

// Converter converts geodetic positions to Cartesian coordinates in meters.
//
// Implementations must be stateless: the same input always yields the same
// output and repeated or concurrent calls are safe.
type Converter interface {
	Euclidean(pts []Point) []coord.Cart
}

// WGS84 is the World Geodetic System 1984 reference ellipsoid.
var WGS84 = globe.Ellipsoid{Er: 6378.137, Fl: 1 / 298.257223563}

// EllipsoidConverter converts geodetic positions to geocentric Cartesian
// coordinates on a reference ellipsoid.
//
// The frame has x toward latitude 0°, longitude 0°, y toward longitude 90°
// east, and z toward the north pole.  Units are meters.
type EllipsoidConverter struct {
	E globe.Ellipsoid
}

// NewWGS84Converter returns an EllipsoidConverter on the WGS-84 ellipsoid.
func NewWGS84Converter() *EllipsoidConverter {
	return &EllipsoidConverter{WGS84}
}

// Euclidean implements Converter.
func (ec *EllipsoidConverter) Euclidean(pts []Point) []coord.Cart {
	// globe.Ellipsoid.Er is in kilometers; parallax constants are in
	// units of Er.
	erm := ec.E.Er * 1000
	cs := make([]coord.Cart, len(pts))
	for i, p := range pts {
		s, c := ec.E.ParallaxConstants(p.Lat, p.Alt)
		sl, cl := math.Sincos(p.Lon.Rad())
		cs[i] = coord.Cart{
			X: erm * c * cl,
			Y: erm * c * sl,
			Z: erm * s,
		}
	}
	return cs
}

// Midpoint returns the midpoint of the per-axis bounding box of the
// latitudes and longitudes of pts: (min+max)/2 for each axis
// independently.  It is a cheap representative location, not a centroid.
//
// Midpoint panics if pts is empty.
func Midpoint(pts []Point) (lat, lon unit.Angle) {
	minLat, maxLat := pts[0].Lat, pts[0].Lat
	minLon, maxLon := pts[0].Lon, pts[0].Lon
	for _, p := range pts[1:] {
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
		if p.Lon < minLon {
			minLon = p.Lon
		}
		if p.Lon > maxLon {
			maxLon = p.Lon
		}
	}
	return (minLat + maxLat) / 2, (minLon + maxLon) / 2
}

// Public domain.

package geo_test

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solmap/georef/geo"
)

func TestMidpoint(t *testing.T) {
	pts := []geo.Point{
		{Lat: unit.AngleFromDeg(-10), Lon: unit.AngleFromDeg(30)},
		{Lat: unit.AngleFromDeg(0), Lon: unit.AngleFromDeg(40)},
		{Lat: unit.AngleFromDeg(20), Lon: unit.AngleFromDeg(50)},
	}
	lat, lon := geo.Midpoint(pts)
	assert.InDelta(t, 5, lat.Deg(), 1e-12)
	assert.InDelta(t, 40, lon.Deg(), 1e-12)
}

func TestMidpointSingle(t *testing.T) {
	lat, lon := geo.Midpoint([]geo.Point{
		{Lat: unit.AngleFromDeg(12), Lon: unit.AngleFromDeg(-7)},
	})
	assert.InDelta(t, 12, lat.Deg(), 1e-12)
	assert.InDelta(t, -7, lon.Deg(), 1e-12)
}

const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
)

func TestConverterEquator(t *testing.T) {
	c := geo.NewWGS84Converter()
	pts := c.Euclidean([]geo.Point{
		{},
		{Lon: unit.AngleFromDeg(90)},
		{Alt: 100},
	})
	require.Len(t, pts, 3)

	// latitude 0, longitude 0 is the x axis at equatorial radius
	assert.InDelta(t, wgs84A, pts[0].X, 1e-6)
	assert.InDelta(t, 0, pts[0].Y, 1e-6)
	assert.InDelta(t, 0, pts[0].Z, 1e-6)

	// longitude 90°E is the y axis
	assert.InDelta(t, 0, pts[1].X, 1e-3)
	assert.InDelta(t, wgs84A, pts[1].Y, 1e-6)

	// altitude adds along the local vertical
	assert.InDelta(t, wgs84A+100, pts[2].X, 1e-6)
}

func TestConverterPole(t *testing.T) {
	c := geo.NewWGS84Converter()
	p := c.Euclidean([]geo.Point{{Lat: unit.AngleFromDeg(90)}})[0]

	b := wgs84A * (1 - wgs84F) // polar radius
	assert.InDelta(t, b, p.Z, 1e-3)
	assert.InDelta(t, 0, math.Hypot(p.X, p.Y), 1)
}

// Cross-check the parallax-constant formulation against the prime
// vertical radius formulation of geodetic to geocentric conversion.
func TestConverterMidLatitude(t *testing.T) {
	lat := unit.AngleFromDeg(45)
	c := geo.NewWGS84Converter()
	p := c.Euclidean([]geo.Point{{Lat: lat, Alt: 250}})[0]

	e2 := wgs84F * (2 - wgs84F)
	sφ, cφ := math.Sincos(lat.Rad())
	n := wgs84A / math.Sqrt(1-e2*sφ*sφ)
	assert.InDelta(t, (n+250)*cφ, p.X, 1e-4)
	assert.InDelta(t, 0, p.Y, 1e-6)
	assert.InDelta(t, (n*(1-e2)+250)*sφ, p.Z, 1e-4)
}

func TestConverterSouthWest(t *testing.T) {
	c := geo.NewWGS84Converter()
	p := c.Euclidean([]geo.Point{
		{Lat: unit.AngleFromDeg(-30), Lon: unit.AngleFromDeg(-60)},
	})[0]
	assert.Less(t, p.Z, 0.0)
	assert.Less(t, p.Y, 0.0)
	assert.Greater(t, p.X, 0.0)
}

// repeated conversion of the same input must be bit-identical: the
// converter carries no state.
func TestConverterStateless(t *testing.T) {
	c := geo.NewWGS84Converter()
	pts := []geo.Point{
		{Lat: unit.AngleFromDeg(48.86), Lon: unit.AngleFromDeg(2.35), Alt: 35},
	}
	assert.Equal(t, c.Euclidean(pts), c.Euclidean(pts))
}

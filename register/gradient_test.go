// Public domain.

package register

import (
	"testing"

	"github.com/soniakeys/coord"
	"github.com/stretchr/testify/assert"
)

// The analytic gradient must agree with central finite differences of
// the objective at a generic point.
func TestGradientMatchesFiniteDifferences(t *testing.T) {
	cs := []Correspondence{
		{Model: coord.Cart{X: 0.4, Y: -0.2, Z: 0.7}, Geo: coord.Cart{X: 1.1, Y: 0.3, Z: -0.5}},
		{Model: coord.Cart{X: -1, Y: 0.5, Z: 0.1}, Geo: coord.Cart{X: -0.7, Y: 1.2, Z: 0.4}},
		{Model: coord.Cart{X: 0.9, Y: 1.4, Z: -0.3}, Geo: coord.Cart{X: 0.2, Y: -0.8, Z: 1.5}},
		{Model: coord.Cart{X: 0.1, Y: -0.6, Z: -1.2}, Geo: coord.Cart{X: -1.3, Y: 0.6, Z: 0.9}},
	}
	x := []float64{1.3, 0.2, -0.4, 0.5, 0.3, -0.2, 0.7}

	grad := make([]float64, len(x))
	gradient(grad, cs, x)

	const h = 1e-6
	for i := range x {
		xp := append([]float64{}, x...)
		xm := append([]float64{}, x...)
		xp[i] += h
		xm[i] -= h
		fd := (SumSquaredResiduals(cs, fromVector(xp)) -
			SumSquaredResiduals(cs, fromVector(xm))) / (2 * h)
		assert.InDelta(t, fd, grad[i], 1e-5, "component %d", i)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	p := Params{
		Scale: 2.5,
		T:     coord.Cart{X: 1, Y: -2, Z: 3},
		Rx:    0.1, Ry: 0.2, Rz: 0.3,
	}
	assert.Equal(t, p, fromVector(p.vector()))
}

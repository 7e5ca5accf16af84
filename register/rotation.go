// Public domain.

package register

import (
	"math"

	"github.com/soniakeys/coord"
)

// RotX returns the rotation matrix about the x axis by angle a in radians.
func RotX(a float64) coord.M3 {
	s, c := math.Sincos(a)
	return coord.M3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns the rotation matrix about the y axis by angle a in radians.
func RotY(a float64) coord.M3 {
	s, c := math.Sincos(a)
	return coord.M3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// RotZ returns the rotation matrix about the z axis by angle a in radians.
func RotZ(a float64) coord.M3 {
	s, c := math.Sincos(a)
	return coord.M3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// MatMul returns the matrix product a·b.  Matrices are row-major as in
// coord.M3.
func MatMul(a, b coord.M3) (m coord.M3) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i*3+j] = a[i*3]*b[j] + a[i*3+1]*b[3+j] + a[i*3+2]*b[6+j]
		}
	}
	return
}

// EulerMatrix returns Rz(rz)·Ry(ry)·Rx(rx), the rotation about x applied
// first, then y, then z.  This composition order is a fixed contract
// shared by the fitter and the placement composer.
func EulerMatrix(rx, ry, rz float64) coord.M3 {
	return MatMul(RotZ(rz), MatMul(RotY(ry), RotX(rx)))
}

// Derivatives of the single-axis rotations with respect to their angle.
// Used for the analytic gradient of the fit objective.

func drotX(a float64) coord.M3 {
	s, c := math.Sincos(a)
	return coord.M3{
		0, 0, 0,
		0, -s, -c,
		0, c, -s,
	}
}

func drotY(a float64) coord.M3 {
	s, c := math.Sincos(a)
	return coord.M3{
		-s, 0, c,
		0, 0, 0,
		-c, 0, -s,
	}
}

func drotZ(a float64) coord.M3 {
	s, c := math.Sincos(a)
	return coord.M3{
		-s, -c, 0,
		c, -s, 0,
		0, 0, 0,
	}
}

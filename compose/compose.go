// Public domain.

// Package compose turns a fitted registration into the placement record
// consumed by the downstream renderer.
//
// The fitter works in the geodetic Cartesian frame anchored at latitude
// 0°, longitude 0°.  The renderer wants orientation relative to the
// local tangent plane at the scene's reference location, in its own axis
// convention (+Y up, -Z north, +X east).  This package applies both
// adjustments and emits the orientation as a unit quaternion.
package compose

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/num/quat"

	"github.com/solmap/georef/register"
)

// AxisAdapter maps the de-rotated geodetic frame (x up, y east, z north
// at the reference location) to the renderer frame: east to +X, up to
// +Y, north to -Z.  Its determinant is +1, so it is a proper rotation.
var AxisAdapter = coord.M3{
	0, 1, 0,
	1, 0, 0,
	0, 0, -1,
}

// Placement is the registration output handed to the renderer: where the
// reconstruction sits on Earth and how it is oriented there.
//
// Quaternion components are Hamilton convention, w + xi + yj + zk,
// rotating column vectors as q·v·q⁻¹.
type Placement struct {
	Scale       float64    `json:"scale"`
	Translation [3]float64 `json:"translation"`
	Quaternion  [4]float64 `json:"quaternion"` // w, x, y, z
	RefLat      float64    `json:"ref_lat"`    // degrees
	RefLon      float64    `json:"ref_lon"`    // degrees
	ResidualRMS float64    `json:"residual_rms_m"`
	Converged   bool       `json:"converged"`
}

// TangentDerotation returns the rotation Ry(lat)·Rz(-lon) that
// re-expresses an orientation in the local tangent frame at the given
// reference location instead of at the prime meridian/equator.
func TangentDerotation(lat, lon unit.Angle) coord.M3 {
	return register.MatMul(register.RotY(lat.Rad()), register.RotZ(-lon.Rad()))
}

// Quaternion converts a rotation matrix to a unit quaternion.  The
// computation branch is selected from the matrix trace and diagonal so
// that no division by a near-zero quantity occurs, including when the
// trace is near -1.
func Quaternion(m coord.M3) quat.Number {
	switch tr := m[0] + m[4] + m[8]; {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		return quat.Number{
			Real: s / 4,
			Imag: (m[7] - m[5]) / s,
			Jmag: (m[2] - m[6]) / s,
			Kmag: (m[3] - m[1]) / s,
		}
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1+m[0]-m[4]-m[8]) * 2
		return quat.Number{
			Real: (m[7] - m[5]) / s,
			Imag: s / 4,
			Jmag: (m[1] + m[3]) / s,
			Kmag: (m[2] + m[6]) / s,
		}
	case m[4] > m[8]:
		s := math.Sqrt(1+m[4]-m[0]-m[8]) * 2
		return quat.Number{
			Real: (m[2] - m[6]) / s,
			Imag: (m[1] + m[3]) / s,
			Jmag: s / 4,
			Kmag: (m[5] + m[7]) / s,
		}
	default:
		s := math.Sqrt(1+m[8]-m[0]-m[4]) * 2
		return quat.Number{
			Real: (m[3] - m[1]) / s,
			Imag: (m[2] + m[6]) / s,
			Jmag: (m[5] + m[7]) / s,
			Kmag: s / 4,
		}
	}
}

// Compose builds the placement record from a fit result and the
// reference location computed from the original geodetic tags.
func Compose(fit register.FitResult, lat, lon unit.Angle) Placement {
	p := fit.Params
	rfit := register.EulerMatrix(p.Rx, p.Ry, p.Rz)
	final := register.MatMul(AxisAdapter,
		register.MatMul(TangentDerotation(lat, lon), rfit))
	q := Quaternion(final)
	return Placement{
		Scale:       p.Scale,
		Translation: [3]float64{p.T.X, p.T.Y, p.T.Z},
		Quaternion:  [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		RefLat:      lat.Deg(),
		RefLon:      lon.Deg(),
		ResidualRMS: fit.ResidualRMS,
		Converged:   fit.Converged,
	}
}

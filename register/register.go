// Public domain.

// Package register fits the similarity transform taking a structure-from-
// motion reconstruction to geodetic Cartesian space.
//
// Input is a set of correspondences between camera positions in model
// space and the same cameras' GPS positions converted to Cartesian
// meters.  The transform model is
//
//	geo = T + Scale · Rz(rz)·Ry(ry)·Rx(rx) · model
//
// with a single positive scale, so shape is preserved.  The seven
// parameters are solved by quasi-Newton least squares seeded with a
// closed-form initial guess.
package register

import (
	"errors"
	"math"

	"github.com/soniakeys/coord"
	"gonum.org/v1/gonum/optimize"
)

// Correspondence pairs a camera position in model space with the same
// camera's geodetic position in Cartesian meters.  Pairs are built once
// per run; only Normalize modifies them afterward.
type Correspondence struct {
	Model coord.Cart // reconstruction units
	Geo   coord.Cart // meters
}

// Params holds the seven similarity transform parameters.  The flat
// optimizer vector order is [scale, tx, ty, tz, rx, ry, rz].
type Params struct {
	Scale      float64
	T          coord.Cart
	Rx, Ry, Rz float64 // Euler angles, radians; x applied first, then y, then z
}

// FitResult is the outcome of a fit.  When the solver fails its own
// convergence test, Converged is false and Params holds the best
// parameters reached anyway.
type FitResult struct {
	Params      Params
	ResidualRMS float64 // meters
	Converged   bool
}

// ErrInsufficient is returned by Fit when fewer than two correspondences
// are given.  Two points determine scale and translation; fewer cannot.
var ErrInsufficient = errors.New("register: at least 2 correspondences required")

// Apply transforms a model space point to geodetic Cartesian space.
func (p Params) Apply(m coord.Cart) coord.Cart {
	r := EulerMatrix(p.Rx, p.Ry, p.Rz)
	var rm coord.Cart
	rm.Mult3(&r, &m)
	rm.MulScalar(&rm, p.Scale)
	rm.Add(&rm, &p.T)
	return rm
}

func (p Params) vector() []float64 {
	return []float64{p.Scale, p.T.X, p.T.Y, p.T.Z, p.Rx, p.Ry, p.Rz}
}

func fromVector(x []float64) Params {
	return Params{
		Scale: x[0],
		T:     coord.Cart{X: x[1], Y: x[2], Z: x[3]},
		Rx:    x[4], Ry: x[5], Rz: x[6],
	}
}

// Normalize subtracts the first correspondence's geodetic position from
// every geodetic position, anchoring the set at the origin.  Absolute
// position on Earth carries no information for fitting scale and
// rotation, and working near the origin avoids precision loss at
// Earth-radius coordinate magnitudes.
//
// The anchor itself becomes exactly the zero vector.  Normalizing an
// already normalized set is a no-op.
func Normalize(cs []Correspondence) {
	if len(cs) == 0 {
		return
	}
	anchor := cs[0].Geo
	for i := range cs {
		cs[i].Geo.Sub(&cs[i].Geo, &anchor)
	}
}

// Seed computes a closed-form initial guess for a normalized
// correspondence set: scale from the distance ratio of the first point
// pair, translation placing the first model point on the anchor, and
// identity rotation.  On noise-free input the scale is exact, which
// keeps the optimizer away from spurious local optima.
func Seed(cs []Correspondence) Params {
	var d coord.Cart
	d.Sub(&cs[0].Model, &cs[1].Model)
	scale := math.Sqrt(cs[1].Geo.Square()) / math.Sqrt(d.Square())
	var t coord.Cart
	t.MulScalar(&cs[0].Model, -scale)
	return Params{Scale: scale, T: t}
}

// SumSquaredResiduals is the fit objective: the sum over all
// correspondences of the squared Euclidean distance between the
// transformed model point and the measured geodetic point.
func SumSquaredResiduals(cs []Correspondence, p Params) float64 {
	r := EulerMatrix(p.Rx, p.Ry, p.Rz)
	var sum float64
	var g, d coord.Cart
	for _, c := range cs {
		g.Mult3(&r, &c.Model)
		g.MulScalar(&g, p.Scale)
		g.Add(&g, &p.T)
		d.Sub(&g, &c.Geo)
		sum += d.Square()
	}
	return sum
}

// gradient writes the analytic gradient of SumSquaredResiduals at x
// into grad.
func gradient(grad []float64, cs []Correspondence, x []float64) {
	s := x[0]
	t := coord.Cart{X: x[1], Y: x[2], Z: x[3]}
	rxm, rym, rzm := RotX(x[4]), RotY(x[5]), RotZ(x[6])
	r := MatMul(rzm, MatMul(rym, rxm))
	drx := MatMul(rzm, MatMul(rym, drotX(x[4])))
	dry := MatMul(rzm, MatMul(drotY(x[5]), rxm))
	drz := MatMul(drotZ(x[6]), MatMul(rym, rxm))
	for i := range grad {
		grad[i] = 0
	}
	var rm, res, dm coord.Cart
	for _, c := range cs {
		rm.Mult3(&r, &c.Model)
		res.MulScalar(&rm, s)
		res.Add(&res, &t)
		res.Sub(&res, &c.Geo)
		grad[0] += 2 * res.Dot(&rm)
		grad[1] += 2 * res.X
		grad[2] += 2 * res.Y
		grad[3] += 2 * res.Z
		grad[4] += 2 * s * res.Dot(dm.Mult3(&drx, &c.Model))
		grad[5] += 2 * s * res.Dot(dm.Mult3(&dry, &c.Model))
		grad[6] += 2 * s * res.Dot(dm.Mult3(&drz, &c.Model))
	}
}

// Fit minimizes SumSquaredResiduals over the seven transform parameters,
// starting from seed.
//
// Solver failure is not an error: the best parameters reached and their
// residual are still returned, with Converged false, leaving the caller
// to judge whether the accuracy is acceptable.  With exactly two
// correspondences the rotation about the axis joining the points is
// geometrically unconstrained; the solver settles on an arbitrary
// consistent rotation and reports a near-zero residual.  This is
// expected behavior, not a failure.
func Fit(cs []Correspondence, seed Params) (FitResult, error) {
	if len(cs) < 2 {
		return FitResult{}, ErrInsufficient
	}
	prob := optimize.Problem{
		Func: func(x []float64) float64 {
			return SumSquaredResiduals(cs, fromVector(x))
		},
		Grad: func(grad, x []float64) {
			gradient(grad, cs, x)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-9,
		MajorIterations:   500,
	}
	res, err := optimize.Minimize(prob, seed.vector(), settings, &optimize.BFGS{})

	fitted := seed
	converged := false
	if res != nil {
		fitted = fromVector(res.X)
		switch {
		case err != nil:
		case res.Status == optimize.IterationLimit:
		case res.Status == optimize.NotTerminated:
		case res.Status == optimize.Failure:
		default:
			converged = true
		}
	}
	if fitted.Scale <= 0 {
		// A similarity transform has positive scale.  The seed is
		// always positive, so this only happens when the data is
		// thoroughly inconsistent with the model.
		converged = false
	}
	rms := math.Sqrt(SumSquaredResiduals(cs, fitted) / float64(len(cs)))
	return FitResult{Params: fitted, ResidualRMS: rms, Converged: converged}, nil
}

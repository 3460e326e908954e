package augment

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/lanefit/pkg/types"
)

// fitTolerance bounds the RMS residual of a refit, relative to the spread of
// the rotated points.
const fitTolerance = 1e-6

// RotationMatrix returns the homogeneous matrix rotating pixel coordinates by
// angle degrees about c. Positive angles turn counter-clockwise on screen.
func RotationMatrix(angle float64, c types.Point) *mat.Dense {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	return mat.NewDense(3, 3, []float64{
		cos, sin, c.X*(1-cos) - c.Y*sin,
		-sin, cos, c.Y*(1-cos) + c.X*sin,
		0, 0, 1,
	})
}

// RotateLine rotates y = m*x + b about c. The line is sampled at every
// column of a frame of the given width, the points are rotated and a new
// line is fitted by least squares.
func RotateLine(m, b, angle float64, c types.Point, width int, maxSlope float64) (float64, float64, error) {
	if width < 2 {
		return 0, 0, errors.Wrapf(types.ErrConfiguration, "need at least 2 samples, got %d", width)
	}

	xs := make([]float64, width)
	floats.Span(xs, 0, float64(width-1))
	ys := make([]float64, width)
	for i, x := range xs {
		ys[i] = m*x + b
	}

	pts := mat.NewDense(3, width, nil)
	pts.SetRow(0, xs)
	pts.SetRow(1, ys)
	for i := 0; i < width; i++ {
		pts.Set(2, i, 1)
	}

	var rotated mat.Dense
	rotated.Mul(RotationMatrix(angle, c), pts)
	rx := mat.Row(nil, 0, &rotated)
	ry := mat.Row(nil, 1, &rotated)

	if span := floats.Max(rx) - floats.Min(rx); span < 1e-9*float64(width) {
		return 0, 0, errors.Wrapf(types.ErrGeometryDegenerate, "rotated line is vertical (x span %g)", span)
	}

	intercept, slope := stat.LinearRegression(rx, ry, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return 0, 0, errors.Wrap(types.ErrGeometryDegenerate, "refit produced a non-finite line")
	}
	if math.Abs(slope) > maxSlope {
		return 0, 0, errors.Wrapf(types.ErrGeometryDegenerate, "refit slope %g exceeds %g", slope, maxSlope)
	}

	var sq float64
	for i := range rx {
		r := ry[i] - (intercept + slope*rx[i])
		sq += r * r
	}
	rms := math.Sqrt(sq / float64(width))
	if rms > fitTolerance*(1+stat.StdDev(ry, nil)) {
		return 0, 0, errors.Wrapf(types.ErrGeometryDegenerate, "refit residual %g too large", rms)
	}

	return slope, intercept, nil
}

// RotateLabel rotates both lines of l about c.
func RotateLabel(l types.FullLabel, angle float64, c types.Point, width int, maxSlope float64) (types.FullLabel, error) {
	m1, b1, err := RotateLine(l.M1, l.B1, angle, c, width, maxSlope)
	if err != nil {
		return types.FullLabel{}, errors.WithMessage(err, "line 1")
	}
	m2, b2, err := RotateLine(l.M2, l.B2, angle, c, width, maxSlope)
	if err != nil {
		return types.FullLabel{}, errors.WithMessage(err, "line 2")
	}
	return types.FullLabel{M1: m1, M2: m2, B1: b1, B2: b2}, nil
}

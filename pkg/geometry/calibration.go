package geometry

import (
	"github.com/pkg/errors"

	"github.com/menta2k/lanefit/pkg/types"
)

// Interval is a closed range mapped linearly onto [-1, 1].
type Interval struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Normalize maps v from [Min, Max] to [-1, 1].
func (i Interval) Normalize(v float64) float64 {
	return 2*(v-i.Min)/(i.Max-i.Min) - 1
}

// Denormalize is the inverse of Normalize.
func (i Interval) Denormalize(n float64) float64 {
	return (i.Max-i.Min)*((n+1)/2) + i.Min
}

func (i Interval) validate(name string) error {
	if !(i.Max > i.Min) {
		return errors.Wrapf(types.ErrConfiguration, "calibration %s: empty interval [%g, %g]", name, i.Min, i.Max)
	}
	return nil
}

// Calibration holds the empirically fitted bounds of the reduced
// parameterization.
type Calibration struct {
	W1 Interval `json:"w1" yaml:"w1"`
	W2 Interval `json:"w2" yaml:"w2"`
	Q1 Interval `json:"q1" yaml:"q1"`
	Q2 Interval `json:"q2" yaml:"q2"`
}

// DefaultCalibration returns the bounds fitted on the artificial dataset.
func DefaultCalibration() Calibration {
	return Calibration{
		W1: Interval{Min: -0.58, Max: 0.58},
		W2: Interval{Min: -0.58, Max: 0.58},
		Q1: Interval{Min: 50.52, Max: 76.89},
		Q2: Interval{Min: 147.24, Max: 170.66},
	}
}

// Validate rejects intervals that would divide by zero.
func (c Calibration) Validate() error {
	for _, iv := range []struct {
		name string
		iv   Interval
	}{{"w1", c.W1}, {"w2", c.W2}, {"q1", c.Q1}, {"q2", c.Q2}} {
		if err := iv.iv.validate(iv.name); err != nil {
			return err
		}
	}
	return nil
}

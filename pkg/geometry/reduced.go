package geometry

import (
	"github.com/pkg/errors"

	"github.com/menta2k/lanefit/pkg/types"
)

// Parametric is a line written as x = W*(y - D) + Q on a frame of side D:
// W is the inverse slope and Q the column where the line meets the bottom row.
type Parametric struct {
	W float64
	Q float64
}

// ToParametric converts y = m*x + b on a frame of side size.
func ToParametric(m, b float64, size float64) (Parametric, error) {
	if m == 0 {
		return Parametric{}, errors.Wrap(types.ErrGeometryDegenerate, "horizontal line has no bottom-row crossing")
	}
	return Parametric{W: 1 / m, Q: (size - b) / m}, nil
}

// FromParametric is the inverse of ToParametric.
func FromParametric(p Parametric, size float64) (m, b float64, err error) {
	if p.W == 0 {
		return 0, 0, errors.Wrap(types.ErrGeometryDegenerate, "vertical line has no slope")
	}
	return 1 / p.W, size - p.Q/p.W, nil
}

// Extract returns the normalized (w1, w2, q1, q2) of a desired-size label.
func (c *Codec) Extract(l types.FullLabel) ([4]float64, error) {
	p1, err := ToParametric(l.M1, l.B1, c.size)
	if err != nil {
		return [4]float64{}, errors.WithMessage(err, "line 1")
	}
	p2, err := ToParametric(l.M2, l.B2, c.size)
	if err != nil {
		return [4]float64{}, errors.WithMessage(err, "line 2")
	}
	return [4]float64{
		c.cal.W1.Normalize(p1.W),
		c.cal.W2.Normalize(p2.W),
		c.cal.Q1.Normalize(p1.Q),
		c.cal.Q2.Normalize(p2.Q),
	}, nil
}

// reduce drops the second weight, assuming both lines are parallel.
func (c *Codec) reduce(l types.FullLabel) (types.ReducedLabel, error) {
	v, err := c.Extract(l)
	if err != nil {
		return types.ReducedLabel{}, err
	}
	return types.ReducedLabel{W1: v[0], Q1: v[2], Q2: v[3]}, nil
}

// expand rebuilds both lines of a reduced target with m2 == m1.
func (c *Codec) expand(t types.ReducedLabel) (types.FullLabel, error) {
	w := c.cal.W1.Denormalize(t.W1)
	m1, b1, err := FromParametric(Parametric{W: w, Q: c.cal.Q1.Denormalize(t.Q1)}, c.size)
	if err != nil {
		return types.FullLabel{}, err
	}
	m2, b2, err := FromParametric(Parametric{W: w, Q: c.cal.Q2.Denormalize(t.Q2)}, c.size)
	if err != nil {
		return types.FullLabel{}, err
	}
	return types.FullLabel{M1: m1, M2: m2, B1: b1, B2: b2}, nil
}

// ReducedFromRaw builds desired-size lines from an un-normalized (w1, q1, q2)
// annotation, as found in three column label files.
func ReducedFromRaw(w1, q1, q2, size float64) (types.FullLabel, error) {
	m1, b1, err := FromParametric(Parametric{W: w1, Q: q1}, size)
	if err != nil {
		return types.FullLabel{}, err
	}
	m2, b2, err := FromParametric(Parametric{W: w1, Q: q2}, size)
	if err != nil {
		return types.FullLabel{}, err
	}
	return types.FullLabel{M1: m1, M2: m2, B1: b1, B2: b2}, nil
}

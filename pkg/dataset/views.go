package dataset

import (
	"github.com/pkg/errors"

	"github.com/menta2k/lanefit/pkg/augment"
	"github.com/menta2k/lanefit/pkg/types"
)

// Subset exposes the samples of src at the given indices.
type Subset struct {
	src     Source
	indices []int
}

// NewSubset creates a view of src restricted to indices.
func NewSubset(src Source, indices []int) *Subset {
	return &Subset{src: src, indices: append([]int(nil), indices...)}
}

func (s *Subset) Len() int { return len(s.indices) }

func (s *Subset) Get(i int) (types.Sample, error) {
	if i < 0 || i >= len(s.indices) {
		return types.Sample{}, errors.Wrapf(types.ErrIndexOutOfRange, "index %d, length %d", i, len(s.indices))
	}
	return s.src.Get(s.indices[i])
}

// Concat chains sources end to end.
type Concat struct {
	parts []Source
}

// NewConcat creates a dataset holding the samples of every part in order.
func NewConcat(parts ...Source) *Concat {
	return &Concat{parts: parts}
}

func (c *Concat) Len() int {
	n := 0
	for _, p := range c.parts {
		n += p.Len()
	}
	return n
}

func (c *Concat) Get(i int) (types.Sample, error) {
	if i < 0 {
		return types.Sample{}, errors.Wrapf(types.ErrIndexOutOfRange, "index %d", i)
	}
	j := i
	for _, p := range c.parts {
		if j < p.Len() {
			return p.Get(j)
		}
		j -= p.Len()
	}
	return types.Sample{}, errors.Wrapf(types.ErrIndexOutOfRange, "index %d, length %d", i, c.Len())
}

// Rotated augments every sample of src with a random rotation about the
// centre chosen by policy. Each Get draws a fresh angle.
type Rotated struct {
	src    Source
	aug    *augment.Augmentor
	policy augment.CenterPolicy
}

// NewRotated wraps src with an augmentor.
func NewRotated(src Source, aug *augment.Augmentor, policy augment.CenterPolicy) *Rotated {
	return &Rotated{src: src, aug: aug, policy: policy}
}

func (r *Rotated) Len() int { return r.src.Len() }

func (r *Rotated) Get(i int) (types.Sample, error) {
	s, err := r.src.Get(i)
	if err != nil {
		return types.Sample{}, err
	}
	return r.aug.Augment(s, r.policy)
}

// Expand returns src followed by two rotated copies of a random fraction of
// it, one turned about the image centre and one about the sensor axis. Both
// copies share the same indices, drawn without replacement.
func Expand(src Source, aug *augment.Augmentor, fraction float64) (*Concat, error) {
	if aug == nil {
		return nil, errors.Wrap(types.ErrConfiguration, "expand needs an augmentor")
	}
	if fraction < 0 || fraction > 1 {
		return nil, errors.Wrapf(types.ErrConfiguration, "fraction %g outside [0, 1]", fraction)
	}
	n := int(float64(src.Len()) * fraction)
	indices := aug.Perm(src.Len())[:n]

	sub := NewSubset(src, indices)
	return NewConcat(
		src,
		NewRotated(sub, aug, augment.Middle),
		NewRotated(sub, aug, augment.Axis),
	), nil
}

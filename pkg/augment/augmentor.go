// Package augment rotates lidar samples together with their lane labels.
//
// Images are rotated with an affine resampler and the labels are rotated by
// transforming a point cloud sampled along each line and refitting it, so a
// rotated label stays aligned with the rotated pixels.
package augment

import (
	"math/rand/v2"

	"github.com/pkg/errors"

	"github.com/menta2k/lanefit/internal/monitoring"
	"github.com/menta2k/lanefit/pkg/geometry"
	"github.com/menta2k/lanefit/pkg/types"
)

// Config holds the augmentation settings.
type Config struct {
	AngleMin      float64
	AngleMax      float64
	AngleStep     float64
	Interpolation Interpolation
	// MaxAttempts is how many angles Augment draws before giving up on a
	// sample whose geometry degenerates. Values below 1 mean 1.
	MaxAttempts int
}

// DefaultConfig returns the -20..18 degree set in steps of 2.
func DefaultConfig() Config {
	return Config{
		AngleMin:      -20,
		AngleMax:      20,
		AngleStep:     2,
		Interpolation: Bilinear,
		MaxAttempts:   1,
	}
}

// Augmentor rotates samples by angles drawn from a fixed set. It is not safe
// for concurrent use because it owns its random source.
type Augmentor struct {
	codec  *geometry.Codec
	cfg    Config
	angles []float64
	rng    *rand.Rand
}

// New creates an Augmentor. The random source is injected so runs can be
// reproduced from a seed.
func New(codec *geometry.Codec, cfg Config, rng *rand.Rand) (*Augmentor, error) {
	if codec == nil {
		return nil, errors.Wrap(types.ErrConfiguration, "augmentor needs a codec")
	}
	if rng == nil {
		return nil, errors.Wrap(types.ErrConfiguration, "augmentor needs a random source")
	}
	angles := AngleSet(cfg.AngleMin, cfg.AngleMax, cfg.AngleStep)
	if len(angles) == 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "empty angle set [%g, %g) step %g",
			cfg.AngleMin, cfg.AngleMax, cfg.AngleStep)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Augmentor{codec: codec, cfg: cfg, angles: angles, rng: rng}, nil
}

// Angles returns a copy of the angle set.
func (a *Augmentor) Angles() []float64 {
	return append([]float64(nil), a.angles...)
}

// Rotate rotates s by angle degrees about the centre chosen by policy. The
// result carries labels of the same variant and the accumulated angle.
func (a *Augmentor) Rotate(s types.Sample, angle float64, policy CenterPolicy) (types.Sample, error) {
	if s.Image == nil {
		return types.Sample{}, errors.New("sample has no image")
	}
	size := a.codec.DesiredSize()
	if b := s.Image.Bounds(); b.Dx() != size || b.Dy() != size {
		return types.Sample{}, errors.Wrapf(types.ErrConfiguration,
			"sample image is %dx%d, codec expects %d", b.Dx(), b.Dy(), size)
	}

	center := policy.Center(size)
	if angle == 0 {
		return types.Sample{
			Image:  RotateImage(s.Image, 0, center, a.cfg.Interpolation),
			Labels: s.Labels,
			Angle:  s.Angle,
		}, nil
	}

	lines, err := a.codec.Decode(s.Labels)
	if err != nil {
		return types.Sample{}, err
	}
	rotated, err := RotateLabel(lines, angle, center, size, a.codec.MaxSlope())
	if err != nil {
		return types.Sample{}, errors.WithMessagef(err, "rotate %g about %s", angle, policy)
	}
	target, err := a.codec.Normalize(rotated, s.Labels.Variant())
	if err != nil {
		return types.Sample{}, err
	}

	return types.Sample{
		Image:  RotateImage(s.Image, angle, center, a.cfg.Interpolation),
		Labels: target,
		Angle:  s.Angle + angle,
	}, nil
}

// Augment rotates s by a random angle from the set. Angles that make the
// geometry degenerate are redrawn up to MaxAttempts times.
func (a *Augmentor) Augment(s types.Sample, policy CenterPolicy) (types.Sample, error) {
	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		angle := a.Draw()
		out, err := a.Rotate(s, angle, policy)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, types.ErrGeometryDegenerate) {
			return types.Sample{}, err
		}
		monitoring.Logf("augment: attempt %d/%d: %v", attempt, a.cfg.MaxAttempts, err)
		lastErr = err
	}
	return types.Sample{}, errors.WithMessagef(lastErr, "no usable angle after %d attempts", a.cfg.MaxAttempts)
}

// Draw returns a random angle from the set.
func (a *Augmentor) Draw() float64 {
	return a.angles[a.rng.IntN(len(a.angles))]
}

// Perm returns a random permutation of [0, n) from the augmentor's source.
func (a *Augmentor) Perm(n int) []int {
	return a.rng.Perm(n)
}

package augment

import (
	"fmt"
	"math"

	"github.com/menta2k/lanefit/pkg/types"
)

// CenterPolicy chooses the point images and labels are rotated about.
type CenterPolicy int

const (
	// Middle rotates about the image centre.
	Middle CenterPolicy = iota
	// Axis rotates about the bottom-centre pixel, where the sensor sits.
	Axis
)

func (p CenterPolicy) String() string {
	switch p {
	case Middle:
		return "middle"
	case Axis:
		return "axis"
	default:
		return fmt.Sprintf("CenterPolicy(%d)", int(p))
	}
}

// ParseCenterPolicy maps a config string onto a CenterPolicy.
func ParseCenterPolicy(s string) (CenterPolicy, error) {
	switch s {
	case "middle", "":
		return Middle, nil
	case "axis":
		return Axis, nil
	default:
		return Middle, fmt.Errorf("unknown center policy: %s", s)
	}
}

// Center returns the rotation centre for a square image of the given side.
func (p CenterPolicy) Center(size int) types.Point {
	half := float64(size / 2)
	if p == Axis {
		return types.Point{X: half, Y: float64(size)}
	}
	return types.Point{X: half, Y: half}
}

// AngleSet returns the angles in [min, max) spaced by step, with 0 left out.
// The values are computed from integer multiples of step so no drift builds up.
func AngleSet(min, max, step float64) []float64 {
	if step <= 0 || max <= min {
		return nil
	}
	n := int(math.Ceil((max - min) / step))
	angles := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		a := min + float64(i)*step
		if a >= max {
			break
		}
		if math.Abs(a) < step*1e-9 {
			continue
		}
		angles = append(angles, a)
	}
	return angles
}

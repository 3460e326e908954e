package augment

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/menta2k/lanefit/pkg/types"
)

// Background is the value exposed corners are filled with.
const Background = 255

// Interpolation selects the resampler used to rotate images.
type Interpolation int

const (
	Bilinear Interpolation = iota
	Nearest
)

// ParseInterpolation maps a config string onto an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "bilinear", "":
		return Bilinear, nil
	case "nearest":
		return Nearest, nil
	default:
		return Bilinear, fmt.Errorf("unknown interpolation: %s", s)
	}
}

func (i Interpolation) interpolator() draw.Interpolator {
	if i == Nearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

// RotateImage rotates img by angle degrees about the pixel c, using the same
// convention as RotationMatrix so rotated labels stay on their pixels.
func RotateImage(img *image.Gray, angle float64, c types.Point, interp Interpolation) *image.Gray {
	bounds := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if angle == 0 {
		draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
		return dst
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Gray{Y: Background}), image.Point{}, draw.Src)

	// draw works in continuous coordinates where pixel i covers [i, i+1),
	// so the pixel centre c sits at c+0.5.
	cx := c.X + 0.5 + float64(bounds.Min.X)
	cy := c.Y + 0.5 + float64(bounds.Min.Y)
	sin, cos := math.Sincos(angle * math.Pi / 180)
	s2d := f64.Aff3{
		cos, sin, cx*(1-cos) - cy*sin - float64(bounds.Min.X),
		-sin, cos, cy*(1-cos) + cx*sin - float64(bounds.Min.Y),
	}

	interp.interpolator().Transform(dst, s2d, img, bounds, draw.Src, nil)
	return dst
}

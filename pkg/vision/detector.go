package vision

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/lanefit/pkg/types"
)

// ReturnDetector finds lidar returns in a grayscale sample and measures how
// well a label explains them
type ReturnDetector struct {
	config DetectionConfig
}

// DetectionConfig holds configuration for return detection
type DetectionConfig struct {
	// Threshold separates returns from background.
	Threshold uint8
	// Bright marks returns as pixels above Threshold instead of below.
	Bright bool
	// Band is the distance in pixels within which a return supports a line.
	Band float64
}

// New creates a new ReturnDetector for dark returns on a white background
func New() *ReturnDetector {
	return &ReturnDetector{
		config: DetectionConfig{
			Threshold: 128,
			Band:      3,
		},
	}
}

// NewWithConfig creates a new ReturnDetector with custom configuration
func NewWithConfig(config DetectionConfig) *ReturnDetector {
	return &ReturnDetector{config: config}
}

// Support summarizes how the returns of an image relate to a label
type Support struct {
	Returns int `json:"returns"`
	// Line1 and Line2 are the fractions of returns within Band of each line.
	Line1 float64 `json:"line1"`
	Line2 float64 `json:"line2"`
	// Explained is the fraction of returns near either line.
	Explained float64 `json:"explained"`
	// MeanDistance is the mean distance of each return to its nearest line.
	MeanDistance float64 `json:"mean_distance"`
}

// Returns lists the pixels classified as lidar returns
func (d *ReturnDetector) Returns(img *image.Gray) []types.Point {
	bounds := img.Bounds()
	var pts []types.Point
	for y := 0; y < bounds.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			v := row[x]
			if (d.config.Bright && v > d.config.Threshold) || (!d.config.Bright && v < d.config.Threshold) {
				pts = append(pts, types.Point{X: float64(x), Y: float64(y)})
			}
		}
	}
	return pts
}

// Support scores l against the returns of img. Both must be in the same
// pixel frame.
func (d *ReturnDetector) Support(img *image.Gray, l types.FullLabel) Support {
	pts := d.Returns(img)
	s := Support{Returns: len(pts)}
	if len(pts) == 0 {
		return s
	}

	dists := make([]float64, len(pts))
	var near1, near2, near int
	for i, p := range pts {
		d1 := lineDistance(p, l.M1, l.B1)
		d2 := lineDistance(p, l.M2, l.B2)
		if d1 <= d.config.Band {
			near1++
		}
		if d2 <= d.config.Band {
			near2++
		}
		dists[i] = math.Min(d1, d2)
		if dists[i] <= d.config.Band {
			near++
		}
	}

	n := float64(len(pts))
	s.Line1 = float64(near1) / n
	s.Line2 = float64(near2) / n
	s.Explained = float64(near) / n
	s.MeanDistance = stat.Mean(dists, nil)
	return s
}

// lineDistance is the perpendicular distance from p to y = m*x + b
func lineDistance(p types.Point, m, b float64) float64 {
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return math.Inf(1)
	}
	return math.Abs(m*p.X-p.Y+b) / math.Sqrt(1+m*m)
}

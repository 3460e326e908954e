package types

import (
	"image"
	"math"
)

// Variant selects how a pair of lane lines is encoded as a network target.
type Variant int

const (
	// VariantFull encodes both lines as (azimuth1, azimuth2, d1, d2).
	VariantFull Variant = iota
	// VariantReduced encodes (w1, q1, q2) assuming both lines share a slope.
	VariantReduced
)

func (v Variant) String() string {
	switch v {
	case VariantFull:
		return "full"
	case VariantReduced:
		return "reduced"
	default:
		return "unknown"
	}
}

// ParseVariant maps a config string onto a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "full", "":
		return VariantFull, true
	case "reduced":
		return VariantReduced, true
	default:
		return VariantFull, false
	}
}

// FullLabel holds two lines y = m*x + b in pixel coordinates, y pointing down
// and the origin at the top-left corner.
type FullLabel struct {
	M1 float64 `json:"m1"`
	M2 float64 `json:"m2"`
	B1 float64 `json:"b1"`
	B2 float64 `json:"b2"`
}

// Finite reports whether every component is a finite number.
func (l FullLabel) Finite() bool {
	for _, v := range []float64{l.M1, l.M2, l.B1, l.B2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Target is a normalized network regression target.
type Target interface {
	Variant() Variant
	Values() []float64
}

// AzimuthLabel is the full normalized target. Azimuths are atan(m)/pi and
// distances are intercepts mapped to [-1, 1].
type AzimuthLabel struct {
	Azimuth1 float64 `json:"azimuth1"`
	Azimuth2 float64 `json:"azimuth2"`
	D1       float64 `json:"d1"`
	D2       float64 `json:"d2"`
}

func (AzimuthLabel) Variant() Variant { return VariantFull }

func (l AzimuthLabel) Values() []float64 {
	return []float64{l.Azimuth1, l.Azimuth2, l.D1, l.D2}
}

// ReducedLabel is the three value target used when both lines are parallel.
// W1 is the shared inverse slope, Q1 and Q2 the bottom-row crossings, all
// rescaled to [-1, 1].
type ReducedLabel struct {
	W1 float64 `json:"w1"`
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
}

func (ReducedLabel) Variant() Variant { return VariantReduced }

func (l ReducedLabel) Values() []float64 {
	return []float64{l.W1, l.Q1, l.Q2}
}

// Frame describes the crop and resize applied to one raw image. It is
// returned by the image pipeline and handed to the label codec for the same
// sample; it is never shared between samples.
type Frame struct {
	// RawSize is the width of the raw image in pixels.
	RawSize int `json:"raw_size"`
	// CropX is the number of columns removed from each side.
	CropX int `json:"crop_x"`
	// CroppedSize is the side of the square region kept before resizing.
	CroppedSize int `json:"cropped_size"`
	// CropFactorX is the configured horizontal crop fraction.
	CropFactorX float64 `json:"crop_factor_x"`
	// DesiredSize is the side of the resized output.
	DesiredSize int `json:"desired_size"`
}

// IdentityFrame is the frame of an image that is already at its final size.
func IdentityFrame(size int) Frame {
	return Frame{RawSize: size, CroppedSize: size, DesiredSize: size}
}

// ResizeFactor is DesiredSize / CroppedSize.
func (f Frame) ResizeFactor() float64 {
	return float64(f.DesiredSize) / float64(f.CroppedSize)
}

// CropFactorY is the fraction of the raw height kept by the vertical crop.
func (f Frame) CropFactorY() float64 {
	return float64(f.CroppedSize) / float64(f.RawSize)
}

// Point is a pixel position in float coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is one training record.
type Sample struct {
	Image  *image.Gray
	Labels Target
	// Angle is the applied rotation in degrees, 0 when not augmented.
	Angle float64
}

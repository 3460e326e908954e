package cropper

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Channel selects which plane of a colour image becomes the grayscale input.
type Channel int

const (
	// ChannelLuma converts with the standard luma weights.
	ChannelLuma Channel = iota
	// ChannelGreen keeps only the green plane, where the rendered lidar
	// returns are drawn.
	ChannelGreen
)

// ParseChannel maps a config string onto a Channel.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "luma", "gray", "":
		return ChannelLuma, nil
	case "green":
		return ChannelGreen, nil
	default:
		return ChannelLuma, fmt.Errorf("unknown channel: %s", s)
	}
}

// ExtractChannel returns a grayscale copy of img with bounds starting at 0,0.
func ExtractChannel(img image.Image, ch Channel) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if ch == ChannelGreen {
		for y := 0; y < bounds.Dy(); y++ {
			row := out.Pix[y*out.Stride:]
			for x := 0; x < bounds.Dx(); x++ {
				_, g, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				row[x] = uint8(g >> 8)
			}
		}
		return out
	}

	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

// toGray flattens an equal-channel image back to a single plane.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

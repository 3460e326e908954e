package processing

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/lanefit/pkg/types"
)

// Processor renders and saves inspection images
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// Overlay colours
var (
	Line1Color  = color.NRGBA{0, 255, 0, 255}
	Line2Color  = color.NRGBA{255, 0, 0, 255}
	CenterColor = color.NRGBA{0, 170, 255, 255}
)

// CreateLabelOverlay draws both lane lines of l on a colour copy of img.
// Each marker in centers is drawn as a small crosshair.
func (p *Processor) CreateLabelOverlay(img image.Image, l types.FullLabel, centers ...types.Point) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()
	stroke := int(math.Max(1, 0.004*float64(minInt(w, h))))

	drawLine(nrgba, l.M1, l.B1, Line1Color, stroke)
	drawLine(nrgba, l.M2, l.B2, Line2Color, stroke)

	cross := int(math.Max(3, 0.02*float64(minInt(w, h))))
	for _, c := range centers {
		px, py := int(math.Round(c.X)), int(math.Round(c.Y))
		drawHLine(nrgba, py, px-cross, px+cross+1, CenterColor)
		drawVLine(nrgba, px, py-cross, py+cross+1, CenterColor)
	}

	return nrgba
}

// drawLine rasterizes y = m*x + b. Shallow lines are stepped along x and
// steep ones along y so the stroke has no gaps.
func drawLine(img *image.NRGBA, m, b float64, c color.NRGBA, stroke int) {
	if math.IsNaN(m) || math.IsInf(m, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
		return
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	half := stroke / 2

	if math.Abs(m) <= 1 {
		for x := 0; x < w; x++ {
			y := int(math.Round(m*float64(x) + b))
			drawVLine(img, x, y-half, y-half+stroke, c)
		}
		return
	}
	for y := 0; y < h; y++ {
		x := int(math.Round((float64(y) - b) / m))
		drawHLine(img, y, x-half, x-half+stroke, c)
	}
}

// Helper functions
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

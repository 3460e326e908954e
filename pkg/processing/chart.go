package processing

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SupportPoint is one sample on a support chart
type SupportPoint struct {
	Index     int
	Angle     float64
	Explained float64
}

// SaveSupportChart plots the explained return fraction per sample, original
// and rotated samples as separate series. The format follows the extension of
// path.
func (p *Processor) SaveSupportChart(points []SupportPoint, path string) error {
	if len(points) == 0 {
		return errors.New("no samples to plot")
	}

	var orig, rotated plotter.XYs
	for _, pt := range points {
		xy := plotter.XY{X: float64(pt.Index), Y: pt.Explained}
		if pt.Angle == 0 {
			orig = append(orig, xy)
		} else {
			rotated = append(rotated, xy)
		}
	}

	pl := plot.New()
	pl.Title.Text = "Label support"
	pl.X.Label.Text = "Sample"
	pl.Y.Label.Text = "Explained returns"
	pl.Y.Min = 0
	pl.Y.Max = 1

	for _, series := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
	}{
		{"original", orig, color.RGBA{0, 120, 0, 255}},
		{"rotated", rotated, color.RGBA{200, 0, 0, 255}},
	} {
		if len(series.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(series.pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = series.color
		sc.GlyphStyle.Radius = vg.Points(2)
		pl.Add(sc)
		pl.Legend.Add(series.name, sc)
	}
	pl.Legend.Top = true

	if err := pl.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}

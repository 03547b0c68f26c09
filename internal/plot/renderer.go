// Package plot renders the BET scatter with its least-squares overlay into
// an embeddable PNG. Rendering is deterministic: identical inputs produce an
// identical image.
package plot

import (
	"bytes"
	"errors"
	"fmt"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"betlab/internal/betfit"
)

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("no points to render")

// Options controls labels and canvas size. Zero values get defaults.
type Options struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "BET Plot"
	}
	if o.Width == 0 {
		o.Width = 6 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 4.5 * vg.Inch
	}
	return o
}

// Render draws the raw (x, y) points as a scatter and the fit line across
// the fit domain, with a legend noting slope and intercept.
func Render(x, y []*float64, fit betfit.Fit, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var pts plotter.XYs
	for i := 0; i < n; i++ {
		if x[i] == nil || y[i] == nil {
			continue
		}
		pts = append(pts, plotter.XY{X: *x[i], Y: *y[i]})
	}
	if len(pts) == 0 {
		return nil, ErrNoPoints
	}

	p := gplot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.Legend.Add("measured", scatter)

	// Fit line spans the observed x range only, never extrapolated.
	line, err := plotter.NewLine(plotter.XYs{
		{X: fit.XMin, Y: fit.At(fit.XMin)},
		{X: fit.XMax, Y: fit.At(fit.XMax)},
	})
	if err != nil {
		return nil, fmt.Errorf("build fit line: %w", err)
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("fit: slope=%.4g, intercept=%.4g", fit.Slope, fit.Intercept), line)
	p.Legend.Top = true

	w, err := p.WriterTo(opts.Width, opts.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

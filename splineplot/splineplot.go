// Package splineplot renders fitted spline problems with gonum/plot.
package splineplot

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/splinefit/spline"
)

// Options controls how a problem is drawn.
type Options struct {
	// Derivative is the derivative order to plot; zero plots the curve itself.
	Derivative int

	// Step is the spacing between sampled times.
	Step float64

	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns the options used by the splinefit tool.
func DefaultOptions() Options {
	return Options{
		Step:   0.05,
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// NewPlot samples a fitted problem and returns a plot with one line per output and a marker at
// every knot.
func NewPlot(ctx context.Context, p *spline.Problem, opts Options) (*plot.Plot, error) {
	times, err := spline.SampleTimes(p, opts.Step)
	if err != nil {
		return nil, err
	}
	samples, err := spline.Sample(ctx, p, times, opts.Derivative)
	if err != nil {
		return nil, err
	}

	plt := plot.New()
	plt.Title.Text = opts.Title
	plt.X.Label.Text = "t"
	plt.Y.Label.Text = fmt.Sprintf("d%d", opts.Derivative)
	plt.Add(plotter.NewGrid())

	var lines []interface{}
	for output := 0; output < p.NumOutputs(); output++ {
		pts := make(plotter.XYs, len(times))
		for i, t := range times {
			pts[i].X = t
			pts[i].Y = samples.At(i, output)
		}
		lines = append(lines, fmt.Sprintf("output %d", output), pts)
	}
	if err := plotutil.AddLines(plt, lines...); err != nil {
		return nil, errors.Wrap(err, "adding sampled lines")
	}

	knots := p.Times()
	for output := 0; output < p.NumOutputs(); output++ {
		pts := make(plotter.XYs, len(knots))
		for i, t := range knots {
			values, err := p.Interpolate(t, opts.Derivative)
			if err != nil {
				return nil, err
			}
			pts[i].X = t
			pts[i].Y = values[output]
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, errors.Wrap(err, "adding knot markers")
		}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Color = plotutil.Color(output)
		plt.Add(scatter)
	}
	return plt, nil
}

// Render draws a fitted problem to path. The image format follows the file extension (png, svg,
// pdf, ...).
func Render(ctx context.Context, p *spline.Problem, path string, opts Options) error {
	plt, err := NewPlot(ctx, p, opts)
	if err != nil {
		return err
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		def := DefaultOptions()
		width, height = def.Width, def.Height
	}
	if err := plt.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "saving plot to %q", path)
	}
	return nil
}

package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/oscsim/internal/dynamo"
)

const (
	TimeLabel    = "Time (s)"
	EnergyLabel  = "Energy (J)"
	DefaultTitle = "Energy transformations in a damped oscillator"
)

var (
	KineticColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	PotentialColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	TotalColor     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

var ErrNothingToPlot = errors.New("export: no finite samples to plot")

type ChartOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Title:  DefaultTitle,
		Width:  10 * vg.Inch,
		Height: 6 * vg.Inch,
	}
}

// Chart plots kinetic, potential and total energy against time on one set
// of axes with a legend and grid. Non-finite samples are left out of the
// lines; a series with no finite sample yields ErrNothingToPlot.
func Chart(s dynamo.Series, opts ChartOptions) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = TimeLabel
	p.Y.Label.Text = EnergyLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	curves := []struct {
		name  string
		ys    []float64
		color color.Color
	}{
		{"Kinetic energy", s.Kinetic, KineticColor},
		{"Potential energy", s.Potential, PotentialColor},
		{"Total mechanical energy", s.Total, TotalColor},
	}

	drawn := 0
	for _, c := range curves {
		pts := finitePoints(s.Times, c.ys)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("export: %s line: %w", c.name, err)
		}
		line.LineStyle.Color = c.color
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(c.name, line)
		drawn++
	}

	if drawn == 0 {
		return nil, ErrNothingToPlot
	}
	return p, nil
}

// SaveChart renders the chart to path; the extension selects the format
// (png, svg, pdf, jpg, ...).
func SaveChart(path string, s dynamo.Series, opts ChartOptions) error {
	p, err := Chart(s, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("export: create directory: %w", err)
		}
	}
	return p.Save(opts.Width, opts.Height, path)
}

// WriteChart renders the chart in the given format to w.
func WriteChart(w io.Writer, format string, s dynamo.Series, opts ChartOptions) error {
	p, err := Chart(s, opts)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, strings.ToLower(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func finitePoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(xs))
	for i := range xs {
		if i >= len(ys) {
			break
		}
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

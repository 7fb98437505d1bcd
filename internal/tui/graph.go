package tui

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Legend entries in the order the curves are drawn.
var Legends = []string{"Kinetic energy", "Potential energy", "Total mechanical energy"}

// EnergyGraph draws the three energy curves against step index. Non-finite
// values are left as gaps; ok is false when nothing finite remains.
func EnergyGraph(s dynamo.Series, width, height int) (graph string, ok bool) {
	if s.Len() == 0 {
		return "", false
	}

	curves := [][]float64{
		downsample(s.Kinetic, width),
		downsample(s.Potential, width),
		downsample(s.Total, width),
	}

	finite := false
	for _, c := range curves {
		for i, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				c[i] = math.NaN()
				continue
			}
			finite = true
		}
	}
	if !finite {
		return "", false
	}

	caption := "Energy (J) vs Time (s)"
	if last, found := s.Last(); found {
		caption = fmt.Sprintf("Energy (J) vs Time (s), 0 to %.2f s", last.Time)
	}

	graph = asciigraph.PlotMany(curves,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends(Legends...),
		asciigraph.Caption(caption),
	)
	return graph, true
}

// downsample keeps at most n evenly spaced points so the terminal plot is
// not averaged by the renderer.
func downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}
	out := make([]float64, n)
	step := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(math.Round(float64(i)*step))]
	}
	return out
}

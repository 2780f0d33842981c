package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lao-tseu-is-alive/go-crisis-flight/pkg/simulation"
)

// ErrNotEnoughData is returned when a chart is requested before two ticks were observed.
var ErrNotEnoughData = errors.New("convergence chart needs at least two ticks")

// ConvergenceChart collects per-tick displacement statistics and plots them.
type ConvergenceChart struct {
	ticks []float64
	max   []float64
	mean  []float64
	// Threshold, when > 0, is drawn as a flat reference line.
	Threshold float64
}

// Observe implements simulation.Observer. The tick-0 snapshot has no movement and is skipped.
func (c *ConvergenceChart) Observe(s simulation.Snapshot) error {
	if s.Tick == 0 {
		return nil
	}
	c.ticks = append(c.ticks, float64(s.Tick))
	c.max = append(c.max, s.MaxDisplacement)
	c.mean = append(c.mean, s.MeanDisplacement)
	return nil
}

// Len returns the number of ticks collected.
func (c *ConvergenceChart) Len() int { return len(c.ticks) }

// WritePNG renders the chart to path.
func (c *ConvergenceChart) WritePNG(path string, width, height int) error {
	if len(c.ticks) < 2 {
		return ErrNotEnoughData
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Max displacement",
			XValues: c.ticks,
			YValues: c.max,
			Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.0},
		},
		chart.ContinuousSeries{
			Name:    "Mean displacement",
			XValues: c.ticks,
			YValues: c.mean,
			Style:   chart.Style{StrokeColor: drawing.Color{R: 255, G: 165, B: 0, A: 255}, StrokeWidth: 2.0},
		},
	}
	if c.Threshold > 0 {
		flat := make([]float64, len(c.ticks))
		for i := range flat {
			flat[i] = c.Threshold
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Stop threshold",
			XValues: c.ticks,
			YValues: flat,
			Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 1.0, StrokeDashArray: []float64{4, 4}},
		})
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  "tick",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "displacement",
			Style: chart.Style{FontSize: 10.0},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}

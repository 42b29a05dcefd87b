package visual

import (
	"fmt"
	"image/color"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws wedges proportional to Values, counter-clockwise from
// three o'clock. Each wedge carries its percentage inside and its label
// outside the circle.
type pieChart struct {
	Values []float64
	Labels []string
	Colors []color.Color

	// Radius is the fraction of the half-extent of the canvas used by the pie.
	Radius float64
}

func newPieChart(values []float64, labels []string) (*pieChart, error) {
	if len(values) != len(labels) {
		return nil, fmt.Errorf("pie chart: %d values for %d labels", len(values), len(labels))
	}
	colors := make([]color.Color, len(values))
	for i := range colors {
		colors[i] = plotutil.Color(i)
	}
	return &pieChart{Values: values, Labels: labels, Colors: colors, Radius: 0.7}, nil
}

// shares returns each value's fraction of the total.
func shares(values []float64) ([]float64, error) {
	total, err := stats.Sum(values)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, fmt.Errorf("pie chart: total must be positive, got %v", total)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / total
	}
	return out, nil
}

// percentLabel formats a share as a percentage with one decimal.
func percentLabel(share float64) string {
	pct, err := stats.Round(100*share, 1)
	if err != nil {
		pct = 100 * share
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// Plot implements the plot.Plotter interface.
func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	fractions, err := shares(pc.Values)
	if err != nil {
		return
	}

	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := vg.Length(pc.Radius) * min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) / 2

	sty := plt.X.Tick.Label
	sty.XAlign = text.XCenter
	sty.YAlign = text.YCenter

	start := 0.0
	for i, share := range fractions {
		sweep := 2 * math.Pi * share
		var wedge vg.Path
		wedge.Move(center)
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()
		c.SetColor(pc.Colors[i])
		c.Fill(wedge)
		c.SetColor(color.White)
		c.SetLineWidth(vg.Points(1))
		c.Stroke(wedge)

		mid := start + sweep/2
		c.FillText(sty, polar(center, radius*0.6, mid), percentLabel(share))
		c.FillText(sty, polar(center, radius*1.18, mid), pc.Labels[i])
		start += sweep
	}
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}

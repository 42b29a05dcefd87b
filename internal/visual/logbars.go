package visual

import (
	"image/color"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// logFloor is the lowest value shown on a logarithmic count axis. Counts
// below it, zero included, are drawn as empty bars.
const logFloor = 1.0

// logBars is a vertical bar chart whose bars rise from logFloor instead of
// zero, which makes it usable with plot.LogScale. Bar i is centered on x = i.
type logBars struct {
	Values []float64
	Colors []color.Color
	Width  vg.Length
}

func newLogBars(values []float64, width vg.Length) *logBars {
	colors := make([]color.Color, len(values))
	for i := range colors {
		colors[i] = plotutil.Color(i)
	}
	return &logBars{Values: values, Colors: colors, Width: width}
}

// Plot implements the plot.Plotter interface.
func (b *logBars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	bottom := trY(logFloor)

	sty := plt.Y.Tick.Label
	sty.XAlign = text.XCenter
	sty.YAlign = text.YBottom

	for i, v := range b.Values {
		x := trX(float64(i))
		top := trY(math.Max(v, logFloor))
		pts := []vg.Point{
			{X: x - b.Width/2, Y: bottom},
			{X: x - b.Width/2, Y: top},
			{X: x + b.Width/2, Y: top},
			{X: x + b.Width/2, Y: bottom},
		}
		c.FillPolygon(b.Colors[i], c.ClipPolygonY(pts))
		c.FillText(sty, vg.Point{X: x, Y: top + vg.Points(2)}, strconv.FormatFloat(v, 'f', -1, 64))
	}
}

// DataRange implements the plot.DataRanger interface. The upper bound leaves
// a decade of headroom for the value labels.
func (b *logBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -0.5, float64(len(b.Values))-0.5
	ymax = 10 * logFloor
	if m, err := stats.Max(b.Values); err == nil && m*10 > ymax {
		ymax = m * 10
	}
	return xmin, xmax, logFloor, ymax
}

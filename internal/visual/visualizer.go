// Package visual renders a StatsResult as a 2×2 chart image.
package visual

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/naka-gawa/github-insights/internal/domain"
	"github.com/rs/zerolog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	DefaultPrefix = "github_stats"
	DefaultFormat = "png"
)

var supportedFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true,
	"svg": true, "pdf": true, "eps": true,
}

// Options configures the output of a Visualizer.
type Options struct {
	Prefix string
	Format string
	Dir    string
	Width  vg.Length
	Height vg.Length
}

// Visualizer draws the four statistics panels and writes them to one file.
type Visualizer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates a Visualizer, filling unset options with defaults.
func New(opts Options, logger zerolog.Logger) (*Visualizer, error) {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	opts.Format = strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if opts.Format == "" {
		opts.Format = DefaultFormat
	}
	if !supportedFormats[opts.Format] {
		return nil, fmt.Errorf("unsupported chart format %q", opts.Format)
	}
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Width <= 0 {
		opts.Width = 15 * vg.Inch
	}
	if opts.Height <= 0 {
		opts.Height = 10 * vg.Inch
	}
	return &Visualizer{opts: opts, logger: logger}, nil
}

// Filename returns <prefix>_<account>_<timestamp>.<ext>.
func (v *Visualizer) Filename(account string, window domain.Window) string {
	return fmt.Sprintf("%s_%s_%s.%s", v.opts.Prefix, account, window.Stamp(), v.opts.Format)
}

// Render draws result and writes the image into the output directory. The
// file only appears once it is complete. The returned path is the file written.
func (v *Visualizer) Render(result *domain.StatsResult, account string, window domain.Window) (string, error) {
	path := filepath.Join(v.opts.Dir, v.Filename(account, window))
	v.logger.Info().Str("path", path).Msg("Generating visualizations...")

	var buf bytes.Buffer
	if err := v.draw(&buf, result, account, window); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	v.logger.Debug().Int("bytes", buf.Len()).Msg("Chart written.")
	return path, nil
}

func (v *Visualizer) draw(buf *bytes.Buffer, result *domain.StatsResult, account string, window domain.Window) error {
	starred, err := horizontalBars("Top Starred Repositories", "Stars", result.TopStarred)
	if err != nil {
		return err
	}
	viewed, err := horizontalBars("Most Viewed Repositories (Last 14 days)", "Views", result.TopViewed)
	if err != nil {
		return err
	}
	languages, err := languagePie(result.Languages)
	if err != nil {
		return err
	}
	general := generalStats(result)

	canvas, err := draw.NewFormattedCanvas(v.opts.Width, v.opts.Height, v.opts.Format)
	if err != nil {
		return fmt.Errorf("failed to create %s canvas: %w", v.opts.Format, err)
	}
	dc := draw.New(canvas)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	titleHeight := vg.Points(60)
	titleStyle := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(16)),
		XAlign:  text.XCenter,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
	title := fmt.Sprintf("GitHub Statistics for %s\nData collected: %s to %s",
		account, window.StartLabel(), window.EndLabel())
	dc.FillText(titleStyle, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(8)}, title)

	body := draw.Crop(dc, 0, 0, 0, -titleHeight)
	plots := [][]*plot.Plot{
		{starred, viewed},
		{languages, general},
	}
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: vg.Millimeter * 10, PadY: vg.Millimeter * 10,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 4,
		PadLeft: vg.Millimeter * 4, PadRight: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, body)
	for j := range plots {
		for i, p := range plots[j] {
			p.Draw(canvases[j][i])
		}
	}

	if _, err := canvas.WriteTo(buf); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}

// horizontalBars plots one bar per repository, rank 1 at the top.
func horizontalBars(title, xLabel string, metrics []domain.RepoMetric) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	if len(metrics) == 0 {
		return p, nil
	}

	values := make(plotter.Values, len(metrics))
	names := make([]string, len(metrics))
	for i, m := range metrics {
		j := len(metrics) - 1 - i
		values[j] = float64(m.Value)
		names[j] = m.Name
	}
	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("failed to build %q bars: %w", title, err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)
	p.X.Min = 0
	return p, nil
}

// languagePie plots the language distribution. Without languages the panel is left blank.
func languagePie(languages []domain.LanguageCount) (*plot.Plot, error) {
	p := plot.New()
	p.HideAxes()
	if len(languages) == 0 {
		return p, nil
	}
	p.Title.Text = "Programming Languages Distribution"

	values := make([]float64, len(languages))
	labels := make([]string, len(languages))
	for i, lang := range languages {
		values[i] = float64(lang.Count)
		labels[i] = lang.Name
	}
	pie, err := newPieChart(values, labels)
	if err != nil {
		return nil, err
	}
	p.Add(pie)
	return p, nil
}

// generalStats plots the scalar totals on a logarithmic count axis.
func generalStats(result *domain.StatsResult) *plot.Plot {
	p := plot.New()
	p.Title.Text = "General Statistics"
	p.Y.Label.Text = "Count"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	p.Add(newLogBars([]float64{
		float64(result.TotalStars),
		float64(result.TotalForks),
		float64(result.ContributionCount),
	}, vg.Points(40)))
	p.NominalX("Stars", "Forks", "Contributions")
	return p
}

// writeFileAtomic writes data to a temporary file next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move chart file into place: %w", err)
	}
	return nil
}

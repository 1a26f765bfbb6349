// Package render holds the rendering backends driven by the controller: a
// static image renderer built on go-chart, and a WebSocket hub that pushes
// full chart options to browser clients.
package render

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"

	"github.com/golammostafa13/chartstudio/chart"
	"github.com/golammostafa13/chartstudio/errors"
	"github.com/golammostafa13/chartstudio/logger"
)

// Format is an image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 480
)

// ParseFormat accepts "png" and "svg".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrInvalidRequest, "unsupported image format %q", s),
		"supported image formats: png, svg")
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Draw renders opt as an image into w. Options without a single plottable
// value fail with ErrNothingToDraw.
func Draw(w io.Writer, opt chart.ChartOption, format Format, width, height int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	c := canvas{opt: opt, format: format, width: width, height: height}

	var err error
	switch {
	case opt.Axes == nil:
		err = c.pie(w)
	case len(opt.Series) > 0 && opt.Series[0].Type == chart.SeriesBar:
		err = c.bar(w)
	default:
		err = c.line(w)
	}
	if err != nil && !errors.Is(err, errors.ErrNothingToDraw) {
		return errors.Wrapf(err, "draw %s chart", opt.Type)
	}
	return err
}

type canvas struct {
	opt    chart.ChartOption
	format Format
	width  int
	height int
}

func (c canvas) nothing() error {
	return errors.Wrapf(errors.ErrNothingToDraw, "%s chart has no plottable values", c.opt.Type)
}

func (c canvas) color(i int) drawing.Color {
	palette := c.opt.Colors
	if len(palette) == 0 {
		palette = chart.DefaultPalette
	}
	return drawing.ColorFromHex(strings.TrimPrefix(palette[i%len(palette)], "#"))
}

func (c canvas) background() gochart.Style {
	return gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}}
}

func (c canvas) title() string {
	if !c.opt.Title.Show {
		return ""
	}
	return c.opt.Title.Text
}

func (c canvas) categoryLabels() []string {
	data := c.opt.Axes.Category().Data
	labels := make([]string, len(data))
	for i, v := range data {
		labels[i] = chart.FormatValue(v)
	}
	return labels
}

func (c canvas) line(w io.Writer) error {
	labels := c.categoryLabels()
	ticks := make([]gochart.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = gochart.Tick{Value: float64(i), Label: l}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var series []gochart.Series
	for i, s := range c.opt.Series {
		values, ok := s.Values()
		var xs, ys []float64
		for j, v := range values {
			if !ok[j] {
				continue
			}
			xs = append(xs, float64(j))
			ys = append(ys, v)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		if len(xs) == 0 {
			continue
		}

		color := c.color(i)
		style := gochart.Style{StrokeColor: color, StrokeWidth: 2}
		if l := s.Line; l != nil {
			style.StrokeWidth = float64(l.LineWidth)
			if l.ShowSymbol {
				style.DotColor = color
				style.DotWidth = float64(l.SymbolSize) / 2
			}
			if l.Area {
				style.FillColor = color.WithAlpha(64)
			}
		}
		series = append(series, gochart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: style})
	}
	if len(series) == 0 {
		return c.nothing()
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	graph := gochart.Chart{
		Title:      c.title(),
		Width:      c.width,
		Height:     c.height,
		Background: c.background(),
		XAxis: gochart.XAxis{
			Name:  c.opt.Axes.X.Name,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 0, Max: math.Max(float64(len(labels)-1), 1)},
		},
		YAxis: gochart.YAxis{
			Name:  c.opt.Axes.Y.Name,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	if c.opt.Legend.Show {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}
	return graph.Render(c.format.provider(), w)
}

// bar draws a single vertical series as a bar chart. Horizontal, stacked and
// multi-series options go through the stacked bar chart, which has no
// grouped layout.
func (c canvas) bar(w io.Writer) error {
	labels := c.categoryLabels()
	if len(labels) == 0 || len(c.opt.Series) == 0 {
		return c.nothing()
	}
	horizontal := c.opt.Axes.Y.Type == chart.AxisCategory
	first := c.opt.Series[0]
	stacked := first.Bar != nil && first.Bar.Stack != ""

	slot := (c.width - 80) / len(labels)
	barWidth := slot * 60 / 100
	if first.Bar != nil {
		barWidth = slot * parsePercent(first.Bar.BarWidth, 60) / 100
	}
	if barWidth < 1 {
		barWidth = 1
	}

	if len(c.opt.Series) == 1 && !horizontal && !stacked {
		values, ok := first.Values()
		color := c.color(0)
		lo, hi := 0.0, 0.0
		bars := make([]gochart.Value, len(labels))
		for i, l := range labels {
			bars[i] = gochart.Value{Label: l, Style: gochart.Style{FillColor: color, StrokeColor: color}}
			if i < len(values) && ok[i] {
				bars[i].Value = values[i]
				lo, hi = math.Min(lo, values[i]), math.Max(hi, values[i])
			}
		}
		if lo == hi {
			hi = lo + 1
		}
		graph := gochart.BarChart{
			Title:      c.title(),
			Width:      c.width,
			Height:     c.height,
			Background: c.background(),
			BarWidth:   barWidth,
			XAxis:      gochart.Style{},
			YAxis: gochart.YAxis{
				Name:  c.opt.Axes.Value().Name,
				Range: &gochart.ContinuousRange{Min: lo, Max: hi},
			},
			Bars: bars,
		}
		return graph.Render(c.format.provider(), w)
	}

	stacks := make([]gochart.StackedBar, len(labels))
	for i, l := range labels {
		stacks[i] = gochart.StackedBar{Name: l, Width: barWidth}
	}
	for si, s := range c.opt.Series {
		values, ok := s.Values()
		color := c.color(si)
		for i := range stacks {
			v := 0.0
			if i < len(values) && ok[i] {
				v = math.Max(values[i], 0)
			}
			stacks[i].Values = append(stacks[i].Values, gochart.Value{
				Label: s.Name,
				Value: v,
				Style: gochart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}
	graph := gochart.StackedBarChart{
		Title:        c.title(),
		Width:        c.width,
		Height:       c.height,
		Background:   c.background(),
		IsHorizontal: horizontal,
		Bars:         stacks,
	}
	return graph.Render(c.format.provider(), w)
}

// pie draws the first series. Slices with a non-positive value are skipped.
func (c canvas) pie(w io.Writer) error {
	if len(c.opt.Series) == 0 {
		return c.nothing()
	}
	s := c.opt.Series[0]

	var values []gochart.Value
	for i, d := range s.PieData() {
		if d.Value <= 0 {
			continue
		}
		color := c.color(i)
		values = append(values, gochart.Value{
			Label: d.Name,
			Value: d.Value,
			Style: gochart.Style{FillColor: color, StrokeColor: drawing.ColorWhite},
		})
	}
	if len(values) == 0 {
		return c.nothing()
	}

	if s.Pie != nil && parsePercent(s.Pie.Radius[0], 0) > 0 {
		graph := gochart.DonutChart{
			Title:      c.title(),
			Width:      c.width,
			Height:     c.height,
			Background: c.background(),
			Values:     values,
		}
		return graph.Render(c.format.provider(), w)
	}
	graph := gochart.PieChart{
		Title:      c.title(),
		Width:      c.width,
		Height:     c.height,
		Background: c.background(),
		Values:     values,
	}
	return graph.Render(c.format.provider(), w)
}

func parsePercent(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return def
	}
	return n
}

// File is a backend that redraws an image file on every render.
type File struct {
	path   string
	format Format
	width  int
	height int
	log    *zap.SugaredLogger
}

// NewFile creates a file backend. The format follows the extension: ".svg"
// writes SVG, anything else PNG.
func NewFile(path string, width, height int) *File {
	format := FormatPNG
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		format = FormatSVG
	}
	return &File{
		path:   path,
		format: format,
		width:  width,
		height: height,
		log:    logger.ComponentLogger("render.file"),
	}
}

func (f *File) Render(opt chart.ChartOption) error {
	out, err := os.Create(f.path)
	if err != nil {
		return errors.Wrapf(err, "create %s", f.path)
	}
	if err := Draw(out, opt, f.format, f.width, f.height); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "close %s", f.path)
	}
	f.log.Debugw("Wrote chart image",
		logger.FieldPath, f.path,
		logger.FieldChartType, opt.Type)
	return nil
}

func (f *File) Resize(width, height int) error {
	f.width, f.height = width, height
	return nil
}

// Dispose is a no-op; the last image stays on disk.
func (f *File) Dispose() error { return nil }

// Path returns the output path.
func (f *File) Path() string { return f.path }

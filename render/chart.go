package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"sdg-dashboard/models"
)

// Image formats understood by ChartRenderer.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ErrEmptyChart is returned when a chart has no plottable point.
var ErrEmptyChart = errors.New("render: chart has no plottable points")

var namedColors = map[string]color.RGBA{
	"red":   {R: 220, G: 38, B: 38, A: 255},
	"black": {A: 255},
	"gray":  {R: 128, G: 128, B: 128, A: 255},
}

// ChartRenderer draws ChartSpecs as static line charts.
type ChartRenderer struct {
	width  vg.Length
	height vg.Length
}

// NewChartRenderer returns a renderer producing images of the given size in inches.
func NewChartRenderer(widthIn, heightIn float64) *ChartRenderer {
	if widthIn <= 0 {
		widthIn = 10
	}
	if heightIn <= 0 {
		heightIn = 5
	}
	return &ChartRenderer{
		width:  vg.Length(widthIn) * vg.Inch,
		height: vg.Length(heightIn) * vg.Inch,
	}
}

// Plot builds the gonum plot for spec: one marked line per series, plus a
// dashed reference line with its label when the spec carries a target overlay.
func (r *ChartRenderer) Plot(spec *models.ChartSpec) (*plot.Plot, error) {
	if spec == nil || !hasPoints(spec) {
		return nil, ErrEmptyChart
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	p.X.Tick.Marker = yearTicks{}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, s := range spec.Series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i].X = pt.X
			xys[i].Y = pt.Y
		}

		c := parseColor(s.Color)
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("render: series %s: %w", s.Name, err)
		}
		line.Color = c
		line.Width = vg.Points(2)
		if spec.Markers {
			points.GlyphStyle.Color = c
			points.GlyphStyle.Shape = draw.CircleGlyph{}
			points.GlyphStyle.Radius = vg.Points(3)
			p.Add(line, points)
			p.Legend.Add(s.Name, line, points)
		} else {
			p.Add(line)
			p.Legend.Add(s.Name, line)
		}
	}

	if o := spec.TargetOverlay; o != nil {
		if err := addTarget(p, o); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func addTarget(p *plot.Plot, o *models.TargetOverlay) error {
	target, err := plotter.NewLine(plotter.XYs{{X: o.XMin, Y: o.YValue}, {X: o.XMax, Y: o.YValue}})
	if err != nil {
		return fmt.Errorf("render: target line: %w", err)
	}
	target.Color = parseColor(o.Color)
	target.Width = vg.Points(1.5)
	if o.Dash == "dash" {
		target.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: o.XMax, Y: o.YValue}},
		Labels: []string{o.Label},
	})
	if err != nil {
		return fmt.Errorf("render: target label: %w", err)
	}
	for i := range label.TextStyle {
		label.TextStyle[i].Color = target.Color
		label.TextStyle[i].XAlign = draw.XRight
		label.TextStyle[i].YAlign = draw.YBottom
	}

	p.Add(target, label)
	return nil
}

// Encode writes the chart to w in the given format.
func (r *ChartRenderer) Encode(w io.Writer, spec *models.ChartSpec, format string) error {
	p, err := r.Plot(spec)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(r.width, r.height, format)
	if err != nil {
		return fmt.Errorf("render: %s writer: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render: write %s: %w", format, err)
	}
	return nil
}

// SaveFile writes the chart to path; the format follows the file extension.
func (r *ChartRenderer) SaveFile(path string, spec *models.ChartSpec) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != FormatPNG && format != FormatSVG {
		return fmt.Errorf("render: unsupported image format %q", format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("render: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %q: %w", path, err)
	}
	if err := r.Encode(f, spec, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SVG returns the chart as an <svg> element, without the XML prolog.
func (r *ChartRenderer) SVG(spec *models.ChartSpec) (string, error) {
	var sb strings.Builder
	if err := r.Encode(&sb, spec, FormatSVG); err != nil {
		return "", err
	}
	out := sb.String()
	if i := strings.Index(out, "<svg"); i > 0 {
		out = out[i:]
	}
	return out, nil
}

func hasPoints(spec *models.ChartSpec) bool {
	for _, s := range spec.Series {
		if len(s.Points) > 0 {
			return true
		}
	}
	return false
}

// parseColor accepts "#RRGGBB" or one of a few names. Anything else is black.
func parseColor(s string) color.RGBA {
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	return color.RGBA{A: 255}
}

// yearTicks labels whole years only, thinning the labels on long ranges.
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	lo, hi := math.Ceil(min), math.Floor(max)
	if hi < lo {
		return plot.DefaultTicks{}.Ticks(min, max)
	}
	step := math.Max(1, math.Ceil((hi-lo)/10))

	var ticks []plot.Tick
	for y := lo; y <= hi; y++ {
		t := plot.Tick{Value: y}
		if math.Mod(y-lo, step) == 0 {
			t.Label = strconv.FormatFloat(y, 'f', 0, 64)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// Package render draws the four yearly distribution charts as PNG files.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/runnerr0/subplot/internal/bucket"
)

// Output file names. They are fixed and overwritten on every run.
const (
	CalendarFile = "1.png"
	RadarFile    = "2.png"
	BarsFile     = "3.png"
	DonutFile    = "4.png"
)

const sourceNote = "Source: Pushshift API"

// ErrModeMismatch is returned when a chart is handed a series bucketed by a
// different mode than it draws.
var ErrModeMismatch = errors.New("series mode does not match chart")

// Options carry the labels and destination shared by every chart.
type Options struct {
	Forum string
	Year  int
	Dir   string
}

func (o Options) path(name string) string {
	dir := o.Dir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name)
}

func (o Options) title(by string) string {
	return fmt.Sprintf("Distribution of submissions in r/%s during %d by %s (UTC)", o.Forum, o.Year, by)
}

// Func renders one series to a file and returns its path.
type Func func(*bucket.Series, Options) (string, error)

// ForMode returns the chart drawn for mode.
func ForMode(mode bucket.Mode) (Func, string, error) {
	switch mode {
	case bucket.ModeDate:
		return Calendar, CalendarFile, nil
	case bucket.ModeHour:
		return Radar, RadarFile, nil
	case bucket.ModeMonth:
		return Bars, BarsFile, nil
	case bucket.ModeWeekday:
		return Donut, DonutFile, nil
	}
	return nil, "", fmt.Errorf("no chart for mode %s", mode)
}

// All renders every chart in file order. It stops at the first failure and
// returns the paths written so far.
func All(series map[bucket.Mode]*bucket.Series, opts Options) ([]string, error) {
	var paths []string
	for _, mode := range bucket.AllModes() {
		s, ok := series[mode]
		if !ok {
			return paths, fmt.Errorf("missing %s series", mode)
		}
		fn, _, err := ForMode(mode)
		if err != nil {
			return paths, err
		}
		path, err := fn(s, opts)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func checkMode(s *bucket.Series, want bucket.Mode) error {
	if s == nil {
		return fmt.Errorf("%w: nil series for %s chart", ErrModeMismatch, want)
	}
	if s.Mode != want {
		return fmt.Errorf("%w: %s chart cannot draw a %s series", ErrModeMismatch, want, s.Mode)
	}
	if s.Len() == 0 {
		return fmt.Errorf("%s series has no buckets", want)
	}
	return nil
}

// writePNG renders into memory first so a failed render never leaves a
// truncated file behind.
func writePNG(path string, draw func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var (
	paperColor  = drawing.ColorFromHex("04293A")
	plotColor   = drawing.ColorFromHex("041C32")
	accentColor = drawing.ColorFromHex("C5E478")
	headerColor = drawing.ColorFromHex("789A07")
	textColor   = drawing.ColorWhite
	gridColor   = drawing.ColorWhite.WithAlpha(70)
)

// set3 is a qualitative palette for categorical slices.
var set3 = []drawing.Color{
	drawing.ColorFromHex("8DD3C7"),
	drawing.ColorFromHex("FFFFB3"),
	drawing.ColorFromHex("BEBADA"),
	drawing.ColorFromHex("FB8072"),
	drawing.ColorFromHex("80B1D3"),
	drawing.ColorFromHex("FDB462"),
	drawing.ColorFromHex("B3DE69"),
	drawing.ColorFromHex("FCCDE5"),
	drawing.ColorFromHex("D9D9D9"),
	drawing.ColorFromHex("BC80BD"),
	drawing.ColorFromHex("CCEBC5"),
	drawing.ColorFromHex("FFED6F"),
}

// darkPalette is the chart.ColorPalette used by the library-driven charts.
type darkPalette struct{}

func (darkPalette) BackgroundColor() drawing.Color       { return paperColor }
func (darkPalette) BackgroundStrokeColor() drawing.Color { return paperColor }
func (darkPalette) CanvasColor() drawing.Color           { return plotColor }
func (darkPalette) CanvasStrokeColor() drawing.Color     { return textColor }
func (darkPalette) AxisStrokeColor() drawing.Color       { return textColor }
func (darkPalette) TextColor() drawing.Color             { return textColor }
func (darkPalette) GetSeriesColor(index int) drawing.Color {
	return set3[index%len(set3)]
}

// colorScale maps [0, 1] onto evenly spaced color stops.
type colorScale []drawing.Color

var (
	// low to high, used by the calendar heatmap
	calendarScale = colorScale{plotColor, drawing.ColorFromHex("1F5C4A"), drawing.ColorFromHex("6FA35B"), accentColor}

	// high values blue, low values red
	barScale = colorScale{
		drawing.ColorFromHex("D91E1E"),
		drawing.ColorFromHex("F28F38"),
		drawing.ColorFromHex("F2D338"),
		drawing.ColorFromHex("0A88BA"),
		drawing.ColorFromHex("0C3383"),
	}
)

func (cs colorScale) at(t float64) drawing.Color {
	if math.IsNaN(t) || t <= 0 {
		return cs[0]
	}
	if t >= 1 {
		return cs[len(cs)-1]
	}
	pos := t * float64(len(cs)-1)
	i := int(pos)
	return lerp(cs[i], cs[i+1], pos-float64(i))
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// ratio returns v/max, or 0 when max is not positive.
func ratio(v, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max)
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// painter wraps a raw renderer with the default font so every text call
// carries a complete style.
type painter struct {
	r    chart.Renderer
	base chart.Style
}

func newPainter(width, height int) (*painter, error) {
	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	return wrapRenderer(r)
}

func wrapRenderer(r chart.Renderer) (*painter, error) {
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}
	r.SetFont(font)
	return &painter{r: r, base: chart.Style{Font: font, FontColor: textColor}}, nil
}

func (p *painter) textStyle(size float64, align chart.TextHorizontalAlign) chart.Style {
	s := p.base
	s.FontSize = size
	s.TextHorizontalAlign = align
	s.TextVerticalAlign = chart.TextVerticalAlignMiddle
	return s
}

func (p *painter) measure(text string, size float64) chart.Box {
	return chart.Draw.MeasureText(p.r, text, p.textStyle(size, chart.TextHorizontalAlignLeft))
}

// text draws text vertically centered on y and aligned on x.
func (p *painter) text(text string, x, y int, size float64, align chart.TextHorizontalAlign) {
	tb := p.measure(text, size)
	switch align {
	case chart.TextHorizontalAlignCenter:
		x -= tb.Width() / 2
	case chart.TextHorizontalAlignRight:
		x -= tb.Width()
	}
	chart.Draw.Text(p.r, text, x, y+tb.Height()/2, p.textStyle(size, chart.TextHorizontalAlignLeft))
}

func (p *painter) fill(b chart.Box, c drawing.Color) {
	chart.Draw.Box(p.r, b, chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 0})
}

func (p *painter) outline(b chart.Box, c drawing.Color, width float64) {
	p.r.SetStrokeColor(c)
	p.r.SetStrokeWidth(width)
	p.r.MoveTo(b.Left, b.Top)
	p.r.LineTo(b.Right, b.Top)
	p.r.LineTo(b.Right, b.Bottom)
	p.r.LineTo(b.Left, b.Bottom)
	p.r.Close()
	p.r.Stroke()
	p.r.ResetStyle()
}

func (p *painter) line(x0, y0, x1, y1 int, c drawing.Color, width float64) {
	p.r.SetStrokeColor(c)
	p.r.SetStrokeWidth(width)
	p.r.MoveTo(x0, y0)
	p.r.LineTo(x1, y1)
	p.r.Stroke()
	p.r.ResetStyle()
}

func (p *painter) title(text string, width, y int, size float64) {
	p.text(text, width/2, y, size, chart.TextHorizontalAlignCenter)
}

// titleElement draws a centered title as a chart element so library charts
// share the same header as the hand-drawn ones.
func titleElement(text string, width, y int, size float64) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, _ chart.Style) {
		if p, err := wrapRenderer(r); err == nil {
			p.title(text, width, y, size)
		}
	}
}

func footerElement(x, y int) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, _ chart.Style) {
		if p, err := wrapRenderer(r); err == nil {
			p.text(sourceNote, x, y, 12, chart.TextHorizontalAlignLeft)
		}
	}
}

package render

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/runnerr0/subplot/internal/bucket"
)

const (
	barsWidth   = 1280
	barsHeight  = 720
	barWidth    = 60
	barSpacing  = 30
	barHeadroom = 1.1
)

// Bars draws the month series as a vertical bar chart with value labels and
// writes it to 3.png.
func Bars(s *bucket.Series, opts Options) (string, error) {
	if err := checkMode(s, bucket.ModeMonth); err != nil {
		return "", err
	}
	path := opts.path(BarsFile)
	err := writePNG(path, func(w io.Writer) error {
		return barChart(s, opts).Render(chart.PNG, w)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func barChart(s *bucket.Series, opts Options) chart.BarChart {
	yMax := float64(s.Stats.Max) * barHeadroom
	if yMax == 0 {
		yMax = 1
	}

	bars := make([]chart.Value, 0, s.Len())
	for _, b := range s.Buckets {
		c := barScale.at(ratio(b.Count, s.Stats.Max))
		bars = append(bars, chart.Value{
			Label: b.Label,
			Value: float64(b.Count),
			Style: chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 0},
		})
	}

	return chart.BarChart{
		Width:        barsWidth,
		Height:       barsHeight,
		BarWidth:     barWidth,
		BarSpacing:   barSpacing,
		ColorPalette: darkPalette{},
		Background: chart.Style{
			Padding: chart.Box{Top: 70, Left: 60, Right: 40, Bottom: 90},
		},
		Canvas: chart.Style{FillColor: plotColor, StrokeColor: textColor, StrokeWidth: 2},
		XAxis:  chart.Style{FontSize: 14, StrokeWidth: 2},
		YAxis: chart.YAxis{
			AxisType:       chart.YAxisSecondary,
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: countFormatter,
			Style:          chart.Style{FontSize: 12},
		},
		Bars: bars,
		Elements: []chart.Renderable{
			titleElement(opts.title("month"), barsWidth, 35, 18),
			barLabels(s, yMax),
			axisTitles(),
			footerElement(12, barsHeight-25),
		},
	}
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return comma(int(math.Round(f)))
	}
	return ""
}

// barLabels writes each count above its bar. Bar placement follows the
// chart's own layout for a fixed bar width and spacing that fit the canvas.
func barLabels(s *bucket.Series, yMax float64) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, _ chart.Style) {
		p, err := wrapRenderer(r)
		if err != nil {
			return
		}
		width, spacing := barGeometry(canvas, s.Len())
		x := canvas.Left + spacing/2 + width/2
		for _, b := range s.Buckets {
			top := canvas.Bottom - int(float64(b.Count)/yMax*float64(canvas.Height()))
			p.text(comma(b.Count), x, top-14, 16, chart.TextHorizontalAlignCenter)
			x += width + spacing
		}
	}
}

func barGeometry(canvas chart.Box, n int) (width, spacing int) {
	if n == 0 {
		return barWidth, barSpacing
	}
	width, spacing = barWidth, barSpacing
	if n*(width+spacing) > canvas.Width() {
		if rest := canvas.Width() - n*width; rest > 0 {
			spacing = int(math.Ceil(float64(rest) / float64(n)))
		} else {
			spacing = 0
		}
	}
	if n*(width+spacing) > canvas.Width() {
		if rest := canvas.Width() - n*spacing; rest > 0 {
			width = int(math.Ceil(float64(rest) / float64(n)))
		} else {
			width = 0
		}
	}
	return width, spacing
}

func axisTitles() chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, _ chart.Style) {
		p, err := wrapRenderer(r)
		if err != nil {
			return
		}
		cx, cy := canvas.Center()
		p.text("Month", cx, canvas.Bottom+50, 16, chart.TextHorizontalAlignCenter)

		st := p.textStyle(16, chart.TextHorizontalAlignLeft)
		st.TextRotationDegrees = 270
		tb := p.measure("Total submissions", 16)
		chart.Draw.Text(r, "Total submissions", 28, cy+tb.Width()/2, st)
	}
}

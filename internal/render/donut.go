package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/runnerr0/subplot/internal/bucket"
)

const (
	donutWidth  = 1280
	donutHeight = 720
)

// Donut draws the weekday series as a segmented donut with percentage labels
// and a count legend, and writes it to 4.png.
func Donut(s *bucket.Series, opts Options) (string, error) {
	if err := checkMode(s, bucket.ModeWeekday); err != nil {
		return "", err
	}
	if s.Stats.Sum == 0 {
		return "", errors.New("weekday series has no submissions to draw")
	}
	path := opts.path(DonutFile)
	err := writePNG(path, func(w io.Writer) error {
		return donutChart(s, opts).Render(chart.PNG, w)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// percent returns count as a share of total with two decimals.
func percent(count, total int) string {
	return fmt.Sprintf("%.2f%%", ratio(count, total)*100)
}

func legendLabel(b bucket.Bucket) string {
	return fmt.Sprintf("%s (%s)", b.Label, comma(b.Count))
}

func donutChart(s *bucket.Series, opts Options) chart.DonutChart {
	values := make([]chart.Value, 0, s.Len())
	for i, b := range s.Buckets {
		values = append(values, chart.Value{
			Label: percent(b.Count, s.Stats.Sum),
			Value: float64(b.Count),
			Style: chart.Style{
				FillColor:   set3[i%len(set3)],
				StrokeColor: paperColor,
				StrokeWidth: 12,
				FontColor:   textColor,
				FontSize:    16,
			},
		})
	}

	return chart.DonutChart{
		Width:        donutWidth,
		Height:       donutHeight,
		ColorPalette: darkPalette{},
		Background: chart.Style{
			Padding: chart.Box{Top: 90, Left: 40, Right: 40, Bottom: 50},
		},
		Canvas:     chart.Style{FillColor: paperColor, StrokeColor: paperColor},
		SliceStyle: chart.Style{FillColor: paperColor, StrokeColor: paperColor},
		Values:     values,
		Elements: []chart.Renderable{
			titleElement(opts.title("day of the week"), donutWidth, 40, 18),
			donutLegend(s),
			footerElement(12, donutHeight-22),
		},
	}
}

func donutLegend(s *bucket.Series) chart.Renderable {
	return func(r chart.Renderer, _ chart.Box, _ chart.Style) {
		p, err := wrapRenderer(r)
		if err != nil {
			return
		}
		const (
			left   = 60
			rowH   = 40
			swatch = 22
		)
		top := donutHeight/2 - s.Len()*rowH/2
		for i, b := range s.Buckets {
			y := top + i*rowH + rowH/2
			p.fill(chart.Box{Left: left, Top: y - swatch/2, Right: left + swatch, Bottom: y + swatch/2}, set3[i%len(set3)])
			p.text(legendLabel(b), left+swatch+12, y, 18, chart.TextHorizontalAlignLeft)
		}
	}
}

package render

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/runnerr0/subplot/internal/bucket"
)

const (
	radarSize   = 1000
	radarCX     = radarSize / 2
	radarCY     = 500
	radarRadius = 330
	radarRings  = 4
)

// Radar draws the hour series as a closed polygon over 24 clockwise spokes,
// midnight at the top, and writes it to 2.png.
func Radar(s *bucket.Series, opts Options) (string, error) {
	if err := checkMode(s, bucket.ModeHour); err != nil {
		return "", err
	}
	path := opts.path(RadarFile)
	err := writePNG(path, func(w io.Writer) error {
		return drawRadar(w, s, opts)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// spoke returns the screen point at radius r along spoke i of n.
func spoke(i, n int, r float64) (int, int) {
	theta := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	return radarCX + int(math.Round(r*math.Cos(theta))), radarCY + int(math.Round(r*math.Sin(theta)))
}

// niceStep picks a 1-2-5 step that splits max into about n intervals.
func niceStep(max, n int) int {
	if max <= n {
		return 1
	}
	raw := float64(max) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if m*mag >= raw {
			return int(m * mag)
		}
	}
	return int(10 * mag)
}

func drawRadar(w io.Writer, s *bucket.Series, opts Options) error {
	p, err := newPainter(radarSize, radarSize)
	if err != nil {
		return err
	}

	p.fill(chart.Box{Right: radarSize, Bottom: radarSize}, paperColor)
	p.title(opts.title("hour"), radarSize, 60, 16)

	step := niceStep(s.Stats.Max, radarRings)
	outer := step * int(math.Ceil(float64(s.Stats.Max)/float64(step)))
	if outer == 0 {
		outer = step
	}
	scale := func(v int) float64 {
		return float64(v) / float64(outer) * radarRadius
	}

	p.r.SetFillColor(plotColor)
	p.r.SetStrokeColor(textColor)
	p.r.SetStrokeWidth(2)
	p.r.Circle(radarRadius, radarCX, radarCY)
	p.r.FillStroke()
	p.r.ResetStyle()

	n := s.Len()
	for v := step; v < outer; v += step {
		p.r.SetStrokeColor(gridColor)
		p.r.SetStrokeWidth(0.75)
		p.r.Circle(scale(v), radarCX, radarCY)
		p.r.Stroke()
		p.r.ResetStyle()
	}
	for i, b := range s.Buckets {
		x, y := spoke(i, n, radarRadius)
		p.line(radarCX, radarCY, x, y, gridColor, 0.75)

		tx, ty := spoke(i, n, radarRadius+8)
		p.line(x, y, tx, ty, textColor, 0.75)

		lx, ly := spoke(i, n, radarRadius+38)
		p.text(b.Label, lx, ly, 12, chart.TextHorizontalAlignCenter)
	}
	for v := step; v <= outer; v += step {
		_, y := spoke(0, n, scale(v))
		p.text(comma(v), radarCX+6, y+10, 10, chart.TextHorizontalAlignLeft)
	}

	// The polygon closes back on the first spoke.
	x0, y0 := spoke(0, n, scale(s.Buckets[0].Count))
	p.r.SetFillColor(accentColor.WithAlpha(38))
	p.r.SetStrokeColor(accentColor)
	p.r.SetStrokeWidth(4)
	p.r.MoveTo(x0, y0)
	for i := 1; i < n; i++ {
		x, y := spoke(i, n, scale(s.Buckets[i].Count))
		p.r.LineTo(x, y)
	}
	p.r.LineTo(x0, y0)
	p.r.Close()
	p.r.FillStroke()
	p.r.ResetStyle()

	drawRadarLegend(p, "Submissions ("+comma(s.Stats.Sum)+")")
	p.text(sourceNote, 50, radarSize-40, 12, chart.TextHorizontalAlignLeft)

	return p.r.Save(w)
}

func drawRadarLegend(p *painter, label string) {
	const (
		y      = radarCY + radarRadius + 85
		sample = 30
		pad    = 10
	)
	tb := p.measure(label, 14)
	width := sample + pad + tb.Width() + 2*pad
	left := radarCX - width/2

	p.outline(chart.Box{Left: left, Top: y - 18, Right: left + width, Bottom: y + 18}, textColor, 1.5)
	p.line(left+pad, y, left+pad+sample, y, accentColor, 4)
	p.text(label, left+2*pad+sample, y, 14, chart.TextHorizontalAlignLeft)
}

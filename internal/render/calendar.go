package render

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/runnerr0/subplot/internal/bucket"
)

const (
	calendarWidth  = 1280
	calendarHeight = 500

	gridLeft   = 120
	gridRight  = 1140
	gridTop    = 100
	gridRowH   = 30
	gridBottom = gridTop + 7*gridRowH

	colorbarLeft  = 1160
	colorbarRight = 1180

	tableTop  = 330
	tableRowH = 32
)

// Calendar draws the date series as a 7x53 weekday-by-week heatmap with a
// summary table underneath and writes it to 1.png.
func Calendar(s *bucket.Series, opts Options) (string, error) {
	if err := checkMode(s, bucket.ModeDate); err != nil {
		return "", err
	}
	path := opts.path(CalendarFile)
	err := writePNG(path, func(w io.Writer) error {
		return drawCalendar(w, s, opts)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func drawCalendar(w io.Writer, s *bucket.Series, opts Options) error {
	p, err := newPainter(calendarWidth, calendarHeight)
	if err != nil {
		return err
	}

	p.fill(chart.Box{Right: calendarWidth, Bottom: calendarHeight}, paperColor)
	p.title(opts.title("date"), calendarWidth, 40, 18)

	p.fill(chart.Box{Left: gridLeft, Top: gridTop, Right: gridRight, Bottom: gridBottom}, plotColor)

	cellW := float64(gridRight-gridLeft) / bucket.GridColumns
	cell := func(week, dow int) chart.Box {
		x0 := float64(gridLeft) + float64(week)*cellW
		y0 := gridTop + dow*gridRowH
		return chart.Box{
			Left:   int(math.Round(x0)),
			Top:    y0,
			Right:  int(math.Round(x0 + cellW)),
			Bottom: y0 + gridRowH,
		}
	}
	inset := func(b chart.Box, dx, dy int) chart.Box {
		return chart.Box{Left: b.Left + dx, Top: b.Top + dy, Right: b.Right - dx, Bottom: b.Bottom - dy}
	}

	for _, b := range s.Buckets {
		c := cell(b.WeekIndex, b.DayOfWeek)
		if b.MonthStart {
			p.fill(inset(c, 1, 5), textColor)
		}
		p.fill(inset(c, 3, 8), calendarScale.at(ratio(b.Count, s.Stats.Max)))
	}
	p.outline(chart.Box{Left: gridLeft, Top: gridTop, Right: gridRight, Bottom: gridBottom}, textColor, 1.5)

	// month labels spread evenly over the top edge
	for i, name := range bucket.MonthAbbrevs {
		tick := 1.5 + float64(i)*48.0/11.0
		x := gridLeft + int(math.Round((tick+0.5)*cellW))
		p.text(name, x, gridTop-16, 14, chart.TextHorizontalAlignCenter)
	}
	for dow, name := range bucket.WeekdayNames {
		p.text(name, gridLeft-10, gridTop+dow*gridRowH+gridRowH/2, 12, chart.TextHorizontalAlignRight)
	}

	drawColorbar(p, s.Stats.Max)
	drawStatsTable(p, s.Stats)
	drawCalendarFooter(p)

	return p.r.Save(w)
}

func drawColorbar(p *painter, max int) {
	const steps = 100
	height := gridBottom - gridTop
	for i := 0; i < steps; i++ {
		top := gridBottom - (i+1)*height/steps
		bottom := gridBottom - i*height/steps
		p.fill(chart.Box{Left: colorbarLeft, Top: top, Right: colorbarRight, Bottom: bottom}, calendarScale.at(float64(i)/float64(steps-1)))
	}
	p.outline(chart.Box{Left: colorbarLeft, Top: gridTop, Right: colorbarRight, Bottom: gridBottom}, textColor, 2)

	ticks := []int{0, max / 2, max}
	if max < 2 {
		ticks = []int{0, max}
	}
	for _, v := range ticks {
		y := gridBottom - int(math.Round(ratio(v, max)*float64(height)))
		p.line(colorbarRight, y, colorbarRight+8, y, textColor, 2)
		p.text(comma(v), colorbarRight+12, y, 11, chart.TextHorizontalAlignLeft)
	}
}

func drawStatsTable(p *painter, st bucket.Stats) {
	headers := []string{"Maximum", "Minimum", "Total", "Average"}
	values := []string{
		comma(st.Max) + " on " + st.MaxKey,
		comma(st.Min) + " on " + st.MinKey,
		comma(st.Sum),
		comma(int(math.Round(st.Mean))) + " daily",
	}

	colW := (gridRight - gridLeft) / len(headers)
	for i := range headers {
		left := gridLeft + i*colW
		head := chart.Box{Left: left, Top: tableTop, Right: left + colW, Bottom: tableTop + tableRowH}
		body := chart.Box{Left: left, Top: tableTop + tableRowH, Right: left + colW, Bottom: tableTop + 2*tableRowH}

		p.fill(head, headerColor)
		p.fill(body, plotColor)
		p.outline(head, textColor, 0.8)
		p.outline(body, textColor, 0.8)

		cx, _ := head.Center()
		p.text(headers[i], cx, tableTop+tableRowH/2, 13, chart.TextHorizontalAlignCenter)
		p.text(values[i], cx, tableTop+tableRowH+tableRowH/2, 13, chart.TextHorizontalAlignCenter)
	}
}

func drawCalendarFooter(p *painter) {
	const y = calendarHeight - 24
	p.text(sourceNote, 12, y, 12, chart.TextHorizontalAlignLeft)

	legend := ": Start of the month"
	const square = 12
	tb := p.measure(legend, 12)
	x := calendarWidth/2 - (square+tb.Width())/2
	p.outline(chart.Box{Left: x, Top: y - square/2, Right: x + square, Bottom: y + square/2}, textColor, 1.5)
	p.text(legend, x+square+2, y, 12, chart.TextHorizontalAlignLeft)
}

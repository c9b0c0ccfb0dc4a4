package render

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/runnerr0/subplot/internal/bucket"
	"github.com/runnerr0/subplot/internal/record"
)

func sampleRows() record.RowSet {
	var rs record.RowSet
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		rs.Append(record.Record{Timestamp: start.Add(time.Duration(i) * 21 * time.Hour)})
	}
	return rs
}

func series(t *testing.T, rs record.RowSet, mode bucket.Mode) *bucket.Series {
	t.Helper()
	s, err := bucket.Bucketize(rs, mode, 2021)
	require.NoError(t, err)
	return s
}

func assertPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err, "expected a decodable PNG at %s", path)
	assert.Equal(t, width, cfg.Width)
	assert.Equal(t, height, cfg.Height)
}

func TestCalendar(t *testing.T) {
	dir := t.TempDir()
	path, err := Calendar(series(t, sampleRows(), bucket.ModeDate), Options{Forum: "Python", Year: 2021, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CalendarFile), path)
	assertPNG(t, path, calendarWidth, calendarHeight)
}

func TestCalendar_AllZeroSeries(t *testing.T) {
	rs := record.RowSet{Records: []record.Record{{Timestamp: time.Date(2019, 5, 5, 0, 0, 0, 0, time.UTC)}}}
	s := series(t, rs, bucket.ModeDate)
	require.Zero(t, s.Stats.Max)

	path, err := Calendar(s, Options{Forum: "Python", Year: 2021, Dir: t.TempDir()})
	require.NoError(t, err)
	assertPNG(t, path, calendarWidth, calendarHeight)
}

func TestCalendar_LeapYearStartingSunday(t *testing.T) {
	rs := record.RowSet{Records: []record.Record{{Timestamp: time.Date(2012, 12, 31, 12, 0, 0, 0, time.UTC)}}}
	s, err := bucket.Bucketize(rs, bucket.ModeDate, 2012)
	require.NoError(t, err)

	path, err := Calendar(s, Options{Forum: "Python", Year: 2012, Dir: t.TempDir()})
	require.NoError(t, err)
	assertPNG(t, path, calendarWidth, calendarHeight)
}

func TestRadar(t *testing.T) {
	path, err := Radar(series(t, sampleRows(), bucket.ModeHour), Options{Forum: "Python", Year: 2021, Dir: t.TempDir()})
	require.NoError(t, err)
	assertPNG(t, path, radarSize, radarSize)
}

func TestBars(t *testing.T) {
	path, err := Bars(series(t, sampleRows(), bucket.ModeMonth), Options{Forum: "Python", Year: 2021, Dir: t.TempDir()})
	require.NoError(t, err)
	assertPNG(t, path, barsWidth, barsHeight)
}

func TestBars_AllZeroSeries(t *testing.T) {
	s := &bucket.Series{Mode: bucket.ModeMonth, Year: 2021, Buckets: bucket.Skeleton(bucket.ModeMonth, 2021)}
	path, err := Bars(s, Options{Forum: "Python", Year: 2021, Dir: t.TempDir()})
	require.NoError(t, err)
	assertPNG(t, path, barsWidth, barsHeight)
}

func TestDonut(t *testing.T) {
	path, err := Donut(series(t, sampleRows(), bucket.ModeWeekday), Options{Forum: "Python", Year: 2021, Dir: t.TempDir()})
	require.NoError(t, err)
	assertPNG(t, path, donutWidth, donutHeight)
}

func TestDonut_SingleWeekday(t *testing.T) {
	// 2021-03-15 is a Monday; the other six slices are empty.
	rs := record.RowSet{Records: []record.Record{{Timestamp: time.Date(2021, 3, 15, 9, 0, 0, 0, time.UTC)}}}
	path, err := Donut(series(t, rs, bucket.ModeWeekday), Options{Forum: "Python", Year: 2021, Dir: t.TempDir()})
	require.NoError(t, err)
	assertPNG(t, path, donutWidth, donutHeight)
}

func TestDonut_EmptySeriesFailsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	s := &bucket.Series{Mode: bucket.ModeWeekday, Year: 2021, Buckets: bucket.Skeleton(bucket.ModeWeekday, 2021)}

	_, err := Donut(s, Options{Forum: "Python", Year: 2021, Dir: dir})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, DonutFile))
}

func TestModeMismatch(t *testing.T) {
	rs := sampleRows()
	opts := Options{Forum: "Python", Year: 2021, Dir: t.TempDir()}
	hour := series(t, rs, bucket.ModeHour)
	date := series(t, rs, bucket.ModeDate)

	tests := []struct {
		name string
		fn   Func
		s    *bucket.Series
	}{
		{"calendar with hour", Calendar, hour},
		{"radar with date", Radar, date},
		{"bars with hour", Bars, hour},
		{"donut with date", Donut, date},
		{"calendar with nil", Calendar, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fn(tc.s, opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrModeMismatch))
		})
	}

	entries, err := os.ReadDir(opts.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected series must not produce files")
}

func TestAll(t *testing.T) {
	rs := sampleRows()
	all := map[bucket.Mode]*bucket.Series{}
	for _, mode := range bucket.AllModes() {
		all[mode] = series(t, rs, mode)
	}

	dir := t.TempDir()
	paths, err := All(all, Options{Forum: "golang", Year: 2021, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "1.png"),
		filepath.Join(dir, "2.png"),
		filepath.Join(dir, "3.png"),
		filepath.Join(dir, "4.png"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestAll_MissingSeries(t *testing.T) {
	rs := sampleRows()
	partial := map[bucket.Mode]*bucket.Series{
		bucket.ModeDate: series(t, rs, bucket.ModeDate),
	}

	paths, err := All(partial, Options{Forum: "Python", Year: 2021, Dir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hour")
	assert.Len(t, paths, 1)
}

func TestOptionsDefaultDir(t *testing.T) {
	assert.Equal(t, "1.png", Options{}.path(CalendarFile))
	assert.Equal(t, "Distribution of submissions in r/Python during 2021 by date (UTC)",
		Options{Forum: "Python", Year: 2021}.title("date"))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "33.33%", percent(1, 3))
	assert.Equal(t, "100.00%", percent(5, 5))
	assert.Equal(t, "0.00%", percent(0, 0))
	assert.Equal(t, "Monday (1,234)", legendLabel(bucket.Bucket{Label: "Monday", Count: 1234}))
}

func TestNiceStep(t *testing.T) {
	tests := []struct{ max, want int }{
		{0, 1},
		{3, 1},
		{10, 5},
		{37, 10},
		{120, 50},
		{1999, 500},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, niceStep(tc.max, radarRings), "max=%d", tc.max)
	}
}

func TestColorScale(t *testing.T) {
	assert.Equal(t, calendarScale[0], calendarScale.at(0))
	assert.Equal(t, calendarScale[len(calendarScale)-1], calendarScale.at(1))
	assert.Equal(t, calendarScale[len(calendarScale)-1], calendarScale.at(7))
	assert.Equal(t, barScale[2], barScale.at(0.5))
}

func TestBarGeometry(t *testing.T) {
	w, s := barGeometry(chart.Box{Right: 2000}, 12)
	assert.Equal(t, barWidth, w)
	assert.Equal(t, barSpacing, s)

	w, s = barGeometry(chart.Box{Right: 840}, 12)
	assert.Equal(t, barWidth, w)
	assert.Equal(t, 10, s)
}

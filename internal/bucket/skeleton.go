package bucket

import (
	"fmt"
	"time"
)

// GridColumns is the number of week columns in the calendar layout.
const GridColumns = 53

// Bucket is one skeleton entry with its reconciled count.
type Bucket struct {
	Key   int
	Label string
	Count int

	// Calendar placement, set in ModeDate only.
	Date       time.Time
	DayOfWeek  int
	WeekIndex  int
	MonthStart bool
}

// IsLeap reports whether year has 366 days.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// SkeletonSize returns the number of buckets mode has for year.
func SkeletonSize(mode Mode, year int) int {
	switch mode {
	case ModeDate:
		if IsLeap(year) {
			return 366
		}
		return 365
	case ModeHour:
		return 24
	case ModeMonth:
		return 12
	case ModeWeekday:
		return 7
	}
	return 0
}

// Skeleton enumerates every bucket of mode for year, in order, with zero
// counts. It does not depend on any data.
func Skeleton(mode Mode, year int) []Bucket {
	n := SkeletonSize(mode, year)
	buckets := make([]Bucket, n)

	switch mode {
	case ModeDate:
		first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		pad := Weekday(first.Weekday())
		for i := range buckets {
			d := first.AddDate(0, 0, i)
			buckets[i] = Bucket{
				Key:        i,
				Label:      d.Format("2006-01-02"),
				Date:       d,
				DayOfWeek:  Weekday(d.Weekday()),
				WeekIndex:  weekIndex(i, pad),
				MonthStart: d.Day() == 1,
			}
		}
	case ModeHour:
		for h := range buckets {
			buckets[h] = Bucket{Key: h, Label: fmt.Sprintf("%d hrs.", h)}
		}
	case ModeMonth:
		for i := range buckets {
			buckets[i] = Bucket{Key: i + 1, Label: MonthAbbrevs[i]}
		}
	case ModeWeekday:
		for d := range buckets {
			buckets[d] = Bucket{Key: d, Label: WeekdayNames[d]}
		}
	}

	return buckets
}

// weekIndex lays days out row-major over a 7-row grid whose first row
// offset is pad, clamped to the last of GridColumns columns.
func weekIndex(day, pad int) int {
	w := (day + pad) / 7
	if w >= GridColumns {
		w = GridColumns - 1
	}
	return w
}

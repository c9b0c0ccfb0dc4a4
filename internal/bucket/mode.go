// Package bucket turns a sparse log of timestamped records into dense,
// calendar-aligned count series.
package bucket

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the calendar field records are grouped by.
type Mode int

const (
	// ModeDate groups by calendar day within the target year.
	ModeDate Mode = iota
	// ModeHour groups by hour of day, 0..23.
	ModeHour
	// ModeMonth groups by calendar month, 1..12.
	ModeMonth
	// ModeWeekday groups by day of week, 0..6 with Monday=0.
	ModeWeekday
)

var modeNames = map[Mode]string{
	ModeDate:    "date",
	ModeHour:    "hour",
	ModeMonth:   "month",
	ModeWeekday: "weekday",
}

// AllModes returns every mode in rendering order.
func AllModes() []Mode {
	return []Mode{ModeDate, ModeHour, ModeMonth, ModeWeekday}
}

// ParseMode parses a mode name as accepted on the command line.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown bucket mode %q (use date, hour, month, or weekday)", s)
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("unknown bucket mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// WeekdayNames are indexed by Monday=0 weekday numbers.
var WeekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// MonthAbbrevs are indexed by month-1.
var MonthAbbrevs = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Weekday converts a time.Weekday (Sunday=0) to Monday=0 numbering.
func Weekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// KeyOf derives the bucket key of t under mode. For ModeDate the key is the
// 0-based day of year and ok is false when t lies outside year. t is
// interpreted in UTC regardless of its location.
func KeyOf(t time.Time, mode Mode, year int) (key int, ok bool) {
	t = t.UTC()
	switch mode {
	case ModeDate:
		if t.Year() != year {
			return 0, false
		}
		return t.YearDay() - 1, true
	case ModeHour:
		return t.Hour(), true
	case ModeMonth:
		return int(t.Month()), true
	case ModeWeekday:
		return Weekday(t.Weekday()), true
	}
	return 0, false
}

package config

import (
	"fmt"
	"strings"
	"time"
)

// Target identifies the forum and calendar year a run operates on. It is
// built once per invocation and handed to both the collector and the
// bucketizer.
type Target struct {
	Forum string
	Year  int
}

// NewTarget resolves a Target from raw flag values. An empty forum falls
// back to DefaultForum and a zero year to the year of now in UTC.
func NewTarget(forum string, year int, now time.Time) (Target, error) {
	forum = strings.TrimSpace(forum)
	forum = strings.TrimPrefix(forum, "r/")
	if forum == "" {
		forum = DefaultForum
	}
	if strings.ContainsAny(forum, `/\ `) {
		return Target{}, fmt.Errorf("invalid forum name %q", forum)
	}

	if year == 0 {
		year = now.UTC().Year()
	}
	if year < 1970 || year > 9999 {
		return Target{}, fmt.Errorf("invalid year %d", year)
	}

	return Target{Forum: forum, Year: year}, nil
}

// Window returns the inclusive UTC bounds of the target year:
// Jan 1 00:00:00 through Dec 31 23:59:59.
func (t Target) Window() (start, end time.Time) {
	start = time.Date(t.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(t.Year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return start, end
}

func (t Target) String() string {
	return fmt.Sprintf("r/%s %d", t.Forum, t.Year)
}

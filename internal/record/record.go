// Package record holds the collected submission rows and their CSV file
// representation.
package record

import (
	"fmt"
	"path/filepath"
	"time"
)

// IsoDateLayout is the timestamp layout of the isodate column. Values are
// UTC instants written without a zone marker.
const IsoDateLayout = "2006-01-02 15:04:05"

// Header is the fixed first row of every row-set file.
var Header = []string{"isodate", "author", "title", "permalink"}

// Record is one collected submission. Absent upstream fields are empty
// strings.
type Record struct {
	Timestamp time.Time
	Author    string
	Title     string
	Permalink string
}

// IsoDate returns the timestamp formatted for the isodate column.
func (r Record) IsoDate() string {
	return r.Timestamp.UTC().Format(IsoDateLayout)
}

// RowSet is an ordered sequence of records, kept in collection order.
type RowSet struct {
	Records []Record
}

// Len returns the number of records.
func (rs RowSet) Len() int {
	return len(rs.Records)
}

// Append adds a record at the end of the set.
func (rs *RowSet) Append(r Record) {
	rs.Records = append(rs.Records, r)
}

// FileName returns the row-set file name for a forum and year.
func FileName(forum string, year int) string {
	return fmt.Sprintf("%s-%d.csv", forum, year)
}

// Path joins dir with the row-set file name.
func Path(dir, forum string, year int) string {
	return filepath.Join(dir, FileName(forum, year))
}

package bucket

import (
	"errors"

	"github.com/runnerr0/subplot/internal/record"
)

// ErrEmptyData is returned when a row set has no records to bucketize.
var ErrEmptyData = errors.New("row set is empty")

// Stats summarizes a reconciled series.
type Stats struct {
	Min    int
	MinKey string
	Max    int
	MaxKey string
	Sum    int
	// Mean divides Sum by the skeleton length, so empty buckets count.
	Mean float64
}

// Series is a skeleton-aligned, zero-filled count series.
type Series struct {
	Mode    Mode
	Year    int
	Buckets []Bucket
	Stats   Stats
}

// Len returns the number of buckets.
func (s *Series) Len() int {
	return len(s.Buckets)
}

// Counts returns the bucket counts in skeleton order.
func (s *Series) Counts() []int {
	counts := make([]int, len(s.Buckets))
	for i, b := range s.Buckets {
		counts[i] = b.Count
	}
	return counts
}

// Frequencies counts records per derived key. Records whose key falls
// outside the mode's domain are skipped.
func Frequencies(rs record.RowSet, mode Mode, year int) map[int]int {
	freq := make(map[int]int)
	for _, r := range rs.Records {
		if key, ok := KeyOf(r.Timestamp, mode, year); ok {
			freq[key]++
		}
	}
	return freq
}

// Count returns the number of records whose key is in the mode's domain.
func Count(rs record.RowSet, mode Mode, year int) int {
	n := 0
	for _, c := range Frequencies(rs, mode, year) {
		n += c
	}
	return n
}

// Bucketize counts rs per bucket of mode and reconciles the counts onto the
// full skeleton for year, filling absent buckets with zero.
func Bucketize(rs record.RowSet, mode Mode, year int) (*Series, error) {
	if rs.Len() == 0 {
		return nil, ErrEmptyData
	}

	freq := Frequencies(rs, mode, year)

	buckets := Skeleton(mode, year)
	for i := range buckets {
		buckets[i].Count = freq[buckets[i].Key]
	}

	return &Series{
		Mode:    mode,
		Year:    year,
		Buckets: buckets,
		Stats:   computeStats(buckets),
	}, nil
}

// computeStats finds min, max, sum and mean. Ties go to the earliest bucket.
func computeStats(buckets []Bucket) Stats {
	if len(buckets) == 0 {
		return Stats{}
	}

	st := Stats{
		Min:    buckets[0].Count,
		MinKey: buckets[0].Label,
		Max:    buckets[0].Count,
		MaxKey: buckets[0].Label,
	}
	for _, b := range buckets {
		st.Sum += b.Count
		if b.Count < st.Min {
			st.Min, st.MinKey = b.Count, b.Label
		}
		if b.Count > st.Max {
			st.Max, st.MaxKey = b.Count, b.Label
		}
	}
	st.Mean = float64(st.Sum) / float64(len(buckets))
	return st
}

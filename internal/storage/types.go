package storage

import "time"

// Dataset is a collected row-set file tracked by the catalog.
type Dataset struct {
	ID          int64
	Forum       string
	Year        int
	Path        string
	Records     int64
	Oldest      time.Time // zero when the set is empty
	Newest      time.Time
	CollectedAt time.Time
}

// Chart is one rendered PNG derived from a dataset.
type Chart struct {
	ID         int64
	DatasetID  int64
	Mode       string // date, hour, month, weekday
	Path       string
	Buckets    int
	Total      int64
	RenderedAt time.Time
}

// Stats holds aggregate statistics about the catalog.
type Stats struct {
	TotalDatasets     int64
	TotalCharts       int64
	TotalRecords      int64
	LastCollected     time.Time
	DatabaseSizeBytes int64
	TopForums         []ForumCount
}

// ForumCount pairs a forum with its collected record count.
type ForumCount struct {
	Forum    string
	Datasets int64
	Records  int64
}

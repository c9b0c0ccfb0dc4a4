package cli

import (
	"database/sql"
	"io"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Forum   string `short:"r" long:"forum" description:"Forum (subreddit) name" default:"Python"`
	Year    int    `short:"y" long:"year" description:"Calendar year; 0 means the current UTC year" default:"0"`
	Config  string `long:"config" description:"Path to config file" default:""`
	DataDir string `long:"data-dir" description:"Directory holding row-set CSV files (overrides config)"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// CollectCommand downloads a forum's submissions for one year into a CSV file.
type CollectCommand struct {
	globals *GlobalFlags
	version string
	db      *sql.DB // injectable for testing; nil means open the configured catalog
}

// PlotCommand renders the four distribution charts from a collected CSV file.
type PlotCommand struct {
	Chart string `long:"chart" description:"Render only one chart" choice:"date" choice:"hour" choice:"month" choice:"weekday"`

	globals *GlobalFlags
	version string
	db      *sql.DB
}

// SummaryCommand prints one bucketed series and its statistics.
type SummaryCommand struct {
	Mode string `long:"mode" description:"Bucket mode" choice:"date" choice:"hour" choice:"month" choice:"weekday" default:"date"`
	All  bool   `long:"all" description:"Include empty buckets"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows the catalog of collected datasets and rendered charts.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// PurgeCommand clears the catalog with safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	db      *sql.DB   // injectable for testing; nil means open the configured catalog
	stdin   io.Reader // nil means os.Stdin
	stderr  io.Writer // prompt destination; nil means os.Stderr
}

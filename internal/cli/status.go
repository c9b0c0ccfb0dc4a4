package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/runnerr0/subplot/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string           `json:"version"`
	DatabasePath      string           `json:"database_path"`
	DatabaseSizeBytes int64            `json:"database_size_bytes"`
	DataDir           string           `json:"data_dir"`
	TotalDatasets     int64            `json:"total_datasets"`
	TotalCharts       int64            `json:"total_charts"`
	TotalRecords      int64            `json:"total_records"`
	LastCollected     string           `json:"last_collected,omitempty"`
	TopForums         []forumCountJSON `json:"top_forums"`
	Datasets          []datasetJSON    `json:"datasets"`
}

type forumCountJSON struct {
	Forum    string `json:"forum"`
	Datasets int64  `json:"datasets"`
	Records  int64  `json:"records"`
}

type datasetJSON struct {
	Forum       string   `json:"forum"`
	Year        int      `json:"year"`
	Path        string   `json:"path"`
	Records     int64    `json:"records"`
	CollectedAt string   `json:"collected_at"`
	Charts      []string `json:"charts"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}

	store, db, err := openCatalog(sess.cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return c.executeWithStore(store, sess)
}

// executeWithStore runs status against a provided store (for testing).
func (c *StatusCommand) executeWithStore(store storage.Store, sess *session) error {
	ctx := context.Background()

	stats, err := store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	datasets, err := store.ListDatasets(ctx)
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}

	charts := make(map[int64][]storage.Chart, len(datasets))
	for _, d := range datasets {
		cs, err := store.ListCharts(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("list charts: %w", err)
		}
		charts[d.ID] = cs
	}

	dbPath, err := sess.cfg.DBPath()
	if err != nil {
		return err
	}
	dbSize := getDatabaseSize(stats, dbPath)

	if wantJSON(c.globals) {
		return c.printStatusJSON(stats, datasets, charts, dbPath, dbSize, sess.dataDir)
	}
	return c.printStatusHuman(stats, datasets, charts, dbPath, dbSize, sess.dataDir)
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, datasets []storage.Dataset, charts map[int64][]storage.Chart, dbPath string, dbSize int64, dataDir string) error {
	fmt.Println("Subplot Status")
	fmt.Println("==============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Catalog:       %s (%s)\n", dbPath, formatBytes(dbSize))
	fmt.Printf("Data dir:      %s\n", dataDir)
	fmt.Printf("Datasets:      %s\n", formatNumber(stats.TotalDatasets))
	fmt.Printf("Submissions:   %s\n", formatNumber(stats.TotalRecords))
	fmt.Printf("Charts:        %s\n", formatNumber(stats.TotalCharts))
	if stats.TotalDatasets > 0 {
		fmt.Printf("Last collect:  %s\n", formatTime(stats.LastCollected))
	}

	if len(stats.TopForums) > 0 {
		fmt.Println()
		fmt.Println("Top Forums:")
		for _, f := range stats.TopForums {
			fmt.Printf("  r/%-18s %s\n", f.Forum, formatNumber(f.Records))
		}
	}

	if len(datasets) == 0 {
		fmt.Println()
		fmt.Println("No datasets collected yet. Run `subplot collect` first.")
		return nil
	}

	fmt.Println()
	t := newTable()
	t.AppendHeader(table.Row{"Forum", "Year", "Submissions", "Collected", "Charts", "File"})
	for _, d := range datasets {
		t.AppendRow(table.Row{
			"r/" + d.Forum,
			d.Year,
			formatNumber(d.Records),
			formatTime(d.CollectedAt),
			chartModes(charts[d.ID]),
			d.Path,
		})
	}
	t.Render()
	return nil
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, datasets []storage.Dataset, charts map[int64][]storage.Chart, dbPath string, dbSize int64, dataDir string) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      dbPath,
		DatabaseSizeBytes: dbSize,
		DataDir:           dataDir,
		TotalDatasets:     stats.TotalDatasets,
		TotalCharts:       stats.TotalCharts,
		TotalRecords:      stats.TotalRecords,
		LastCollected:     jsonTime(stats.LastCollected),
		TopForums:         make([]forumCountJSON, len(stats.TopForums)),
		Datasets:          make([]datasetJSON, len(datasets)),
	}

	for i, f := range stats.TopForums {
		out.TopForums[i] = forumCountJSON{Forum: f.Forum, Datasets: f.Datasets, Records: f.Records}
	}

	for i, d := range datasets {
		modes := make([]string, len(charts[d.ID]))
		for j, ch := range charts[d.ID] {
			modes[j] = ch.Mode
		}
		out.Datasets[i] = datasetJSON{
			Forum:       d.Forum,
			Year:        d.Year,
			Path:        d.Path,
			Records:     d.Records,
			CollectedAt: jsonTime(d.CollectedAt),
			Charts:      modes,
		}
	}

	return printJSON(out)
}

func chartModes(charts []storage.Chart) string {
	if len(charts) == 0 {
		return "-"
	}
	modes := make([]string, len(charts))
	for i, ch := range charts {
		modes[i] = ch.Mode
	}
	return strings.Join(modes, ", ")
}

// getDatabaseSize returns the database file size in bytes. For in-memory
// databases it falls back to the page count reported by the store.
func getDatabaseSize(stats *storage.Stats, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}
	return stats.DatabaseSizeBytes
}

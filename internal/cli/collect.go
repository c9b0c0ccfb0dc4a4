package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/runnerr0/subplot/internal/collector"
	"github.com/runnerr0/subplot/internal/record"
	"github.com/runnerr0/subplot/internal/storage"
)

// collectJSON is the JSON output structure for the collect command.
type collectJSON struct {
	Forum   string `json:"forum"`
	Year    int    `json:"year"`
	Path    string `json:"path"`
	Records int    `json:"records"`
	Oldest  string `json:"oldest,omitempty"`
	Newest  string `json:"newest,omitempty"`
}

// Execute implements the go-flags Commander interface for CollectCommand.
func (c *CollectCommand) Execute(args []string) error {
	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.run(ctx, sess)
}

func (c *CollectCommand) run(ctx context.Context, sess *session) error {
	if err := os.MkdirAll(sess.dataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	client := collector.New(sess.cfg.Collector)
	path, rs, err := client.CollectToFile(ctx, sess.target, sess.dataDir)
	if err != nil {
		return fmt.Errorf("collect %s: %w", sess.target, err)
	}

	oldest, newest := timeRange(rs)
	ds := &storage.Dataset{
		Forum:   sess.target.Forum,
		Year:    sess.target.Year,
		Path:    path,
		Records: int64(rs.Len()),
		Oldest:  oldest,
		Newest:  newest,
	}
	// The CSV is the artifact; a catalog failure does not undo it.
	if err := withCatalog(sess.cfg, c.db, func(store *storage.SQLiteStore, _ *sql.DB) error {
		return store.RecordDataset(ctx, ds)
	}); err != nil {
		slog.Warn("catalog update failed", "target", sess.target.String(), "error", err)
	}

	if wantJSON(c.globals) {
		return printJSON(collectJSON{
			Forum:   sess.target.Forum,
			Year:    sess.target.Year,
			Path:    path,
			Records: rs.Len(),
			Oldest:  jsonTime(oldest),
			Newest:  jsonTime(newest),
		})
	}

	fmt.Printf("Collected %s submissions from %s into %s\n", formatNumber(int64(rs.Len())), sess.target, path)
	if rs.Len() > 0 {
		fmt.Printf("  oldest: %s\n", formatTime(oldest))
		fmt.Printf("  newest: %s\n", formatTime(newest))
	}
	return nil
}

// timeRange returns the earliest and latest record timestamps, or zero
// times for an empty set.
func timeRange(rs record.RowSet) (oldest, newest time.Time) {
	for i, r := range rs.Records {
		if i == 0 || r.Timestamp.Before(oldest) {
			oldest = r.Timestamp
		}
		if i == 0 || r.Timestamp.After(newest) {
			newest = r.Timestamp
		}
	}
	return oldest, newest
}

package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/runnerr0/subplot/internal/bucket"
	"github.com/runnerr0/subplot/internal/config"
	"github.com/runnerr0/subplot/internal/record"
	"github.com/runnerr0/subplot/internal/render"
	"github.com/runnerr0/subplot/internal/storage"
)

// plotJSON is the JSON output structure for the plot command.
type plotJSON struct {
	Forum  string      `json:"forum"`
	Year   int         `json:"year"`
	Input  string      `json:"input"`
	Charts []chartJSON `json:"charts"`
}

type chartJSON struct {
	Mode    string `json:"mode"`
	Path    string `json:"path"`
	Buckets int    `json:"buckets"`
	Total   int    `json:"total"`
}

// rendered pairs a series with the file it was drawn to.
type rendered struct {
	series *bucket.Series
	path   string
}

// Execute implements the go-flags Commander interface for PlotCommand.
func (c *PlotCommand) Execute(args []string) error {
	sess, err := newSession(c.globals)
	if err != nil {
		return err
	}
	return c.run(context.Background(), sess)
}

func (c *PlotCommand) run(ctx context.Context, sess *session) error {
	modes := bucket.AllModes()
	if c.Chart != "" {
		mode, err := bucket.ParseMode(c.Chart)
		if err != nil {
			return err
		}
		modes = []bucket.Mode{mode}
	}

	target := sess.target
	input := record.Path(sess.dataDir, target.Forum, target.Year)
	rs, err := record.ReadFile(input)
	if err != nil {
		return err
	}
	slog.Debug("loaded row set", "path", input, "records", rs.Len())

	all := make(map[bucket.Mode]*bucket.Series, len(modes))
	for _, mode := range modes {
		s, err := bucket.Bucketize(rs, mode, target.Year)
		if err != nil {
			return fmt.Errorf("bucketize %s by %s: %w", target, mode, err)
		}
		all[mode] = s
	}

	// Charts land beside the row set under fixed names.
	opts := render.Options{Forum: target.Forum, Year: target.Year, Dir: sess.dataDir}
	results, err := renderCharts(all, modes, opts)
	if err != nil {
		return err
	}

	if err := withCatalog(sess.cfg, c.db, func(store *storage.SQLiteStore, _ *sql.DB) error {
		return recordCharts(ctx, store, target, input, rs, results)
	}); err != nil {
		slog.Warn("catalog update failed", "target", target.String(), "error", err)
	}

	if wantJSON(c.globals) {
		out := plotJSON{Forum: target.Forum, Year: target.Year, Input: input, Charts: make([]chartJSON, len(results))}
		for i, r := range results {
			out.Charts[i] = chartJSON{
				Mode:    r.series.Mode.String(),
				Path:    r.path,
				Buckets: r.series.Len(),
				Total:   r.series.Stats.Sum,
			}
		}
		return printJSON(out)
	}

	fmt.Printf("Plotted %s submissions from %s\n", formatNumber(int64(rs.Len())), input)
	for _, r := range results {
		fmt.Printf("  %-8s %s\n", r.series.Mode, r.path)
	}
	return nil
}

// renderCharts draws every series in modes order.
func renderCharts(all map[bucket.Mode]*bucket.Series, modes []bucket.Mode, opts render.Options) ([]rendered, error) {
	if len(modes) == len(bucket.AllModes()) {
		paths, err := render.All(all, opts)
		if err != nil {
			return nil, fmt.Errorf("render charts: %w", err)
		}
		results := make([]rendered, len(paths))
		for i, p := range paths {
			results[i] = rendered{series: all[modes[i]], path: p}
		}
		return results, nil
	}

	results := make([]rendered, 0, len(modes))
	for _, mode := range modes {
		fn, _, err := render.ForMode(mode)
		if err != nil {
			return nil, err
		}
		path, err := fn(all[mode], opts)
		if err != nil {
			return nil, fmt.Errorf("render %s chart: %w", mode, err)
		}
		results = append(results, rendered{series: all[mode], path: path})
	}
	return results, nil
}

// recordCharts catalogs the rendered charts. A row set plotted without a
// prior collect run gets its dataset entry created here.
func recordCharts(ctx context.Context, store storage.Store, target config.Target, input string, rs record.RowSet, results []rendered) error {
	ds, err := store.GetDataset(ctx, target.Forum, target.Year)
	if errors.Is(err, storage.ErrNotFound) {
		oldest, newest := timeRange(rs)
		ds = &storage.Dataset{
			Forum:   target.Forum,
			Year:    target.Year,
			Path:    input,
			Records: int64(rs.Len()),
			Oldest:  oldest,
			Newest:  newest,
		}
		err = store.RecordDataset(ctx, ds)
	}
	if err != nil {
		return err
	}

	for _, r := range results {
		ch := &storage.Chart{
			DatasetID: ds.ID,
			Mode:      r.series.Mode.String(),
			Path:      r.path,
			Buckets:   r.series.Len(),
			Total:     int64(r.series.Stats.Sum),
		}
		if err := store.RecordChart(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

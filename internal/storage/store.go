package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a catalog lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store defines the catalog operations used by the CLI.
type Store interface {
	RecordDataset(ctx context.Context, d *Dataset) error
	GetDataset(ctx context.Context, forum string, year int) (*Dataset, error)
	ListDatasets(ctx context.Context) ([]Dataset, error)
	RecordChart(ctx context.Context, c *Chart) error
	ListCharts(ctx context.Context, datasetID int64) ([]Chart, error)
	GetStats(ctx context.Context) (*Stats, error)
	PurgeAll(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	upsertDataset *sql.Stmt
	getDataset    *sql.Stmt
	upsertChart   *sql.Stmt
	listCharts    *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.upsertDataset, err = s.db.Prepare(`
		INSERT INTO datasets (forum, year, path, records, oldest, newest, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(forum, year) DO UPDATE SET
			path         = excluded.path,
			records      = excluded.records,
			oldest       = excluded.oldest,
			newest       = excluded.newest,
			collected_at = excluded.collected_at
		RETURNING id
	`)
	if err != nil {
		return err
	}

	s.getDataset, err = s.db.Prepare(`
		SELECT id, forum, year, path, records, oldest, newest, collected_at
		FROM datasets WHERE forum = ? AND year = ?
	`)
	if err != nil {
		return err
	}

	s.upsertChart, err = s.db.Prepare(`
		INSERT INTO charts (dataset_id, mode, path, buckets, total, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset_id, mode) DO UPDATE SET
			path        = excluded.path,
			buckets     = excluded.buckets,
			total       = excluded.total,
			rendered_at = excluded.rendered_at
		RETURNING id
	`)
	if err != nil {
		return err
	}

	s.listCharts, err = s.db.Prepare(`
		SELECT id, dataset_id, mode, path, buckets, total, rendered_at
		FROM charts WHERE dataset_id = ? ORDER BY mode
	`)
	if err != nil {
		return err
	}

	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999-07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// nullableTimestamp stores zero times as NULL.
func nullableTimestamp(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return formatTimestamp(t)
}

func scanTimestamp(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	t, _ := parseTimestamp(ns.String)
	return t
}

// RecordDataset inserts or replaces the catalog entry for d's forum and
// year. d.ID is set on return and a zero CollectedAt becomes now.
func (s *SQLiteStore) RecordDataset(ctx context.Context, d *Dataset) error {
	if d.CollectedAt.IsZero() {
		d.CollectedAt = time.Now()
	}

	err := s.upsertDataset.QueryRowContext(ctx,
		d.Forum, d.Year, d.Path, d.Records,
		nullableTimestamp(d.Oldest), nullableTimestamp(d.Newest), formatTimestamp(d.CollectedAt),
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("record dataset: %w", err)
	}
	return nil
}

// GetDataset returns the catalog entry for forum and year.
func (s *SQLiteStore) GetDataset(ctx context.Context, forum string, year int) (*Dataset, error) {
	d, err := scanDataset(s.getDataset.QueryRowContext(ctx, forum, year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("dataset r/%s %d: %w", forum, year, ErrNotFound)
		}
		return nil, fmt.Errorf("get dataset: %w", err)
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(row rowScanner) (*Dataset, error) {
	var d Dataset
	var oldest, newest, collected sql.NullString
	if err := row.Scan(&d.ID, &d.Forum, &d.Year, &d.Path, &d.Records, &oldest, &newest, &collected); err != nil {
		return nil, err
	}
	d.Oldest = scanTimestamp(oldest)
	d.Newest = scanTimestamp(newest)
	d.CollectedAt = scanTimestamp(collected)
	return &d, nil
}

// ListDatasets returns every dataset, most recently collected first.
func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, forum, year, path, records, oldest, newest, collected_at
		FROM datasets ORDER BY collected_at DESC, forum, year
	`)
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	defer rows.Close()

	datasets := []Dataset{}
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		datasets = append(datasets, *d)
	}
	return datasets, rows.Err()
}

// RecordChart inserts or replaces the chart of c.Mode for its dataset.
func (s *SQLiteStore) RecordChart(ctx context.Context, c *Chart) error {
	if c.RenderedAt.IsZero() {
		c.RenderedAt = time.Now()
	}

	err := s.upsertChart.QueryRowContext(ctx,
		c.DatasetID, c.Mode, c.Path, c.Buckets, c.Total, formatTimestamp(c.RenderedAt),
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("record chart: %w", err)
	}
	return nil
}

// ListCharts returns the charts rendered from a dataset.
func (s *SQLiteStore) ListCharts(ctx context.Context, datasetID int64) ([]Chart, error) {
	rows, err := s.listCharts.QueryContext(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("query charts: %w", err)
	}
	defer rows.Close()

	charts := []Chart{}
	for rows.Next() {
		var c Chart
		var rendered sql.NullString
		if err := rows.Scan(&c.ID, &c.DatasetID, &c.Mode, &c.Path, &c.Buckets, &c.Total, &rendered); err != nil {
			return nil, fmt.Errorf("scan chart: %w", err)
		}
		c.RenderedAt = scanTimestamp(rendered)
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

// PurgeAll deletes every dataset and chart entry. Files on disk are left
// alone.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{"DELETE FROM charts", "DELETE FROM datasets"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return tx.Commit()
}

// GetStats returns aggregate statistics about the catalog.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(records), 0) FROM datasets",
	).Scan(&stats.TotalDatasets, &stats.TotalRecords)
	if err != nil {
		return nil, fmt.Errorf("count datasets: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM charts").Scan(&stats.TotalCharts)
	if err != nil {
		return nil, fmt.Errorf("count charts: %w", err)
	}

	if stats.TotalDatasets > 0 {
		var last sql.NullString
		err = s.db.QueryRowContext(ctx, "SELECT MAX(collected_at) FROM datasets").Scan(&last)
		if err != nil {
			return nil, fmt.Errorf("last collection: %w", err)
		}
		stats.LastCollected = scanTimestamp(last)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats.DatabaseSizeBytes = pageCount * pageSize
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT forum, COUNT(*), SUM(records) AS total
		FROM datasets GROUP BY forum ORDER BY total DESC, forum LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top forums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fc ForumCount
		if err := rows.Scan(&fc.Forum, &fc.Datasets, &fc.Records); err != nil {
			return nil, err
		}
		stats.TopForums = append(stats.TopForums, fc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is not
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.upsertDataset, s.getDataset, s.upsertChart, s.listCharts,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

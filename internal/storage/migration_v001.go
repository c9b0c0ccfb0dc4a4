package storage

import "database/sql"

// migrateV001 creates the catalog schema. Every statement uses IF NOT
// EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS datasets (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			forum        TEXT NOT NULL,
			year         INTEGER NOT NULL,
			path         TEXT NOT NULL,
			records      INTEGER NOT NULL DEFAULT 0,
			oldest       DATETIME,
			newest       DATETIME,
			collected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(forum, year)
		)`,

		`CREATE TABLE IF NOT EXISTS charts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset_id  INTEGER NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
			mode        TEXT NOT NULL CHECK (mode IN ('date', 'hour', 'month', 'weekday')),
			path        TEXT NOT NULL,
			buckets     INTEGER NOT NULL DEFAULT 0,
			total       INTEGER NOT NULL DEFAULT 0,
			rendered_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(dataset_id, mode)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_datasets_collected_at ON datasets(collected_at)`,
		`CREATE INDEX IF NOT EXISTS idx_charts_dataset        ON charts(dataset_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

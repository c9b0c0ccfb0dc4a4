package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/subplot/internal/config"
	"github.com/runnerr0/subplot/internal/logging"
	"github.com/runnerr0/subplot/internal/storage"
)

// session is the per-invocation state shared by every subcommand: the
// loaded config, the resolved forum/year target and the row-set directory.
type session struct {
	cfg     *config.Config
	target  config.Target
	dataDir string
}

// newSession loads the config, installs the logger and resolves the target.
// A nil globals behaves like an invocation with no flags.
func newSession(globals *GlobalFlags) (*session, error) {
	if globals == nil {
		globals = &GlobalFlags{}
	}

	var cfg *config.Config
	var err error
	if globals.Config != "" {
		cfg, err = config.LoadOrCreateAt(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logging.Setup(os.Stderr, cfg.Logging, globals.Verbose); err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	target, err := config.NewTarget(globals.Forum, globals.Year, time.Now())
	if err != nil {
		return nil, err
	}

	dataDir := cfg.Output.DataDir
	if globals.DataDir != "" {
		dataDir = globals.DataDir
	}
	dataDir, err = config.ExpandPath(dataDir)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, target: target, dataDir: dataDir}, nil
}

func wantJSON(globals *GlobalFlags) bool {
	return globals != nil && globals.JSON
}

// openCatalog opens the configured catalog database, runs migrations, and
// returns a ready-to-use store and the underlying *sql.DB.
func openCatalog(cfg *config.Config) (*storage.SQLiteStore, *sql.DB, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	store, err := catalogFromDB(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

// catalogFromDB migrates db and wraps it in a store. Used for injected
// test databases as well.
func catalogFromDB(db *sql.DB) (*storage.SQLiteStore, error) {
	if _, err := storage.NewMigrationRunner(db).Run(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	return store, nil
}

// withCatalog runs fn against the injected db when set, else against the
// configured catalog.
func withCatalog(cfg *config.Config, db *sql.DB, fn func(*storage.SQLiteStore, *sql.DB) error) error {
	if db != nil {
		store, err := catalogFromDB(db)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(store, db)
	}

	store, db, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()
	return fn(store, db)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable returns a rounded table writer mirrored to stdout.
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	if b < 0 {
		b = 0
	}
	return humanize.Bytes(uint64(b))
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	return humanize.Comma(n)
}

// formatTime renders catalog timestamps; zero times print as "-".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

func jsonTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

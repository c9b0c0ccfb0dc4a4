package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	goflags "github.com/jessevdk/go-flags"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/runnerr0/subplot/internal/config"
	"github.com/runnerr0/subplot/internal/record"
	"github.com/runnerr0/subplot/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-done
}

// testEnv is a throwaway config file whose data and catalog
// directories all live under one temp dir.
type testEnv struct {
	configPath string
	dataDir    string
	dbPath     string
}

func newTestEnv(t *testing.T, baseURL string) testEnv {
	t.Helper()
	root := t.TempDir()

	cfg := config.DefaultConfig()
	if baseURL != "" {
		cfg.Collector.BaseURL = baseURL
	}
	cfg.Collector.RequestsPerSecond = 1000
	cfg.Collector.TimeoutSeconds = 5
	cfg.Collector.PageSize = 10
	cfg.Output.DataDir = filepath.Join(root, "data")
	cfg.Storage.Path = filepath.Join(root, "catalog")
	cfg.Logging.Level = "error"

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	return testEnv{
		configPath: path,
		dataDir:    cfg.Output.DataDir,
		dbPath:     filepath.Join(cfg.Storage.Path, cfg.Storage.SQLiteFile),
	}
}

func (e testEnv) globals(forum string, year int) *GlobalFlags {
	return &GlobalFlags{Forum: forum, Year: year, Config: e.configPath}
}

func (e testEnv) session(t *testing.T, forum string, year int) *session {
	t.Helper()
	sess, err := newSession(e.globals(forum, year))
	require.NoError(t, err)
	return sess
}

// openTestDB returns a migrated in-memory catalog database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = storage.NewMigrationRunner(db).Run()
	require.NoError(t, err)
	return db
}

func openTestStore(t *testing.T) (*storage.SQLiteStore, *sql.DB) {
	t.Helper()
	db := openTestDB(t)
	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, db
}

// writeRows writes a row-set file with one record per timestamp.
func writeRows(t *testing.T, dir, forum string, year int, stamps ...time.Time) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))

	var rs record.RowSet
	for i, ts := range stamps {
		rs.Append(record.Record{
			Timestamp: ts,
			Author:    "gopher",
			Title:     "post " + strconv.Itoa(i),
			Permalink: "https://www.reddit.com/r/" + forum + "/comments/" + strconv.Itoa(i),
		})
	}
	path := record.Path(dir, forum, year)
	require.NoError(t, record.WriteFile(path, rs))
	return path
}

// parseOnly parses args without executing the matched command.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands, goflags.Commander, error) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	var matched goflags.Commander
	parser.CommandHandler = func(cmd goflags.Commander, _ []string) error {
		matched = cmd
		return nil
	}
	_, err := parser.ParseArgs(args)
	return globals, cmds, matched, err
}

// fakeArchive answers search requests from a fixed list of creation times,
// newest first, restricted to the open (after, before) interval.
type fakeArchive struct {
	created []int64
	calls   atomic.Int32
}

func (f *fakeArchive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	q := r.URL.Query()
	after, _ := strconv.ParseInt(q.Get("after"), 10, 64)
	before, _ := strconv.ParseInt(q.Get("before"), 10, 64)
	size, _ := strconv.Atoi(q.Get("size"))

	var page []int64
	for _, ts := range f.created {
		if ts > after && ts < before {
			page = append(page, ts)
		}
	}
	sort.Slice(page, func(i, j int) bool { return page[i] > page[j] })
	if len(page) > size {
		page = page[:size]
	}

	data := make([]map[string]any, len(page))
	for i, ts := range page {
		data[i] = map[string]any{
			"id":          strconv.FormatInt(ts, 36),
			"created_utc": ts,
			"author":      "gopher",
			"title":       "post " + strconv.FormatInt(ts, 10),
			"permalink":   "/r/golang/comments/" + strconv.FormatInt(ts, 10),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

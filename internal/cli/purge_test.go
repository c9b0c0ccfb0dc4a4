package cli

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/subplot/internal/storage"
)

func countRows(t *testing.T, cmd *PurgeCommand, table string) int {
	t.Helper()
	var n int
	require.NoError(t, cmd.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestPurge_WithoutAllFlag_Errors(t *testing.T) {
	cmd := &PurgeCommand{globals: &GlobalFlags{}}
	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all flag is required")
}

func TestPurge_WithAllAndForce_Succeeds(t *testing.T) {
	db := openTestDB(t)
	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	defer store.Close()
	seedCatalog(t, store)

	cmd := &PurgeCommand{All: true, Force: true, globals: &GlobalFlags{}}
	cmd.setDB(db)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, output, "Purged the catalog")
	assert.NotContains(t, output, "WARNING")
	assert.Equal(t, 0, countRows(t, cmd, "datasets"))
	assert.Equal(t, 0, countRows(t, cmd, "charts"))
}

func TestPurge_JSONOutput(t *testing.T) {
	db := openTestDB(t)

	cmd := &PurgeCommand{All: true, Force: true, globals: &GlobalFlags{JSON: true}}
	cmd.setDB(db)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output should be valid JSON: %s", output)
	assert.Equal(t, true, result["purged"])
	assert.Equal(t, "catalog cleared", result["message"])
}

func TestPurge_ConfirmationAccepted(t *testing.T) {
	db := openTestDB(t)
	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	defer store.Close()
	seedCatalog(t, store)

	var prompt strings.Builder
	cmd := &PurgeCommand{All: true, globals: &GlobalFlags{}, stdin: strings.NewReader("PURGE\n"), stderr: &prompt}
	cmd.setDB(db)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	assert.Contains(t, prompt.String(), "WARNING")
	assert.Contains(t, prompt.String(), `Type "PURGE" to confirm`)
	assert.NotContains(t, output, "WARNING", "prompt stays off stdout")
	assert.Contains(t, output, "Purged the catalog")
	assert.Equal(t, 0, countRows(t, cmd, "datasets"))
}

func TestPurge_ConfirmedJSONOutput(t *testing.T) {
	db := openTestDB(t)

	var prompt strings.Builder
	cmd := &PurgeCommand{All: true, globals: &GlobalFlags{JSON: true}, stdin: strings.NewReader("PURGE\n"), stderr: &prompt}
	cmd.setDB(db)

	output := captureOutput(t, func() {
		require.NoError(t, cmd.Execute(nil))
	})

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output should be valid JSON: %s", output)
	assert.Equal(t, true, result["purged"])
	assert.Contains(t, prompt.String(), `Type "PURGE" to confirm`)
}

func TestPurge_ConfirmationRejected(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"wrong text", "purge\n", "did not match"},
		{"no input", "", "no input received"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := openTestDB(t)
			store, err := storage.NewSQLiteStore(db)
			require.NoError(t, err)
			defer store.Close()
			seedCatalog(t, store)

			cmd := &PurgeCommand{All: true, globals: &GlobalFlags{}, stdin: strings.NewReader(tc.input), stderr: io.Discard}
			cmd.setDB(db)

			captureOutput(t, func() {
				err = cmd.Execute(nil)
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.Equal(t, 3, countRows(t, cmd, "datasets"), "catalog must be untouched")
		})
	}
}

func TestPurge_KeepsFilesOnDisk(t *testing.T) {
	env := newTestEnv(t, "")
	path := writeRows(t, env.dataDir, "golang", 2021)

	sess := env.session(t, "golang", 2021)
	store, db, err := openCatalog(sess.cfg)
	require.NoError(t, err)
	require.NoError(t, store.RecordDataset(context.Background(), &storage.Dataset{Forum: "golang", Year: 2021, Path: path}))
	store.Close()
	db.Close()

	captureOutput(t, func() {
		require.NoError(t, RunWithArgs("dev", []string{"--config", env.configPath, "purge", "--all", "--force"}))
	})

	assert.FileExists(t, path)

	store, db, err = openCatalog(sess.cfg)
	require.NoError(t, err)
	defer db.Close()
	defer store.Close()
	list, err := store.ListDatasets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

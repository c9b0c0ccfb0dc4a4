package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/subplot/internal/config"
	"github.com/runnerr0/subplot/internal/storage"
)

// setDB allows tests to inject a database connection.
func (c *PurgeCommand) setDB(db *sql.DB) {
	c.db = db
}

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("--all flag is required for purge")
	}

	// Confirmation prompt unless --force. It goes to stderr so stdout carries
	// only the result.
	if !c.Force {
		var prompt io.Writer = os.Stderr
		if c.stderr != nil {
			prompt = c.stderr
		}
		fmt.Fprintln(prompt, "⚠ WARNING: This will delete the whole subplot catalog.")
		fmt.Fprintln(prompt, "  - All collected dataset entries")
		fmt.Fprintln(prompt, "  - All rendered chart entries")
		fmt.Fprintln(prompt)
		fmt.Fprintln(prompt, "CSV and PNG files on disk are kept.")
		fmt.Fprintln(prompt)
		fmt.Fprint(prompt, `Type "PURGE" to confirm: `)

		var in io.Reader = os.Stdin
		if c.stdin != nil {
			in = c.stdin
		}
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		input := strings.TrimSpace(scanner.Text())
		if input != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	// The config is only needed to locate the catalog.
	var cfg *config.Config
	if c.db == nil {
		sess, err := newSession(c.globals)
		if err != nil {
			return err
		}
		cfg = sess.cfg
	}

	err := withCatalog(cfg, c.db, func(store *storage.SQLiteStore, _ *sql.DB) error {
		if err := store.PurgeAll(context.Background()); err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if wantJSON(c.globals) {
		return printJSON(map[string]interface{}{
			"purged":  true,
			"message": "catalog cleared",
		})
	}

	fmt.Println("Purged the catalog. Collected files were left in place.")
	return nil
}

package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/streakline/internal/logger"
)

// Migration is one numbered SQL script.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Runner applies numbered SQL scripts ("NNN_name.sql") from a filesystem
// and records the applied version in a schema_version table.
type Runner struct {
	db  *sql.DB
	fs  fs.FS
	log func(msg string, keyvals ...interface{})
}

// NewRunner creates a runner reading scripts from the root of migrationFS.
func NewRunner(db *sql.DB, migrationFS fs.FS) *Runner {
	return &Runner{db: db, fs: migrationFS, log: logger.Debug}
}

// CurrentVersion returns the applied schema version, or 0 for a fresh database.
func (r *Runner) CurrentVersion() (int, error) {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := r.db.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Migrations returns the available scripts sorted by version.
func (r *Runner) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		version, name, err := parseName(e.Name())
		if err != nil {
			return nil, err
		}
		body, err := fs.ReadFile(r.fs, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

func parseName(filename string) (int, string, error) {
	prefix, rest, ok := strings.Cut(filename, "_")
	if !ok {
		return 0, "", fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", filename)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil || version < 1 {
		return 0, "", fmt.Errorf("invalid version in migration filename %s", filename)
	}
	return version, strings.TrimSuffix(rest, ".sql"), nil
}

// Apply runs every script newer than the current version, each in its own
// transaction together with the version bump. It returns how many were applied.
func (r *Runner) Apply() (int, error) {
	current, err := r.CurrentVersion()
	if err != nil {
		return 0, err
	}
	migrations, err := r.Migrations()
	if err != nil {
		return 0, err
	}
	if len(migrations) > 0 && current > migrations[len(migrations)-1].Version {
		return 0, newerSchemaError(current, migrations[len(migrations)-1].Version)
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := r.applyOne(m); err != nil {
			return applied, err
		}
		applied++
		r.log("Applied migration", "version", m.Version, "name", m.Name)
	}
	return applied, nil
}

func (r *Runner) applyOne(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	for _, stmt := range []struct {
		query string
		args  []interface{}
	}{
		{m.SQL, nil},
		{`DELETE FROM schema_version`, nil},
		{`INSERT INTO schema_version (version) VALUES (?)`, []interface{}{m.Version}},
	} {
		if _, err := tx.Exec(stmt.query, stmt.args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// Validate fails when the database was migrated by a newer build.
func (r *Runner) Validate() error {
	current, err := r.CurrentVersion()
	if err != nil {
		return err
	}
	migrations, err := r.Migrations()
	if err != nil {
		return err
	}
	latest := 0
	if len(migrations) > 0 {
		latest = migrations[len(migrations)-1].Version
	}
	if current > latest {
		return newerSchemaError(current, latest)
	}
	return nil
}

func newerSchemaError(current, latest int) error {
	return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", current, latest)
}

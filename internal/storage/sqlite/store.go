package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/streakline/internal/migration"
	"github.com/julianstephens/streakline/internal/storage"
	"github.com/julianstephens/streakline/migrations"
)

// Store is a storage.Provider backed by a local SQLite file.
type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init opens (creating if needed) the database and applies pending migrations.
func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		_ = s.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations() error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply()
	return err
}

// SchemaVersion reports the applied schema version and fails when the file
// was written by a newer build.
func (s *Store) SchemaVersion() (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("session database not initialized")
	}
	r, err := s.runner()
	if err != nil {
		return 0, err
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}
	return r.CurrentVersion()
}

func (s *Store) Get(key string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("session database not initialized")
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM session_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(key, value string) error {
	if s.db == nil {
		return fmt.Errorf("session database not initialized")
	}

	_, err := s.db.Exec(`
		INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("session database not initialized")
	}

	res, err := s.db.Exec(`DELETE FROM session_kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of %q: %w", key, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Describe() string {
	return "sqlite:" + s.path
}

// GetDB returns the underlying database connection, or nil before Init.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

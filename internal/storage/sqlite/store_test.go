package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/streakline/internal/storage"
)

func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	s := NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStoreImplementsProvider(t *testing.T) {
	var _ storage.Provider = NewStore("unused.db")
}

func TestStoreSetGetDelete(t *testing.T) {
	s, _ := setupTestStore(t)

	if _, err := s.Get("token"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	if err := s.Set("token", "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set("token", "xyz"); err != nil {
		t.Fatalf("Set() upsert error = %v", err)
	}
	got, err := s.Get("token")
	if err != nil || got != "xyz" {
		t.Fatalf("Get() = %q, %v; want xyz, nil", got, err)
	}

	if err := s.Delete("token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("token"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStorePersistsAndMigratesOnce(t *testing.T) {
	s, path := setupTestStore(t)
	if err := s.Set("user", `{"_id":"u1"}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Init(); err != nil {
		t.Fatalf("Init() on existing database error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("user")
	if err != nil || got != `{"_id":"u1"}` {
		t.Errorf("Get() after reopen = %q, %v", got, err)
	}

	var version int
	if err := reopened.GetDB().QueryRow(`SELECT version FROM schema_version`).Scan(&version); err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestStoreBeforeInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "session.db"))
	if _, err := s.Get("token"); err == nil {
		t.Error("Get() before Init() expected error")
	}
	if err := s.Set("token", "x"); err == nil {
		t.Error("Set() before Init() expected error")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() before Init() error = %v", err)
	}
}

func TestStoreSchemaVersion(t *testing.T) {
	s, _ := setupTestStore(t)

	v, err := s.SchemaVersion()
	if err != nil || v != 1 {
		t.Fatalf("SchemaVersion() = %d, %v; want 1, nil", v, err)
	}

	if _, err := s.GetDB().Exec(`UPDATE schema_version SET version = 99`); err != nil {
		t.Fatalf("failed to bump schema version: %v", err)
	}
	if _, err := s.SchemaVersion(); err == nil {
		t.Error("SchemaVersion() expected error for a newer schema")
	}
}

package migration

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func script(sql string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(sql)}
}

func TestCurrentVersionFreshDatabase(t *testing.T) {
	r := NewRunner(openTestDB(t), fstest.MapFS{})

	version, err := r.CurrentVersion()
	if err != nil {
		t.Fatalf("CurrentVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("CurrentVersion() = %d, want 0", version)
	}
}

func TestMigrationsSortedAndParsed(t *testing.T) {
	r := NewRunner(openTestDB(t), fstest.MapFS{
		"003_third.sql":  script("SELECT 1;"),
		"001_first.sql":  script("SELECT 1;"),
		"002_second.sql": script("SELECT 1;"),
		"README.md":      script("ignored"),
	})

	migrations, err := r.Migrations()
	if err != nil {
		t.Fatalf("Migrations() error = %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("Migrations() returned %d, want 3", len(migrations))
	}
	for i, want := range []string{"first", "second", "third"} {
		if migrations[i].Version != i+1 || migrations[i].Name != want {
			t.Errorf("migration %d = %d/%s, want %d/%s", i, migrations[i].Version, migrations[i].Name, i+1, want)
		}
	}
}

func TestMigrationsRejectBadNames(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
	}{
		{"no underscore", fstest.MapFS{"001.sql": script("SELECT 1;")}},
		{"non numeric", fstest.MapFS{"abc_init.sql": script("SELECT 1;")}},
		{"zero version", fstest.MapFS{"000_init.sql": script("SELECT 1;")}},
		{"duplicate", fstest.MapFS{"001_a.sql": script("SELECT 1;"), "1_b.sql": script("SELECT 1;")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(openTestDB(t), tt.files)
			if _, err := r.Migrations(); err == nil {
				t.Error("Migrations() expected error")
			}
		})
	}
}

func TestApplyFromScratchAndIncremental(t *testing.T) {
	db := openTestDB(t)
	files := fstest.MapFS{
		"001_kv.sql": script(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL);`),
	}
	r := NewRunner(db, files)

	n, err := r.Apply()
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Apply() applied %d, want 1", n)
	}

	files["002_kv_updated.sql"] = script(`ALTER TABLE kv ADD COLUMN updated_at TEXT;`)
	n, err = r.Apply()
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if n != 1 {
		t.Errorf("second Apply() applied %d, want 1", n)
	}

	n, err = r.Apply()
	if err != nil || n != 0 {
		t.Errorf("third Apply() = %d, %v; want 0, nil", n, err)
	}

	version, _ := r.CurrentVersion()
	if version != 2 {
		t.Errorf("CurrentVersion() = %d, want 2", version)
	}
	if _, err := db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES ('a', 'b', 'c')`); err != nil {
		t.Errorf("schema not migrated: %v", err)
	}
}

func TestApplyRollsBackFailedScript(t *testing.T) {
	db := openTestDB(t)
	r := NewRunner(db, fstest.MapFS{
		"001_ok.sql":     script(`CREATE TABLE ok (id INTEGER);`),
		"002_broken.sql": script(`CREATE TABLE nope (;`),
	})

	n, err := r.Apply()
	if err == nil {
		t.Fatal("Apply() expected error for broken script")
	}
	if n != 1 {
		t.Errorf("Apply() applied %d before failing, want 1", n)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("Apply() error = %v, want it to name the script", err)
	}
	if version, _ := r.CurrentVersion(); version != 1 {
		t.Errorf("CurrentVersion() = %d after failure, want 1", version)
	}
}

func TestValidateNewerDatabase(t *testing.T) {
	db := openTestDB(t)
	full := NewRunner(db, fstest.MapFS{
		"001_a.sql": script(`CREATE TABLE a (id INTEGER);`),
		"002_b.sql": script(`CREATE TABLE b (id INTEGER);`),
	})
	if _, err := full.Apply(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	older := NewRunner(db, fstest.MapFS{"001_a.sql": script(`CREATE TABLE a (id INTEGER);`)})
	if err := older.Validate(); err == nil {
		t.Error("Validate() expected error when database is newer than the scripts")
	}
	if _, err := older.Apply(); err == nil {
		t.Error("Apply() expected error when database is newer than the scripts")
	}
	if err := full.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrationsSortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_indexes.sql", "CREATE INDEX x ON t (a);")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE t (a INT);")
	writeFile(t, dir, "010_later.sql", "ALTER TABLE t ADD b INT;")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("got %d migrations, want 3", len(migrations))
	}
	wantVersions := []int{1, 2, 10}
	for i, w := range wantVersions {
		if migrations[i].Version != w {
			t.Errorf("migration %d has version %d, want %d", i, migrations[i].Version, w)
		}
	}
	if migrations[0].SQL != "CREATE TABLE t (a INT);" {
		t.Errorf("unexpected SQL: %q", migrations[0].SQL)
	}
}

func TestLoadMigrationsSkipsNonNumeric(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_core.sql", "CREATE TABLE t (a INT);")
	writeFile(t, dir, "README.md", "docs")
	writeFile(t, dir, "notes.sql", "not a migration")
	writeFile(t, dir, "seed_data.sql", "also not")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migrations) != 1 || migrations[0].Version != 1 {
		t.Fatalf("got %+v", migrations)
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

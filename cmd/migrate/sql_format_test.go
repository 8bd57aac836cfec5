package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	dir := migrationsPath(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		s := string(b)
		up := strings.Index(s, "-- +goose Up")
		down := strings.Index(s, "-- +goose Down")
		if up < 0 {
			t.Fatalf("%s missing '-- +goose Up'", e.Name())
		}
		if down < 0 {
			t.Fatalf("%s missing '-- +goose Down'", e.Name())
		}
		if down < up {
			t.Fatalf("%s has Down before Up", e.Name())
		}
		if !strings.Contains(s[down:], "DROP") {
			t.Fatalf("%s Down section does not drop anything", e.Name())
		}
	}
}

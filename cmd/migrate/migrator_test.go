package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestCollectUpFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.up.sql", "000_drop_all.sql", "001_a.up.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.up.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := collectUpFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(files, ",") != "001_a.up.sql,002_b.up.sql" {
		t.Errorf("unexpected files %v", files)
	}
}

func TestCollectUpFiles_MissingDir(t *testing.T) {
	if _, err := collectUpFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing dir")
	}
}

// TestMigrator_Postgres applies the real migrations twice.
// Requires TEST_DATABASE_URL pointing at a disposable database.
func TestMigrator_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	m := &migrator{pool: pool, dir: filepath.Join("..", "..", "migrations")}
	if err := m.dropAll(ctx); err != nil {
		t.Fatalf("dropAll: %v", err)
	}
	if err := m.up(ctx); err != nil {
		t.Fatalf("first up: %v", err)
	}
	if err := m.up(ctx); err != nil {
		t.Fatalf("second up: %v", err)
	}

	var buf bytes.Buffer
	if err := m.status(ctx, &buf); err != nil {
		t.Fatalf("status: %v", err)
	}
	if strings.Contains(buf.String(), "pending") {
		t.Errorf("expected everything applied:\n%s", buf.String())
	}
}

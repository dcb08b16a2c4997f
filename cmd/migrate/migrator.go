package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrator applies migrations/*.up.sql to Postgres and records each applied
// file in schema_migrations.
type migrator struct {
	pool *pgxpool.Pool
	dir  string
}

// collectUpFiles は .up.sql ファイル名をソート済みで返す
func collectUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func migrationName(filename string) string {
	return strings.TrimSuffix(filename, ".up.sql")
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *migrator) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := m.pool.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	done := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		done[name] = true
	}
	return done, rows.Err()
}

// up applies every migration not yet recorded, each in its own transaction.
func (m *migrator) up(ctx context.Context) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	files, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, filename := range files {
		name := migrationName(filename)
		if done[name] {
			continue
		}
		sql, err := os.ReadFile(filepath.Join(m.dir, filename))
		if err != nil {
			return fmt.Errorf("read %s: %w", filename, err)
		}

		tx, err := m.pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		count++
		slog.Info("migration applied", "migration", name)
	}

	if count == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", count)
	}
	return nil
}

// status prints one line per migration file.
func (m *migrator) status(ctx context.Context, w io.Writer) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	files, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}
	for _, filename := range files {
		name := migrationName(filename)
		state := "pending"
		if done[name] {
			state = "applied"
		}
		fmt.Fprintf(w, "%-8s %s\n", state, name)
	}
	return nil
}

// ---------------------------------------------------------------------------
// 全テーブル DROP / 集約スキーマで再作成
// ---------------------------------------------------------------------------

func (m *migrator) dropAll(ctx context.Context) error {
	slog.Info("dropping all tables")
	sql, err := os.ReadFile(filepath.Join(m.dir, "000_drop_all.sql"))
	if err != nil {
		return err
	}
	if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("drop all: %w", err)
	}
	return nil
}

func (m *migrator) consolidated(ctx context.Context) error {
	slog.Info("applying consolidated schema")
	sql, err := os.ReadFile(filepath.Join(m.dir, "000_consolidated.sql"))
	if err != nil {
		return err
	}
	if _, err := m.pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("consolidated: %w", err)
	}

	// 全マイグレーションを適用済みとして記録
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	files, err := collectUpFiles(m.dir)
	if err != nil {
		return err
	}
	for _, filename := range files {
		if _, err := m.pool.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING`, migrationName(filename)); err != nil {
			return err
		}
	}
	slog.Info("consolidated schema applied", "migrations_marked", len(files))
	return nil
}

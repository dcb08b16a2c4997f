package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bktrade/site/internal/config"
	"github.com/bktrade/site/internal/logging"
	"github.com/bktrade/site/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
)

const usageText = `Usage: migrate [flags] [command]

Commands:
  up (default)  差分マイグレーションを適用
  status        適用済み / 未適用のマイグレーションを表示
  reset         全テーブルを DROP し、集約スキーマで再作成
  fresh         全テーブルを DROP し、全マイグレーションを順番に適用

Without DATABASE_URL the SQLite file (DB_FILE) is brought up to date instead;
only "up" is supported there.

Flags:`

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	dir := pflag.String("dir", "", "migrations directory (default: ./migrations or ../migrations)")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, usageText)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		slog.Warn("failed to load env file", "path", *envFile, "error", err)
	}
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, "app", "bktrade-migrate")

	cmd := pflag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	ctx := context.Background()
	if cfg.DatabaseURL == "" {
		if cmd != "up" {
			fmt.Fprintf(os.Stderr, "command %q needs DATABASE_URL\n", cmd)
			os.Exit(2)
		}
		migrateSQLite(ctx, cfg.DBFile)
		return
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	m := &migrator{pool: pool, dir: *dir}
	if m.dir == "" {
		m.dir = findMigrationDir()
	}

	switch cmd {
	case "up":
		err = m.up(ctx)
	case "status":
		err = m.status(ctx, os.Stdout)
	case "reset":
		if err = m.dropAll(ctx); err == nil {
			err = m.consolidated(ctx)
		}
	case "fresh":
		if err = m.dropAll(ctx); err == nil {
			err = m.up(ctx)
		}
	default:
		pflag.Usage()
		os.Exit(2)
	}
	if err != nil {
		pool.Close()
		logging.Fatal("migrate failed", "command", cmd, "error", err)
	}
}

// migrateSQLite opens the SQLite store, which creates the table and adds
// missing columns on open.
func migrateSQLite(ctx context.Context, path string) {
	repo, err := repository.OpenSQLiteLeadRepository(ctx, path)
	if err != nil {
		logging.Fatal("sqlite migrate failed", "db_file", path, "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Warn("failed to close sqlite store", "error", err)
	}
	slog.Info("sqlite schema up to date", "db_file", path)
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

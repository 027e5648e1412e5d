package db

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	db      *sql.DB
	once    sync.Once
	initErr error
)

// Package-level operation sets, initialized once the database is open.
var (
	Files    = &FileOperations{}
	Printers = &PrinterOperations{}
	Jobs     = &JobOperations{}
	Settings = &SettingOperations{}
	Webhooks = &WebhookOperations{}
)

type Config struct {
	Path string
}

// Init opens the database and runs migrations. Only the first call does the
// work; every later call reports the same outcome.
func Init(cfg Config) error {
	once.Do(func() {
		initErr = open(cfg)
	})
	return initErr
}

func open(cfg Config) error {
	handle, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return err
	}
	handle.SetMaxOpenConns(1)
	handle.SetMaxIdleConns(1)
	if err := runMigrations(handle); err != nil {
		handle.Close()
		return err
	}
	db = handle
	return nil
}

func GetDB() *sql.DB {
	return db
}

func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

type Migration struct {
	Version string
	SQL     string
}

func runMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	migrations := schemaMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", m.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}
	}

	return nil
}

func schemaMigrations() []Migration {
	return []Migration{
		{
			Version: "001_initial",
			SQL: `
				CREATE TABLE IF NOT EXISTS files (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL DEFAULT '',
					size INTEGER NOT NULL DEFAULT 0,
					pages INTEGER NOT NULL DEFAULT 1,
					copies INTEGER NOT NULL DEFAULT 1,
					position INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				);

				CREATE TABLE IF NOT EXISTS printers (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'unknown',
					is_default INTEGER NOT NULL DEFAULT 0,
					color INTEGER NOT NULL DEFAULT 0,
					duplex_modes TEXT NOT NULL DEFAULT '[]',
					paper_sizes TEXT NOT NULL DEFAULT '[]',
					host TEXT NOT NULL DEFAULT '',
					port INTEGER NOT NULL DEFAULT 9100,
					last_seen_at DATETIME,
					created_at DATETIME NOT NULL
				);

				CREATE TABLE IF NOT EXISTS print_jobs (
					id TEXT PRIMARY KEY,
					printer_id TEXT NOT NULL,
					files_json TEXT NOT NULL DEFAULT '[]',
					color_mode TEXT NOT NULL,
					paper_size TEXT NOT NULL,
					orientation TEXT NOT NULL,
					quality TEXT NOT NULL,
					duplex TEXT NOT NULL,
					status TEXT NOT NULL DEFAULT 'pending',
					total_pages INTEGER NOT NULL DEFAULT 0,
					failure_reason TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL,
					started_at DATETIME,
					completed_at DATETIME
				);
				CREATE INDEX IF NOT EXISTS idx_print_jobs_status ON print_jobs(status);
				CREATE INDEX IF NOT EXISTS idx_print_jobs_printer ON print_jobs(printer_id);

				CREATE TABLE IF NOT EXISTS settings (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);

				CREATE TABLE IF NOT EXISTS webhooks (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					url TEXT NOT NULL,
					secret TEXT NOT NULL DEFAULT '',
					events_json TEXT NOT NULL DEFAULT '[]',
					enabled INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
	}
}

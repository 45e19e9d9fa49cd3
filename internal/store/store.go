package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS clients (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS services (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		rate        REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS clients_to_services (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id  INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		service_id INTEGER NOT NULL REFERENCES services(id) ON DELETE CASCADE,
		UNIQUE(client_id, service_id)
	);

	CREATE TABLE IF NOT EXISTS time_stamps (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		client_to_service_id INTEGER NOT NULL REFERENCES clients_to_services(id) ON DELETE CASCADE,
		clock_in             INTEGER NOT NULL,
		clock_out            INTEGER NOT NULL DEFAULT -1,
		description          TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_stamps_pair ON time_stamps(client_to_service_id);
	CREATE INDEX IF NOT EXISTS idx_stamps_open ON time_stamps(clock_out);

	CREATE TABLE IF NOT EXISTS contacts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		number     TEXT NOT NULL DEFAULT '',
		email      TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS clients_to_contacts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id  INTEGER NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		contact_id INTEGER NOT NULL REFERENCES contacts(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('invoice_mode', 'grouped'),
		('currency',     '$');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/clockit/clockit.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "clockit", "clockit.db"), nil
}

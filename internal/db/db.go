package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mutecomm/go-sqlcipher/v4"
	_ "modernc.org/sqlite"
)

// Supported storage drivers
const (
	DriverSQLCipher = "sqlcipher" // encrypted, needs a key
	DriverSQLite    = "sqlite"    // plain SQLite, pure Go
)

type DB struct {
	*sql.DB
	Driver string
}

// Open opens the invoice store at dbPath. The key is only used by the
// sqlcipher driver and must be non-empty for it.
func Open(driver, dbPath, key string) (*DB, error) {
	// Create parent directories if they don't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	switch driver {
	case DriverSQLCipher, "":
		if key == "" {
			return nil, fmt.Errorf("an encryption key is required for the %s driver", DriverSQLCipher)
		}
		driver = DriverSQLCipher
		connStr := fmt.Sprintf("%s?_pragma_key=%s", dbPath, url.QueryEscape(quoteKey(key)))
		sqlDB, err = sql.Open("sqlite3", connStr)
	case DriverSQLite:
		sqlDB, err = sql.Open("sqlite", "file:"+dbPath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps per-connection pragmas in effect and matches
	// the single-writer model of the store.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Ping to verify connection (and, for sqlcipher, the key)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: driver}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// quoteKey turns a passphrase into a SQL string literal for PRAGMA key
func quoteKey(key string) string {
	return "'" + strings.ReplaceAll(key, "'", "''") + "'"
}

package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
)

// NewSQLite opens the sqlite database file, creating its directory if needed.
func NewSQLite(cfg *config.Config) (*sqlx.DB, func(), error) {
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, err
	}
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return OpenSQLite(dsn)
}

// OpenSQLite connects to dsn with a single writer connection.
func OpenSQLite(dsn string) (*sqlx.DB, func(), error) {
	db, err := sqlx.Connect(config.DriverSQLite, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	cleanup := func() { _ = db.Close() }
	return db, cleanup, nil
}

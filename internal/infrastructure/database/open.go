package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
)

// OpenSQL opens the configured database through database/sql. Tooling that
// works on both drivers uses it; the request path uses pgxpool for postgres.
func OpenSQL(cfg *config.Config) (*sqlx.DB, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, err
	}
	if driver == config.DriverSQLite {
		return NewSQLite(cfg)
	}
	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}

// MigrateSQL applies the schema through any sqlx handle.
func MigrateSQL(ctx context.Context, db *sqlx.DB) error {
	return Migrate(ctx, db.DriverName(), func(ctx context.Context, stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	})
}

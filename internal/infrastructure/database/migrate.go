package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
)

// ExecFunc runs a single DDL statement.
type ExecFunc func(ctx context.Context, stmt string) error

// Migrate creates every table and index that does not exist yet.
func Migrate(ctx context.Context, driver string, exec ExecFunc) error {
	stmts, err := CreateStatements(driver)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// MigratePostgres applies the schema through a pgx pool.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	return Migrate(ctx, config.DriverPostgres, func(ctx context.Context, stmt string) error {
		_, err := pool.Exec(ctx, stmt)
		return err
	})
}

// MigrateSQLite applies the schema through sqlx.
func MigrateSQLite(ctx context.Context, db *sqlx.DB) error {
	return Migrate(ctx, config.DriverSQLite, func(ctx context.Context, stmt string) error {
		_, err := db.ExecContext(ctx, stmt)
		return err
	})
}

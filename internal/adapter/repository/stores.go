package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/infrastructure/database"
	"github.com/eslsoft/studydeck/internal/repository"
)

// Stores bundles the repositories backed by the configured database.
type Stores struct {
	Cards    repository.CardRepository
	Answers  repository.AnswerRepository
	Sessions repository.SessionRepository
}

// NewStores opens the configured database, applies the schema and builds the
// repositories on top of it.
func NewStores(cfg *config.Config, logger *logrus.Logger) (*Stores, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, err
	}
	ctx := context.Background()

	switch driver {
	case config.DriverPostgres:
		pool, cleanup, err := database.NewConnection(cfg, logger)
		if err != nil {
			if cleanup != nil {
				cleanup()
			}
			return nil, nil, err
		}
		if err := database.MigratePostgres(ctx, pool); err != nil {
			cleanup()
			return nil, nil, err
		}
		return &Stores{
			Cards:    NewPostgresCardRepository(pool),
			Answers:  NewPostgresAnswerRepository(pool),
			Sessions: NewPostgresSessionRepository(pool),
		}, cleanup, nil
	case config.DriverSQLite:
		db, cleanup, err := database.NewSQLite(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			cleanup()
			return nil, nil, err
		}
		return &Stores{
			Cards:    NewSQLiteCardRepository(db),
			Answers:  NewSQLiteAnswerRepository(db),
			Sessions: NewSQLiteSessionRepository(db),
		}, cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

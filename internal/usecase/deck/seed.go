package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/studydeck/internal/entity"
)

// SeedResult summarizes a deck import.
type SeedResult struct {
	Processed         int
	CategoriesCreated int
	Created           int
	Skipped           int
}

// Seed inserts rows as new cards for learnerID, creating missing categories.
// Cards whose question already exists for the learner are skipped, so seeding
// the same deck twice is harmless. New cards are due at now.
func Seed(ctx context.Context, db *sqlx.DB, learnerID int64, rows []Row, now time.Time) (*SeedResult, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	categories, err := loadCategories(ctx, tx, learnerID)
	if err != nil {
		return nil, err
	}

	result := &SeedResult{}
	schedule := entity.NewSchedule(now.UTC())
	for _, row := range rows {
		result.Processed++

		var exists bool
		if err := tx.GetContext(ctx, &exists, tx.Rebind(
			`SELECT COUNT(*) > 0 FROM cards WHERE learner_id = ? AND question = ?`), learnerID, row.Question); err != nil {
			return nil, fmt.Errorf("row %d: check existing card: %w", row.Line, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		var categoryID *int64
		if row.Category != "" {
			id, created, err := ensureCategory(ctx, tx, learnerID, row.Category, categories)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row.Line, err)
			}
			if created {
				result.CategoriesCreated++
			}
			categoryID = &id
		}

		tags, err := json.Marshal(row.Tags)
		if err != nil {
			return nil, fmt.Errorf("row %d: encode tags: %w", row.Line, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
INSERT INTO cards (learner_id, category_id, question, answer, difficulty, tags, review_count, ease_factor, next_review, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			learnerID, categoryID, row.Question, row.Answer, string(row.Difficulty), string(tags),
			schedule.ReviewCount, schedule.EaseFactor, schedule.NextReview, now.UTC(), now.UTC(),
		); err != nil {
			return nil, fmt.Errorf("row %d: insert card: %w", row.Line, err)
		}
		result.Created++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit seed: %w", err)
	}
	return result, nil
}

func loadCategories(ctx context.Context, tx *sqlx.Tx, learnerID int64) (map[string]int64, error) {
	var existing []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := tx.SelectContext(ctx, &existing, tx.Rebind(
		`SELECT id, name FROM categories WHERE learner_id = ?`), learnerID); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	out := make(map[string]int64, len(existing))
	for _, c := range existing {
		out[strings.ToLower(c.Name)] = c.ID
	}
	return out, nil
}

func ensureCategory(ctx context.Context, tx *sqlx.Tx, learnerID int64, name string, known map[string]int64) (int64, bool, error) {
	key := strings.ToLower(name)
	if id, ok := known[key]; ok {
		return id, false, nil
	}
	var id int64
	if err := tx.GetContext(ctx, &id, tx.Rebind(
		`INSERT INTO categories (learner_id, name) VALUES (?, ?) RETURNING id`), learnerID, name); err != nil {
		return 0, false, fmt.Errorf("create category %q: %w", name, err)
	}
	known[key] = id
	return id, true, nil
}

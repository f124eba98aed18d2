package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/internal/repository"
)

const sqliteDueCardsSQL = `
SELECT c.id, c.question, c.answer, c.category_id, cat.name AS category_name,
       c.difficulty, c.tags
FROM cards c
LEFT JOIN categories cat ON cat.id = c.category_id
WHERE c.learner_id = ? AND c.next_review <= ?
ORDER BY c.next_review, c.id
LIMIT ?`

type sqliteCardRepository struct {
	db    *sqlx.DB
	clock entity.Clock
}

// NewSQLiteCardRepository serves due cards from a sqlite database.
func NewSQLiteCardRepository(db *sqlx.DB) repository.CardRepository {
	return &sqliteCardRepository{db: db, clock: entity.SystemClock}
}

func (r *sqliteCardRepository) FetchDueCards(ctx context.Context, learnerID int64, limit int) ([]entity.Card, error) {
	var items []cardRow
	if err := r.db.SelectContext(ctx, &items, sqliteDueCardsSQL, learnerID, r.clock().UTC(), limit); err != nil {
		return nil, fmt.Errorf("query due cards: %w", err)
	}
	cards := make([]entity.Card, len(items))
	for i, item := range items {
		cards[i] = item.toEntity()
	}
	return cards, nil
}

func (r *sqliteCardRepository) Reschedule(ctx context.Context, learnerID, cardID int64, isCorrect bool, quality entity.Quality, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reschedule: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current scheduleRow
	err = tx.GetContext(ctx, &current,
		`SELECT review_count, ease_factor, next_review FROM cards WHERE id = ? AND learner_id = ?`,
		cardID, learnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ErrCardNotFound
		}
		return fmt.Errorf("load schedule: %w", err)
	}

	next := current.toEntity().Next(isCorrect, quality, at)
	_, err = tx.ExecContext(ctx,
		`UPDATE cards SET review_count = ?, ease_factor = ?, next_review = ?, updated_at = ? WHERE id = ?`,
		next.ReviewCount, next.EaseFactor, next.NextReview.UTC(), at.UTC(), cardID)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return tx.Commit()
}

const sqliteHistorySQL = `
SELECT r.session_id, r.learner_id, r.card_id, r.is_correct, r.quality,
       r.response_time, r.reviewed_at,
       COALESCE(cat.name, '') AS category_name,
       COALESCE(c.difficulty, 'medium') AS difficulty
FROM card_reviews r
LEFT JOIN cards c ON c.id = r.card_id
LEFT JOIN categories cat ON cat.id = c.category_id
WHERE r.learner_id = ? AND r.reviewed_at >= ?
ORDER BY r.reviewed_at, r.id`

type sqliteAnswerRepository struct{ db *sqlx.DB }

// NewSQLiteAnswerRepository stores answers in card_reviews.
func NewSQLiteAnswerRepository(db *sqlx.DB) repository.AnswerRepository {
	return &sqliteAnswerRepository{db: db}
}

func (r *sqliteAnswerRepository) Append(ctx context.Context, sessionID string, learnerID int64, record entity.AnswerRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO card_reviews (session_id, learner_id, card_id, is_correct, quality, response_time, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, learnerID, record.CardID, record.IsCorrect, int(record.Quality),
		record.ResponseTimeSeconds, record.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert card review: %w", err)
	}
	return nil
}

func (r *sqliteAnswerRepository) ListSince(ctx context.Context, learnerID int64, since time.Time) ([]entity.AnswerHistory, error) {
	var items []historyRow
	if err := r.db.SelectContext(ctx, &items, sqliteHistorySQL, learnerID, since.UTC()); err != nil {
		return nil, fmt.Errorf("query answer history: %w", err)
	}
	out := make([]entity.AnswerHistory, len(items))
	for i, item := range items {
		out[i] = item.toEntity()
	}
	return out, nil
}

type sqliteSessionRepository struct{ db *sqlx.DB }

// NewSQLiteSessionRepository upserts session summaries.
func NewSQLiteSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sqliteSessionRepository{db: db}
}

func (r *sqliteSessionRepository) Save(ctx context.Context, s entity.SessionSummary) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO study_sessions (id, learner_id, started_at, ended_at, queue_size, total_cards, correct_answers)
VALUES (:id, :learner_id, :started_at, :ended_at, :queue_size, :total_cards, :correct_answers)
ON CONFLICT (id) DO UPDATE SET
    ended_at = excluded.ended_at,
    queue_size = excluded.queue_size,
    total_cards = excluded.total_cards,
    correct_answers = excluded.correct_answers`,
		sessionRow{
			ID:             s.ID,
			LearnerID:      s.LearnerID,
			StartedAt:      s.StartedAt.UTC(),
			EndedAt:        utcPtr(s.EndedAt),
			QueueSize:      s.QueueSize,
			TotalCards:     s.TotalCards,
			CorrectAnswers: s.CorrectAnswers,
		})
	if err != nil {
		return fmt.Errorf("upsert study session: %w", err)
	}
	return nil
}

func (r *sqliteSessionRepository) GetByID(ctx context.Context, id string) (*entity.SessionSummary, error) {
	var row sessionRow
	err := r.db.GetContext(ctx, &row, `
SELECT id, learner_id, started_at, ended_at, queue_size, total_cards, correct_answers
FROM study_sessions WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("query study session: %w", err)
	}
	return row.toEntity(), nil
}

func (r *sqliteSessionRepository) ListRecent(ctx context.Context, learnerID int64, limit int) ([]entity.SessionSummary, error) {
	var items []sessionRow
	err := r.db.SelectContext(ctx, &items, `
SELECT id, learner_id, started_at, ended_at, queue_size, total_cards, correct_answers
FROM study_sessions
WHERE learner_id = ?
ORDER BY started_at DESC, id DESC
LIMIT ?`, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	return summariesFromRows(items), nil
}

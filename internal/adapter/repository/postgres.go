package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/internal/repository"
)

// pgxDB is the subset of *pgxpool.Pool the repositories use.
type pgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ pgxDB = (*pgxpool.Pool)(nil)

const pgDueCardsSQL = `
SELECT c.id, c.question, c.answer, c.category_id, cat.name AS category_name,
       c.difficulty, c.tags::text AS tags
FROM cards c
LEFT JOIN categories cat ON cat.id = c.category_id
WHERE c.learner_id = $1 AND c.next_review <= $2
ORDER BY c.next_review, c.id
LIMIT $3`

type pgCardRepository struct {
	db    pgxDB
	clock entity.Clock
}

// NewPostgresCardRepository serves due cards ordered by next review.
func NewPostgresCardRepository(db *pgxpool.Pool) repository.CardRepository {
	return &pgCardRepository{db: db, clock: entity.SystemClock}
}

func (r *pgCardRepository) FetchDueCards(ctx context.Context, learnerID int64, limit int) ([]entity.Card, error) {
	rows, err := r.db.Query(ctx, pgDueCardsSQL, learnerID, r.clock().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query due cards: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[cardRow])
	if err != nil {
		return nil, fmt.Errorf("scan due cards: %w", err)
	}
	cards := make([]entity.Card, len(items))
	for i, item := range items {
		cards[i] = item.toEntity()
	}
	return cards, nil
}

func (r *pgCardRepository) Reschedule(ctx context.Context, learnerID, cardID int64, isCorrect bool, quality entity.Quality, at time.Time) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT review_count, ease_factor, next_review FROM cards WHERE id = $1 AND learner_id = $2 FOR UPDATE`,
			cardID, learnerID)
		if err != nil {
			return fmt.Errorf("load schedule: %w", err)
		}
		current, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[scheduleRow])
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return entity.ErrCardNotFound
			}
			return fmt.Errorf("scan schedule: %w", err)
		}

		next := current.toEntity().Next(isCorrect, quality, at)
		_, err = tx.Exec(ctx,
			`UPDATE cards SET review_count = $1, ease_factor = $2, next_review = $3, updated_at = $4 WHERE id = $5`,
			next.ReviewCount, next.EaseFactor, next.NextReview.UTC(), at.UTC(), cardID)
		if err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		return nil
	})
}

const pgHistorySQL = `
SELECT r.session_id, r.learner_id, r.card_id, r.is_correct, r.quality,
       r.response_time, r.reviewed_at,
       COALESCE(cat.name, '') AS category_name,
       COALESCE(c.difficulty, 'medium') AS difficulty
FROM card_reviews r
LEFT JOIN cards c ON c.id = r.card_id
LEFT JOIN categories cat ON cat.id = c.category_id
WHERE r.learner_id = $1 AND r.reviewed_at >= $2
ORDER BY r.reviewed_at, r.id`

type pgAnswerRepository struct{ db pgxDB }

// NewPostgresAnswerRepository stores answers in card_reviews.
func NewPostgresAnswerRepository(db *pgxpool.Pool) repository.AnswerRepository {
	return &pgAnswerRepository{db: db}
}

func (r *pgAnswerRepository) Append(ctx context.Context, sessionID string, learnerID int64, record entity.AnswerRecord) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO card_reviews (session_id, learner_id, card_id, is_correct, quality, response_time, reviewed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sessionID, learnerID, record.CardID, record.IsCorrect, int(record.Quality),
		record.ResponseTimeSeconds, record.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert card review: %w", err)
	}
	return nil
}

func (r *pgAnswerRepository) ListSince(ctx context.Context, learnerID int64, since time.Time) ([]entity.AnswerHistory, error) {
	rows, err := r.db.Query(ctx, pgHistorySQL, learnerID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query answer history: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[historyRow])
	if err != nil {
		return nil, fmt.Errorf("scan answer history: %w", err)
	}
	out := make([]entity.AnswerHistory, len(items))
	for i, item := range items {
		out[i] = item.toEntity()
	}
	return out, nil
}

type pgSessionRepository struct{ db pgxDB }

// NewPostgresSessionRepository upserts session summaries.
func NewPostgresSessionRepository(db *pgxpool.Pool) repository.SessionRepository {
	return &pgSessionRepository{db: db}
}

func (r *pgSessionRepository) Save(ctx context.Context, s entity.SessionSummary) error {
	_, err := r.db.Exec(ctx, `
INSERT INTO study_sessions (id, learner_id, started_at, ended_at, queue_size, total_cards, correct_answers)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    ended_at = EXCLUDED.ended_at,
    queue_size = EXCLUDED.queue_size,
    total_cards = EXCLUDED.total_cards,
    correct_answers = EXCLUDED.correct_answers`,
		s.ID, s.LearnerID, s.StartedAt.UTC(), utcPtr(s.EndedAt), s.QueueSize, s.TotalCards, s.CorrectAnswers)
	if err != nil {
		return fmt.Errorf("upsert study session: %w", err)
	}
	return nil
}

func (r *pgSessionRepository) GetByID(ctx context.Context, id string) (*entity.SessionSummary, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, learner_id, started_at, ended_at, queue_size, total_cards, correct_answers
FROM study_sessions WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query study session: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[sessionRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan study session: %w", err)
	}
	return row.toEntity(), nil
}

func (r *pgSessionRepository) ListRecent(ctx context.Context, learnerID int64, limit int) ([]entity.SessionSummary, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, learner_id, started_at, ended_at, queue_size, total_cards, correct_answers
FROM study_sessions
WHERE learner_id = $1
ORDER BY started_at DESC, id DESC
LIMIT $2`, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[sessionRow])
	if err != nil {
		return nil, fmt.Errorf("scan study sessions: %w", err)
	}
	return summariesFromRows(items), nil
}

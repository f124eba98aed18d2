package repository

import (
	"context"
	"time"

	"github.com/eslsoft/studydeck/internal/entity"
)

// AnswerRepository persists answer records and serves them back as history.
type AnswerRepository interface {
	Append(ctx context.Context, sessionID string, learnerID int64, record entity.AnswerRecord) error
	// ListSince returns a learner's answers recorded at or after since, oldest first.
	ListSince(ctx context.Context, learnerID int64, since time.Time) ([]entity.AnswerHistory, error)
}

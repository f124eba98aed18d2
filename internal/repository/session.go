package repository

import (
	"context"

	"github.com/eslsoft/studydeck/internal/entity"
)

// SessionRepository keeps one summary row per study session.
type SessionRepository interface {
	Save(ctx context.Context, summary entity.SessionSummary) error
	GetByID(ctx context.Context, id string) (*entity.SessionSummary, error)
	// ListRecent returns up to limit summaries for the learner, newest first.
	ListRecent(ctx context.Context, learnerID int64, limit int) ([]entity.SessionSummary, error)
}

// SessionStore holds live sessions for the lifetime of the process.
type SessionStore interface {
	Put(session *entity.StudySession)
	Get(id string) (*entity.StudySession, error)
	Delete(id string)
	List() []*entity.StudySession
}

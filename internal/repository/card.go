package repository

import (
	"context"
	"time"

	"github.com/eslsoft/studydeck/internal/entity"
)

// CardSource supplies the ordered queue of due cards for a learner. What makes
// a card due is decided behind this boundary.
type CardSource interface {
	FetchDueCards(ctx context.Context, learnerID int64, limit int) ([]entity.Card, error)
}

// CardScheduler moves a card's next review after it has been answered.
type CardScheduler interface {
	Reschedule(ctx context.Context, learnerID, cardID int64, isCorrect bool, quality entity.Quality, at time.Time) error
}

// CardRepository is implemented by stores that both supply and reschedule cards.
type CardRepository interface {
	CardSource
	CardScheduler
}

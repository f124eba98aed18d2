package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/eslsoft/studydeck/internal/entity"
)

type fakeCardRepo struct {
	mu          sync.Mutex
	cards       map[int64][]entity.Card
	fetchErr    error
	fetchCalls  int
	lastLimit   int
	rescheduled []int64
	schedErr    error
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[int64][]entity.Card)}
}

func (r *fakeCardRepo) FetchDueCards(ctx context.Context, learnerID int64, limit int) ([]entity.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchCalls++
	r.lastLimit = limit
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	cards := r.cards[learnerID]
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return append([]entity.Card(nil), cards...), nil
}

func (r *fakeCardRepo) Reschedule(ctx context.Context, learnerID, cardID int64, isCorrect bool, quality entity.Quality, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schedErr != nil {
		return r.schedErr
	}
	r.rescheduled = append(r.rescheduled, cardID)
	return nil
}

type fakeAnswerRepo struct {
	mu        sync.Mutex
	items     []entity.AnswerHistory
	appendErr error
	listErr   error
}

func (r *fakeAnswerRepo) Append(ctx context.Context, sessionID string, learnerID int64, record entity.AnswerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.items = append(r.items, entity.AnswerHistory{AnswerRecord: record, SessionID: sessionID, LearnerID: learnerID})
	return nil
}

func (r *fakeAnswerRepo) ListSince(ctx context.Context, learnerID int64, since time.Time) ([]entity.AnswerHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []entity.AnswerHistory
	for _, item := range r.items {
		if item.LearnerID == learnerID && !item.RecordedAt.Before(since) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

type fakeSessionRepo struct {
	mu    sync.Mutex
	items map[string]entity.SessionSummary
	saves int
	err   error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{items: make(map[string]entity.SessionSummary)}
}

func (r *fakeSessionRepo) Save(ctx context.Context, summary entity.SessionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.err != nil {
		return r.err
	}
	r.items[summary.ID] = summary
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*entity.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return &item, nil
}

func (r *fakeSessionRepo) ListRecent(ctx context.Context, learnerID int64, limit int) ([]entity.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.SessionSummary
	for _, item := range r.items {
		if item.LearnerID == learnerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var errStorage = errors.New("storage unavailable")

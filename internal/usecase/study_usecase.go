package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/internal/repository"
)

const (
	defaultCardLimit    = 20
	maxCardLimit        = 100
	defaultHistoryLimit = 3
	maxHistoryLimit     = 50
)

// StudyOptions bounds the queue a learner can request.
type StudyOptions struct {
	DefaultCardLimit int
	MaxCardLimit     int
}

// StartedSession is returned when a session begins.
type StartedSession struct {
	SessionID string
	QueueSize int
	StartedAt time.Time
}

// CurrentCard is the card awaiting an answer and its position in the queue.
type CurrentCard struct {
	Card     entity.Card
	Position int
	Total    int
}

// AnswerResult carries the created record with the updated running totals.
type AnswerResult struct {
	Record   entity.AnswerRecord
	Stats    entity.SessionStats
	Progress entity.Progress
	Finished bool
}

// StudyUsecase drives study sessions on behalf of a service layer.
type StudyUsecase interface {
	StartSession(ctx context.Context, learnerID int64, limit int) (*StartedSession, error)
	CurrentCard(ctx context.Context, sessionID string) (*CurrentCard, error)
	SubmitAnswer(ctx context.Context, sessionID string, isCorrect bool, quality entity.Quality) (*AnswerResult, error)
	EndSession(ctx context.Context, sessionID string) (entity.SessionStats, error)
	Progress(ctx context.Context, sessionID string) (entity.Progress, error)
	ExpireIdle(ctx context.Context, idle time.Duration) (int, error)
	History(ctx context.Context, learnerID int64, limit int) ([]entity.SessionSummary, error)
}

// NewStudyUsecase wires the card source, persistence and live session store.
func NewStudyUsecase(
	cards repository.CardRepository,
	answers repository.AnswerRepository,
	sessions repository.SessionRepository,
	store repository.SessionStore,
	opts StudyOptions,
	logger logrus.FieldLogger,
) StudyUsecase {
	if opts.DefaultCardLimit <= 0 {
		opts.DefaultCardLimit = defaultCardLimit
	}
	if opts.MaxCardLimit <= 0 {
		opts.MaxCardLimit = maxCardLimit
	}
	if opts.DefaultCardLimit > opts.MaxCardLimit {
		opts.DefaultCardLimit = opts.MaxCardLimit
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &studyUsecase{
		cards:    cards,
		answers:  answers,
		sessions: sessions,
		store:    store,
		opts:     opts,
		logger:   logger,
		clock:    entity.SystemClock,
		newID:    uuid.NewString,
	}
}

type studyUsecase struct {
	cards    repository.CardRepository
	answers  repository.AnswerRepository
	sessions repository.SessionRepository
	store    repository.SessionStore
	opts     StudyOptions
	logger   logrus.FieldLogger
	clock    entity.Clock
	newID    func() string
}

func (u *studyUsecase) StartSession(ctx context.Context, learnerID int64, limit int) (*StartedSession, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	limit = u.clampLimit(limit)

	due, err := u.cards.FetchDueCards(ctx, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch due cards: %w", err)
	}
	if len(due) > limit {
		due = due[:limit]
	}

	session, err := entity.StartSession(u.newID(), learnerID, due, u.clock)
	if err != nil {
		return nil, err
	}
	u.store.Put(session)
	u.saveSummary(ctx, session)

	u.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"learner_id": learnerID,
		"queue_size": session.QueueSize(),
	}).Info("study session started")

	return &StartedSession{
		SessionID: session.ID,
		QueueSize: session.QueueSize(),
		StartedAt: session.StartedAt,
	}, nil
}

func (u *studyUsecase) CurrentCard(ctx context.Context, sessionID string) (*CurrentCard, error) {
	session, err := u.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	card, err := session.Current()
	if err != nil {
		return nil, err
	}
	progress := session.Progress()
	return &CurrentCard{Card: card, Position: progress.Answered + 1, Total: progress.Total}, nil
}

func (u *studyUsecase) SubmitAnswer(ctx context.Context, sessionID string, isCorrect bool, quality entity.Quality) (*AnswerResult, error) {
	session, err := u.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := session.Answer(isCorrect, quality)
	if err != nil {
		return nil, err
	}
	record := outcome.Record

	// The in-memory transition has already happened; storage failures below
	// are reported but never roll it back.
	log := u.logger.WithFields(logrus.Fields{"session_id": session.ID, "card_id": record.CardID})
	if err := u.answers.Append(ctx, session.ID, session.LearnerID, record); err != nil {
		log.WithError(err).Warn("persist answer failed")
	}
	if err := u.cards.Reschedule(ctx, session.LearnerID, record.CardID, record.IsCorrect, record.Quality, record.RecordedAt); err != nil {
		log.WithError(err).Warn("reschedule card failed")
	}

	result := &AnswerResult{
		Record:   record,
		Stats:    outcome.Stats,
		Progress: outcome.Progress,
		Finished: outcome.Finished,
	}
	if result.Finished {
		u.saveSummary(ctx, session)
		log.WithField("accuracy", result.Stats.AccuracyPercent).Info("study session completed")
	}
	return result, nil
}

func (u *studyUsecase) EndSession(ctx context.Context, sessionID string) (entity.SessionStats, error) {
	session, err := u.lookup(ctx, sessionID)
	if errors.Is(err, entity.ErrSessionNotFound) {
		// Evicted by the idle sweep; the stored summary still has the totals.
		summary, sErr := u.sessions.GetByID(ctx, strings.TrimSpace(sessionID))
		if sErr != nil {
			if errors.Is(sErr, entity.ErrSessionNotFound) {
				return entity.SessionStats{}, err
			}
			return entity.SessionStats{}, fmt.Errorf("load session summary: %w", sErr)
		}
		return summary.Stats(), nil
	}
	if err != nil {
		return entity.SessionStats{}, err
	}
	stats, ended := session.Finish()
	if ended {
		u.saveSummary(ctx, session)
		u.logger.WithFields(logrus.Fields{
			"session_id": session.ID,
			"answered":   stats.Total,
			"queue_size": session.QueueSize(),
		}).Info("study session ended early")
	}
	return stats, nil
}

func (u *studyUsecase) Progress(ctx context.Context, sessionID string) (entity.Progress, error) {
	session, err := u.lookup(ctx, sessionID)
	if err != nil {
		return entity.Progress{}, err
	}
	return session.Progress(), nil
}

// ExpireIdle ends active sessions without activity for idle and evicts
// finished sessions that ended more than idle ago. It returns how many
// sessions it ended.
func (u *studyUsecase) ExpireIdle(ctx context.Context, idle time.Duration) (int, error) {
	if idle <= 0 {
		return 0, nil
	}
	now := u.clock()
	ended := 0
	for _, session := range u.store.List() {
		if err := ctx.Err(); err != nil {
			return ended, err
		}
		switch session.Status() {
		case entity.SessionActive:
			if now.Sub(session.LastActivity()) < idle {
				continue
			}
			if _, ok := session.Finish(); !ok {
				continue
			}
			u.saveSummary(ctx, session)
			ended++
		case entity.SessionFinished:
			if at := session.EndedAt(); at != nil && now.Sub(*at) >= idle {
				u.store.Delete(session.ID)
			}
		}
	}
	if ended > 0 {
		u.logger.WithField("count", ended).Info("expired idle study sessions")
	}
	return ended, nil
}

// History returns the learner's most recent session summaries, newest first.
func (u *studyUsecase) History(ctx context.Context, learnerID int64, limit int) ([]entity.SessionSummary, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	summaries, err := u.sessions.ListRecent(ctx, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return summaries, nil
}

func (u *studyUsecase) lookup(ctx context.Context, sessionID string) (*entity.StudySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, entity.ErrInvalidSessionID
	}
	return u.store.Get(sessionID)
}

func (u *studyUsecase) clampLimit(limit int) int {
	if limit <= 0 {
		return u.opts.DefaultCardLimit
	}
	if limit > u.opts.MaxCardLimit {
		return u.opts.MaxCardLimit
	}
	return limit
}

func (u *studyUsecase) saveSummary(ctx context.Context, session *entity.StudySession) {
	if err := u.sessions.Save(ctx, session.Summary()); err != nil {
		u.logger.WithError(err).WithField("session_id", session.ID).Warn("persist session summary failed")
	}
}

package entity

import (
	"strings"
	"sync"
	"time"
)

// SessionStatus is the externally observable lifecycle state of a session.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

// Progress reports how far through its queue a session is.
type Progress struct {
	Answered int
	Total    int
	Percent  int
}

// StudySession sequences a fixed queue of due cards and records one answer per
// card. The queue never changes after start and the answer log always has
// exactly cursor entries. All methods are safe for concurrent use; mutations
// are serialized per session.
type StudySession struct {
	ID        string
	LearnerID int64
	StartedAt time.Time

	mu           sync.RWMutex
	clock        Clock
	queue        []Card
	cursor       int
	answers      []AnswerRecord
	endedAt      *time.Time
	lastActivity time.Time
}

// StartSession creates an active session over dueCards.
func StartSession(id string, learnerID int64, dueCards []Card, clock Clock) (*StudySession, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidSessionID
	}
	if learnerID <= 0 {
		return nil, ErrInvalidLearnerID
	}
	if len(dueCards) == 0 {
		return nil, ErrEmptyQueue
	}
	if clock == nil {
		clock = SystemClock
	}

	now := clock()
	return &StudySession{
		ID:           id,
		LearnerID:    learnerID,
		StartedAt:    now,
		clock:        clock,
		queue:        append([]Card(nil), dueCards...),
		answers:      make([]AnswerRecord, 0, len(dueCards)),
		lastActivity: now,
	}, nil
}

// Current returns the card awaiting an answer.
func (s *StudySession) Current() (Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.finishedLocked() {
		return Card{}, ErrSessionFinished
	}
	return s.queue[s.cursor], nil
}

// AnswerOutcome is the state of a session right after one answer, read under
// the same lock that recorded it.
type AnswerOutcome struct {
	Record   AnswerRecord
	Stats    SessionStats
	Progress Progress
	// Finished is set only on the answer that exhausted the queue.
	Finished bool
}

// RecordAnswer grades the current card and advances to the next one. Nothing
// changes when validation fails. The response time is the think time spent on
// this card alone, measured from the previous answer (or from the start).
func (s *StudySession) RecordAnswer(isCorrect bool, quality Quality) (AnswerRecord, error) {
	outcome, err := s.Answer(isCorrect, quality)
	return outcome.Record, err
}

// Answer is RecordAnswer returning the running totals as of this answer.
func (s *StudySession) Answer(isCorrect bool, quality Quality) (AnswerOutcome, error) {
	if err := ValidateAnswer(isCorrect, quality); err != nil {
		return AnswerOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finishedLocked() {
		return AnswerOutcome{}, ErrSessionFinished
	}

	now := s.clock()
	record := AnswerRecord{
		CardID:              s.queue[s.cursor].ID,
		IsCorrect:           isCorrect,
		Quality:             quality,
		ResponseTimeSeconds: ElapsedSeconds(s.lastActivity, now),
		RecordedAt:          now,
	}
	s.answers = append(s.answers, record)
	s.cursor++
	s.lastActivity = now

	finished := s.cursor == len(s.queue)
	if finished {
		ended := now
		s.endedAt = &ended
	}
	return AnswerOutcome{
		Record:   record,
		Stats:    ComputeStats(s.answers),
		Progress: s.progressLocked(),
		Finished: finished,
	}, nil
}

// End finalizes the session and returns its stats. Later calls return the
// same stats and leave EndedAt untouched.
func (s *StudySession) End() SessionStats {
	stats, _ := s.Finish()
	return stats
}

// Finish is End that also reports whether this call ended the session. It is
// false once the session has finished, by an earlier End or by answering the
// last card.
func (s *StudySession) Finish() (SessionStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ended := s.endedAt == nil
	if ended {
		now := s.clock()
		s.endedAt = &now
	}
	return ComputeStats(s.answers), ended
}

// Stats returns the running totals over the answers recorded so far.
func (s *StudySession) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.answers)
}

// Progress returns the cursor position against the queue length.
func (s *StudySession) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

func (s *StudySession) progressLocked() Progress {
	total := len(s.queue)
	return Progress{
		Answered: s.cursor,
		Total:    total,
		Percent:  Percent(s.cursor, total),
	}
}

// Answers returns a copy of the answer log.
func (s *StudySession) Answers() []AnswerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AnswerRecord(nil), s.answers...)
}

// QueueSize is the number of cards fixed at start.
func (s *StudySession) QueueSize() int {
	return len(s.queue)
}

// Status reports whether the session still accepts answers.
func (s *StudySession) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.finishedLocked() {
		return SessionFinished
	}
	return SessionActive
}

// EndedAt returns when the session finished, or nil while active.
func (s *StudySession) EndedAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.endedAt == nil {
		return nil
	}
	ended := *s.endedAt
	return &ended
}

// LastActivity is the start time or the time of the latest answer.
func (s *StudySession) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Elapsed is the cumulative session time at now, frozen once the session ends.
func (s *StudySession) Elapsed(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.endedAt != nil {
		now = *s.endedAt
	}
	if d := now.Sub(s.StartedAt); d > 0 {
		return d
	}
	return 0
}

// Duration is the length of a finished session, zero while active.
func (s *StudySession) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.endedAt == nil {
		return 0
	}
	return s.endedAt.Sub(s.StartedAt)
}

// Summary snapshots the persisted view of the session.
func (s *StudySession) Summary() SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := ComputeStats(s.answers)
	summary := SessionSummary{
		ID:             s.ID,
		LearnerID:      s.LearnerID,
		StartedAt:      s.StartedAt,
		QueueSize:      len(s.queue),
		TotalCards:     stats.Total,
		CorrectAnswers: stats.Correct,
	}
	if s.endedAt != nil {
		ended := *s.endedAt
		summary.EndedAt = &ended
	}
	return summary
}

func (s *StudySession) finishedLocked() bool {
	return s.endedAt != nil || s.cursor >= len(s.queue)
}

// SessionSummary is the row kept per session by the session repository.
type SessionSummary struct {
	ID             string
	LearnerID      int64
	StartedAt      time.Time
	EndedAt        *time.Time
	QueueSize      int
	TotalCards     int
	CorrectAnswers int
}

// AccuracyPercent mirrors SessionStats.AccuracyPercent for stored summaries.
func (s SessionSummary) AccuracyPercent() int {
	return Percent(s.CorrectAnswers, s.TotalCards)
}

// Stats rebuilds the final totals of a stored session.
func (s SessionSummary) Stats() SessionStats {
	return SessionStats{
		Total:           s.TotalCards,
		Correct:         s.CorrectAnswers,
		Incorrect:       s.TotalCards - s.CorrectAnswers,
		AccuracyPercent: s.AccuracyPercent(),
	}
}

// Duration is ended minus started, zero for a session that never ended.
func (s SessionSummary) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	if d := s.EndedAt.Sub(s.StartedAt); d > 0 {
		return d
	}
	return 0
}

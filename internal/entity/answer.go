package entity

import (
	"fmt"
	"time"
)

// Quality is the learner's self-assessed recall grade for an answered card.
// The scale deliberately skips 2: the four rating buttons map to 1, 3, 4 and 5.
type Quality int

const (
	QualityFailed Quality = 1 // "Errei"
	QualityHard   Quality = 3 // "Difícil"
	QualityGood   Quality = 4 // "Bom"
	QualityEasy   Quality = 5 // "Fácil"
)

var validQualities = map[Quality]struct{}{
	QualityFailed: {},
	QualityHard:   {},
	QualityGood:   {},
	QualityEasy:   {},
}

// Qualities lists the accepted ratings in ascending order.
func Qualities() []Quality {
	return []Quality{QualityFailed, QualityHard, QualityGood, QualityEasy}
}

// Valid reports whether q is one of the four accepted ratings.
func (q Quality) Valid() bool {
	_, ok := validQualities[q]
	return ok
}

// Correct reports the correctness implied by the rating.
func (q Quality) Correct() bool {
	return q != QualityFailed
}

func (q Quality) String() string {
	switch q {
	case QualityFailed:
		return "failed"
	case QualityHard:
		return "hard"
	case QualityGood:
		return "good"
	case QualityEasy:
		return "easy"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// ValidateAnswer checks a rating and its correctness flag together.
func ValidateAnswer(isCorrect bool, quality Quality) error {
	if !quality.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}
	if quality.Correct() != isCorrect {
		return fmt.Errorf("%w: quality %d with is_correct=%t", ErrInconsistentAnswer, int(quality), isCorrect)
	}
	return nil
}

// AnswerRecord is created exactly once per answered card and never modified.
type AnswerRecord struct {
	CardID              int64
	IsCorrect           bool
	Quality             Quality
	ResponseTimeSeconds int
	RecordedAt          time.Time
}

// AnswerHistory is a persisted answer joined with the card attributes the
// analytics need.
type AnswerHistory struct {
	AnswerRecord
	SessionID    string
	LearnerID    int64
	CategoryName string
	Difficulty   Difficulty
}

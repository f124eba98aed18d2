package repository

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/eslsoft/studydeck/internal/entity"
)

// cardRow is the due-card projection shared by both SQL dialects.
type cardRow struct {
	ID           int64   `db:"id"`
	Question     string  `db:"question"`
	Answer       string  `db:"answer"`
	CategoryID   *int64  `db:"category_id"`
	CategoryName *string `db:"category_name"`
	Difficulty   string  `db:"difficulty"`
	Tags         string  `db:"tags"`
}

func (r cardRow) toEntity() entity.Card {
	card := entity.Card{
		ID:         r.ID,
		Question:   r.Question,
		Answer:     r.Answer,
		Difficulty: entity.ParseDifficulty(r.Difficulty),
		Tags:       decodeTags(r.Tags),
	}
	if r.CategoryID != nil {
		card.CategoryID = *r.CategoryID
	}
	if r.CategoryName != nil {
		card.CategoryName = *r.CategoryName
	}
	return card
}

// Malformed tag payloads degrade to no tags rather than failing the queue.
func decodeTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}

type scheduleRow struct {
	ReviewCount int       `db:"review_count"`
	EaseFactor  float64   `db:"ease_factor"`
	NextReview  time.Time `db:"next_review"`
}

func (r scheduleRow) toEntity() entity.Schedule {
	return entity.Schedule{ReviewCount: r.ReviewCount, EaseFactor: r.EaseFactor, NextReview: r.NextReview}
}

type historyRow struct {
	SessionID    string    `db:"session_id"`
	LearnerID    int64     `db:"learner_id"`
	CardID       int64     `db:"card_id"`
	IsCorrect    bool      `db:"is_correct"`
	Quality      int       `db:"quality"`
	ResponseTime int       `db:"response_time"`
	ReviewedAt   time.Time `db:"reviewed_at"`
	CategoryName string    `db:"category_name"`
	Difficulty   string    `db:"difficulty"`
}

func (r historyRow) toEntity() entity.AnswerHistory {
	return entity.AnswerHistory{
		AnswerRecord: entity.AnswerRecord{
			CardID:              r.CardID,
			IsCorrect:           r.IsCorrect,
			Quality:             entity.Quality(r.Quality),
			ResponseTimeSeconds: r.ResponseTime,
			RecordedAt:          r.ReviewedAt,
		},
		SessionID:    r.SessionID,
		LearnerID:    r.LearnerID,
		CategoryName: r.CategoryName,
		Difficulty:   entity.ParseDifficulty(r.Difficulty),
	}
}

type sessionRow struct {
	ID             string     `db:"id"`
	LearnerID      int64      `db:"learner_id"`
	StartedAt      time.Time  `db:"started_at"`
	EndedAt        *time.Time `db:"ended_at"`
	QueueSize      int        `db:"queue_size"`
	TotalCards     int        `db:"total_cards"`
	CorrectAnswers int        `db:"correct_answers"`
}

func (r sessionRow) toEntity() *entity.SessionSummary {
	return &entity.SessionSummary{
		ID:             r.ID,
		LearnerID:      r.LearnerID,
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
		QueueSize:      r.QueueSize,
		TotalCards:     r.TotalCards,
		CorrectAnswers: r.CorrectAnswers,
	}
}

func summariesFromRows(items []sessionRow) []entity.SessionSummary {
	out := make([]entity.SessionSummary, len(items))
	for i, item := range items {
		out[i] = *item.toEntity()
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

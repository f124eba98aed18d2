// Package studydeckv1 holds the JSON messages exchanged by the studydeck.v1
// services.
package studydeckv1

import "time"

type StartSessionRequest struct {
	LearnerID int64 `json:"learner_id"`
	CardLimit int   `json:"card_limit,omitempty"`
}

type StartSessionResponse struct {
	SessionID string    `json:"session_id"`
	QueueSize int       `json:"queue_size"`
	StartedAt time.Time `json:"started_at"`
}

type SessionRequest struct {
	SessionID string `json:"session_id"`
}

type Card struct {
	ID           int64    `json:"id"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	CategoryID   int64    `json:"category_id,omitempty"`
	CategoryName string   `json:"category_name,omitempty"`
	Difficulty   string   `json:"difficulty"`
	Tags         []string `json:"tags,omitempty"`
}

type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// CurrentCardResponse carries either the next card or Finished set to true.
type CurrentCardResponse struct {
	Finished bool      `json:"finished"`
	Card     *Card     `json:"card,omitempty"`
	Position int       `json:"position,omitempty"`
	Progress *Progress `json:"progress,omitempty"`
}

type SubmitAnswerRequest struct {
	SessionID string `json:"session_id"`
	IsCorrect bool   `json:"is_correct"`
	Quality   int    `json:"quality"`
}

type SessionStats struct {
	Total           int `json:"total"`
	Correct         int `json:"correct"`
	Incorrect       int `json:"incorrect"`
	AccuracyPercent int `json:"accuracy_percent"`
}

type AnswerRecord struct {
	CardID              int64     `json:"card_id"`
	IsCorrect           bool      `json:"is_correct"`
	Quality             int       `json:"quality"`
	ResponseTimeSeconds int       `json:"response_time_seconds"`
	RecordedAt          time.Time `json:"recorded_at"`
}

type SubmitAnswerResponse struct {
	Record   AnswerRecord `json:"record"`
	Stats    SessionStats `json:"stats"`
	Progress Progress     `json:"progress"`
	Finished bool         `json:"finished"`
}

type EndSessionResponse struct {
	Stats SessionStats `json:"stats"`
}

type ListSessionsRequest struct {
	LearnerID int64 `json:"learner_id"`
	Limit     int   `json:"limit,omitempty"`
}

// SessionSummary is a stored session. DurationMinutes is rounded to one
// decimal and is zero while the session is still open.
type SessionSummary struct {
	SessionID       string     `json:"session_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	QueueSize       int        `json:"queue_size"`
	TotalCards      int        `json:"total_cards"`
	CorrectAnswers  int        `json:"correct_answers"`
	AccuracyPercent int        `json:"accuracy_percent"`
	DurationMinutes float64    `json:"duration_minutes"`
}

type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

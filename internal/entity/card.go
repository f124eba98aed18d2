package entity

import (
	"math"
	"strings"
	"time"
)

// Difficulty is the author-assigned difficulty of a card.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps free text to a difficulty, defaulting to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Card is owned by the card source; the study engine only reads it.
type Card struct {
	ID           int64
	Question     string
	Answer       string
	CategoryID   int64
	CategoryName string
	Difficulty   Difficulty
	Tags         []string
}

// Schedule holds the spaced repetition state the card source keeps per card.
type Schedule struct {
	ReviewCount int
	EaseFactor  float64
	NextReview  time.Time
}

const (
	defaultEase   = 2.5
	minEase       = 1.3
	relearnPeriod = 15 * time.Minute
	day           = 24 * time.Hour
)

// NewSchedule returns the schedule of a card that has never been reviewed.
func NewSchedule(now time.Time) Schedule {
	return Schedule{EaseFactor: defaultEase, NextReview: now}
}

// Next computes the schedule after one review. A miss resets the review count
// and brings the card back within minutes; a hit grows the interval from one
// day to six and then by review count times ease.
func (s Schedule) Next(isCorrect bool, quality Quality, now time.Time) Schedule {
	next := s
	if next.EaseFactor <= 0 {
		next.EaseFactor = defaultEase
	}

	if !isCorrect {
		next.ReviewCount = 0
		next.EaseFactor = math.Max(minEase, next.EaseFactor-0.2)
		next.NextReview = now.Add(relearnPeriod)
		return next
	}

	next.ReviewCount++
	var intervalDays float64
	switch next.ReviewCount {
	case 1:
		intervalDays = 1
	case 2:
		intervalDays = 6
	default:
		q := float64(QualityEasy - quality)
		next.EaseFactor = math.Max(minEase, next.EaseFactor+0.1-q*(0.08+q*0.02))
		intervalDays = float64(next.ReviewCount) * next.EaseFactor
	}
	next.NextReview = now.Add(time.Duration(intervalDays * float64(day)))
	return next
}

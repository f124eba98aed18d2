package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/internal/repository"
	"github.com/eslsoft/studydeck/pkg/analytics"
	"github.com/eslsoft/studydeck/pkg/filterexpr"
)

const (
	defaultWindowDays = 30
	maxWindowDays     = 365
)

// answerFilterSchema lists the fields a report filter may reference.
var answerFilterSchema = filterexpr.Schema{
	"category":      filterexpr.KindString,
	"difficulty":    filterexpr.KindString,
	"card_id":       filterexpr.KindInt,
	"quality":       filterexpr.KindInt,
	"is_correct":    filterexpr.KindBool,
	"response_time": filterexpr.KindInt,
	"recorded_at":   filterexpr.KindTimestamp,
}

// ReportOptions configures report windows.
type ReportOptions struct {
	DefaultWindowDays int
	Location          *time.Location
}

// ReportQuery selects the learner, the trailing window and an optional CEL filter.
type ReportQuery struct {
	LearnerID  int64
	WindowDays int
	Filter     string
}

// PerformanceReport is the aggregated feedback over a window of answers.
type PerformanceReport struct {
	LearnerID     int64
	WindowDays    int
	Since         time.Time
	TotalReviews  int
	Accuracy      int
	Categories    []analytics.CategoryAccuracy
	Daily         []analytics.DailyAccuracy
	Trend         analytics.TrendDirection
	Insights      analytics.Insights
	Tip           analytics.Tip
	ResponseTimes analytics.ResponseTimeStats
}

// ReportUsecase builds performance reports from answer history.
type ReportUsecase interface {
	PerformanceReport(ctx context.Context, query ReportQuery) (*PerformanceReport, error)
}

// NewReportUsecase wires the answer history source.
func NewReportUsecase(answers repository.AnswerRepository, opts ReportOptions) ReportUsecase {
	if opts.DefaultWindowDays <= 0 {
		opts.DefaultWindowDays = defaultWindowDays
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &reportUsecase{
		answers: answers,
		opts:    opts,
		clock:   entity.SystemClock,
	}
}

type reportUsecase struct {
	answers repository.AnswerRepository
	opts    ReportOptions
	clock   entity.Clock
}

func (u *reportUsecase) PerformanceReport(ctx context.Context, query ReportQuery) (*PerformanceReport, error) {
	if query.LearnerID <= 0 {
		return nil, entity.ErrInvalidLearnerID
	}
	predicate, err := filterexpr.Compile(query.Filter, answerFilterSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}

	window := u.windowDays(query.WindowDays)
	since := u.windowStart(window)

	history, err := u.answers.ListSince(ctx, query.LearnerID, since)
	if err != nil {
		return nil, fmt.Errorf("fetch answer history: %w", err)
	}

	history, err = filterHistory(history, predicate)
	if err != nil {
		return nil, err
	}

	records := lo.Map(history, func(h entity.AnswerHistory, _ int) entity.AnswerRecord { return h.AnswerRecord })
	categoryOf := categoryLookup(history)

	total, accuracy := analytics.Overall(records)
	categories := analytics.CategoryBreakdown(records, categoryOf)
	daily := analytics.DailyRollup(records, u.opts.Location)

	return &PerformanceReport{
		LearnerID:     query.LearnerID,
		WindowDays:    window,
		Since:         since,
		TotalReviews:  total,
		Accuracy:      accuracy,
		Categories:    categories,
		Daily:         daily,
		Trend:         analytics.Trend(daily),
		Insights:      analytics.CategoryInsights(categories),
		Tip:           analytics.StudyTip(float64(accuracy)),
		ResponseTimes: analytics.ResponseTimes(records),
	}, nil
}

func (u *reportUsecase) windowDays(days int) int {
	switch {
	case days <= 0:
		return u.opts.DefaultWindowDays
	case days > maxWindowDays:
		return maxWindowDays
	default:
		return days
	}
}

// windowStart is local midnight of the first day in a window ending today.
func (u *reportUsecase) windowStart(days int) time.Time {
	now := u.clock().In(u.opts.Location)
	first := now.AddDate(0, 0, -(days - 1))
	return time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, u.opts.Location)
}

func filterHistory(history []entity.AnswerHistory, predicate *filterexpr.Predicate) ([]entity.AnswerHistory, error) {
	if predicate == nil {
		return history, nil
	}
	out := make([]entity.AnswerHistory, 0, len(history))
	for _, h := range history {
		ok, err := predicate.Match(map[string]any{
			"category":      h.CategoryName,
			"difficulty":    string(h.Difficulty),
			"card_id":       h.CardID,
			"quality":       int64(h.Quality),
			"is_correct":    h.IsCorrect,
			"response_time": int64(h.ResponseTimeSeconds),
			"recorded_at":   h.RecordedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
		}
		if ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// categoryLookup maps card IDs to category names. A card keeps the category
// of its latest answer if it moved between categories inside the window.
func categoryLookup(history []entity.AnswerHistory) func(int64) string {
	names := make(map[int64]string, len(history))
	for _, h := range history {
		names[h.CardID] = h.CategoryName
	}
	return func(cardID int64) string { return names[cardID] }
}

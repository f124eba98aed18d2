package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/pkg/analytics"
)

func history(learnerID, cardID int64, category string, correct bool, at time.Time) entity.AnswerHistory {
	quality := entity.QualityGood
	if !correct {
		quality = entity.QualityFailed
	}
	return entity.AnswerHistory{
		AnswerRecord: entity.AnswerRecord{
			CardID:              cardID,
			IsCorrect:           correct,
			Quality:             quality,
			ResponseTimeSeconds: int(cardID) * 2,
			RecordedAt:          at,
		},
		SessionID:    "s1",
		LearnerID:    learnerID,
		CategoryName: category,
		Difficulty:   entity.DifficultyMedium,
	}
}

func newReportFixture(now time.Time, items ...entity.AnswerHistory) (ReportUsecase, *fakeAnswerRepo) {
	repo := &fakeAnswerRepo{items: items}
	uc := NewReportUsecase(repo, ReportOptions{})
	uc.(*reportUsecase).clock = func() time.Time { return now }
	return uc, repo
}

func TestPerformanceReport(t *testing.T) {
	now := time.Date(2025, 4, 10, 18, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return now.AddDate(0, 0, -n) }

	uc, _ := newReportFixture(now,
		history(7, 1, "Cardio", true, day(2)),
		history(7, 2, "Cardio", true, day(2)),
		history(7, 3, "Derma", false, day(1)),
		history(7, 4, "Derma", true, day(1)),
		history(7, 5, "", false, day(0)),
		history(8, 1, "Cardio", false, day(0)),
		history(7, 6, "Cardio", false, day(45)),
	)

	report, err := uc.PerformanceReport(context.Background(), ReportQuery{LearnerID: 7})
	if err != nil {
		t.Fatalf("PerformanceReport: %v", err)
	}
	if report.WindowDays != 30 {
		t.Fatalf("expected default window 30, got %d", report.WindowDays)
	}
	if want := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC); !report.Since.Equal(want) {
		t.Fatalf("since = %s, want %s", report.Since, want)
	}
	if report.TotalReviews != 5 || report.Accuracy != 60 {
		t.Fatalf("unexpected totals %d/%d", report.TotalReviews, report.Accuracy)
	}

	want := []analytics.CategoryAccuracy{
		{CategoryName: "Cardio", Correct: 2, Total: 2, Accuracy: 100},
		{CategoryName: "Derma", Correct: 1, Total: 2, Accuracy: 50},
		{CategoryName: analytics.UncategorizedName, Correct: 0, Total: 1, Accuracy: 0},
	}
	if len(report.Categories) != len(want) {
		t.Fatalf("categories = %+v", report.Categories)
	}
	for i := range want {
		if report.Categories[i] != want[i] {
			t.Fatalf("category %d = %+v, want %+v", i, report.Categories[i], want[i])
		}
	}

	if len(report.Daily) != 3 {
		t.Fatalf("expected 3 daily buckets, got %d", len(report.Daily))
	}
	if report.Trend != analytics.TrendInsufficientData {
		t.Fatalf("expected insufficient data trend, got %s", report.Trend)
	}
	if len(report.Insights.Strengths) != 1 || report.Insights.Strengths[0] != "Cardio" {
		t.Fatalf("unexpected strengths %v", report.Insights.Strengths)
	}
	if len(report.Insights.Weaknesses) != 2 {
		t.Fatalf("unexpected weaknesses %v", report.Insights.Weaknesses)
	}
	if report.Tip != analytics.TipGood {
		t.Fatalf("expected good tip at 60%%, got %s", report.Tip)
	}
	if report.ResponseTimes.Fastest != 2 || report.ResponseTimes.Slowest != 10 {
		t.Fatalf("unexpected response times %+v", report.ResponseTimes)
	}
}

func TestPerformanceReportFilter(t *testing.T) {
	now := time.Date(2025, 4, 10, 18, 0, 0, 0, time.UTC)
	uc, _ := newReportFixture(now,
		history(7, 1, "Cardio", true, now),
		history(7, 2, "Derma", false, now),
		history(7, 3, "Derma", true, now),
	)

	report, err := uc.PerformanceReport(context.Background(), ReportQuery{
		LearnerID: 7,
		Filter:    `category == "Derma"`,
	})
	if err != nil {
		t.Fatalf("PerformanceReport: %v", err)
	}
	if report.TotalReviews != 2 || report.Accuracy != 50 {
		t.Fatalf("filter not applied: %d/%d", report.TotalReviews, report.Accuracy)
	}
	if len(report.Categories) != 1 || report.Categories[0].CategoryName != "Derma" {
		t.Fatalf("unexpected categories %+v", report.Categories)
	}
}

func TestPerformanceReportInvalidFilter(t *testing.T) {
	uc, _ := newReportFixture(time.Now())
	cases := []string{`unknown_field == 1`, `quality + 1`, `category ==`}
	for _, expr := range cases {
		_, err := uc.PerformanceReport(context.Background(), ReportQuery{LearnerID: 7, Filter: expr})
		if !errors.Is(err, entity.ErrInvalidFilter) {
			t.Fatalf("%q: expected ErrInvalidFilter, got %v", expr, err)
		}
	}
}

func TestPerformanceReportEmptyWindow(t *testing.T) {
	uc, _ := newReportFixture(time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC))
	report, err := uc.PerformanceReport(context.Background(), ReportQuery{LearnerID: 7, WindowDays: 1000})
	if err != nil {
		t.Fatalf("PerformanceReport: %v", err)
	}
	if report.WindowDays != 365 {
		t.Fatalf("expected window clamped to 365, got %d", report.WindowDays)
	}
	if report.TotalReviews != 0 || report.Accuracy != 0 || len(report.Categories) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if report.Tip != analytics.TipNeedsFocus {
		t.Fatalf("expected needs_focus tip, got %s", report.Tip)
	}
}

func TestPerformanceReportErrors(t *testing.T) {
	uc, repo := newReportFixture(time.Now())
	if _, err := uc.PerformanceReport(context.Background(), ReportQuery{}); !errors.Is(err, entity.ErrInvalidLearnerID) {
		t.Fatalf("expected ErrInvalidLearnerID, got %v", err)
	}
	repo.listErr = errStorage
	if _, err := uc.PerformanceReport(context.Background(), ReportQuery{LearnerID: 7}); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
}

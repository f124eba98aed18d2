package mapping

import (
	"math"

	"github.com/samber/lo"

	"github.com/eslsoft/studydeck/internal/entity"
	"github.com/eslsoft/studydeck/internal/usecase"
	"github.com/eslsoft/studydeck/pkg/analytics"
	studydeckv1 "github.com/eslsoft/studydeck/pkg/api/studydeck/v1"
)

func ToAPICard(c entity.Card) *studydeckv1.Card {
	return &studydeckv1.Card{
		ID:           c.ID,
		Question:     c.Question,
		Answer:       c.Answer,
		CategoryID:   c.CategoryID,
		CategoryName: c.CategoryName,
		Difficulty:   string(c.Difficulty),
		Tags:         c.Tags,
	}
}

func ToAPIProgress(p entity.Progress) studydeckv1.Progress {
	return studydeckv1.Progress{Answered: p.Answered, Total: p.Total, Percent: p.Percent}
}

func ToAPIStats(s entity.SessionStats) studydeckv1.SessionStats {
	return studydeckv1.SessionStats{
		Total:           s.Total,
		Correct:         s.Correct,
		Incorrect:       s.Incorrect,
		AccuracyPercent: s.AccuracyPercent,
	}
}

func ToAPIAnswerRecord(r entity.AnswerRecord) studydeckv1.AnswerRecord {
	return studydeckv1.AnswerRecord{
		CardID:              r.CardID,
		IsCorrect:           r.IsCorrect,
		Quality:             int(r.Quality),
		ResponseTimeSeconds: r.ResponseTimeSeconds,
		RecordedAt:          r.RecordedAt,
	}
}

func ToAPICurrentCard(c *usecase.CurrentCard) *studydeckv1.CurrentCardResponse {
	progress := studydeckv1.Progress{
		Answered: c.Position - 1,
		Total:    c.Total,
		Percent:  entity.Percent(c.Position-1, c.Total),
	}
	return &studydeckv1.CurrentCardResponse{
		Card:     ToAPICard(c.Card),
		Position: c.Position,
		Progress: &progress,
	}
}

func ToAPIAnswerResult(r *usecase.AnswerResult) *studydeckv1.SubmitAnswerResponse {
	return &studydeckv1.SubmitAnswerResponse{
		Record:   ToAPIAnswerRecord(r.Record),
		Stats:    ToAPIStats(r.Stats),
		Progress: ToAPIProgress(r.Progress),
		Finished: r.Finished,
	}
}

func ToAPISessionSummary(s entity.SessionSummary) studydeckv1.SessionSummary {
	return studydeckv1.SessionSummary{
		SessionID:       s.ID,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		QueueSize:       s.QueueSize,
		TotalCards:      s.TotalCards,
		CorrectAnswers:  s.CorrectAnswers,
		AccuracyPercent: s.AccuracyPercent(),
		DurationMinutes: math.Round(s.Duration().Minutes()*10) / 10,
	}
}

func ToAPISessionSummaries(items []entity.SessionSummary) []studydeckv1.SessionSummary {
	return lo.Map(items, func(s entity.SessionSummary, _ int) studydeckv1.SessionSummary {
		return ToAPISessionSummary(s)
	})
}

var tipMessages = map[analytics.Tip]string{
	analytics.TipExcellent:  "Excellent work! Keep reviewing to hold on to what you know.",
	analytics.TipGood:       "Good progress. Spend extra time on your weaker categories.",
	analytics.TipNeedsFocus: "Slow down and review the basics; short daily sessions help most.",
}

// TipMessage renders the display text for a study tip.
func TipMessage(tip analytics.Tip) string {
	return tipMessages[tip]
}

func ToAPIPerformance(r *usecase.PerformanceReport) *studydeckv1.GetPerformanceResponse {
	return &studydeckv1.GetPerformanceResponse{
		LearnerID:    r.LearnerID,
		WindowDays:   r.WindowDays,
		Since:        r.Since,
		TotalReviews: r.TotalReviews,
		Accuracy:     r.Accuracy,
		Categories: lo.Map(r.Categories, func(c analytics.CategoryAccuracy, _ int) studydeckv1.CategoryAccuracy {
			return studydeckv1.CategoryAccuracy{
				CategoryName: c.CategoryName,
				Correct:      c.Correct,
				Total:        c.Total,
				Accuracy:     c.Accuracy,
			}
		}),
		Daily: lo.Map(r.Daily, func(d analytics.DailyAccuracy, _ int) studydeckv1.DailyAccuracy {
			return studydeckv1.DailyAccuracy{
				Date:       d.Date.Format("2006-01-02"),
				TotalCards: d.TotalCards,
				Correct:    d.Correct,
				Accuracy:   d.Accuracy,
			}
		}),
		Trend:      string(r.Trend),
		Strengths:  r.Insights.Strengths,
		Weaknesses: r.Insights.Weaknesses,
		Tip:        string(r.Tip),
		TipMessage: TipMessage(r.Tip),
		ResponseTimes: studydeckv1.ResponseTimes{
			Average: r.ResponseTimes.Average,
			Median:  r.ResponseTimes.Median,
			Fastest: r.ResponseTimes.Fastest,
			Slowest: r.ResponseTimes.Slowest,
		},
	}
}

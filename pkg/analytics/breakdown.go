package analytics

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/studydeck/internal/entity"
)

// UncategorizedName labels records whose card has no known category.
const UncategorizedName = "Uncategorized"

// CategoryAccuracy is the per-category slice of a performance window.
type CategoryAccuracy struct {
	CategoryName string
	Correct      int
	Total        int
	Accuracy     int
}

// CategoryBreakdown groups records by category in first-seen order.
func CategoryBreakdown(records []entity.AnswerRecord, categoryOf func(cardID int64) string) []CategoryAccuracy {
	if len(records) == 0 {
		return []CategoryAccuracy{}
	}

	index := make(map[string]int)
	groups := make([]CategoryAccuracy, 0)
	for _, r := range records {
		name := ""
		if categoryOf != nil {
			name = categoryOf(r.CardID)
		}
		if name == "" {
			name = UncategorizedName
		}

		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CategoryAccuracy{CategoryName: name})
		}
		groups[i].Total++
		if r.IsCorrect {
			groups[i].Correct++
		}
	}

	for i := range groups {
		groups[i].Accuracy = entity.Percent(groups[i].Correct, groups[i].Total)
	}
	return groups
}

// DailyRollup aggregates records into one entry per calendar day in loc,
// ascending by date. Accuracy is a percentage rounded to an integer.
func DailyRollup(records []entity.AnswerRecord, loc *time.Location) []DailyAccuracy {
	if loc == nil {
		loc = time.UTC
	}
	byDay := lo.GroupBy(records, func(r entity.AnswerRecord) time.Time {
		t := r.RecordedAt.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	})

	days := make([]DailyAccuracy, 0, len(byDay))
	for date, rs := range byDay {
		correct := len(lo.Filter(rs, func(r entity.AnswerRecord, _ int) bool { return r.IsCorrect }))
		days = append(days, DailyAccuracy{
			Date:       date,
			TotalCards: len(rs),
			Correct:    correct,
			Accuracy:   float64(entity.Percent(correct, len(rs))),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// Overall returns the number of records and their rounded accuracy.
func Overall(records []entity.AnswerRecord) (total, accuracy int) {
	correct := len(lo.Filter(records, func(r entity.AnswerRecord, _ int) bool { return r.IsCorrect }))
	return len(records), entity.Percent(correct, len(records))
}

// ResponseTimeStats summarises per-card think time in seconds.
type ResponseTimeStats struct {
	Average float64
	Median  float64
	Fastest int
	Slowest int
}

// ResponseTimes summarises the response time of records; zero for none.
func ResponseTimes(records []entity.AnswerRecord) ResponseTimeStats {
	if len(records) == 0 {
		return ResponseTimeStats{}
	}
	secs := lo.Map(records, func(r entity.AnswerRecord, _ int) int { return r.ResponseTimeSeconds })
	sort.Ints(secs)

	n := len(secs)
	median := float64(secs[n/2])
	if n%2 == 0 {
		median = float64(secs[n/2-1]+secs[n/2]) / 2
	}
	return ResponseTimeStats{
		Average: float64(lo.Sum(secs)) / float64(n),
		Median:  median,
		Fastest: secs[0],
		Slowest: secs[n-1],
	}
}

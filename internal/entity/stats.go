package entity

import "math"

// SessionStats is derived from an answer log and never stored on its own.
type SessionStats struct {
	Total           int
	Correct         int
	Incorrect       int
	AccuracyPercent int
}

// ComputeStats derives running totals from the answer log. It depends only on
// the records, so a log reloaded from storage yields the same stats as the
// live session did.
func ComputeStats(answers []AnswerRecord) SessionStats {
	stats := SessionStats{Total: len(answers)}
	for _, a := range answers {
		if a.IsCorrect {
			stats.Correct++
		}
	}
	stats.Incorrect = stats.Total - stats.Correct
	stats.AccuracyPercent = Percent(stats.Correct, stats.Total)
	return stats
}

// Percent returns round(100*part/total) with halves rounded away from zero,
// or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

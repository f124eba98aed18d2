package analytics

import (
	"time"

	"github.com/samber/lo"
)

// TrendDirection classifies recent accuracy against the preceding period.
type TrendDirection string

const (
	TrendUp               TrendDirection = "up"
	TrendDown             TrendDirection = "down"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// recentWindow is the number of trailing days treated as "recent".
const recentWindow = 3

// DailyAccuracy is one day of the performance window.
type DailyAccuracy struct {
	Date       time.Time
	TotalCards int
	Correct    int
	Accuracy   float64
}

// Trend compares the mean accuracy of the last three days with the mean of
// every earlier day. It is a momentum signal, not a statistical test; exact
// ties are stable.
func Trend(daily []DailyAccuracy) TrendDirection {
	if len(daily) < 2 {
		return TrendInsufficientData
	}

	split := len(daily) - recentWindow
	if split < 0 {
		split = 0
	}
	recent, older := daily[split:], daily[:split]

	avgRecent := meanAccuracy(recent)
	avgOlder := avgRecent
	if len(older) > 0 {
		avgOlder = meanAccuracy(older)
	}

	switch {
	case avgRecent > avgOlder:
		return TrendUp
	case avgRecent < avgOlder:
		return TrendDown
	default:
		return TrendStable
	}
}

func meanAccuracy(days []DailyAccuracy) float64 {
	if len(days) == 0 {
		return 0
	}
	return lo.SumBy(days, func(d DailyAccuracy) float64 { return d.Accuracy }) / float64(len(days))
}

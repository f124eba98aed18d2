package analytics

import (
	"testing"
	"time"
)

func days(accuracies ...float64) []DailyAccuracy {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	out := make([]DailyAccuracy, 0, len(accuracies))
	for i, a := range accuracies {
		out = append(out, DailyAccuracy{Date: start.AddDate(0, 0, i), TotalCards: 10, Accuracy: a})
	}
	return out
}

func TestTrend(t *testing.T) {
	cases := []struct {
		name  string
		daily []DailyAccuracy
		want  TrendDirection
	}{
		{"empty", nil, TrendInsufficientData},
		{"single day", days(80), TrendInsufficientData},
		{"two days has no older period", days(10, 90), TrendStable},
		{"three days has no older period", days(10, 50, 90), TrendStable},
		{"rising", days(50, 60, 70, 90, 95, 100), TrendUp},
		{"falling", days(90, 90, 90, 60, 70, 80), TrendDown},
		{"tie", days(70, 70, 60, 80, 70), TrendStable},
		{"four days", days(40, 50, 50, 50), TrendUp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Trend(tc.daily); got != tc.want {
				t.Fatalf("Trend=%s want %s", got, tc.want)
			}
		})
	}
}

func TestTrendDoesNotMutateInput(t *testing.T) {
	in := days(50, 60, 70, 90)
	snapshot := append([]DailyAccuracy(nil), in...)
	Trend(in)
	for i := range in {
		if in[i] != snapshot[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

package cmd

import (
	"bytes"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	studydeckv1 "github.com/eslsoft/studydeck/pkg/api/studydeck/v1"
)

func sampleReport() *studydeckv1.GetPerformanceResponse {
	return &studydeckv1.GetPerformanceResponse{
		LearnerID:    7,
		WindowDays:   7,
		Since:        time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC),
		TotalReviews: 10,
		Accuracy:     70,
		Categories: []studydeckv1.CategoryAccuracy{
			{CategoryName: "Cardio", Correct: 9, Total: 10, Accuracy: 90},
		},
		Daily: []studydeckv1.DailyAccuracy{
			{Date: "2025-04-09", TotalCards: 4, Correct: 3, Accuracy: 75},
		},
		Trend:      "up",
		Strengths:  []string{"Cardio"},
		Tip:        "good",
		TipMessage: "Good job! Keep practicing to improve further.",
	}
}

func TestWriteReportText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReportText(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Accuracy", "70%", "Cardio", "2025-04-09", "Weaknesses", "-"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := writeReportXLSX(path, sampleReport()); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(sortedCopy(got), []string{"Categories", "Daily", "Summary"}) {
		t.Fatalf("unexpected sheets %v", got)
	}
	if v, _ := f.GetCellValue("Summary", "B5"); v != "70" {
		t.Fatalf("expected accuracy 70 in Summary!B5, got %q", v)
	}
	if v, _ := f.GetCellValue("Categories", "A2"); v != "Cardio" {
		t.Fatalf("expected Cardio in Categories!A2, got %q", v)
	}
}

func sortedCopy(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}

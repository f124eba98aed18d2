/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"

	studydeckv1 "github.com/eslsoft/studydeck/pkg/api/studydeck/v1"

	"github.com/eslsoft/studydeck/internal/adapter/mapping"
	adapterrepo "github.com/eslsoft/studydeck/internal/adapter/repository"
	"github.com/eslsoft/studydeck/internal/infrastructure/config"
	"github.com/eslsoft/studydeck/internal/infrastructure/server"
	"github.com/eslsoft/studydeck/internal/usecase"
)

const (
	reportLearnerKey = "report.cli.learner_id"
	reportDaysKey    = "report.cli.days"
	reportFilterKey  = "report.cli.filter"
	reportJSONKey    = "report.cli.json"
	reportXLSXKey    = "report.cli.xlsx"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a learner's performance report",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}
		stores, cleanup, err := adapterrepo.NewStores(cfg, logger)
		if err != nil {
			return fmt.Errorf("open stores: %w", err)
		}
		defer cleanup()

		loc, err := cfg.ReportLocation()
		if err != nil {
			return err
		}
		uc := usecase.NewReportUsecase(stores.Answers, usecase.ReportOptions{
			DefaultWindowDays: cfg.Report.DefaultWindowDays,
			Location:          loc,
		})
		report, err := uc.PerformanceReport(cmd.Context(), usecase.ReportQuery{
			LearnerID:  viper.GetInt64(reportLearnerKey),
			WindowDays: viper.GetInt(reportDaysKey),
			Filter:     viper.GetString(reportFilterKey),
		})
		if err != nil {
			return err
		}
		resp := mapping.ToAPIPerformance(report)

		if path := viper.GetString(reportXLSXKey); path != "" {
			if err := writeReportXLSX(path, resp); err != nil {
				return err
			}
			cmd.PrintErrf("report written to %s\n", path)
		}
		if viper.GetBool(reportJSONKey) {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		return writeReportText(cmd.OutOrStdout(), resp)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Int64("learner", 0, "learner to report on")
	reportCmd.Flags().Int("days", 0, "trailing window in days (default report.default_window_days)")
	reportCmd.Flags().String("filter", "", "CEL filter over answers, e.g. category == \"Cardio\"")
	reportCmd.Flags().Bool("json", false, "print the report as JSON")
	reportCmd.Flags().String("xlsx", "", "also write the report to an Excel workbook")

	bindFlags(reportCmd.Flags(), map[string]string{
		"learner": reportLearnerKey,
		"days":    reportDaysKey,
		"filter":  reportFilterKey,
		"json":    reportJSONKey,
		"xlsx":    reportXLSXKey,
	})
}

func writeReportText(w io.Writer, r *studydeckv1.GetPerformanceResponse) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Learner\t%d\n", r.LearnerID)
	fmt.Fprintf(tw, "Window\t%d days since %s\n", r.WindowDays, r.Since.Format("2006-01-02"))
	fmt.Fprintf(tw, "Reviews\t%d\n", r.TotalReviews)
	fmt.Fprintf(tw, "Accuracy\t%d%%\n", r.Accuracy)
	fmt.Fprintf(tw, "Trend\t%s\n", r.Trend)
	fmt.Fprintf(tw, "Response time\tavg %.1fs, median %.1fs, %ds to %ds\n",
		r.ResponseTimes.Average, r.ResponseTimes.Median, r.ResponseTimes.Fastest, r.ResponseTimes.Slowest)
	fmt.Fprintf(tw, "Strengths\t%s\n", joinOrDash(r.Strengths))
	fmt.Fprintf(tw, "Weaknesses\t%s\n", joinOrDash(r.Weaknesses))
	fmt.Fprintf(tw, "Tip\t%s\n", r.TipMessage)

	if len(r.Categories) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "CATEGORY\tCORRECT\tTOTAL\tACCURACY")
		for _, c := range r.Categories {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\n", c.CategoryName, c.Correct, c.Total, c.Accuracy)
		}
	}
	if len(r.Daily) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "DATE\tCORRECT\tTOTAL\tACCURACY")
		for _, d := range r.Daily {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", d.Date, d.Correct, d.TotalCards, d.Accuracy)
		}
	}
	return tw.Flush()
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// writeReportXLSX writes a summary sheet plus one sheet per breakdown.
func writeReportXLSX(path string, r *studydeckv1.GetPerformanceResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	summaryRows := [][]any{
		{"Learner", r.LearnerID},
		{"Window days", r.WindowDays},
		{"Since", r.Since.Format("2006-01-02")},
		{"Reviews", r.TotalReviews},
		{"Accuracy %", r.Accuracy},
		{"Trend", r.Trend},
		{"Average response s", r.ResponseTimes.Average},
		{"Median response s", r.ResponseTimes.Median},
		{"Strengths", strings.Join(r.Strengths, ", ")},
		{"Weaknesses", strings.Join(r.Weaknesses, ", ")},
		{"Tip", r.TipMessage},
	}
	if err := writeSheet(f, summary, summaryRows); err != nil {
		return err
	}

	categoryRows := [][]any{{"Category", "Correct", "Total", "Accuracy %"}}
	for _, c := range r.Categories {
		categoryRows = append(categoryRows, []any{c.CategoryName, c.Correct, c.Total, c.Accuracy})
	}
	dailyRows := [][]any{{"Date", "Correct", "Total", "Accuracy %"}}
	for _, d := range r.Daily {
		dailyRows = append(dailyRows, []any{d.Date, d.Correct, d.TotalCards, d.Accuracy})
	}
	for name, rows := range map[string][][]any{"Categories": categoryRows, "Daily": dailyRows} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

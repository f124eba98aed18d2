package deck

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/eslsoft/studydeck/internal/entity"
)

// ReadConfig describes where card fields live in a deck file. Columns are
// spreadsheet letters and also apply to CSV files.
type ReadConfig struct {
	SheetName        string
	StartRow         int
	QuestionColumn   string
	AnswerColumn     string
	CategoryColumn   string
	DifficultyColumn string
	TagsColumn       string
}

// DefaultReadConfig expects question, answer, category, difficulty and tags
// in columns A to E below a header row.
func DefaultReadConfig() ReadConfig {
	return ReadConfig{
		SheetName:        "Sheet1",
		StartRow:         2,
		QuestionColumn:   "A",
		AnswerColumn:     "B",
		CategoryColumn:   "C",
		DifficultyColumn: "D",
		TagsColumn:       "E",
	}
}

// Row is one card read from a deck file.
type Row struct {
	Line       int
	Question   string
	Answer     string
	Category   string
	Difficulty entity.Difficulty
	Tags       []string
}

// RowError reports a line that could not be turned into a card.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

var (
	errMissingQuestion = errors.New("question cannot be empty")
	errMissingAnswer   = errors.New("answer cannot be empty")
)

// ReadFile parses an .xlsx or .csv deck. Rows that fail validation are
// returned as RowErrors and do not abort the read.
func ReadFile(path string, cfg ReadConfig) ([]Row, []RowError, error) {
	var (
		cells [][]string
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		cells, err = readCSV(path)
	case ".xlsx", ".xlsm":
		cells, err = readExcel(path, cfg.SheetName)
	default:
		return nil, nil, fmt.Errorf("unsupported deck format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, nil, err
	}
	rows, rowErrs := parseRows(cells, cfg)
	return rows, rowErrs, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
}

func parseRows(cells [][]string, cfg ReadConfig) ([]Row, []RowError) {
	start := cfg.StartRow
	if start < 1 {
		start = 1
	}
	var (
		rows []Row
		errs []RowError
	)
	for i, cols := range cells {
		line := i + 1
		if line < start || isBlank(cols) {
			continue
		}
		row := Row{
			Line:       line,
			Question:   strings.TrimSpace(cell(cols, cfg.QuestionColumn)),
			Answer:     strings.TrimSpace(cell(cols, cfg.AnswerColumn)),
			Category:   strings.TrimSpace(cell(cols, cfg.CategoryColumn)),
			Difficulty: entity.ParseDifficulty(cell(cols, cfg.DifficultyColumn)),
			Tags:       splitTags(cell(cols, cfg.TagsColumn)),
		}
		switch {
		case row.Question == "":
			errs = append(errs, RowError{Line: line, Err: errMissingQuestion})
		case row.Answer == "":
			errs = append(errs, RowError{Line: line, Err: errMissingAnswer})
		default:
			rows = append(rows, row)
		}
	}
	return rows, errs
}

func cell(cols []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(cols) {
		return ""
	}
	return cols[idx]
}

// columnToIndex converts a spreadsheet column letter to a zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

func splitTags(s string) []string {
	tags := lo.Map(strings.Split(s, ","), func(t string, _ int) string { return strings.TrimSpace(t) })
	return lo.Uniq(lo.Compact(tags))
}

func isBlank(cols []string) bool {
	return lo.EveryBy(cols, func(c string) bool { return strings.TrimSpace(c) == "" })
}

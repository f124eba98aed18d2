package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eslsoft/studydeck/internal/infrastructure/database"
)

type reviewSnapshot struct {
	ID           int64     `db:"id"`
	SessionID    string    `db:"session_id"`
	LearnerID    int64     `db:"learner_id"`
	CardID       int64     `db:"card_id"`
	IsCorrect    bool      `db:"is_correct"`
	Quality      int       `db:"quality"`
	ResponseTime int       `db:"response_time"`
	ReviewedAt   time.Time `db:"reviewed_at"`
}

type cardSnapshot struct {
	ID          int64   `db:"id"`
	CategoryID  *int64  `db:"category_id"`
	Question    string  `db:"question"`
	Tags        string  `db:"tags"`
	ReviewCount int     `db:"review_count"`
	EaseFactor  float64 `db:"ease_factor"`
}

func openDB(t *testing.T, name string) (*sqlx.DB, string) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), name)
	db, cleanup, err := database.OpenSQLite(dsn)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	t.Cleanup(cleanup)
	if err := database.MigrateSQLite(context.Background(), db); err != nil {
		t.Fatalf("migrate %s: %v", name, err)
	}
	return db, dsn
}

func seedData(t *testing.T, db *sqlx.DB) {
	t.Helper()
	at := time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)
	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO categories (learner_id, name) VALUES (?, ?)`, []any{7, "Cardio"}},
		{`INSERT INTO cards (learner_id, category_id, question, answer, tags, review_count, ease_factor, next_review)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, []any{7, 1, "Q1", "A1", `["ecg"]`, 2, 2.36, at}},
		{`INSERT INTO cards (learner_id, category_id, question, answer, next_review)
			VALUES (?, ?, ?, ?, ?)`, []any{7, nil, "Q2", "A2", at}},
		{`INSERT INTO study_sessions (id, learner_id, started_at, ended_at, queue_size, total_cards, correct_answers)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, []any{"s1", 7, at, at.Add(time.Minute), 2, 2, 1}},
		{`INSERT INTO card_reviews (session_id, learner_id, card_id, is_correct, quality, response_time, reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, []any{"s1", 7, 1, true, 4, 12, at.Add(20 * time.Second)}},
		{`INSERT INTO card_reviews (session_id, learner_id, card_id, is_correct, quality, response_time, reviewed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, []any{"s1", 7, 2, false, 1, 30, at.Add(50 * time.Second)}},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.query, s.args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func snapshotReviews(t *testing.T, db *sqlx.DB) []reviewSnapshot {
	t.Helper()
	var out []reviewSnapshot
	if err := db.Select(&out, `SELECT id, session_id, learner_id, card_id, is_correct, quality, response_time, reviewed_at FROM card_reviews ORDER BY id`); err != nil {
		t.Fatalf("snapshot reviews: %v", err)
	}
	for i := range out {
		out[i].ReviewedAt = out[i].ReviewedAt.UTC()
	}
	return out
}

func snapshotCards(t *testing.T, db *sqlx.DB) []cardSnapshot {
	t.Helper()
	var out []cardSnapshot
	if err := db.Select(&out, `SELECT id, category_id, question, tags, review_count, ease_factor FROM cards ORDER BY id`); err != nil {
		t.Fatalf("snapshot cards: %v", err)
	}
	return out
}

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, srcDSN := openDB(t, "src.db")
	seedData(t, src)

	exporter, err := NewService("sqlite3", srcDSN)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	var buf bytes.Buffer
	if err := exporter.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dst, dstDSN := openDB(t, "dst.db")
	importer, err := NewService("sqlite", dstDSN)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	if err := importer.Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if want, got := snapshotReviews(t, src), snapshotReviews(t, dst); !reflect.DeepEqual(want, got) {
		t.Fatalf("reviews mismatch after import:\nwant %#v\ngot  %#v", want, got)
	}
	if want, got := snapshotCards(t, src), snapshotCards(t, dst); !reflect.DeepEqual(want, got) {
		t.Fatalf("cards mismatch after import:\nwant %#v\ngot  %#v", want, got)
	}

	// Importing the same backup twice upserts instead of duplicating rows.
	if err := importer.Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("second import failed: %v", err)
	}
	if got := snapshotReviews(t, dst); len(got) != 2 {
		t.Fatalf("expected 2 reviews after re-import, got %d", len(got))
	}
}

func TestServiceExportMetaAndTablesFilter(t *testing.T) {
	ctx := context.Background()
	src, srcDSN := openDB(t, "src.db")
	seedData(t, src)

	exporter, err := NewService("sqlite3", srcDSN)
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	progress := &recordingProgress{counts: map[string]int{}}
	var buf bytes.Buffer
	err = exporter.Export(ctx, &buf, WithTables([]string{"card_reviews", "CARDS"}), WithProgressReporter(progress))
	if err != nil {
		t.Fatalf("filtered export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+2+2 {
		t.Fatalf("expected meta + 4 rows, got %d lines", len(lines))
	}
	var meta struct {
		Type      string         `json:"type"`
		Tables    []string       `json:"tables"`
		RowCounts map[string]int `json:"row_counts"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta.Type != "meta" || strings.Join(meta.Tables, ",") != "cards,card_reviews" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if meta.RowCounts["card_reviews"] != 2 || progress.counts["card_reviews"] != 2 {
		t.Fatalf("unexpected counts meta=%v progress=%v", meta.RowCounts, progress.counts)
	}

	if err := exporter.Export(ctx, &buf, WithTables([]string{"users"})); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

func TestServiceImportRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	_, dsn := openDB(t, "dst.db")
	importer, err := NewService("sqlite3", dsn)
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}

	cases := map[string]string{
		"missing meta":    `{"type":"categories","payload":{"id":1,"learner_id":7,"name":"x"}}`,
		"wrong version":   `{"type":"meta","version":99}`,
		"schema mismatch": `{"type":"meta","version":1,"schema_hash":"deadbeef"}`,
		"unknown column":  `{"type":"meta","version":1}` + "\n" + `{"type":"categories","payload":{"nope":1}}`,
	}
	for name, input := range cases {
		if err := importer.Import(ctx, strings.NewReader(input)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := NewService("", dsn); err == nil {
		t.Fatal("expected error without driver")
	}
}

type recordingProgress struct {
	counts map[string]int
}

func (p *recordingProgress) StartTable(string, int)            {}
func (p *recordingProgress) Increment(table string, delta int) { p.counts[table] += delta }
func (p *recordingProgress) FinishTable(string)                {}

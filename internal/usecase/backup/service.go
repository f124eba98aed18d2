package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // ensure postgres driver available
	_ "github.com/mattn/go-sqlite3" // ensure sqlite driver available

	"github.com/eslsoft/studydeck/internal/infrastructure/database"
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
)

var errNoTablesSelected = errors.New("backup: no tables selected")

type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

type Service struct {
	driver     string
	dsn        string
	batchSize  int
	tables     []*database.Table
	schemaHash string
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service bound to the provided database driver and DSN.
func NewService(driver, dsn string, opts ...Option) (*Service, error) {
	driver = strings.TrimSpace(strings.ToLower(driver))
	switch driver {
	case "":
		return nil, errors.New("backup: driver is required")
	case "postgresql":
		driver = "postgres"
	case "sqlite":
		driver = "sqlite3"
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("backup: DSN is required")
	}

	svc := &Service{
		driver:     driver,
		dsn:        dsn,
		batchSize:  defaultBatchSize,
		tables:     database.Tables,
		schemaHash: computeSchemaHash(database.Tables),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided table names.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithImportTables restricts import to the provided table names.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithImportProgress registers a reporter for rows applied during import. Table
// totals come from the backup's meta record and are 0 when it has none.
func WithImportProgress(reporter ProgressReporter) ImportOption {
	return func(cfg *importConfig) {
		cfg.reporter = reporter
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	SchemaHash string         `json:"schema_hash,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	SchemaHash string          `json:"schema_hash"`
	RowCounts  map[string]int  `json:"row_counts"`
	Payload    json.RawMessage `json:"payload"`
}

type sequenceStats map[string]int64

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	counts := make(map[string]int, len(tables))
	for _, tbl := range tables {
		count, err := countTableRows(ctx, db, tbl.Name)
		if err != nil {
			return fmt.Errorf("count table %s: %w", tbl.Name, err)
		}
		counts[tbl.Name] = count
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := time.Now().UTC()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		SchemaHash: s.schemaHash,
		Tables:     tableNames(tables),
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, tbl := range tables {
		reporter.StartTable(tbl.Name, counts[tbl.Name])
		if err := s.exportTable(ctx, db, tbl, reporter, writer); err != nil {
			return err
		}
		reporter.FinishTable(tbl.Name)
	}
	return writer.Flush()
}

func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) error {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}
	tables, err := s.selectTables(cfg.tables)
	if err != nil {
		return err
	}
	tableFilter := make(map[string]*database.Table, len(tables))
	for _, tbl := range tables {
		tableFilter[tbl.Name] = tbl
	}

	db, err := s.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	br := bufio.NewReader(r)
	var (
		metaSeen bool
		meta     rawRecord
		stats    = make(sequenceStats)
		current  string
	)

	for {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}

			switch rec.Type {
			case "meta":
				if rec.Version != formatVersion {
					return fmt.Errorf("backup: unsupported format version %d", rec.Version)
				}
				metaSeen = true
				meta = rec
			default:
				if !metaSeen {
					return errors.New("backup: missing meta record")
				}
				tbl, ok := tableFilter[rec.Type]
				if !ok {
					// Skip records for tables not requested.
					break
				}
				if len(rec.Payload) == 0 {
					return fmt.Errorf("backup: missing payload for table %s", rec.Type)
				}
				if rec.Type != current {
					if current != "" {
						reporter.FinishTable(current)
					}
					current = rec.Type
					reporter.StartTable(current, meta.RowCounts[current])
				}
				if err := s.importRow(ctx, tx, tbl, rec.Payload, stats); err != nil {
					return err
				}
				reporter.Increment(current, 1)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if current != "" {
		reporter.FinishTable(current)
	}
	if !metaSeen {
		return errors.New("backup: missing meta record")
	}
	if meta.SchemaHash != "" && meta.SchemaHash != s.schemaHash {
		return fmt.Errorf("backup: schema mismatch (backup %s, database %s)", shortHash(meta.SchemaHash), shortHash(s.schemaHash))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	commit = true

	return s.syncSequences(ctx, db, stats)
}

func (s *Service) exportTable(ctx context.Context, db *sql.DB, table *database.Table, reporter ProgressReporter, w io.Writer) error {
	columns := columnNames(table)
	orderBy := " ORDER BY " + strings.Join(table.PrimaryKey, ", ")
	batch := s.batchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	for offset := 0; ; offset += batch {
		query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT %d OFFSET %d",
			strings.Join(columns, ", "),
			table.Name,
			orderBy,
			batch,
			offset,
		)
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("query %s: %w", table.Name, err)
		}

		rowCount := 0
		for rows.Next() {
			values := make([]any, len(columns))
			dest := make([]any, len(columns))
			for i := range dest {
				dest[i] = &values[i]
			}
			if err := rows.Scan(dest...); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: %w", table.Name, err)
			}
			rowMap, err := convertRow(table, values)
			if err != nil {
				rows.Close()
				return err
			}
			if err := writeRecord(w, record{Type: table.Name, Payload: rowMap}); err != nil {
				rows.Close()
				return err
			}
			reporter.Increment(table.Name, 1)
			rowCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate %s: %w", table.Name, err)
		}
		rows.Close()
		if rowCount < batch {
			break
		}
	}
	return nil
}

func (s *Service) importRow(ctx context.Context, tx *sql.Tx, table *database.Table, payload json.RawMessage, stats sequenceStats) error {
	values, err := decodePayload(table, payload)
	if err != nil {
		return fmt.Errorf("decode payload for %s: %w", table.Name, err)
	}

	cols := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, col := range table.Columns {
		val, ok := values[col.Name]
		if !ok {
			continue
		}
		if val == nil && !col.Nullable {
			return fmt.Errorf("backup: missing required value for %s.%s", table.Name, col.Name)
		}
		cols = append(cols, col.Name)
		args = append(args, val)
		if col.Increment {
			if id, ok := val.(int64); ok && id > stats[table.Name] {
				stats[table.Name] = id
			}
		}
	}
	if len(cols) == 0 {
		return nil
	}

	placeholder := buildPlaceholders(s.driver, len(cols))
	if placeholder == nil {
		return fmt.Errorf("unsupported driver %q for placeholders", s.driver)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)%s",
		table.Name,
		strings.Join(cols, ", "),
		strings.Join(placeholder, ", "),
		buildUpsertClause(table, cols),
	)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table.Name, err)
	}
	return nil
}

func (s *Service) selectTables(requested []string) ([]*database.Table, error) {
	if len(requested) == 0 {
		return append([]*database.Table(nil), s.tables...), nil
	}
	set := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		n := strings.TrimSpace(strings.ToLower(name))
		if n == "" {
			continue
		}
		if database.FindTable(n) == nil {
			return nil, fmt.Errorf("backup: unsupported table %q", name)
		}
		set[n] = struct{}{}
	}
	if len(set) == 0 {
		return nil, errNoTablesSelected
	}
	// Keep creation order so referenced rows are imported first.
	tbls := make([]*database.Table, 0, len(set))
	for _, tbl := range s.tables {
		if _, ok := set[tbl.Name]; ok {
			tbls = append(tbls, tbl)
		}
	}
	return tbls, nil
}

func (s *Service) openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if s.driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func countTableRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func convertRow(table *database.Table, values []any) (map[string]any, error) {
	result := make(map[string]any, len(values))
	for idx, col := range table.Columns {
		val, err := convertDBValue(col, values[idx])
		if err != nil {
			return nil, fmt.Errorf("convert %s.%s: %w", table.Name, col.Name, err)
		}
		result[col.Name] = val
	}
	return result, nil
}

func convertDBValue(col database.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if b, ok := value.([]byte); ok {
		// database/sql often returns []byte for text columns.
		if col.Type == database.TypeJSON && json.Valid(b) {
			return json.RawMessage(append([]byte(nil), b...)), nil
		}
		value = string(b)
	}

	switch col.Type {
	case database.TypeBool:
		return toBool(value)
	case database.TypeInt:
		return toInt64(value)
	case database.TypeFloat:
		return toFloat64(value)
	case database.TypeTime:
		switch v := value.(type) {
		case time.Time:
			return v.UTC().Format(time.RFC3339Nano), nil
		case string:
			t, err := parseTime(v)
			if err != nil {
				return nil, err
			}
			return t.Format(time.RFC3339Nano), nil
		}
		return nil, fmt.Errorf("unsupported time type %T", value)
	case database.TypeJSON:
		if str, ok := value.(string); ok && json.Valid([]byte(str)) {
			return json.RawMessage(str), nil
		}
		return value, nil
	default:
		return value, nil
	}
}

func decodePayload(table *database.Table, payload json.RawMessage) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	result := make(map[string]any, len(raw))
	for key, val := range raw {
		col := table.Column(key)
		if col == nil {
			return nil, fmt.Errorf("column %s not found in table %s", key, table.Name)
		}
		converted, err := convertJSONValue(*col, val)
		if err != nil {
			return nil, fmt.Errorf("convert %s.%s: %w", table.Name, key, err)
		}
		result[key] = converted
	}
	return result, nil
}

func convertJSONValue(col database.Column, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	// JSON columns travel as their text so both jsonb and TEXT accept them.
	if col.Type == database.TypeJSON {
		return string(raw), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	switch col.Type {
	case database.TypeBool:
		return toBool(value)
	case database.TypeInt:
		return toInt64(value)
	case database.TypeFloat:
		return toFloat64(value)
	case database.TypeTime:
		str, ok := value.(string)
		if !ok || str == "" {
			return nil, fmt.Errorf("invalid time value %v", value)
		}
		return time.Parse(time.RFC3339Nano, str)
	default:
		return value, nil
	}
}

func buildPlaceholders(driver string, count int) []string {
	holders := make([]string, count)
	switch driver {
	case "postgres":
		for i := range holders {
			holders[i] = fmt.Sprintf("$%d", i+1)
		}
	case "sqlite3":
		for i := range holders {
			holders[i] = "?"
		}
	default:
		return nil
	}
	return holders
}

// buildUpsertClause works for both postgres and sqlite.
func buildUpsertClause(table *database.Table, insertCols []string) string {
	conflictCols := table.PrimaryKey
	if len(conflictCols) == 0 {
		return ""
	}
	updateCols := difference(insertCols, conflictCols)
	if len(updateCols) == 0 {
		return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflictCols, ", "))
	}
	assignments := make([]string, len(updateCols))
	for i, col := range updateCols {
		assignments[i] = fmt.Sprintf("%s = excluded.%s", col, col)
	}
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictCols, ", "),
		strings.Join(assignments, ", "),
	)
}

func columnNames(table *database.Table) []string {
	cols := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		cols[i] = col.Name
	}
	return cols
}

func tableNames(tables []*database.Table) []string {
	names := make([]string, len(tables))
	for i, tbl := range tables {
		names[i] = tbl.Name
	}
	return names
}

func difference(slice []string, exclude []string) []string {
	set := make(map[string]struct{}, len(exclude))
	for _, item := range exclude {
		set[item] = struct{}{}
	}
	result := make([]string, 0, len(slice))
	for _, item := range slice {
		if _, ok := set[item]; !ok {
			result = append(result, item)
		}
	}
	return result
}

func computeSchemaHash(tables []*database.Table) string {
	sorted := append([]*database.Table(nil), tables...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	builder := &strings.Builder{}
	for _, tbl := range sorted {
		builder.WriteString(tbl.Name)
		builder.WriteString("|cols:")
		for _, col := range tbl.Columns {
			fmt.Fprintf(builder, "%s:%d:%t:%t;", col.Name, col.Type, col.Nullable, col.Increment)
		}
		builder.WriteString("|pk:")
		builder.WriteString(strings.Join(tbl.PrimaryKey, ","))
		builder.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return fmt.Sprintf("%x", sum[:])
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (s *Service) syncSequences(ctx context.Context, db *sql.DB, stats sequenceStats) error {
	if s.driver != "postgres" {
		return nil
	}
	for table, maxVal := range stats {
		if maxVal <= 0 {
			continue
		}
		query := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%s', 'id'), GREATEST(%d, (SELECT COALESCE(MAX(id), 0) FROM %s)))",
			table, maxVal, table,
		)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("sync sequence for %s.id: %w", table, err)
		}
	}
	return nil
}

var sqliteTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time value %q", v)
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return false, err
		}
		return i != 0, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("unsupported bool type %T", value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported int type %T", value)
	}
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported float type %T", value)
	}
}

package database

import (
	"fmt"
	"strings"
)

// ColumnType is the portable type of a column. DDL and backup conversions are
// derived from it per driver.
type ColumnType int

const (
	TypeInt ColumnType = iota
	TypeFloat
	TypeString
	TypeBool
	TypeTime
	TypeJSON
)

// Column describes one table column.
type Column struct {
	Name      string
	Type      ColumnType
	Nullable  bool
	Increment bool
	Default   string
}

// Index is a secondary index on a table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table describes a table owned by this application.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
	Indexes    []Index
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Tables lists every table in creation order.
var Tables = []*Table{
	{
		Name: "categories",
		Columns: []Column{
			{Name: "id", Type: TypeInt, Increment: true},
			{Name: "learner_id", Type: TypeInt},
			{Name: "name", Type: TypeString},
			{Name: "description", Type: TypeString, Nullable: true},
			{Name: "created_at", Type: TypeTime, Default: "CURRENT_TIMESTAMP"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "categories_learner_name_key", Columns: []string{"learner_id", "name"}, Unique: true},
		},
	},
	{
		Name: "cards",
		Columns: []Column{
			{Name: "id", Type: TypeInt, Increment: true},
			{Name: "learner_id", Type: TypeInt},
			{Name: "category_id", Type: TypeInt, Nullable: true},
			{Name: "question", Type: TypeString},
			{Name: "answer", Type: TypeString},
			{Name: "difficulty", Type: TypeString, Default: "'medium'"},
			{Name: "tags", Type: TypeJSON, Default: "'[]'"},
			{Name: "review_count", Type: TypeInt, Default: "0"},
			{Name: "ease_factor", Type: TypeFloat, Default: "2.5"},
			{Name: "next_review", Type: TypeTime, Default: "CURRENT_TIMESTAMP"},
			{Name: "created_at", Type: TypeTime, Default: "CURRENT_TIMESTAMP"},
			{Name: "updated_at", Type: TypeTime, Default: "CURRENT_TIMESTAMP"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "cards_learner_next_review_idx", Columns: []string{"learner_id", "next_review"}},
		},
	},
	{
		Name: "study_sessions",
		Columns: []Column{
			{Name: "id", Type: TypeString},
			{Name: "learner_id", Type: TypeInt},
			{Name: "started_at", Type: TypeTime},
			{Name: "ended_at", Type: TypeTime, Nullable: true},
			{Name: "queue_size", Type: TypeInt, Default: "0"},
			{Name: "total_cards", Type: TypeInt, Default: "0"},
			{Name: "correct_answers", Type: TypeInt, Default: "0"},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "study_sessions_learner_idx", Columns: []string{"learner_id", "started_at"}},
		},
	},
	{
		Name: "card_reviews",
		Columns: []Column{
			{Name: "id", Type: TypeInt, Increment: true},
			{Name: "session_id", Type: TypeString},
			{Name: "learner_id", Type: TypeInt},
			{Name: "card_id", Type: TypeInt},
			{Name: "is_correct", Type: TypeBool},
			{Name: "quality", Type: TypeInt},
			{Name: "response_time", Type: TypeInt, Default: "0"},
			{Name: "reviewed_at", Type: TypeTime},
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "card_reviews_learner_reviewed_idx", Columns: []string{"learner_id", "reviewed_at"}},
		},
	},
}

// FindTable looks a table up by name.
func FindTable(name string) *Table {
	for _, t := range Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// CreateStatements renders idempotent DDL for driver.
func CreateStatements(driver string) ([]string, error) {
	var stmts []string
	for _, t := range Tables {
		create, err := createTable(driver, t)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, create)
		for _, idx := range t.Indexes {
			unique := ""
			if idx.Unique {
				unique = "UNIQUE "
			}
			stmts = append(stmts, fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
				unique, idx.Name, t.Name, strings.Join(idx.Columns, ", ")))
		}
	}
	return stmts, nil
}

func createTable(driver string, t *Table) (string, error) {
	defs := make([]string, 0, len(t.Columns)+1)
	inlinePK := false
	for _, col := range t.Columns {
		def, pk, err := columnDefinition(driver, col)
		if err != nil {
			return "", err
		}
		inlinePK = inlinePK || pk
		defs = append(defs, def)
	}
	if !inlinePK && len(t.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.Name, strings.Join(defs, ",\n\t")), nil
}

func columnDefinition(driver string, col Column) (string, bool, error) {
	if col.Increment {
		switch driver {
		case "postgres":
			return col.Name + " BIGSERIAL PRIMARY KEY", true, nil
		case "sqlite3":
			return col.Name + " INTEGER PRIMARY KEY AUTOINCREMENT", true, nil
		}
	}

	sqlType, err := columnSQLType(driver, col.Type)
	if err != nil {
		return "", false, err
	}
	def := col.Name + " " + sqlType
	if !col.Nullable {
		def += " NOT NULL"
	}
	if col.Default != "" {
		def += " DEFAULT " + col.Default
	}
	return def, false, nil
}

func columnSQLType(driver string, typ ColumnType) (string, error) {
	switch driver {
	case "postgres":
		switch typ {
		case TypeInt:
			return "BIGINT", nil
		case TypeFloat:
			return "DOUBLE PRECISION", nil
		case TypeString:
			return "TEXT", nil
		case TypeBool:
			return "BOOLEAN", nil
		case TypeTime:
			return "TIMESTAMPTZ", nil
		case TypeJSON:
			return "JSONB", nil
		}
	case "sqlite3":
		switch typ {
		case TypeInt, TypeBool:
			return "INTEGER", nil
		case TypeFloat:
			return "REAL", nil
		case TypeString, TypeJSON:
			return "TEXT", nil
		case TypeTime:
			return "TIMESTAMP", nil
		}
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
	return "", fmt.Errorf("unsupported column type %d", typ)
}

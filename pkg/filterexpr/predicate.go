package filterexpr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
)

// ValueKind describes the type of a filterable field.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindInt       ValueKind = "int"
	KindNumber    ValueKind = "number"
	KindBool      ValueKind = "bool"
	KindTimestamp ValueKind = "timestamp"
)

// Schema whitelists the fields a filter may reference.
type Schema map[string]ValueKind

// ErrNotBoolean is returned when a filter does not evaluate to a boolean.
var ErrNotBoolean = errors.New("filter must evaluate to a boolean")

// Predicate is a compiled filter expression. A nil Predicate matches everything.
type Predicate struct {
	source string
	prg    cel.Program
}

// Compile checks expr against schema and prepares it for evaluation.
// A blank expression yields a nil Predicate.
func Compile(expr string, schema Schema) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if len(schema) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(schema)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program: %w", err)
	}
	return &Predicate{source: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Match evaluates the predicate against one record's field values.
func (p *Predicate) Match(vars map[string]any) (bool, error) {
	if p == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, ErrNotBoolean
	}
	return matched, nil
}

func buildEnv(schema Schema) (*cel.Env, error) {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]cel.EnvOption, 0, len(schema)+1)
	for _, name := range names {
		celType, err := celTypeForKind(schema[name])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		opts = append(opts, cel.Variable(name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeForKind(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindInt:
		return cel.IntType, nil
	case KindNumber:
		return cel.DoubleType, nil
	case KindBool:
		return cel.BoolType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	default:
		return nil, fmt.Errorf("unsupported value kind %q", kind)
	}
}

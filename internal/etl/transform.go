package etl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/rs/zerolog"
)

// ColumnMapping is one declared source-to-target column correspondence,
// optionally carrying a transformation expression evaluated per cell.
type ColumnMapping struct {
	SourceTable         string `json:"sourceTable"`
	SourceColumn        string `json:"sourceColumn"`
	TargetTable         string `json:"targetTable"`
	TargetColumn        string `json:"targetColumn"`
	TransformationLogic string `json:"transformationLogic,omitempty"`
}

// ColumnCategory is the simplified type class of a destination column,
// driving value coercion.
type ColumnCategory string

const (
	CategoryText      ColumnCategory = "text"
	CategoryInteger   ColumnCategory = "integer"
	CategoryDecimal   ColumnCategory = "decimal"
	CategoryDate      ColumnCategory = "date"
	CategoryTimestamp ColumnCategory = "timestamp"
	CategorySerial    ColumnCategory = "serial"
)

// CategorizeType converts a declared database type name to a ColumnCategory.
func CategorizeType(dataType string) ColumnCategory {
	upper := strings.ToUpper(dataType)
	switch {
	case upper == "SERIAL" || upper == "BIGSERIAL" || upper == "SMALLSERIAL":
		return CategorySerial
	case strings.Contains(upper, "INT"):
		return CategoryInteger
	case strings.Contains(upper, "FLOAT") || strings.Contains(upper, "DOUBLE") ||
		strings.Contains(upper, "DECIMAL") || strings.Contains(upper, "NUMERIC") ||
		strings.Contains(upper, "REAL") || strings.Contains(upper, "MONEY"):
		return CategoryDecimal
	case upper == "DATE":
		return CategoryDate
	case strings.Contains(upper, "TIMESTAMP") || strings.Contains(upper, "DATETIME"):
		return CategoryTimestamp
	default:
		return CategoryText
	}
}

// TargetSchema is the live column set of a destination table, re-read per
// processing run so schema drift is picked up between runs.
type TargetSchema struct {
	columns    []string
	categories map[string]ColumnCategory
}

// NewTargetSchema builds a schema from described columns.
func NewTargetSchema(cols []Column) *TargetSchema {
	s := &TargetSchema{categories: make(map[string]ColumnCategory, len(cols))}
	for _, c := range cols {
		s.columns = append(s.columns, c.Name)
		s.categories[strings.ToLower(c.Name)] = CategorizeType(c.DataType)
	}
	return s
}

// Has reports whether the live table declares the column.
func (s *TargetSchema) Has(col string) bool {
	_, ok := s.categories[strings.ToLower(col)]
	return ok
}

// Category returns the coercion category for a column. A column whose name
// contains "date" is treated as a date regardless of its declared type,
// matching how date columns are conventionally named in mapped targets.
func (s *TargetSchema) Category(col string) ColumnCategory {
	lower := strings.ToLower(col)
	cat, ok := s.categories[lower]
	if !ok {
		return CategoryText
	}
	if cat == CategoryText && strings.Contains(lower, "date") {
		return CategoryDate
	}
	return cat
}

// Columns returns the column names in table order.
func (s *TargetSchema) Columns() []string {
	return s.columns
}

// Transformer converts one source row into one destination row by applying
// every applicable column mapping and coercing values to the destination
// column types.
type Transformer struct {
	logger zerolog.Logger
}

func NewTransformer(logger zerolog.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// TransformRow applies the mapping set to a single source row. Mappings
// whose target column does not exist in the live schema are dropped without
// error. A coercion failure fails the whole row; an expression failure only
// nulls the affected value. A row retaining zero columns is an error.
func (t *Transformer) TransformRow(row map[string]interface{}, mappings []ColumnMapping, schema *TargetSchema) (map[string]interface{}, error) {
	transformed := make(map[string]interface{})
	for _, m := range mappings {
		if m.TargetColumn == "" || !schema.Has(m.TargetColumn) {
			continue
		}

		value := row[m.SourceColumn]
		if m.TransformationLogic != "" {
			value = t.evaluate(m.TransformationLogic, Stringify(value), m.SourceColumn)
		}

		coerced, err := CoerceValue(value, schema.Category(m.TargetColumn))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", m.TargetColumn, err)
		}
		transformed[m.TargetColumn] = coerced
	}

	if len(transformed) == 0 {
		return nil, errors.New("no matching columns")
	}
	return transformed, nil
}

// evaluate runs a transformation expression with a single bound name,
// "source", set to the string form of the raw value. The expression language
// has no loops, no function calls beyond its builtin operators and no access
// to anything but the bound parameter, so administrator-supplied logic stays
// sandboxed and bounded. Any parse or evaluation failure nulls the value and
// never aborts the row.
func (t *Transformer) evaluate(exprText, source, sourceColumn string) interface{} {
	expr, err := govaluate.NewEvaluableExpression(exprText)
	if err != nil {
		t.logger.Warn().Err(err).Str("column", sourceColumn).Msg("Invalid transformation expression")
		return nil
	}
	result, err := expr.Evaluate(map[string]interface{}{"source": source})
	if err != nil {
		t.logger.Warn().Err(err).Str("column", sourceColumn).Msg("Transformation expression failed")
		return nil
	}
	return result
}

// CoerceValue converts a raw value to the destination column category.
func CoerceValue(v interface{}, cat ColumnCategory) (interface{}, error) {
	switch cat {
	case CategoryDate, CategoryTimestamp:
		return coerceDate(v)
	case CategoryInteger, CategorySerial:
		return coerceInteger(v)
	case CategoryDecimal:
		return coerceDecimal(v)
	default:
		return v, nil
	}
}

// coerceDate normalizes to YYYY-MM-DD, accepting DD/MM/YYYY first and
// ISO dates second. Anything else is an invalid date and fails the row.
func coerceDate(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if tm, ok := v.(time.Time); ok {
		return tm.Format("2006-01-02"), nil
	}
	s := strings.TrimSpace(Stringify(v))
	if s == "" {
		return nil, nil
	}
	if tm, err := time.Parse("02/01/2006", s); err == nil {
		return tm.Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s, nil
	}
	return nil, fmt.Errorf("invalid date format: %q", s)
}

// coerceInteger parses to int64, treating empty, "nan" and "none" variants
// as null rather than zero.
func coerceInteger(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	}
	s := strings.ToLower(strings.TrimSpace(Stringify(v)))
	if s == "" || s == "nan" || s == "none" {
		return nil, nil
	}
	// Spreadsheet numerics often arrive as "42.0".
	s = strings.TrimSuffix(s, ".0")
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer: %q", v)
	}
	return i, nil
}

// coerceDecimal parses to float64 with the same null handling as integers.
func coerceDecimal(v interface{}) (interface{}, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	}
	s := strings.ToLower(strings.TrimSpace(Stringify(v)))
	if s == "" || s == "nan" || s == "none" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal: %q", v)
	}
	return f, nil
}

// Stringify renders a raw store or sheet value as the string form bound to
// transformation expressions. Nil becomes the empty string.
func Stringify(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case time.Time:
		return s.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}

package etl

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"etlapi/internal/api/models"
)

// HeaderMapping is one parsed sheet header. A header of the form
// "src, tgt1, tgt2" fans the source column out to several destination
// columns; a plain header maps a column to itself.
type HeaderMapping struct {
	Raw     string
	Source  string
	Targets []string
}

// ParseHeader splits a raw header cell on commas and sanitizes each token.
// The first token is the column created in the mapping table, the remaining
// tokens are its fan-out destinations.
func ParseHeader(raw string) HeaderMapping {
	parts := strings.Split(raw, ",")
	h := HeaderMapping{Raw: raw, Source: SanitizeColumnName(strings.TrimSpace(parts[0]))}
	for _, p := range parts[1:] {
		target := SanitizeColumnName(strings.TrimSpace(p))
		if target != "" {
			h.Targets = append(h.Targets, target)
		}
	}
	return h
}

// BuildResult summarizes one mapping table load.
type BuildResult struct {
	Table           string       `json:"table"`
	RowsLoaded      int          `json:"rowsLoaded"`
	Failures        []RowFailure `json:"failures,omitempty"`
	UnmappedColumns []string     `json:"unmappedColumns,omitempty"`
}

// TableBuilder turns an uploaded sheet into a mapping table in the
// warehouse, creating the table when absent and loading every row with
// fan-out duplication.
type TableBuilder struct {
	store          Store
	logger         zerolog.Logger
	RequiredColumn string
}

func NewTableBuilder(store Store, logger zerolog.Logger) *TableBuilder {
	return &TableBuilder{store: store, logger: logger, RequiredColumn: "tpa_id"}
}

// BuildFromSheet validates the sheet, creates the table if it does not
// already exist and loads the data. Row failures are collected, not fatal.
func (b *TableBuilder) BuildFromSheet(ctx context.Context, table string, sheet *Sheet) (*BuildResult, error) {
	if !IsValidIdentifier(table) {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid table name: %s", table)}
	}
	if len(sheet.Headers) == 0 {
		return nil, &ValidationError{Msg: "sheet has no header row"}
	}

	headers := make([]HeaderMapping, 0, len(sheet.Headers))
	seen := make(map[string]bool)
	hasRequired := false
	for _, raw := range sheet.Headers {
		h := ParseHeader(raw)
		if h.Source == "" || seen[h.Source] {
			continue
		}
		seen[h.Source] = true
		headers = append(headers, h)
		if h.Source == b.RequiredColumn {
			hasRequired = true
		}
	}
	if !hasRequired {
		return nil, &ValidationError{Msg: fmt.Sprintf("sheet is missing required column %q", b.RequiredColumn)}
	}

	known := make(map[string]bool, len(seen))
	for col := range seen {
		known[col] = true
	}
	for _, h := range headers {
		for _, target := range h.Targets {
			known[target] = true
		}
	}

	exists, err := b.store.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := b.createTable(ctx, table, headers, seen); err != nil {
			return nil, err
		}
		b.logger.Info().Str("table", table).Msg("Created mapping table")
	}

	result := &BuildResult{Table: table}
	for i, row := range sheet.Rows {
		if err := b.insertRow(ctx, table, sheet, row, known); err != nil {
			result.Failures = append(result.Failures, RowFailure{
				Row:   rowAsMap(sheet.Headers, row),
				Error: err.Error(),
			})
			b.logger.Warn().Err(err).Int("row", i+2).Str("table", table).Msg("Row load failed")
			continue
		}
		result.RowsLoaded++
	}

	for _, h := range headers {
		if len(h.Targets) == 0 && h.Source != b.RequiredColumn {
			result.UnmappedColumns = append(result.UnmappedColumns, h.Source)
		}
	}
	return result, nil
}

func (b *TableBuilder) createTable(ctx context.Context, table string, headers []HeaderMapping, seen map[string]bool) error {
	dbType := b.store.Dialect()
	var defs []string
	if !seen["mapping_id"] {
		defs = append(defs, "mapping_id "+autoIncrementColumn(dbType))
	}
	made := make(map[string]bool)
	for _, h := range headers {
		made[h.Source] = true
		quoted := QuoteIdentifier(h.Source, dbType)
		if h.Source == b.RequiredColumn {
			defs = append(defs, quoted+" INT NOT NULL")
		} else if h.Source == "mapping_id" {
			defs = append(defs, quoted+" "+autoIncrementColumn(dbType))
		} else {
			defs = append(defs, quoted+" VARCHAR(255)")
		}
	}
	for _, h := range headers {
		for _, target := range h.Targets {
			if made[target] {
				continue
			}
			made[target] = true
			defs = append(defs, QuoteIdentifier(target, dbType)+" VARCHAR(255)")
		}
	}
	defs = append(defs, auditColumns(dbType)...)

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdentifier(table, dbType), strings.Join(defs, ", "))
	_, err := b.store.Exec(ctx, ddl)
	return err
}

func autoIncrementColumn(dbType models.DBType) string {
	switch dbType {
	case models.DBTypePostgres:
		return "SERIAL PRIMARY KEY"
	case models.DBTypeSQLServer:
		return "INT IDENTITY(1,1) PRIMARY KEY"
	default:
		return "INT AUTO_INCREMENT PRIMARY KEY"
	}
}

func auditColumns(dbType models.DBType) []string {
	switch dbType {
	case models.DBTypeMySQL:
		return []string{
			"created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
			"updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP",
		}
	case models.DBTypeSQLServer:
		return []string{
			"created_at DATETIME DEFAULT GETDATE()",
			"updated_at DATETIME DEFAULT GETDATE()",
		}
	default:
		return []string{
			"created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
			"updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP",
		}
	}
}

// insertRow writes one sheet row, duplicating each value into its fan-out
// targets when those targets exist as columns of the table. Empty cells are
// skipped so database defaults apply.
func (b *TableBuilder) insertRow(ctx context.Context, table string, sheet *Sheet, row []string, known map[string]bool) error {
	dbType := b.store.Dialect()
	var cols []string
	var args []interface{}
	used := make(map[string]bool)
	for i, raw := range sheet.Headers {
		h := ParseHeader(raw)
		if h.Source == "" || used[h.Source] {
			continue
		}
		value := strings.TrimSpace(sheet.Cell(row, i))
		if value == "" {
			continue
		}
		used[h.Source] = true
		cols = append(cols, QuoteIdentifier(h.Source, dbType))
		args = append(args, value)
		for _, target := range h.Targets {
			if !known[target] || used[target] {
				continue
			}
			used[target] = true
			cols = append(cols, QuoteIdentifier(target, dbType))
			args = append(args, value)
		}
	}
	if len(cols) == 0 {
		return fmt.Errorf("row has no values")
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(table, dbType),
		strings.Join(cols, ", "),
		Placeholders(dbType, 1, len(args)))
	_, err := b.store.Exec(ctx, query, args...)
	return err
}

func rowAsMap(headers []string, row []string) map[string]interface{} {
	m := make(map[string]interface{}, len(headers))
	for i, h := range headers {
		if i < len(row) {
			m[h] = row[i]
		} else {
			m[h] = ""
		}
	}
	return m
}

package etl

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"etlapi/internal/api/models"
)

// MappedLoader loads a sheet whose columns are renamed through an existing
// mapping table of source_column_name to target_column_name pairs, then
// upserted into the destination table.
type MappedLoader struct {
	store  Store
	logger zerolog.Logger
}

func NewMappedLoader(store Store, logger zerolog.Logger) *MappedLoader {
	return &MappedLoader{store: store, logger: logger}
}

// LoadResult reports a completed mapped load.
type LoadResult struct {
	Message  string       `json:"message"`
	Inserted int          `json:"inserted"`
	Updated  int          `json:"updated"`
	Failed   []RowFailure `json:"failed,omitempty"`
}

// Load reads the column rename pairs from mappingTable, checks the sheet
// declares every source column, then writes each row to targetTable. On
// MySQL the write is an upsert; one affected row counts as a fresh insert,
// two as an update of an existing key. Other dialects fall back to plain
// inserts with per-row failure collection.
func (l *MappedLoader) Load(ctx context.Context, sheet *Sheet, mappingTable, targetTable string) (*LoadResult, error) {
	if !IsValidIdentifier(mappingTable) {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid table name: %s", mappingTable)}
	}
	if !IsValidIdentifier(targetTable) {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid table name: %s", targetTable)}
	}

	renames, err := l.loadRenames(ctx, mappingTable)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, r := range renames {
		if !sheet.HasColumn(r.source) {
			missing = append(missing, r.source)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Msg: fmt.Sprintf("sheet is missing mapped columns: %s", strings.Join(missing, ", "))}
	}

	dbType := l.store.Dialect()
	result := &LoadResult{}
	for i, row := range sheet.Rows {
		affected, err := l.writeRow(ctx, targetTable, renames, sheet, row)
		if err != nil {
			result.Failed = append(result.Failed, RowFailure{
				Row:   rowAsMap(sheet.Headers, row),
				Error: err.Error(),
			})
			l.logger.Warn().Err(err).Int("row", i+2).Str("table", targetTable).Msg("Mapped row load failed")
			continue
		}
		if dbType == models.DBTypeMySQL && affected == 2 {
			result.Updated++
		} else {
			result.Inserted++
		}
	}
	if result.Updated > 0 {
		result.Message = fmt.Sprintf("%d rows inserted, %d rows updated in %s", result.Inserted, result.Updated, targetTable)
	} else {
		result.Message = fmt.Sprintf("%d rows inserted into %s", result.Inserted, targetTable)
	}
	return result, nil
}

type columnRename struct {
	source string
	target string
}

func (l *MappedLoader) loadRenames(ctx context.Context, mappingTable string) ([]columnRename, error) {
	dbType := l.store.Dialect()
	query := fmt.Sprintf("SELECT source_column_name, target_column_name FROM %s",
		QuoteIdentifier(mappingTable, dbType))
	res, err := l.store.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("mapping table %s has no column mappings", mappingTable)}
	}

	var renames []columnRename
	seen := make(map[string]bool)
	for _, row := range res.Rows {
		r := columnRename{
			source: strings.TrimSpace(Stringify(row["source_column_name"])),
			target: SanitizeColumnName(strings.TrimSpace(Stringify(row["target_column_name"]))),
		}
		if r.source == "" || r.target == "" || seen[r.target] {
			continue
		}
		if !IsValidIdentifier(r.target) {
			return nil, &ValidationError{Msg: fmt.Sprintf("invalid target column name: %s", r.target)}
		}
		seen[r.target] = true
		renames = append(renames, r)
	}
	if len(renames) == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("mapping table %s has no usable column mappings", mappingTable)}
	}
	return renames, nil
}

func (l *MappedLoader) writeRow(ctx context.Context, table string, renames []columnRename, sheet *Sheet, row []string) (int64, error) {
	dbType := l.store.Dialect()
	var cols []string
	var args []interface{}
	for _, r := range renames {
		cols = append(cols, QuoteIdentifier(r.target, dbType))
		args = append(args, sheet.Value(row, r.source))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(table, dbType),
		strings.Join(cols, ", "),
		Placeholders(dbType, 1, len(args)))
	if dbType == models.DBTypeMySQL {
		var updates []string
		for _, c := range cols {
			updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", c, c))
		}
		query += " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	}
	return l.store.Exec(ctx, query, args...)
}

package etl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"etlapi/internal/api/models"
)

// DefaultMappingTable is the warehouse table holding column mappings.
const DefaultMappingTable = "mapping_table"

// ProcessRequest describes one transformation run. The date window is
// optional; when set, DateColumn selects the source column it filters on.
type ProcessRequest struct {
	TargetTable string
	StartDate   string
	EndDate     string
	DateColumn  string
}

// BatchResult reports a completed run.
type BatchResult struct {
	Message  string       `json:"message"`
	Inserted int          `json:"inserted"`
	Failed   []RowFailure `json:"failed,omitempty"`
}

// Processor moves rows from a source table into a target table according to
// the mappings declared for the target. Each row is transformed and written
// in its own statement so one bad row never blocks the batch.
type Processor struct {
	store        Store
	transformer  *Transformer
	logger       zerolog.Logger
	MappingTable string
}

func NewProcessor(store Store, logger zerolog.Logger) *Processor {
	return &Processor{
		store:        store,
		transformer:  NewTransformer(logger),
		logger:       logger,
		MappingTable: DefaultMappingTable,
	}
}

// Run executes one processing batch for the requested target table.
func (p *Processor) Run(ctx context.Context, req ProcessRequest) (*BatchResult, error) {
	if !IsValidIdentifier(req.TargetTable) {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid table name: %s", req.TargetTable)}
	}

	mappings, sourceTable, err := p.loadMappings(ctx, req.TargetTable)
	if err != nil {
		return nil, err
	}

	sourceCols, err := p.store.Describe(ctx, sourceTable)
	if err != nil {
		return nil, err
	}
	active := filterMappings(mappings, sourceCols)
	if len(active) == 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf("no mapping for %s matches a column of %s", req.TargetTable, sourceTable)}
	}

	rows, err := p.querySource(ctx, sourceTable, active, req)
	if err != nil {
		return nil, err
	}

	targetCols, err := p.store.Describe(ctx, req.TargetTable)
	if err != nil {
		return nil, err
	}
	schema := NewTargetSchema(targetCols)

	result := &BatchResult{}
	for _, row := range rows {
		transformed, err := p.transformer.TransformRow(row, active, schema)
		if err == nil {
			err = p.insert(ctx, req.TargetTable, transformed)
		}
		if err != nil {
			result.Failed = append(result.Failed, RowFailure{Row: row, Error: err.Error()})
			continue
		}
		result.Inserted++
	}
	result.Message = fmt.Sprintf("%d rows inserted into %s", result.Inserted, req.TargetTable)
	p.logger.Info().
		Str("table", req.TargetTable).
		Int("inserted", result.Inserted).
		Int("failed", len(result.Failed)).
		Msg("Processing run finished")
	return result, nil
}

// loadMappings reads the mapping rows for a target table and enforces the
// single-source-table rule.
func (p *Processor) loadMappings(ctx context.Context, targetTable string) ([]ColumnMapping, string, error) {
	dbType := p.store.Dialect()
	query := fmt.Sprintf(
		"SELECT source_table, source_column, target_column, transformation_logic FROM %s WHERE target_table = %s",
		QuoteIdentifier(p.MappingTable, dbType), Placeholder(dbType, 1))
	res, err := p.store.Query(ctx, query, targetTable)
	if err != nil {
		return nil, "", err
	}
	if len(res.Rows) == 0 {
		return nil, "", &ConfigError{Msg: fmt.Sprintf("no mappings declared for target table %s", targetTable)}
	}

	var mappings []ColumnMapping
	sourceTable := ""
	for _, row := range res.Rows {
		m := ColumnMapping{
			SourceTable:         Stringify(row["source_table"]),
			SourceColumn:        Stringify(row["source_column"]),
			TargetTable:         targetTable,
			TargetColumn:        Stringify(row["target_column"]),
			TransformationLogic: Stringify(row["transformation_logic"]),
		}
		if m.SourceTable == "" || m.SourceColumn == "" {
			continue
		}
		if sourceTable == "" {
			sourceTable = m.SourceTable
		} else if !strings.EqualFold(sourceTable, m.SourceTable) {
			return nil, "", &ConfigError{Msg: fmt.Sprintf(
				"target table %s is mapped from several source tables (%s, %s)", targetTable, sourceTable, m.SourceTable)}
		}
		mappings = append(mappings, m)
	}
	if sourceTable == "" {
		return nil, "", &ConfigError{Msg: fmt.Sprintf("no usable mappings for target table %s", targetTable)}
	}
	if !IsValidIdentifier(sourceTable) {
		return nil, "", &ValidationError{Msg: fmt.Sprintf("invalid source table name: %s", sourceTable)}
	}
	return mappings, sourceTable, nil
}

// filterMappings keeps mappings whose source column actually exists in the
// live source table and whose target column is set.
func filterMappings(mappings []ColumnMapping, sourceCols []Column) []ColumnMapping {
	var out []ColumnMapping
	for _, m := range mappings {
		if m.TargetColumn == "" {
			continue
		}
		for _, c := range sourceCols {
			if strings.EqualFold(c.Name, m.SourceColumn) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// querySource selects only the mapped columns, with an optional date window
// bound as parameters.
func (p *Processor) querySource(ctx context.Context, sourceTable string, mappings []ColumnMapping, req ProcessRequest) ([]map[string]interface{}, error) {
	dbType := p.store.Dialect()
	var cols []string
	seen := make(map[string]bool)
	for _, m := range mappings {
		lower := strings.ToLower(m.SourceColumn)
		if seen[lower] {
			continue
		}
		if !IsValidIdentifier(m.SourceColumn) {
			return nil, &ValidationError{Msg: fmt.Sprintf("invalid source column name: %s", m.SourceColumn)}
		}
		seen[lower] = true
		cols = append(cols, QuoteIdentifier(m.SourceColumn, dbType))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), QuoteIdentifier(sourceTable, dbType))
	var args []interface{}
	if req.StartDate != "" || req.EndDate != "" {
		if req.DateColumn == "" {
			return nil, &ValidationError{Msg: "a date window requires a date column"}
		}
		if !IsValidIdentifier(req.DateColumn) {
			return nil, &ValidationError{Msg: fmt.Sprintf("invalid date column name: %s", req.DateColumn)}
		}
		expr := dateExpr(req.DateColumn, dbType)
		var conds []string
		if req.StartDate != "" {
			conds = append(conds, fmt.Sprintf("%s >= %s", expr, Placeholder(dbType, len(args)+1)))
			args = append(args, req.StartDate)
		}
		if req.EndDate != "" {
			conds = append(conds, fmt.Sprintf("%s <= %s", expr, Placeholder(dbType, len(args)+1)))
			args = append(args, req.EndDate)
		}
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	res, err := p.store.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// dateExpr truncates a timestamp column to its date part for window
// comparison.
func dateExpr(col string, dbType models.DBType) string {
	quoted := QuoteIdentifier(col, dbType)
	if dbType == models.DBTypeMySQL {
		return fmt.Sprintf("DATE(%s)", quoted)
	}
	return fmt.Sprintf("CAST(%s AS DATE)", quoted)
}

func (p *Processor) insert(ctx context.Context, table string, row map[string]interface{}) error {
	dbType := p.store.Dialect()
	var cols []string
	var args []interface{}
	for _, c := range orderedKeys(row) {
		cols = append(cols, QuoteIdentifier(c, dbType))
		args = append(args, row[c])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdentifier(table, dbType),
		strings.Join(cols, ", "),
		Placeholders(dbType, 1, len(args)))
	_, err := p.store.Exec(ctx, query, args...)
	return err
}

func orderedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"etlapi/internal/api/models"
)

// Column is one column of a described table, in ordinal position order.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
}

// Result holds a fully materialized query result. Columns preserves the
// projection order; Rows maps column name to the scanned value.
type Result struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Store is the warehouse collaborator the pipeline runs against. Identifiers
// interpolated into statements must be validated with IsValidIdentifier
// beforehand; values are always passed as bound parameters.
type Store interface {
	Describe(ctx context.Context, table string) ([]Column, error)
	Query(ctx context.Context, query string, args ...interface{}) (*Result, error)
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)
	TableExists(ctx context.Context, table string) (bool, error)
	ListTables(ctx context.Context, pattern string) ([]string, error)
	Dialect() models.DBType
	Close() error
}

// SQLStore implements Store over database/sql with the driver picked from the
// connection config. One SQLStore is opened per service call and closed when
// the call returns.
type SQLStore struct {
	db     *sql.DB
	dbType models.DBType
}

// OpenStore opens and pings a warehouse connection.
func OpenStore(cfg models.DBConnectionConfig) (*SQLStore, error) {
	db, err := sql.Open(cfg.GetDriverName(), cfg.BuildConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	db.SetConnMaxLifetime(30 * time.Second)
	db.SetMaxOpenConns(2)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLStore{db: db, dbType: cfg.Type}, nil
}

func (s *SQLStore) Dialect() models.DBType {
	return s.dbType
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Describe returns the columns of a table in ordinal position order. The
// table name is bound as a value, never interpolated.
func (s *SQLStore) Describe(ctx context.Context, table string) ([]Column, error) {
	var query string
	switch s.dbType {
	case models.DBTypeMySQL:
		query = `
			SELECT column_name, data_type
			FROM information_schema.columns
			WHERE table_schema = DATABASE() AND table_name = ?
			ORDER BY ordinal_position`
	case models.DBTypeSQLServer:
		query = `
			SELECT c.name, t.name
			FROM sys.columns c
			JOIN sys.types t ON c.user_type_id = t.user_type_id
			JOIN sys.tables tbl ON c.object_id = tbl.object_id
			WHERE tbl.name = @p1
			ORDER BY c.column_id`
	default:
		query = `
			SELECT column_name, data_type
			FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1
			ORDER BY ordinal_position`
	}

	rows, err := s.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", table, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	if len(columns) == 0 {
		return nil, &NotFoundError{Table: table}
	}
	return columns, nil
}

// Query runs a read-only statement and materializes every row.
func (s *SQLStore) Query(ctx context.Context, query string, args ...interface{}) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Exec runs a statement and returns the number of affected rows.
func (s *SQLStore) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// TableExists checks the information schema for a table of that name.
func (s *SQLStore) TableExists(ctx context.Context, table string) (bool, error) {
	var query string
	switch s.dbType {
	case models.DBTypeMySQL:
		query = `
			SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name = ?`
	case models.DBTypeSQLServer:
		query = `SELECT COUNT(*) FROM sys.tables WHERE name = @p1`
	default:
		query = `
			SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1`
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, table).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return count > 0, nil
}

// ListTables returns table names matching a LIKE pattern.
func (s *SQLStore) ListTables(ctx context.Context, pattern string) ([]string, error) {
	var query string
	switch s.dbType {
	case models.DBTypeMySQL:
		query = `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_name LIKE ?
			ORDER BY table_name`
	case models.DBTypeSQLServer:
		query = `SELECT name FROM sys.tables WHERE name LIKE @p1 ORDER BY name`
	default:
		query = `
			SELECT table_name
			FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name LIKE $1
			ORDER BY table_name`
	}

	rows, err := s.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Placeholder returns the bind placeholder for position n (1-based) in the
// given dialect.
func Placeholder(dbType models.DBType, n int) string {
	switch dbType {
	case models.DBTypeMySQL:
		return "?"
	case models.DBTypeSQLServer:
		return fmt.Sprintf("@p%d", n)
	default:
		return fmt.Sprintf("$%d", n)
	}
}

// Placeholders returns a comma-joined placeholder list for count values
// starting at position start.
func Placeholders(dbType models.DBType, start, count int) string {
	parts := make([]string, count)
	for i := 0; i < count; i++ {
		parts[i] = Placeholder(dbType, start+i)
	}
	return strings.Join(parts, ", ")
}

// scanRows reads all rows into a Result, converting []byte to string so
// values survive JSON serialization.
func scanRows(rows *sql.Rows) (*Result, error) {
	colNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get column names: %w", err)
	}

	var result []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(colNames))
		valuePtrs := make([]interface{}, len(colNames))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]interface{}, len(colNames))
		for i, col := range colNames {
			val := values[i]
			if b, ok := val.([]byte); ok {
				val = string(b)
			}
			row[col] = val
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &Result{Columns: colNames, Rows: result}, nil
}

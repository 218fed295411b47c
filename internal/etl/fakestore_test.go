package etl

import (
	"context"
	"fmt"
	"strings"

	"etlapi/internal/api/models"
)

// fakeStore is an in-memory Store for pipeline tests. Describe and Query
// answers are canned per table or query substring; every Exec is recorded
// and can be made to fail selectively.
type fakeStore struct {
	dialect     models.DBType
	tables      map[string][]Column
	queryRows   map[string][]map[string]interface{}
	queries     []recordedExec
	execs       []recordedExec
	execErr     func(query string, args []interface{}) error
	execAffects int64
}

type recordedExec struct {
	query string
	args  []interface{}
}

func newFakeStore(dialect models.DBType) *fakeStore {
	return &fakeStore{
		dialect:     dialect,
		tables:      make(map[string][]Column),
		queryRows:   make(map[string][]map[string]interface{}),
		execAffects: 1,
	}
}

func (f *fakeStore) Describe(_ context.Context, table string) ([]Column, error) {
	cols, ok := f.tables[table]
	if !ok {
		return nil, &NotFoundError{Table: table}
	}
	return cols, nil
}

func (f *fakeStore) Query(_ context.Context, query string, args ...interface{}) (*Result, error) {
	f.queries = append(f.queries, recordedExec{query: query, args: args})
	for needle, rows := range f.queryRows {
		if strings.Contains(query, needle) {
			return &Result{Rows: rows}, nil
		}
	}
	return &Result{}, nil
}

func (f *fakeStore) Exec(_ context.Context, query string, args ...interface{}) (int64, error) {
	if f.execErr != nil {
		if err := f.execErr(query, args); err != nil {
			return 0, err
		}
	}
	f.execs = append(f.execs, recordedExec{query: query, args: args})
	return f.execAffects, nil
}

func (f *fakeStore) TableExists(_ context.Context, table string) (bool, error) {
	_, ok := f.tables[table]
	return ok, nil
}

func (f *fakeStore) ListTables(_ context.Context, pattern string) ([]string, error) {
	like := strings.Trim(pattern, "%")
	var out []string
	for name := range f.tables {
		if like == "" || strings.Contains(name, like) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (f *fakeStore) Dialect() models.DBType { return f.dialect }

func (f *fakeStore) Close() error { return nil }

// execsMatching returns the recorded statements containing the substring.
func (f *fakeStore) execsMatching(needle string) []recordedExec {
	var out []recordedExec
	for _, e := range f.execs {
		if strings.Contains(e.query, needle) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeStore) queriesMatching(needle string) []recordedExec {
	var out []recordedExec
	for _, q := range f.queries {
		if strings.Contains(q.query, needle) {
			out = append(out, q)
		}
	}
	return out
}

func failRowWithValue(value string) func(string, []interface{}) error {
	return func(query string, args []interface{}) error {
		if !strings.HasPrefix(query, "INSERT") {
			return nil
		}
		for _, a := range args {
			if fmt.Sprintf("%v", a) == value {
				return fmt.Errorf("duplicate key value %q", value)
			}
		}
		return nil
	}
}

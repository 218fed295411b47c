package etl

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlapi/internal/api/models"
)

func mappingRow(sourceTable, sourceCol, targetCol, logic string) map[string]interface{} {
	return map[string]interface{}{
		"source_table":         sourceTable,
		"source_column":        sourceCol,
		"target_column":        targetCol,
		"transformation_logic": logic,
	}
}

func processorFixture() *fakeStore {
	store := newFakeStore(models.DBTypeMySQL)
	store.tables["staging_claims"] = []Column{
		{Name: "tpa", DataType: "varchar"},
		{Name: "amount", DataType: "varchar"},
		{Name: "dos", DataType: "varchar"},
	}
	store.tables["claims"] = []Column{
		{Name: "tpa_id", DataType: "int"},
		{Name: "claim_amount", DataType: "decimal(10,2)"},
		{Name: "service_date", DataType: "date"},
	}
	store.queryRows["FROM `mapping_table`"] = []map[string]interface{}{
		mappingRow("staging_claims", "tpa", "tpa_id", ""),
		mappingRow("staging_claims", "amount", "claim_amount", ""),
		mappingRow("staging_claims", "dos", "service_date", ""),
	}
	return store
}

func sourceRow(tpa, amount, dos string) map[string]interface{} {
	return map[string]interface{}{"tpa": tpa, "amount": amount, "dos": dos}
}

func TestProcessorRunInsertsTransformedRows(t *testing.T) {
	store := processorFixture()
	store.queryRows["FROM `staging_claims`"] = []map[string]interface{}{
		sourceRow("1", "100.50", "25/12/2024"),
		sourceRow("2", "75", "2024-11-02"),
	}

	p := NewProcessor(store, zerolog.Nop())
	result, err := p.Run(context.Background(), ProcessRequest{TargetTable: "claims"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Empty(t, result.Failed)
	assert.Equal(t, "2 rows inserted into claims", result.Message)

	inserts := store.execsMatching("INSERT INTO `claims`")
	require.Len(t, inserts, 2)
	// Columns are inserted in deterministic order.
	assert.Contains(t, inserts[0].query, "`claim_amount`, `service_date`, `tpa_id`")
	assert.Equal(t, []interface{}{100.50, "2024-12-25", int64(1)}, inserts[0].args)
}

func TestProcessorRunPartialFailure(t *testing.T) {
	store := processorFixture()
	var rows []map[string]interface{}
	for i := 1; i <= 10; i++ {
		dos := "25/12/2024"
		if i == 4 {
			dos = "not a date"
		}
		rows = append(rows, sourceRow(fmt.Sprintf("%d", i), "10", dos))
	}
	store.queryRows["FROM `staging_claims`"] = rows

	p := NewProcessor(store, zerolog.Nop())
	result, err := p.Run(context.Background(), ProcessRequest{TargetTable: "claims"})
	require.NoError(t, err)
	assert.Equal(t, 9, result.Inserted)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "4", result.Failed[0].Row["tpa"])
	assert.Contains(t, result.Failed[0].Error, "service_date")
}

func TestProcessorRunInsertFailureCollected(t *testing.T) {
	store := processorFixture()
	store.queryRows["FROM `staging_claims`"] = []map[string]interface{}{
		sourceRow("1", "10", "25/12/2024"),
		sourceRow("99", "10", "25/12/2024"),
	}
	store.execErr = failRowWithValue("99")

	p := NewProcessor(store, zerolog.Nop())
	result, err := p.Run(context.Background(), ProcessRequest{TargetTable: "claims"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Error, "duplicate key")
}

func TestProcessorRunNoMappings(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	p := NewProcessor(store, zerolog.Nop())

	_, err := p.Run(context.Background(), ProcessRequest{TargetTable: "claims"})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestProcessorRunMixedSourceTables(t *testing.T) {
	store := processorFixture()
	store.queryRows["FROM `mapping_table`"] = []map[string]interface{}{
		mappingRow("staging_claims", "tpa", "tpa_id", ""),
		mappingRow("other_staging", "amount", "claim_amount", ""),
	}

	p := NewProcessor(store, zerolog.Nop())
	_, err := p.Run(context.Background(), ProcessRequest{TargetTable: "claims"})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Msg, "several source tables")
}

func TestProcessorRunDropsMappingsWithoutSourceColumn(t *testing.T) {
	store := processorFixture()
	store.queryRows["FROM `mapping_table`"] = []map[string]interface{}{
		mappingRow("staging_claims", "tpa", "tpa_id", ""),
		mappingRow("staging_claims", "missing_col", "claim_amount", ""),
		mappingRow("staging_claims", "amount", "", ""),
	}
	store.queryRows["FROM `staging_claims`"] = []map[string]interface{}{
		{"tpa": "1"},
	}

	p := NewProcessor(store, zerolog.Nop())
	result, err := p.Run(context.Background(), ProcessRequest{TargetTable: "claims"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	inserts := store.execsMatching("INSERT INTO `claims`")
	require.Len(t, inserts, 1)
	assert.Equal(t, "INSERT INTO `claims` (`tpa_id`) VALUES (?)", inserts[0].query)
}

func TestProcessorRunDateWindow(t *testing.T) {
	store := processorFixture()
	p := NewProcessor(store, zerolog.Nop())

	_, err := p.Run(context.Background(), ProcessRequest{
		TargetTable: "claims",
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-31",
		DateColumn:  "dos",
	})
	require.NoError(t, err)

	queries := store.queriesMatching("FROM `staging_claims`")
	require.Len(t, queries, 1)
	assert.Contains(t, queries[0].query, "WHERE DATE(`dos`) >= ? AND DATE(`dos`) <= ?")
	assert.Equal(t, []interface{}{"2024-01-01", "2024-01-31"}, queries[0].args)
}

func TestProcessorRunDateWindowSingleBound(t *testing.T) {
	tests := []struct {
		name  string
		req   ProcessRequest
		where string
		args  []interface{}
	}{
		{
			name:  "StartOnly",
			req:   ProcessRequest{TargetTable: "claims", StartDate: "2024-01-01", DateColumn: "dos"},
			where: "WHERE DATE(`dos`) >= ?",
			args:  []interface{}{"2024-01-01"},
		},
		{
			name:  "EndOnly",
			req:   ProcessRequest{TargetTable: "claims", EndDate: "2024-01-31", DateColumn: "dos"},
			where: "WHERE DATE(`dos`) <= ?",
			args:  []interface{}{"2024-01-31"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := processorFixture()
			p := NewProcessor(store, zerolog.Nop())

			_, err := p.Run(context.Background(), tt.req)
			require.NoError(t, err)

			queries := store.queriesMatching("FROM `staging_claims`")
			require.Len(t, queries, 1)
			assert.Contains(t, queries[0].query, tt.where)
			assert.Equal(t, tt.args, queries[0].args)
		})
	}
}

func TestProcessorRunDateWindowWithoutColumn(t *testing.T) {
	p := NewProcessor(processorFixture(), zerolog.Nop())

	_, err := p.Run(context.Background(), ProcessRequest{
		TargetTable: "claims",
		StartDate:   "2024-01-01",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "date column")
}

func TestProcessorRunRejectsBadTableName(t *testing.T) {
	p := NewProcessor(newFakeStore(models.DBTypeMySQL), zerolog.Nop())
	_, err := p.Run(context.Background(), ProcessRequest{TargetTable: "x; DELETE FROM y"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestProcessorRunSourceTableMissing(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	store.queryRows["FROM `mapping_table`"] = []map[string]interface{}{
		mappingRow("gone_table", "a", "b", ""),
	}

	p := NewProcessor(store, zerolog.Nop())
	_, err := p.Run(context.Background(), ProcessRequest{TargetTable: "claims"})
	var nerr *NotFoundError
	require.ErrorAs(t, err, &nerr)
}

package etl

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlapi/internal/api/models"
)

func renameRow(source, target string) map[string]interface{} {
	return map[string]interface{}{
		"source_column_name": source,
		"target_column_name": target,
	}
}

func TestMappedLoadUpsertsOnMySQL(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	store.queryRows["FROM `claims_mapping`"] = []map[string]interface{}{
		renameRow("TPA ID", "tpa_id"),
		renameRow("Amount", "claim_amount"),
	}
	sheet := &Sheet{
		Headers: []string{"TPA ID", "Amount"},
		Rows:    [][]string{{"1", "100"}, {"2", "200"}},
	}

	l := NewMappedLoader(store, zerolog.Nop())
	result, err := l.Load(context.Background(), sheet, "claims_mapping", "claims")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, "2 rows inserted into claims", result.Message)

	inserts := store.execsMatching("INSERT INTO `claims`")
	require.Len(t, inserts, 2)
	assert.Contains(t, inserts[0].query, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, inserts[0].query, "`tpa_id` = VALUES(`tpa_id`)")
	assert.Equal(t, []interface{}{"1", "100"}, inserts[0].args)
}

func TestMappedLoadCountsUpdates(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	// MySQL reports two affected rows when an existing key was updated.
	store.execAffects = 2
	store.queryRows["FROM `claims_mapping`"] = []map[string]interface{}{
		renameRow("TPA ID", "tpa_id"),
	}
	sheet := &Sheet{Headers: []string{"TPA ID"}, Rows: [][]string{{"1"}}}

	l := NewMappedLoader(store, zerolog.Nop())
	result, err := l.Load(context.Background(), sheet, "claims_mapping", "claims")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "0 rows inserted, 1 rows updated in claims", result.Message)
}

func TestMappedLoadPlainInsertOnPostgres(t *testing.T) {
	store := newFakeStore(models.DBTypePostgres)
	store.queryRows[`FROM "claims_mapping"`] = []map[string]interface{}{
		renameRow("TPA ID", "tpa_id"),
	}
	sheet := &Sheet{Headers: []string{"TPA ID"}, Rows: [][]string{{"1"}}}

	l := NewMappedLoader(store, zerolog.Nop())
	result, err := l.Load(context.Background(), sheet, "claims_mapping", "claims")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	inserts := store.execsMatching(`INSERT INTO "claims"`)
	require.Len(t, inserts, 1)
	assert.NotContains(t, inserts[0].query, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, inserts[0].query, "$1")
}

func TestMappedLoadMissingSheetColumns(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	store.queryRows["FROM `claims_mapping`"] = []map[string]interface{}{
		renameRow("TPA ID", "tpa_id"),
		renameRow("Ghost Column", "ghost"),
	}
	sheet := &Sheet{Headers: []string{"TPA ID"}}

	l := NewMappedLoader(store, zerolog.Nop())
	_, err := l.Load(context.Background(), sheet, "claims_mapping", "claims")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "Ghost Column")
}

func TestMappedLoadEmptyMappingTable(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	sheet := &Sheet{Headers: []string{"TPA ID"}}

	l := NewMappedLoader(store, zerolog.Nop())
	_, err := l.Load(context.Background(), sheet, "claims_mapping", "claims")
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}

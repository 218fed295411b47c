package etl

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlapi/internal/api/models"
)

func TestParseHeader(t *testing.T) {
	h := ParseHeader("Claim Amount, paid_amount, billed_amount")
	assert.Equal(t, "claim_amount", h.Source)
	assert.Equal(t, []string{"paid_amount", "billed_amount"}, h.Targets)

	h = ParseHeader("tpa_id")
	assert.Equal(t, "tpa_id", h.Source)
	assert.Empty(t, h.Targets)
}

func TestBuildFromSheetRequiresColumn(t *testing.T) {
	b := NewTableBuilder(newFakeStore(models.DBTypeMySQL), zerolog.Nop())
	sheet := &Sheet{Headers: []string{"member_name", "amount"}, Rows: nil}

	_, err := b.BuildFromSheet(context.Background(), "claims_mapping", sheet)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "tpa_id")
}

func TestBuildFromSheetRejectsBadTableName(t *testing.T) {
	b := NewTableBuilder(newFakeStore(models.DBTypeMySQL), zerolog.Nop())
	sheet := &Sheet{Headers: []string{"tpa_id"}}

	_, err := b.BuildFromSheet(context.Background(), "claims; DROP TABLE x", sheet)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBuildFromSheetCreatesTableAndLoadsRows(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	b := NewTableBuilder(store, zerolog.Nop())
	sheet := &Sheet{
		Headers: []string{"TPA ID", "Member Name", "Amount, paid_amount"},
		Rows: [][]string{
			{"1", "Jane", "100"},
			{"2", "John", ""},
		},
	}

	result, err := b.BuildFromSheet(context.Background(), "claims_mapping", sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsLoaded)
	assert.Empty(t, result.Failures)

	creates := store.execsMatching("CREATE TABLE")
	require.Len(t, creates, 1)
	ddl := creates[0].query
	assert.Contains(t, ddl, "`claims_mapping`")
	assert.Contains(t, ddl, "mapping_id INT AUTO_INCREMENT PRIMARY KEY")
	assert.Contains(t, ddl, "`tpa_id` INT NOT NULL")
	assert.Contains(t, ddl, "`member_name` VARCHAR(255)")
	assert.Contains(t, ddl, "`amount` VARCHAR(255)")
	assert.Contains(t, ddl, "created_at")
	assert.Contains(t, ddl, "updated_at")

	inserts := store.execsMatching("INSERT INTO")
	require.Len(t, inserts, 2)
	// Second row's empty amount cell is skipped so the default applies.
	assert.Len(t, inserts[1].args, 2)
}

func TestBuildFromSheetSkipsCreateWhenTableExists(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	store.tables["claims_mapping"] = []Column{{Name: "tpa_id", DataType: "int"}}
	b := NewTableBuilder(store, zerolog.Nop())
	sheet := &Sheet{Headers: []string{"tpa_id"}, Rows: [][]string{{"1"}}}

	_, err := b.BuildFromSheet(context.Background(), "claims_mapping", sheet)
	require.NoError(t, err)
	assert.Empty(t, store.execsMatching("CREATE TABLE"))
	assert.Len(t, store.execsMatching("INSERT INTO"), 1)
}

func TestBuildFromSheetFanOutDuplicatesValue(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	b := NewTableBuilder(store, zerolog.Nop())
	// Neither target is a standalone header; both must still become
	// columns and receive the source value.
	sheet := &Sheet{
		Headers: []string{"tpa_id", "phone, mobile, contact"},
		Rows:    [][]string{{"1", "555-1234"}},
	}

	result, err := b.BuildFromSheet(context.Background(), "claims_mapping", sheet)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsLoaded)

	creates := store.execsMatching("CREATE TABLE")
	require.Len(t, creates, 1)
	assert.Contains(t, creates[0].query, "`mobile` VARCHAR(255)")
	assert.Contains(t, creates[0].query, "`contact` VARCHAR(255)")

	inserts := store.execsMatching("INSERT INTO")
	require.Len(t, inserts, 1)
	assert.Contains(t, inserts[0].query, "`phone`")
	assert.Contains(t, inserts[0].query, "`mobile`")
	assert.Contains(t, inserts[0].query, "`contact`")
	assert.Equal(t, []interface{}{"1", "555-1234", "555-1234", "555-1234"}, inserts[0].args)
}

func TestBuildFromSheetFanOutTargetAlsoHeader(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	b := NewTableBuilder(store, zerolog.Nop())
	// paid_amount is also a declared column; it must appear once in the
	// DDL and the fan-out fills it only when its own cell is empty.
	sheet := &Sheet{
		Headers: []string{"tpa_id", "amount, paid_amount", "paid_amount"},
		Rows:    [][]string{{"1", "250", ""}},
	}

	result, err := b.BuildFromSheet(context.Background(), "claims_mapping", sheet)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowsLoaded)

	creates := store.execsMatching("CREATE TABLE")
	require.Len(t, creates, 1)
	assert.Equal(t, 1, strings.Count(creates[0].query, "`paid_amount`"))

	inserts := store.execsMatching("INSERT INTO")
	require.Len(t, inserts, 1)
	assert.Contains(t, inserts[0].query, "`amount`")
	assert.Contains(t, inserts[0].query, "`paid_amount`")
	assert.Equal(t, []interface{}{"1", "250", "250"}, inserts[0].args)
}

func TestBuildFromSheetCollectsRowFailures(t *testing.T) {
	store := newFakeStore(models.DBTypeMySQL)
	store.execErr = failRowWithValue("boom")
	b := NewTableBuilder(store, zerolog.Nop())
	sheet := &Sheet{
		Headers: []string{"tpa_id", "member_name"},
		Rows:    [][]string{{"1", "ok"}, {"2", "boom"}, {"3", "ok"}},
	}

	result, err := b.BuildFromSheet(context.Background(), "claims_mapping", sheet)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsLoaded)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Error, "boom")
}

func TestBuildFromSheetReportsUnmappedColumns(t *testing.T) {
	b := NewTableBuilder(newFakeStore(models.DBTypePostgres), zerolog.Nop())
	sheet := &Sheet{Headers: []string{"tpa_id", "notes", "amount, paid_amount"}}

	result, err := b.BuildFromSheet(context.Background(), "claims_mapping", sheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes"}, result.UnmappedColumns)
}

func TestAutoIncrementColumnPerDialect(t *testing.T) {
	assert.Equal(t, "SERIAL PRIMARY KEY", autoIncrementColumn(models.DBTypePostgres))
	assert.Equal(t, "INT IDENTITY(1,1) PRIMARY KEY", autoIncrementColumn(models.DBTypeSQLServer))
	assert.Equal(t, "INT AUTO_INCREMENT PRIMARY KEY", autoIncrementColumn(models.DBTypeMySQL))
}

package etl

import "fmt"

// ConfigError reports broken or missing mapping metadata. It aborts a
// processing run before any row is touched.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// ValidationError reports an uploaded sheet that cannot be staged, e.g. a
// required identifying column is absent.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NotFoundError reports a table that does not exist in the warehouse.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %q does not exist", e.Table)
}

// RowFailure records a single row that could not be transformed or inserted.
// Failures are collected per batch and never abort the remaining rows.
type RowFailure struct {
	Row   map[string]interface{} `json:"row"`
	Error string                 `json:"error"`
}

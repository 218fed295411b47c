package etl

import (
	"fmt"
	"regexp"
	"strings"

	"etlapi/internal/api/models"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// SanitizeColumnName normalizes a free-text label into a valid lower-case SQL
// identifier: every character outside [A-Za-z0-9] becomes an underscore and a
// leading digit gets a "col_" prefix. Pure and deterministic; two distinct
// labels may sanitize to the same identifier.
func SanitizeColumnName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	sanitized := b.String()
	if sanitized == "" {
		return sanitized
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "col_" + sanitized
	}
	return strings.ToLower(sanitized)
}

// IsValidIdentifier reports whether s is safe to interpolate into a statement
// as a table or column identifier. Only alphanumeric, underscore, and the
// schema.table form are allowed.
func IsValidIdentifier(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	return identifierPattern.MatchString(s)
}

// QuoteIdentifier quotes an identifier for the given warehouse dialect.
func QuoteIdentifier(name string, dbType models.DBType) string {
	switch dbType {
	case models.DBTypeSQLServer:
		return fmt.Sprintf("[%s]", name)
	case models.DBTypeMySQL:
		return fmt.Sprintf("`%s`", name)
	default:
		return fmt.Sprintf(`"%s"`, name)
	}
}

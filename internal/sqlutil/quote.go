// Package sqlutil provides small SQL text helpers shared by the store layer.
package sqlutil

import (
	"regexp"
	"strings"
)

// safeIdentifier is the whitelist pattern every type name and primitive
// field name must match before it can be interpolated into a CREATE TABLE
// or column reference. This is the only place identifier interpolation
// happens; every other value flows through parameter bindings.
var safeIdentifier = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// IsSafeIdentifier reports whether name is safe to interpolate directly
// into SQL DDL/DML text.
func IsSafeIdentifier(name string) bool {
	return name != "" && safeIdentifier.MatchString(name)
}

// QuoteIdentifier quotes a SQL identifier (table name, column name) with
// double quotes, escaping any embedded double quotes. Callers must still
// validate the identifier with IsSafeIdentifier first; quoting alone does
// not make an untrusted identifier safe to interpolate.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, `"`, `""`)
	return `"` + escaped + `"`
}

// DataTableName returns the per-type primitive table name for a given
// Object type name, e.g. "Issue" -> "data_Issue".
func DataTableName(typeName string) string {
	return "data_" + typeName
}

package store

import (
	"fmt"
	"strings"

	"graphmirror/internal/sqlutil"
)

// structuralDDL creates the fixed tables every store has regardless of
// schema: meta, updates, objects, links, connections, connection_entries,
// plus the indexes spec.md §4.3 names explicitly. It is safe to run
// unconditionally; every statement is idempotent ("IF NOT EXISTS").
const structuralDDL = `
CREATE TABLE IF NOT EXISTS meta (
	zero INTEGER PRIMARY KEY,
	schema TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS updates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	time_epoch_millis INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS objects (
	id TEXT PRIMARY KEY,
	typename TEXT NOT NULL,
	last_update INTEGER REFERENCES updates(id)
);

CREATE TABLE IF NOT EXISTS links (
	parent_id TEXT NOT NULL REFERENCES objects(id),
	fieldname TEXT NOT NULL,
	child_id TEXT REFERENCES objects(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_links_parent_field ON links(parent_id, fieldname);

CREATE TABLE IF NOT EXISTS connections (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	object_id TEXT NOT NULL REFERENCES objects(id),
	fieldname TEXT NOT NULL,
	last_update INTEGER REFERENCES updates(id),
	total_count INTEGER,
	has_next_page INTEGER,
	end_cursor TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_connections_object_field ON connections(object_id, fieldname);

CREATE TABLE IF NOT EXISTS connection_entries (
	connection_id INTEGER NOT NULL REFERENCES connections(id),
	idx INTEGER NOT NULL,
	child_id TEXT NOT NULL REFERENCES objects(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_connection_entries_conn_idx ON connection_entries(connection_id, idx);
CREATE INDEX IF NOT EXISTS idx_connection_entries_connection ON connection_entries(connection_id);
`

// dataTableDDL builds the "CREATE TABLE IF NOT EXISTS data_T (...)"
// statement for one Object type's primitive fields. typeName and every
// fieldName must already be validated against the safe identifier
// pattern by the caller (Bootstrap) before this is called; this function
// does not re-validate, since identifier interpolation is only ever safe
// immediately after that check.
func dataTableDDL(typeName string, fieldNames []string) string {
	table := sqlutil.DataTableName(typeName)
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\tid TEXT PRIMARY KEY REFERENCES objects(id)", sqlutil.QuoteIdentifier(table))
	for _, f := range fieldNames {
		fmt.Fprintf(&b, ",\n\t%s", sqlutil.QuoteIdentifier(f))
	}
	b.WriteString("\n);")
	return b.String()
}

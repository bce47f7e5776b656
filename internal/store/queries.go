// Package store implements the on-disk relational layout described in
// spec.md §3–§4.3 and the low-level CRUD primitives internal/mirror
// orchestrates into the higher-level registerObject/findOutdated/
// updateConnection operations. DDL text follows the pack's house style of
// raw "CREATE TABLE IF NOT EXISTS" strings; all runtime CRUD is built with
// github.com/Masterminds/squirrel for parameter-bound, composable
// statements, the same use of squirrel as a SQL builder found elsewhere in
// this codebase.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"graphmirror/internal/dbexec"
	"graphmirror/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func scanRows(ctx context.Context, exec dbexec.QueryExecutor, query string, args []interface{}, scan func(dbexec.Rows) error) error {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	if err := scan(rows); err != nil {
		return err
	}
	return rows.Err()
}

// InsertUpdate inserts a row into updates with the given epoch-millisecond
// timestamp and returns its assigned id. Every call yields a distinct id,
// even with a duplicate timestamp (spec.md §4.4).
func InsertUpdate(ctx context.Context, exec dbexec.QueryExecutor, timestampMillis int64) (int64, error) {
	query, args, err := builder().Insert("updates").Columns("time_epoch_millis").Values(timestampMillis).ToSql()
	if err != nil {
		return 0, err
	}
	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ObjectRow is a row of the objects table.
type ObjectRow struct {
	ID         string
	Typename   string
	LastUpdate sql.NullInt64
}

// GetObject looks up an object by id. found is false if no such row exists.
func GetObject(ctx context.Context, exec dbexec.QueryExecutor, id string) (row ObjectRow, found bool, err error) {
	query, args, err := builder().Select("id", "typename", "last_update").From("objects").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return ObjectRow{}, false, err
	}
	err = scanRows(ctx, exec, query, args, func(rows dbexec.Rows) error {
		if !rows.Next() {
			return nil
		}
		found = true
		return rows.Scan(&row.ID, &row.Typename, &row.LastUpdate)
	})
	return row, found, err
}

// InsertObject inserts a new row into objects with last_update NULL.
func InsertObject(ctx context.Context, exec dbexec.QueryExecutor, id, typename string) error {
	query, args, err := builder().Insert("objects").Columns("id", "typename", "last_update").
		Values(id, typename, nil).ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

// SetObjectLastUpdate sets objects.last_update for id.
func SetObjectLastUpdate(ctx context.Context, exec dbexec.QueryExecutor, id string, updateID int64) error {
	query, args, err := builder().Update("objects").Set("last_update", updateID).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

// InsertConnectionStub inserts a connections row for (objectID, fieldname)
// with every nullable column NULL — the "never fetched" state (spec.md
// §3, Connection).
func InsertConnectionStub(ctx context.Context, exec dbexec.QueryExecutor, objectID, fieldname string) error {
	query, args, err := builder().Insert("connections").
		Columns("object_id", "fieldname", "last_update", "total_count", "has_next_page", "end_cursor").
		Values(objectID, fieldname, nil, nil, nil, nil).ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

// ConnectionRow is a row of the connections table.
type ConnectionRow struct {
	ID          int64
	ObjectID    string
	Fieldname   string
	LastUpdate  sql.NullInt64
	TotalCount  sql.NullInt64
	HasNextPage sql.NullBool
	EndCursor   sql.NullString
}

// GetConnection looks up a connections row by (objectID, fieldname).
func GetConnection(ctx context.Context, exec dbexec.QueryExecutor, objectID, fieldname string) (row ConnectionRow, found bool, err error) {
	query, args, err := builder().
		Select("id", "object_id", "fieldname", "last_update", "total_count", "has_next_page", "end_cursor").
		From("connections").
		Where(sq.Eq{"object_id": objectID, "fieldname": fieldname}).ToSql()
	if err != nil {
		return ConnectionRow{}, false, err
	}
	err = scanRows(ctx, exec, query, args, func(rows dbexec.Rows) error {
		if !rows.Next() {
			return nil
		}
		found = true
		return rows.Scan(&row.ID, &row.ObjectID, &row.Fieldname, &row.LastUpdate, &row.TotalCount, &row.HasNextPage, &row.EndCursor)
	})
	return row, found, err
}

// UpdateConnectionMeta sets the connection's bookkeeping columns after a
// page has been ingested (spec.md §4.8 step 2).
func UpdateConnectionMeta(ctx context.Context, exec dbexec.QueryExecutor, connectionID, updateID int64, totalCount int, hasNextPage bool, endCursor *string) error {
	query, args, err := builder().Update("connections").
		Set("last_update", updateID).
		Set("total_count", totalCount).
		Set("has_next_page", hasNextPage).
		Set("end_cursor", endCursor).
		Where(sq.Eq{"id": connectionID}).ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

// NextConnectionEntryIndex returns IFNULL(MAX(idx), 0) + 1 scoped to the
// given connection (spec.md §4.8 step 3).
func NextConnectionEntryIndex(ctx context.Context, exec dbexec.QueryExecutor, connectionID int64) (int, error) {
	query, args, err := builder().
		Select("IFNULL(MAX(idx), 0) + 1").From("connection_entries").
		Where(sq.Eq{"connection_id": connectionID}).ToSql()
	if err != nil {
		return 0, err
	}
	var next int
	err = scanRows(ctx, exec, query, args, func(rows dbexec.Rows) error {
		if !rows.Next() {
			return fmt.Errorf("store: MAX(idx) query returned no row")
		}
		return rows.Scan(&next)
	})
	return next, err
}

// InsertConnectionEntry appends one entry to a connection's log.
func InsertConnectionEntry(ctx context.Context, exec dbexec.QueryExecutor, connectionID int64, idx int, childID string) error {
	query, args, err := builder().Insert("connection_entries").
		Columns("connection_id", "idx", "child_id").
		Values(connectionID, idx, childID).ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

// UpsertLink inserts or updates the links row for (parentID, fieldname),
// matching the table's unique (parent_id, fieldname) constraint.
func UpsertLink(ctx context.Context, exec dbexec.QueryExecutor, parentID, fieldname string, childID *string) error {
	found, err := linkExists(ctx, exec, parentID, fieldname)
	if err != nil {
		return err
	}
	if found {
		query, args, buildErr := builder().Update("links").Set("child_id", childID).
			Where(sq.Eq{"parent_id": parentID, "fieldname": fieldname}).ToSql()
		if buildErr != nil {
			return buildErr
		}
		_, err := exec.ExecContext(ctx, query, args...)
		return err
	}
	query, args, err := builder().Insert("links").Columns("parent_id", "fieldname", "child_id").
		Values(parentID, fieldname, childID).ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

func linkExists(ctx context.Context, exec dbexec.QueryExecutor, parentID, fieldname string) (bool, error) {
	query, args, err := builder().Select("1").From("links").
		Where(sq.Eq{"parent_id": parentID, "fieldname": fieldname}).ToSql()
	if err != nil {
		return false, err
	}
	found := false
	err = scanRows(ctx, exec, query, args, func(rows dbexec.Rows) error {
		found = rows.Next()
		return nil
	})
	return found, err
}

// UpsertDataRow inserts or updates the per-type primitive row for id. The
// typename must have already been validated as a safe identifier (at
// bootstrap time); this only ever runs against a table that Bootstrap
// already created.
func UpsertDataRow(ctx context.Context, exec dbexec.QueryExecutor, typename, id string, values map[string]interface{}) error {
	table := sqlutil.DataTableName(typename)

	checkQuery, checkArgs, err := builder().Select("1").From(sqlutil.QuoteIdentifier(table)).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	found := false
	err = scanRows(ctx, exec, checkQuery, checkArgs, func(rows dbexec.Rows) error {
		found = rows.Next()
		return nil
	})
	if err != nil {
		return err
	}

	if found {
		upd := builder().Update(sqlutil.QuoteIdentifier(table))
		for col, val := range values {
			upd = upd.Set(sqlutil.QuoteIdentifier(col), val)
		}
		upd = upd.Where(sq.Eq{"id": id})
		query, args, buildErr := upd.ToSql()
		if buildErr != nil {
			return buildErr
		}
		_, err := exec.ExecContext(ctx, query, args...)
		return err
	}

	cols := []string{"id"}
	vals := []interface{}{id}
	for col, val := range values {
		cols = append(cols, sqlutil.QuoteIdentifier(col))
		vals = append(vals, val)
	}
	query, args, err := builder().Insert(sqlutil.QuoteIdentifier(table)).Columns(cols...).Values(vals...).ToSql()
	if err != nil {
		return err
	}
	_, err = exec.ExecContext(ctx, query, args...)
	return err
}

// StaleObject is one row findOutdated returns for the objects half of its
// result (spec.md §4.6).
type StaleObject struct {
	Typename string
	ID       string
}

// ListStaleObjects returns all objects whose last_update is NULL or whose
// update timestamp is strictly less than sinceMillis.
func ListStaleObjects(ctx context.Context, exec dbexec.QueryExecutor, sinceMillis int64) ([]StaleObject, error) {
	query, args, err := builder().
		Select("o.typename", "o.id").
		From("objects o").
		LeftJoin("updates u ON u.id = o.last_update").
		Where(sq.Or{
			sq.Eq{"o.last_update": nil},
			sq.Lt{"u.time_epoch_millis": sinceMillis},
		}).ToSql()
	if err != nil {
		return nil, err
	}
	var out []StaleObject
	err = scanRows(ctx, exec, query, args, func(rows dbexec.Rows) error {
		for rows.Next() {
			var row StaleObject
			if err := rows.Scan(&row.Typename, &row.ID); err != nil {
				return err
			}
			out = append(out, row)
		}
		return nil
	})
	return out, err
}

// StaleConnection is one row findOutdated returns for the connections half
// of its result (spec.md §4.6).
type StaleConnection struct {
	Typename   string
	ID         string
	Fieldname  string
	LastUpdate sql.NullInt64
	EndCursor  sql.NullString
}

// ListStaleConnections returns all connections that are never-fetched,
// fetched before sinceMillis, or have a remaining page. LastUpdate is
// NULL exactly when the connection has never been fetched, distinguishing
// that state from "fetched, resume cursor is NULL" even though both carry
// a NULL end_cursor.
func ListStaleConnections(ctx context.Context, exec dbexec.QueryExecutor, sinceMillis int64) ([]StaleConnection, error) {
	query, args, err := builder().
		Select("o.typename", "c.object_id", "c.fieldname", "c.last_update", "c.end_cursor").
		From("connections c").
		Join("objects o ON o.id = c.object_id").
		LeftJoin("updates u ON u.id = c.last_update").
		Where(sq.Or{
			sq.Eq{"c.last_update": nil},
			sq.Lt{"u.time_epoch_millis": sinceMillis},
			sq.Eq{"c.has_next_page": true},
		}).ToSql()
	if err != nil {
		return nil, err
	}
	var out []StaleConnection
	err = scanRows(ctx, exec, query, args, func(rows dbexec.Rows) error {
		for rows.Next() {
			var row StaleConnection
			if err := rows.Scan(&row.Typename, &row.ID, &row.Fieldname, &row.LastUpdate, &row.EndCursor); err != nil {
				return err
			}
			out = append(out, row)
		}
		return nil
	})
	return out, err
}

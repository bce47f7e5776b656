package store

import (
	"context"
	"database/sql"
	"fmt"

	"graphmirror/internal/schema"
	"graphmirror/internal/sqlutil"

	sq "github.com/Masterminds/squirrel"
)

// BootstrapOutcome reports what Bootstrap actually did, for logging and
// metrics (spec.md §4.3 describes the three outcomes; callers of Bootstrap
// itself only need the error return, this is just an observability
// convenience).
type BootstrapOutcome int

const (
	// OutcomeNoop means an existing store already matched the schema
	// fingerprint; nothing was written.
	OutcomeNoop BootstrapOutcome = iota
	// OutcomeInitialized means this was a fresh store; structural and
	// per-type tables were created.
	OutcomeInitialized
	// OutcomeIncompatible is returned alongside every error Bootstrap
	// returns: ErrIncompatibleSchema when an existing store had a different
	// fingerprint, but also ErrUnsafeIdentifier and database errors.
	OutcomeIncompatible
)

// Bootstrap performs the idempotent initialization described in spec.md
// §4.3, inside a single transaction: ensure meta, compare/insert the
// schema fingerprint, create structural tables, and create one data_T
// table per Object type. On any failure the transaction rolls back and the
// database is left bit-identical to its pre-call state.
func Bootstrap(ctx context.Context, db *sql.DB, s schema.Schema) (BootstrapOutcome, error) {
	fingerprint, err := schema.Fingerprint(s)
	if err != nil {
		return OutcomeIncompatible, fmt.Errorf("store: computing schema fingerprint: %w", err)
	}

	for _, name := range s.ObjectTypeNames() {
		obj, _ := s.Object(name)
		if !sqlutil.IsSafeIdentifier(name) {
			return OutcomeIncompatible, fmt.Errorf("%w: type name %q", ErrUnsafeIdentifier, name)
		}
		for _, f := range obj.PrimitiveFields() {
			if !sqlutil.IsSafeIdentifier(f.Name) {
				return OutcomeIncompatible, fmt.Errorf("%w: field %q on type %q", ErrUnsafeIdentifier, f.Name, name)
			}
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return OutcomeIncompatible, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meta (zero INTEGER PRIMARY KEY, schema TEXT NOT NULL)`); err != nil {
		return OutcomeIncompatible, err
	}

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT schema FROM meta WHERE zero = 0`).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		insert, args, buildErr := sq.Insert("meta").Columns("zero", "schema").Values(0, fingerprint).
			PlaceholderFormat(sq.Question).ToSql()
		if buildErr != nil {
			return OutcomeIncompatible, buildErr
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return OutcomeIncompatible, err
		}
	case err != nil:
		return OutcomeIncompatible, err
	case existing != fingerprint:
		// Returning here lets the deferred Rollback run, leaving the
		// database byte-identical to its pre-call state.
		return OutcomeIncompatible, ErrIncompatibleSchema
	default:
		if commitErr := tx.Commit(); commitErr != nil {
			return OutcomeIncompatible, commitErr
		}
		return OutcomeNoop, nil
	}

	if _, err := tx.ExecContext(ctx, structuralDDL); err != nil {
		return OutcomeIncompatible, err
	}

	for _, name := range s.ObjectTypeNames() {
		obj, _ := s.Object(name)
		fieldNames := make([]string, 0, len(obj.PrimitiveFields()))
		for _, f := range obj.PrimitiveFields() {
			fieldNames = append(fieldNames, f.Name)
		}
		if _, err := tx.ExecContext(ctx, dataTableDDL(name, fieldNames)); err != nil {
			return OutcomeIncompatible, err
		}
	}

	if err := tx.Commit(); err != nil {
		return OutcomeIncompatible, err
	}
	return OutcomeInitialized, nil
}

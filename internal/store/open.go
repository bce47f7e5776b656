package store

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the SQLite file at path and configures
// it for the mirror's single-writer concurrency model (spec.md §5): the
// mirror holds exclusive ownership of its database handle, so one
// connection is enough and avoids per-connection PRAGMA drift across a
// pool. Foreign keys are enabled explicitly — SQLite defaults them off.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

package store_test

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"graphmirror/internal/schema"
	"graphmirror/internal/store"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func githubLikeSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.Object("Repository",
			schema.ID("id"),
			schema.Primitive("name"),
			schema.Connection("issues", "Issue"),
		),
		schema.Object("Issue",
			schema.ID("id"),
			schema.Primitive("title"),
			schema.Node("author", "User"),
			schema.Connection("comments", "IssueComment"),
		),
		schema.Object("IssueComment",
			schema.ID("id"),
			schema.Primitive("body"),
		),
		schema.Object("User",
			schema.ID("id"),
			schema.Primitive("login"),
		),
	)
	require.NoError(t, err)
	return s
}

func fileHash(t *testing.T, path string) [32]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return sha256.Sum256(data)
}

// TestBootstrapNoopIsByteIdentical exercises a fresh bootstrap followed by
// a second bootstrap against the same schema, which
// must be a no-op that changes zero bytes of the database file. Journal
// mode is left at the driver default (rollback journal, single file) so the
// comparison isn't confounded by WAL/shm sidecar files.
func TestBootstrapNoopIsByteIdentical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	s := githubLikeSchema(t)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	outcome, err := store.Bootstrap(context.Background(), db, s)
	require.NoError(t, err)
	require.Equal(t, store.OutcomeInitialized, outcome)
	require.NoError(t, db.Close())

	before := fileHash(t, path)

	db2, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db2.Close()

	outcome, err = store.Bootstrap(context.Background(), db2, s)
	require.NoError(t, err)
	require.Equal(t, store.OutcomeNoop, outcome)
	require.NoError(t, db2.Close())

	after := fileHash(t, path)
	require.Equal(t, before, after, "no-op bootstrap must not change the database file")
}

// TestBootstrapIncompatibleSchemaLeavesFileUnchanged covers the
// IncompatibleSchema failure path: a different schema fingerprint against
// an already-initialized store fails without mutating the file.
func TestBootstrapIncompatibleSchemaLeavesFileUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = store.Bootstrap(context.Background(), db, githubLikeSchema(t))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	before := fileHash(t, path)

	differentSchema, err := schema.New(
		schema.Object("Repository", schema.ID("id"), schema.Primitive("fullName")),
	)
	require.NoError(t, err)

	db2, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db2.Close()

	_, err = store.Bootstrap(context.Background(), db2, differentSchema)
	require.ErrorIs(t, err, store.ErrIncompatibleSchema)
	require.NoError(t, db2.Close())

	after := fileHash(t, path)
	require.Equal(t, before, after, "failed bootstrap must not change the database file")
}

// TestBootstrapUnsafeIdentifierFailsBeforeAnyWrite covers the
// UnsafeIdentifier failure path on a fresh, empty file.
func TestBootstrapUnsafeIdentifierFailsBeforeAnyWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	badSchema, err := schema.New(
		schema.Object("Bad Type", schema.ID("id"), schema.Primitive("name")),
	)
	require.NoError(t, err)

	_, err = store.Bootstrap(context.Background(), db, badSchema)
	require.ErrorIs(t, err, store.ErrUnsafeIdentifier)
}

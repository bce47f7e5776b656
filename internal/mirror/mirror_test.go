package mirror_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"graphmirror/internal/mirror"
	"graphmirror/internal/schema"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// githubLikeSchema builds the schema from spec.md §8 S3: Repository,
// Issue, IssueComment, and the Actor union over User/Bot/Organization.
func githubLikeSchema(t *testing.T) schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.Object("Repository",
			schema.ID("id"),
			schema.Primitive("url"),
			schema.Connection("issues", "Issue"),
		),
		schema.Object("Issue",
			schema.ID("id"),
			schema.Primitive("url"),
			schema.Primitive("title"),
			schema.Connection("comments", "IssueComment"),
		),
		schema.Object("IssueComment",
			schema.ID("id"),
			schema.Primitive("body"),
			schema.Node("author", "Actor"),
		),
		schema.Union("Actor", "User", "Bot", "Organization"),
		schema.Object("User", schema.ID("id"), schema.Primitive("url"), schema.Primitive("login")),
		schema.Object("Bot", schema.ID("id"), schema.Primitive("url"), schema.Primitive("login")),
		schema.Object("Organization", schema.ID("id"), schema.Primitive("url"), schema.Primitive("login")),
	)
	require.NoError(t, err)
	return s
}

func newTestMirror(t *testing.T, s schema.Schema) *mirror.Mirror {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mirror.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m, err := mirror.New(context.Background(), db, s)
	require.NoError(t, err)
	return m
}

func ptr(s string) *string { return &s }

// TestRegisterObjectBootstrapsConnections is spec.md §8 S3: registering an
// Issue must create exactly one objects row and exactly one connections
// row, for its "comments" field.
func TestRegisterObjectBootstrapsConnections(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	require.NoError(t, m.RegisterObject(ctx, "Issue", "issue:sourcecred/example-github#1"))

	out, err := m.FindOutdated(ctx, time.UnixMilli(0))
	require.NoError(t, err)
	require.Len(t, out.Objects, 1)
	require.Equal(t, "Issue", out.Objects[0].Typename)

	require.Len(t, out.Connections, 1)
	require.Equal(t, "comments", out.Connections[0].Fieldname)

	// Repeated registration of the same (typename, id) is a no-op: still
	// exactly one object, one connection.
	require.NoError(t, m.RegisterObject(ctx, "Issue", "issue:sourcecred/example-github#1"))
	out, err = m.FindOutdated(ctx, time.UnixMilli(0))
	require.NoError(t, err)
	require.Len(t, out.Objects, 1)
	require.Len(t, out.Connections, 1)
}

// TestRegisterObjectInconsistentType is spec.md §8 S4.
func TestRegisterObjectInconsistentType(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	require.NoError(t, m.RegisterObject(ctx, "Issue", "x"))

	err := m.RegisterObject(ctx, "User", "x")
	require.ErrorIs(t, err, mirror.ErrInconsistentType)

	var typeErr *mirror.InconsistentTypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, "Issue", typeErr.Existing)
	require.Equal(t, "User", typeErr.New)

	// The object remains typed Issue: re-registering as Issue is still a
	// no-op, not a second error.
	require.NoError(t, m.RegisterObject(ctx, "Issue", "x"))
}

func TestRegisterObjectRejectsUnionAndUnknownType(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	err := m.RegisterObject(ctx, "Actor", "a1")
	require.ErrorIs(t, err, mirror.ErrAmbiguousType)

	err = m.RegisterObject(ctx, "NoSuchType", "a1")
	require.ErrorIs(t, err, mirror.ErrUnknownType)
}

// TestFindOutdated is spec.md §8 S5, except that I1.comments is ingested at
// update 123 (stale by age) so that it is reported with its cursor "c1";
// a connection that was never fetched is reported with NoCursor instead.
func TestFindOutdated(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	for _, id := range []string{"R", "I1", "I2", "I3", "I4"} {
		typename := "Issue"
		if id == "R" {
			typename = "Repository"
		}
		require.NoError(t, m.RegisterObject(ctx, typename, id))
	}

	u123, err := m.CreateUpdate(ctx, time.UnixMilli(123))
	require.NoError(t, err)
	u456, err := m.CreateUpdate(ctx, time.UnixMilli(456))
	require.NoError(t, err)
	u789, err := m.CreateUpdate(ctx, time.UnixMilli(789))
	require.NoError(t, err)

	ingest := func(id string, updateID int64, fieldname string, hasNext bool, cursor *string) {
		require.NoError(t, m.UpdateConnection(ctx, updateID, id, fieldname, mirror.ConnectionResult{
			TotalCount: 0,
			PageInfo:   mirror.PageInfo{HasNextPage: hasNext, EndCursor: cursor},
		}))
	}

	// Object last_update values: R=123, I1=789, I2=NULL, I3=NULL, I4=456.
	// registerObject leaves last_update NULL, so only set R, I1, I4 via a
	// bare own-data round with no fields to touch other than last_update.
	setObjectUpdate := func(id string, updateID int64) {
		require.NoError(t, m.UpdateOwnData(ctx, updateID, "Issue", id, mirror.OwnDataResponse{}))
	}
	require.NoError(t, m.UpdateOwnData(ctx, u123, "Repository", "R", mirror.OwnDataResponse{}))
	setObjectUpdate("I1", u789)
	setObjectUpdate("I4", u456)
	// I2, I3 stay NULL.

	ingest("R", u123, "issues", false, ptr("cR"))
	ingest("I1", u123, "comments", false, ptr("c1"))
	ingest("I2", u789, "comments", true, nil)
	ingest("I3", u789, "comments", false, nil)
	ingest("I4", u456, "comments", false, ptr("c4"))

	out, err := m.FindOutdated(ctx, time.UnixMilli(456))
	require.NoError(t, err)

	gotObjects := map[string]bool{}
	for _, o := range out.Objects {
		gotObjects[o.ID] = true
	}
	require.Equal(t, map[string]bool{"R": true, "I2": true, "I3": true}, gotObjects)

	gotConns := map[string]mirror.Cursor{}
	for _, c := range out.Connections {
		gotConns[c.ID] = c.Cursor
	}
	require.Len(t, gotConns, 3)
	require.Equal(t, mirror.ResumeCursor(ptr("cR")), gotConns["R"])
	require.Equal(t, mirror.ResumeCursor(ptr("c1")), gotConns["I1"])
	require.Equal(t, mirror.ResumeCursor(nil), gotConns["I2"])
}

// TestUpdateConnectionAutoRegistration is spec.md §8 S6.
func TestUpdateConnectionAutoRegistration(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	require.NoError(t, m.RegisterObject(ctx, "Repository", "R"))
	u, err := m.CreateUpdate(ctx, time.Now())
	require.NoError(t, err)

	err = m.UpdateConnection(ctx, u, "R", "issues", mirror.ConnectionResult{
		TotalCount: 2,
		PageInfo:   mirror.PageInfo{HasNextPage: false, EndCursor: ptr("c")},
		Nodes: []mirror.NodeResult{
			{Typename: "Issue", ID: "i1"},
			{Typename: "Issue", ID: "i2"},
		},
	})
	require.NoError(t, err)

	out, err := m.FindOutdated(ctx, time.UnixMilli(0))
	require.NoError(t, err)

	stale := map[string]string{}
	for _, o := range out.Objects {
		stale[o.ID] = o.Typename
	}
	require.Equal(t, "Issue", stale["i1"])
	require.Equal(t, "Issue", stale["i2"])

	for _, c := range out.Connections {
		require.NotEqual(t, "R", c.ID, "R.issues must not be reported stale: has_next_page=false and freshly updated")
	}
}

// TestUpdateConnectionUnknownConnection covers the UnknownConnection error
// path (spec.md §4.8 step 1).
func TestUpdateConnectionUnknownConnection(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	u, err := m.CreateUpdate(ctx, time.Now())
	require.NoError(t, err)

	err = m.UpdateConnection(ctx, u, "nope", "issues", mirror.ConnectionResult{})
	require.ErrorIs(t, err, mirror.ErrUnknownConnection)
}

// TestUpdateOwnDataRoundTrip exercises SPEC_FULL.md §4.10: primitive fields
// and a Node link are both ingested, and objects.last_update is set so
// findOutdated no longer reports the object stale.
func TestUpdateOwnDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	require.NoError(t, m.RegisterObject(ctx, "IssueComment", "c1"))
	u, err := m.CreateUpdate(ctx, time.Now())
	require.NoError(t, err)

	err = m.UpdateOwnData(ctx, u, "IssueComment", "c1", mirror.OwnDataResponse{
		Primitives: map[string]interface{}{"body": "looks good to me"},
		Nodes:      map[string]*mirror.NodeResult{"author": {Typename: "User", ID: "u1"}},
	})
	require.NoError(t, err)

	out, err := m.FindOutdated(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	var sawComment, sawUser bool
	for _, o := range out.Objects {
		if o.ID == "c1" {
			sawComment = true
		}
		if o.ID == "u1" {
			sawUser = true
			require.Equal(t, "User", o.Typename)
		}
	}
	require.False(t, sawComment, "IssueComment own-data was just refreshed, must not be stale")
	require.True(t, sawUser, "linked User is auto-registered but never own-data-loaded, so it is stale")
}

func TestUpdateOwnDataUnknownType(t *testing.T) {
	ctx := context.Background()
	m := newTestMirror(t, githubLikeSchema(t))

	err := m.UpdateOwnData(ctx, 1, "NoSuchType", "x", mirror.OwnDataResponse{})
	require.ErrorIs(t, err, mirror.ErrUnknownType)
}

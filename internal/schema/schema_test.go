package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func githubLikeSchema(t *testing.T) Schema {
	t.Helper()
	s, err := New(
		Object("Repository",
			ID("id"),
			Primitive("url"),
			Connection("issues", "Issue"),
		),
		Object("Issue",
			ID("id"),
			Primitive("url"),
			Primitive("title"),
			Connection("comments", "IssueComment"),
		),
		Object("IssueComment",
			ID("id"),
			Primitive("body"),
			Node("author", "Actor"),
		),
		Union("Actor", "User", "Bot", "Organization"),
		Object("User", ID("id"), Primitive("url"), Primitive("login")),
		Object("Bot", ID("id"), Primitive("url"), Primitive("login")),
		Object("Organization", ID("id"), Primitive("url"), Primitive("login")),
	)
	require.NoError(t, err)
	return s
}

func TestNewValidSchema(t *testing.T) {
	s := githubLikeSchema(t)

	repo, ok := s.Object("Repository")
	require.True(t, ok)
	idField, ok := repo.IDField()
	require.True(t, ok)
	assert.Equal(t, "id", idField.Name)
	assert.Len(t, repo.ConnectionFields(), 1)

	assert.True(t, s.IsUnion("Actor"))
	_, ok = s.Object("Actor")
	assert.False(t, ok)
}

func TestNewRejectsMissingIDField(t *testing.T) {
	_, err := New(Object("Thing", Primitive("name")))
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Thing", verr.TypeName)
}

func TestNewRejectsMultipleIDFields(t *testing.T) {
	_, err := New(Object("Thing", ID("id"), ID("otherId")))
	require.Error(t, err)
}

func TestNewRejectsDanglingNodeTarget(t *testing.T) {
	_, err := New(Object("Thing", ID("id"), Node("owner", "Missing")))
	require.Error(t, err)
}

func TestNewRejectsUnionMemberNotObject(t *testing.T) {
	_, err := New(
		Object("A", ID("id")),
		Union("U", "A", "B"),
	)
	require.Error(t, err)
}

func TestNewRejectsUnionMemberThatIsUnion(t *testing.T) {
	_, err := New(
		Object("A", ID("id")),
		Union("Inner", "A"),
		Union("Outer", "Inner"),
	)
	require.Error(t, err)
}

func TestFingerprintDeterministic(t *testing.T) {
	s1 := githubLikeSchema(t)
	s2 := githubLikeSchema(t)

	fp1, err := Fingerprint(s1)
	require.NoError(t, err)
	fp2, err := Fingerprint(s2)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestFingerprintChangesWithSchema(t *testing.T) {
	s1, err := New(Object("A", ID("id")))
	require.NoError(t, err)
	s2, err := New(Object("A", ID("id"), Primitive("name")))
	require.NoError(t, err)

	fp1, err := Fingerprint(s1)
	require.NoError(t, err)
	fp2, err := Fingerprint(s2)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp2)
}

package mirror_test

import (
	"strings"
	"testing"

	"graphmirror/internal/mirror"

	"github.com/stretchr/testify/require"
)

func TestQueryConnectionOmitsAfterWhenNeverFetched(t *testing.T) {
	sel := mirror.QueryConnection("issues", mirror.NoCursor(), 50)
	text := sel.String()
	require.Contains(t, text, "issues(first: 50)")
	require.NotContains(t, text, "after")
}

func TestQueryConnectionIncludesAfterEvenWhenNil(t *testing.T) {
	sel := mirror.QueryConnection("comments", mirror.ResumeCursor(nil), mirror.DefaultPageSize)
	text := sel.String()
	require.Contains(t, text, "after: null")
}

func TestQueryConnectionIncludesAfterWithCursor(t *testing.T) {
	cursor := "abc123"
	sel := mirror.QueryConnection("comments", mirror.ResumeCursor(&cursor), 10)
	text := sel.String()
	require.True(t, strings.Contains(text, `after: "abc123"`))
	require.Contains(t, text, "nodes {")
	require.Contains(t, text, "__typename")
}

func TestQueryOwnDataSelectsFieldsAndLinks(t *testing.T) {
	s := githubLikeSchema(t)
	sel, err := mirror.QueryOwnData(s, "IssueComment")
	require.NoError(t, err)
	text := sel.String()
	require.Contains(t, text, "body")
	require.Contains(t, text, "author {")
}

func TestQueryOwnDataUnknownType(t *testing.T) {
	s := githubLikeSchema(t)
	_, err := mirror.QueryOwnData(s, "NoSuchType")
	require.ErrorIs(t, err, mirror.ErrUnknownType)
}

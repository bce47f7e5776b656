package gqlquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldNoArgsNoChildren(t *testing.T) {
	s := Field("id")
	assert.Equal(t, "id", s.String())
}

func TestFieldWithArgsAndChildren(t *testing.T) {
	s := Field("issues").
		Args(Arg{Name: "first", Value: Literal{Value: 100}}).
		Select(Field("__typename"), Field("id"))

	expected := "issues(first: 100) {\n  __typename\n  id\n}"
	assert.Equal(t, expected, s.String())
}

func TestFieldWithVariableArg(t *testing.T) {
	s := Field("issues").Args(Arg{Name: "after", Value: Variable{Name: "cursor"}})
	assert.Equal(t, "issues(after: $cursor)", s.String())
}

func TestNullLiteralArg(t *testing.T) {
	s := Field("issues").Args(Arg{Name: "after", Value: Literal{Value: nil}})
	assert.Equal(t, "issues(after: null)", s.String())
}

func TestStringLiteralEscaping(t *testing.T) {
	s := Field("x").Args(Arg{Name: "after", Value: Literal{Value: "ab\"c\\d"}})
	assert.Equal(t, `x(after: "ab\"c\\d")`, s.String())
}

func TestNestedSelectionIndentation(t *testing.T) {
	s := Field("repository").Select(
		Field("issues").
			Args(Arg{Name: "first", Value: Literal{Value: 10}}).
			Select(Field("nodes").Select(Field("id"))),
	)

	expected := "repository {\n  issues(first: 10) {\n    nodes {\n      id\n    }\n  }\n}"
	assert.Equal(t, expected, s.String())
}

func TestAlias(t *testing.T) {
	s := Field("comments").Alias("c")
	assert.Equal(t, "c: comments", s.String())
}

func TestDocumentRendersVariablesAndFields(t *testing.T) {
	d := Document{
		Variables: []VariableDef{{Name: "after", Type: "String"}},
		Fields: []Selection{
			Field("node").Args(Arg{Name: "id", Value: Variable{Name: "after"}}).Select(Field("id")),
		},
	}
	expected := "query($after: String) {\n  node(id: $after) {\n    id\n  }\n}"
	assert.Equal(t, expected, d.String())
}

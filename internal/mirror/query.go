package mirror

import (
	"graphmirror/internal/gqlquery"
	"graphmirror/internal/schema"
)

// DefaultPageSize is the page size queryConnection uses when the caller
// does not specify one (spec.md §4.7).
const DefaultPageSize = 100

// QueryShallow produces the selection set {__typename, id}: sufficient to
// register any object referenced transitively by another response
// (spec.md §4.7).
func QueryShallow() []gqlquery.Selection {
	return []gqlquery.Selection{gqlquery.Field("__typename"), gqlquery.Field("id")}
}

// Cursor represents queryConnection's pagination argument. The zero value,
// NoCursor(), means "never fetched" and omits the `after` argument
// entirely; ResumeCursor(v) means "resuming from a known position" and
// always includes `after`, even when v is nil (the connection was fetched
// once and returned an empty/beginning cursor) — these are the two states
// spec.md §4.7 distinguishes for the `after` argument.
type Cursor struct {
	resume bool
	value  *string
}

// NoCursor is the "never fetched" pagination state: omit `after`.
func NoCursor() Cursor { return Cursor{} }

// ResumeCursor is the "resuming" pagination state: include `after`, even
// when value is nil.
func ResumeCursor(value *string) Cursor { return Cursor{resume: true, value: value} }

// QueryConnection produces the selection set
// fieldname(first: pageSize [, after: endCursor]) { totalCount pageInfo { endCursor hasNextPage } nodes { __typename id } }
// per spec.md §4.7. pageSize <= 0 is replaced with DefaultPageSize.
func QueryConnection(fieldname string, cursor Cursor, pageSize int) gqlquery.Selection {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	args := []gqlquery.Arg{{Name: "first", Value: gqlquery.Literal{Value: pageSize}}}
	if cursor.resume {
		var v interface{}
		if cursor.value != nil {
			v = *cursor.value
		}
		args = append(args, gqlquery.Arg{Name: "after", Value: gqlquery.Literal{Value: v}})
	}

	return gqlquery.Field(fieldname).Args(args...).Select(
		gqlquery.Field("totalCount"),
		gqlquery.Field("pageInfo").Select(
			gqlquery.Field("endCursor"),
			gqlquery.Field("hasNextPage"),
		),
		gqlquery.Field("nodes").Select(QueryShallow()...),
	)
}

// QueryOwnData produces the selection set an own-data refresh round sends
// for one object of the named type (spec.md §9 Open Question, resolved in
// SPEC_FULL.md §4.10): __typename, id, every Primitive field, and for every
// Node field a nested { __typename id } shallow selection.
func QueryOwnData(s schema.Schema, typename string) (gqlquery.Selection, error) {
	obj, ok := s.Object(typename)
	if !ok {
		return gqlquery.Selection{}, ErrUnknownType
	}

	children := []gqlquery.Selection{gqlquery.Field("__typename"), gqlquery.Field("id")}
	for _, f := range obj.PrimitiveFields() {
		children = append(children, gqlquery.Field(f.Name))
	}
	for _, f := range obj.NodeFields() {
		children = append(children, gqlquery.Field(f.Name).Select(QueryShallow()...))
	}
	return gqlquery.Field(typename).Select(children...), nil
}

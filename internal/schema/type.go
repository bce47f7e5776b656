package schema

import "fmt"

// TypeDef is one entry in a Schema: either an Object type or a Union type.
// Implemented by ObjectType and UnionType.
type TypeDef interface {
	isTypeDef()
	typeName() string
}

// ObjectType is an ordered mapping from field name to field kind. Field
// order is preserved because it governs selection-set and primitive-table
// column order.
type ObjectType struct {
	Name   string
	Fields []Field

	byName map[string]Field
}

// Object constructs an ObjectType, indexing its fields by name. Construction
// does not validate; validation (exactly one ID field, dangling targets)
// happens once, schema-wide, in Schema's constructor, since Node/Connection
// targets can only be checked against the full type set.
func Object(name string, fields ...Field) ObjectType {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	return ObjectType{Name: name, Fields: fields, byName: byName}
}

func (o ObjectType) isTypeDef()      {}
func (o ObjectType) typeName() string { return o.Name }

// Field looks up a field by name.
func (o ObjectType) Field(name string) (Field, bool) {
	f, ok := o.byName[name]
	return f, ok
}

// IDField returns the type's single ID field.
func (o ObjectType) IDField() (Field, bool) {
	for _, f := range o.Fields {
		if f.Kind == KindID {
			return f, true
		}
	}
	return Field{}, false
}

// PrimitiveFields returns the type's scalar fields, in declared order.
func (o ObjectType) PrimitiveFields() []Field {
	var out []Field
	for _, f := range o.Fields {
		if f.Kind == KindPrimitive {
			out = append(out, f)
		}
	}
	return out
}

// NodeFields returns the type's singular link fields, in declared order.
func (o ObjectType) NodeFields() []Field {
	var out []Field
	for _, f := range o.Fields {
		if f.Kind == KindNode {
			out = append(out, f)
		}
	}
	return out
}

// ConnectionFields returns the type's paginated connection fields, in
// declared order.
func (o ObjectType) ConnectionFields() []Field {
	var out []Field
	for _, f := range o.Fields {
		if f.Kind == KindConnection {
			out = append(out, f)
		}
	}
	return out
}

// UnionType is a non-empty set of member Object type names. Unions have no
// physical storage; they exist only so a caller can register an object
// whose concrete type is resolved by the remote (e.g. a GraphQL union or
// interface), then insist the caller supply the concrete subtype.
type UnionType struct {
	Name    string
	Members []string
}

// Union constructs a UnionType.
func Union(name string, members ...string) UnionType {
	return UnionType{Name: name, Members: members}
}

func (u UnionType) isTypeDef()       {}
func (u UnionType) typeName() string { return u.Name }

// HasMember reports whether typeName is a member of the union.
func (u UnionType) HasMember(typeName string) bool {
	for _, m := range u.Members {
		if m == typeName {
			return true
		}
	}
	return false
}

// ValidationError describes a specific defect found while constructing a
// Schema, naming the offending type so callers can report a precise cause.
type ValidationError struct {
	TypeName string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: type %q: %s", e.TypeName, e.Reason)
}

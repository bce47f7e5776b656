// Package schema describes the declarative, immutable-per-store schema the
// mirror is built against: object types, their scalar fields, their
// singular links to other objects, and their paginated connections.
package schema

// FieldKind discriminates the four shapes a field in an Object type can
// take. Field kinds are exhaustively matched everywhere a new kind would
// need to change behavior: bootstrap (internal/store), registration and
// query generation (internal/mirror).
type FieldKind int

const (
	// KindID marks the single field that holds an object's opaque remote
	// identifier. Exactly one field of an Object type must be KindID.
	KindID FieldKind = iota
	// KindPrimitive is a scalar column stored in the type's data_T table.
	KindPrimitive
	// KindNode is a singular link to another object, stored as a row in
	// the links table.
	KindNode
	// KindConnection is a paginated field yielding an ordered list of
	// child objects, stored as a row in connections plus an append-only
	// log in connection_entries.
	KindConnection
)

func (k FieldKind) String() string {
	switch k {
	case KindID:
		return "ID"
	case KindPrimitive:
		return "Primitive"
	case KindNode:
		return "Node"
	case KindConnection:
		return "Connection"
	default:
		return "Unknown"
	}
}

// Field is one entry in an Object type's ordered field map. Target is only
// meaningful for KindNode and KindConnection, naming the type the link or
// connection points at.
type Field struct {
	Name   string
	Kind   FieldKind
	Target string
}

// ID declares the object's identifier field.
func ID(name string) Field {
	return Field{Name: name, Kind: KindID}
}

// Primitive declares a scalar field populated by own-data ingestion.
func Primitive(name string) Field {
	return Field{Name: name, Kind: KindPrimitive}
}

// Node declares a singular link field targeting the named Object or Union
// type.
func Node(name, target string) Field {
	return Field{Name: name, Kind: KindNode, Target: target}
}

// Connection declares a paginated field whose elements are of the named
// Object or Union type.
func Connection(name, target string) Field {
	return Field{Name: name, Kind: KindConnection, Target: target}
}

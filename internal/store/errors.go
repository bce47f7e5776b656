package store

import "errors"

// ErrIncompatibleSchema is returned by Bootstrap when the database was
// already initialized with a different schema fingerprint. The database
// is left bit-identical to its pre-call state.
var ErrIncompatibleSchema = errors.New("store: database was initialized with a different schema")

// ErrUnsafeIdentifier is returned by Bootstrap when a type name or
// primitive field name does not match the safe identifier pattern
// ^[A-Za-z0-9_]+$ and therefore cannot be used to build a table or column
// name.
var ErrUnsafeIdentifier = errors.New("store: unsafe identifier")

package mirror

import (
	"errors"
	"fmt"

	"graphmirror/internal/store"
)

// ErrIncompatibleSchema is re-exported from internal/store: the database was
// already bootstrapped with a different schema fingerprint.
var ErrIncompatibleSchema = store.ErrIncompatibleSchema

// ErrUnsafeIdentifier is re-exported from internal/store: a type or
// primitive field name does not match the safe identifier pattern.
var ErrUnsafeIdentifier = store.ErrUnsafeIdentifier

// ErrUnknownType is returned when an operation names a type that is not
// declared in the schema.
var ErrUnknownType = errors.New("mirror: unknown type")

// ErrAmbiguousType is returned when registerObject is invoked with a union
// typename; union members must be registered with their concrete subtype.
var ErrAmbiguousType = errors.New("mirror: ambiguous type (union, not a concrete subtype)")

// ErrInconsistentType is returned when an id is already associated with a
// different typename than the one now being registered. It is always
// wrapped in an *InconsistentTypeError naming both typenames; check with
// errors.Is(err, ErrInconsistentType).
var ErrInconsistentType = errors.New("mirror: inconsistent type for id")

// InconsistentTypeError names both typenames involved in an InconsistentType
// failure (spec.md §4.5: "fail with InconsistentType, message includes both
// names").
type InconsistentTypeError struct {
	ID       string
	Existing string
	New      string
}

func (e *InconsistentTypeError) Error() string {
	return fmt.Sprintf("mirror: id %q already registered as %q, got %q", e.ID, e.Existing, e.New)
}

func (e *InconsistentTypeError) Unwrap() error {
	return ErrInconsistentType
}

// ErrUnknownConnection is returned when ingestion references an
// (owner, field) pair that has not been registered.
var ErrUnknownConnection = errors.New("mirror: unknown connection")

// ErrAlreadyInTransaction is returned by the transaction helper when it is
// invoked while the mirror is already inside a transaction it opened. This
// is a programmer error: nested withTransaction calls are not supported.
var ErrAlreadyInTransaction = errors.New("mirror: already in transaction")

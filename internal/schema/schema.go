package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"graphmirror/internal/sqlutil"
)

// Schema is a mapping from type name to type definition, validated at
// construction time. It is immutable once returned by New.
type Schema struct {
	types map[string]TypeDef
	// order preserves the argument order New was called with, so
	// bootstrap iterates types deterministically.
	order []string
}

// New validates and constructs a Schema from a set of type definitions.
// Validation performed here (schema.md §4.1):
//   - every Object has exactly one ID field
//   - every Node/Connection target names a type present in this schema
//   - every Union member names an Object type present in this schema
func New(defs ...TypeDef) (Schema, error) {
	types := make(map[string]TypeDef, len(defs))
	order := make([]string, 0, len(defs))
	for _, d := range defs {
		name := d.typeName()
		if _, exists := types[name]; exists {
			return Schema{}, &ValidationError{TypeName: name, Reason: "declared more than once"}
		}
		types[name] = d
		order = append(order, name)
	}

	for _, d := range defs {
		switch t := d.(type) {
		case ObjectType:
			if _, ok := t.IDField(); !ok {
				return Schema{}, &ValidationError{TypeName: t.Name, Reason: "must have exactly one ID field"}
			}
			idCount := 0
			for _, f := range t.Fields {
				if f.Kind == KindID {
					idCount++
				}
			}
			if idCount > 1 {
				return Schema{}, &ValidationError{TypeName: t.Name, Reason: "must have exactly one ID field"}
			}
			for _, f := range t.Fields {
				if f.Kind != KindNode && f.Kind != KindConnection {
					continue
				}
				target, ok := types[f.Target]
				if !ok {
					return Schema{}, &ValidationError{
						TypeName: t.Name,
						Reason:   fmt.Sprintf("field %q targets unknown type %q", f.Name, f.Target),
					}
				}
				if f.Kind == KindConnection {
					if _, ok := target.(ObjectType); !ok {
						if _, isUnion := target.(UnionType); !isUnion {
							return Schema{}, &ValidationError{
								TypeName: t.Name,
								Reason:   fmt.Sprintf("connection field %q targets %q, which is neither an object nor a union type", f.Name, f.Target),
							}
						}
					}
				}
			}
		case UnionType:
			if len(t.Members) == 0 {
				return Schema{}, &ValidationError{TypeName: t.Name, Reason: "union must have at least one member"}
			}
			for _, m := range t.Members {
				member, ok := types[m]
				if !ok {
					return Schema{}, &ValidationError{TypeName: t.Name, Reason: fmt.Sprintf("member %q is not declared in this schema", m)}
				}
				if _, isObject := member.(ObjectType); !isObject {
					return Schema{}, &ValidationError{TypeName: t.Name, Reason: fmt.Sprintf("member %q is not an object type", m)}
				}
			}
		}
	}

	return Schema{types: types, order: order}, nil
}

// Lookup returns the type definition for name, if any.
func (s Schema) Lookup(name string) (TypeDef, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Object returns the ObjectType for name. ok is false if name is unknown
// or names a union rather than an object.
func (s Schema) Object(name string) (ObjectType, bool) {
	t, ok := s.types[name]
	if !ok {
		return ObjectType{}, false
	}
	o, ok := t.(ObjectType)
	return o, ok
}

// IsUnion reports whether name resolves to a union type in this schema.
func (s Schema) IsUnion(name string) bool {
	t, ok := s.types[name]
	if !ok {
		return false
	}
	_, ok = t.(UnionType)
	return ok
}

// ObjectTypeNames returns the declared Object type names, in declaration
// order. Union types are excluded since they have no physical storage.
func (s Schema) ObjectTypeNames() []string {
	var out []string
	for _, name := range s.order {
		if _, ok := s.types[name].(ObjectType); ok {
			out = append(out, name)
		}
	}
	return out
}

// fingerprintEnvelope is the exact shape hashed/stored as the schema
// fingerprint: {version, schema}, both with sorted map keys so the
// encoding is canonical and repeatable across runs (spec.md §4.3).
type fingerprintEnvelope struct {
	Version string                     `json:"version"`
	Schema  map[string]json.RawMessage `json:"schema"`
}

type fieldJSON struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Target string `json:"target,omitempty"`
}

type objectJSON struct {
	Kind   string      `json:"kind"`
	Fields []fieldJSON `json:"fields"`
}

type unionJSON struct {
	Kind    string   `json:"kind"`
	Members []string `json:"members"`
}

// SchemaVersion is bumped whenever the schema-to-layout mapping or the
// interpretation of that layout changes (spec.md §4.3).
const SchemaVersion = "MIRROR_v1"

// Fingerprint computes the canonical (sorted-key) JSON encoding of
// {version: SchemaVersion, schema: s}, stored verbatim in meta.schema by
// the store's bootstrap routine.
func Fingerprint(s Schema) (string, error) {
	encoded := make(map[string]json.RawMessage, len(s.types))
	for name, def := range s.types {
		var raw json.RawMessage
		var err error
		switch t := def.(type) {
		case ObjectType:
			fields := make([]fieldJSON, len(t.Fields))
			for i, f := range t.Fields {
				fields[i] = fieldJSON{Name: f.Name, Kind: f.Kind.String(), Target: f.Target}
			}
			raw, err = json.Marshal(objectJSON{Kind: "Object", Fields: fields})
		case UnionType:
			members := append([]string(nil), t.Members...)
			sort.Strings(members)
			raw, err = json.Marshal(unionJSON{Kind: "Union", Members: members})
		default:
			err = fmt.Errorf("unknown type definition for %q", name)
		}
		if err != nil {
			return "", err
		}
		encoded[name] = raw
	}

	payload, err := json.Marshal(fingerprintEnvelope{Version: SchemaVersion, Schema: encoded})
	if err != nil {
		return "", err
	}
	return canonicalize(payload)
}

// canonicalize re-marshals arbitrary JSON with recursively sorted object
// keys, compact separators, and no whitespace, so two equivalent schemas
// always fingerprint identically regardless of map iteration order.
func canonicalize(raw []byte) (string, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := encodeCanonical(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []interface{}:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

// DataTableName is re-exported for callers that only import schema.
func DataTableName(typeName string) string {
	return sqlutil.DataTableName(typeName)
}

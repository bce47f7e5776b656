package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileDef is the on-disk JSON shape for one type definition: an Object
// with its ordered fields, or a Union naming its member Object types.
type fileDef struct {
	Name    string     `json:"name"`
	Kind    string     `json:"kind"` // "object" or "union"
	Fields  []fileField `json:"fields,omitempty"`
	Members []string    `json:"members,omitempty"`
}

type fileField struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"` // "id", "primitive", "node", "connection"
	Target string `json:"target,omitempty"`
}

// LoadFile reads a schema definition from a JSON file and builds a
// validated Schema from it, the on-disk counterpart to building one with
// the Object/Union/Field constructors directly.
func LoadFile(path string) (Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: reading %s: %w", path, err)
	}

	var defs []fileDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return Schema{}, fmt.Errorf("schema: parsing %s: %w", path, err)
	}

	typeDefs := make([]TypeDef, 0, len(defs))
	for _, d := range defs {
		switch d.Kind {
		case "object":
			fields := make([]Field, 0, len(d.Fields))
			for _, f := range d.Fields {
				field, err := decodeField(f)
				if err != nil {
					return Schema{}, fmt.Errorf("schema: type %q: %w", d.Name, err)
				}
				fields = append(fields, field)
			}
			typeDefs = append(typeDefs, Object(d.Name, fields...))
		case "union":
			typeDefs = append(typeDefs, Union(d.Name, d.Members...))
		default:
			return Schema{}, fmt.Errorf("schema: type %q: unknown kind %q", d.Name, d.Kind)
		}
	}

	return New(typeDefs...)
}

func decodeField(f fileField) (Field, error) {
	switch f.Kind {
	case "id":
		return ID(f.Name), nil
	case "primitive":
		return Primitive(f.Name), nil
	case "node":
		if f.Target == "" {
			return Field{}, fmt.Errorf("field %q: node fields require a target", f.Name)
		}
		return Node(f.Name, f.Target), nil
	case "connection":
		if f.Target == "" {
			return Field{}, fmt.Errorf("field %q: connection fields require a target", f.Name)
		}
		return Connection(f.Name, f.Target), nil
	default:
		return Field{}, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
	}
}

package field

import (
	"fmt"
	"sort"
)

// Type is the payload type of a schema field. It drives both the vector database
// payload index and the scalar kind accepted by the payload validator.
type Type string

// Field type constants.
const (
	Float   Type = "float"
	Int     Type = "int"
	Keyword Type = "keyword"
	Bool    Type = "bool"
	Text    Type = "text"
)

// IsValid reports whether the type is supported.
func (t Type) IsValid() bool {
	switch t {
	case Float, Int, Keyword, Bool, Text:
		return true
	default:
		return false
	}
}

var reservedFieldNames = map[string]bool{
	"_doc_id": true,
}

// Field is an immutable value object describing an indexed payload field.
type Field struct {
	name      string
	fieldType Type
}

// New validates and creates a Field.
// Name must be non-empty, max 64 chars, and not reserved.
func New(name string, ft Type) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Field{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if reservedFieldNames[name] {
		return Field{}, fmt.Errorf("field name %q is reserved", name)
	}
	if !ft.IsValid() {
		return Field{}, fmt.Errorf("invalid field type %q for %q", ft, name)
	}
	return Field{name: name, fieldType: ft}, nil
}

// Reconstruct creates a Field without validation (storage hydration).
func Reconstruct(name string, ft Type) Field {
	return Field{name: name, fieldType: ft}
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// FieldType returns the field's payload type.
func (f Field) FieldType() Type { return f.fieldType }

// FromMap builds fields from a name->type map, sorted by name.
func FromMap(m map[string]string) ([]Field, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(m))
	for _, name := range names {
		f, err := New(name, Type(m[name]))
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// ToMap converts fields back to a name->type map.
func ToMap(fields []Field) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.name] = string(f.fieldType)
	}
	return m
}

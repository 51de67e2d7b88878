package recall

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "recall"

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ reflect.Type // struct type for reconstruction
	ptr bool         // T is a pointer to typ

	// Field index in the struct for each role; -1 if not present.
	idIdx         int
	contentIdx    int
	contentURIIdx int

	// Indexed payload fields, sent as the collection's index schema.
	indexed map[string]FieldType

	// Every payload field, indexed or not.
	payload []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

var modifierTypes = map[string]FieldType{
	"keyword": FieldKeyword,
	"text":    FieldText,
	"int":     FieldInt,
	"float":   FieldFloat,
	"bool":    FieldBool,
}

// parseSchema reflects on T and extracts recall struct tag metadata.
//
//	type Shoe struct {
//	    SKU   string  `recall:"sku,id"`
//	    Blurb string  `recall:"blurb,content"`
//	    Brand string  `recall:"brand,keyword"`
//	    Price float64 `recall:"price,float"`
//	    Note  string  `recall:"note"` // stored, not indexed
//	}
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("recall: type parameter must be a struct")
	}
	ptr := t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("recall: type %s is not a struct", t)
	}

	meta := &schemaMeta{
		typ: t, ptr: ptr, idIdx: -1, contentIdx: -1, contentURIIdx: -1,
		indexed: map[string]FieldType{},
	}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	return validateSchema(meta, t)
}

// applyTag processes a single struct field's recall tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	if !f.IsExported() {
		return fmt.Errorf("recall: tagged field %s must be exported", f.Name)
	}
	name, modifier, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}

	switch modifier {
	case "id":
		return setRole(&meta.idIdx, idx, "id", f)
	case "content":
		return setRole(&meta.contentIdx, idx, "content", f)
	case "content_uri":
		return setRole(&meta.contentURIIdx, idx, "content_uri", f)
	case "":
		// payload only, not indexed
	default:
		ft, ok := modifierTypes[modifier]
		if !ok {
			return fmt.Errorf("recall: unknown modifier %q on field %s", modifier, f.Name)
		}
		if !kindFits(ft, f.Type.Kind()) {
			return fmt.Errorf("recall: field %s of kind %s cannot hold %s", f.Name, f.Type.Kind(), ft)
		}
		if _, dup := meta.indexed[name]; dup {
			return fmt.Errorf("recall: duplicate payload name %q on field %s", name, f.Name)
		}
		meta.indexed[name] = ft
	}
	meta.payload = append(meta.payload, fieldMapping{structIdx: idx, name: name})
	return nil
}

func setRole(slot *int, idx int, role string, f reflect.StructField) error {
	if *slot != -1 {
		return fmt.Errorf("recall: duplicate %s tag on field %s", role, f.Name)
	}
	if f.Type.Kind() != reflect.String {
		return fmt.Errorf("recall: %s field %s must be a string", role, f.Name)
	}
	*slot = idx
	return nil
}

func kindFits(ft FieldType, k reflect.Kind) bool {
	switch ft {
	case FieldKeyword, FieldText:
		return k == reflect.String
	case FieldBool:
		return k == reflect.Bool
	case FieldInt:
		return isInt(k) || isUint(k)
	case FieldFloat:
		return k == reflect.Float32 || k == reflect.Float64 || isInt(k) || isUint(k)
	default:
		return false
	}
}

func validateSchema(meta *schemaMeta, t reflect.Type) (*schemaMeta, error) {
	if meta.idIdx == -1 {
		return nil, fmt.Errorf("recall: no field with `recall:\"...,id\"` tag in %s", t)
	}
	if meta.contentIdx == -1 && meta.contentURIIdx == -1 {
		return nil, fmt.Errorf("recall: %s needs a content or content_uri field", t)
	}
	return meta, nil
}

// collectionOptions builds the index schema options from parsed metadata.
func (m *schemaMeta) collectionOptions() []CollectionOption {
	opts := make([]CollectionOption, 0, len(m.indexed))
	for name, ft := range m.indexed {
		opts = append(opts, WithField(name, ft))
	}
	return opts
}

// toDocument converts a typed struct to Document using schema metadata.
// A non-empty content field wins over content_uri.
func (m *schemaMeta) toDocument(item any) Document {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if !v.IsValid() {
		return Document{}
	}

	doc := Document{
		ID:      v.Field(m.idIdx).String(),
		Payload: make(map[string]any, len(m.payload)),
	}
	if m.contentIdx != -1 {
		doc.ContentRaw = v.Field(m.contentIdx).String()
	}
	if doc.ContentRaw == "" && m.contentURIIdx != -1 {
		doc.ContentURI = v.Field(m.contentURIIdx).String()
	}
	for _, pf := range m.payload {
		doc.Payload[pf.name] = v.Field(pf.structIdx).Interface()
	}
	return doc
}

// docIDKey is the payload key under which the service stores the document id.
const docIDKey = "_doc_id"

// fromPayload rebuilds a typed struct from a stored point. Content is not
// stored by the service, so content fields stay empty.
func (m *schemaMeta) fromPayload(pointID string, payload map[string]any) any {
	id, ok := payload[docIDKey].(string)
	if !ok {
		id = pointID
	}

	p := reflect.New(m.typ)
	v := p.Elem()
	v.Field(m.idIdx).SetString(id)
	for _, pf := range m.payload {
		if val, ok := payload[pf.name]; ok {
			setValue(v.Field(pf.structIdx), val)
		}
	}
	if m.ptr {
		return p.Interface()
	}
	return v.Interface()
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

// setValue assigns a decoded JSON value; mismatched kinds are left unset.
func setValue(dst reflect.Value, val any) {
	switch x := val.(type) {
	case string:
		if dst.Kind() == reflect.String {
			dst.SetString(x)
		}
	case bool:
		if dst.Kind() == reflect.Bool {
			dst.SetBool(x)
		}
	case float64:
		switch k := dst.Kind(); {
		case k == reflect.Float32 || k == reflect.Float64:
			dst.SetFloat(x)
		case isInt(k):
			dst.SetInt(int64(x))
		case isUint(k) && x >= 0:
			dst.SetUint(uint64(x))
		}
	default:
		rv := reflect.ValueOf(val)
		if rv.IsValid() && rv.Type().AssignableTo(dst.Type()) {
			dst.Set(rv)
		}
	}
}

package qdrant

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/qdrant/go-client/qdrant"
)

// toPayload converts a decoded JSON payload into Qdrant values.
func toPayload(m map[string]any) (map[string]*qdrant.Value, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]*qdrant.Value, len(m))
	for k, v := range m {
		qv, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = qv
	}
	return out, nil
}

func toValue(v any) (*qdrant.Value, error) {
	switch x := v.(type) {
	case nil:
		return &qdrant.Value{Kind: &qdrant.Value_NullValue{NullValue: qdrant.NullValue_NULL_VALUE}}, nil
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: x}}, nil
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: x}}, nil
	case int:
		return intValue(int64(x)), nil
	case int32:
		return intValue(int64(x)), nil
	case int64:
		return intValue(x), nil
	case uint32:
		return intValue(int64(x)), nil
	case float32:
		return doubleValue(float64(x)), nil
	case float64:
		return doubleValue(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return intValue(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", x)
		}
		return doubleValue(f), nil
	case map[string]any:
		fields, err := toPayload(x)
		if err != nil {
			return nil, err
		}
		return &qdrant.Value{Kind: &qdrant.Value_StructValue{StructValue: &qdrant.Struct{Fields: fields}}}, nil
	case []any:
		values := make([]*qdrant.Value, 0, len(x))
		for i, item := range x {
			qv, err := toValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			values = append(values, qv)
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}, nil
	case []string:
		values := make([]*qdrant.Value, len(x))
		for i, s := range x {
			values[i] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
		}
		return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}, nil
	default:
		return nil, fmt.Errorf("unsupported payload value type %T", v)
	}
}

func intValue(i int64) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: i}}
}

func doubleValue(f float64) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: f}}
}

// fromPayload converts Qdrant values back to plain Go values.
func fromPayload(m map[string]*qdrant.Value) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = fromValue(v)
	}
	return out
}

func fromValue(v *qdrant.Value) any {
	switch x := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return x.StringValue
	case *qdrant.Value_IntegerValue:
		return x.IntegerValue
	case *qdrant.Value_DoubleValue:
		if math.IsNaN(x.DoubleValue) {
			return nil
		}
		return x.DoubleValue
	case *qdrant.Value_BoolValue:
		return x.BoolValue
	case *qdrant.Value_StructValue:
		return fromPayload(x.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		items := make([]any, len(x.ListValue.GetValues()))
		for i, item := range x.ListValue.GetValues() {
			items[i] = fromValue(item)
		}
		return items
	default:
		return nil
	}
}

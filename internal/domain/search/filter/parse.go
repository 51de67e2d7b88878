package filter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/recall/internal/domain"
)

// MaxDepth bounds filter tree nesting.
const MaxDepth = 32

type wireNode struct {
	Op         string            `json:"op"`
	Field      string            `json:"field"`
	Value      json.RawMessage   `json:"value"`
	Conditions []json.RawMessage `json:"conditions"`
}

// Parse decodes a JSON filter tree. Empty input or JSON null yields a nil Condition.
// Every decoding failure wraps domain.ErrInvalidFilter.
func Parse(data []byte) (Condition, error) {
	if isNull(data) {
		return nil, nil
	}
	return parseNode(data, 1)
}

func parseNode(data []byte, depth int) (Condition, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", domain.ErrInvalidFilter, MaxDepth)
	}

	var n wireNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFilter, err)
	}

	op, ok := ParseOp(n.Op)
	if !ok {
		return nil, fmt.Errorf("%w: unknown op %q", domain.ErrInvalidFilter, n.Op)
	}

	switch op {
	case OpAnd, OpOr:
		children := make([]Condition, 0, len(n.Conditions))
		for i, raw := range n.Conditions {
			if isNull(raw) {
				return nil, fmt.Errorf("%w: %s.conditions[%d] is null", domain.ErrInvalidFilter, op, i)
			}
			c, err := parseNode(raw, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s.conditions[%d]: %w", op, i, err)
			}
			children = append(children, c)
		}
		if op == OpAnd {
			return And{Conditions: children}, nil
		}
		return Or{Conditions: children}, nil
	case OpIn:
		return parseIn(n)
	default:
		return parseComparison(op, n)
	}
}

func parseComparison(op Op, n wireNode) (Condition, error) {
	if n.Field == "" {
		return nil, fmt.Errorf("%w: %s requires a field", domain.ErrInvalidFilter, op)
	}
	v, err := decodeScalar(n.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidFilter, op, n.Field, err)
	}

	switch op {
	case OpEq:
		return Eq{Field: n.Field, Value: v}, nil
	case OpNeq:
		return Neq{Field: n.Field, Value: v}, nil
	}

	if !v.IsNumeric() {
		return nil, fmt.Errorf("%w: %s %q requires a numeric value, got %s",
			domain.ErrInvalidFilter, op, n.Field, v.Kind())
	}
	switch op {
	case OpLt:
		return Lt{Field: n.Field, Value: v}, nil
	case OpLte:
		return Lte{Field: n.Field, Value: v}, nil
	case OpGt:
		return Gt{Field: n.Field, Value: v}, nil
	default:
		return Gte{Field: n.Field, Value: v}, nil
	}
}

func parseIn(n wireNode) (Condition, error) {
	if n.Field == "" {
		return nil, fmt.Errorf("%w: IN requires a field", domain.ErrInvalidFilter)
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(n.Value, &raws); err != nil {
		return nil, fmt.Errorf("%w: IN %q requires a list value", domain.ErrInvalidFilter, n.Field)
	}

	values := make([]Scalar, 0, len(raws))
	for i, raw := range raws {
		v, err := decodeScalar(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: IN %q value[%d]: %v", domain.ErrInvalidFilter, n.Field, i, err)
		}
		if v.Kind() == KindBool {
			return nil, fmt.Errorf("%w: IN %q value[%d]: booleans are not allowed", domain.ErrInvalidFilter, n.Field, i)
		}
		values = append(values, v)
	}
	return In{Field: n.Field, Values: values}, nil
}

func decodeScalar(raw json.RawMessage) (Scalar, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Scalar{}, fmt.Errorf("value is required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Scalar{}, err
	}
	if v == nil {
		return Scalar{}, fmt.Errorf("value is required")
	}
	return ScalarOf(v)
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

package filter

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is the primitive type of a Scalar.
type Kind int

// Scalar kinds.
const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Scalar is a comparison value: string, integer, float or boolean.
type Scalar struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
}

// String creates a string scalar.
func String(s string) Scalar { return Scalar{kind: KindString, s: s} }

// Int creates an integer scalar.
func Int(i int64) Scalar { return Scalar{kind: KindInt, i: i} }

// Float creates a floating point scalar.
func Float(f float64) Scalar { return Scalar{kind: KindFloat, f: f} }

// Bool creates a boolean scalar.
func Bool(b bool) Scalar { return Scalar{kind: KindBool, b: b} }

// Kind returns the scalar kind.
func (s Scalar) Kind() Kind { return s.kind }

// Str returns the string value.
func (s Scalar) Str() string { return s.s }

// Int64 returns the integer value.
func (s Scalar) Int64() int64 { return s.i }

// Bool returns the boolean value.
func (s Scalar) Bool() bool { return s.b }

// Float64 returns the value as a float for numeric kinds.
func (s Scalar) Float64() (float64, bool) {
	switch s.kind {
	case KindInt:
		return float64(s.i), true
	case KindFloat:
		return s.f, true
	default:
		return 0, false
	}
}

// IsNumeric reports whether the scalar is an int or float.
func (s Scalar) IsNumeric() bool { return s.kind == KindInt || s.kind == KindFloat }

// Any returns the scalar as a plain Go value.
func (s Scalar) Any() any {
	switch s.kind {
	case KindString:
		return s.s
	case KindInt:
		return s.i
	case KindFloat:
		return s.f
	case KindBool:
		return s.b
	default:
		return nil
	}
}

func (s Scalar) String() string {
	switch s.kind {
	case KindString:
		return strconv.Quote(s.s)
	case KindInt:
		return strconv.FormatInt(s.i, 10)
	case KindFloat:
		return strconv.FormatFloat(s.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(s.b)
	default:
		return "<invalid>"
	}
}

// ScalarOf converts a decoded JSON value into a Scalar.
// Integral numbers (json.Number without fraction or exponent) become KindInt.
func ScalarOf(v any) (Scalar, error) {
	switch x := v.(type) {
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case json.Number:
		return numberScalar(x.String())
	default:
		return Scalar{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func numberScalar(n string) (Scalar, error) {
	if i, err := strconv.ParseInt(n, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return Scalar{}, fmt.Errorf("invalid number %q", n)
	}
	return Float(f), nil
}

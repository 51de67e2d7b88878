package recall

// Filter is a node of the search filter tree, encoded as the service expects it.
type Filter struct {
	Op         string   `json:"op"`
	Field      string   `json:"field,omitempty"`
	Value      any      `json:"value,omitempty"`
	Conditions []Filter `json:"conditions,omitempty"`
}

func compare(op, field string, v any) Filter {
	return Filter{Op: op, Field: field, Value: v}
}

// Eq matches points whose field equals v.
func Eq(field string, v any) Filter { return compare("EQ", field, v) }

// Neq matches points whose field differs from v.
func Neq(field string, v any) Filter { return compare("NEQ", field, v) }

// Lt matches field < v.
func Lt(field string, v float64) Filter { return compare("LT", field, v) }

// Lte matches field <= v.
func Lte(field string, v float64) Filter { return compare("LTE", field, v) }

// Gt matches field > v.
func Gt(field string, v float64) Filter { return compare("GT", field, v) }

// Gte matches field >= v.
func Gte(field string, v float64) Filter { return compare("GTE", field, v) }

// In matches points whose field is any of values.
func In(field string, values ...any) Filter {
	if values == nil {
		values = []any{}
	}
	return compare("IN", field, values)
}

// And matches when every condition matches.
func And(conds ...Filter) Filter {
	return Filter{Op: "AND", Conditions: conds}
}

// Or matches when any condition matches.
func Or(conds ...Filter) Filter {
	return Filter{Op: "OR", Conditions: conds}
}

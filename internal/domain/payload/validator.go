// Package payload checks document payloads against a collection's index schema.
package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/collection/field"
)

// DefaultCacheSize is the number of compiled schemas kept by default.
const DefaultCacheSize = 128

// Violation reasons.
const (
	reasonRequired    = "Field required"
	reasonFloat       = "Input should be a valid number"
	reasonInt         = "Input should be a valid integer"
	reasonIntFraction = "Input should be a valid integer, got a number with a fractional part"
	reasonString      = "Input should be a valid string"
	reasonBool        = "Input should be a valid boolean"
	reasonFloatParse  = "Input should be a valid number, unable to parse string as a number"
	reasonIntParse    = "Input should be a valid integer, unable to parse string as an integer"
	reasonBoolParse   = "Input should be a valid boolean, unable to interpret input"
)

type rule struct {
	name  string
	check func(v any) (reason string, ok bool)
}

// compiled is a schema turned into an ordered rule list. Safe for concurrent use.
type compiled struct {
	rules []rule
}

// Validator validates payloads; compiled schemas are shared through an LRU cache
// keyed by the canonical schema, so identical schemas across collections share one entry.
type Validator struct {
	cache    *lru.Cache[string, *compiled]
	observer func(hit bool)
}

// Option configures a Validator.
type Option func(*Validator)

// WithCacheObserver reports every cache lookup.
func WithCacheObserver(fn func(hit bool)) Option {
	return func(v *Validator) { v.observer = fn }
}

// NewValidator creates a Validator with the given cache capacity (<=0 selects the default).
func NewValidator(size int, opts ...Option) (*Validator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *compiled](size)
	if err != nil {
		return nil, fmt.Errorf("create validator cache: %w", err)
	}
	v := &Validator{cache: cache}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Validate requires every schema field to be present with a compatible value.
// Extra payload fields are allowed. All violations are reported in one
// *domain.SchemaValidationError.
func (v *Validator) Validate(payload map[string]any, schema map[string]field.Type, docID string) error {
	if len(schema) == 0 {
		return nil
	}

	c := v.compile(schema)

	var violations []domain.Violation
	for _, r := range c.rules {
		val, ok := payload[r.name]
		if !ok {
			violations = append(violations, domain.Violation{Field: r.name, Reason: reasonRequired})
			continue
		}
		if reason, ok := r.check(val); !ok {
			violations = append(violations, domain.Violation{Field: r.name, Reason: reason})
		}
	}

	if len(violations) > 0 {
		return &domain.SchemaValidationError{DocID: docID, Violations: violations}
	}
	return nil
}

// Len returns the number of cached compiled schemas.
func (v *Validator) Len() int { return v.cache.Len() }

func (v *Validator) compile(schema map[string]field.Type) *compiled {
	key := CanonicalKey(schema)
	if c, ok := v.cache.Get(key); ok {
		v.observe(true)
		return c
	}
	v.observe(false)

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	c := &compiled{rules: make([]rule, 0, len(names))}
	for _, name := range names {
		c.rules = append(c.rules, rule{name: name, check: checkerFor(schema[name])})
	}
	// Concurrent misses build equal values; the last Add wins.
	v.cache.Add(key, c)
	return c
}

func (v *Validator) observe(hit bool) {
	if v.observer != nil {
		v.observer(hit)
	}
}

// CanonicalKey renders a schema as sorted "name:type" pairs.
func CanonicalKey(schema map[string]field.Type) string {
	pairs := make([]string, 0, len(schema))
	for name, ft := range schema {
		pairs = append(pairs, name+":"+string(ft))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func checkerFor(ft field.Type) func(any) (string, bool) {
	switch ft {
	case field.Float:
		return checkFloat
	case field.Int:
		return checkInt
	case field.Bool:
		return checkBool
	case field.Keyword, field.Text:
		return checkString
	default:
		return func(any) (string, bool) {
			return fmt.Sprintf("unsupported field type %q", ft), false
		}
	}
}

// Checks follow lax coercion: numeric strings pass as numbers, booleans pass as
// 0 or 1, and 0/1 or words like "yes" pass as booleans. Strings stay strict.
func checkFloat(v any) (string, bool) {
	if str, ok := v.(string); ok {
		if _, ok := parseFloat(str); !ok {
			return reasonFloatParse, false
		}
		return "", true
	}
	if _, ok := asFloat(v); ok {
		return "", true
	}
	if _, ok := v.(bool); ok {
		return "", true
	}
	return reasonFloat, false
}

func checkInt(v any) (string, bool) {
	switch x := v.(type) {
	case bool:
		return "", true
	case string:
		str := strings.TrimSpace(x)
		if _, err := strconv.ParseInt(str, 10, 64); err == nil {
			return "", true
		}
		if f, ok := parseFloat(str); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return "", true
		}
		return reasonIntParse, false
	}
	f, ok := asFloat(v)
	if !ok {
		return reasonInt, false
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return reasonIntFraction, false
	}
	return "", true
}

func checkString(v any) (string, bool) {
	if _, ok := v.(string); ok {
		return "", true
	}
	return reasonString, false
}

func checkBool(v any) (string, bool) {
	switch x := v.(type) {
	case bool:
		return "", true
	case string:
		if _, ok := boolWords[strings.ToLower(strings.TrimSpace(x))]; ok {
			return "", true
		}
		return reasonBoolParse, false
	}
	if f, ok := asFloat(v); ok && (f == 0 || f == 1) {
		return "", true
	}
	return reasonBool, false
}

var boolWords = map[string]bool{
	"0": false, "off": false, "f": false, "false": false, "n": false, "no": false,
	"1": true, "on": true, "t": true, "true": true, "y": true, "yes": true,
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil && !math.IsNaN(f)
}

// asFloat accepts every Go numeric kind a JSON decoder may produce.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

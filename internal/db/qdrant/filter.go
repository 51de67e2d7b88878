package qdrant

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/search/filter"
)

// Transpile converts a filter tree into a Qdrant filter. A nil condition yields nil (match all).
//
// AND flattens its children's must and must_not lists into its own; a child that
// carries should clauses is kept as a nested filter inside must. OR keeps every
// child as its own nested should branch. An empty AND or OR yields a filter with
// no clauses, which Qdrant evaluates as match-all.
func Transpile(c filter.Condition) (*qdrant.Filter, error) {
	if c == nil {
		return nil, nil
	}
	return filter.Walk[*qdrant.Filter](c, transpiler{})
}

type transpiler struct{}

var _ filter.Visitor[*qdrant.Filter] = transpiler{}

func (transpiler) Eq(c filter.Eq) (*qdrant.Filter, error) {
	cond, err := match(c.Field, c.Value)
	if err != nil {
		return nil, err
	}
	return &qdrant.Filter{Must: []*qdrant.Condition{cond}}, nil
}

func (transpiler) Neq(c filter.Neq) (*qdrant.Filter, error) {
	cond, err := match(c.Field, c.Value)
	if err != nil {
		return nil, err
	}
	return &qdrant.Filter{MustNot: []*qdrant.Condition{cond}}, nil
}

func (transpiler) Lt(c filter.Lt) (*qdrant.Filter, error) {
	return bound(filter.OpLt, c.Field, c.Value)
}

func (transpiler) Lte(c filter.Lte) (*qdrant.Filter, error) {
	return bound(filter.OpLte, c.Field, c.Value)
}

func (transpiler) Gt(c filter.Gt) (*qdrant.Filter, error) {
	return bound(filter.OpGt, c.Field, c.Value)
}

func (transpiler) Gte(c filter.Gte) (*qdrant.Filter, error) {
	return bound(filter.OpGte, c.Field, c.Value)
}

func (transpiler) In(c filter.In) (*qdrant.Filter, error) {
	strs := make([]string, 0, len(c.Values))
	ints := make([]int64, 0, len(c.Values))
	for _, v := range c.Values {
		switch v.Kind() {
		case filter.KindString:
			strs = append(strs, v.Str())
		case filter.KindInt:
			ints = append(ints, v.Int64())
		}
	}

	switch {
	case len(strs) == len(c.Values):
		return &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatchKeywords(c.Field, strs...)}}, nil
	case len(ints) == len(c.Values):
		return &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatchInts(c.Field, ints...)}}, nil
	}

	// Mixed or float members: any-of over per-value equality.
	oneOf := &qdrant.Filter{}
	for _, v := range c.Values {
		cond, err := match(c.Field, v)
		if err != nil {
			return nil, err
		}
		oneOf.Should = append(oneOf.Should, cond)
	}
	return &qdrant.Filter{Must: []*qdrant.Condition{nested(oneOf)}}, nil
}

func (t transpiler) And(c filter.And) (*qdrant.Filter, error) {
	out := &qdrant.Filter{}
	for _, child := range c.Conditions {
		sub, err := filter.Walk[*qdrant.Filter](child, t)
		if err != nil {
			return nil, err
		}
		out.Must = append(out.Must, sub.GetMust()...)
		out.MustNot = append(out.MustNot, sub.GetMustNot()...)
		if len(sub.GetShould()) > 0 {
			out.Must = append(out.Must, nested(&qdrant.Filter{Should: sub.GetShould()}))
		}
	}
	return out, nil
}

func (t transpiler) Or(c filter.Or) (*qdrant.Filter, error) {
	out := &qdrant.Filter{Should: make([]*qdrant.Condition, 0, len(c.Conditions))}
	for _, child := range c.Conditions {
		sub, err := filter.Walk[*qdrant.Filter](child, t)
		if err != nil {
			return nil, err
		}
		out.Should = append(out.Should, nested(sub))
	}
	return out, nil
}

// match builds an equality condition. Qdrant has no float match, so floats
// become a closed range [v, v].
func match(field string, v filter.Scalar) (*qdrant.Condition, error) {
	switch v.Kind() {
	case filter.KindString:
		return qdrant.NewMatch(field, v.Str()), nil
	case filter.KindBool:
		return qdrant.NewMatchBool(field, v.Bool()), nil
	case filter.KindInt:
		return qdrant.NewMatchInt(field, v.Int64()), nil
	case filter.KindFloat:
		f, _ := v.Float64()
		return qdrant.NewRange(field, &qdrant.Range{Gte: &f, Lte: &f}), nil
	default:
		return nil, fmt.Errorf("%w: %q has no value", domain.ErrInvalidFilter, field)
	}
}

func bound(op filter.Op, field string, v filter.Scalar) (*qdrant.Filter, error) {
	f, ok := v.Float64()
	if !ok {
		return nil, fmt.Errorf("%w: %s %q requires a numeric value, got %s",
			domain.ErrInvalidFilter, op, field, v.Kind())
	}

	r := &qdrant.Range{}
	switch op {
	case filter.OpLt:
		r.Lt = &f
	case filter.OpLte:
		r.Lte = &f
	case filter.OpGt:
		r.Gt = &f
	default:
		r.Gte = &f
	}
	return &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewRange(field, r)}}, nil
}

func nested(f *qdrant.Filter) *qdrant.Condition {
	return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Filter{Filter: f}}
}

package filter

import (
	"fmt"

	"github.com/kailas-cloud/recall/internal/domain"
)

// Visitor handles every condition variant. Adding a variant adds a method here,
// so every backend translation stops compiling until it handles the new case.
type Visitor[T any] interface {
	Eq(Eq) (T, error)
	Neq(Neq) (T, error)
	Lt(Lt) (T, error)
	Lte(Lte) (T, error)
	Gt(Gt) (T, error)
	Gte(Gte) (T, error)
	In(In) (T, error)
	And(And) (T, error)
	Or(Or) (T, error)
}

// Walk dispatches c to the matching Visitor method.
func Walk[T any](c Condition, v Visitor[T]) (T, error) {
	switch n := c.(type) {
	case Eq:
		return v.Eq(n)
	case Neq:
		return v.Neq(n)
	case Lt:
		return v.Lt(n)
	case Lte:
		return v.Lte(n)
	case Gt:
		return v.Gt(n)
	case Gte:
		return v.Gte(n)
	case In:
		return v.In(n)
	case And:
		return v.And(n)
	case Or:
		return v.Or(n)
	default:
		var zero T
		return zero, fmt.Errorf("%w: %T", domain.ErrInvalidFilter, c)
	}
}

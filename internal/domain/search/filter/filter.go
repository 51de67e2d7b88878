// Package filter is the search filter DSL: a closed set of comparison,
// membership and boolean-group conditions over payload fields.
package filter

import "strings"

// Op names a condition variant on the wire.
type Op string

// Condition ops.
const (
	OpEq  Op = "EQ"
	OpNeq Op = "NEQ"
	OpLt  Op = "LT"
	OpLte Op = "LTE"
	OpGt  Op = "GT"
	OpGte Op = "GTE"
	OpIn  Op = "IN"
	OpAnd Op = "AND"
	OpOr  Op = "OR"
)

// ParseOp normalizes an op name; input is case-insensitive.
func ParseOp(s string) (Op, bool) {
	op := Op(strings.ToUpper(strings.TrimSpace(s)))
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIn, OpAnd, OpOr:
		return op, true
	default:
		return op, false
	}
}

// Condition is one node of a filter tree. The set of variants is closed:
// only the types in this package implement it.
type Condition interface {
	Op() Op
	condition()
}

// Eq matches payloads whose field equals Value.
type Eq struct {
	Field string
	Value Scalar
}

// Neq matches payloads whose field does not equal Value.
type Neq struct {
	Field string
	Value Scalar
}

// Lt is a strict upper bound.
type Lt struct {
	Field string
	Value Scalar
}

// Lte is an inclusive upper bound.
type Lte struct {
	Field string
	Value Scalar
}

// Gt is a strict lower bound.
type Gt struct {
	Field string
	Value Scalar
}

// Gte is an inclusive lower bound.
type Gte struct {
	Field string
	Value Scalar
}

// In matches payloads whose field equals any of Values.
type In struct {
	Field  string
	Values []Scalar
}

// And requires every child condition.
type And struct {
	Conditions []Condition
}

// Or requires at least one child condition.
type Or struct {
	Conditions []Condition
}

func (Eq) Op() Op  { return OpEq }
func (Neq) Op() Op { return OpNeq }
func (Lt) Op() Op  { return OpLt }
func (Lte) Op() Op { return OpLte }
func (Gt) Op() Op  { return OpGt }
func (Gte) Op() Op { return OpGte }
func (In) Op() Op  { return OpIn }
func (And) Op() Op { return OpAnd }
func (Or) Op() Op  { return OpOr }

func (Eq) condition()  {}
func (Neq) condition() {}
func (Lt) condition()  {}
func (Lte) condition() {}
func (Gt) condition()  {}
func (Gte) condition() {}
func (In) condition()  {}
func (And) condition() {}
func (Or) condition()  {}

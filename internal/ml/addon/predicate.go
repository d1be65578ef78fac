package addon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Field names a typed input the rule predicates can reference
type Field string

const (
	FieldPrice     Field = "price"
	FieldCartTotal Field = "cart_total"
	FieldMonth     Field = "month"
	FieldCategory  Field = "category"
	FieldOccasion  Field = "occasion"
	FieldGiftType  Field = "gift_type"
)

// Op is a numeric comparison operator
type Op string

const (
	OpGT  Op = ">"
	OpGTE Op = ">="
	OpLT  Op = "<"
	OpLTE Op = "<="
	OpEQ  Op = "=="
	OpNEQ Op = "!="
)

// Context is the typed input rules are evaluated against. Evaluation
// is pure; the engine never mutates it.
type Context struct {
	Price     decimal.Decimal
	CartTotal decimal.Decimal
	Month     time.Month
	Category  string
	Occasion  string
	GiftType  string
}

// numeric resolves a numeric field, false when the field is not numeric
func (c Context) numeric(f Field) (float64, bool) {
	switch f {
	case FieldPrice:
		v, _ := c.Price.Float64()
		return v, true
	case FieldCartTotal:
		v, _ := c.CartTotal.Float64()
		return v, true
	case FieldMonth:
		return float64(c.Month), true
	default:
		return 0, false
	}
}

// text resolves a string field, false when the field is not textual
func (c Context) text(f Field) (string, bool) {
	switch f {
	case FieldCategory:
		return c.Category, true
	case FieldOccasion:
		return c.Occasion, true
	case FieldGiftType:
		return c.GiftType, true
	default:
		return "", false
	}
}

// Predicate is a rule condition evaluated against a Context
type Predicate interface {
	Eval(ctx Context) bool
}

// Comparison compares a numeric field against a constant
type Comparison struct {
	Field Field
	Op    Op
	Value float64
}

// Eval implements Predicate
func (p Comparison) Eval(ctx Context) bool {
	v, ok := ctx.numeric(p.Field)
	if !ok {
		return false
	}
	switch p.Op {
	case OpGT:
		return v > p.Value
	case OpGTE:
		return v >= p.Value
	case OpLT:
		return v < p.Value
	case OpLTE:
		return v <= p.Value
	case OpEQ:
		return v == p.Value
	case OpNEQ:
		return v != p.Value
	default:
		return false
	}
}

// Equals matches a string field case-insensitively
type Equals struct {
	Field Field
	Value string
}

// Eval implements Predicate
func (p Equals) Eval(ctx Context) bool {
	v, ok := ctx.text(p.Field)
	if !ok {
		return false
	}
	return strings.EqualFold(v, p.Value)
}

// And is true when every child predicate is true
type And []Predicate

// Eval implements Predicate
func (p And) Eval(ctx Context) bool {
	for _, child := range p {
		if !child.Eval(ctx) {
			return false
		}
	}
	return true
}

// Or is true when any child predicate is true
type Or []Predicate

// Eval implements Predicate
func (p Or) Eval(ctx Context) bool {
	for _, child := range p {
		if child.Eval(ctx) {
			return true
		}
	}
	return false
}

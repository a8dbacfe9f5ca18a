package recipe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Operator is a comparison operator of a Condition.
type Operator string

// Comparison operators.
const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
)

// Condition gates a step on the current canvas geometry or on metadata.
//
// Field is "width", "height", "aspectRatio" or "metadata.<key>".
type Condition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`
}

// Geometry is the canvas state a condition is evaluated against.
type Geometry struct {
	Width  int
	Height int
}

// AspectRatio returns Width / Height, or 0 for an empty geometry.
func (g Geometry) AspectRatio() float64 {
	if g.Height == 0 {
		return 0
	}
	return float64(g.Width) / float64(g.Height)
}

var (
	errUnknownField    = errors.New("unknown condition field")
	errUnknownOperator = errors.New("unknown condition operator")
)

// Evaluate reports whether cond holds. A nil condition holds; unknown
// fields and operators evaluate to false.
func Evaluate(cond *Condition, g Geometry, metadata map[string]any) bool {
	ok, err := check(cond, g, metadata)
	if err != nil {
		Logger().Debug("recipe: condition unresolved", "field", cond.Field, "operator", string(cond.Operator), "err", err)
	}
	return ok
}

func check(cond *Condition, g Geometry, metadata map[string]any) (bool, error) {
	if cond == nil {
		return true, nil
	}
	var left any
	switch {
	case cond.Field == "width":
		left = g.Width
	case cond.Field == "height":
		left = g.Height
	case cond.Field == "aspectRatio":
		left = g.AspectRatio()
	case strings.HasPrefix(cond.Field, "metadata."):
		left, _ = lookupMeta(metadata, strings.TrimPrefix(cond.Field, "metadata."))
	default:
		return false, fmt.Errorf("%w %q", errUnknownField, cond.Field)
	}
	return compare(left, cond.Operator, cond.Value)
}

func compare(left any, op Operator, right any) (bool, error) {
	switch op {
	case OpEq:
		return looseEqual(left, right), nil
	case OpNeq:
		return !looseEqual(left, right), nil
	case OpGt, OpLt, OpGte, OpLte:
		l, lok := toFloat(left)
		r, rok := toFloat(right)
		if !lok || !rok {
			return false, nil
		}
		switch op {
		case OpGt:
			return l > r, nil
		case OpLt:
			return l < r, nil
		case OpGte:
			return l >= r, nil
		}
		return l <= r, nil
	case OpContains:
		if left == nil || right == nil {
			return false, nil
		}
		return strings.Contains(toString(left), toString(right)), nil
	}
	return false, fmt.Errorf("%w %q", errUnknownOperator, op)
}

// looseEqual follows JavaScript's == for the value kinds metadata holds.
// nil equals only nil. Booleans become 1 or 0. A string compared with a
// number is read as a number, the blank string being 0.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := a.(bool); ok {
		a = boolNumber(x)
	}
	if y, ok := b.(bool); ok {
		b = boolNumber(y)
	}

	as, aStr := a.(string)
	bs, bStr := b.(string)
	switch {
	case aStr && bStr:
		return as == bs
	case aStr:
		if y, ok := numeric(b); ok {
			x, ok := stringNumber(as)
			return ok && x == y
		}
	case bStr:
		if x, ok := numeric(a); ok {
			y, ok := stringNumber(bs)
			return ok && x == y
		}
	default:
		x, xok := numeric(a)
		y, yok := numeric(b)
		if xok && yok {
			return x == y
		}
	}
	return toString(a) == toString(b)
}

func boolNumber(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// numeric accepts Go number kinds only.
func numeric(v any) (float64, bool) {
	switch v.(type) {
	case string, bool, fmt.Stringer:
		return 0, false
	}
	return toFloat(v)
}

func stringNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

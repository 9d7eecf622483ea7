package query

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dukex/cognipipe/pkg/models"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotBoolean    = errors.New("expression is not boolean")
)

// Predicate reports whether a row of the bound frame matches.
type Predicate func(row []any) bool

// Query is a parsed row predicate, independent of any frame.
type Query struct {
	src  string
	expr Expr
}

// Parse parses a predicate such as `Age >= 18 and Sex == "female"`.
func Parse(src string) (*Query, error) {
	expr, err := parseExpr(src)
	if err != nil {
		return nil, err
	}

	return &Query{src: src, expr: expr}, nil
}

func (q *Query) String() string {
	return q.src
}

// Expr returns the root of the syntax tree.
func (q *Query) Expr() Expr {
	return q.expr
}

// Columns returns the referenced column names in order of first appearance.
func (q *Query) Columns() []string {
	var names []string

	seen := map[string]bool{}

	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case *ColumnExpr:
			if !seen[e.Name] {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		case *CompareExpr:
			walk(e.Left)
			walk(e.Right)
		case *InExpr:
			walk(e.Operand)
		case *LogicalExpr:
			walk(e.Left)
			walk(e.Right)
		case *NotExpr:
			walk(e.Operand)
		}
	}
	walk(q.expr)

	return names
}

// Bind resolves column references against the frame and type checks the
// query. The returned predicate takes rows of that frame.
func (q *Query) Bind(frame *models.Frame) (Predicate, error) {
	b := &binder{frame: frame}

	eval, typ, err := b.bind(q.expr)
	if err != nil {
		return nil, err
	}

	if typ != typeBool {
		return nil, fmt.Errorf("%w: query yields %s", ErrNotBoolean, typ)
	}

	return func(row []any) bool {
		return truthy(eval(row))
	}, nil
}

type valueType string

const (
	typeNumber valueType = "number"
	typeString valueType = "string"
	typeBool   valueType = "bool"
	typeNull   valueType = "null"
)

type evaluator func(row []any) any

type binder struct {
	frame *models.Frame
}

func (b *binder) bind(e Expr) (evaluator, valueType, error) {
	switch e := e.(type) {
	case *ColumnExpr:
		col, pos, ok := b.frame.Column(e.Name)
		if !ok {
			return nil, "", fmt.Errorf("%w %q", ErrUnknownColumn, e.Name)
		}

		return func(row []any) any { return row[pos] }, kindType(col.Kind), nil

	case *LiteralExpr:
		value := e.Value

		return func([]any) any { return value }, literalType(value), nil

	case *CompareExpr:
		left, _, err := b.bind(e.Left)
		if err != nil {
			return nil, "", err
		}

		right, _, err := b.bind(e.Right)
		if err != nil {
			return nil, "", err
		}

		op := e.Op

		return func(row []any) any { return compare(op, left(row), right(row)) }, typeBool, nil

	case *InExpr:
		operand, _, err := b.bind(e.Operand)
		if err != nil {
			return nil, "", err
		}

		values, negated := e.Values, e.Negated

		return func(row []any) any {
			v := operand(row)
			if v == nil {
				return negated
			}

			for _, candidate := range values {
				if compare("==", v, candidate) {
					return !negated
				}
			}

			return negated
		}, typeBool, nil

	case *LogicalExpr:
		left, err := b.bindBool(e.Left, e.Op)
		if err != nil {
			return nil, "", err
		}

		right, err := b.bindBool(e.Right, e.Op)
		if err != nil {
			return nil, "", err
		}

		if e.Op == "and" {
			return func(row []any) any { return truthy(left(row)) && truthy(right(row)) }, typeBool, nil
		}

		return func(row []any) any { return truthy(left(row)) || truthy(right(row)) }, typeBool, nil

	case *NotExpr:
		operand, err := b.bindBool(e.Operand, "not")
		if err != nil {
			return nil, "", err
		}

		return func(row []any) any { return !truthy(operand(row)) }, typeBool, nil
	}

	return nil, "", fmt.Errorf("unsupported expression %T", e)
}

func (b *binder) bindBool(e Expr, op string) (evaluator, error) {
	eval, typ, err := b.bind(e)
	if err != nil {
		return nil, err
	}

	if typ != typeBool {
		return nil, fmt.Errorf("%w: operand of %s is %s", ErrNotBoolean, op, typ)
	}

	return eval, nil
}

func kindType(k models.Kind) valueType {
	switch k {
	case models.KindInt, models.KindFloat:
		return typeNumber
	case models.KindBool:
		return typeBool
	default:
		return typeString
	}
}

func literalType(v any) valueType {
	switch v.(type) {
	case nil:
		return typeNull
	case int64, float64:
		return typeNumber
	case bool:
		return typeBool
	default:
		return typeString
	}
}

// truthy treats missing cells as false.
func truthy(v any) bool {
	b, ok := v.(bool)

	return ok && b
}

// compare applies op to two cell values. A missing operand or a pair of
// incomparable kinds makes every operator false except "!=".
func compare(op string, a, b any) bool {
	c, ok := order(a, b)
	if !ok {
		return op == "!="
	}

	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}

	return false
}

func order(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}

	if x, ok := a.(int64); ok {
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y), true
		}
	}

	if x, ok := toFloat(a); ok {
		y, ok := toFloat(b)
		if !ok || math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}

		return cmp.Compare(x, y), true
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}

		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}

		return cmp.Compare(boolRank(x), boolRank(y)), true
	}

	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}

	return 0, false
}

func boolRank(b bool) int {
	if b {
		return 1
	}

	return 0
}

package filter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Operator is a canonical comparison operator.
type Operator string

const (
	OpEqual         Operator = "="
	OpNotEqual      Operator = "!="
	OpContains      Operator = "contains"
	OpBeginsWith    Operator = "beginsWith"
	OpEndsWith      Operator = "endsWith"
	OpNotContains   Operator = "doesNotContain"
	OpNotBeginsWith Operator = "doesNotBeginWith"
	OpNotEndsWith   Operator = "doesNotEndWith"
	OpGreater       Operator = ">"
	OpGreaterEqual  Operator = ">="
	OpLess          Operator = "<"
	OpLessEqual     Operator = "<="
	OpBetween       Operator = "between"
	OpNotBetween    Operator = "notBetween"
	OpIn            Operator = "in"
	OpNotIn         Operator = "notIn"
	OpNull          Operator = "null"
	OpNotNull       Operator = "notNull"
	OpIsEmpty       Operator = "isEmpty"
	OpIsNotEmpty    Operator = "isNotEmpty"
)

var operatorAliases = map[string]Operator{
	"=":                OpEqual,
	"==":               OpEqual,
	"equals":           OpEqual,
	"!=":               OpNotEqual,
	"<>":               OpNotEqual,
	"doesnotequal":     OpNotEqual,
	"contains":         OpContains,
	"like":             OpContains,
	"beginswith":       OpBeginsWith,
	"endswith":         OpEndsWith,
	"doesnotcontain":   OpNotContains,
	"notcontains":      OpNotContains,
	"notlike":          OpNotContains,
	"notbeginswith":    OpNotBeginsWith,
	"doesnotbeginwith": OpNotBeginsWith,
	"notendswith":      OpNotEndsWith,
	"doesnotendwith":   OpNotEndsWith,
	">":                OpGreater,
	"gt":               OpGreater,
	">=":               OpGreaterEqual,
	"gte":              OpGreaterEqual,
	"<":                OpLess,
	"lt":               OpLess,
	"<=":               OpLessEqual,
	"lte":              OpLessEqual,
	"between":          OpBetween,
	"notbetween":       OpNotBetween,
	"in":               OpIn,
	"notin":            OpNotIn,
	"null":             OpNull,
	"isnull":           OpNull,
	"notnull":          OpNotNull,
	"isnotnull":        OpNotNull,
	"isempty":          OpIsEmpty,
	"isnotempty":       OpIsNotEmpty,
}

// ParseOperator maps an operator name or alias to its canonical form.
func ParseOperator(s string) (Operator, bool) {
	op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]
	return op, ok
}

// IsNullary reports whether the operator ignores its value.
func (o Operator) IsNullary() bool {
	switch o {
	case OpNull, OpNotNull, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// operand is the left-hand side of a predicate.
type operand struct {
	expr  string
	class ValueClass
}

// folded is the expression used for case-insensitive and date-normalised comparisons.
func (o operand) folded() string {
	switch o.class {
	case Text:
		return "UPPER(" + o.expr + ")"
	case Date:
		return "CAST(" + o.expr + " AS DATE)"
	default:
		return o.expr
	}
}

// ordered is the expression used for range comparisons: no case folding.
func (o operand) ordered() string {
	if o.class == Date {
		return "CAST(" + o.expr + " AS DATE)"
	}
	return o.expr
}

// pattern is the expression matched by LIKE operators.
func (o operand) pattern() string {
	switch o.class {
	case Text:
		return "UPPER(" + o.expr + ")"
	case Date:
		return "CAST(CAST(" + o.expr + " AS DATE) AS VARCHAR)"
	default:
		return "CAST(" + o.expr + " AS VARCHAR)"
	}
}

func (o operand) placeholder() string {
	if o.class == Date {
		return "CAST(? AS DATE)"
	}
	return "?"
}

func (o operand) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = o.placeholder()
	}
	return strings.Join(ps, ", ")
}

// compileOperator builds the predicate for one operator application. A nil predicate
// with an empty reason means the value was empty and the clause is skipped silently.
func compileOperator(o operand, op Operator, value any) (sq.Sqlizer, string) {
	switch op {
	case OpNull:
		return sq.Expr(o.expr + " IS NULL"), ""
	case OpNotNull:
		return sq.Expr(o.expr + " IS NOT NULL"), ""
	case OpIsEmpty:
		if o.class == Text {
			return sq.Expr(fmt.Sprintf("(%s IS NULL OR %s = '')", o.expr, o.expr)), ""
		}
		return sq.Expr(o.expr + " IS NULL"), ""
	case OpIsNotEmpty:
		if o.class == Text {
			return sq.Expr(fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", o.expr, o.expr)), ""
		}
		return sq.Expr(o.expr + " IS NOT NULL"), ""
	}

	if isEmptyValue(value) {
		return nil, ""
	}

	switch op {
	case OpEqual, OpNotEqual:
		v, reason := o.scalar(value, true)
		if reason != "" {
			return nil, reason
		}
		sqlOp := "="
		if op == OpNotEqual {
			sqlOp = "<>"
		}
		return sq.Expr(fmt.Sprintf("%s %s %s", o.folded(), sqlOp, o.placeholder()), v), ""

	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		v, reason := o.scalar(value, false)
		if reason != "" {
			return nil, reason
		}
		return sq.Expr(fmt.Sprintf("%s %s %s", o.ordered(), string(op), o.placeholder()), v), ""

	case OpContains, OpBeginsWith, OpEndsWith, OpNotContains, OpNotBeginsWith, OpNotEndsWith:
		s := toString(value)
		if o.class == Text {
			s = strings.ToUpper(s)
		}
		var like string
		switch op {
		case OpContains, OpNotContains:
			like = "%" + s + "%"
		case OpBeginsWith, OpNotBeginsWith:
			like = s + "%"
		default:
			like = "%" + s
		}
		sqlOp := "LIKE"
		if op == OpNotContains || op == OpNotBeginsWith || op == OpNotEndsWith {
			sqlOp = "NOT LIKE"
		}
		return sq.Expr(fmt.Sprintf("%s %s ?", o.pattern(), sqlOp), like), ""

	case OpBetween, OpNotBetween:
		parts := toList(value)
		if len(parts) != 2 || isEmptyValue(parts[0]) || isEmptyValue(parts[1]) {
			return nil, fmt.Sprintf("%s needs exactly two values", op)
		}
		lo, reason := o.scalar(parts[0], false)
		if reason != "" {
			return nil, reason
		}
		hi, reason := o.scalar(parts[1], false)
		if reason != "" {
			return nil, reason
		}
		sqlOp := "BETWEEN"
		if op == OpNotBetween {
			sqlOp = "NOT BETWEEN"
		}
		return sq.Expr(fmt.Sprintf("%s %s %s AND %s", o.ordered(), sqlOp, o.placeholder(), o.placeholder()), lo, hi), ""

	case OpIn, OpNotIn:
		var args []any
		for _, p := range toList(value) {
			if isEmptyValue(p) {
				continue
			}
			v, reason := o.scalar(p, true)
			if reason != "" {
				return nil, reason
			}
			args = append(args, v)
		}
		if len(args) == 0 {
			return nil, ""
		}
		sqlOp := "IN"
		if op == OpNotIn {
			sqlOp = "NOT IN"
		}
		return sq.Expr(fmt.Sprintf("%s %s (%s)", o.folded(), sqlOp, o.placeholders(len(args))), args...), ""
	}

	return nil, fmt.Sprintf("operator %q not supported", op)
}

// scalar normalises a single comparison value for the operand's class.
func (o operand) scalar(value any, fold bool) (any, string) {
	switch o.class {
	case Numeric:
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Sprintf("value %q is not numeric", toString(value))
		}
		return f, ""
	case Text:
		s := toString(value)
		if fold {
			s = strings.ToUpper(s)
		}
		return s, ""
	case Date:
		d, ok := toDate(value)
		if !ok {
			return nil, fmt.Sprintf("value %q is not a date", toString(value))
		}
		return d, ""
	default:
		return strings.TrimSpace(toString(value)), ""
	}
}

// dateLayouts are the accepted date inputs, most common first.
var dateLayouts = []string{time.DateOnly, time.RFC3339, time.DateTime}

// toDate normalises a date value to YYYY-MM-DD.
func toDate(v any) (string, bool) {
	s := strings.TrimSpace(toString(v))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// toList accepts an array or a comma separated string.
func toList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	case string:
		parts := strings.Split(t, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	case nil:
		return nil
	default:
		return []any{t}
	}
}

var operatorOrder = []Operator{
	OpEqual, OpNotEqual,
	OpContains, OpBeginsWith, OpEndsWith, OpNotContains, OpNotBeginsWith, OpNotEndsWith,
	OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
	OpBetween, OpNotBetween, OpIn, OpNotIn,
	OpNull, OpNotNull, OpIsEmpty, OpIsNotEmpty,
}

// OperatorsFor lists the canonical operators a catalog field accepts.
func OperatorsFor(info FieldInfo) []string {
	out := make([]string, 0, len(operatorOrder))
	for _, op := range operatorOrder {
		if info.Relation == calculatedPrefix && !calculatedOperators[op] {
			continue
		}
		out = append(out, string(op))
	}
	return out
}

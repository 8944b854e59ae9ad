package filter

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Diagnostic records a clause the compiler dropped or reinterpreted.
type Diagnostic struct {
	Field    string
	Operator string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Field, d.Operator, d.Message)
}

// Result is a compiled rule tree. Predicate is nil when no clause survived.
type Result struct {
	Predicate   sq.Sqlizer
	Diagnostics []Diagnostic
}

// Empty reports whether the tree produced no predicate at all.
func (r *Result) Empty() bool {
	return r == nil || r.Predicate == nil
}

// CompileError is returned in strict mode for the first clause that would be dropped.
type CompileError struct {
	Diagnostic Diagnostic
}

func (e *CompileError) Error() string {
	return "cannot compile filter: " + e.Diagnostic.String()
}

// Compiler turns a rule tree into a predicate over the header relation.
// It holds no mutable state and is safe for concurrent use.
type Compiler struct {
	strict bool
}

type CompilerOption func(*Compiler)

// WithStrict makes the compiler fail instead of dropping unsupported clauses.
func WithStrict() CompilerOption {
	return func(c *Compiler) {
		c.strict = true
	}
}

func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles the tree. Identical trees produce identical SQL and arguments.
func (c *Compiler) Compile(g *Group) (*Result, error) {
	res := &Result{}
	if g == nil {
		return res, nil
	}
	pred, err := c.compileGroup(g, res)
	if err != nil {
		return nil, err
	}
	res.Predicate = pred
	return res, nil
}

// slot is a position in a group's output: either a finished fragment or
// the EXISTS subquery collecting every leaf of one child scope.
type slot struct {
	fragment sq.Sqlizer
	scope    *Scope
}

func (c *Compiler) compileGroup(g *Group, res *Result) (sq.Sqlizer, error) {
	var slots []slot
	scoped := make(map[Scope][]sq.Sqlizer)

	for _, child := range g.Rules {
		switch n := child.(type) {
		case *Group:
			frag, err := c.compileGroup(n, res)
			if err != nil {
				return nil, err
			}
			if frag != nil {
				slots = append(slots, slot{fragment: frag})
			}
		case *Rule:
			route, frag, err := c.compileRule(n, res)
			if err != nil {
				return nil, err
			}
			if frag == nil {
				continue
			}
			if route.IsCalculated() || route.IsHeader() {
				slots = append(slots, slot{fragment: frag})
				continue
			}
			scope := route.Scope
			if _, seen := scoped[scope]; !seen {
				slots = append(slots, slot{scope: &scope})
			}
			scoped[scope] = append(scoped[scope], frag)
		}
	}

	parts := make([]sq.Sqlizer, 0, len(slots))
	for _, s := range slots {
		if s.scope == nil {
			parts = append(parts, s.fragment)
			continue
		}
		exists, err := existsIn(*s.scope, combine(g.Combinator, scoped[*s.scope]))
		if err != nil {
			return nil, err
		}
		parts = append(parts, exists)
	}

	return combine(g.Combinator, parts), nil
}

func (c *Compiler) compileRule(r *Rule, res *Result) (Route, sq.Sqlizer, error) {
	op, known := ParseOperator(r.Operator)
	if !op.IsNullary() && isEmptyValue(r.Value) {
		return Route{}, nil, nil
	}

	route, err := Resolve(r.Field)
	if err != nil {
		return Route{}, nil, c.drop(res, r, err.Error())
	}
	if route.Fallback {
		if c.strict {
			return Route{}, nil, c.drop(res, r, "unknown field")
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Field: r.Field, Operator: r.Operator, Message: "unknown field, treated as a header column"})
	}

	if !known {
		if c.strict {
			return Route{}, nil, c.drop(res, r, "unknown operator")
		}
		res.Diagnostics = append(res.Diagnostics, Diagnostic{Field: r.Field, Operator: r.Operator, Message: "unknown operator, using ="})
		op = OpEqual
	}

	if route.IsCalculated() && !calculatedOperators[op] {
		return Route{}, nil, c.drop(res, r, fmt.Sprintf("operator %s not defined for calculated fields", op))
	}

	frag, reason := compileOperator(operand{expr: route.Expr(), class: route.Class}, op, r.Value)
	if frag == nil && reason != "" {
		return Route{}, nil, c.drop(res, r, reason)
	}
	return route, frag, nil
}

// drop records a diagnostic for a skipped clause; in strict mode it fails instead.
func (c *Compiler) drop(res *Result, r *Rule, msg string) error {
	d := Diagnostic{Field: r.Field, Operator: r.Operator, Message: msg}
	if c.strict {
		return &CompileError{Diagnostic: d}
	}
	res.Diagnostics = append(res.Diagnostics, d)
	return nil
}

func combine(c Combinator, parts []sq.Sqlizer) sq.Sqlizer {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return parts[0]
	}
	if c == CombinatorOr {
		return sq.Or(parts)
	}
	return sq.And(parts)
}

// existsIn correlates cond with the header through a single row of the scope's relation.
func existsIn(scope Scope, cond sq.Sqlizer) (sq.Sqlizer, error) {
	rel := scope.Relation
	if scope.Role != "" {
		cond = sq.And{sq.Eq{rel.Column(RoleColumn): scope.Role}, cond}
	}
	sql, args, err := cond.ToSql()
	if err != nil {
		return nil, err
	}
	return sq.Expr(fmt.Sprintf("EXISTS (SELECT 1 FROM %s %s WHERE %s = %s.%s AND %s)",
		rel.Table(), rel.Alias(), rel.Column(JoinKey), HeaderAlias, JoinKey, sql), args...), nil
}

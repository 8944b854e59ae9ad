package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Combinator joins the children of a Group.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

func (c Combinator) String() string {
	return string(c)
}

func parseCombinator(s string) Combinator {
	if strings.EqualFold(strings.TrimSpace(s), string(CombinatorOr)) {
		return CombinatorOr
	}
	return CombinatorAnd
}

// Node is either a *Rule or a *Group.
type Node interface {
	String() string
	node()
}

// Rule is a single leaf condition.
type Rule struct {
	Field    string
	Operator string
	Value    any
}

func (*Rule) node() {}

func (r *Rule) String() string {
	return fmt.Sprintf("(%s %s %s)", r.Field, r.Operator, formatValue(r.Value))
}

// Group combines child nodes with a single combinator.
type Group struct {
	Combinator Combinator
	Rules      []Node
}

func (*Group) node() {}

func (g *Group) String() string {
	parts := make([]string, 0, len(g.Rules))
	for _, r := range g.Rules {
		parts = append(parts, r.String())
	}
	return "(" + strings.Join(parts, " "+g.Combinator.String()+" ") + ")"
}

// NewGroup returns a group with the given combinator and children.
func NewGroup(c Combinator, rules ...Node) *Group {
	return &Group{Combinator: c, Rules: rules}
}

// NewRule returns a leaf rule.
func NewRule(field, operator string, value any) *Rule {
	return &Rule{Field: field, Operator: operator, Value: value}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, formatValue(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, strconv.Quote(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v", t)
	}
}

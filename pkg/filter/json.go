package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// rawNode is the wire form of a rule tree node as sent by the query builder UI.
type rawNode struct {
	Combinator *string         `json:"combinator"`
	Rules      json.RawMessage `json:"rules"`
	Field      *string         `json:"field"`
	Operator   string          `json:"operator"`
	Value      any             `json:"value"`
}

// ParseRuleTree parses a JSON rule tree. Only invalid JSON or a non-object root is an
// error; malformed children are skipped so they contribute no predicate.
func ParseRuleTree(data []byte) (*Group, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NewGroup(CombinatorAnd), nil
	}
	var root rawNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid rule tree: %w", err)
	}
	return root.group(), nil
}

// UnmarshalJSON lets a Group be embedded in request bodies.
func (g *Group) UnmarshalJSON(data []byte) error {
	parsed, err := ParseRuleTree(data)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}

func (n rawNode) group() *Group {
	g := &Group{Combinator: CombinatorAnd}
	if n.Combinator != nil {
		g.Combinator = parseCombinator(*n.Combinator)
	}

	var children []json.RawMessage
	if len(n.Rules) == 0 || json.Unmarshal(n.Rules, &children) != nil {
		return g
	}

	for _, raw := range children {
		var child rawNode
		if err := json.Unmarshal(raw, &child); err != nil {
			continue
		}
		switch {
		case child.Rules != nil || child.Combinator != nil:
			g.Rules = append(g.Rules, child.group())
		case child.Field != nil:
			g.Rules = append(g.Rules, &Rule{Field: *child.Field, Operator: child.Operator, Value: child.Value})
		}
	}
	return g
}

// Flat filter keys for registration date ranges.
const (
	DateFromKey = "date_from"
	DateToKey   = "date_to"
)

// FromFlat turns a flat key/value filter map into an AND group. Text columns are
// matched with contains, everything else with equality. Keys are visited in sorted
// order so the compiled predicate is stable.
func FromFlat(filters map[string]string) *Group {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	g := NewGroup(CombinatorAnd)
	for _, k := range keys {
		v := filters[k]
		switch k {
		case DateFromKey:
			g.Rules = append(g.Rules, NewRule("tanggaldaftar", string(OpGreaterEqual), v))
			continue
		case DateToKey:
			g.Rules = append(g.Rules, NewRule("tanggaldaftar", string(OpLessEqual), v))
			continue
		}
		op := OpEqual
		if route, err := Resolve(k); err == nil && !route.IsCalculated() && route.Class == Text {
			op = OpContains
		}
		g.Rules = append(g.Rules, NewRule(k, string(op), v))
	}
	return g
}

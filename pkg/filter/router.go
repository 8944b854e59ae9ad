package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const calculatedPrefix = "calculated"

// headerFields are the un-prefixed fields routed to the header directly.
var headerFields = []string{"nomordaftar", "tanggaldaftar", "jalur", "nomoraju"}

var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Route is the result of resolving a dotted field name.
type Route struct {
	Field      string
	Scope      Scope
	Column     string
	Class      ValueClass
	Calculated CalculatedField
	// Fallback marks a field nobody declared, treated as a literal header column.
	Fallback bool
}

// IsCalculated reports whether the route points at a calculated field.
func (r Route) IsCalculated() bool {
	return r.Calculated != ""
}

// IsHeader reports whether the route points at the primary relation.
func (r Route) IsHeader() bool {
	return !r.IsCalculated() && r.Scope.Relation == Header
}

// Expr returns the qualified SQL expression of the route.
func (r Route) Expr() string {
	if r.IsCalculated() {
		return r.Calculated.Expr()
	}
	return r.Scope.Relation.Column(r.Column)
}

// UnsupportedFieldError is returned when a field cannot be routed at all.
type UnsupportedFieldError struct {
	Field  string
	Reason string
}

func (e *UnsupportedFieldError) Error() string {
	return fmt.Sprintf("unsupported field %q: %s", e.Field, e.Reason)
}

// Resolve maps a dotted field name to its relation, column and value class.
func Resolve(field string) (Route, error) {
	name := lower(field)
	if name == "" {
		return Route{}, &UnsupportedFieldError{Field: field, Reason: "empty field name"}
	}

	prefix, column, dotted := strings.Cut(name, ".")
	if !dotted {
		return resolveBare(field, name)
	}

	if prefix == calculatedPrefix {
		cf, ok := lookupCalculated(column)
		if !ok {
			return Route{}, &UnsupportedFieldError{Field: field, Reason: "unknown calculated field"}
		}
		return Route{Field: field, Scope: Scope{Relation: Header}, Column: column, Class: Numeric, Calculated: cf}, nil
	}

	scope, ok := prefixes[prefix]
	if !ok {
		return Route{}, &UnsupportedFieldError{Field: field, Reason: fmt.Sprintf("unknown prefix %q", prefix)}
	}
	if !identifierRe.MatchString(column) {
		return Route{}, &UnsupportedFieldError{Field: field, Reason: "column is not a plain identifier"}
	}

	return Route{
		Field:  field,
		Scope:  scope,
		Column: column,
		Class:  scope.Relation.ClassOf(column),
	}, nil
}

func resolveBare(field, name string) (Route, error) {
	if !identifierRe.MatchString(name) {
		return Route{}, &UnsupportedFieldError{Field: field, Reason: "column is not a plain identifier"}
	}

	for _, f := range headerFields {
		if f == name {
			return Route{Field: field, Scope: Scope{Relation: Header}, Column: name, Class: Header.ClassOf(name)}, nil
		}
	}

	// older flat-filter callers send detail columns without the data. prefix
	if Detail.Knows(name) {
		return Route{Field: field, Scope: Scope{Relation: Detail}, Column: name, Class: Detail.ClassOf(name)}, nil
	}

	return Route{
		Field:    field,
		Scope:    Scope{Relation: Header},
		Column:   name,
		Class:    Header.ClassOf(name),
		Fallback: !Header.Knows(name),
	}, nil
}

// FieldInfo describes a routable field for front-end query builders.
type FieldInfo struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Class    string `json:"type"`
}

// Fields returns the catalog of routable fields, sorted by name.
func Fields() []FieldInfo {
	var out []FieldInfo
	for _, f := range headerFields {
		out = append(out, FieldInfo{Name: f, Relation: Header.String(), Class: Header.ClassOf(f).String()})
	}
	for prefix, scope := range prefixes {
		rel := scope.Relation
		cols := append(append(append([]string{}, rel.TextColumns()...), rel.NumericColumns()...), rel.DateColumns()...)
		for _, c := range cols {
			if scope.Role != "" && c == RoleColumn {
				continue
			}
			out = append(out, FieldInfo{Name: prefix + "." + c, Relation: rel.String(), Class: rel.ClassOf(c).String()})
		}
	}
	for _, cf := range CalculatedFields() {
		out = append(out, FieldInfo{Name: calculatedPrefix + "." + string(cf), Relation: calculatedPrefix, Class: Numeric.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

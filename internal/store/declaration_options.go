package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ListOption modifies a SELECT query for filtering/sorting/pagination.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// DefaultSortField is used when no or an unknown sort field is requested.
const DefaultSortField = "tanggaldaftar"

// sortColumns is the header sort whitelist.
var sortColumns = map[string]string{
	"nomordaftar":   "h.nomordaftar",
	"tanggaldaftar": "h.tanggaldaftar",
	"jalur":         "h.jalur",
	"nomoraju":      "h.nomoraju",
	"idheader":      "h.idheader",
}

// IsSortable reports whether field is in the header sort whitelist.
func IsSortable(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// WithPredicate adds a compiled filter predicate. A nil predicate is ignored.
func WithPredicate(pred sq.Sqlizer) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if pred == nil {
			return b
		}
		return b.Where(pred)
	}
}

// ByRegistrationDay keeps declarations registered on the calendar day of t.
func ByRegistrationDay(t time.Time) ListOption {
	day := t.Format(time.DateOnly)
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Expr("CAST(h.tanggaldaftar AS DATE) = CAST(? AS DATE)", day))
	}
}

// WithLimit sets the LIMIT clause.
func WithLimit(limit uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(limit)
	}
}

// WithOffset sets the OFFSET clause.
func WithOffset(offset uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Offset(offset)
	}
}

// WithSort orders by a whitelisted header column. Unknown fields fall back to
// tanggaldaftar. idheader DESC is always appended as tie-breaker.
func WithSort(field string, desc bool) ListOption {
	col, ok := sortColumns[field]
	if !ok {
		col = sortColumns[DefaultSortField]
	}
	dir := " ASC"
	if desc {
		dir = " DESC"
	}

	return func(b sq.SelectBuilder) sq.SelectBuilder {
		clauses := []string{col + dir}
		if col != sortColumns["idheader"] {
			clauses = append(clauses, "h.idheader DESC")
		}
		return b.OrderBy(clauses...)
	}
}

// WithDefaultSort orders by registration date, newest first.
func WithDefaultSort() ListOption {
	return WithSort(DefaultSortField, true)
}

package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CalculatedField is the closed set of synthetic metrics usable in filters.
type CalculatedField string

const (
	GrossWeightPerTeus CalculatedField = "gross_weight_per_teus"
	ItemsCount         CalculatedField = "items_count"
	TotalPaid          CalculatedField = "total_paid"
)

// TEUFactors maps a container size code to its twenty-foot equivalent.
var TEUFactors = map[string]float64{
	"20": 1.0,
	"40": 2.0,
	"45": 2.25,
	"60": 3.0,
}

// CalculatedFields returns the supported calculated fields.
func CalculatedFields() []CalculatedField {
	return []CalculatedField{GrossWeightPerTeus, ItemsCount, TotalPaid}
}

func lookupCalculated(name string) (CalculatedField, bool) {
	for _, cf := range CalculatedFields() {
		if string(cf) == name {
			return cf, true
		}
	}
	return "", false
}

// TEU returns the TEU factor of a size code, 0 for unknown codes.
func TEU(sizeCode string) float64 {
	return TEUFactors[strings.TrimSpace(sizeCode)]
}

// TEUCase renders the size-code to TEU CASE expression for the given container alias.
// Codes are rendered in sorted order so the SQL text is stable.
func TEUCase(alias string) string {
	codes := make([]string, 0, len(TEUFactors))
	for code := range TEUFactors {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var b strings.Builder
	fmt.Fprintf(&b, "CASE %s.ukurankontainer", alias)
	for _, code := range codes {
		fmt.Fprintf(&b, " WHEN '%s' THEN %s", code, strconv.FormatFloat(TEUFactors[code], 'f', -1, 64))
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

// TEUSum renders the aggregate TEU sum over the container alias, 0 when no rows.
func TEUSum(alias string) string {
	return fmt.Sprintf("CAST(COALESCE(SUM(%s), 0) AS DOUBLE PRECISION)", TEUCase(alias))
}

// Expr returns the correlated scalar subquery computing the field for the current header row.
func (f CalculatedField) Expr() string {
	h := HeaderAlias + "." + JoinKey
	switch f {
	case GrossWeightPerTeus:
		k := Container.Alias()
		teus := fmt.Sprintf("(SELECT %s FROM %s %s WHERE %s.%s = %s)",
			TEUSum(k), Container.Table(), k, k, JoinKey, h)
		dt := Detail.Alias()
		bruto := fmt.Sprintf("(SELECT %s.bruto FROM %s %s WHERE %s.%s = %s LIMIT 1)",
			dt, Detail.Table(), dt, dt, JoinKey, h)
		return fmt.Sprintf("COALESCE(%s / NULLIF(%s, 0), 0)", bruto, teus)
	case ItemsCount:
		b := Goods.Alias()
		return fmt.Sprintf("(SELECT COUNT(*) FROM %s %s WHERE %s.%s = %s)", Goods.Table(), b, b, JoinKey, h)
	case TotalPaid:
		p := Duty.Alias()
		return fmt.Sprintf("(SELECT CAST(COALESCE(SUM(%s.dibayar), 0) AS DOUBLE PRECISION) FROM %s %s WHERE %s.%s = %s)",
			p, Duty.Table(), p, p, JoinKey, h)
	default:
		return ""
	}
}

// calculatedOperators are the operators defined for calculated fields.
var calculatedOperators = map[Operator]bool{
	OpEqual:        true,
	OpNotEqual:     true,
	OpGreater:      true,
	OpGreaterEqual: true,
	OpLess:         true,
	OpLessEqual:    true,
	OpBetween:      true,
	OpNotBetween:   true,
}

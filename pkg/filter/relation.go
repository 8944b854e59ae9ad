package filter

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ValueClass decides how operators treat a column.
type ValueClass int

const (
	Text ValueClass = iota
	Numeric
	Date
)

func (v ValueClass) String() string {
	switch v {
	case Text:
		return "text"
	case Numeric:
		return "numeric"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// JoinKey is the header identifier shared by every table of the declaration schema.
const JoinKey = "idheader"

// HeaderAlias is the alias of the primary relation in every generated query.
const HeaderAlias = "h"

// Relation is the closed set of tables a field can be routed to.
type Relation int

const (
	Header Relation = iota
	Entity
	Goods
	Container
	Carrier
	Document
	Duty
	Detail
)

type relationDef struct {
	name    string
	table   string
	alias   string
	text    []string
	numeric []string
	date    []string
}

var relations = map[Relation]relationDef{
	Header: {
		name:    "header",
		table:   "bc20_header",
		alias:   HeaderAlias,
		text:    []string{"nomoraju", "nomordaftar", "jalur", "kodekantor"},
		numeric: []string{"idheader"},
		date:    []string{"tanggaldaftar"},
	},
	Entity: {
		name:    "entitas",
		table:   "bc20_entitas",
		alias:   "e",
		text:    []string{"kodeentitas", "namaentitas", "alamatentitas", "nomoridentitas", "kodenegara", "namanegara"},
		numeric: []string{"serientitas"},
	},
	Goods: {
		name:    "barang",
		table:   "bc20_barang",
		alias:   "b",
		text:    []string{"postarif", "uraian", "merk", "tipe", "kodesatuan", "kodenegaraasal"},
		numeric: []string{"seribarang", "cif", "fob", "freight", "asuransi", "netto", "jumlahsatuan"},
	},
	Container: {
		name:    "kontainer",
		table:   "bc20_kontainer",
		alias:   "k",
		text:    []string{"nomorkontainer", "ukurankontainer", "namatipekontainer"},
		numeric: []string{"serikontainer"},
	},
	Carrier: {
		name:  "pengangkut",
		table: "bc20_pengangkut",
		alias: "a",
		text:  []string{"namasaranaangkut", "nomorvoyage", "kodebendera"},
	},
	Document: {
		name:    "dokumen",
		table:   "bc20_dokumen",
		alias:   "d",
		text:    []string{"namadokumen", "nomordokumen", "kodefasilitas"},
		numeric: []string{"seridokumen"},
		date:    []string{"tanggaldokumen"},
	},
	Duty: {
		name:    "pungutan",
		table:   "bc20_pungutan",
		alias:   "p",
		text:    []string{"jenispungutan"},
		numeric: []string{"dibayar"},
	},
	Detail: {
		name:    "data",
		table:   "bc20_data",
		alias:   "dt",
		text:    []string{"kodevaluta", "kodepelabuhanmuat", "kodepelabuhantujuan", "kodetps", "nomorbc11"},
		numeric: []string{"bruto", "netto", "cif", "fob", "freight", "asuransi", "nilaipabean", "ndpbm"},
		date:    []string{"tanggaltiba"},
	},
}

func (r Relation) def() relationDef {
	d, ok := relations[r]
	if !ok {
		panic(fmt.Sprintf("unknown relation %d", r))
	}
	return d
}

func (r Relation) String() string { return r.def().name }

// Table returns the table name of the relation.
func (r Relation) Table() string { return r.def().table }

// Alias returns the alias used for the relation inside generated SQL.
func (r Relation) Alias() string { return r.def().alias }

// JoinKey returns the column correlating the relation with the header.
func (r Relation) JoinKey() string { return JoinKey }

// TextColumns returns the text-valued columns of the relation.
func (r Relation) TextColumns() []string { return r.def().text }

// NumericColumns returns the numeric-valued columns of the relation.
func (r Relation) NumericColumns() []string { return r.def().numeric }

// DateColumns returns the date-valued columns of the relation.
func (r Relation) DateColumns() []string { return r.def().date }

// Knows reports whether column is declared by the relation.
func (r Relation) Knows(column string) bool {
	d := r.def()
	return slices.Contains(d.text, column) || slices.Contains(d.numeric, column) || slices.Contains(d.date, column)
}

// ClassOf returns the value class of a column. Undeclared columns are text.
func (r Relation) ClassOf(column string) ValueClass {
	d := r.def()
	switch {
	case slices.Contains(d.numeric, column):
		return Numeric
	case slices.Contains(d.date, column):
		return Date
	default:
		return Text
	}
}

// Column returns the qualified column reference, e.g. b.uraian.
func (r Relation) Column(column string) string {
	return r.Alias() + "." + column
}

// Entity role codes.
const (
	RoleImporter = "1"
	RoleBroker   = "4"
	RoleOwner    = "7"
	RoleShipper  = "9"
	RoleSeller   = "10"
)

// RoleColumn holds the entity role code.
const RoleColumn = "kodeentitas"

// Scope is the unit of row correlation: a relation, narrowed by a role code for entities.
type Scope struct {
	Relation Relation
	Role     string
}

func (s Scope) String() string {
	if s.Role == "" {
		return s.Relation.String()
	}
	return fmt.Sprintf("%s[%s=%s]", s.Relation, RoleColumn, s.Role)
}

var prefixes = map[string]Scope{
	"importir":   {Relation: Entity, Role: RoleImporter},
	"ppjk":       {Relation: Entity, Role: RoleBroker},
	"pemilik":    {Relation: Entity, Role: RoleOwner},
	"pengirim":   {Relation: Entity, Role: RoleShipper},
	"penjual":    {Relation: Entity, Role: RoleSeller},
	"barang":     {Relation: Goods},
	"kontainer":  {Relation: Container},
	"pengangkut": {Relation: Carrier},
	"dokumen":    {Relation: Document},
	"pungutan":   {Relation: Duty},
	"data":       {Relation: Detail},
}

// Prefixes returns the routable prefixes in lexical order.
func Prefixes() []string {
	out := make([]string, 0, len(prefixes))
	for p := range prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

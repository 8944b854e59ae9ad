package models

import "time"

// Entity role codes as stored in bc20_entitas.kodeentitas.
const (
	RoleImporter = "1"
	RoleBroker   = "4"
	RoleOwner    = "7"
	RoleShipper  = "9"
	RoleSeller   = "10"
)

var roleNames = map[string]string{
	RoleImporter: "importir",
	RoleBroker:   "ppjk",
	RoleOwner:    "pemilik",
	RoleShipper:  "pengirim",
	RoleSeller:   "penjual",
}

// RoleName returns the prefix name of a role code, or the code itself when unknown.
func RoleName(code string) string {
	if n, ok := roleNames[code]; ok {
		return n
	}
	return code
}

// DeclarationSummary is one row of a search page: the header columns read in phase 1
// plus the display columns merged in by hydration.
type DeclarationSummary struct {
	ID            int64
	NomorAju      string
	NomorDaftar   string
	TanggalDaftar *time.Time
	Jalur         string
	KodeKantor    string

	ImporterName     string
	BrokerName       string
	SellerName       string
	ContainerCount   int
	TEUSum           float64
	GoodsCount       int
	FirstHSCode      string
	FirstDescription string
}

// GoodsSummary is the phase 2 goods projection of one header.
type GoodsSummary struct {
	Count            int
	FirstHSCode      string
	FirstDescription string
}

// ContainerSummary is the phase 2 container projection of one header.
type ContainerSummary struct {
	Count  int
	TEUSum float64
}

// Merge copies hydrated display columns onto the row. Missing parts leave zero values.
func (d *DeclarationSummary) Merge(goods GoodsSummary, names map[string]string, containers ContainerSummary) {
	d.GoodsCount = goods.Count
	d.FirstHSCode = goods.FirstHSCode
	d.FirstDescription = goods.FirstDescription
	d.ImporterName = names[RoleImporter]
	d.BrokerName = names[RoleBroker]
	d.SellerName = names[RoleSeller]
	d.ContainerCount = containers.Count
	d.TEUSum = containers.TEUSum
}

// Declaration is the full declaration with every child relation loaded.
type Declaration struct {
	DeclarationSummary
	Data       *DeclarationData
	Entities   []Entity
	Goods      []GoodsLine
	Containers []Container
	Carriers   []Carrier
	Documents  []Document
	Duties     []Duty
	TotalPaid  float64
}

// DeclarationData is the 1:1 value and logistics record of a declaration.
type DeclarationData struct {
	Bruto           float64
	Netto           float64
	CIF             float64
	FOB             float64
	Freight         float64
	Insurance       float64
	CustomsValue    float64
	NDPBM           float64
	Currency        string
	LoadingPort     string
	DestinationPort string
	TPS             string
	BC11Number      string
	ArrivalDate     *time.Time
}

type Entity struct {
	Seri           int
	Role           string
	Name           string
	Address        string
	IdentityNumber string
	CountryCode    string
	CountryName    string
}

type GoodsLine struct {
	Seri          int
	HSCode        string
	Description   string
	Brand         string
	Type          string
	UnitCode      string
	OriginCountry string
	CIF           float64
	FOB           float64
	Freight       float64
	Insurance     float64
	Netto         float64
	Quantity      float64
}

type Container struct {
	Seri     int
	Number   string
	Size     string
	TypeName string
	TEU      float64
}

type Carrier struct {
	Name   string
	Voyage string
	Flag   string
}

type Document struct {
	Seri         int
	Name         string
	Number       string
	Date         *time.Time
	FacilityCode string
}

// Duty is one paid levy. Type is one of BM, BMAD, PPN, PPNBM, PPH, CUKAI.
type Duty struct {
	Type string
	Paid float64
}

package v1

import (
	"time"

	"github.com/pabean-labs/bc20-explorer/pkg/filter"
)

// Page is the paginated response envelope.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// Declaration is one search row: header columns plus hydrated display columns.
type Declaration struct {
	IdHeader         int64      `json:"idheader"`
	NomorAju         string     `json:"nomoraju"`
	NomorDaftar      string     `json:"nomordaftar"`
	TanggalDaftar    *time.Time `json:"tanggaldaftar"`
	Jalur            string     `json:"jalur"`
	KodeKantor       string     `json:"kodekantor"`
	ImporterName     string     `json:"importerName"`
	BrokerName       string     `json:"brokerName"`
	SellerName       string     `json:"sellerName"`
	ContainerCount   int        `json:"containerCount"`
	TeuSum           float64    `json:"teuSum"`
	GoodsCount       int        `json:"goodsCount"`
	FirstHsCode      string     `json:"firstHsCode"`
	FirstDescription string     `json:"firstDescription"`
}

type DeclarationData struct {
	Bruto           float64    `json:"bruto"`
	Netto           float64    `json:"netto"`
	Cif             float64    `json:"cif"`
	Fob             float64    `json:"fob"`
	Freight         float64    `json:"freight"`
	Asuransi        float64    `json:"asuransi"`
	NilaiPabean     float64    `json:"nilaipabean"`
	Ndpbm           float64    `json:"ndpbm"`
	KodeValuta      string     `json:"kodevaluta"`
	PelabuhanMuat   string     `json:"kodepelabuhanmuat"`
	PelabuhanTujuan string     `json:"kodepelabuhantujuan"`
	KodeTps         string     `json:"kodetps"`
	NomorBc11       string     `json:"nomorbc11"`
	TanggalTiba     *time.Time `json:"tanggaltiba"`
}

type Entity struct {
	Seri           int    `json:"serientitas"`
	Role           string `json:"kodeentitas"`
	RoleName       string `json:"role"`
	Name           string `json:"namaentitas"`
	Address        string `json:"alamatentitas"`
	IdentityNumber string `json:"nomoridentitas"`
	CountryCode    string `json:"kodenegara"`
	CountryName    string `json:"namanegara"`
}

type GoodsLine struct {
	Seri          int     `json:"seribarang"`
	HsCode        string  `json:"postarif"`
	Description   string  `json:"uraian"`
	Brand         string  `json:"merk"`
	Type          string  `json:"tipe"`
	UnitCode      string  `json:"kodesatuan"`
	OriginCountry string  `json:"kodenegaraasal"`
	Cif           float64 `json:"cif"`
	Fob           float64 `json:"fob"`
	Freight       float64 `json:"freight"`
	Asuransi      float64 `json:"asuransi"`
	Netto         float64 `json:"netto"`
	Quantity      float64 `json:"jumlahsatuan"`
}

type Container struct {
	Seri     int     `json:"serikontainer"`
	Number   string  `json:"nomorkontainer"`
	Size     string  `json:"ukurankontainer"`
	TypeName string  `json:"namatipekontainer"`
	Teu      float64 `json:"teu"`
}

type Carrier struct {
	Name   string `json:"namasaranaangkut"`
	Voyage string `json:"nomorvoyage"`
	Flag   string `json:"kodebendera"`
}

type Document struct {
	Seri         int        `json:"seridokumen"`
	Name         string     `json:"namadokumen"`
	Number       string     `json:"nomordokumen"`
	Date         *time.Time `json:"tanggaldokumen"`
	FacilityCode string     `json:"kodefasilitas"`
}

type Duty struct {
	Type string  `json:"jenispungutan"`
	Paid float64 `json:"dibayar"`
}

// DeclarationDetails is the full declaration returned by GET /declarations/:id.
type DeclarationDetails struct {
	Declaration
	Data       *DeclarationData `json:"data"`
	Entities   []Entity         `json:"entitas"`
	Goods      []GoodsLine      `json:"barang"`
	Containers []Container      `json:"kontainer"`
	Carriers   []Carrier        `json:"pengangkut"`
	Documents  []Document       `json:"dokumen"`
	Duties     []Duty           `json:"pungutan"`
	TotalPaid  float64          `json:"totalPaid"`
}

type Company struct {
	Nib          string     `json:"nib"`
	Name         string     `json:"namaperusahaan"`
	Npwp         string     `json:"npwp"`
	LegalStatus  string     `json:"statusbadanhukum"`
	BusinessType string     `json:"jenisbadanusaha"`
	Address      string     `json:"alamat"`
	IssuedAt     *time.Time `json:"tanggalterbit"`
}

type Shareholder struct {
	Name       string  `json:"nama"`
	Npwp       string  `json:"npwp"`
	Percentage float64 `json:"persentase"`
}

type ResponsiblePerson struct {
	Name     string `json:"nama"`
	Position string `json:"jabatan"`
}

type Project struct {
	Id          string  `json:"idproyek"`
	Kbli        string  `json:"kbli"`
	Description string  `json:"uraianusaha"`
	Investment  float64 `json:"nilaiinvestasi"`
}

type CompanyDetails struct {
	Company
	Shareholders       []Shareholder       `json:"pemegangSaham"`
	ResponsiblePersons []ResponsiblePerson `json:"penanggungJawab"`
	Projects           []Project           `json:"proyek"`
}

// ListParams are the query parameters of GET /declarations. Every other
// query parameter is a flat filter.
type ListParams struct {
	Page          int    `form:"page" validate:"gte=0"`
	PerPage       int    `form:"per_page" validate:"gte=0"`
	SortBy        string `form:"sort_by"`
	SortDirection string `form:"sort_direction" validate:"omitempty,oneof=asc desc ASC DESC"`
	Filter        string `form:"filter"`
	DateFrom      string `form:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

// QueryRequest is the body of POST /declarations/query and /declarations/export.
type QueryRequest struct {
	Rules         *filter.Group `json:"rules"`
	Page          int           `json:"page" validate:"gte=0"`
	PerPage       int           `json:"per_page" validate:"gte=0"`
	SortBy        string        `json:"sort_by"`
	SortDirection string        `json:"sort_direction" validate:"omitempty,oneof=asc desc ASC DESC"`
}

type SuggestParams struct {
	Field string `form:"field" validate:"required"`
	Q     string `form:"q"`
	Limit int    `form:"limit" validate:"gte=0"`
}

type CompanyListParams struct {
	Nib           string `form:"nib"`
	Name          string `form:"name"`
	Npwp          string `form:"npwp"`
	LegalStatus   string `form:"legal_status"`
	Kbli          string `form:"kbli"`
	Page          int    `form:"page" validate:"gte=0"`
	PerPage       int    `form:"per_page" validate:"gte=0"`
	SortBy        string `form:"sort_by" validate:"omitempty,oneof=namaperusahaan nib tanggalterbit"`
	SortDirection string `form:"sort_direction" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// Field describes a routable filter field.
type Field struct {
	Name      string   `json:"name"`
	Relation  string   `json:"relation"`
	Type      string   `json:"type"`
	Operators []string `json:"operators"`
}

type SuggestResponse struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

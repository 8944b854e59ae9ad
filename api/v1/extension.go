package v1

import (
	"github.com/pabean-labs/bc20-explorer/internal/models"
	"github.com/pabean-labs/bc20-explorer/pkg/filter"
)

// NewPage converts a model page, mapping every row with fn.
func NewPage[M, T any](p models.Page[M], fn func(M) T) Page[T] {
	data := make([]T, 0, len(p.Data))
	for _, m := range p.Data {
		data = append(data, fn(m))
	}
	return Page[T]{
		Data:        data,
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		PerPage:     p.PerPage,
		Total:       p.Total,
		From:        p.From,
		To:          p.To,
	}
}

func NewDeclarationFromModel(d models.DeclarationSummary) Declaration {
	return Declaration{
		IdHeader:         d.ID,
		NomorAju:         d.NomorAju,
		NomorDaftar:      d.NomorDaftar,
		TanggalDaftar:    d.TanggalDaftar,
		Jalur:            d.Jalur,
		KodeKantor:       d.KodeKantor,
		ImporterName:     d.ImporterName,
		BrokerName:       d.BrokerName,
		SellerName:       d.SellerName,
		ContainerCount:   d.ContainerCount,
		TeuSum:           d.TEUSum,
		GoodsCount:       d.GoodsCount,
		FirstHsCode:      d.FirstHSCode,
		FirstDescription: d.FirstDescription,
	}
}

// NewDeclarationDetailsFromModel converts a fully loaded declaration. Child
// collections are never nil so clients always receive arrays.
func NewDeclarationDetailsFromModel(d *models.Declaration) DeclarationDetails {
	out := DeclarationDetails{
		Declaration: NewDeclarationFromModel(d.DeclarationSummary),
		Entities:    make([]Entity, 0, len(d.Entities)),
		Goods:       make([]GoodsLine, 0, len(d.Goods)),
		Containers:  make([]Container, 0, len(d.Containers)),
		Carriers:    make([]Carrier, 0, len(d.Carriers)),
		Documents:   make([]Document, 0, len(d.Documents)),
		Duties:      make([]Duty, 0, len(d.Duties)),
		TotalPaid:   d.TotalPaid,
	}

	if d.Data != nil {
		out.Data = &DeclarationData{
			Bruto:           d.Data.Bruto,
			Netto:           d.Data.Netto,
			Cif:             d.Data.CIF,
			Fob:             d.Data.FOB,
			Freight:         d.Data.Freight,
			Asuransi:        d.Data.Insurance,
			NilaiPabean:     d.Data.CustomsValue,
			Ndpbm:           d.Data.NDPBM,
			KodeValuta:      d.Data.Currency,
			PelabuhanMuat:   d.Data.LoadingPort,
			PelabuhanTujuan: d.Data.DestinationPort,
			KodeTps:         d.Data.TPS,
			NomorBc11:       d.Data.BC11Number,
			TanggalTiba:     d.Data.ArrivalDate,
		}
	}

	for _, e := range d.Entities {
		out.Entities = append(out.Entities, Entity{
			Seri:           e.Seri,
			Role:           e.Role,
			RoleName:       models.RoleName(e.Role),
			Name:           e.Name,
			Address:        e.Address,
			IdentityNumber: e.IdentityNumber,
			CountryCode:    e.CountryCode,
			CountryName:    e.CountryName,
		})
	}
	for _, g := range d.Goods {
		out.Goods = append(out.Goods, GoodsLine{
			Seri:          g.Seri,
			HsCode:        g.HSCode,
			Description:   g.Description,
			Brand:         g.Brand,
			Type:          g.Type,
			UnitCode:      g.UnitCode,
			OriginCountry: g.OriginCountry,
			Cif:           g.CIF,
			Fob:           g.FOB,
			Freight:       g.Freight,
			Asuransi:      g.Insurance,
			Netto:         g.Netto,
			Quantity:      g.Quantity,
		})
	}
	for _, k := range d.Containers {
		out.Containers = append(out.Containers, Container{
			Seri:     k.Seri,
			Number:   k.Number,
			Size:     k.Size,
			TypeName: k.TypeName,
			Teu:      k.TEU,
		})
	}
	for _, a := range d.Carriers {
		out.Carriers = append(out.Carriers, Carrier(a))
	}
	for _, doc := range d.Documents {
		out.Documents = append(out.Documents, Document(doc))
	}
	for _, p := range d.Duties {
		out.Duties = append(out.Duties, Duty(p))
	}

	return out
}

func NewCompanyFromModel(c models.Company) Company {
	return Company{
		Nib:          c.NIB,
		Name:         c.Name,
		Npwp:         c.NPWP,
		LegalStatus:  c.LegalStatus,
		BusinessType: c.BusinessType,
		Address:      c.Address,
		IssuedAt:     c.IssuedAt,
	}
}

func NewCompanyDetailsFromModel(c *models.Company) CompanyDetails {
	out := CompanyDetails{
		Company:            NewCompanyFromModel(*c),
		Shareholders:       make([]Shareholder, 0, len(c.Shareholders)),
		ResponsiblePersons: make([]ResponsiblePerson, 0, len(c.ResponsiblePersons)),
		Projects:           make([]Project, 0, len(c.Projects)),
	}
	for _, s := range c.Shareholders {
		out.Shareholders = append(out.Shareholders, Shareholder{Name: s.Name, Npwp: s.NPWP, Percentage: s.Percentage})
	}
	for _, p := range c.ResponsiblePersons {
		out.ResponsiblePersons = append(out.ResponsiblePersons, ResponsiblePerson(p))
	}
	for _, p := range c.Projects {
		out.Projects = append(out.Projects, Project{Id: p.ID, Kbli: p.KBLI, Description: p.Description, Investment: p.Investment})
	}
	return out
}

// NewFieldFromInfo converts a catalog entry, listing the operators the field accepts.
func NewFieldFromInfo(info filter.FieldInfo) Field {
	return Field{
		Name:      info.Name,
		Relation:  info.Relation,
		Type:      info.Class,
		Operators: filter.OperatorsFor(info),
	}
}

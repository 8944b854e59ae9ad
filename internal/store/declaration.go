package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pabean-labs/bc20-explorer/internal/models"
	srvErrors "github.com/pabean-labs/bc20-explorer/pkg/errors"
	"github.com/pabean-labs/bc20-explorer/pkg/filter"
)

const headerFrom = "bc20_header h"

// display roles hydrated onto search rows
var displayRoles = []string{models.RoleImporter, models.RoleBroker, models.RoleSeller}

type DeclarationStore struct {
	db QueryInterceptor
	sb sq.StatementBuilderType
}

func NewDeclarationStore(db QueryInterceptor, sb sq.StatementBuilderType) *DeclarationStore {
	return &DeclarationStore{db: db, sb: sb}
}

// List runs the phase 1 query: header columns only, filtered, sorted and paginated.
func (s *DeclarationStore) List(ctx context.Context, opts ...ListOption) ([]models.DeclarationSummary, error) {
	query, args, err := s.ListSQL(opts...)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing declarations: %w", err)
	}
	defer rows.Close()

	decls := []models.DeclarationSummary{}
	for rows.Next() {
		var d models.DeclarationSummary
		var registered sql.NullTime
		if err := rows.Scan(&d.ID, &d.NomorAju, &d.NomorDaftar, &registered, &d.Jalur, &d.KodeKantor); err != nil {
			return nil, err
		}
		d.TanggalDaftar = timePtr(registered)
		decls = append(decls, d)
	}

	return decls, rows.Err()
}

// ListSQL renders the phase 1 statement List runs for opts.
func (s *DeclarationStore) ListSQL(opts ...ListOption) (string, []any, error) {
	builder := s.sb.Select(
		"h.idheader",
		"COALESCE(h.nomoraju, '')",
		"COALESCE(h.nomordaftar, '')",
		"h.tanggaldaftar",
		"COALESCE(h.jalur, '')",
		"COALESCE(h.kodekantor, '')",
	).From(headerFrom)

	for _, opt := range opts {
		builder = opt(builder)
	}

	return builder.ToSql()
}

// Count returns the number of headers matching the filter options.
// Options must not carry ORDER BY, LIMIT or OFFSET.
func (s *DeclarationStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := s.sb.Select("COUNT(*)").From(headerFrom)
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting declarations: %w", err)
	}
	return count, nil
}

// GoodsSummaries returns, per header, the first goods line by sequence and the line count.
func (s *DeclarationStore) GoodsSummaries(ctx context.Context, ids []int64) (map[int64]models.GoodsSummary, error) {
	out := make(map[int64]models.GoodsSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := s.sb.Select(
		"b.idheader",
		"COALESCE(b.postarif, '')",
		"COALESCE(b.uraian, '')",
		"COUNT(*) OVER (PARTITION BY b.idheader)",
	).
		Options("DISTINCT ON (b.idheader)").
		From("bc20_barang b").
		Where(sq.Eq{"b.idheader": ids}).
		OrderBy("b.idheader", "b.seribarang").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading goods summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var g models.GoodsSummary
		if err := rows.Scan(&id, &g.FirstHSCode, &g.FirstDescription, &g.Count); err != nil {
			return nil, err
		}
		out[id] = g
	}
	return out, rows.Err()
}

// EntityNames returns, per header, the first entity name of each display role keyed by role code.
func (s *DeclarationStore) EntityNames(ctx context.Context, ids []int64) (map[int64]map[string]string, error) {
	out := make(map[int64]map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := s.sb.Select("e.idheader", "e.kodeentitas", "COALESCE(e.namaentitas, '')").
		Options("DISTINCT ON (e.idheader, e.kodeentitas)").
		From("bc20_entitas e").
		Where(sq.Eq{"e.idheader": ids}).
		Where(sq.Eq{"e.kodeentitas": displayRoles}).
		OrderBy("e.idheader", "e.kodeentitas", "e.serientitas").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading entity names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var role, name string
		if err := rows.Scan(&id, &role, &name); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[string]string, len(displayRoles))
		}
		out[id][role] = name
	}
	return out, rows.Err()
}

// ContainerSummaries returns, per header, the container count and TEU sum.
func (s *DeclarationStore) ContainerSummaries(ctx context.Context, ids []int64) (map[int64]models.ContainerSummary, error) {
	out := make(map[int64]models.ContainerSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := s.sb.Select("k.idheader", "COUNT(*)", filter.TEUSum("k")).
		From("bc20_kontainer k").
		Where(sq.Eq{"k.idheader": ids}).
		GroupBy("k.idheader").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading container summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var c models.ContainerSummary
		if err := rows.Scan(&id, &c.Count, &c.TEUSum); err != nil {
			return nil, err
		}
		out[id] = c
	}
	return out, rows.Err()
}

// Hydrate runs the phase 2 queries one after the other and merges them onto rows in place.
func (s *DeclarationStore) Hydrate(ctx context.Context, rows []models.DeclarationSummary) error {
	ids := IDs(rows)
	if len(ids) == 0 {
		return nil
	}

	goods, err := s.GoodsSummaries(ctx, ids)
	if err != nil {
		return err
	}
	names, err := s.EntityNames(ctx, ids)
	if err != nil {
		return err
	}
	containers, err := s.ContainerSummaries(ctx, ids)
	if err != nil {
		return err
	}

	for i := range rows {
		id := rows[i].ID
		rows[i].Merge(goods[id], names[id], containers[id])
	}
	return nil
}

// IDs returns the header ids of rows in order.
func IDs(rows []models.DeclarationSummary) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

// Get loads a declaration with all its child relations.
func (s *DeclarationStore) Get(ctx context.Context, id int64) (*models.Declaration, error) {
	rows, err := s.List(ctx, func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"h.idheader": id})
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, srvErrors.NewDeclarationNotFoundError(id)
	}

	d := &models.Declaration{DeclarationSummary: rows[0]}

	loaders := []func(context.Context, *models.Declaration) error{
		s.loadData,
		s.loadEntities,
		s.loadGoods,
		s.loadContainers,
		s.loadCarriers,
		s.loadDocuments,
		s.loadDuties,
	}
	for _, load := range loaders {
		if err := load(ctx, d); err != nil {
			return nil, fmt.Errorf("loading declaration %d: %w", id, err)
		}
	}

	goods := models.GoodsSummary{Count: len(d.Goods)}
	if len(d.Goods) > 0 {
		goods.FirstHSCode = d.Goods[0].HSCode
		goods.FirstDescription = d.Goods[0].Description
	}
	names := make(map[string]string)
	for _, e := range d.Entities {
		if _, seen := names[e.Role]; !seen {
			names[e.Role] = e.Name
		}
	}
	containers := models.ContainerSummary{Count: len(d.Containers)}
	for _, c := range d.Containers {
		containers.TEUSum += c.TEU
	}
	d.Merge(goods, names, containers)

	return d, nil
}

func (s *DeclarationStore) loadData(ctx context.Context, d *models.Declaration) error {
	return scanRows(ctx, s.db, s.sb.Select(
		"COALESCE(dt.bruto, 0)", "COALESCE(dt.netto, 0)", "COALESCE(dt.cif, 0)", "COALESCE(dt.fob, 0)",
		"COALESCE(dt.freight, 0)", "COALESCE(dt.asuransi, 0)", "COALESCE(dt.nilaipabean, 0)", "COALESCE(dt.ndpbm, 0)",
		"COALESCE(dt.kodevaluta, '')", "COALESCE(dt.kodepelabuhanmuat, '')", "COALESCE(dt.kodepelabuhantujuan, '')",
		"COALESCE(dt.kodetps, '')", "COALESCE(dt.nomorbc11, '')", "dt.tanggaltiba",
	).From("bc20_data dt").Where(sq.Eq{"dt.idheader": d.ID}).Limit(1), func(rows *sql.Rows) error {
		var data models.DeclarationData
		var arrival sql.NullTime
		if err := rows.Scan(&data.Bruto, &data.Netto, &data.CIF, &data.FOB,
			&data.Freight, &data.Insurance, &data.CustomsValue, &data.NDPBM,
			&data.Currency, &data.LoadingPort, &data.DestinationPort,
			&data.TPS, &data.BC11Number, &arrival); err != nil {
			return err
		}
		data.ArrivalDate = timePtr(arrival)
		d.Data = &data
		return nil
	})
}

func (s *DeclarationStore) loadEntities(ctx context.Context, d *models.Declaration) error {
	return scanRows(ctx, s.db, s.sb.Select(
		"e.serientitas", "e.kodeentitas", "COALESCE(e.namaentitas, '')", "COALESCE(e.alamatentitas, '')",
		"COALESCE(e.nomoridentitas, '')", "COALESCE(e.kodenegara, '')", "COALESCE(e.namanegara, '')",
	).From("bc20_entitas e").Where(sq.Eq{"e.idheader": d.ID}).OrderBy("e.serientitas"), func(rows *sql.Rows) error {
		var e models.Entity
		if err := rows.Scan(&e.Seri, &e.Role, &e.Name, &e.Address, &e.IdentityNumber, &e.CountryCode, &e.CountryName); err != nil {
			return err
		}
		d.Entities = append(d.Entities, e)
		return nil
	})
}

func (s *DeclarationStore) loadGoods(ctx context.Context, d *models.Declaration) error {
	return scanRows(ctx, s.db, s.sb.Select(
		"b.seribarang", "COALESCE(b.postarif, '')", "COALESCE(b.uraian, '')", "COALESCE(b.merk, '')",
		"COALESCE(b.tipe, '')", "COALESCE(b.kodesatuan, '')", "COALESCE(b.kodenegaraasal, '')",
		"COALESCE(b.cif, 0)", "COALESCE(b.fob, 0)", "COALESCE(b.freight, 0)", "COALESCE(b.asuransi, 0)",
		"COALESCE(b.netto, 0)", "COALESCE(b.jumlahsatuan, 0)",
	).From("bc20_barang b").Where(sq.Eq{"b.idheader": d.ID}).OrderBy("b.seribarang"), func(rows *sql.Rows) error {
		var g models.GoodsLine
		if err := rows.Scan(&g.Seri, &g.HSCode, &g.Description, &g.Brand, &g.Type, &g.UnitCode, &g.OriginCountry,
			&g.CIF, &g.FOB, &g.Freight, &g.Insurance, &g.Netto, &g.Quantity); err != nil {
			return err
		}
		d.Goods = append(d.Goods, g)
		return nil
	})
}

func (s *DeclarationStore) loadContainers(ctx context.Context, d *models.Declaration) error {
	return scanRows(ctx, s.db, s.sb.Select(
		"k.serikontainer", "COALESCE(k.nomorkontainer, '')", "COALESCE(k.ukurankontainer, '')", "COALESCE(k.namatipekontainer, '')",
	).From("bc20_kontainer k").Where(sq.Eq{"k.idheader": d.ID}).OrderBy("k.serikontainer"), func(rows *sql.Rows) error {
		var c models.Container
		if err := rows.Scan(&c.Seri, &c.Number, &c.Size, &c.TypeName); err != nil {
			return err
		}
		c.TEU = filter.TEU(c.Size)
		d.Containers = append(d.Containers, c)
		return nil
	})
}

func (s *DeclarationStore) loadCarriers(ctx context.Context, d *models.Declaration) error {
	return scanRows(ctx, s.db, s.sb.Select(
		"COALESCE(a.namasaranaangkut, '')", "COALESCE(a.nomorvoyage, '')", "COALESCE(a.kodebendera, '')",
	).From("bc20_pengangkut a").Where(sq.Eq{"a.idheader": d.ID}).OrderBy("a.namasaranaangkut"), func(rows *sql.Rows) error {
		var c models.Carrier
		if err := rows.Scan(&c.Name, &c.Voyage, &c.Flag); err != nil {
			return err
		}
		d.Carriers = append(d.Carriers, c)
		return nil
	})
}

func (s *DeclarationStore) loadDocuments(ctx context.Context, d *models.Declaration) error {
	return scanRows(ctx, s.db, s.sb.Select(
		"dk.seridokumen", "COALESCE(dk.namadokumen, '')", "COALESCE(dk.nomordokumen, '')", "dk.tanggaldokumen", "COALESCE(dk.kodefasilitas, '')",
	).From("bc20_dokumen dk").Where(sq.Eq{"dk.idheader": d.ID}).OrderBy("dk.seridokumen"), func(rows *sql.Rows) error {
		var doc models.Document
		var date sql.NullTime
		if err := rows.Scan(&doc.Seri, &doc.Name, &doc.Number, &date, &doc.FacilityCode); err != nil {
			return err
		}
		doc.Date = timePtr(date)
		d.Documents = append(d.Documents, doc)
		return nil
	})
}

func (s *DeclarationStore) loadDuties(ctx context.Context, d *models.Declaration) error {
	return scanRows(ctx, s.db, s.sb.Select("p.jenispungutan", "COALESCE(p.dibayar, 0)").
		From("bc20_pungutan p").Where(sq.Eq{"p.idheader": d.ID}).OrderBy("p.jenispungutan"), func(rows *sql.Rows) error {
		var duty models.Duty
		if err := rows.Scan(&duty.Type, &duty.Paid); err != nil {
			return err
		}
		d.Duties = append(d.Duties, duty)
		d.TotalPaid += duty.Paid
		return nil
	})
}

// Suggest returns up to limit distinct values of a routed text column starting with prefix.
func (s *DeclarationStore) Suggest(ctx context.Context, route filter.Route, prefix string, limit uint64) ([]string, error) {
	rel := route.Scope.Relation
	col := route.Expr()

	builder := s.sb.Select("DISTINCT " + col).
		From(rel.Table() + " " + rel.Alias()).
		Where(sq.NotEq{col: nil}).
		Where(sq.Expr("UPPER("+col+") LIKE ?", strings.ToUpper(prefix)+"%")).
		OrderBy(col).
		Limit(limit)
	if route.Scope.Role != "" {
		builder = builder.Where(sq.Eq{rel.Column(filter.RoleColumn): route.Scope.Role})
	}

	values := []string{}
	err := scanRows(ctx, s.db, builder, func(rows *sql.Rows) error {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("suggesting %s: %w", route.Field, err)
	}
	return values, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// scanRows runs b and calls scan for every row.
func scanRows(ctx context.Context, db QueryInterceptor, b sq.SelectBuilder, scan func(*sql.Rows) error) error {
	q, args, err := b.ToSql()
	if err != nil {
		return err
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

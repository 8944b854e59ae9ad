package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/pabean-labs/bc20-explorer/internal/models"
	srvErrors "github.com/pabean-labs/bc20-explorer/pkg/errors"
)

const companyFrom = "oss_nib n"

var companySortColumns = map[string]string{
	"namaperusahaan": "n.namaperusahaan",
	"nib":            "n.nib",
	"tanggalterbit":  "n.tanggalterbit",
}

// CompanyStore reads the OSS/NIB company registry.
type CompanyStore struct {
	db QueryInterceptor
	sb sq.StatementBuilderType
}

func NewCompanyStore(db QueryInterceptor, sb sq.StatementBuilderType) *CompanyStore {
	return &CompanyStore{db: db, sb: sb}
}

// ByNIB filters by exact NIB.
func ByNIB(nib string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"n.nib": nib})
	}
}

// ByCompanyName filters by a case-insensitive substring of the company name.
func ByCompanyName(name string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Expr("UPPER(n.namaperusahaan) LIKE ?", "%"+strings.ToUpper(name)+"%"))
	}
}

// ByNPWPPrefix filters by tax number prefix.
func ByNPWPPrefix(npwp string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Like{"n.npwp": npwp + "%"})
	}
}

// ByLegalStatus filters by legal status, ignoring case.
func ByLegalStatus(status string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Expr("UPPER(n.statusbadanhukum) = ?", strings.ToUpper(status)))
	}
}

// ByKBLI keeps companies with at least one project in the given business line.
func ByKBLI(kbli string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Expr("EXISTS (SELECT 1 FROM oss_proyek p WHERE p.nib = n.nib AND p.kbli = ?)", kbli))
	}
}

// WithCompanySort orders by a whitelisted column, falling back to the company name.
func WithCompanySort(field string, desc bool) ListOption {
	col, ok := companySortColumns[field]
	if !ok {
		col = companySortColumns["namaperusahaan"]
	}
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if col == companySortColumns["nib"] {
			return b.OrderBy(col + dir)
		}
		return b.OrderBy(col+dir, "n.nib ASC")
	}
}

// List returns companies without their child records.
func (s *CompanyStore) List(ctx context.Context, opts ...ListOption) ([]models.Company, error) {
	builder := s.sb.Select(
		"n.nib",
		"COALESCE(n.namaperusahaan, '')",
		"COALESCE(n.npwp, '')",
		"COALESCE(n.statusbadanhukum, '')",
		"COALESCE(n.jenisbadanusaha, '')",
		"COALESCE(n.alamat, '')",
		"n.tanggalterbit",
	).From(companyFrom)

	for _, opt := range opts {
		builder = opt(builder)
	}

	companies := []models.Company{}
	err := scanRows(ctx, s.db, builder, func(rows *sql.Rows) error {
		var c models.Company
		var issued sql.NullTime
		if err := rows.Scan(&c.NIB, &c.Name, &c.NPWP, &c.LegalStatus, &c.BusinessType, &c.Address, &issued); err != nil {
			return err
		}
		c.IssuedAt = timePtr(issued)
		companies = append(companies, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return companies, nil
}

// Count returns the number of companies matching the filter options.
func (s *CompanyStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := s.sb.Select("COUNT(*)").From(companyFrom)
	for _, opt := range opts {
		builder = opt(builder)
	}

	q, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting companies: %w", err)
	}
	return count, nil
}

// Get loads a company with its shareholders, responsible persons and projects.
func (s *CompanyStore) Get(ctx context.Context, nib string) (*models.Company, error) {
	companies, err := s.List(ctx, ByNIB(nib))
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, srvErrors.NewCompanyNotFoundError(nib)
	}
	c := &companies[0]

	err = scanRows(ctx, s.db, s.sb.Select("COALESCE(nama, '')", "COALESCE(npwp, '')", "COALESCE(persentase, 0)").
		From("oss_pemegang_saham").Where(sq.Eq{"nib": nib}).OrderBy("persentase DESC", "nama"),
		func(rows *sql.Rows) error {
			var sh models.Shareholder
			if err := rows.Scan(&sh.Name, &sh.NPWP, &sh.Percentage); err != nil {
				return err
			}
			c.Shareholders = append(c.Shareholders, sh)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading shareholders of %s: %w", nib, err)
	}

	err = scanRows(ctx, s.db, s.sb.Select("COALESCE(nama, '')", "COALESCE(jabatan, '')").
		From("oss_penanggung_jawab").Where(sq.Eq{"nib": nib}).OrderBy("nama"),
		func(rows *sql.Rows) error {
			var p models.ResponsiblePerson
			if err := rows.Scan(&p.Name, &p.Position); err != nil {
				return err
			}
			c.ResponsiblePersons = append(c.ResponsiblePersons, p)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading responsible persons of %s: %w", nib, err)
	}

	err = scanRows(ctx, s.db, s.sb.Select("COALESCE(idproyek, '')", "COALESCE(kbli, '')", "COALESCE(uraianusaha, '')", "COALESCE(nilaiinvestasi, 0)").
		From("oss_proyek").Where(sq.Eq{"nib": nib}).OrderBy("idproyek"),
		func(rows *sql.Rows) error {
			var p models.Project
			if err := rows.Scan(&p.ID, &p.KBLI, &p.Description, &p.Investment); err != nil {
				return err
			}
			c.Projects = append(c.Projects, p)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading projects of %s: %w", nib, err)
	}

	return c, nil
}

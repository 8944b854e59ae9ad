package services

import (
	"context"

	"github.com/pabean-labs/bc20-explorer/internal/models"
	"github.com/pabean-labs/bc20-explorer/internal/store"
)

// CompanyListParams filters the OSS/NIB registry. Empty fields are ignored.
type CompanyListParams struct {
	NIB         string
	Name        string
	NPWP        string
	LegalStatus string
	KBLI        string
	Page        int
	PerPage     int
	SortBy      string
	SortDesc    bool
}

type CompanyService struct {
	store *store.Store
}

func NewCompanyService(st *store.Store) *CompanyService {
	return &CompanyService{store: st}
}

func (s *CompanyService) List(ctx context.Context, params CompanyListParams) (models.Page[models.Company], error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = DefaultPerPage
	}
	if params.PerPage > MaxPerPage {
		params.PerPage = MaxPerPage
	}

	filters := s.buildListOptions(params)

	total, err := s.store.Companies().Count(ctx, filters...)
	if err != nil {
		return models.Page[models.Company]{}, err
	}
	if total == 0 {
		return models.NewPage[models.Company](nil, params.Page, params.PerPage, 0), nil
	}

	opts := append(filters,
		store.WithCompanySort(params.SortBy, params.SortDesc),
		store.WithLimit(uint64(params.PerPage)),
		store.WithOffset(uint64((params.Page-1)*params.PerPage)),
	)
	companies, err := s.store.Companies().List(ctx, opts...)
	if err != nil {
		return models.Page[models.Company]{}, err
	}

	return models.NewPage(companies, params.Page, params.PerPage, total), nil
}

func (s *CompanyService) Get(ctx context.Context, nib string) (*models.Company, error) {
	return s.store.Companies().Get(ctx, nib)
}

func (s *CompanyService) buildListOptions(params CompanyListParams) []store.ListOption {
	var opts []store.ListOption

	if params.NIB != "" {
		opts = append(opts, store.ByNIB(params.NIB))
	}
	if params.Name != "" {
		opts = append(opts, store.ByCompanyName(params.Name))
	}
	if params.NPWP != "" {
		opts = append(opts, store.ByNPWPPrefix(params.NPWP))
	}
	if params.LegalStatus != "" {
		opts = append(opts, store.ByLegalStatus(params.LegalStatus))
	}
	if params.KBLI != "" {
		opts = append(opts, store.ByKBLI(params.KBLI))
	}

	return opts
}

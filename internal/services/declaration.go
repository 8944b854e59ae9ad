package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pabean-labs/bc20-explorer/internal/models"
	"github.com/pabean-labs/bc20-explorer/internal/store"
	srvErrors "github.com/pabean-labs/bc20-explorer/pkg/errors"
	"github.com/pabean-labs/bc20-explorer/pkg/filter"
	"github.com/pabean-labs/bc20-explorer/pkg/scheduler"
)

const (
	DefaultPerPage     = 20
	MaxPerPage         = 100
	DefaultSuggestSize = 10
	MaxSuggestSize     = 50
	DefaultExportLimit = 10000
	exportChunkSize    = 100
)

// SearchParams drives search, query and export.
type SearchParams struct {
	Filter   *filter.Group
	Page     int
	PerPage  int
	SortBy   string
	SortDesc bool
}

func (p SearchParams) normalized() SearchParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	if p.SortBy == "" {
		p.SortBy = store.DefaultSortField
		p.SortDesc = true
	}
	return p
}

type DeclarationService struct {
	store       *store.Store
	compiler    *filter.Compiler
	scheduler   *scheduler.Scheduler
	now         func() time.Time
	exportLimit int
	logger      *zap.SugaredLogger
}

type DeclarationOption func(*DeclarationService)

// WithScheduler runs the phase 2 queries concurrently on s.
func WithScheduler(s *scheduler.Scheduler) DeclarationOption {
	return func(d *DeclarationService) {
		d.scheduler = s
	}
}

// WithClock overrides the clock used for the default registration-day filter.
func WithClock(now func() time.Time) DeclarationOption {
	return func(d *DeclarationService) {
		d.now = now
	}
}

// WithExportLimit caps the number of rows an export may contain.
func WithExportLimit(limit int) DeclarationOption {
	return func(d *DeclarationService) {
		if limit > 0 {
			d.exportLimit = limit
		}
	}
}

// WithStrictFilters rejects filters with unsupported fields or operators instead of dropping them.
func WithStrictFilters() DeclarationOption {
	return func(d *DeclarationService) {
		d.compiler = filter.NewCompiler(filter.WithStrict())
	}
}

func NewDeclarationService(st *store.Store, opts ...DeclarationOption) *DeclarationService {
	s := &DeclarationService{
		store:       st,
		compiler:    filter.NewCompiler(),
		now:         time.Now,
		exportLimit: DefaultExportLimit,
		logger:      zap.S().Named("declaration_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search compiles the filter, runs phase 1 and hydrates the visible rows.
func (s *DeclarationService) Search(ctx context.Context, params SearchParams) (models.Page[models.DeclarationSummary], error) {
	params = params.normalized()

	filterOpts, err := s.filterOptions(params.Filter)
	if err != nil {
		return models.Page[models.DeclarationSummary]{}, err
	}

	total, err := s.store.Declarations().Count(ctx, filterOpts...)
	if err != nil {
		return models.Page[models.DeclarationSummary]{}, err
	}
	if total == 0 {
		return models.NewPage[models.DeclarationSummary](nil, params.Page, params.PerPage, 0), nil
	}

	offset := (params.Page - 1) * params.PerPage
	rows, err := s.page(ctx, filterOpts, params, uint64(offset), uint64(params.PerPage))
	if err != nil {
		return models.Page[models.DeclarationSummary]{}, err
	}

	return models.NewPage(rows, params.Page, params.PerPage, total), nil
}

// Get returns the full declaration.
func (s *DeclarationService) Get(ctx context.Context, id int64) (*models.Declaration, error) {
	return s.store.Declarations().Get(ctx, id)
}

// Suggest returns autocomplete values for a routable text field.
func (s *DeclarationService) Suggest(ctx context.Context, field, prefix string, limit int) ([]string, error) {
	route, err := filter.Resolve(field)
	if err != nil {
		return nil, srvErrors.NewInvalidFieldError(field, err.Error())
	}
	if route.IsCalculated() {
		return nil, srvErrors.NewInvalidFieldError(field, "calculated fields have no values to suggest")
	}
	if route.Fallback || !route.Scope.Relation.Knows(route.Column) {
		return nil, srvErrors.NewInvalidFieldError(field, "unknown field")
	}
	if route.Class != filter.Text {
		return nil, srvErrors.NewInvalidFieldError(field, "only text fields can be suggested")
	}

	if limit < 1 {
		limit = DefaultSuggestSize
	}
	if limit > MaxSuggestSize {
		limit = MaxSuggestSize
	}

	return s.store.Declarations().Suggest(ctx, route, prefix, uint64(limit))
}

// Export writes every row matching params as an xlsx workbook. Page and PerPage are ignored.
func (s *DeclarationService) Export(ctx context.Context, w io.Writer, params SearchParams) error {
	params = params.normalized()

	filterOpts, err := s.filterOptions(params.Filter)
	if err != nil {
		return err
	}

	total, err := s.store.Declarations().Count(ctx, filterOpts...)
	if err != nil {
		return err
	}
	if total > s.exportLimit {
		return srvErrors.NewExportLimitError(total, s.exportLimit)
	}

	sheet, err := newDeclarationSheet()
	if err != nil {
		return err
	}
	defer sheet.Close()

	for offset := 0; offset < total; offset += exportChunkSize {
		rows, err := s.page(ctx, filterOpts, params, uint64(offset), exportChunkSize)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			break
		}
		if err := sheet.Append(rows); err != nil {
			return fmt.Errorf("writing export rows: %w", err)
		}
	}

	s.logger.Infow("declarations exported", "rows", sheet.Rows())
	return sheet.Write(w)
}

// filterOptions compiles the tree into WHERE options. An empty predicate
// restricts the search to declarations registered today.
func (s *DeclarationService) filterOptions(g *filter.Group) ([]store.ListOption, error) {
	res, err := s.compiler.Compile(g)
	if err != nil {
		var ce *filter.CompileError
		if errors.As(err, &ce) {
			return nil, srvErrors.NewInvalidRequestError("%s", ce.Error())
		}
		return nil, err
	}

	for _, d := range res.Diagnostics {
		s.logger.Warnw("filter clause degraded", "field", d.Field, "operator", d.Operator, "reason", d.Message)
	}

	if res.Empty() {
		return []store.ListOption{store.ByRegistrationDay(s.now())}, nil
	}
	return []store.ListOption{store.WithPredicate(res.Predicate)}, nil
}

// page runs phase 1 for one window and phase 2 on its rows.
func (s *DeclarationService) page(ctx context.Context, filterOpts []store.ListOption, params SearchParams, offset, limit uint64) ([]models.DeclarationSummary, error) {
	opts := append([]store.ListOption{}, filterOpts...)
	opts = append(opts, store.WithSort(params.SortBy, params.SortDesc), store.WithLimit(limit), store.WithOffset(offset))

	rows, err := s.store.Declarations().List(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	if err := s.hydrate(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *DeclarationService) hydrate(ctx context.Context, rows []models.DeclarationSummary) error {
	if s.scheduler == nil {
		return s.store.Declarations().Hydrate(ctx, rows)
	}

	ds := s.store.Declarations()
	ids := store.IDs(rows)

	goodsF := scheduler.Submit(s.scheduler, func(ctx context.Context) (map[int64]models.GoodsSummary, error) {
		return ds.GoodsSummaries(ctx, ids)
	})
	namesF := scheduler.Submit(s.scheduler, func(ctx context.Context) (map[int64]map[string]string, error) {
		return ds.EntityNames(ctx, ids)
	})
	containersF := scheduler.Submit(s.scheduler, func(ctx context.Context) (map[int64]models.ContainerSummary, error) {
		return ds.ContainerSummaries(ctx, ids)
	})

	goods := goodsF.Wait(ctx)
	names := namesF.Wait(ctx)
	containers := containersF.Wait(ctx)
	if err := errors.Join(goods.Err, names.Err, containers.Err); err != nil {
		return fmt.Errorf("hydrating declarations: %w", err)
	}

	for i := range rows {
		id := rows[i].ID
		rows[i].Merge(goods.Data[id], names.Data[id], containers.Data[id])
	}
	return nil
}

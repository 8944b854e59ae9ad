package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/pabean-labs/bc20-explorer/api/v1"
	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
	"github.com/pabean-labs/bc20-explorer/internal/services"
	"github.com/pabean-labs/bc20-explorer/pkg/filter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// query parameters of GET /declarations that are not flat filters
var reservedListParams = map[string]bool{
	"page":           true,
	"per_page":       true,
	"sort_by":        true,
	"sort_direction": true,
	"filter":         true,
}

// ListDeclarations searches declarations with flat query-string filters and an
// optional text expression.
// (GET /declarations)
func (h *Handler) ListDeclarations(c *gin.Context) {
	if !authorize(c, middlewares.PermissionDeclarationsView) {
		return
	}

	var params v1.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}
	if err := h.validate.Struct(params); err != nil {
		badRequest(c, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}
	if err := validateDateRange(params.DateFrom, params.DateTo); err != nil {
		badRequest(c, err.Error())
		return
	}

	tree, err := listFilter(c.Request.URL.Query(), params.Filter)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	page, err := h.declarationSrv.Search(c.Request.Context(), services.SearchParams{
		Filter:   tree,
		Page:     params.Page,
		PerPage:  params.PerPage,
		SortBy:   params.SortBy,
		SortDesc: sortDesc(params.SortDirection),
	})
	if err != nil {
		respondError(c, err, "failed to search declarations")
		return
	}

	c.JSON(http.StatusOK, v1.NewPage(page, v1.NewDeclarationFromModel))
}

// QueryDeclarations searches declarations with a JSON rule tree.
// (POST /declarations/query)
func (h *Handler) QueryDeclarations(c *gin.Context) {
	if !authorize(c, middlewares.PermissionDeclarationsView) {
		return
	}

	req, ok := h.bindQuery(c)
	if !ok {
		return
	}

	page, err := h.declarationSrv.Search(c.Request.Context(), searchParams(req))
	if err != nil {
		respondError(c, err, "failed to query declarations")
		return
	}

	c.JSON(http.StatusOK, v1.NewPage(page, v1.NewDeclarationFromModel))
}

// ExportDeclarations streams every declaration matching a rule tree as an xlsx workbook.
// (POST /declarations/export)
func (h *Handler) ExportDeclarations(c *gin.Context) {
	if !authorize(c, middlewares.PermissionDeclarationsExport) {
		return
	}

	req, ok := h.bindQuery(c)
	if !ok {
		return
	}

	// the workbook is buffered so a failure never leaves a truncated download
	var buf bytes.Buffer
	if err := h.declarationSrv.Export(c.Request.Context(), &buf, searchParams(req)); err != nil {
		respondError(c, err, "failed to export declarations")
		return
	}

	filename := fmt.Sprintf("declarations-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetDeclaration returns one declaration with every child relation.
// (GET /declarations/:id)
func (h *Handler) GetDeclaration(c *gin.Context) {
	if !authorize(c, middlewares.PermissionDeclarationsView) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		badRequest(c, "invalid declaration id")
		return
	}

	d, err := h.declarationSrv.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "failed to get declaration")
		return
	}

	c.JSON(http.StatusOK, v1.NewDeclarationDetailsFromModel(d))
}

// SuggestValues autocompletes values of a text field.
// (GET /declarations/suggest)
func (h *Handler) SuggestValues(c *gin.Context) {
	if !authorize(c, middlewares.PermissionDeclarationsView) {
		return
	}

	var params v1.SuggestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}
	if err := h.validate.Struct(params); err != nil {
		badRequest(c, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	values, err := h.declarationSrv.Suggest(c.Request.Context(), params.Field, params.Q, params.Limit)
	if err != nil {
		respondError(c, err, "failed to suggest values")
		return
	}

	c.JSON(http.StatusOK, v1.SuggestResponse{Field: params.Field, Values: values})
}

func (h *Handler) bindQuery(c *gin.Context) (v1.QueryRequest, bool) {
	var req v1.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		badRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return req, false
	}
	return req, true
}

func searchParams(req v1.QueryRequest) services.SearchParams {
	return services.SearchParams{
		Filter:   req.Rules,
		Page:     req.Page,
		PerPage:  req.PerPage,
		SortBy:   req.SortBy,
		SortDesc: sortDesc(req.SortDirection),
	}
}

// sortDesc treats anything but an explicit asc as descending.
func sortDesc(direction string) bool {
	return !strings.EqualFold(direction, "asc")
}

func validateDateRange(from, to string) error {
	var fromDate, toDate time.Time
	var err error
	if from != "" {
		if fromDate, err = time.Parse(time.DateOnly, from); err != nil {
			return fmt.Errorf("invalid date_from %q, expected YYYY-MM-DD", from)
		}
	}
	if to != "" {
		if toDate, err = time.Parse(time.DateOnly, to); err != nil {
			return fmt.Errorf("invalid date_to %q, expected YYYY-MM-DD", to)
		}
	}
	if from != "" && to != "" && fromDate.After(toDate) {
		return errors.New("date_from cannot be after date_to")
	}
	return nil
}

// listFilter ANDs the flat query-string filters with the parsed text expression.
func listFilter(query url.Values, expression string) (*filter.Group, error) {
	flat := make(map[string]string)
	for key, values := range query {
		if reservedListParams[key] || len(values) == 0 || strings.TrimSpace(values[0]) == "" {
			continue
		}
		flat[key] = values[0]
	}
	tree := filter.FromFlat(flat)

	if strings.TrimSpace(expression) == "" {
		return tree, nil
	}

	parsed, err := filter.ParseExpression(expression)
	if err != nil {
		var pe filter.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("invalid filter expression: %s", pe.Error())
		}
		return nil, err
	}
	if len(tree.Rules) == 0 {
		return parsed, nil
	}
	return filter.NewGroup(filter.CombinatorAnd, parsed, tree), nil
}

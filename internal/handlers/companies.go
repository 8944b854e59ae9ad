package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	v1 "github.com/pabean-labs/bc20-explorer/api/v1"
	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
	"github.com/pabean-labs/bc20-explorer/internal/services"
)

// ListCompanies searches the OSS/NIB registry.
// (GET /companies)
func (h *Handler) ListCompanies(c *gin.Context) {
	if !authorize(c, middlewares.PermissionCompaniesView) {
		return
	}

	var params v1.CompanyListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}
	if err := h.validate.Struct(params); err != nil {
		badRequest(c, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	page, err := h.companySrv.List(c.Request.Context(), services.CompanyListParams{
		NIB:         params.Nib,
		Name:        params.Name,
		NPWP:        params.Npwp,
		LegalStatus: params.LegalStatus,
		KBLI:        params.Kbli,
		Page:        params.Page,
		PerPage:     params.PerPage,
		SortBy:      params.SortBy,
		SortDesc:    strings.EqualFold(params.SortDirection, "desc"),
	})
	if err != nil {
		respondError(c, err, "failed to list companies")
		return
	}

	c.JSON(http.StatusOK, v1.NewPage(page, v1.NewCompanyFromModel))
}

// GetCompany returns a company with its shareholders, officers and projects.
// (GET /companies/:nib)
func (h *Handler) GetCompany(c *gin.Context) {
	if !authorize(c, middlewares.PermissionCompaniesView) {
		return
	}

	company, err := h.companySrv.Get(c.Request.Context(), c.Param("nib"))
	if err != nil {
		respondError(c, err, "failed to get company")
		return
	}

	c.JSON(http.StatusOK, v1.NewCompanyDetailsFromModel(company))
}

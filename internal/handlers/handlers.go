package handlers

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/pabean-labs/bc20-explorer/internal/models"
	"github.com/pabean-labs/bc20-explorer/internal/services"
)

type DeclarationService interface {
	Search(ctx context.Context, params services.SearchParams) (models.Page[models.DeclarationSummary], error)
	Get(ctx context.Context, id int64) (*models.Declaration, error)
	Suggest(ctx context.Context, field, prefix string, limit int) ([]string, error)
	Export(ctx context.Context, w io.Writer, params services.SearchParams) error
}

type CompanyService interface {
	List(ctx context.Context, params services.CompanyListParams) (models.Page[models.Company], error)
	Get(ctx context.Context, nib string) (*models.Company, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	declarationSrv DeclarationService
	companySrv     CompanyService
	health         HealthChecker
	validate       *validator.Validate
}

func New(declarationSrv DeclarationService, companySrv CompanyService, health HealthChecker) *Handler {
	return &Handler{
		declarationSrv: declarationSrv,
		companySrv:     companySrv,
		health:         health,
		validate:       validator.New(),
	}
}

// RegisterHandlers mounts every endpoint on router.
func RegisterHandlers(router gin.IRouter, h *Handler) {
	router.GET("/health", h.GetHealth)
	router.GET("/fields", h.GetFields)

	router.GET("/declarations", h.ListDeclarations)
	router.POST("/declarations/query", h.QueryDeclarations)
	router.POST("/declarations/export", h.ExportDeclarations)
	router.GET("/declarations/suggest", h.SuggestValues)
	router.GET("/declarations/:id", h.GetDeclaration)

	router.GET("/companies", h.ListCompanies)
	router.GET("/companies/:nib", h.GetCompany)
}

package handlers_test

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pabean-labs/bc20-explorer/internal/handlers"
	"github.com/pabean-labs/bc20-explorer/internal/models"
	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
)

var _ = Describe("Permissions", func() {
	var (
		declSrv *MockDeclarationService
		health  *MockHealthChecker
		router  *gin.Engine
	)

	BeforeEach(func() {
		declSrv = &MockDeclarationService{SearchResult: models.NewPage[models.DeclarationSummary](nil, 1, 20, 0)}
		health = &MockHealthChecker{}
		router = newRouter(handlers.New(declSrv, &MockCompanyService{}, health), true)
	})

	It("should reject requests without a token", func() {
		w := do(router, http.MethodGet, "/api/v1/declarations", "", "")

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(declSrv.SearchCallCount).To(BeZero())
	})

	It("should reject tokens signed with another key", func() {
		w := do(router, http.MethodGet, "/api/v1/declarations", "", "not.a.token")

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should allow callers holding the permission", func() {
		w := do(router, http.MethodGet, "/api/v1/declarations", "", token(middlewares.PermissionDeclarationsView))

		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should forbid callers missing the permission", func() {
		w := do(router, http.MethodGet, "/api/v1/declarations", "", token(middlewares.PermissionCompaniesView))

		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(declSrv.SearchCallCount).To(BeZero())
	})

	It("should require the export permission for exports", func() {
		w := do(router, http.MethodPost, "/api/v1/declarations/export", `{}`, token(middlewares.PermissionDeclarationsView))
		Expect(w.Code).To(Equal(http.StatusForbidden))

		w = do(router, http.MethodPost, "/api/v1/declarations/export", `{}`, token(middlewares.PermissionDeclarationsExport))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(declSrv.ExportCallCount).To(Equal(1))
	})

	It("should serve health without a token", func() {
		w := do(router, http.MethodGet, "/api/v1/health", "", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		health.PingError = errors.New("database is closed")
		w = do(router, http.MethodGet, "/api/v1/health", "", "")
		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
	})
})

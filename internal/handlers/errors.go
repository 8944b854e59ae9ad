package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
	srvErrors "github.com/pabean-labs/bc20-explorer/pkg/errors"
)

// respondError maps service errors to HTTP statuses. Unknown errors are logged
// and reported as 500 with msg, hiding the underlying cause.
func respondError(c *gin.Context, err error, msg string) {
	switch {
	case srvErrors.IsResourceNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case srvErrors.IsInvalidFieldError(err), srvErrors.IsInvalidRequestError(err), srvErrors.IsExportLimitError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case srvErrors.IsPermissionDeniedError(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case srvErrors.IsUnauthorizedError(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		middlewares.RequestLogger(c).Named("handler").Errorw(msg, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// authorize aborts with 403 unless the caller holds permission.
func authorize(c *gin.Context, permission string) bool {
	if middlewares.HasPermission(c, permission) {
		return true
	}
	respondError(c, srvErrors.NewPermissionDeniedError(permission), "")
	return false
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

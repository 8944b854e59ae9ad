package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/pabean-labs/bc20-explorer/api/v1"
	"github.com/pabean-labs/bc20-explorer/internal/server/middlewares"
	"github.com/pabean-labs/bc20-explorer/pkg/filter"
)

// GetFields lists the fields a rule tree may reference.
// (GET /fields)
func (h *Handler) GetFields(c *gin.Context) {
	if !authorize(c, middlewares.PermissionDeclarationsView) {
		return
	}

	infos := filter.Fields()
	fields := make([]v1.Field, 0, len(infos))
	for _, info := range infos {
		fields = append(fields, v1.NewFieldFromInfo(info))
	}

	c.JSON(http.StatusOK, fields)
}

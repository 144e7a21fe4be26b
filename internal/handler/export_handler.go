package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/campus-vault/campusvault-api/internal/models"
	"github.com/campus-vault/campusvault-api/internal/service"
	"github.com/campus-vault/campusvault-api/pkg/response"
)

// ExportHandler streams catalog exports.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Catalog godoc
// @Summary Export a resource catalog
// @Description Download the college catalog of a resource kind as CSV or PDF
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param kind path string true "Resource kind (notes, pyqs, timetables)"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/{kind} [get]
func (h *ExportHandler) Catalog(c *gin.Context) {
	kind := models.ResourceKind(c.Param("kind"))
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	file, err := h.exports.Catalog(c.Request.Context(), kind, format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(200, file.ContentType, file.Payload)
}

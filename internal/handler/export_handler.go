package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/timetable-api/internal/service"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
	"github.com/campushq/timetable-api/pkg/response"
)

// ExportHandler exposes timetable export downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CSV godoc
// @Summary Download a term's timetable as CSV
// @Tags Exports
// @Produce text/csv
// @Param year query int true "Academic year"
// @Param semester query int true "Semester (1 or 2)"
// @Success 200 {file} file
// @Router /timetable/export/csv [get]
func (h *ExportHandler) CSV(c *gin.Context) {
	if !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	year, semester, ok := termFromQuery(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and semester are required"))
		return
	}
	payload, filename, err := h.exports.ExportCSV(c.Request.Context(), year, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// PDF godoc
// @Summary Download a term's timetable as PDF
// @Tags Exports
// @Produce application/pdf
// @Param year query int true "Academic year"
// @Param semester query int true "Semester (1 or 2)"
// @Success 200 {file} file
// @Router /timetable/export/pdf [get]
func (h *ExportHandler) PDF(c *gin.Context) {
	if !h.exports.Enabled() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled"))
		return
	}
	year, semester, ok := termFromQuery(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and semester are required"))
		return
	}
	payload, filename, err := h.exports.ExportPDF(c.Request.Context(), year, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}

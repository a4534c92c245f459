package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/edulane/sims-api/internal/service"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/response"
)

// ExportHandler exposes report generation and signed downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportGrades godoc
// @Summary Export grades as CSV or PDF
// @Tags Exports
// @Produce json
// @Param format query string true "csv or pdf"
// @Param studentId query string false "Filter by student"
// @Param courseId query string false "Filter by course"
// @Success 200 {object} response.Envelope
// @Router /grades/export [get]
func (h *ExportHandler) ExportGrades(c *gin.Context) {
	h.generate(c, service.ExportRequest{
		Kind:      service.ExportKindGrades,
		Format:    service.ExportFormat(c.DefaultQuery("format", "csv")),
		StudentID: c.Query("studentId"),
		CourseID:  c.Query("courseId"),
	})
}

// ExportAttendance godoc
// @Summary Export attendance as CSV or PDF
// @Tags Exports
// @Produce json
// @Param format query string true "csv or pdf"
// @Param studentId query string false "Filter by student"
// @Param sectionId query string false "Filter by section"
// @Success 200 {object} response.Envelope
// @Router /attendance/export [get]
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	h.generate(c, service.ExportRequest{
		Kind:      service.ExportKindAttendance,
		Format:    service.ExportFormat(c.DefaultQuery("format", "csv")),
		StudentID: c.Query("studentId"),
		SectionID: c.Query("sectionId"),
	})
}

// ExportTimesheets godoc
// @Summary Export timesheets as CSV or PDF
// @Tags Exports
// @Produce json
// @Param format query string true "csv or pdf"
// @Param teacherId query string false "Filter by teacher"
// @Success 200 {object} response.Envelope
// @Router /timesheets/export [get]
func (h *ExportHandler) ExportTimesheets(c *gin.Context) {
	h.generate(c, service.ExportRequest{
		Kind:      service.ExportKindTimesheets,
		Format:    service.ExportFormat(c.DefaultQuery("format", "csv")),
		TeacherID: c.Query("teacherId"),
	})
}

func (h *ExportHandler) generate(c *gin.Context, req service.ExportRequest) {
	if req.Format != service.ExportFormatCSV && req.Format != service.ExportFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	result, err := h.exports.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated export
// @Description The signed token authorises the download until it expires
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	name := filepath.Base(file.Name())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.File(file.Name())
}

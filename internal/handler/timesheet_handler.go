package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulane/sims-api/internal/models"
	"github.com/edulane/sims-api/internal/service"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/response"
)

// TimesheetHandler exposes teacher timesheet endpoints.
type TimesheetHandler struct {
	timesheets *service.TimesheetService
}

// NewTimesheetHandler constructs TimesheetHandler.
func NewTimesheetHandler(timesheets *service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheets: timesheets}
}

// List godoc
// @Summary List timesheets
// @Tags Timesheets
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param status query string false "Filter by status"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /timesheets [get]
func (h *TimesheetHandler) List(c *gin.Context) {
	var filter models.TimesheetFilter
	filter.TeacherID = c.Query("teacherId")
	filter.Status = models.TimesheetStatus(c.Query("status"))
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = &ts
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	sheets, pagination, err := h.timesheets.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheets, pagination)
}

// Get godoc
// @Summary Get timesheet detail
// @Tags Timesheets
// @Produce json
// @Param id path string true "Timesheet ID"
// @Success 200 {object} response.Envelope
// @Router /timesheets/{id} [get]
func (h *TimesheetHandler) Get(c *gin.Context) {
	sheet, err := h.timesheets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Create godoc
// @Summary Submit timesheet entry
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param payload body service.SubmitTimesheetRequest true "Timesheet payload"
// @Success 201 {object} response.Envelope
// @Router /timesheets [post]
func (h *TimesheetHandler) Create(c *gin.Context) {
	var req service.SubmitTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sheet, err := h.timesheets.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sheet)
}

// UpdateStatus godoc
// @Summary Approve or reject timesheet
// @Tags Timesheets
// @Accept json
// @Produce json
// @Param id path string true "Timesheet ID"
// @Param payload body service.ReviewTimesheetRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /timesheets/{id}/status [patch]
func (h *TimesheetHandler) UpdateStatus(c *gin.Context) {
	var req service.ReviewTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sheet, err := h.timesheets.Review(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Delete godoc
// @Summary Delete pending timesheet
// @Tags Timesheets
// @Produce json
// @Param id path string true "Timesheet ID"
// @Success 204
// @Router /timesheets/{id} [delete]
func (h *TimesheetHandler) Delete(c *gin.Context) {
	if err := h.timesheets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

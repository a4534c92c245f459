package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulane/sims-api/internal/models"
	"github.com/edulane/sims-api/internal/service"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/response"
)

// HomeworkHandler exposes homework endpoints.
type HomeworkHandler struct {
	homework *service.HomeworkService
}

// NewHomeworkHandler constructs HomeworkHandler.
func NewHomeworkHandler(homework *service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{homework: homework}
}

// List godoc
// @Summary List homework
// @Tags Homework
// @Produce json
// @Param sectionId query string false "Filter by section"
// @Param search query string false "Search by title"
// @Param dueBefore query string false "Due before (YYYY-MM-DD)"
// @Param dueAfter query string false "Due after (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /homework [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	var filter models.HomeworkFilter
	filter.SectionID = c.Query("sectionId")
	filter.Search = strings.TrimSpace(c.Query("search"))
	if raw := c.Query("dueBefore"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DueBefore = &ts
		}
	}
	if raw := c.Query("dueAfter"); raw != "" {
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DueAfter = &ts
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	items, pagination, err := h.homework.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get homework detail
// @Tags Homework
// @Produce json
// @Param id path string true "Homework ID"
// @Success 200 {object} response.Envelope
// @Router /homework/{id} [get]
func (h *HomeworkHandler) Get(c *gin.Context) {
	hw, err := h.homework.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hw, nil)
}

// Create godoc
// @Summary Publish homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param payload body service.CreateHomeworkRequest true "Homework payload"
// @Success 201 {object} response.Envelope
// @Router /homework [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	var req service.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hw, err := h.homework.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, hw)
}

// Update godoc
// @Summary Update homework
// @Tags Homework
// @Accept json
// @Produce json
// @Param id path string true "Homework ID"
// @Param payload body service.UpdateHomeworkRequest true "Homework payload"
// @Success 200 {object} response.Envelope
// @Router /homework/{id} [put]
func (h *HomeworkHandler) Update(c *gin.Context) {
	var req service.UpdateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	hw, err := h.homework.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hw, nil)
}

// Delete godoc
// @Summary Delete homework
// @Tags Homework
// @Produce json
// @Param id path string true "Homework ID"
// @Success 204
// @Router /homework/{id} [delete]
func (h *HomeworkHandler) Delete(c *gin.Context) {
	if err := h.homework.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulane/sims-api/internal/service"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/response"
)

// SectionGradeTypeHandler exposes per-section grade-type configuration.
type SectionGradeTypeHandler struct {
	config *service.SectionGradeTypeService
}

// NewSectionGradeTypeHandler constructs SectionGradeTypeHandler.
func NewSectionGradeTypeHandler(config *service.SectionGradeTypeService) *SectionGradeTypeHandler {
	return &SectionGradeTypeHandler{config: config}
}

// List godoc
// @Summary List grade types configured for a section
// @Description Returns associations ordered by sort order
// @Tags SectionGradeTypes
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/grade-types [get]
func (h *SectionGradeTypeHandler) List(c *gin.Context) {
	items, err := h.config.Query(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Associate godoc
// @Summary Attach a grade type to a section
// @Description Re-attaching an existing association re-activates it keeping its sort position
// @Tags SectionGradeTypes
// @Produce json
// @Param id path string true "Section ID"
// @Param gradeTypeId path string true "Grade type ID"
// @Success 201 {object} response.Envelope
// @Router /sections/{id}/grade-types/{gradeTypeId} [post]
func (h *SectionGradeTypeHandler) Associate(c *gin.Context) {
	item, err := h.config.Associate(c.Request.Context(), c.Param("id"), c.Param("gradeTypeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Disassociate godoc
// @Summary Detach a grade type from a section
// @Tags SectionGradeTypes
// @Produce json
// @Param id path string true "Section ID"
// @Param gradeTypeId path string true "Grade type ID"
// @Success 204
// @Router /sections/{id}/grade-types/{gradeTypeId} [delete]
func (h *SectionGradeTypeHandler) Disassociate(c *gin.Context) {
	if err := h.config.Disassociate(c.Request.Context(), c.Param("id"), c.Param("gradeTypeId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder godoc
// @Summary Reorder a section's grade types
// @Description Applies the explicit ordering atomically; unknown ids reject the whole batch
// @Tags SectionGradeTypes
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.ReorderSectionGradeTypesRequest true "Ordered association ids"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/grade-types/sort [patch]
func (h *SectionGradeTypeHandler) Reorder(c *gin.Context) {
	var req service.ReorderSectionGradeTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	items, err := h.config.Reorder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Toggle godoc
// @Summary Toggle a section grade type's active flag
// @Tags SectionGradeTypes
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param gradeTypeId path string true "Grade type ID"
// @Param payload body service.ToggleSectionGradeTypeRequest true "Toggle payload"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/grade-types/{gradeTypeId}/toggle [patch]
func (h *SectionGradeTypeHandler) Toggle(c *gin.Context) {
	var req service.ToggleSectionGradeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.config.Toggle(c.Request.Context(), c.Param("id"), c.Param("gradeTypeId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

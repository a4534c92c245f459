package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulane/sims-api/internal/service"
	appErrors "github.com/edulane/sims-api/pkg/errors"
	"github.com/edulane/sims-api/pkg/response"
)

// GradeTypeHandler exposes grade-type catalog endpoints.
type GradeTypeHandler struct {
	gradeTypes *service.GradeTypeService
}

// NewGradeTypeHandler constructs GradeTypeHandler.
func NewGradeTypeHandler(gradeTypes *service.GradeTypeService) *GradeTypeHandler {
	return &GradeTypeHandler{gradeTypes: gradeTypes}
}

// List godoc
// @Summary List grade types
// @Tags GradeTypes
// @Produce json
// @Param active query bool false "Only active entries"
// @Success 200 {object} response.Envelope
// @Router /grade-types [get]
func (h *GradeTypeHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	types, err := h.gradeTypes.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}

// Get godoc
// @Summary Get grade type
// @Tags GradeTypes
// @Produce json
// @Param id path string true "Grade type ID"
// @Success 200 {object} response.Envelope
// @Router /grade-types/{id} [get]
func (h *GradeTypeHandler) Get(c *gin.Context) {
	gt, err := h.gradeTypes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gt, nil)
}

// Create godoc
// @Summary Create grade type
// @Tags GradeTypes
// @Accept json
// @Produce json
// @Param payload body service.CreateGradeTypeRequest true "Grade type payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /grade-types [post]
func (h *GradeTypeHandler) Create(c *gin.Context) {
	var req service.CreateGradeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	gt, err := h.gradeTypes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gt)
}

// Update godoc
// @Summary Update grade type
// @Tags GradeTypes
// @Accept json
// @Produce json
// @Param id path string true "Grade type ID"
// @Param payload body service.UpdateGradeTypeRequest true "Grade type payload"
// @Success 200 {object} response.Envelope
// @Router /grade-types/{id} [put]
func (h *GradeTypeHandler) Update(c *gin.Context) {
	var req service.UpdateGradeTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	gt, err := h.gradeTypes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gt, nil)
}

// Delete godoc
// @Summary Delete grade type
// @Tags GradeTypes
// @Produce json
// @Param id path string true "Grade type ID"
// @Success 204
// @Router /grade-types/{id} [delete]
func (h *GradeTypeHandler) Delete(c *gin.Context) {
	if err := h.gradeTypes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

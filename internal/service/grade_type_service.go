package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type gradeTypeRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.GradeType, error)
	FindByID(ctx context.Context, id string) (*models.GradeType, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, gt *models.GradeType) error
	Update(ctx context.Context, gt *models.GradeType) error
	Delete(ctx context.Context, id string) error
	SeedDefaults(ctx context.Context) error
}

// CreateGradeTypeRequest describes a new catalog entry.
type CreateGradeTypeRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	Code      string  `json:"code" validate:"required,min=1,max=64"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=100"`
	SortOrder int     `json:"sort_order" validate:"gte=0"`
}

// UpdateGradeTypeRequest patches a catalog entry.
type UpdateGradeTypeRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Weight    *float64 `json:"weight" validate:"omitempty,gte=0,lte=100"`
	Active    *bool    `json:"active"`
	SortOrder *int     `json:"sort_order" validate:"omitempty,gte=0"`
}

// GradeTypeService manages the dynamic grade-type catalog. The catalog is
// authoritative for grade initialization; the legacy fixed codes exist only
// as seed data.
type GradeTypeService struct {
	repo      gradeTypeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeTypeService constructs GradeTypeService.
func NewGradeTypeService(repo gradeTypeRepository, validate *validator.Validate, logger *zap.Logger) *GradeTypeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeTypeService{repo: repo, validator: validate, logger: logger}
}

// List returns catalog entries ordered by sort order.
func (s *GradeTypeService) List(ctx context.Context, activeOnly bool) ([]models.GradeType, error) {
	types, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade types")
	}
	return types, nil
}

// Get returns one catalog entry.
func (s *GradeTypeService) Get(ctx context.Context, id string) (*models.GradeType, error) {
	gt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade type")
	}
	return gt, nil
}

// Create adds a catalog entry. Codes are stored upper-cased and must be
// unique.
func (s *GradeTypeService) Create(ctx context.Context, req CreateGradeTypeRequest) (*models.GradeType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid grade type payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade type code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "grade type code already in use")
	}
	gt := &models.GradeType{
		Name:      req.Name,
		Code:      code,
		Weight:    req.Weight,
		Active:    true,
		SortOrder: req.SortOrder,
	}
	if err := s.repo.Create(ctx, gt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade type")
	}
	s.logger.Info("grade type created", zap.String("grade_type_id", gt.ID), zap.String("code", gt.Code))
	return gt, nil
}

// Update patches a catalog entry. The code is immutable because existing
// grade rows reference it by value.
func (s *GradeTypeService) Update(ctx context.Context, id string, req UpdateGradeTypeRequest) (*models.GradeType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid grade type payload")
	}
	gt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade type")
	}
	if req.Name != nil {
		gt.Name = *req.Name
	}
	if req.Weight != nil {
		gt.Weight = *req.Weight
	}
	if req.Active != nil {
		gt.Active = *req.Active
	}
	if req.SortOrder != nil {
		gt.SortOrder = *req.SortOrder
	}
	if err := s.repo.Update(ctx, gt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade type")
	}
	return gt, nil
}

// Delete removes a catalog entry. Section associations referencing it are
// removed by the database; existing grade rows keep their code string.
func (s *GradeTypeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade type not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade type")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade type")
	}
	return nil
}

// Seed inserts the default catalog entries when missing. Safe to run at every
// startup.
func (s *GradeTypeService) Seed(ctx context.Context) error {
	if err := s.repo.SeedDefaults(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed grade types")
	}
	return nil
}

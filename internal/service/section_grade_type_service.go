package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type sectionGradeTypeRepository interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.SectionGradeTypeDetail, error)
	Find(ctx context.Context, sectionID, gradeTypeID string) (*models.SectionGradeType, error)
	MaxSortOrder(ctx context.Context, sectionID string) (int, error)
	Create(ctx context.Context, row *models.SectionGradeType) error
	SetActive(ctx context.Context, id string, isActive bool) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, sectionID string, orderedIDs []string) error
}

type sectionReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassSectionDetail, error)
}

type gradeTypeReader interface {
	FindByID(ctx context.Context, id string) (*models.GradeType, error)
}

// ReorderSectionGradeTypesRequest carries the explicit ordered join-row ids.
type ReorderSectionGradeTypesRequest struct {
	OrderedIDs []string `json:"ordered_ids" validate:"required,min=1,dive,required"`
}

// ToggleSectionGradeTypeRequest flips a join row's active flag.
type ToggleSectionGradeTypeRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// SectionGradeTypeService maintains the per-section ordered, toggleable
// subset of the grade-type catalog.
type SectionGradeTypeService struct {
	repo       sectionGradeTypeRepository
	sections   sectionReader
	gradeTypes gradeTypeReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSectionGradeTypeService constructs a SectionGradeTypeService.
func NewSectionGradeTypeService(repo sectionGradeTypeRepository, sections sectionReader, gradeTypes gradeTypeReader, validate *validator.Validate, logger *zap.Logger) *SectionGradeTypeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionGradeTypeService{repo: repo, sections: sections, gradeTypes: gradeTypes, validator: validate, logger: logger}
}

// Query returns the section's grade types with section-scoped metadata,
// ascending by sort order.
func (s *SectionGradeTypeService) Query(ctx context.Context, sectionID string) ([]models.SectionGradeTypeDetail, error) {
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	rows, err := s.repo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section grade types")
	}
	return rows, nil
}

// Associate upserts the join row for (section, grade type): an existing
// association is reactivated in place without changing its sort position, a
// new one is appended after the section's current maximum (0 when the section
// is empty).
func (s *SectionGradeTypeService) Associate(ctx context.Context, sectionID, gradeTypeID string) (*models.SectionGradeType, error) {
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if _, err := s.gradeTypes.FindByID(ctx, gradeTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade type")
	}

	existing, err := s.repo.Find(ctx, sectionID, gradeTypeID)
	if err == nil {
		if err := s.repo.SetActive(ctx, existing.ID, true); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reactivate association")
		}
		existing.IsActive = true
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect association")
	}

	max, err := s.repo.MaxSortOrder(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve sort order")
	}
	row := &models.SectionGradeType{
		SectionID:   sectionID,
		GradeTypeID: gradeTypeID,
		IsActive:    true,
		SortOrder:   max + 1,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create association")
	}
	return row, nil
}

// Disassociate deletes the join row outright.
func (s *SectionGradeTypeService) Disassociate(ctx context.Context, sectionID, gradeTypeID string) error {
	row, err := s.repo.Find(ctx, sectionID, gradeTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "association not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load association")
	}
	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete association")
	}
	return nil
}

// Reorder reassigns each join row's sort order to its index in the supplied
// list. The whole reassignment is one transaction.
func (s *SectionGradeTypeService) Reorder(ctx context.Context, sectionID string, req ReorderSectionGradeTypesRequest) ([]models.SectionGradeTypeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid reorder payload")
	}
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if err := s.repo.Reorder(ctx, sectionID, req.OrderedIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "association not found in section")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder associations")
	}
	rows, err := s.repo.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section grade types")
	}
	return rows, nil
}

// Toggle flips the active flag without touching the sort order.
func (s *SectionGradeTypeService) Toggle(ctx context.Context, sectionID, gradeTypeID string, req ToggleSectionGradeTypeRequest) (*models.SectionGradeType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid toggle payload")
	}
	row, err := s.repo.Find(ctx, sectionID, gradeTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "association not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load association")
	}
	if err := s.repo.SetActive(ctx, row.ID, *req.IsActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle association")
	}
	row.IsActive = *req.IsActive
	return row, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type homeworkRepository interface {
	List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error)
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	Create(ctx context.Context, hw *models.Homework) error
	Update(ctx context.Context, hw *models.Homework) error
	Delete(ctx context.Context, id string) error
}

// CreateHomeworkRequest publishes an assignment for a section.
type CreateHomeworkRequest struct {
	SectionID   string    `json:"section_id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	MaxScore    float64   `json:"max_score" validate:"gte=0,lte=1000"`
}

// UpdateHomeworkRequest patches an assignment.
type UpdateHomeworkRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	DueDate     *time.Time `json:"due_date"`
	MaxScore    *float64   `json:"max_score" validate:"omitempty,gte=0,lte=1000"`
}

// HomeworkService manages homework assignments.
type HomeworkService struct {
	repo      homeworkRepository
	sections  sectionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHomeworkService constructs HomeworkService.
func NewHomeworkService(repo homeworkRepository, sections sectionReader, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{repo: repo, sections: sections, validator: validate, logger: logger}
}

// List returns homework matching the filter.
func (s *HomeworkService) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one homework assignment.
func (s *HomeworkService) Get(ctx context.Context, id string) (*models.Homework, error) {
	hw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	return hw, nil
}

// Create publishes a homework assignment under an existing section.
func (s *HomeworkService) Create(ctx context.Context, req CreateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid homework payload")
	}
	if _, err := s.sections.FindByID(ctx, req.SectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	hw := &models.Homework{
		SectionID:   req.SectionID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.UTC(),
		MaxScore:    req.MaxScore,
	}
	if err := s.repo.Create(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create homework")
	}
	return hw, nil
}

// Update patches a homework assignment.
func (s *HomeworkService) Update(ctx context.Context, id string, req UpdateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid homework payload")
	}
	hw, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	if req.Title != nil {
		hw.Title = *req.Title
	}
	if req.Description != nil {
		hw.Description = *req.Description
	}
	if req.DueDate != nil {
		hw.DueDate = req.DueDate.UTC()
	}
	if req.MaxScore != nil {
		hw.MaxScore = *req.MaxScore
	}
	if err := s.repo.Update(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update homework")
	}
	return hw, nil
}

// Delete removes a homework assignment.
func (s *HomeworkService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete homework")
	}
	return nil
}

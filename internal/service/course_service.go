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

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	UpdateStatus(ctx context.Context, id string, status models.CourseStatus) error
}

// CreateCourseRequest describes course creation payload.
type CreateCourseRequest struct {
	Code          string `json:"code" validate:"required,min=2,max=32"`
	Title         string `json:"title" validate:"required,min=1,max=255"`
	Credits       int    `json:"credits" validate:"gte=0,lte=60"`
	DurationWeeks int    `json:"duration_weeks" validate:"gte=0,lte=104"`
	Capacity      int    `json:"capacity" validate:"gte=0,lte=10000"`
}

// UpdateCourseRequest describes a partial course update.
type UpdateCourseRequest struct {
	Title         *string              `json:"title" validate:"omitempty,min=1,max=255"`
	Credits       *int                 `json:"credits" validate:"omitempty,gte=0,lte=60"`
	DurationWeeks *int                 `json:"duration_weeks" validate:"omitempty,gte=0,lte=104"`
	Capacity      *int                 `json:"capacity" validate:"omitempty,gte=0,lte=10000"`
	Status        *models.CourseStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE ARCHIVED"`
}

// CourseService manages the course catalog.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns courses matching the filter.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a course to the catalog. Codes are stored upper-cased.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid course payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already in use")
	}
	course := &models.Course{
		Code:          code,
		Title:         req.Title,
		Credits:       req.Credits,
		DurationWeeks: req.DurationWeeks,
		Capacity:      req.Capacity,
		Status:        models.CourseStatusActive,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("code", course.Code))
	return course, nil
}

// Update applies a partial update to a course. The code is immutable.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid course payload")
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.DurationWeeks != nil {
		course.DurationWeeks = *req.DurationWeeks
	}
	if req.Capacity != nil {
		course.Capacity = *req.Capacity
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Archive soft-deletes a course. Existing enrollments and grades are kept;
// new enrollments into an archived course are rejected.
func (s *CourseService) Archive(ctx context.Context, id string) error {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.Status == models.CourseStatusArchived {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, id, models.CourseStatusArchived); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive course")
	}
	s.logger.Info("course archived", zap.String("course_id", id))
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

type enrollmentChecker interface {
	ExistsEnrolled(ctx context.Context, studentID, courseID, excludeID string) (bool, error)
}

// CreateGradeRequest describes a manual grade entry. Most grade rows come
// from enrollment bootstrap; manual creation covers ad-hoc assessment types.
type CreateGradeRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	CourseID  string  `json:"course_id" validate:"required"`
	GradeType string  `json:"grade_type" validate:"required,min=1,max=64"`
	Value     float64 `json:"value" validate:"gte=0,lte=100"`
	Comments  *string `json:"comments" validate:"omitempty,max=1000"`
}

// UpdateGradeRequest patches a grade's value or comments.
type UpdateGradeRequest struct {
	Value    *float64 `json:"value" validate:"omitempty,gte=0,lte=100"`
	Comments *string  `json:"comments" validate:"omitempty,max=1000"`
}

// GradeService manages assessment entries.
type GradeService struct {
	repo        gradeRepository
	enrollments enrollmentChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(repo gradeRepository, enrollments enrollmentChecker, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, enrollments: enrollments, validator: validate, logger: logger}
}

// List returns grades matching the filter with labels.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, *models.Pagination, error) {
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return grades, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one grade row.
func (s *GradeService) Get(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// Create inserts a manual grade row. The student must hold an active
// enrollment in the course, and (student, course, grade_type) must be free.
func (s *GradeService) Create(ctx context.Context, req CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid grade payload")
	}
	enrolled, err := s.enrollments.ExistsEnrolled(ctx, req.StudentID, req.CourseID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not enrolled in course")
	}
	grade := &models.Grade{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		GradeType: req.GradeType,
		Value:     req.Value,
		Comments:  req.Comments,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "grade type already recorded for this student and course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	return grade, nil
}

// Update patches a grade's value or comments. Student, course and grade type
// are immutable once the row exists.
func (s *GradeService) Update(ctx context.Context, id string, req UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid grade payload")
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if req.Value != nil {
		grade.Value = *req.Value
	}
	if req.Comments != nil {
		grade.Comments = req.Comments
	}
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return grade, nil
}

// Delete removes a grade row.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

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

type sectionRepository interface {
	List(ctx context.Context, filter models.SectionFilter) ([]models.ClassSectionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassSectionDetail, error)
	Create(ctx context.Context, section *models.ClassSection) error
	Update(ctx context.Context, section *models.ClassSection) error
	Delete(ctx context.Context, id string) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// CreateSectionRequest describes section creation payload.
type CreateSectionRequest struct {
	CourseID  string  `json:"course_id" validate:"required"`
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	Code      string  `json:"code" validate:"omitempty,max=32"`
	Schedule  string  `json:"schedule" validate:"omitempty,max=255"`
	TeacherID *string `json:"teacher_id"`
}

// UpdateSectionRequest describes a partial section update.
type UpdateSectionRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Code      *string `json:"code" validate:"omitempty,max=32"`
	Schedule  *string `json:"schedule" validate:"omitempty,max=255"`
	TeacherID *string `json:"teacher_id"`
}

// SectionService manages class sections of courses.
type SectionService struct {
	repo      sectionRepository
	courses   courseReader
	teachers  teacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService constructs SectionService.
func NewSectionService(repo sectionRepository, courses courseReader, teachers teacherReader, validate *validator.Validate, logger *zap.Logger) *SectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{repo: repo, courses: courses, teachers: teachers, validator: validate, logger: logger}
}

// List returns sections matching the filter.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.ClassSectionDetail, *models.Pagination, error) {
	sections, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sections, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one section with course and teacher labels.
func (s *SectionService) Get(ctx context.Context, id string) (*models.ClassSectionDetail, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}

// Create registers a class section under an active course.
func (s *SectionService) Create(ctx context.Context, req CreateSectionRequest) (*models.ClassSectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid section payload")
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.Status == models.CourseStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is archived")
	}
	if req.TeacherID != nil {
		if err := s.checkTeacher(ctx, *req.TeacherID); err != nil {
			return nil, err
		}
	}
	section := &models.ClassSection{
		CourseID:  req.CourseID,
		Name:      req.Name,
		Code:      req.Code,
		Schedule:  req.Schedule,
		TeacherID: req.TeacherID,
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	s.logger.Info("section created", zap.String("section_id", section.ID), zap.String("course_id", section.CourseID))
	return s.Get(ctx, section.ID)
}

// Update applies a partial update to a section. The owning course is
// immutable.
func (s *SectionService) Update(ctx context.Context, id string, req UpdateSectionRequest) (*models.ClassSectionDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid section payload")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	section := detail.ClassSection
	if req.Name != nil {
		section.Name = *req.Name
	}
	if req.Code != nil {
		section.Code = *req.Code
	}
	if req.Schedule != nil {
		section.Schedule = *req.Schedule
	}
	if req.TeacherID != nil {
		if *req.TeacherID == "" {
			section.TeacherID = nil
		} else {
			if err := s.checkTeacher(ctx, *req.TeacherID); err != nil {
				return nil, err
			}
			section.TeacherID = req.TeacherID
		}
	}
	if err := s.repo.Update(ctx, &section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return s.Get(ctx, id)
}

// Delete removes a section. Enrollment rows drop their section reference;
// attendance rows for the section are removed with it.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete section")
	}
	s.logger.Info("section deleted", zap.String("section_id", id))
	return nil
}

func (s *SectionService) checkTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher is inactive")
	}
	return nil
}

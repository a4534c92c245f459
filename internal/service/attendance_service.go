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

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Create(ctx context.Context, record *models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// RecordAttendanceRequest marks a student's presence for a section date.
type RecordAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	SectionID string                  `json:"section_id" validate:"required"`
	Date      time.Time               `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=PRESENT ABSENT LATE EXCUSED"`
	Note      *string                 `json:"note" validate:"omitempty,max=500"`
}

// UpdateAttendanceRequest patches an attendance mark.
type UpdateAttendanceRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"omitempty,oneof=PRESENT ABSENT LATE EXCUSED"`
	Note   *string                 `json:"note" validate:"omitempty,max=500"`
}

// AttendanceService manages attendance records.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentReader
	sections  sectionReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, students studentReader, sections sectionReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, sections: sections, validator: validate, logger: logger}
}

// List returns attendance records matching the filter.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one attendance record.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.Attendance, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return record, nil
}

// Record creates an attendance mark. One mark exists per (student, section,
// date); duplicates are rejected.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid attendance payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.sections.FindByID(ctx, req.SectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	record := &models.Attendance{
		StudentID: req.StudentID,
		SectionID: req.SectionID,
		Date:      req.Date.UTC().Truncate(24 * time.Hour),
		Status:    req.Status,
		Note:      req.Note,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// Update patches an attendance mark's status or note.
func (s *AttendanceService) Update(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid attendance payload")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if req.Status != "" {
		record.Status = req.Status
	}
	if req.Note != nil {
		record.Note = req.Note
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}
	return record, nil
}

// Delete removes an attendance mark.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	return nil
}

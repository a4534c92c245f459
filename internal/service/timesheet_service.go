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

type timesheetRepository interface {
	List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, int, error)
	FindByID(ctx context.Context, id string) (*models.Timesheet, error)
	Create(ctx context.Context, sheet *models.Timesheet) error
	UpdateStatus(ctx context.Context, id string, status models.TimesheetStatus) error
	Delete(ctx context.Context, id string) error
}

// SubmitTimesheetRequest records hours worked by a teacher.
type SubmitTimesheetRequest struct {
	TeacherID   string    `json:"teacher_id" validate:"required"`
	WorkDate    time.Time `json:"work_date" validate:"required"`
	Hours       float64   `json:"hours" validate:"gt=0,lte=24"`
	Description string    `json:"description" validate:"omitempty,max=1000"`
}

// ReviewTimesheetRequest approves or rejects a pending entry.
type ReviewTimesheetRequest struct {
	Status models.TimesheetStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// TimesheetService manages teacher work-hour entries and their approval
// lifecycle.
type TimesheetService struct {
	repo      timesheetRepository
	teachers  teacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimesheetService constructs TimesheetService.
func NewTimesheetService(repo timesheetRepository, teachers teacherReader, validate *validator.Validate, logger *zap.Logger) *TimesheetService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimesheetService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns timesheet entries matching the filter.
func (s *TimesheetService) List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, *models.Pagination, error) {
	sheets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timesheets")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sheets, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one timesheet entry.
func (s *TimesheetService) Get(ctx context.Context, id string) (*models.Timesheet, error) {
	sheet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timesheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheet")
	}
	return sheet, nil
}

// Submit records a new pending timesheet entry.
func (s *TimesheetService) Submit(ctx context.Context, req SubmitTimesheetRequest) (*models.Timesheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid timesheet payload")
	}
	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "teacher is inactive")
	}
	sheet := &models.Timesheet{
		TeacherID:   req.TeacherID,
		WorkDate:    req.WorkDate.UTC().Truncate(24 * time.Hour),
		Hours:       req.Hours,
		Description: req.Description,
		Status:      models.TimesheetPending,
	}
	if err := s.repo.Create(ctx, sheet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit timesheet")
	}
	return sheet, nil
}

// Review moves a pending entry to APPROVED or REJECTED. Reviewed entries are
// final.
func (s *TimesheetService) Review(ctx context.Context, id string, req ReviewTimesheetRequest) (*models.Timesheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid review payload")
	}
	sheet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timesheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheet")
	}
	if sheet.Status != models.TimesheetPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "timesheet already reviewed")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to review timesheet")
	}
	sheet.Status = req.Status
	s.logger.Info("timesheet reviewed", zap.String("timesheet_id", id), zap.String("status", string(req.Status)))
	return sheet, nil
}

// Delete removes a pending timesheet entry. Reviewed entries cannot be
// deleted.
func (s *TimesheetService) Delete(ctx context.Context, id string) error {
	sheet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timesheet not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timesheet")
	}
	if sheet.Status != models.TimesheetPending {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "reviewed timesheets cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timesheet")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type mockTimesheetRepo struct {
	sheets  map[string]models.Timesheet
	created *models.Timesheet
	status  map[string]models.TimesheetStatus
	deleted []string
}

func (m *mockTimesheetRepo) List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, int, error) {
	return nil, 0, nil
}

func (m *mockTimesheetRepo) FindByID(ctx context.Context, id string) (*models.Timesheet, error) {
	if s, ok := m.sheets[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTimesheetRepo) Create(ctx context.Context, sheet *models.Timesheet) error {
	if m.sheets == nil {
		m.sheets = make(map[string]models.Timesheet)
	}
	if sheet.ID == "" {
		sheet.ID = "new-sheet"
	}
	m.sheets[sheet.ID] = *sheet
	m.created = sheet
	return nil
}

func (m *mockTimesheetRepo) UpdateStatus(ctx context.Context, id string, status models.TimesheetStatus) error {
	if m.status == nil {
		m.status = make(map[string]models.TimesheetStatus)
	}
	m.status[id] = status
	if s, ok := m.sheets[id]; ok {
		s.Status = status
		m.sheets[id] = s
	}
	return nil
}

func (m *mockTimesheetRepo) Delete(ctx context.Context, id string) error {
	delete(m.sheets, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTeacherReader struct {
	teachers map[string]*models.Teacher
}

func (m *mockTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func activeTeachers() *mockTeacherReader {
	return &mockTeacherReader{teachers: map[string]*models.Teacher{
		"t1": {ID: "t1", Active: true},
	}}
}

func TestTimesheetServiceSubmit(t *testing.T) {
	repo := &mockTimesheetRepo{}
	svc := NewTimesheetService(repo, activeTeachers(), validator.New(), zap.NewNop())

	workDate := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)
	sheet, err := svc.Submit(context.Background(), SubmitTimesheetRequest{TeacherID: "t1", WorkDate: workDate, Hours: 6})
	require.NoError(t, err)
	assert.Equal(t, models.TimesheetPending, sheet.Status)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), sheet.WorkDate)
	assert.NotNil(t, repo.created)
}

func TestTimesheetServiceSubmitInactiveTeacher(t *testing.T) {
	teachers := &mockTeacherReader{teachers: map[string]*models.Teacher{"t1": {ID: "t1", Active: false}}}
	svc := NewTimesheetService(&mockTimesheetRepo{}, teachers, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), SubmitTimesheetRequest{TeacherID: "t1", WorkDate: time.Now(), Hours: 6})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestTimesheetServiceSubmitRejectsExcessHours(t *testing.T) {
	svc := NewTimesheetService(&mockTimesheetRepo{}, activeTeachers(), validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), SubmitTimesheetRequest{TeacherID: "t1", WorkDate: time.Now(), Hours: 25})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestTimesheetServiceReviewApproves(t *testing.T) {
	repo := &mockTimesheetRepo{sheets: map[string]models.Timesheet{
		"ts1": {ID: "ts1", TeacherID: "t1", Status: models.TimesheetPending},
	}}
	svc := NewTimesheetService(repo, activeTeachers(), validator.New(), zap.NewNop())

	sheet, err := svc.Review(context.Background(), "ts1", ReviewTimesheetRequest{Status: models.TimesheetApproved})
	require.NoError(t, err)
	assert.Equal(t, models.TimesheetApproved, sheet.Status)
	assert.Equal(t, models.TimesheetApproved, repo.status["ts1"])
}

func TestTimesheetServiceReviewIsFinal(t *testing.T) {
	repo := &mockTimesheetRepo{sheets: map[string]models.Timesheet{
		"ts1": {ID: "ts1", TeacherID: "t1", Status: models.TimesheetApproved},
	}}
	svc := NewTimesheetService(repo, activeTeachers(), validator.New(), zap.NewNop())

	_, err := svc.Review(context.Background(), "ts1", ReviewTimesheetRequest{Status: models.TimesheetRejected})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestTimesheetServiceDeleteOnlyPending(t *testing.T) {
	repo := &mockTimesheetRepo{sheets: map[string]models.Timesheet{
		"pending":  {ID: "pending", Status: models.TimesheetPending},
		"approved": {ID: "approved", Status: models.TimesheetApproved},
	}}
	svc := NewTimesheetService(repo, activeTeachers(), validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "pending"))
	assert.Contains(t, repo.deleted, "pending")

	err := svc.Delete(context.Background(), "approved")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

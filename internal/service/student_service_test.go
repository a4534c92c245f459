package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type mockStudentRepo struct {
	students      map[string]models.Student
	codes         map[string]bool
	created       *models.Student
	statusUpdates map[string]models.StudentStatus
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return nil, 0, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	return m.codes[code], nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "new-student"
	}
	m.students[student.ID] = *student
	m.created = student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error {
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[string]models.StudentStatus)
	}
	m.statusUpdates[id] = status
	if s, ok := m.students[id]; ok {
		s.Status = status
		m.students[id] = s
	}
	return nil
}

func TestStudentServiceCreateGeneratesCode(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Contains(t, student.StudentCode, "STU-")
	assert.Equal(t, models.StudentStatusActive, student.Status)
}

func TestStudentServiceCreateKeepsSuppliedCode(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{StudentCode: "STU-0042", FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "STU-0042", student.StudentCode)
}

func TestStudentServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockStudentRepo{codes: map[string]bool{"STU-0042": true}}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{StudentCode: "STU-0042", FirstName: "Ada", LastName: "Lovelace"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestStudentServiceUpdate(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", StudentCode: "STU-1", FirstName: "Ada", LastName: "Lovelace", Status: models.StudentStatusActive},
	}}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	phone := "555-0100"
	student, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", student.Phone)
	assert.Equal(t, "Ada", student.FirstName)
}

func TestStudentServiceDeactivateIdempotent(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"s1": {ID: "s1", Status: models.StudentStatusActive},
	}}
	svc := NewStudentService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "s1"))
	assert.Equal(t, models.StudentStatusInactive, repo.statusUpdates["s1"])

	repo.statusUpdates = nil
	require.NoError(t, svc.Deactivate(context.Background(), "s1"))
	assert.Empty(t, repo.statusUpdates)
}

func TestStudentServiceDeactivateUnknown(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validator.New(), zap.NewNop())

	err := svc.Deactivate(context.Background(), "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

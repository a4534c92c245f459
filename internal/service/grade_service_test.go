package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type mockGradeRepo struct {
	grades    map[string]models.Grade
	created   *models.Grade
	createErr error
	updated   *models.Grade
	deleted   []string
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	return nil, 0, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if g, ok := m.grades[id]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.grades == nil {
		m.grades = make(map[string]models.Grade)
	}
	if grade.ID == "" {
		grade.ID = "new-grade"
	}
	m.grades[grade.ID] = *grade
	m.created = grade
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.grades[grade.ID] = *grade
	m.updated = grade
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	delete(m.grades, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestGradeServiceCreate(t *testing.T) {
	repo := &mockGradeRepo{}
	enrollments := &mockEnrollmentRepo{enrolled: map[string]bool{"s1/c1": true}}
	svc := NewGradeService(repo, enrollments, validator.New(), zap.NewNop())

	grade, err := svc.Create(context.Background(), CreateGradeRequest{StudentID: "s1", CourseID: "c1", GradeType: "QUIZ", Value: 85})
	require.NoError(t, err)
	assert.Equal(t, 85.0, grade.Value)
	assert.NotNil(t, repo.created)
}

func TestGradeServiceCreateRequiresEnrollment(t *testing.T) {
	svc := NewGradeService(&mockGradeRepo{}, &mockEnrollmentRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateGradeRequest{StudentID: "s1", CourseID: "c1", GradeType: "QUIZ", Value: 85})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestGradeServiceCreateDuplicateType(t *testing.T) {
	repo := &mockGradeRepo{createErr: &pq.Error{Code: "23505"}}
	enrollments := &mockEnrollmentRepo{enrolled: map[string]bool{"s1/c1": true}}
	svc := NewGradeService(repo, enrollments, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateGradeRequest{StudentID: "s1", CourseID: "c1", GradeType: "QUIZ", Value: 85})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestGradeServiceCreateRejectsOutOfRangeValue(t *testing.T) {
	enrollments := &mockEnrollmentRepo{enrolled: map[string]bool{"s1/c1": true}}
	svc := NewGradeService(&mockGradeRepo{}, enrollments, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateGradeRequest{StudentID: "s1", CourseID: "c1", GradeType: "QUIZ", Value: 101})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGradeServiceUpdateValueAndComments(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{
		"g1": {ID: "g1", StudentID: "s1", CourseID: "c1", GradeType: "QUIZ", Value: 0},
	}}
	svc := NewGradeService(repo, &mockEnrollmentRepo{}, validator.New(), zap.NewNop())

	value := 92.5
	comments := "retake"
	grade, err := svc.Update(context.Background(), "g1", UpdateGradeRequest{Value: &value, Comments: &comments})
	require.NoError(t, err)
	assert.Equal(t, 92.5, grade.Value)
	require.NotNil(t, grade.Comments)
	assert.Equal(t, "retake", *grade.Comments)
	assert.Equal(t, "QUIZ", grade.GradeType)
}

func TestGradeServiceDelete(t *testing.T) {
	repo := &mockGradeRepo{grades: map[string]models.Grade{"g1": {ID: "g1"}}}
	svc := NewGradeService(repo, &mockEnrollmentRepo{}, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "g1"))
	assert.Contains(t, repo.deleted, "g1")

	err := svc.Delete(context.Background(), "g1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
)

type mockGradeInitRepo struct {
	counts     map[string]int
	created    []models.Grade
	failCodes  map[string]error
	createErrs int
}

func (m *mockGradeInitRepo) CountByStudentCourse(ctx context.Context, studentID, courseID string) (int, error) {
	return m.counts[studentID+"/"+courseID], nil
}

func (m *mockGradeInitRepo) Create(ctx context.Context, grade *models.Grade) error {
	if err, ok := m.failCodes[grade.GradeType]; ok {
		m.createErrs++
		return err
	}
	m.created = append(m.created, *grade)
	return nil
}

type mockGradeTypeCodes struct {
	codes []string
	err   error
}

func (m *mockGradeTypeCodes) ActiveCodes(ctx context.Context) ([]string, error) {
	return m.codes, m.err
}

type mockEnrollmentLister struct {
	enrollments []models.Enrollment
}

func (m *mockEnrollmentLister) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	return m.enrollments, nil
}

func TestGradeInitializerCreatesDefaultRows(t *testing.T) {
	repo := &mockGradeInitRepo{counts: map[string]int{}}
	svc := NewGradeInitializer(repo, &mockGradeTypeCodes{}, &mockEnrollmentLister{}, zap.NewNop())

	summary, err := svc.InitializeForEnrollment(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultGradeTypeCodes), summary.Created)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)

	require.Len(t, repo.created, len(models.DefaultGradeTypeCodes))
	for i, code := range models.DefaultGradeTypeCodes {
		assert.Equal(t, code, repo.created[i].GradeType)
		assert.Zero(t, repo.created[i].Value)
		require.NotNil(t, repo.created[i].Comments)
		assert.Equal(t, "Auto-generated for "+code, *repo.created[i].Comments)
	}
}

func TestGradeInitializerUsesCatalogCodes(t *testing.T) {
	repo := &mockGradeInitRepo{counts: map[string]int{}}
	catalog := &mockGradeTypeCodes{codes: []string{"MIDTERM", "FINAL"}}
	svc := NewGradeInitializer(repo, catalog, &mockEnrollmentLister{}, zap.NewNop())

	summary, err := svc.InitializeForEnrollment(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	require.Len(t, repo.created, 2)
	assert.Equal(t, "MIDTERM", repo.created[0].GradeType)
	assert.Equal(t, "FINAL", repo.created[1].GradeType)
}

func TestGradeInitializerSkipsExistingPair(t *testing.T) {
	repo := &mockGradeInitRepo{counts: map[string]int{"s1/c1": 5}}
	svc := NewGradeInitializer(repo, &mockGradeTypeCodes{}, &mockEnrollmentLister{}, zap.NewNop())

	summary, err := svc.InitializeForEnrollment(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Created)
	assert.Empty(t, repo.created)
}

func TestGradeInitializerPartialFailureContinues(t *testing.T) {
	repo := &mockGradeInitRepo{
		counts:    map[string]int{},
		failCodes: map[string]error{"EXAM": errors.New("insert failed")},
	}
	svc := NewGradeInitializer(repo, &mockGradeTypeCodes{}, &mockEnrollmentLister{}, zap.NewNop())

	summary, err := svc.InitializeForEnrollment(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultGradeTypeCodes)-1, summary.Created)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "EXAM", summary.Failures[0].Code)
	assert.Equal(t, "insert failed", summary.Failures[0].Reason)
}

func TestGradeInitializerReconcileAll(t *testing.T) {
	repo := &mockGradeInitRepo{counts: map[string]int{"s1/c1": 13}}
	enrollments := &mockEnrollmentLister{enrollments: []models.Enrollment{
		{ID: "e1", StudentID: "s1", CourseID: "c1"},
		{ID: "e2", StudentID: "s2", CourseID: "c1"},
	}}
	svc := NewGradeInitializer(repo, &mockGradeTypeCodes{}, enrollments, zap.NewNop())

	summary, err := svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, len(models.DefaultGradeTypeCodes), summary.Created)
}

func TestGradeInitializerReconcileAllIdempotent(t *testing.T) {
	repo := &mockGradeInitRepo{counts: map[string]int{}}
	enrollments := &mockEnrollmentLister{enrollments: []models.Enrollment{{ID: "e1", StudentID: "s1", CourseID: "c1"}}}
	svc := NewGradeInitializer(repo, &mockGradeTypeCodes{}, enrollments, zap.NewNop())

	first, err := svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultGradeTypeCodes), first.Created)

	repo.counts["s1/c1"] = len(repo.created)
	second, err := svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, repo.created, len(models.DefaultGradeTypeCodes))
}

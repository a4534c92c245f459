package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	enrolled    map[string]bool
	created     *models.Enrollment
	status      map[string]models.EnrollmentStatus
	deleted     []string
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := m.enrollments[id]; ok {
		return &models.EnrollmentDetail{Enrollment: e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ExistsEnrolled(ctx context.Context, studentID, courseID, excludeID string) (bool, error) {
	return m.enrolled[studentID+"/"+courseID], nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.enrollments == nil {
		m.enrollments = make(map[string]models.Enrollment)
	}
	if enrollment.ID == "" {
		enrollment.ID = "new-enroll"
	}
	m.enrollments[enrollment.ID] = *enrollment
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, completedAt *time.Time) error {
	if m.status == nil {
		m.status = make(map[string]models.EnrollmentStatus)
	}
	m.status[id] = status
	if e, ok := m.enrollments[id]; ok {
		e.Status = status
		e.CompletedAt = completedAt
		m.enrollments[id] = e
	}
	return nil
}

func (m *mockEnrollmentRepo) UpdateSection(ctx context.Context, id string, sectionID *string) error {
	if e, ok := m.enrollments[id]; ok {
		e.SectionID = sectionID
		m.enrollments[id] = e
	}
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.enrollments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockCourseReader struct {
	courses map[string]*models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type mockSectionReader struct {
	sections map[string]*models.ClassSectionDetail
}

func (m *mockSectionReader) FindByID(ctx context.Context, id string) (*models.ClassSectionDetail, error) {
	if s, ok := m.sections[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockGradeBootstrapper struct {
	calls   []string
	summary models.GradeInitSummary
	err     error
}

func (m *mockGradeBootstrapper) InitializeForEnrollment(ctx context.Context, studentID, courseID string) (models.GradeInitSummary, error) {
	m.calls = append(m.calls, studentID+"/"+courseID)
	return m.summary, m.err
}

func activeStudents() *mockStudentReader {
	return &mockStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", StudentCode: "STU-1", Status: models.StudentStatusActive},
	}}
}

func activeCourses() *mockCourseReader {
	return &mockCourseReader{courses: map[string]*models.Course{
		"c1": {ID: "c1", Code: "MATH101", Status: models.CourseStatusActive},
	}}
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	grades := &mockGradeBootstrapper{summary: models.GradeInitSummary{Created: 13}}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), &mockSectionReader{}, grades, validator.New(), zap.NewNop())

	detail, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, detail.Status)
	require.NotNil(t, repo.created)
	assert.Equal(t, []string{"s1/c1"}, grades.calls)
}

func TestEnrollmentServiceEnrollBootstrapFailureDoesNotFail(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	grades := &mockGradeBootstrapper{err: errors.New("db down")}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), &mockSectionReader{}, grades, validator.New(), zap.NewNop())

	detail, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: "s1", CourseID: "c1"})
	require.NoError(t, err)
	assert.NotNil(t, detail)
	assert.NotNil(t, repo.created)
}

func TestEnrollmentServiceEnrollDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{enrolled: map[string]bool{"s1/c1": true}}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), &mockSectionReader{}, &mockGradeBootstrapper{}, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: "s1", CourseID: "c1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEnrollmentServiceEnrollInactiveStudent(t *testing.T) {
	students := &mockStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", Status: models.StudentStatusInactive},
	}}
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, students, activeCourses(), &mockSectionReader{}, &mockGradeBootstrapper{}, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: "s1", CourseID: "c1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestEnrollmentServiceEnrollArchivedCourse(t *testing.T) {
	courses := &mockCourseReader{courses: map[string]*models.Course{
		"c1": {ID: "c1", Status: models.CourseStatusArchived},
	}}
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, activeStudents(), courses, &mockSectionReader{}, &mockGradeBootstrapper{}, validator.New(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: "s1", CourseID: "c1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestEnrollmentServiceEnrollSectionCourseMismatch(t *testing.T) {
	sections := &mockSectionReader{sections: map[string]*models.ClassSectionDetail{
		"sec1": {ClassSection: models.ClassSection{ID: "sec1", CourseID: "other-course"}},
	}}
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, activeStudents(), activeCourses(), sections, &mockGradeBootstrapper{}, validator.New(), zap.NewNop())

	sectionID := "sec1"
	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: "s1", CourseID: "c1", SectionID: &sectionID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestEnrollmentServiceUpdateStatusCompleted(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1", Status: models.EnrollmentStatusEnrolled},
	}}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), &mockSectionReader{}, &mockGradeBootstrapper{}, validator.New(), zap.NewNop())

	detail, err := svc.Update(context.Background(), "e1", UpdateEnrollmentRequest{Status: models.EnrollmentStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusCompleted, detail.Status)
	assert.NotNil(t, detail.CompletedAt)
}

func TestEnrollmentServiceDelete(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: map[string]models.Enrollment{
		"e1": {ID: "e1", StudentID: "s1", CourseID: "c1"},
	}}
	svc := NewEnrollmentService(repo, activeStudents(), activeCourses(), &mockSectionReader{}, &mockGradeBootstrapper{}, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "e1"))
	assert.Contains(t, repo.deleted, "e1")

	err := svc.Delete(context.Background(), "e1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

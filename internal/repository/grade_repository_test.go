package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/sims-api/internal/models"
)

func newGradeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestGradeRepositoryList(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "grade_type", "value", "comments", "created_at", "updated_at", "student_code", "student_name", "course_code", "course_title"}).
		AddRow("g1", "s1", "c1", "QUIZ", 85.5, nil, now, now, "STU-1", "Ada Lovelace", "MATH101", "Calculus")
	mock.ExpectQuery("SELECT g.id, g.student_id").
		WithArgs("s1").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	grades, total, err := repo.List(context.Background(), models.GradeFilter{StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, grades, 1)
	assert.Equal(t, "QUIZ", grades[0].GradeType)
	assert.Equal(t, "Ada Lovelace", grades[0].StudentName)
}

func TestGradeRepositoryListStudentIDSet(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "grade_type", "value", "comments", "created_at", "updated_at", "student_code", "student_name", "course_code", "course_title"})
	mock.ExpectQuery("SELECT g.id, g.student_id").
		WithArgs("s1", "s2").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("s1", "s2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.GradeFilter{StudentIDs: []string{"s1", "s2"}})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGradeRepositoryCountByStudentCourse(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM grades`).
		WithArgs("s1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))

	count, err := repo.CountByStudentCourse(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 13, count)
}

func TestGradeRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectExec("INSERT INTO grades").
		WillReturnResult(sqlmock.NewResult(1, 1))

	grade := &models.Grade{StudentID: "s1", CourseID: "c1", GradeType: "QUIZ", Value: 85}
	require.NoError(t, repo.Create(context.Background(), grade))
	assert.NotEmpty(t, grade.ID)
	assert.False(t, grade.CreatedAt.IsZero())
}

func TestGradeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newGradeRepoMock(t)
	defer cleanup()

	repo := NewGradeRepository(db)
	mock.ExpectExec("UPDATE grades SET value").
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := &models.Grade{ID: "g1", Value: 92}
	require.NoError(t, repo.Update(context.Background(), grade))
	assert.False(t, grade.UpdatedAt.IsZero())
}

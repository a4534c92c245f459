package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/sims-api/internal/models"
)

func newSectionGradeTypeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestSectionGradeTypeRepositoryListBySection(t *testing.T) {
	db, mock, cleanup := newSectionGradeTypeRepoMock(t)
	defer cleanup()

	repo := NewSectionGradeTypeRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "section_id", "grade_type_id", "is_active", "sort_order", "created_at", "updated_at", "name", "code", "weight"}).
		AddRow("a1", "sec1", "gt1", true, 0, now, now, "Quiz", "QUIZ", 0.2).
		AddRow("a2", "sec1", "gt2", false, 1, now, now, "Exam", "EXAM", 0.5)
	mock.ExpectQuery("SELECT sgt.id, sgt.section_id").
		WithArgs("sec1").
		WillReturnRows(rows)

	result, err := repo.ListBySection(context.Background(), "sec1")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "QUIZ", result[0].Code)
	assert.Equal(t, 0, result[0].SortOrder)
	assert.False(t, result[1].IsActive)
}

func TestSectionGradeTypeRepositoryMaxSortOrderEmpty(t *testing.T) {
	db, mock, cleanup := newSectionGradeTypeRepoMock(t)
	defer cleanup()

	repo := NewSectionGradeTypeRepository(db)
	mock.ExpectQuery(`SELECT MAX\(sort_order\)`).
		WithArgs("sec1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	max, err := repo.MaxSortOrder(context.Background(), "sec1")
	require.NoError(t, err)
	assert.Equal(t, -1, max)
}

func TestSectionGradeTypeRepositoryMaxSortOrder(t *testing.T) {
	db, mock, cleanup := newSectionGradeTypeRepoMock(t)
	defer cleanup()

	repo := NewSectionGradeTypeRepository(db)
	mock.ExpectQuery(`SELECT MAX\(sort_order\)`).
		WithArgs("sec1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(4))

	max, err := repo.MaxSortOrder(context.Background(), "sec1")
	require.NoError(t, err)
	assert.Equal(t, 4, max)
}

func TestSectionGradeTypeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSectionGradeTypeRepoMock(t)
	defer cleanup()

	repo := NewSectionGradeTypeRepository(db)
	mock.ExpectExec("INSERT INTO section_grade_types").
		WillReturnResult(sqlmock.NewResult(1, 1))

	row := &models.SectionGradeType{SectionID: "sec1", GradeTypeID: "gt1", IsActive: true, SortOrder: 3}
	require.NoError(t, repo.Create(context.Background(), row))
	assert.NotEmpty(t, row.ID)
}

func TestSectionGradeTypeRepositoryReorderCommitsTransaction(t *testing.T) {
	db, mock, cleanup := newSectionGradeTypeRepoMock(t)
	defer cleanup()

	repo := NewSectionGradeTypeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE section_grade_types SET sort_order").
		WithArgs("a2", "sec1", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE section_grade_types SET sort_order").
		WithArgs("a1", "sec1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Reorder(context.Background(), "sec1", []string{"a2", "a1"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionGradeTypeRepositoryReorderRollsBackOnUnknownRow(t *testing.T) {
	db, mock, cleanup := newSectionGradeTypeRepoMock(t)
	defer cleanup()

	repo := NewSectionGradeTypeRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE section_grade_types SET sort_order").
		WithArgs("ghost", "sec1", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), "sec1", []string{"ghost"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

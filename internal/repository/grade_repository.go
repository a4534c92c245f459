package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/sims-api/internal/models"
)

// GradeRepository manages persistence for grade entries.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns grade entries with student and course labels, supporting
// pagination, text search across student/course fields and a student-id set
// filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	base := `FROM grades g
        JOIN students s ON s.id = g.student_id
        JOIN courses co ON co.id = g.course_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("g.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.GradeType != "" {
		conditions = append(conditions, fmt.Sprintf("g.grade_type = $%d", len(args)+1))
		args = append(args, filter.GradeType)
	}
	if len(filter.StudentIDs) > 0 {
		placeholders := make([]string, len(filter.StudentIDs))
		for i, id := range filter.StudentIDs {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		conditions = append(conditions, fmt.Sprintf("g.student_id IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.first_name) LIKE $%d OR LOWER(s.last_name) LIKE $%d OR LOWER(s.student_code) LIKE $%d OR LOWER(co.code) LIKE $%d OR LOWER(co.title) LIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"grade_type": "g.grade_type",
		"value":      "g.value",
		"created_at": "g.created_at",
	}
	column, order, limit, offset := resolveListClauses(filter.SortBy, filter.SortOrder, filter.Page, filter.PageSize, allowedSorts, "created_at")

	query := fmt.Sprintf(`SELECT g.id, g.student_id, g.course_id, g.grade_type, g.value, g.comments, g.created_at, g.updated_at,
        s.student_code, s.first_name || ' ' || s.last_name AS student_name,
        co.code AS course_code, co.title AS course_title
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, limit, offset)

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}
	return grades, total, nil
}

// FindByID fetches a grade entry by ID.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	const query = "SELECT id, student_id, course_id, grade_type, value, comments, created_at, updated_at FROM grades WHERE id = $1"
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// CountByStudentCourse returns the number of grade rows for a (student, course)
// pair. Grade initialization skips the whole pair when any exist.
func (r *GradeRepository) CountByStudentCourse(ctx context.Context, studentID, courseID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM grades WHERE student_id = $1 AND course_id = $2", studentID, courseID); err != nil {
		return 0, fmt.Errorf("count grades for enrollment: %w", err)
	}
	return count, nil
}

// Create inserts a new grade entry.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO grades (id, student_id, course_id, grade_type, value, comments, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :grade_type, :value, :comments, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies a grade's value and comments.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET value = :value, comments = :comments, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// Delete removes a grade entry.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grades WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}

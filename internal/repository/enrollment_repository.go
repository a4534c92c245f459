package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/sims-api/internal/models"
)

// EnrollmentRepository manages persistence for enrollment records.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.section_id, e.status, e.enrolled_at, e.completed_at,
        s.student_code, s.first_name || ' ' || s.last_name AS student_name,
        co.code AS course_code, co.title AS course_title, cs.name AS section_name
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses co ON co.id = e.course_id
        LEFT JOIN class_sections cs ON cs.id = e.section_id`

// List returns enrollments matching the provided filters.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN courses co ON co.id = e.course_id
        LEFT JOIN class_sections cs ON cs.id = e.section_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("e.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"enrolled_at":  "e.enrolled_at",
		"student_code": "s.student_code",
	}
	column, order, limit, offset := resolveListClauses(filter.SortBy, filter.SortOrder, filter.Page, filter.PageSize, allowedSorts, "enrolled_at")

	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.course_id, e.section_id, e.status, e.enrolled_at, e.completed_at,
        s.student_code, s.first_name || ' ' || s.last_name AS student_name,
        co.code AS course_code, co.title AS course_title, cs.name AS section_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, limit, offset)

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID fetches an enrollment by ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	const query = "SELECT id, student_id, course_id, section_id, status, enrolled_at, completed_at FROM enrollments WHERE id = $1"
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID fetches an enrollment with student and course labels.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + " WHERE e.id = $1"
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsEnrolled checks whether a student already has an ENROLLED row for the
// course, optionally excluding an enrollment ID.
func (r *EnrollmentRepository) ExistsEnrolled(ctx context.Context, studentID, courseID, excludeID string) (bool, error) {
	query := "SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status = $3"
	args := []interface{}{studentID, courseID, models.EnrollmentStatusEnrolled}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// ListAll returns every enrollment row, used by batch grade reconciliation.
func (r *EnrollmentRepository) ListAll(ctx context.Context) ([]models.Enrollment, error) {
	const query = "SELECT id, student_id, course_id, section_id, status, enrolled_at, completed_at FROM enrollments ORDER BY enrolled_at"
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("list all enrollments: %w", err)
	}
	return enrollments, nil
}

// Create inserts a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, course_id, section_id, status, enrolled_at, completed_at)
        VALUES (:id, :student_id, :course_id, :section_id, :status, :enrolled_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus transitions an enrollment's lifecycle status.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, completedAt *time.Time) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE enrollments SET status = $2, completed_at = $3 WHERE id = $1", id, status, completedAt); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// UpdateSection moves an enrollment to a different section of the same course.
func (r *EnrollmentRepository) UpdateSection(ctx context.Context, id string, sectionID *string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE enrollments SET section_id = $2 WHERE id = $1", id, sectionID); err != nil {
		return fmt.Errorf("update enrollment section: %w", err)
	}
	return nil
}

// Delete removes an enrollment row. Grade rows are owned by the
// (student, course) pair and are intentionally left in place.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

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

// SectionRepository manages persistence for class sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// List returns class sections with course and teacher labels.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.ClassSectionDetail, int, error) {
	base := "FROM class_sections cs JOIN courses co ON co.id = cs.course_id LEFT JOIN teachers t ON t.id = cs.teacher_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("cs.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(cs.name) LIKE $%d OR LOWER(cs.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "cs.name",
		"code":       "cs.code",
		"created_at": "cs.created_at",
	}
	column, order, limit, offset := resolveListClauses(filter.SortBy, filter.SortOrder, filter.Page, filter.PageSize, allowedSorts, "created_at")

	query := fmt.Sprintf(`SELECT cs.id, cs.course_id, cs.name, cs.code, cs.schedule, cs.teacher_id, cs.created_at, cs.updated_at,
        co.code AS course_code, co.title AS course_title, t.full_name AS teacher_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, limit, offset)

	var sections []models.ClassSectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sections: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sections: %w", err)
	}
	return sections, total, nil
}

// FindByID fetches a section detail by ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.ClassSectionDetail, error) {
	const query = `SELECT cs.id, cs.course_id, cs.name, cs.code, cs.schedule, cs.teacher_id, cs.created_at, cs.updated_at,
        co.code AS course_code, co.title AS course_title, t.full_name AS teacher_name
        FROM class_sections cs
        JOIN courses co ON co.id = cs.course_id
        LEFT JOIN teachers t ON t.id = cs.teacher_id
        WHERE cs.id = $1`
	var detail models.ClassSectionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new class section.
func (r *SectionRepository) Create(ctx context.Context, section *models.ClassSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now
	const query = `INSERT INTO class_sections (id, course_id, name, code, schedule, teacher_id, created_at, updated_at)
        VALUES (:id, :course_id, :name, :code, :schedule, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update modifies an existing class section.
func (r *SectionRepository) Update(ctx context.Context, section *models.ClassSection) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_sections SET name = :name, code = :code, schedule = :schedule, teacher_id = :teacher_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a class section.
func (r *SectionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM class_sections WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

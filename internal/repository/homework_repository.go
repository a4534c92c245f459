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

// HomeworkRepository manages persistence for homework assignments.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs a HomeworkRepository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

const homeworkColumns = "id, section_id, title, description, due_date, max_score, created_at, updated_at"

// List returns homework matching the provided filters.
func (r *HomeworkRepository) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	base := "FROM homework"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.SectionID != "" {
		conditions = append(conditions, fmt.Sprintf("section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, fmt.Sprintf("due_date <= $%d", len(args)+1))
		args = append(args, *filter.DueBefore)
	}
	if filter.DueAfter != nil {
		conditions = append(conditions, fmt.Sprintf("due_date >= $%d", len(args)+1))
		args = append(args, *filter.DueAfter)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	_, _, limit, offset := resolveListClauses("", "", filter.Page, filter.PageSize, nil, "due_date")

	query := fmt.Sprintf("SELECT %s %s ORDER BY due_date ASC LIMIT %d OFFSET %d", homeworkColumns, base, limit, offset)

	var items []models.Homework
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list homework: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count homework: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a homework assignment by ID.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	query := fmt.Sprintf("SELECT %s FROM homework WHERE id = $1", homeworkColumns)
	var hw models.Homework
	if err := r.db.GetContext(ctx, &hw, query, id); err != nil {
		return nil, err
	}
	return &hw, nil
}

// Create inserts a new homework assignment.
func (r *HomeworkRepository) Create(ctx context.Context, hw *models.Homework) error {
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hw.CreatedAt.IsZero() {
		hw.CreatedAt = now
	}
	hw.UpdatedAt = now
	const query = `INSERT INTO homework (id, section_id, title, description, due_date, max_score, created_at, updated_at)
        VALUES (:id, :section_id, :title, :description, :due_date, :max_score, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// Update modifies an existing homework assignment.
func (r *HomeworkRepository) Update(ctx context.Context, hw *models.Homework) error {
	hw.UpdatedAt = time.Now().UTC()
	const query = `UPDATE homework SET title = :title, description = :description, due_date = :due_date, max_score = :max_score, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, hw); err != nil {
		return fmt.Errorf("update homework: %w", err)
	}
	return nil
}

// Delete removes a homework assignment.
func (r *HomeworkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM homework WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return nil
}

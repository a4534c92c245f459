package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/sims-api/internal/models"
)

// SectionGradeTypeRepository manages the section/grade-type join rows.
type SectionGradeTypeRepository struct {
	db *sqlx.DB
}

// NewSectionGradeTypeRepository constructs a SectionGradeTypeRepository.
func NewSectionGradeTypeRepository(db *sqlx.DB) *SectionGradeTypeRepository {
	return &SectionGradeTypeRepository{db: db}
}

// ListBySection returns grade types joined with their section-scoped metadata,
// ordered ascending by sort order.
func (r *SectionGradeTypeRepository) ListBySection(ctx context.Context, sectionID string) ([]models.SectionGradeTypeDetail, error) {
	const query = `SELECT sgt.id, sgt.section_id, sgt.grade_type_id, sgt.is_active, sgt.sort_order, sgt.created_at, sgt.updated_at,
        gt.name, gt.code, gt.weight
        FROM section_grade_types sgt
        JOIN grade_types gt ON gt.id = sgt.grade_type_id
        WHERE sgt.section_id = $1
        ORDER BY sgt.sort_order ASC`
	var rows []models.SectionGradeTypeDetail
	if err := r.db.SelectContext(ctx, &rows, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section grade types: %w", err)
	}
	return rows, nil
}

// Find returns the join row for (section, grade type).
func (r *SectionGradeTypeRepository) Find(ctx context.Context, sectionID, gradeTypeID string) (*models.SectionGradeType, error) {
	const query = `SELECT id, section_id, grade_type_id, is_active, sort_order, created_at, updated_at
        FROM section_grade_types WHERE section_id = $1 AND grade_type_id = $2`
	var row models.SectionGradeType
	if err := r.db.GetContext(ctx, &row, query, sectionID, gradeTypeID); err != nil {
		return nil, err
	}
	return &row, nil
}

// MaxSortOrder returns the highest sort order in a section, or -1 when the
// section has no associations.
func (r *SectionGradeTypeRepository) MaxSortOrder(ctx context.Context, sectionID string) (int, error) {
	var max sql.NullInt64
	if err := r.db.GetContext(ctx, &max, "SELECT MAX(sort_order) FROM section_grade_types WHERE section_id = $1", sectionID); err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	if !max.Valid {
		return -1, nil
	}
	return int(max.Int64), nil
}

// Create inserts a new join row.
func (r *SectionGradeTypeRepository) Create(ctx context.Context, row *models.SectionGradeType) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	const query = `INSERT INTO section_grade_types (id, section_id, grade_type_id, is_active, sort_order, created_at, updated_at)
        VALUES (:id, :section_id, :grade_type_id, :is_active, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create section grade type: %w", err)
	}
	return nil
}

// SetActive flips the active flag without touching the sort order.
func (r *SectionGradeTypeRepository) SetActive(ctx context.Context, id string, isActive bool) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE section_grade_types SET is_active = $2, updated_at = $3 WHERE id = $1", id, isActive, time.Now().UTC()); err != nil {
		return fmt.Errorf("toggle section grade type: %w", err)
	}
	return nil
}

// Delete removes a join row outright.
func (r *SectionGradeTypeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM section_grade_types WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete section grade type: %w", err)
	}
	return nil
}

// Reorder reassigns each join row's sort order to its index in the supplied
// list, inside a single transaction so concurrent reorders cannot interleave.
func (r *SectionGradeTypeRepository) Reorder(ctx context.Context, sectionID string, orderedIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	for idx, id := range orderedIDs {
		res, err := tx.ExecContext(ctx, "UPDATE section_grade_types SET sort_order = $3, updated_at = $4 WHERE id = $1 AND section_id = $2", id, sectionID, idx, time.Now().UTC())
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reorder section grade type %s: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err == nil && affected == 0 {
			_ = tx.Rollback()
			return sql.ErrNoRows
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

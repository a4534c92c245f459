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

// GradeTypeRepository manages the dynamic grade-type catalog.
type GradeTypeRepository struct {
	db *sqlx.DB
}

// NewGradeTypeRepository constructs a GradeTypeRepository.
func NewGradeTypeRepository(db *sqlx.DB) *GradeTypeRepository {
	return &GradeTypeRepository{db: db}
}

const gradeTypeColumns = "id, name, code, weight, active, sort_order, created_at, updated_at"

// List returns the catalog ordered by sort order.
func (r *GradeTypeRepository) List(ctx context.Context, activeOnly bool) ([]models.GradeType, error) {
	query := fmt.Sprintf("SELECT %s FROM grade_types", gradeTypeColumns)
	args := []interface{}{}
	if activeOnly {
		query += " WHERE active = $1"
		args = append(args, true)
	}
	query += " ORDER BY sort_order ASC"

	var types []models.GradeType
	if err := r.db.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, fmt.Errorf("list grade types: %w", err)
	}
	return types, nil
}

// ActiveCodes returns the codes of active catalog entries in sort order.
func (r *GradeTypeRepository) ActiveCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.SelectContext(ctx, &codes, "SELECT code FROM grade_types WHERE active = true ORDER BY sort_order ASC"); err != nil {
		return nil, fmt.Errorf("list active grade type codes: %w", err)
	}
	return codes, nil
}

// FindByID fetches a grade type by ID.
func (r *GradeTypeRepository) FindByID(ctx context.Context, id string) (*models.GradeType, error) {
	query := fmt.Sprintf("SELECT %s FROM grade_types WHERE id = $1", gradeTypeColumns)
	var gt models.GradeType
	if err := r.db.GetContext(ctx, &gt, query, id); err != nil {
		return nil, err
	}
	return &gt, nil
}

// ExistsByCode checks if a grade type with the given code exists, optionally excluding an ID.
func (r *GradeTypeRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM grade_types WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check grade type code: %w", err)
	}
	return true, nil
}

// Create inserts a new grade type.
func (r *GradeTypeRepository) Create(ctx context.Context, gt *models.GradeType) error {
	if gt.ID == "" {
		gt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if gt.CreatedAt.IsZero() {
		gt.CreatedAt = now
	}
	gt.UpdatedAt = now
	const query = `INSERT INTO grade_types (id, name, code, weight, active, sort_order, created_at, updated_at)
        VALUES (:id, :name, :code, :weight, :active, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, gt); err != nil {
		return fmt.Errorf("create grade type: %w", err)
	}
	return nil
}

// Update modifies an existing grade type.
func (r *GradeTypeRepository) Update(ctx context.Context, gt *models.GradeType) error {
	gt.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grade_types SET name = :name, code = :code, weight = :weight, active = :active, sort_order = :sort_order, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, gt); err != nil {
		return fmt.Errorf("update grade type: %w", err)
	}
	return nil
}

// Delete removes a grade type from the catalog.
func (r *GradeTypeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grade_types WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete grade type: %w", err)
	}
	return nil
}

// SeedDefaults inserts the legacy default codes that are missing from the
// catalog. Existing rows are never touched.
func (r *GradeTypeRepository) SeedDefaults(ctx context.Context) error {
	for i, code := range models.DefaultGradeTypeCodes {
		exists, err := r.ExistsByCode(ctx, code, "")
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		gt := &models.GradeType{
			Name:      code,
			Code:      code,
			Weight:    0,
			Active:    true,
			SortOrder: i,
		}
		if err := r.Create(ctx, gt); err != nil {
			return fmt.Errorf("seed grade type %s: %w", code, err)
		}
	}
	return nil
}

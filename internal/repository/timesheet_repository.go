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

// TimesheetRepository manages persistence for teacher timesheets.
type TimesheetRepository struct {
	db *sqlx.DB
}

// NewTimesheetRepository constructs a TimesheetRepository.
func NewTimesheetRepository(db *sqlx.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

const timesheetColumns = "id, teacher_id, work_date, hours, description, status, created_at, updated_at"

// List returns timesheets matching the provided filters.
func (r *TimesheetRepository) List(ctx context.Context, filter models.TimesheetFilter) ([]models.Timesheet, int, error) {
	base := "FROM timesheets"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("work_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("work_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	_, _, limit, offset := resolveListClauses("", "", filter.Page, filter.PageSize, nil, "work_date")

	query := fmt.Sprintf("SELECT %s %s ORDER BY work_date DESC LIMIT %d OFFSET %d", timesheetColumns, base, limit, offset)

	var sheets []models.Timesheet
	if err := r.db.SelectContext(ctx, &sheets, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list timesheets: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count timesheets: %w", err)
	}
	return sheets, total, nil
}

// FindByID fetches a timesheet entry by ID.
func (r *TimesheetRepository) FindByID(ctx context.Context, id string) (*models.Timesheet, error) {
	query := fmt.Sprintf("SELECT %s FROM timesheets WHERE id = $1", timesheetColumns)
	var sheet models.Timesheet
	if err := r.db.GetContext(ctx, &sheet, query, id); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Create inserts a new timesheet entry.
func (r *TimesheetRepository) Create(ctx context.Context, sheet *models.Timesheet) error {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now
	const query = `INSERT INTO timesheets (id, teacher_id, work_date, hours, description, status, created_at, updated_at)
        VALUES (:id, :teacher_id, :work_date, :hours, :description, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sheet); err != nil {
		return fmt.Errorf("create timesheet: %w", err)
	}
	return nil
}

// UpdateStatus transitions a timesheet's approval status.
func (r *TimesheetRepository) UpdateStatus(ctx context.Context, id string, status models.TimesheetStatus) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE timesheets SET status = $2, updated_at = $3 WHERE id = $1", id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update timesheet status: %w", err)
	}
	return nil
}

// Delete removes a timesheet entry.
func (r *TimesheetRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM timesheets WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete timesheet: %w", err)
	}
	return nil
}

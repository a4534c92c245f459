package models

import "time"

// TimesheetStatus enumerates the approval lifecycle of a timesheet entry.
type TimesheetStatus string

const (
	TimesheetPending  TimesheetStatus = "PENDING"
	TimesheetApproved TimesheetStatus = "APPROVED"
	TimesheetRejected TimesheetStatus = "REJECTED"
)

// Timesheet records hours worked by a teacher on a date.
type Timesheet struct {
	ID          string          `db:"id" json:"id"`
	TeacherID   string          `db:"teacher_id" json:"teacher_id"`
	WorkDate    time.Time       `db:"work_date" json:"work_date"`
	Hours       float64         `db:"hours" json:"hours"`
	Description string          `db:"description" json:"description"`
	Status      TimesheetStatus `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// TimesheetFilter provides filters for listing timesheets.
type TimesheetFilter struct {
	TeacherID string
	Status    TimesheetStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

package models

import "time"

// StudentStatus represents the lifecycle of a student record.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusInactive  StudentStatus = "INACTIVE"
	StudentStatusGraduated StudentStatus = "GRADUATED"
	StudentStatusSuspended StudentStatus = "SUSPENDED"
)

// Student represents a learner registered in the institution.
type Student struct {
	ID          string        `db:"id" json:"id"`
	StudentCode string        `db:"student_code" json:"student_code"`
	UserID      *string       `db:"user_id" json:"user_id,omitempty"`
	FirstName   string        `db:"first_name" json:"first_name"`
	LastName    string        `db:"last_name" json:"last_name"`
	EngName     string        `db:"eng_name" json:"eng_name"`
	Phone       string        `db:"phone" json:"phone"`
	Status      StudentStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

package models

import "time"

// CourseStatus represents the lifecycle of a course.
type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "ACTIVE"
	CourseStatusInactive CourseStatus = "INACTIVE"
	CourseStatusArchived CourseStatus = "ARCHIVED"
)

// Course represents a catalog course identified by its unique code.
type Course struct {
	ID            string       `db:"id" json:"id"`
	Code          string       `db:"code" json:"code"`
	Title         string       `db:"title" json:"title"`
	Credits       int          `db:"credits" json:"credits"`
	DurationWeeks int          `db:"duration_weeks" json:"duration_weeks"`
	Capacity      int          `db:"capacity" json:"capacity"`
	Status        CourseStatus `db:"status" json:"status"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures list filters for courses.
type CourseFilter struct {
	Search    string
	Status    CourseStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

package models

import "time"

// ClassSection represents a scheduled offering of a course.
type ClassSection struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Schedule  string    `db:"schedule" json:"schedule"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassSectionDetail enriches ClassSection with course and teacher info.
type ClassSectionDetail struct {
	ClassSection
	CourseCode  string  `db:"course_code" json:"course_code"`
	CourseTitle string  `db:"course_title" json:"course_title"`
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// SectionFilter captures list filters for class sections.
type SectionFilter struct {
	CourseID  string
	TeacherID string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

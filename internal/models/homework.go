package models

import "time"

// Homework represents an assignment published for a class section.
type Homework struct {
	ID          string    `db:"id" json:"id"`
	SectionID   string    `db:"section_id" json:"section_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	MaxScore    float64   `db:"max_score" json:"max_score"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HomeworkFilter provides filters for listing homework.
type HomeworkFilter struct {
	SectionID string
	Search    string
	DueBefore *time.Time
	DueAfter  *time.Time
	Page      int
	PageSize  int
}

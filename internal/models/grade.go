package models

import "time"

// DefaultGradeTypeCodes is the ordered set of legacy grade-type codes used to
// seed the catalog and to back grade initialization when the catalog is empty.
var DefaultGradeTypeCodes = []string{
	"ASSIGNMENT", "QUIZ", "EXAM", "FINAL", "HW", "SP", "PP",
	"TEST_1L", "TEST_1RW", "TEST_2L", "TEST_2RW", "TEST_3L", "TEST_3RW",
}

// Grade represents a single assessment entry for a (student, course) pair.
// One row exists per grade-type code, unique on (student_id, course_id,
// grade_type).
type Grade struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	GradeType string    `db:"grade_type" json:"grade_type"`
	Value     float64   `db:"value" json:"value"`
	Comments  *string   `db:"comments" json:"comments,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GradeDetail enriches Grade with student and course labels for listings.
type GradeDetail struct {
	Grade
	StudentCode string `db:"student_code" json:"student_code"`
	StudentName string `db:"student_name" json:"student_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseTitle string `db:"course_title" json:"course_title"`
}

// GradeFilter allows querying of grade entries.
type GradeFilter struct {
	StudentID  string
	CourseID   string
	GradeType  string
	StudentIDs []string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// GradeType is the dynamic catalog entry for an assessment category. The
// catalog is authoritative; the legacy fixed codes exist only as seed data.
type GradeType struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Weight    float64   `db:"weight" json:"weight"`
	Active    bool      `db:"active" json:"active"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SectionGradeType joins a grade type to a class section with section-scoped
// activation and display ordering. Unique on (section_id, grade_type_id).
type SectionGradeType struct {
	ID          string    `db:"id" json:"id"`
	SectionID   string    `db:"section_id" json:"section_id"`
	GradeTypeID string    `db:"grade_type_id" json:"grade_type_id"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	SortOrder   int       `db:"sort_order" json:"sort_order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SectionGradeTypeDetail joins the catalog entry with its section-scoped
// metadata, ordered by sort_order for display.
type SectionGradeTypeDetail struct {
	SectionGradeType
	Name   string  `db:"name" json:"name"`
	Code   string  `db:"code" json:"code"`
	Weight float64 `db:"weight" json:"weight"`
}

// GradeInitFailure captures a grade-type code that could not be inserted.
type GradeInitFailure struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// GradeInitSummary reports the outcome of a grade-initialization run.
// Partial success is accepted and reported, never rolled back.
type GradeInitSummary struct {
	Created  int                `json:"created"`
	Skipped  int                `json:"skipped"`
	Failed   int                `json:"failed"`
	Failures []GradeInitFailure `json:"failures,omitempty"`
}

// Merge folds another summary into the receiver.
func (s *GradeInitSummary) Merge(other GradeInitSummary) {
	s.Created += other.Created
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.Failures = append(s.Failures, other.Failures...)
}

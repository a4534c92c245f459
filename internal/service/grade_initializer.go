package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edulane/sims-api/internal/models"
	appErrors "github.com/edulane/sims-api/pkg/errors"
)

type gradeInitRepo interface {
	CountByStudentCourse(ctx context.Context, studentID, courseID string) (int, error)
	Create(ctx context.Context, grade *models.Grade) error
}

type gradeTypeCodeReader interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

type enrollmentLister interface {
	ListAll(ctx context.Context) ([]models.Enrollment, error)
}

// GradeInitializer ensures every enrollment has one default grade row per
// recognized grade-type code. Runs are idempotent per (student, course): when
// any grade row already exists for the pair, the pair is skipped entirely.
type GradeInitializer struct {
	grades      gradeInitRepo
	gradeTypes  gradeTypeCodeReader
	enrollments enrollmentLister
	logger      *zap.Logger
}

// NewGradeInitializer constructs a GradeInitializer.
func NewGradeInitializer(grades gradeInitRepo, gradeTypes gradeTypeCodeReader, enrollments enrollmentLister, logger *zap.Logger) *GradeInitializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeInitializer{grades: grades, gradeTypes: gradeTypes, enrollments: enrollments, logger: logger}
}

// InitializeForEnrollment creates the default grade rows for one
// (student, course) pair. Individual insert failures are logged and counted
// but never abort the remaining codes; partial success is reported, not
// rolled back.
func (s *GradeInitializer) InitializeForEnrollment(ctx context.Context, studentID, courseID string) (models.GradeInitSummary, error) {
	summary := models.GradeInitSummary{}

	existing, err := s.grades.CountByStudentCourse(ctx, studentID, courseID)
	if err != nil {
		return summary, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect existing grades")
	}
	if existing > 0 {
		summary.Skipped = 1
		return summary, nil
	}

	codes, err := s.codes(ctx)
	if err != nil {
		return summary, err
	}

	for _, code := range codes {
		comment := fmt.Sprintf("Auto-generated for %s", code)
		grade := &models.Grade{
			StudentID: studentID,
			CourseID:  courseID,
			GradeType: code,
			Value:     0,
			Comments:  &comment,
		}
		if err := s.grades.Create(ctx, grade); err != nil {
			s.logger.Warn("failed to create default grade",
				zap.String("student_id", studentID),
				zap.String("course_id", courseID),
				zap.String("grade_type", code),
				zap.Error(err))
			summary.Failed++
			summary.Failures = append(summary.Failures, models.GradeInitFailure{
				StudentID: studentID,
				CourseID:  courseID,
				Code:      code,
				Reason:    err.Error(),
			})
			continue
		}
		summary.Created++
	}
	return summary, nil
}

// ReconcileAll walks every enrollment and applies InitializeForEnrollment.
// Safe to re-run across the whole enrollment set: students who already have
// grades are skipped, students who have none are completed.
func (s *GradeInitializer) ReconcileAll(ctx context.Context) (models.GradeInitSummary, error) {
	total := models.GradeInitSummary{}

	enrollments, err := s.enrollments.ListAll(ctx)
	if err != nil {
		return total, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	for _, enrollment := range enrollments {
		summary, err := s.InitializeForEnrollment(ctx, enrollment.StudentID, enrollment.CourseID)
		if err != nil {
			s.logger.Warn("grade initialization failed for enrollment",
				zap.String("enrollment_id", enrollment.ID),
				zap.Error(err))
			continue
		}
		total.Merge(summary)
	}

	s.logger.Info("grade reconciliation finished",
		zap.Int("created", total.Created),
		zap.Int("skipped", total.Skipped),
		zap.Int("failed", total.Failed))
	return total, nil
}

// codes returns the active catalog codes in sort order, falling back to the
// built-in defaults when the catalog is empty.
func (s *GradeInitializer) codes(ctx context.Context) ([]string, error) {
	codes, err := s.gradeTypes.ActiveCodes(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade type catalog")
	}
	if len(codes) == 0 {
		return models.DefaultGradeTypeCodes, nil
	}
	return codes, nil
}
